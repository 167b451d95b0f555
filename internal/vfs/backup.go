package vfs

import (
	"encoding/binary"
	"fmt"
	"os"

	"github.com/google/uuid"
)

// backupMagic identifies a backup file produced by Backup, the way
// ext2/pkg/ext2/volume.go tags a FileVolume header before its raw
// block payload.
const backupMagic = "BFSBKUP1"

const backupHeaderSize = len(backupMagic) + 16 + 16

// Backup serializes the device image to path, prefixed by a header
// carrying a fresh volume tag (for operators to tell backups of the
// same file system apart) and the parameters needed to remount it.
func (fs *FileSystem) Backup(path string) error {
	for _, e := range fs.oft {
		if e == nil {
			continue
		}
		if err := flushEntry(fs, e); err != nil {
			return fmt.Errorf("flushing open file before backup: %w", err)
		}
	}

	tag, err := uuid.New().MarshalBinary()
	if err != nil {
		return fmt.Errorf("generating volume tag: %w", err)
	}

	header := make([]byte, 0, backupHeaderSize)
	header = append(header, []byte(backupMagic)...)
	header = append(header, tag...)

	params := make([]byte, 16)
	binary.BigEndian.PutUint32(params[0:4], uint32(fs.params.N))
	binary.BigEndian.PutUint32(params[4:8], uint32(fs.params.B))
	binary.BigEndian.PutUint32(params[8:12], uint32(fs.params.I))
	binary.BigEndian.PutUint32(params[12:16], uint32(fs.params.M))
	header = append(header, params...)

	out := append(header, fs.device.Bytes()...)
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("writing backup %s: %w", path, err)
	}
	return nil
}

// Restore reads a file produced by Backup and mounts the file system
// it describes. m is the open-file-table size to run with; like the
// Java Shell's loadFromBackup, it is a runtime knob supplied at
// restore time, not part of the backed-up image.
func Restore(path string, m int) (*FileSystem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading backup %s: %w", path, err)
	}
	if len(data) < backupHeaderSize {
		return nil, fmt.Errorf("backup %s: truncated header", path)
	}
	if string(data[0:len(backupMagic)]) != backupMagic {
		return nil, fmt.Errorf("backup %s: not a blockfs backup", path)
	}
	offset := len(backupMagic)

	var tag uuid.UUID
	if err := tag.UnmarshalBinary(data[offset : offset+16]); err != nil {
		return nil, fmt.Errorf("backup %s: bad volume tag: %w", path, err)
	}
	offset += 16

	n := int(binary.BigEndian.Uint32(data[offset : offset+4]))
	b := int(binary.BigEndian.Uint32(data[offset+4 : offset+8]))
	i := int(binary.BigEndian.Uint32(data[offset+8 : offset+12]))
	offset += 16 // skip the header's own M; the caller's m wins

	fs, err := Mount(data[offset:], n, b, m)
	if err != nil {
		return nil, fmt.Errorf("backup %s (volume %s): %w", path, tag, err)
	}
	if fs.params.I != i {
		return nil, fmt.Errorf("backup %s (volume %s): header says I=%d, superblock says I=%d", path, tag, i, fs.params.I)
	}
	return fs, nil
}
