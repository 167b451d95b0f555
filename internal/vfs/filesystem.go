// Package vfs implements the single-level file system on top of a
// block device: superblock, free-block bitmap, inode table, directory,
// and the open-file table that every read/write/seek operation goes
// through.
package vfs

import (
	"fmt"

	"blockfs/internal/bitmap"
	"blockfs/internal/blockdev"
	"blockfs/internal/inode"
	"blockfs/internal/superblock"
)

// FileSystem is the mounted, in-memory view of a block device: the
// superblock's derived Params, the free-block bitmap, the inode table,
// and an open-file table of size M+1 (slot 0 reserved for the
// directory).
type FileSystem struct {
	params Params
	device *blockdev.BlockDevice
	bitmap *bitmap.FreeBitmap
	inodes *inode.Table
	oft    []*OpenFileEntry
}

// New formats a fresh block device of the given Params: it writes the
// superblock, initializes the free-block bitmap, frees every inode,
// and creates the empty directory at inode 0.
func New(params Params) (*FileSystem, error) {
	dev := blockdev.New(params.N, params.B)

	sb := superblock.Superblock{
		Version: superblock.FSVersion,
		B:       int32(params.B),
		N:       int32(params.N),
		I:       int32(params.I),
	}
	if err := dev.WriteBlock(0, superblock.Encode(sb, params.B)); err != nil {
		return nil, fmt.Errorf("writing superblock: %w", err)
	}

	fb := bitmap.New(dev, 1, params.BitmapBlocks, params.N)
	if err := fb.Init(params.DataStart); err != nil {
		return nil, fmt.Errorf("initializing free-block bitmap: %w", err)
	}

	itable := inode.New(dev, 1+params.BitmapBlocks, params.I)
	for i := 0; i < params.I; i++ {
		if err := itable.WriteInode(inode.NewFree(int32(i))); err != nil {
			return nil, fmt.Errorf("initializing inode %d: %w", i, err)
		}
	}

	dirIno := inode.Inode{Index: 0, Length: 0, Blocks: [inode.Direct]int32{inode.Unused, inode.Unused, inode.Unused}}
	if err := itable.WriteInode(dirIno); err != nil {
		return nil, fmt.Errorf("initializing directory inode: %w", err)
	}

	fs := &FileSystem{
		params: params,
		device: dev,
		bitmap: fb,
		inodes: itable,
		oft:    make([]*OpenFileEntry, params.M+1),
	}
	fs.oft[0] = newOpenFileEntry(params.B, 0, dirIno)
	return fs, nil
}

// Mount rebuilds a FileSystem from a raw device image, the way it
// would look right after a process restart: decode and version-check
// the superblock, re-derive Params from it, and re-open the directory
// at slot 0. m is the open-file-table size to run with; it is not
// itself persisted on the device.
func Mount(image []byte, n, b, m int) (*FileSystem, error) {
	dev, err := blockdev.FromBytes(n, b, image)
	if err != nil {
		return nil, fmt.Errorf("mounting: %w", err)
	}
	block0, err := dev.ReadBlock(0)
	if err != nil {
		return nil, fmt.Errorf("mounting: %w", err)
	}
	sb, err := superblock.Decode(block0)
	if err != nil {
		return nil, fmt.Errorf("mounting: %w", err)
	}
	if err := sb.CheckVersion(); err != nil {
		return nil, err
	}

	params := NewParams(int(sb.B), int(sb.N), int(sb.I), m)
	fb := bitmap.New(dev, 1, params.BitmapBlocks, params.N)
	itable := inode.New(dev, 1+params.BitmapBlocks, params.I)

	dirIno, err := itable.ReadInode(0)
	if err != nil {
		return nil, fmt.Errorf("mounting: reading directory inode: %w", err)
	}

	fs := &FileSystem{
		params: params,
		device: dev,
		bitmap: fb,
		inodes: itable,
		oft:    make([]*OpenFileEntry, params.M+1),
	}
	fs.oft[0] = newOpenFileEntry(params.B, 0, dirIno)
	return fs, nil
}

// Params returns the file system's parameters.
func (fs *FileSystem) Params() Params { return fs.params }

// Create allocates an inode and one data block for a new, empty file
// named name and adds it to the directory.
func (fs *FileSystem) Create(name string) error {
	slot, _, err := fs.findEntry(name)
	if err != nil {
		return err
	}
	if slot != -1 {
		return AlreadyExistsError{Name: name}
	}

	dirSlot, err := fs.findFreeSlot()
	if err != nil {
		return err
	}
	if dirSlot == -1 {
		return NoSpaceError{Resource: "directory entries"}
	}

	inodeIdx := -1
	for i := 0; i < fs.params.I; i++ {
		ino, err := fs.inodes.ReadInode(i)
		if err != nil {
			return err
		}
		if ino.Length == inode.Free {
			inodeIdx = i
			break
		}
	}
	if inodeIdx == -1 {
		return NoSpaceError{Resource: "inodes"}
	}

	dataBlock, err := fs.bitmap.FindFree()
	if err != nil {
		return err
	}
	if dataBlock == -1 {
		return NoSpaceError{Resource: "data blocks"}
	}
	if err := fs.bitmap.MarkUsed(dataBlock); err != nil {
		return err
	}

	ino := inode.Inode{
		Index:  int32(inodeIdx),
		Length: 0,
		Blocks: [inode.Direct]int32{int32(dataBlock), inode.Unused, inode.Unused},
	}
	if err := fs.inodes.WriteInode(ino); err != nil {
		return err
	}
	return fs.writeEntry(dirSlot, name, int32(inodeIdx))
}

// findOpenSlotByInode returns the user slot (1..M) currently holding
// inodeIndex open, or -1 if none.
func (fs *FileSystem) findOpenSlotByInode(inodeIndex int32) int {
	for i := 1; i <= fs.params.M; i++ {
		if fs.oft[i] != nil && fs.oft[i].InodeIndex == inodeIndex {
			return i
		}
	}
	return -1
}

// Destroy removes name's directory entry, closing it first if open,
// and returns its inode and data blocks to their free pools.
func (fs *FileSystem) Destroy(name string) error {
	slot, inodeIdx, err := fs.findEntry(name)
	if err != nil {
		return err
	}
	if slot == -1 {
		return NotFoundError{Name: name}
	}

	ino, err := fs.inodes.ReadInode(int(inodeIdx))
	if err != nil {
		return err
	}

	if openSlot := fs.findOpenSlotByInode(inodeIdx); openSlot != -1 {
		if err := fs.Close(openSlot); err != nil {
			return err
		}
	}

	if err := fs.clearEntry(slot); err != nil {
		return err
	}
	if err := fs.inodes.WriteInode(inode.NewFree(inodeIdx)); err != nil {
		return err
	}
	for _, b := range ino.Blocks {
		if b == inode.Unused {
			continue
		}
		if err := fs.bitmap.MarkFree(int(b)); err != nil {
			return err
		}
	}
	return nil
}

// Open finds a free user slot (1..M) and loads name's inode into it.
func (fs *FileSystem) Open(name string) (int, error) {
	slot, inodeIdx, err := fs.findEntry(name)
	if err != nil {
		return -1, err
	}
	if slot == -1 {
		return -1, NotFoundError{Name: name}
	}
	ino, err := fs.inodes.ReadInode(int(inodeIdx))
	if err != nil {
		return -1, err
	}

	oftSlot := -1
	for i := 1; i <= fs.params.M; i++ {
		if fs.oft[i] == nil {
			oftSlot = i
			break
		}
	}
	if oftSlot == -1 {
		return -1, ErrTooManyOpenFiles
	}
	fs.oft[oftSlot] = newOpenFileEntry(fs.params.B, inodeIdx, ino)
	return oftSlot, nil
}

// Close flushes and releases a user slot. Slot 0, the directory, can
// never be closed.
func (fs *FileSystem) Close(slot int) error {
	e, err := fs.userEntry(slot)
	if err != nil {
		return err
	}
	if err := flushEntry(fs, e); err != nil {
		return err
	}
	if err := fs.inodes.WriteInode(e.Inode); err != nil {
		return fmt.Errorf("persisting inode on close: %w", err)
	}
	fs.oft[slot] = nil
	return nil
}

// Read reads exactly count bytes from slot, starting at its cursor, and
// fails if that would run past the end of the file.
func (fs *FileSystem) Read(slot, count int) ([]byte, error) {
	if count < 0 {
		return nil, OutOfRangeError{What: "read count", Value: count, Bound: 0}
	}
	e, err := fs.userEntry(slot)
	if err != nil {
		return nil, err
	}
	return readAt(fs, e, count)
}

// Write writes src to slot starting at its cursor, refusing writes
// that would grow the file past MaxFileSize.
func (fs *FileSystem) Write(slot int, src []byte) error {
	e, err := fs.userEntry(slot)
	if err != nil {
		return err
	}
	if int(e.Position)+len(src) > fs.params.MaxFileSize {
		return ReadWriteError{Reason: "write would exceed maximum file size"}
	}
	return writeAt(fs, e, src)
}

// Lseek repositions slot's cursor to pos, which must be within
// [0, current file length].
func (fs *FileSystem) Lseek(slot, pos int) error {
	e, err := fs.userEntry(slot)
	if err != nil {
		return err
	}
	return lseek(fs, e, int32(pos))
}

func (fs *FileSystem) userEntry(slot int) (*OpenFileEntry, error) {
	if slot <= 0 || slot > fs.params.M {
		return nil, NotFoundError{}
	}
	e := fs.oft[slot]
	if e == nil {
		return nil, NotFoundError{}
	}
	return e, nil
}
