package vfs

import "encoding/binary"

// NameBytes is the fixed width of a directory entry's symbolic name.
const NameBytes = 4

// DirEntryBytes is the encoded size of one directory entry: NameBytes
// of name followed by a big-endian i32 inode index.
const DirEntryBytes = NameBytes + 4

// EncodeDirEntry packs a name and inode index into a DirEntryBytes
// slot. Names longer than NameBytes are truncated; names shorter are
// zero-padded.
func EncodeDirEntry(name string, inodeIndex int32) []byte {
	buf := make([]byte, DirEntryBytes)
	copy(buf[0:NameBytes], name)
	binary.BigEndian.PutUint32(buf[NameBytes:], uint32(inodeIndex))
	return buf
}

// DecodeDirEntry unpacks a DirEntryBytes slot. The name is read up to
// its first zero byte or NameBytes, whichever comes first.
func DecodeDirEntry(buf []byte) (name string, inodeIndex int32) {
	end := 0
	for end < NameBytes && buf[end] != 0 {
		end++
	}
	name = string(buf[0:end])
	inodeIndex = int32(binary.BigEndian.Uint32(buf[NameBytes:]))
	return name, inodeIndex
}

// isZeroSlot reports whether a directory slot is empty: never written,
// or zeroed by clearEntry (all-zero name and inode index 0 is otherwise
// indistinguishable from
// a legitimate entry pointing at inode 0, but inode 0 is always the
// directory itself and can never appear as a directory entry).
func isZeroSlot(buf []byte) bool {
	for _, b := range buf {
		if b != 0 {
			return false
		}
	}
	return true
}
