package vfs

import "blockfs/internal/inode"

// The directory is an ordinary file living at inode 0, always open in
// OFT slot 0. These helpers walk it as a flat array of DirEntryBytes
// records through the same read/write primitives every other file
// uses.

// DirEntry describes one live directory entry, as reported to callers
// of Directory().
type DirEntry struct {
	Name   string
	Length int32
}

// findEntry scans the directory for name, returning its slot index and
// inode index, or slot -1 if no entry matches.
func (fs *FileSystem) findEntry(name string) (slot int, inodeIndex int32, err error) {
	e := fs.oft[0]
	count := int(e.Inode.Length) / DirEntryBytes
	for i := 0; i < count; i++ {
		if err := lseek(fs, e, int32(i*DirEntryBytes)); err != nil {
			return -1, -1, err
		}
		buf, err := readAt(fs, e, DirEntryBytes)
		if err != nil {
			return -1, -1, err
		}
		if isZeroSlot(buf) {
			continue
		}
		n, idx := DecodeDirEntry(buf)
		if n == name {
			return i, idx, nil
		}
	}
	return -1, -1, nil
}

// findFreeSlot returns the index of a reusable (cleared) directory
// slot, or the index one past the last live slot if the directory
// still has room to grow, or -1 if the directory is full.
func (fs *FileSystem) findFreeSlot() (int, error) {
	e := fs.oft[0]
	count := int(e.Inode.Length) / DirEntryBytes
	for i := 0; i < count; i++ {
		if err := lseek(fs, e, int32(i*DirEntryBytes)); err != nil {
			return -1, err
		}
		buf, err := readAt(fs, e, DirEntryBytes)
		if err != nil {
			return -1, err
		}
		if isZeroSlot(buf) {
			return i, nil
		}
	}
	maxSlots := fs.params.MaxFileSize / DirEntryBytes
	if count >= maxSlots {
		return -1, nil
	}
	return count, nil
}

// writeEntry stores name/inodeIndex at the given slot, growing the
// directory through the normal write path if slot is past its current
// length.
func (fs *FileSystem) writeEntry(slot int, name string, inodeIndex int32) error {
	e := fs.oft[0]
	if err := lseek(fs, e, int32(slot*DirEntryBytes)); err != nil {
		return err
	}
	return writeAt(fs, e, EncodeDirEntry(name, inodeIndex))
}

// clearEntry zeroes a directory slot, marking it reusable, then shrinks
// the directory if that slot was trailing so its own blocks return to
// the free pool instead of being held forever.
func (fs *FileSystem) clearEntry(slot int) error {
	e := fs.oft[0]
	if err := lseek(fs, e, int32(slot*DirEntryBytes)); err != nil {
		return err
	}
	if err := writeAt(fs, e, make([]byte, DirEntryBytes)); err != nil {
		return err
	}
	return fs.compactDirectory()
}

// compactDirectory drops trailing zeroed slots from the directory's
// length and frees any of its data blocks that fall entirely past the
// new length. Without this, a destroyed entry's slot is reusable but
// the block(s) the directory grew to hold it stay allocated forever.
func (fs *FileSystem) compactDirectory() error {
	e := fs.oft[0]
	count := int(e.Inode.Length) / DirEntryBytes
	newCount := count
	for newCount > 0 {
		if err := lseek(fs, e, int32((newCount-1)*DirEntryBytes)); err != nil {
			return err
		}
		buf, err := readAt(fs, e, DirEntryBytes)
		if err != nil {
			return err
		}
		if !isZeroSlot(buf) {
			break
		}
		newCount--
	}
	if newCount == count {
		return nil
	}

	newLength := int32(newCount * DirEntryBytes)
	b := int32(fs.params.B)
	for link := 0; link < inode.Direct; link++ {
		if int32(link)*b < newLength || e.Inode.Blocks[link] == inode.Unused {
			continue
		}
		if err := fs.bitmap.MarkFree(int(e.Inode.Blocks[link])); err != nil {
			return err
		}
		e.Inode.Blocks[link] = inode.Unused
		if e.BufferedLink == int32(link) {
			e.BufferedLink = -1
			e.Modified = false
		}
	}
	e.Inode.Length = newLength
	if e.Position > newLength {
		e.Position = newLength
		e.CurrentLink = newLength / b
	}
	return fs.inodes.WriteInode(e.Inode)
}

// Directory lists every live entry, in slot order.
func (fs *FileSystem) Directory() ([]DirEntry, error) {
	e := fs.oft[0]
	count := int(e.Inode.Length) / DirEntryBytes
	var out []DirEntry
	for i := 0; i < count; i++ {
		if err := lseek(fs, e, int32(i*DirEntryBytes)); err != nil {
			return nil, err
		}
		buf, err := readAt(fs, e, DirEntryBytes)
		if err != nil {
			return nil, err
		}
		if isZeroSlot(buf) {
			continue
		}
		name, idx := DecodeDirEntry(buf)
		ino, err := fs.inodes.ReadInode(int(idx))
		if err != nil {
			return nil, err
		}
		out = append(out, DirEntry{Name: name, Length: ino.Length})
	}
	return out, nil
}
