package vfs

import (
	"fmt"

	"blockfs/internal/inode"
)

// OpenFileEntry is one slot of the open-file table: an inode pulled
// into memory, a cursor, and a one-block read/write buffer. Slot 0 is
// always the directory; slots 1..M serve Open/Close.
type OpenFileEntry struct {
	InodeIndex   int32
	Inode        inode.Inode
	Position     int32
	CurrentLink  int32 // which of Inode.Blocks the cursor currently falls in
	BufferedLink int32 // which of Inode.Blocks Buffer currently holds, -1 if none
	Buffer       []byte
	Modified     bool
}

func newOpenFileEntry(b int, idx int32, ino inode.Inode) *OpenFileEntry {
	return &OpenFileEntry{
		InodeIndex:   idx,
		Inode:        ino,
		Position:     0,
		CurrentLink:  0,
		BufferedLink: -1,
		Buffer:       make([]byte, b),
	}
}

// loadCurrentBlock flushes a modified buffer, then loads (allocating if
// necessary) the block backing e.CurrentLink into e.Buffer.
func loadCurrentBlock(fs *FileSystem, e *OpenFileEntry) error {
	if e.Modified {
		if err := fs.device.WriteBlock(int(e.Inode.Blocks[e.BufferedLink]), e.Buffer); err != nil {
			return fmt.Errorf("flushing buffered block: %w", err)
		}
		e.Modified = false
	}

	link := e.CurrentLink
	if e.Inode.Blocks[link] != inode.Unused {
		data, err := fs.device.ReadBlock(int(e.Inode.Blocks[link]))
		if err != nil {
			return fmt.Errorf("loading block: %w", err)
		}
		e.Buffer = data
	} else {
		idx, err := fs.bitmap.FindFree()
		if err != nil {
			return fmt.Errorf("allocating block: %w", err)
		}
		if idx == -1 {
			e.Inode.Length = e.Position
			if err := fs.inodes.WriteInode(e.Inode); err != nil {
				return fmt.Errorf("persisting inode length after allocation failure: %w", err)
			}
			return ReadWriteError{Reason: "no free space"}
		}
		if err := fs.bitmap.MarkUsed(idx); err != nil {
			return fmt.Errorf("marking block used: %w", err)
		}
		e.Inode.Blocks[link] = int32(idx)
		if err := fs.inodes.WriteInode(e.Inode); err != nil {
			return fmt.Errorf("persisting inode: %w", err)
		}
		e.Buffer = make([]byte, fs.params.B)
	}
	e.BufferedLink = link
	return nil
}

// readAt reads count bytes starting at e.Position, advancing the
// cursor. It fails if the read would run past e.Inode.Length.
func readAt(fs *FileSystem, e *OpenFileEntry, count int) ([]byte, error) {
	if e.Position+int32(count) > e.Inode.Length {
		return nil, ReadWriteError{Reason: "read runs past end of file"}
	}
	out := make([]byte, 0, count)
	remaining := count
	for remaining > 0 {
		if e.CurrentLink != e.BufferedLink {
			if err := loadCurrentBlock(fs, e); err != nil {
				return nil, err
			}
		}
		offsetInBlock := int(e.Position) % fs.params.B
		n := fs.params.B - offsetInBlock
		if n > remaining {
			n = remaining
		}
		out = append(out, e.Buffer[offsetInBlock:offsetInBlock+n]...)
		e.Position += int32(n)
		e.CurrentLink = e.Position / int32(fs.params.B)
		remaining -= n
	}
	return out, nil
}

// writeAt writes src starting at e.Position, advancing the cursor and
// growing e.Inode.Length as needed. Callers are responsible for
// enforcing MaxFileSize before calling.
func writeAt(fs *FileSystem, e *OpenFileEntry, src []byte) error {
	remaining := len(src)
	srcPos := 0
	for remaining > 0 {
		if e.CurrentLink != e.BufferedLink {
			if err := loadCurrentBlock(fs, e); err != nil {
				return err
			}
		}
		offsetInBlock := int(e.Position) % fs.params.B
		n := fs.params.B - offsetInBlock
		if n > remaining {
			n = remaining
		}
		copy(e.Buffer[offsetInBlock:offsetInBlock+n], src[srcPos:srcPos+n])
		e.Modified = true
		e.Position += int32(n)
		srcPos += n
		remaining -= n
		e.CurrentLink = e.Position / int32(fs.params.B)
	}
	if e.Position > e.Inode.Length {
		e.Inode.Length = e.Position
	}
	if err := fs.inodes.WriteInode(e.Inode); err != nil {
		return fmt.Errorf("persisting inode after write: %w", err)
	}
	return nil
}

// lseek repositions e.Position, which must land in [0, e.Inode.Length].
func lseek(fs *FileSystem, e *OpenFileEntry, pos int32) error {
	if pos < 0 || pos > e.Inode.Length {
		return OutOfRangeError{What: "seek position", Value: int(pos), Bound: int(e.Inode.Length)}
	}
	e.Position = pos
	e.CurrentLink = pos / int32(fs.params.B)
	return nil
}

// flushEntry writes back a modified buffer without closing the slot.
func flushEntry(fs *FileSystem, e *OpenFileEntry) error {
	if !e.Modified {
		return nil
	}
	if err := fs.device.WriteBlock(int(e.Inode.Blocks[e.BufferedLink]), e.Buffer); err != nil {
		return fmt.Errorf("flushing block: %w", err)
	}
	e.Modified = false
	return nil
}
