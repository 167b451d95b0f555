package vfs

import (
	"fmt"

	"blockfs/internal/inode"
)

// CheckReport is the result of Check: a consistency sweep over the
// inode table, the free-block bitmap, the open-file table, and the
// directory.
type CheckReport struct {
	Violations []string
}

// OK reports whether the sweep found no violations.
func (r CheckReport) OK() bool { return len(r.Violations) == 0 }

// Check walks every allocated inode, the open-file table and the
// directory, flagging:
//   - a data block referenced by more than one inode
//   - a block pointer used in a slot after an earlier Unused slot
//     (direct pointers must be contiguous from slot 0)
//   - a block pointer outside the device, or to a block the bitmap
//     does not mark used
//   - an open-file entry whose position is past its file's length
//   - a directory entry pointing at an inode that is not allocated
//   - two directory entries with the same name
func (fs *FileSystem) Check() CheckReport {
	var violations []string
	owner := map[int32]int{}

	for i := 0; i < fs.params.I; i++ {
		ino, err := fs.inodes.ReadInode(i)
		if err != nil {
			violations = append(violations, fmt.Sprintf("inode %d: %v", i, err))
			continue
		}
		if ino.Length == inode.Free {
			continue
		}
		seenUnused := false
		for _, b := range ino.Blocks {
			if b == inode.Unused {
				seenUnused = true
				continue
			}
			if seenUnused {
				violations = append(violations, fmt.Sprintf("inode %d: block pointer after an unused slot", i))
			}
			if prev, ok := owner[b]; ok {
				violations = append(violations, fmt.Sprintf("block %d referenced by inodes %d and %d", b, prev, i))
			} else {
				owner[b] = i
			}
			if b < 0 || int(b) >= fs.params.N {
				violations = append(violations, fmt.Sprintf("inode %d: block pointer %d out of range", i, b))
			} else if free, err := fs.bitmap.IsFree(int(b)); err != nil || free {
				violations = append(violations, fmt.Sprintf("block %d referenced by inode %d is not marked used in the bitmap", b, i))
			}
		}
	}

	for slot, e := range fs.oft {
		if e != nil && e.Position > e.Inode.Length {
			violations = append(violations, fmt.Sprintf("open file slot %d: position %d past length %d", slot, e.Position, e.Inode.Length))
		}
	}

	entries, err := fs.Directory()
	if err != nil {
		violations = append(violations, fmt.Sprintf("reading directory: %v", err))
		return CheckReport{Violations: violations}
	}
	names := map[string]bool{}
	for _, e := range entries {
		if e.Length == inode.Free {
			violations = append(violations, fmt.Sprintf("directory entry %q points at a free inode", e.Name))
		}
		if names[e.Name] {
			violations = append(violations, fmt.Sprintf("duplicate directory entry %q", e.Name))
		}
		names[e.Name] = true
	}

	return CheckReport{Violations: violations}
}

// Stats is the result of Stats: free-space accounting, the way `df`
// reports it.
type Stats struct {
	TotalBlocks int
	DataBlocks  int
	FreeBlocks  int
	TotalInodes int
	FreeInodes  int
}

// Stats reports free-space accounting across the bitmap and inode
// table.
func (fs *FileSystem) Stats() (Stats, error) {
	s := Stats{
		TotalBlocks: fs.params.N,
		DataBlocks:  fs.params.N - fs.params.DataStart,
		TotalInodes: fs.params.I,
	}
	free := 0
	for k := fs.params.DataStart; k < fs.params.N; k++ {
		isFree, err := fs.bitmap.IsFree(k)
		if err != nil {
			return Stats{}, err
		}
		if isFree {
			free++
		}
	}
	s.FreeBlocks = free

	for i := 0; i < fs.params.I; i++ {
		ino, err := fs.inodes.ReadInode(i)
		if err != nil {
			return Stats{}, err
		}
		if ino.Length == inode.Free {
			s.FreeInodes++
		}
	}
	return s, nil
}
