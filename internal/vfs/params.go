package vfs

import "blockfs/internal/inode"

// Params are the immutable, caller-supplied parameters of a file system:
// block size, block count, inode count, and the open-file-table size.
// Derived fields are computed once, the way fs/pkg/fs/superblock.go
// derives its block-bitmap/inode-table offsets from BlockSize and
// BlockCount.
type Params struct {
	B int
	N int
	I int
	M int

	// BitmapBlocks is ⌈N / (8·B)⌉.
	BitmapBlocks int
	// InodeBlocks is ⌈I·INODE_SIZE / B⌉.
	InodeBlocks int
	// DataStart is the first block index available for file data.
	DataStart int
	// MaxFileSize is min(B·INODE_DIRECT, math.MaxInt32).
	MaxFileSize int
}

const maxInt32 = 1<<31 - 1

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

// NewParams computes the derived fields for a file system of the given
// block size, block count, inode count, and open-file-table size.
func NewParams(b, n, i, m int) Params {
	bitmapBlocks := ceilDiv(n, 8*b)
	inodeBlocks := ceilDiv(i*inode.Size, b)
	maxFileSize := b * inode.Direct
	if maxFileSize > maxInt32 {
		maxFileSize = maxInt32
	}
	return Params{
		B:            b,
		N:            n,
		I:            i,
		M:            m,
		BitmapBlocks: bitmapBlocks,
		InodeBlocks:  inodeBlocks,
		DataStart:    1 + bitmapBlocks + inodeBlocks,
		MaxFileSize:  maxFileSize,
	}
}
