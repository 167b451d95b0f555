// Package inode implements the fixed-size inode table: packed 16-byte
// records that may straddle two device blocks.
package inode

import (
	"encoding/binary"
	"fmt"

	"blockfs/internal/blockdev"
)

// Direct is the number of direct block pointers per inode.
const Direct = 3

// Size is the encoded byte length of one inode: one i32 length followed
// by Direct i32 block pointers.
const Size = 4 + 4*Direct

// Free is the length sentinel marking an inode as unallocated.
const Free int32 = -1

// Unused is the block-pointer sentinel marking a direct slot as unused.
const Unused int32 = -1

// Inode is a plain value: length plus direct block pointers. It carries
// no behavior of its own; reading and writing it is the Table's job.
type Inode struct {
	Index  int32
	Length int32
	Blocks [Direct]int32
}

// NewFree returns a free inode with the given index.
func NewFree(index int32) Inode {
	ino := Inode{Index: index, Length: Free}
	for i := range ino.Blocks {
		ino.Blocks[i] = Unused
	}
	return ino
}

// Encode renders an inode's fields (not its index, which is positional)
// as Size big-endian bytes.
func Encode(ino Inode) []byte {
	buf := make([]byte, Size)
	binary.BigEndian.PutUint32(buf[0:4], uint32(ino.Length))
	for i, b := range ino.Blocks {
		off := 4 + 4*i
		binary.BigEndian.PutUint32(buf[off:off+4], uint32(b))
	}
	return buf
}

// Decode parses Size big-endian bytes into an inode with the given index.
func Decode(buf []byte, index int32) (Inode, error) {
	if len(buf) != Size {
		return Inode{}, fmt.Errorf("decoding inode %d: need %d bytes, got %d", index, Size, len(buf))
	}
	ino := Inode{Index: index, Length: int32(binary.BigEndian.Uint32(buf[0:4]))}
	for i := range ino.Blocks {
		off := 4 + 4*i
		ino.Blocks[i] = int32(binary.BigEndian.Uint32(buf[off : off+4]))
	}
	return ino, nil
}

// Table is the on-device inode table: Count fixed-size records packed
// into device blocks starting at StartBlock. It caches nothing; the
// device is always the authoritative copy.
type Table struct {
	dev        *blockdev.BlockDevice
	startBlock int
	count      int
}

// New wraps the device's inode-table region as a Table of count inodes
// starting at startBlock.
func New(dev *blockdev.BlockDevice, startBlock, count int) *Table {
	return &Table{dev: dev, startBlock: startBlock, count: count}
}

// Count returns the number of inodes in the table.
func (t *Table) Count() int { return t.count }

// offsets locates inode k: block1 holds its first byte at
// offsetInBlock1 and lengthInBlock1 of its bytes; block2 is the next
// block, holding the remaining lengthInBlock2 bytes. lengthInBlock2 is
// 0 when the inode fits entirely in block1.
func (t *Table) offsets(k int) (block1, offsetInBlock1, lengthInBlock1, block2, lengthInBlock2 int) {
	b := t.dev.B()
	byteOffset := k * Size
	block1 = t.startBlock + byteOffset/b
	offsetInBlock1 = byteOffset % b
	block2 = block1 + 1
	if offsetInBlock1+Size <= b {
		lengthInBlock1 = Size
		lengthInBlock2 = 0
		return
	}
	lengthInBlock1 = b - offsetInBlock1
	lengthInBlock2 = Size - lengthInBlock1
	return
}

// ReadInode reads and decodes inode k, which may straddle two blocks.
func (t *Table) ReadInode(k int) (Inode, error) {
	if k < 0 || k >= t.count {
		return Inode{}, blockdev.OutOfRangeError{Index: k, Bound: t.count}
	}
	block1, offsetInBlock1, lengthInBlock1, block2, lengthInBlock2 := t.offsets(k)

	data1, err := t.dev.ReadBlock(block1)
	if err != nil {
		return Inode{}, fmt.Errorf("reading inode %d: %w", k, err)
	}
	buf := make([]byte, Size)
	copy(buf, data1[offsetInBlock1:offsetInBlock1+lengthInBlock1])

	if lengthInBlock2 != 0 {
		data2, err := t.dev.ReadBlock(block2)
		if err != nil {
			return Inode{}, fmt.Errorf("reading inode %d: %w", k, err)
		}
		copy(buf[lengthInBlock1:], data2[0:lengthInBlock2])
	}

	return Decode(buf, int32(k))
}

// WriteInode read-modify-writes the one or two blocks that hold inode
// ino.Index.
func (t *Table) WriteInode(ino Inode) error {
	k := int(ino.Index)
	if k < 0 || k >= t.count {
		return blockdev.OutOfRangeError{Index: k, Bound: t.count}
	}
	block1, offsetInBlock1, lengthInBlock1, block2, lengthInBlock2 := t.offsets(k)
	encoded := Encode(ino)

	data1, err := t.dev.ReadBlock(block1)
	if err != nil {
		return fmt.Errorf("writing inode %d: %w", k, err)
	}
	copy(data1[offsetInBlock1:offsetInBlock1+lengthInBlock1], encoded[0:lengthInBlock1])
	if err := t.dev.WriteBlock(block1, data1); err != nil {
		return fmt.Errorf("writing inode %d: %w", k, err)
	}

	if lengthInBlock2 != 0 {
		data2, err := t.dev.ReadBlock(block2)
		if err != nil {
			return fmt.Errorf("writing inode %d: %w", k, err)
		}
		copy(data2[0:lengthInBlock2], encoded[lengthInBlock1:])
		if err := t.dev.WriteBlock(block2, data2); err != nil {
			return fmt.Errorf("writing inode %d: %w", k, err)
		}
	}
	return nil
}
