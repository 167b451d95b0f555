package bitmap

import (
	"testing"

	"blockfs/internal/blockdev"
)

func TestInitOnlyMarksDataRegion(t *testing.T) {
	dev := blockdev.New(16, 8) // 1 bitmap block covers up to 64 bits
	fb := New(dev, 1, 1, 16)
	if err := fb.Init(5); err != nil {
		t.Fatalf("Init: %v", err)
	}
	for k := 0; k < 5; k++ {
		block, byteOff, bitOff := fb.bitLocation(k)
		data, _ := dev.ReadBlock(block)
		if (data[byteOff]>>uint(bitOff))&1 != 0 {
			t.Fatalf("metadata bit %d was set by Init", k)
		}
	}
	first, err := fb.FindFree()
	if err != nil {
		t.Fatalf("FindFree: %v", err)
	}
	if first != 5 {
		t.Fatalf("FindFree = %d, want 5 (first data block)", first)
	}
}

func TestMarkUsedRemovesFromPool(t *testing.T) {
	dev := blockdev.New(16, 8)
	fb := New(dev, 1, 1, 16)
	fb.Init(5)

	a, err := fb.FindFree()
	if err != nil || a < 0 {
		t.Fatalf("FindFree: %d, %v", a, err)
	}
	if err := fb.MarkUsed(a); err != nil {
		t.Fatalf("MarkUsed: %v", err)
	}
	b, err := fb.FindFree()
	if err != nil || b < 0 {
		t.Fatalf("FindFree: %d, %v", b, err)
	}
	if a == b {
		t.Fatalf("FindFree returned the same block (%d) twice after MarkUsed", a)
	}
}

func TestMarkFreeRestoresToPool(t *testing.T) {
	dev := blockdev.New(16, 8)
	fb := New(dev, 1, 1, 16)
	fb.Init(5)

	a, _ := fb.FindFree()
	fb.MarkUsed(a)
	if err := fb.MarkFree(a); err != nil {
		t.Fatalf("MarkFree: %v", err)
	}
	got, err := fb.FindFree()
	if err != nil {
		t.Fatalf("FindFree: %v", err)
	}
	if got != a {
		t.Fatalf("FindFree = %d after MarkFree(%d), want %d back", got, a, a)
	}
}

func TestFindFreeReturnsNegativeOneWhenExhausted(t *testing.T) {
	dev := blockdev.New(8, 4)
	fb := New(dev, 1, 1, 8)
	fb.Init(6)
	a, _ := fb.FindFree()
	fb.MarkUsed(a)
	b, _ := fb.FindFree()
	fb.MarkUsed(b)
	got, err := fb.FindFree()
	if err != nil {
		t.Fatalf("FindFree: %v", err)
	}
	if got != -1 {
		t.Fatalf("FindFree = %d, want -1 once every data block is used", got)
	}
}

func TestFindFreeIgnoresBitsPastN(t *testing.T) {
	// n=5 but the bitmap block has room for 32 bits; a stray set bit at
	// or past index 5 must not be returned.
	dev := blockdev.New(5, 4)
	fb := New(dev, 1, 1, 5)
	// Hand-set a bit at index 10, outside the valid range, directly.
	block, byteOff, bitOff := fb.bitLocation(10)
	data, _ := dev.ReadBlock(block)
	data[byteOff] |= 1 << uint(bitOff)
	dev.WriteBlock(block, data)

	got, err := fb.FindFree()
	if err != nil {
		t.Fatalf("FindFree: %v", err)
	}
	if got != -1 {
		t.Fatalf("FindFree = %d, want -1 (only out-of-range bits are set)", got)
	}
}
