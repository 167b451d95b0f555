package blockdev

import (
	"bytes"
	"testing"
)

func TestReadWriteRoundTrip(t *testing.T) {
	d := New(4, 8)
	data := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	if err := d.WriteBlock(2, data); err != nil {
		t.Fatalf("WriteBlock: %v", err)
	}
	got, err := d.ReadBlock(2)
	if err != nil {
		t.Fatalf("ReadBlock: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Fatalf("got %v, want %v", got, data)
	}
}

func TestReadBlockReturnsCopy(t *testing.T) {
	d := New(2, 4)
	if err := d.WriteBlock(0, []byte{1, 2, 3, 4}); err != nil {
		t.Fatalf("WriteBlock: %v", err)
	}
	got, err := d.ReadBlock(0)
	if err != nil {
		t.Fatalf("ReadBlock: %v", err)
	}
	got[0] = 0xFF
	again, err := d.ReadBlock(0)
	if err != nil {
		t.Fatalf("ReadBlock: %v", err)
	}
	if again[0] != 1 {
		t.Fatalf("mutating a returned block leaked into the device: %v", again)
	}
}

func TestOutOfRange(t *testing.T) {
	d := New(2, 4)
	if _, err := d.ReadBlock(2); err == nil {
		t.Fatal("expected OutOfRangeError, got nil")
	} else if _, ok := err.(OutOfRangeError); !ok {
		t.Fatalf("expected OutOfRangeError, got %T: %v", err, err)
	}
	if err := d.WriteBlock(-1, make([]byte, 4)); err == nil {
		t.Fatal("expected OutOfRangeError, got nil")
	}
}

func TestSizeMismatch(t *testing.T) {
	d := New(2, 4)
	err := d.WriteBlock(0, []byte{1, 2, 3})
	if _, ok := err.(SizeMismatchError); !ok {
		t.Fatalf("expected SizeMismatchError, got %T: %v", err, err)
	}
}

func TestFromBytesRoundTrip(t *testing.T) {
	d := New(3, 4)
	d.WriteBlock(1, []byte{9, 9, 9, 9})
	raw := d.Bytes()

	restored, err := FromBytes(3, 4, raw)
	if err != nil {
		t.Fatalf("FromBytes: %v", err)
	}
	got, err := restored.ReadBlock(1)
	if err != nil {
		t.Fatalf("ReadBlock: %v", err)
	}
	if !bytes.Equal(got, []byte{9, 9, 9, 9}) {
		t.Fatalf("got %v", got)
	}
}

func TestFromBytesSizeMismatch(t *testing.T) {
	if _, err := FromBytes(2, 4, make([]byte, 7)); err == nil {
		t.Fatal("expected error for mismatched buffer length")
	}
}
