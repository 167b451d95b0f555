package vfs

import "testing"

func TestEncodeDecodeDirEntryRoundTrip(t *testing.T) {
	buf := EncodeDirEntry("abcd", 7)
	if len(buf) != DirEntryBytes {
		t.Fatalf("encoded entry is %d bytes, want %d", len(buf), DirEntryBytes)
	}
	name, idx := DecodeDirEntry(buf)
	if name != "abcd" || idx != 7 {
		t.Fatalf("got (%q, %d), want (\"abcd\", 7)", name, idx)
	}
}

func TestEncodeDirEntryTruncatesLongNames(t *testing.T) {
	buf := EncodeDirEntry("abcdefgh", 1)
	name, _ := DecodeDirEntry(buf)
	if name != "abcd" {
		t.Fatalf("name = %q, want truncated to %q", name, "abcd")
	}
}

func TestEncodeDirEntryPadsShortNames(t *testing.T) {
	buf := EncodeDirEntry("a", 2)
	name, idx := DecodeDirEntry(buf)
	if name != "a" || idx != 2 {
		t.Fatalf("got (%q, %d), want (\"a\", 2)", name, idx)
	}
}

func TestIsZeroSlot(t *testing.T) {
	if !isZeroSlot(make([]byte, DirEntryBytes)) {
		t.Fatal("all-zero slot should be reported as zero")
	}
	if isZeroSlot(EncodeDirEntry("a", 0)) {
		t.Fatal("a named entry at inode 0 should not be reported as zero")
	}
}
