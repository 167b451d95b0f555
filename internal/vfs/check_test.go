package vfs

import "testing"

func TestCheckCleanFileSystemHasNoViolations(t *testing.T) {
	fs := newTestFS(t)
	fs.Create("a")
	fs.Create("b")
	report := fs.Check()
	if !report.OK() {
		t.Fatalf("Check reported violations on a clean file system: %v", report.Violations)
	}
}

func TestCheckCatchesSharedBlock(t *testing.T) {
	fs := newTestFS(t)
	fs.Create("a")
	fs.Create("b")
	inoA, err := fs.inodes.ReadInode(1)
	if err != nil {
		t.Fatalf("ReadInode: %v", err)
	}
	inoB, err := fs.inodes.ReadInode(2)
	if err != nil {
		t.Fatalf("ReadInode: %v", err)
	}
	inoB.Blocks[0] = inoA.Blocks[0]
	if err := fs.inodes.WriteInode(inoB); err != nil {
		t.Fatalf("WriteInode: %v", err)
	}
	report := fs.Check()
	if report.OK() {
		t.Fatal("Check did not catch a block shared by two inodes")
	}
}

func TestStatsAccounting(t *testing.T) {
	fs := newTestFS(t)
	before, err := fs.Stats()
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	fs.Create("a")
	after, err := fs.Stats()
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	// The first Create also grows the empty directory into its first
	// data block, so it costs two blocks: the file's and the directory's.
	if after.FreeBlocks != before.FreeBlocks-2 {
		t.Fatalf("FreeBlocks after one Create = %d, want %d", after.FreeBlocks, before.FreeBlocks-2)
	}
	if after.FreeInodes != before.FreeInodes-1 {
		t.Fatalf("FreeInodes after one Create = %d, want %d", after.FreeInodes, before.FreeInodes-1)
	}
}
