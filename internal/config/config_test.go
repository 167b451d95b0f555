package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFromYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "blockfs.yaml")
	contents := "blockSize: 64\nblockCount: 64\ninodeCount: 24\nmaxOpenFiles: 5\nimagePath: /tmp/vol.bfs\n"
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.B != 64 || c.N != 64 || c.I != 24 || c.M != 5 || c.ImagePath != "/tmp/vol.bfs" {
		t.Fatalf("Load = %+v, want B=64 N=64 I=24 M=5 ImagePath=/tmp/vol.bfs", c)
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestLoadMissingFileFallsBackToEnv(t *testing.T) {
	os.Setenv("BLOCKFS_B", "32")
	os.Setenv("BLOCKFS_N", "128")
	os.Setenv("BLOCKFS_I", "16")
	os.Setenv("BLOCKFS_M", "3")
	os.Setenv("BLOCKFS_IMAGE", "/tmp/env.bfs")
	defer func() {
		os.Unsetenv("BLOCKFS_B")
		os.Unsetenv("BLOCKFS_N")
		os.Unsetenv("BLOCKFS_I")
		os.Unsetenv("BLOCKFS_M")
		os.Unsetenv("BLOCKFS_IMAGE")
	}()

	c, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.B != 32 || c.N != 128 || c.I != 16 || c.M != 3 {
		t.Fatalf("Load from env = %+v, want B=32 N=128 I=16 M=3", c)
	}
}

func TestValidateRejectsTooSmallBlockSize(t *testing.T) {
	c := Config{B: 4, N: 8, I: 4, M: 1, ImagePath: "x"}
	if err := c.Validate(); err == nil {
		t.Fatal("expected Validate to reject a block size smaller than the superblock/inode")
	}
}

func TestValidateRejectsZeroCounts(t *testing.T) {
	c := Config{B: 64, N: 0, I: 4, M: 1, ImagePath: "x"}
	if err := c.Validate(); err == nil {
		t.Fatal("expected Validate to reject a zero block count")
	}
}
