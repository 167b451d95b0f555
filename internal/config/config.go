// Package config loads file-system startup parameters from a YAML
// properties file with environment-variable overrides, the way
// cmd/auth/config.go in the teacher corpus loads its own Config.
package config

import (
	"fmt"
	"io/ioutil"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"blockfs/internal/inode"
	"blockfs/internal/superblock"
)

const envVarPrefix = "BLOCKFS"

// Config is the startup shape of `in properties <file>`: block size,
// block count, inode count, open-file-table size, and the backing
// image path, each overridable by a BLOCKFS_* environment variable.
type Config struct {
	B         int    `envconfig:"BLOCKFS_B"     yaml:"blockSize"`
	N         int    `envconfig:"BLOCKFS_N"     yaml:"blockCount"`
	I         int    `envconfig:"BLOCKFS_I"     yaml:"inodeCount"`
	M         int    `envconfig:"BLOCKFS_M"     yaml:"maxOpenFiles"`
	ImagePath string `envconfig:"BLOCKFS_IMAGE" yaml:"imagePath"`
}

// Load reads path as a YAML properties file, then applies any
// BLOCKFS_* environment variable overrides on top. A missing file is
// not an error; it just means every field comes from the environment
// (or defaults, which Validate then catches).
func Load(path string) (*Config, error) {
	var c Config
	data, err := ioutil.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
	} else if err := yaml.UnmarshalStrict(data, &c); err != nil {
		return nil, fmt.Errorf("unmarshaling config file %s: %w", path, err)
	}

	if err := envconfig.Process(envVarPrefix, &c); err != nil {
		return nil, fmt.Errorf("parsing environment variables: %w", err)
	}
	return &c, nil
}

// Validate checks the structural constraints from FileSystemParams:
// B must be large enough to hold both a superblock and an inode, and
// every count must be positive.
func (c *Config) Validate() error {
	minB := superblock.Size
	if inode.Size > minB {
		minB = inode.Size
	}
	if c.B < minB {
		return fmt.Errorf("blockSize %d is smaller than the minimum %d", c.B, minB)
	}
	if c.N <= 0 {
		return fmt.Errorf("blockCount must be positive, got %d", c.N)
	}
	if c.I <= 0 {
		return fmt.Errorf("inodeCount must be positive, got %d", c.I)
	}
	if c.M <= 0 {
		return fmt.Errorf("maxOpenFiles must be positive, got %d", c.M)
	}
	if c.ImagePath == "" {
		return fmt.Errorf("imagePath must not be empty")
	}
	return nil
}
