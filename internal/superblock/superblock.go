// Package superblock encodes and decodes the four-field file-system header
// that lives in block 0 of the device.
package superblock

import (
	"encoding/binary"
	"fmt"
)

// FSVersion is the on-device format version this implementation writes
// and expects to find on restore.
const FSVersion int32 = 1

// Size is the byte length of the encoded fields (version, B, N, I); the
// caller zero-pads the remainder of block 0 out to B.
const Size = 16

// Superblock holds the four fields written to block 0.
type Superblock struct {
	Version int32
	B       int32
	N       int32
	I       int32
}

// VersionMismatchError reports a superblock whose version doesn't match
// FSVersion.
type VersionMismatchError struct {
	Found int32
	Want  int32
}

func (err VersionMismatchError) Error() string {
	return fmt.Sprintf("superblock version mismatch: found %d, want %d", err.Found, err.Want)
}

// Encode renders sb as a big-endian byte block of length blockSize,
// zero-padded past the four encoded fields.
func Encode(sb Superblock, blockSize int) []byte {
	block := make([]byte, blockSize)
	binary.BigEndian.PutUint32(block[0:4], uint32(sb.Version))
	binary.BigEndian.PutUint32(block[4:8], uint32(sb.B))
	binary.BigEndian.PutUint32(block[8:12], uint32(sb.N))
	binary.BigEndian.PutUint32(block[12:16], uint32(sb.I))
	return block
}

// Decode reads the four fields out of block 0. It does not check the
// version; callers that require a specific FSVersion call CheckVersion.
func Decode(block []byte) (Superblock, error) {
	if len(block) < Size {
		return Superblock{}, fmt.Errorf("decoding superblock: block is %d bytes, need at least %d", len(block), Size)
	}
	return Superblock{
		Version: int32(binary.BigEndian.Uint32(block[0:4])),
		B:       int32(binary.BigEndian.Uint32(block[4:8])),
		N:       int32(binary.BigEndian.Uint32(block[8:12])),
		I:       int32(binary.BigEndian.Uint32(block[12:16])),
	}, nil
}

// CheckVersion fails with VersionMismatchError unless sb.Version equals
// FSVersion.
func (sb Superblock) CheckVersion() error {
	if sb.Version != FSVersion {
		return VersionMismatchError{Found: sb.Version, Want: FSVersion}
	}
	return nil
}
