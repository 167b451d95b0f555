package vfs

import "fmt"

// constErr is a sentinel error type for no-payload errors, the same
// pattern the teacher uses for conditions that carry no extra data.
type constErr string

func (e constErr) Error() string { return string(e) }

// ErrTooManyOpenFiles is returned by Open when the open-file table is
// full (M files are already open, slot 0 reserved for the directory).
const ErrTooManyOpenFiles = constErr("too many open files")

// NotFoundError reports that no directory entry matches Name, or that
// an open-file-table slot referenced an unopened file.
type NotFoundError struct {
	Name string
}

func (e NotFoundError) Error() string {
	if e.Name == "" {
		return "not found"
	}
	return fmt.Sprintf("file %q not found", e.Name)
}

// AlreadyExistsError reports that Create was called with a name that
// already has a directory entry.
type AlreadyExistsError struct {
	Name string
}

func (e AlreadyExistsError) Error() string {
	return fmt.Sprintf("file %q already exists", e.Name)
}

// NoSpaceError reports exhaustion of a fixed-size resource: the
// directory, the inode table, or the free-block pool.
type NoSpaceError struct {
	Resource string
}

func (e NoSpaceError) Error() string {
	return fmt.Sprintf("no free %s available", e.Resource)
}

// ReadWriteError reports a read or write that could not be satisfied
// as requested (e.g. a read running past end-of-file).
type ReadWriteError struct {
	Reason string
}

func (e ReadWriteError) Error() string {
	return fmt.Sprintf("read/write error: %s", e.Reason)
}

// OutOfRangeError reports a position or slot argument outside its
// legal bound, e.g. an lseek target past end-of-file.
type OutOfRangeError struct {
	What  string
	Value int
	Bound int
}

func (e OutOfRangeError) Error() string {
	return fmt.Sprintf("%s %d out of range [0,%d]", e.What, e.Value, e.Bound)
}
