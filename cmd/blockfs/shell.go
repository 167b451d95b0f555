package main

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"

	"blockfs/internal/config"
	"blockfs/internal/vfs"
)

// Shell is a command line dispatcher over the file system simulator,
// grounded on original_source/Shell.java's Scanner-based run() loop:
// one whitespace-delimited token at a time, one command per line of
// output.
type Shell struct {
	tokens *bufio.Scanner
	out    io.Writer
	fs     *vfs.FileSystem
}

// NewShell wraps a token source and an output sink, switching tokens to
// whitespace splitting (bufio.ScanWords).
func NewShell(tokens *bufio.Scanner, out io.Writer) *Shell {
	tokens.Split(bufio.ScanWords)
	return &Shell{tokens: tokens, out: out}
}

func (sh *Shell) next() string {
	if !sh.tokens.Scan() {
		return ""
	}
	return sh.tokens.Text()
}

func (sh *Shell) nextInt() (int, error) {
	tok := sh.next()
	n, err := strconv.Atoi(tok)
	if err != nil {
		return 0, fmt.Errorf("expected an integer, got %q", tok)
	}
	return n, nil
}

func (sh *Shell) printf(format string, args ...interface{}) {
	fmt.Fprintf(sh.out, format, args...)
}

// Run dispatches commands until "exit" or the input is exhausted.
func (sh *Shell) Run() {
	sh.printf("File System Simulator v1.0\n")
	for {
		sh.printf("FS> ")
		command := sh.next()
		if command == "" {
			return
		}
		switch command {
		case "in":
			sh.load()
		case "sv":
			sh.save()
		case "cr":
			sh.create()
		case "de":
			sh.destroy()
		case "op":
			sh.open()
		case "cl":
			sh.close()
		case "rd":
			sh.read()
		case "wr":
			sh.write()
		case "sk":
			sh.seek()
		case "dr":
			sh.directory()
		case "fsck":
			sh.check()
		case "df":
			sh.stats()
		case "exit":
			return
		default:
			sh.printf("Command not recognized!\n")
		}
	}
}

func (sh *Shell) load() {
	switch sh.next() {
	case "backup":
		sh.loadFromBackup()
	case "input":
		sh.loadFromInput()
	case "properties":
		sh.loadProperties(sh.next())
	default:
		sh.printf("Command not recognized!\n")
	}
}

func (sh *Shell) loadFromBackup() {
	path := sh.next()
	m, err := sh.nextInt()
	if err != nil {
		sh.printf("error: %v\n", err)
		return
	}
	fs, err := vfs.Restore(path, m)
	if err != nil {
		sh.printf("error: %v\n", err)
		return
	}
	sh.fs = fs
	sh.printf("disk restored\n")
}

func (sh *Shell) loadFromInput() {
	b, errB := sh.nextInt()
	n, errN := sh.nextInt()
	i, errI := sh.nextInt()
	m, errM := sh.nextInt()
	if errB != nil || errN != nil || errI != nil || errM != nil {
		sh.printf("error: block size, block count, inode count, and max open files must all be integers\n")
		return
	}
	fs, err := vfs.New(vfs.NewParams(b, n, i, m))
	if err != nil {
		sh.printf("error: %v\n", err)
		return
	}
	sh.fs = fs
	sh.printf("disk initialized\n")
}

// loadProperties loads a YAML properties file naming the file system's
// parameters and a default backing image path: if that image already
// exists it is restored from, otherwise a fresh disk is formatted and
// immediately backed up there so the path is always valid afterward.
func (sh *Shell) loadProperties(path string) {
	cfg, err := config.Load(path)
	if err != nil {
		sh.printf("error: %v\n", err)
		return
	}
	if err := cfg.Validate(); err != nil {
		sh.printf("error: %v\n", err)
		return
	}

	if _, err := os.Stat(cfg.ImagePath); err == nil {
		fs, err := vfs.Restore(cfg.ImagePath, cfg.M)
		if err != nil {
			sh.printf("error: %v\n", err)
			return
		}
		sh.fs = fs
		sh.printf("disk restored\n")
		return
	}

	fs, err := vfs.New(vfs.NewParams(cfg.B, cfg.N, cfg.I, cfg.M))
	if err != nil {
		sh.printf("error: %v\n", err)
		return
	}
	if err := fs.Backup(cfg.ImagePath); err != nil {
		sh.printf("error: %v\n", err)
		return
	}
	sh.fs = fs
	sh.printf("disk initialized\n")
}

func (sh *Shell) save() {
	path := sh.next()
	if sh.fs == nil {
		sh.printf("error: no disk loaded\n")
		return
	}
	if err := sh.fs.Backup(path); err != nil {
		sh.printf("error: %v\n", err)
		return
	}
	sh.printf("disk saved\n")
}

func (sh *Shell) create() {
	name := sh.next()
	if sh.fs == nil {
		sh.printf("error: no disk loaded\n")
		return
	}
	if err := sh.fs.Create(name); err != nil {
		if _, ok := err.(vfs.AlreadyExistsError); ok {
			sh.printf("error: the file with name %s already exists.\n", name)
			return
		}
		sh.printf("error: %v\n", err)
		return
	}
	sh.printf("file %s created\n", name)
}

func (sh *Shell) destroy() {
	name := sh.next()
	if sh.fs == nil {
		sh.printf("error: no disk loaded\n")
		return
	}
	if err := sh.fs.Destroy(name); err != nil {
		if _, ok := err.(vfs.NotFoundError); ok {
			sh.printf("error: the file with name %s doesn't exist.\n", name)
			return
		}
		sh.printf("error: %v\n", err)
		return
	}
	sh.printf("file %s destroyed\n", name)
}

func (sh *Shell) open() {
	name := sh.next()
	if sh.fs == nil {
		sh.printf("error: no disk loaded\n")
		return
	}
	idx, err := sh.fs.Open(name)
	if err != nil {
		if _, ok := err.(vfs.NotFoundError); ok {
			sh.printf("error: the file with name %s doesn't exist.\n", name)
			return
		}
		if err == vfs.ErrTooManyOpenFiles {
			sh.printf("error: the maximum number of open files was exceeded\n")
			return
		}
		sh.printf("error: %v\n", err)
		return
	}
	sh.printf("file %s opened, index=%d\n", name, idx)
}

func (sh *Shell) close() {
	idx, err := sh.nextInt()
	if err != nil {
		sh.printf("error: %v\n", err)
		return
	}
	if sh.fs == nil {
		sh.printf("error: no disk loaded\n")
		return
	}
	if err := sh.fs.Close(idx); err != nil {
		sh.printf("error: %v\n", err)
		return
	}
	sh.printf("file with index %d closed\n", idx)
}

func (sh *Shell) read() {
	idx, errIdx := sh.nextInt()
	count, errCount := sh.nextInt()
	if errIdx != nil || errCount != nil || count < 0 {
		sh.printf("error: index and count must be non-negative integers\n")
		return
	}
	if sh.fs == nil {
		sh.printf("error: no disk loaded\n")
		return
	}
	data, err := sh.fs.Read(idx, count)
	if err != nil {
		sh.printf("error: %v\n", err)
		return
	}
	sh.printf("%d bytes read: %s\n", len(data), bytesString(data))
}

// bytesString treats each byte as an ASCII code, the way
// Shell.java's getBytesString does.
func bytesString(data []byte) string {
	var buf bytes.Buffer
	for _, b := range data {
		buf.WriteByte(b)
	}
	return buf.String()
}

func (sh *Shell) write() {
	idx, errIdx := sh.nextInt()
	character := sh.next()
	count, errCount := sh.nextInt()
	if errIdx != nil || errCount != nil || character == "" || count < 0 {
		sh.printf("error: index, character, and a non-negative count are required\n")
		return
	}
	if sh.fs == nil {
		sh.printf("error: no disk loaded\n")
		return
	}
	data := bytes.Repeat([]byte{character[0]}, count)
	if err := sh.fs.Write(idx, data); err != nil {
		sh.printf("error: %v\n", err)
		return
	}
	sh.printf("%d bytes written\n", count)
}

func (sh *Shell) seek() {
	idx, errIdx := sh.nextInt()
	pos, errPos := sh.nextInt()
	if errIdx != nil || errPos != nil {
		sh.printf("error: index and position must be integers\n")
		return
	}
	if sh.fs == nil {
		sh.printf("error: no disk loaded\n")
		return
	}
	if err := sh.fs.Lseek(idx, pos); err != nil {
		sh.printf("error: %v\n", err)
		return
	}
	sh.printf("current position is %d\n", pos)
}

func (sh *Shell) directory() {
	if sh.fs == nil {
		sh.printf("error: no disk loaded\n")
		return
	}
	entries, err := sh.fs.Directory()
	if err != nil {
		sh.printf("error: %v\n", err)
		return
	}
	for _, e := range entries {
		sh.printf("%s\t%dB\n", e.Name, e.Length)
	}
}

func (sh *Shell) check() {
	if sh.fs == nil {
		sh.printf("error: no disk loaded\n")
		return
	}
	report := sh.fs.Check()
	if report.OK() {
		sh.printf("file system is consistent\n")
		return
	}
	for _, v := range report.Violations {
		sh.printf("violation: %s\n", v)
	}
}

func (sh *Shell) stats() {
	if sh.fs == nil {
		sh.printf("error: no disk loaded\n")
		return
	}
	s, err := sh.fs.Stats()
	if err != nil {
		sh.printf("error: %v\n", err)
		return
	}
	sh.printf(
		"blocks: %d/%d free, inodes: %d/%d free\n",
		s.FreeBlocks, s.DataBlocks, s.FreeInodes, s.TotalInodes,
	)
}
