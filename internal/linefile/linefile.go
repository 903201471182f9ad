// Package linefile implements the append-only line file backing the
// browsing history. The file is plain UTF-8 text, one record per line,
// with no header or version marker. The file is only ever appended to or
// truncated, never rewritten in place, and has a single writer.
package linefile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// tailBlockSize is the chunk size for the backwards scan in Recent.
const tailBlockSize = 4096

// File is an append-only, line-oriented file at a fixed path.
type File struct {
	path string
}

// New returns a File bound to path. The file itself is created lazily on
// the first read or append.
func New(path string) *File {
	return &File{path: path}
}

// Path returns the backing file path.
func (f *File) Path() string {
	return f.path
}

// OpenReader opens the file for a sequential scan, creating it (and its
// directory) if absent. The caller must Close the reader.
func (f *File) OpenReader() (*Reader, error) {
	if err := os.MkdirAll(filepath.Dir(f.path), 0755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}
	file, err := os.OpenFile(f.path, os.O_RDONLY|os.O_CREATE, 0644)
	if err != nil {
		return nil, fmt.Errorf("open history file: %w", err)
	}
	return &Reader{file: file, scanner: bufio.NewScanner(file)}, nil
}

// Append writes the given lines to the end of the file, each followed by
// a newline, and syncs before closing. An empty slice is a no-op that
// does not touch the file.
func (f *File) Append(lines []string) error {
	if len(lines) == 0 {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0755); err != nil {
		return fmt.Errorf("create history directory: %w", err)
	}
	file, err := os.OpenFile(f.path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0644)
	if err != nil {
		return fmt.Errorf("open history file for append: %w", err)
	}

	w := bufio.NewWriter(file)
	for _, line := range lines {
		if _, err := w.WriteString(line); err != nil {
			file.Close()
			return fmt.Errorf("append history line: %w", err)
		}
		if err := w.WriteByte('\n'); err != nil {
			file.Close()
			return fmt.Errorf("append history line: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		file.Close()
		return fmt.Errorf("flush history file: %w", err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		return fmt.Errorf("sync history file: %w", err)
	}
	return file.Close()
}

// Clear truncates the file to empty. A missing file counts as already
// cleared.
func (f *File) Clear() error {
	err := os.Truncate(f.path, 0)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("truncate history file: %w", err)
	}
	return nil
}

// Size returns the current file size in bytes, 0 if the file does not
// exist yet.
func (f *File) Size() (int64, error) {
	info, err := os.Stat(f.path)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("stat history file: %w", err)
	}
	return info.Size(), nil
}

// Recent returns the last n lines of the file without scanning it from
// the start: blocks are read backwards from EOF until n line breaks have
// been seen. A trailing newline does not count as an empty last line.
func (f *File) Recent(n int) ([]string, error) {
	if n <= 0 {
		return nil, nil
	}

	file, err := os.Open(f.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open history file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat history file: %w", err)
	}

	var tail []byte
	offset := info.Size()
	for offset > 0 {
		size := int64(tailBlockSize)
		if offset < size {
			size = offset
		}
		offset -= size

		block := make([]byte, size)
		if _, err := file.ReadAt(block, offset); err != nil && err != io.EOF {
			return nil, fmt.Errorf("read history tail: %w", err)
		}
		tail = append(block, tail...)

		if strings.Count(string(tail), "\n") > n {
			break
		}
	}

	lines := strings.Split(strings.TrimRight(string(tail), "\n"), "\n")
	if len(lines) == 1 && lines[0] == "" {
		return nil, nil
	}
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return lines, nil
}

// Reader scans the file one line at a time, in order.
type Reader struct {
	file    *os.File
	scanner *bufio.Scanner
}

// Next advances to the next line. It returns false at EOF or on error;
// check Err after the loop.
func (r *Reader) Next() bool {
	return r.scanner.Scan()
}

// Line returns the current line without its terminator.
func (r *Reader) Line() string {
	return r.scanner.Text()
}

// Err returns the first error hit while scanning, nil at clean EOF.
func (r *Reader) Err() error {
	return r.scanner.Err()
}

// Close releases the underlying file.
func (r *Reader) Close() error {
	return r.file.Close()
}
