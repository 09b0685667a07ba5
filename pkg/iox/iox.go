package iox

import (
	"io"
	"os"
	"path/filepath"
)

// AtomicFile is written to a temporary file in the destination directory, and only
// renamed to its final name when Close succeeds. A reader never sees a partially
// written file, and a crashed run leaves the previous file (if any) untouched.
type AtomicFile struct {
	tmp    *os.File
	dst    string
	closed bool
}

// CreateAtomic creates the temporary file for dstFilename
func CreateAtomic(dstFilename string, perm os.FileMode) (*AtomicFile, error) {
	tmp, err := os.CreateTemp(filepath.Dir(dstFilename), "."+filepath.Base(dstFilename)+".tmp*")
	if err != nil {
		return nil, err
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return nil, err
	}
	return &AtomicFile{
		tmp: tmp,
		dst: dstFilename,
	}, nil
}

func (a *AtomicFile) Write(p []byte) (int, error) {
	return a.tmp.Write(p)
}

// Close flushes the file and moves it into place
func (a *AtomicFile) Close() error {
	if a.closed {
		return nil
	}
	a.closed = true
	if err := a.tmp.Sync(); err != nil {
		a.tmp.Close()
		os.Remove(a.tmp.Name())
		return err
	}
	if err := a.tmp.Close(); err != nil {
		os.Remove(a.tmp.Name())
		return err
	}
	if err := os.Rename(a.tmp.Name(), a.dst); err != nil {
		os.Remove(a.tmp.Name())
		return err
	}
	return nil
}

// Abort discards everything written so far
func (a *AtomicFile) Abort() error {
	if a.closed {
		return nil
	}
	a.closed = true
	a.tmp.Close()
	return os.Remove(a.tmp.Name())
}

// WriteStreamToFile atomically replaces dstFilename with the contents of src
func WriteStreamToFile(dstFilename string, src io.Reader) error {
	f, err := CreateAtomic(dstFilename, 0644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, src); err != nil {
		f.Abort()
		return err
	}
	return f.Close()
}
