package archive

import (
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/zip"
)

// Zip is a Reader over a zip file.
type Zip struct {
	path   string
	rc     *zip.ReadCloser // nil when built from an io.ReaderAt
	files  []*zip.File
	byName map[string]*zip.File
	closed bool
}

// OpenZip opens the zip file at path for random access.
func OpenZip(path string) (*Zip, error) {
	rc, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open zip %s: %w", path, err)
	}
	z := newZip(path, rc.File)
	z.rc = rc
	return z, nil
}

// NewZip reads a zip archive from r. Closing the result does not close r.
func NewZip(r io.ReaderAt, size int64) (*Zip, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("read zip: %w", err)
	}
	return newZip("", zr.File), nil
}

func newZip(path string, files []*zip.File) *Zip {
	byName := make(map[string]*zip.File, len(files))
	for _, f := range files {
		// first entry wins on duplicate names, like the central directory lookup
		if _, ok := byName[f.Name]; !ok {
			byName[f.Name] = f
		}
	}
	return &Zip{path: path, files: files, byName: byName}
}

func (z *Zip) Path() string {
	return z.path
}

func (z *Zip) Names() []string {
	names := make([]string, 0, len(z.files))
	for _, f := range z.files {
		names = append(names, f.Name)
	}
	return names
}

func (z *Zip) Open(name string) (io.ReadCloser, error) {
	if z.closed {
		return nil, ErrClosed
	}
	f, ok := z.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	return rc, nil
}

func (z *Zip) Stat(name string) (Entry, error) {
	f, ok := z.byName[name]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return Entry{
		Name:           f.Name,
		Size:           int64(f.UncompressedSize64),
		CompressedSize: int64(f.CompressedSize64),
		Modified:       f.Modified,
		CRC32:          f.CRC32,
		Dir:            isDirName(f.Name),
	}, nil
}

func (z *Zip) IsDir(name string) bool {
	f, ok := z.byName[name]
	return ok && isDirName(f.Name)
}

// Close releases the underlying file. Calling it again is a no-op.
func (z *Zip) Close() error {
	if z.closed {
		return nil
	}
	z.closed = true
	if z.rc == nil {
		return nil
	}
	return z.rc.Close()
}

func isDirName(name string) bool {
	return strings.HasSuffix(name, "/")
}
