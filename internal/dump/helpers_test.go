package dump

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/require"

	"github.com/Zuo-Peng/mda/internal/archive"
)

type entry struct {
	name string
	body string
}

func dir(name string) entry {
	return entry{name: name}
}

func file(name, body string) entry {
	return entry{name: name, body: body}
}

func zipBytes(t *testing.T, entries ...entry) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		w, err := zw.Create(e.name)
		require.NoError(t, err)
		if e.body != "" {
			_, err = io.WriteString(w, e.body)
			require.NoError(t, err)
		}
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func newTestDump(t *testing.T, opts []Option, entries ...entry) *DataDump {
	t.Helper()
	data := zipBytes(t, entries...)
	z, err := archive.NewZip(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	d := New(z, opts...)
	t.Cleanup(func() { d.Close() })
	return d
}

// mojibake encodes s the way the export does: each UTF-8 byte becomes one rune.
func mojibake(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		b.WriteRune(rune(s[i]))
	}
	return b.String()
}

// fakeArchive is a Reader whose directory answers are set by the test.
type fakeArchive struct {
	entries map[string]string
	dirs    map[string]bool
	order   []string
}

func (f *fakeArchive) Names() []string { return f.order }

func (f *fakeArchive) Open(name string) (io.ReadCloser, error) {
	body, ok := f.entries[name]
	if !ok {
		return nil, archive.ErrNotFound
	}
	return io.NopCloser(strings.NewReader(body)), nil
}

func (f *fakeArchive) Stat(name string) (archive.Entry, error) {
	body, ok := f.entries[name]
	if !ok {
		return archive.Entry{}, archive.ErrNotFound
	}
	return archive.Entry{Name: name, Size: int64(len(body)), Dir: f.dirs[name]}, nil
}

func (f *fakeArchive) IsDir(name string) bool { return f.dirs[name] }

func (f *fakeArchive) Close() error { return nil }
