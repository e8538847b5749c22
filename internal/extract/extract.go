package extract

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Zuo-Peng/mda/internal/dump"
)

// ErrUnsafePath is returned for attachment URIs that would land outside the
// destination directory.
var ErrUnsafePath = errors.New("unsafe attachment path")

type Options struct {
	Category dump.Category // "" = every category
}

type Stats struct {
	Files int
	Bytes int64
}

// Attachments copies the attachments of conv to dir/<uri>, keeping the archive
// layout, and sets each file's mtime to the attachment time.
func Attachments(conv *dump.Conversation, dir string, opts Options) (Stats, error) {
	var stats Stats

	atts := conv.Attachments.All
	if opts.Category != "" {
		atts = conv.Attachments.ByCategory(opts.Category)
		if atts == nil && !knownCategory(opts.Category) {
			return stats, fmt.Errorf("category %q: %w", opts.Category, dump.ErrInvalidArgument)
		}
	}

	for _, a := range atts {
		dst, err := target(dir, a.URI)
		if err != nil {
			return stats, err
		}
		n, err := writeAttachment(a, dst)
		if err != nil {
			return stats, err
		}
		stats.Files++
		stats.Bytes += n
	}
	return stats, nil
}

func knownCategory(c dump.Category) bool {
	for _, cat := range dump.Categories {
		if cat.Category == c {
			return true
		}
	}
	return false
}

// target resolves uri under dir.
func target(dir, uri string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(uri))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrUnsafePath, uri)
	}
	return filepath.Join(dir, clean), nil
}

func writeAttachment(a *dump.Attachment, dst string) (int64, error) {
	rc, err := a.Open()
	if err != nil {
		return 0, err
	}
	defer rc.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return 0, fmt.Errorf("create dir: %w", err)
	}
	f, err := os.Create(dst)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", dst, err)
	}
	n, err := io.Copy(f, rc)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return n, fmt.Errorf("write %s: %w", dst, err)
	}
	if err := os.Chtimes(dst, a.UTC, a.UTC); err != nil {
		return n, fmt.Errorf("set mtime %s: %w", dst, err)
	}
	return n, nil
}
