package dump

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/Zuo-Peng/mda/internal/archive"
)

type Category string

const (
	Photos Category = "photos"
	Videos Category = "videos"
	Gifs   Category = "gifs"
	Files  Category = "files"
	Audio  Category = "audio"
)

// Categories pairs each attachment category with its message JSON key, in
// the order attachments are collected.
var Categories = []struct {
	Category Category
	Key      string
}{
	{Photos, "photos"},
	{Videos, "videos"},
	{Gifs, "gifs"},
	{Files, "files"},
	{Audio, "audio_files"},
}

// Attachment is a media file referenced by a message. The bytes stay in the
// archive until Open is called.
type Attachment struct {
	Category  Category
	URI       string  // archive entry path
	Timestamp float64 // Unix seconds
	UTC       time.Time
	Local     time.Time

	message *Message
	archive archive.Reader
}

func newAttachment(m *Message, c Category, raw rawAttachment, ar archive.Reader, loc *time.Location) *Attachment {
	a := &Attachment{
		Category:  c,
		URI:       raw.URI,
		Timestamp: m.Timestamp,
		message:   m,
		archive:   ar,
	}
	if raw.CreationTimestamp != nil {
		a.Timestamp = *raw.CreationTimestamp
	}
	a.UTC, a.Local = ResolveTimes(a.Timestamp, loc)
	return a
}

// Message returns the message that owns the attachment.
func (a *Attachment) Message() *Message {
	return a.message
}

// Open streams the attachment bytes from the archive.
func (a *Attachment) Open() (io.ReadCloser, error) {
	rc, err := a.archive.Open(a.URI)
	if err != nil {
		return nil, wrapArchiveErr(a.URI, err)
	}
	return rc, nil
}

// Entry returns the archive metadata of the attachment.
func (a *Attachment) Entry() (archive.Entry, error) {
	e, err := a.archive.Stat(a.URI)
	if err != nil {
		return archive.Entry{}, wrapArchiveErr(a.URI, err)
	}
	return e, nil
}

func (a *Attachment) String() string {
	return fmt.Sprintf("Attachment(%s)", a.URI)
}

func wrapArchiveErr(uri string, err error) error {
	if errors.Is(err, archive.ErrNotFound) {
		return fmt.Errorf("attachment %s: %w: %w", uri, ErrNotFound, err)
	}
	return fmt.Errorf("attachment %s: %w", uri, err)
}

// AttachmentSet groups attachments by category and keeps them all, in
// insertion order, in All.
type AttachmentSet struct {
	Photos []*Attachment
	Videos []*Attachment
	Gifs   []*Attachment
	Files  []*Attachment
	Audio  []*Attachment
	All    []*Attachment
}

func (s *AttachmentSet) add(a *Attachment) {
	slot := s.slot(a.Category)
	*slot = append(*slot, a)
	s.All = append(s.All, a)
}

func (s *AttachmentSet) slot(c Category) *[]*Attachment {
	switch c {
	case Photos:
		return &s.Photos
	case Videos:
		return &s.Videos
	case Gifs:
		return &s.Gifs
	case Files:
		return &s.Files
	case Audio:
		return &s.Audio
	}
	panic("dump: unknown attachment category " + string(c))
}

// ByCategory returns the attachments of one category, or nil for an unknown one.
func (s *AttachmentSet) ByCategory(c Category) []*Attachment {
	switch c {
	case Photos, Videos, Gifs, Files, Audio:
		return *s.slot(c)
	}
	return nil
}

func (s *AttachmentSet) Len() int {
	return len(s.All)
}
