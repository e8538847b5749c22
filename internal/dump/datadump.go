// Package dump reads a messaging data export (a zip of per-conversation JSON
// shards plus media) into conversations, messages, reactions and attachments.
//
// A DataDump owns the archive handle; everything built from it shares that
// handle. Nothing here is safe for concurrent use: callers that touch one
// DataDump, or anything read from it, from several goroutines must hold a
// lock around those calls.
package dump

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Zuo-Peng/mda/internal/archive"
)

// rootDir is the top-level archive directory holding conversations.
const rootDir = "messages"

// idLen is the length of the id suffix of a conversation directory name.
const idLen = 10

// ConversationInfo identifies a conversation without parsing it.
type ConversationInfo struct {
	Name string
	ID   string
	Type ConversationType
	Path string
}

func newConversationInfo(name string, typ ConversationType, path string) ConversationInfo {
	return ConversationInfo{Name: name, ID: conversationID(name), Type: typ, Path: path}
}

// conversationID is the last idLen characters of a directory name.
func conversationID(name string) string {
	r := []rune(name)
	if len(r) <= idLen {
		return name
	}
	return string(r[len(r)-idLen:])
}

type DataDump struct {
	path    string
	loc     *time.Location
	log     *zap.Logger
	archive archive.Reader

	conversations []ConversationInfo
	scanned       bool
}

type Option func(*DataDump)

// WithLocation sets the zone for the Local times of messages and attachments.
func WithLocation(loc *time.Location) Option {
	return func(d *DataDump) {
		d.loc = loc
	}
}

// WithLogger sets a logger for debug events. Errors are always returned, never only logged.
func WithLogger(l *zap.Logger) Option {
	return func(d *DataDump) {
		if l != nil {
			d.log = l
		}
	}
}

// Open opens the zip at path. The caller must Close the dump.
func Open(path string, opts ...Option) (*DataDump, error) {
	z, err := archive.OpenZip(path)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	d := New(z, opts...)
	d.path = path
	return d, nil
}

// New wraps an already open archive. The dump takes ownership of a.
func New(a archive.Reader, opts ...Option) *DataDump {
	d := &DataDump{archive: a, log: zap.NewNop()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *DataDump) Path() string {
	return d.path
}

func (d *DataDump) Location() *time.Location {
	return d.loc
}

// Close releases the archive. Further calls are no-ops.
func (d *DataDump) Close() error {
	return d.archive.Close()
}

// Conversations lists every conversation directory in the archive. The scan
// runs once; each call returns a fresh copy of the result.
func (d *DataDump) Conversations() []ConversationInfo {
	return slices.Clone(d.scan())
}

func (d *DataDump) scan() []ConversationInfo {
	if d.scanned {
		return d.conversations
	}

	for _, name := range d.archive.Names() {
		parts := strings.Split(name, "/")
		if len(parts) != 4 || parts[3] != "" {
			continue
		}
		typ := ConversationType(parts[1])
		if parts[0] != rootDir || !typ.Known() || parts[2] == "" {
			continue
		}
		d.conversations = append(d.conversations, newConversationInfo(parts[2], typ, name))
	}
	d.scanned = true
	d.log.Debug("scanned conversations", zap.Int("count", len(d.conversations)))
	return d.conversations
}

// ConversationByName parses messages/<typ>/<name>/. An empty typ means Inbox.
// Every call parses the conversation again.
func (d *DataDump) ConversationByName(name string, typ ConversationType) (*Conversation, error) {
	if typ == "" {
		typ = Inbox
	}
	path := fmt.Sprintf("%s/%s/%s/", rootDir, typ, name)
	if _, err := d.archive.Stat(path); err != nil {
		return nil, fmt.Errorf("conversation %s: %w", path, ErrNotFound)
	}
	if !d.archive.IsDir(path) {
		return nil, fmt.Errorf("conversation %s is not a directory: %w", path, ErrInvalidArgument)
	}
	return newConversation(d, name, typ, path)
}

func (d *DataDump) ConversationByInfo(info ConversationInfo) (*Conversation, error) {
	return d.ConversationByName(info.Name, info.Type)
}

// ConversationByID parses the first conversation whose id matches. Ids are
// not guaranteed unique.
func (d *DataDump) ConversationByID(id string) (*Conversation, error) {
	info, ok := d.FindByID(id)
	if !ok {
		return nil, fmt.Errorf("no conversation for id %q: %w", id, ErrNotFound)
	}
	return d.ConversationByInfo(info)
}

// FindByID looks up an id without parsing the conversation.
func (d *DataDump) FindByID(id string) (ConversationInfo, bool) {
	for _, info := range d.scan() {
		if info.ID == id {
			return info, true
		}
	}
	return ConversationInfo{}, false
}

func (d *DataDump) String() string {
	return fmt.Sprintf("DataDump('%s')", d.path)
}
