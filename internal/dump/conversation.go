package dump

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Zuo-Peng/mda/internal/archive"
)

// shardPrefix starts the file name of every message history shard.
const shardPrefix = "message_"

type ConversationType string

const (
	Inbox           ConversationType = "inbox"
	MessageRequests ConversationType = "message_requests"
	ArchivedThreads ConversationType = "archived_threads"
)

// ConversationTypes are the directories under messages/ that hold conversations.
var ConversationTypes = []ConversationType{Inbox, MessageRequests, ArchivedThreads}

func (t ConversationType) Known() bool {
	for _, k := range ConversationTypes {
		if t == k {
			return true
		}
	}
	return false
}

// Conversation is one chat thread, fully parsed. Messages are ordered by UTC
// time; equal times keep the order of the shards they came from.
type Conversation struct {
	Name         string
	Type         ConversationType
	Path         string // archive directory, with trailing slash
	Title        string
	Participants []string
	Messages     []*Message
	Attachments  AttachmentSet
	Shards       []string

	dump    *DataDump
	archive archive.Reader
	loc     *time.Location
	log     *zap.Logger
}

func newConversation(d *DataDump, name string, typ ConversationType, path string) (*Conversation, error) {
	c := &Conversation{
		Name:    name,
		Type:    typ,
		Path:    path,
		dump:    d,
		archive: d.archive,
		loc:     d.loc,
		log:     d.log,
	}

	c.Shards = findShards(d.archive.Names(), path)
	if len(c.Shards) == 0 {
		return nil, fmt.Errorf("%w: no %s files in %s", ErrNotFound, shardPrefix, path)
	}
	c.log.Debug("conversation shards", zap.String("path", path), zap.Strings("shards", c.Shards))

	data, err := c.readShard(c.Shards[0])
	if err != nil {
		return nil, err
	}
	for _, name := range c.Shards[1:] {
		more, err := c.readShard(name)
		if err != nil {
			return nil, err
		}
		data.Messages = append(data.Messages, more.Messages...)
	}

	if data.Title != nil {
		title, err := RepairText(*data.Title)
		if err != nil {
			return nil, fmt.Errorf("title of %s: %w", path, err)
		}
		c.Title = title
	}

	c.Participants = make([]string, 0, len(data.Participants))
	for _, p := range data.Participants {
		c.Participants = append(c.Participants, p.Name)
	}

	c.Messages = make([]*Message, 0, len(data.Messages))
	for i := range data.Messages {
		m, err := newMessage(c, &data.Messages[i])
		if err != nil {
			return nil, fmt.Errorf("message %d of %s: %w", i, path, err)
		}
		c.Messages = append(c.Messages, m)
	}

	sort.SliceStable(c.Messages, func(i, j int) bool {
		return c.Messages[i].UTC.Before(c.Messages[j].UTC)
	})
	return c, nil
}

// findShards returns, in archive order, the entries under dir whose name
// starts with the shard prefix. Matching ignores case.
func findShards(names []string, dir string) []string {
	prefix := strings.ToLower(dir) + shardPrefix
	var shards []string
	for _, name := range names {
		if strings.HasSuffix(name, "/") {
			continue
		}
		if strings.HasPrefix(strings.ToLower(name), prefix) {
			shards = append(shards, name)
		}
	}
	return shards
}

func (c *Conversation) readShard(name string) (*rawShard, error) {
	rc, err := c.archive.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open shard %s: %w", name, err)
	}
	defer rc.Close()

	var shard rawShard
	if err := json.NewDecoder(rc).Decode(&shard); err != nil {
		return nil, fmt.Errorf("parse shard %s: %w: %w", name, ErrDecode, err)
	}
	return &shard, nil
}

// Dump returns the data dump the conversation was read from.
func (c *Conversation) Dump() *DataDump {
	return c.dump
}

// Info returns the lookup key for the conversation.
func (c *Conversation) Info() ConversationInfo {
	return newConversationInfo(c.Name, c.Type, c.Path)
}

func (c *Conversation) String() string {
	return fmt.Sprintf("Conversation('%s', '%s')", c.dump.path, c.Path)
}
