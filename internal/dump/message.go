package dump

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Whole seconds print without a fraction, anything else with six digits.
const (
	messageTimeLayout     = "2006-01-02 15:04:05-07:00"
	messageTimeLayoutFrac = "2006-01-02 15:04:05.000000-07:00"
)

func formatMessageTime(t time.Time) string {
	if t.Nanosecond()/int(time.Microsecond) == 0 {
		return t.Format(messageTimeLayout)
	}
	return t.Format(messageTimeLayoutFrac)
}

type Message struct {
	SenderName string
	Timestamp  float64 // Unix seconds
	UTC        time.Time
	Local      time.Time
	// Content is nil when the record has no text, as opposed to empty text.
	Content     *string
	Reactions   []*Reaction
	Attachments AttachmentSet

	conversation *Conversation
}

// newMessage builds a message and registers its attachments with c.
func newMessage(c *Conversation, raw *rawMessage) (*Message, error) {
	m := &Message{
		SenderName:   raw.SenderName,
		Timestamp:    raw.TimestampMs / 1000,
		conversation: c,
	}
	m.UTC, m.Local = ResolveTimes(m.Timestamp, c.loc)

	if raw.Content != nil {
		text, err := RepairText(*raw.Content)
		if err != nil {
			return nil, fmt.Errorf("content: %w", err)
		}
		m.Content = &text
	}

	for _, rr := range raw.Reactions {
		r, err := newReaction(m, rr)
		if err != nil {
			return nil, err
		}
		if !r.Known() {
			c.log.Debug("unknown reaction glyph", zap.String("glyph", r.Type), zap.String("conversation", c.Path))
		}
		m.Reactions = append(m.Reactions, r)
	}

	for _, cat := range Categories {
		items, ok := raw.Attachments[cat.Category]
		if !ok {
			continue
		}
		for _, item := range items {
			a := newAttachment(m, cat.Category, item, c.archive, c.loc)
			m.Attachments.add(a)
			c.Attachments.add(a)
		}
	}
	return m, nil
}

// Conversation returns the conversation that owns the message.
func (m *Message) Conversation() *Conversation {
	return m.conversation
}

func (m *Message) HasContent() bool {
	return m.Content != nil
}

// Text returns the content, or "" when there is none.
func (m *Message) Text() string {
	if m.Content == nil {
		return ""
	}
	return *m.Content
}

func (m *Message) String() string {
	return fmt.Sprintf("Message(%s, '%s')", formatMessageTime(m.Local), m.conversation.Path)
}
