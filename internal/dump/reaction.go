package dump

import "fmt"

// KnownReactions are the glyphs the export documents. Reactions outside
// this set are still accepted.
var KnownReactions = []string{"👍", "😍", "😆", "😢", "😮", "😠", "👎", "❤"}

type Reaction struct {
	Type  string // repaired glyph
	Actor string

	message *Message
}

func newReaction(m *Message, raw rawReaction) (*Reaction, error) {
	glyph, err := RepairText(raw.Reaction)
	if err != nil {
		return nil, fmt.Errorf("reaction: %w", err)
	}
	return &Reaction{Type: glyph, Actor: raw.Actor, message: m}, nil
}

// Message returns the message the reaction belongs to.
func (r *Reaction) Message() *Message {
	return r.message
}

// Known reports whether the glyph is one of KnownReactions.
func (r *Reaction) Known() bool {
	for _, k := range KnownReactions {
		if r.Type == k {
			return true
		}
	}
	return false
}
