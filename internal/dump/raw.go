package dump

import (
	"encoding/json"
	"fmt"
)

// JSON shapes of a message_N.json shard.

type rawShard struct {
	Title        *string          `json:"title"`
	Participants []rawParticipant `json:"participants"`
	Messages     []rawMessage     `json:"messages"`
}

type rawParticipant struct {
	Name string `json:"name"`
}

type rawReaction struct {
	Reaction string `json:"reaction"`
	Actor    string `json:"actor"`
}

type rawAttachment struct {
	URI               string   `json:"uri"`
	CreationTimestamp *float64 `json:"creation_timestamp"`
}

func (r *rawReaction) UnmarshalJSON(b []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		return err
	}
	if err := requireString(fields, "reaction", &r.Reaction); err != nil {
		return err
	}
	return requireString(fields, "actor", &r.Actor)
}

func (a *rawAttachment) UnmarshalJSON(b []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		return err
	}
	if err := requireString(fields, "uri", &a.URI); err != nil {
		return fmt.Errorf("attachment: %w", err)
	}
	if raw, ok := fields["creation_timestamp"]; ok {
		if err := json.Unmarshal(raw, &a.CreationTimestamp); err != nil {
			return fmt.Errorf("creation_timestamp: %w", err)
		}
	}
	return nil
}

// requireString decodes fields[key] into dst. The key must be present and
// hold a string.
func requireString(fields map[string]json.RawMessage, key string, dst *string) error {
	raw, ok := fields[key]
	if !ok {
		return fmt.Errorf("missing %s", key)
	}
	var s *string
	if err := json.Unmarshal(raw, &s); err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	if s == nil {
		return fmt.Errorf("%s is null", key)
	}
	*dst = *s
	return nil
}

type rawMessage struct {
	SenderName  string
	TimestampMs float64
	Content     *string
	Reactions   []rawReaction
	Attachments map[Category][]rawAttachment
}

func (m *rawMessage) UnmarshalJSON(b []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		return err
	}

	sender, ok := fields["sender_name"]
	if !ok {
		return fmt.Errorf("message without sender_name")
	}
	if err := json.Unmarshal(sender, &m.SenderName); err != nil {
		return fmt.Errorf("sender_name: %w", err)
	}

	ts, ok := fields["timestamp_ms"]
	if !ok {
		return fmt.Errorf("message without timestamp_ms")
	}
	if err := json.Unmarshal(ts, &m.TimestampMs); err != nil {
		return fmt.Errorf("timestamp_ms: %w", err)
	}

	// null content counts as absent
	if raw, ok := fields["content"]; ok {
		if err := json.Unmarshal(raw, &m.Content); err != nil {
			return fmt.Errorf("content: %w", err)
		}
	}

	if raw, ok := fields["reactions"]; ok {
		if err := json.Unmarshal(raw, &m.Reactions); err != nil {
			return fmt.Errorf("reactions: %w", err)
		}
	}

	for _, c := range Categories {
		raw, ok := fields[c.Key]
		if !ok {
			continue
		}
		var items []rawAttachment
		if err := json.Unmarshal(raw, &items); err != nil {
			return fmt.Errorf("%s: %w", c.Key, err)
		}
		if m.Attachments == nil {
			m.Attachments = make(map[Category][]rawAttachment)
		}
		m.Attachments[c.Category] = items
	}
	return nil
}
