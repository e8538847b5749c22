package index

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Zuo-Peng/mda/internal/dump"
)

type Stats struct {
	Conversations int
	Messages      int
	Attachments   int
	Replaced      int
	Errors        int
}

func (s Stats) String() string {
	return fmt.Sprintf("conversations=%d messages=%d attachments=%d replaced=%d errors=%d",
		s.Conversations, s.Messages, s.Attachments, s.Replaced, s.Errors)
}

// IndexDump replaces everything indexed from d with its current contents.
// A conversation that fails to parse is logged, counted and skipped.
func IndexDump(db *DB, d *dump.DataDump, log *zap.Logger) (Stats, error) {
	var stats Stats
	if log == nil {
		log = zap.NewNop()
	}

	replaced, err := db.DeleteDump(d.Path())
	if err != nil {
		return stats, fmt.Errorf("clear %s: %w", d.Path(), err)
	}
	stats.Replaced = replaced

	for _, info := range d.Conversations() {
		conv, err := d.ConversationByInfo(info)
		if err != nil {
			stats.Errors++
			log.Warn("parse conversation", zap.String("path", info.Path), zap.Error(err))
			continue
		}

		if err := indexConversation(db, d.Path(), conv); err != nil {
			stats.Errors++
			log.Warn("index conversation", zap.String("path", info.Path), zap.Error(err))
			continue
		}
		stats.Conversations++
		stats.Messages += len(conv.Messages)
		stats.Attachments += conv.Attachments.Len()
		log.Debug("indexed conversation",
			zap.String("path", info.Path),
			zap.Int("messages", len(conv.Messages)),
			zap.Int("attachments", conv.Attachments.Len()),
		)
	}

	return stats, nil
}

func indexConversation(db *DB, dumpPath string, conv *dump.Conversation) error {
	key := Key(dumpPath, conv.Path)

	tx, err := db.Raw().Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var firstAt, lastAt string
	if n := len(conv.Messages); n > 0 {
		firstAt = conv.Messages[0].UTC.Format(TimeFormat)
		lastAt = conv.Messages[n-1].UTC.Format(TimeFormat)
	}

	_, err = tx.Exec(
		`INSERT INTO conversations (`+conversationColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		key,
		dumpPath,
		conv.Path,
		conv.Name,
		conv.Info().ID,
		string(conv.Type),
		conv.Title,
		strings.Join(conv.Participants, "\n"),
		len(conv.Messages),
		conv.Attachments.Len(),
		firstAt,
		lastAt,
	)
	if err != nil {
		return err
	}

	msgStmt, err := tx.Prepare(
		`INSERT INTO messages (conv_key, msg_idx, ts, ts_ms, sender, content, has_content, reactions)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer msgStmt.Close()

	attStmt, err := tx.Prepare(
		`INSERT INTO attachments (conv_key, msg_idx, category, uri, ts) VALUES (?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer attStmt.Close()

	for i, m := range conv.Messages {
		_, err := msgStmt.Exec(
			key,
			i,
			m.UTC.Format(TimeFormat),
			m.UTC.UnixMilli(),
			m.SenderName,
			m.Text(),
			m.HasContent(),
			formatReactions(m.Reactions),
		)
		if err != nil {
			return err
		}
		for _, a := range m.Attachments.All {
			if _, err := attStmt.Exec(key, i, string(a.Category), a.URI, a.UTC.Format(TimeFormat)); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

// formatReactions renders reactions as "glyph actor" pairs, one per line.
func formatReactions(rs []*dump.Reaction) string {
	parts := make([]string, 0, len(rs))
	for _, r := range rs {
		parts = append(parts, r.Type+" "+r.Actor)
	}
	return strings.Join(parts, "\n")
}
