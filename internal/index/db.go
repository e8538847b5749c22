package index

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const schema = `
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA cache_size = -64000;
PRAGMA busy_timeout = 5000;

CREATE TABLE IF NOT EXISTS conversations (
    conv_key         TEXT PRIMARY KEY,
    dump_path        TEXT NOT NULL,
    path             TEXT NOT NULL,
    name             TEXT NOT NULL,
    conv_id          TEXT NOT NULL,
    type             TEXT NOT NULL,
    title            TEXT NOT NULL DEFAULT '',
    participants     TEXT NOT NULL DEFAULT '',
    message_count    INTEGER NOT NULL DEFAULT 0,
    attachment_count INTEGER NOT NULL DEFAULT 0,
    first_at         TEXT NOT NULL DEFAULT '',
    last_at          TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS conversations_dump ON conversations(dump_path);
CREATE INDEX IF NOT EXISTS conversations_id ON conversations(conv_id);

CREATE TABLE IF NOT EXISTS messages (
    conv_key    TEXT NOT NULL,
    msg_idx     INTEGER NOT NULL,
    ts          TEXT NOT NULL DEFAULT '',
    ts_ms       INTEGER NOT NULL DEFAULT 0,
    sender      TEXT NOT NULL,
    content     TEXT NOT NULL DEFAULT '',
    has_content INTEGER NOT NULL DEFAULT 0,
    reactions   TEXT NOT NULL DEFAULT '',
    PRIMARY KEY (conv_key, msg_idx)
);

CREATE TABLE IF NOT EXISTS attachments (
    conv_key TEXT NOT NULL,
    msg_idx  INTEGER NOT NULL,
    category TEXT NOT NULL,
    uri      TEXT NOT NULL,
    ts       TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS attachments_conv ON attachments(conv_key, msg_idx);

CREATE VIRTUAL TABLE IF NOT EXISTS messages_fts USING fts5(
    content,
    content=messages,
    content_rowid=rowid,
    tokenize='unicode61'
);

-- triggers to keep FTS in sync
CREATE TRIGGER IF NOT EXISTS messages_ai AFTER INSERT ON messages BEGIN
    INSERT INTO messages_fts(rowid, content) VALUES (new.rowid, new.content);
END;

CREATE TRIGGER IF NOT EXISTS messages_ad AFTER DELETE ON messages BEGIN
    INSERT INTO messages_fts(messages_fts, rowid, content) VALUES('delete', old.rowid, old.content);
END;

CREATE TRIGGER IF NOT EXISTS messages_au AFTER UPDATE ON messages BEGIN
    INSERT INTO messages_fts(messages_fts, rowid, content) VALUES('delete', old.rowid, old.content);
    INSERT INTO messages_fts(rowid, content) VALUES (new.rowid, new.content);
END;

CREATE TABLE IF NOT EXISTS meta (key TEXT PRIMARY KEY, value TEXT);
`

// schemaVersion should be bumped whenever the table layout changes.
const schemaVersion = "1"

// TimeFormat is how instants are stored: UTC, second precision.
const TimeFormat = "2006-01-02T15:04:05Z"

type DB struct {
	db *sql.DB
}

func OpenDB(dbPath string) (*DB, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	d := &DB{db: db}
	if err := d.checkSchemaVersion(); err != nil {
		db.Close()
		return nil, err
	}
	return d, nil
}

func (d *DB) checkSchemaVersion() error {
	var ver string
	err := d.db.QueryRow("SELECT value FROM meta WHERE key = 'schema_version'").Scan(&ver)
	if err == sql.ErrNoRows {
		_, err = d.db.Exec("INSERT INTO meta (key, value) VALUES ('schema_version', ?)", schemaVersion)
		return err
	}
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if ver != schemaVersion {
		return fmt.Errorf("index schema version %s, want %s: remove the db and re-run index", ver, schemaVersion)
	}
	return nil
}

func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) Raw() *sql.DB {
	return d.db
}

// Key is the conversation key: the dump path and the conversation directory.
func Key(dumpPath, convPath string) string {
	return dumpPath + "!" + convPath
}

// DeleteDump removes every row that came from dumpPath and reports how many
// conversations were removed.
func (d *DB) DeleteDump(dumpPath string) (int, error) {
	tx, err := d.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	sub := "SELECT conv_key FROM conversations WHERE dump_path = ?"
	if _, err := tx.Exec("DELETE FROM messages WHERE conv_key IN ("+sub+")", dumpPath); err != nil {
		return 0, err
	}
	if _, err := tx.Exec("DELETE FROM attachments WHERE conv_key IN ("+sub+")", dumpPath); err != nil {
		return 0, err
	}
	res, err := tx.Exec("DELETE FROM conversations WHERE dump_path = ?", dumpPath)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), tx.Commit()
}

func (d *DB) count(query string) (int, error) {
	var n int
	err := d.db.QueryRow(query).Scan(&n)
	return n, err
}

func (d *DB) ConversationCount() (int, error) {
	return d.count("SELECT COUNT(*) FROM conversations")
}

func (d *DB) MessageCount() (int, error) {
	return d.count("SELECT COUNT(*) FROM messages")
}

func (d *DB) AttachmentCount() (int, error) {
	return d.count("SELECT COUNT(*) FROM attachments")
}

func (d *DB) FTSCount() (int, error) {
	return d.count("SELECT COUNT(*) FROM messages_fts")
}

type ConversationRow struct {
	Key             string
	DumpPath        string
	Path            string
	Name            string
	ConvID          string
	Type            string
	Title           string
	Participants    string // newline separated
	MessageCount    int
	AttachmentCount int
	FirstAt         string
	LastAt          string
}

const conversationColumns = `conv_key, dump_path, path, name, conv_id, type, title, participants,
	message_count, attachment_count, first_at, last_at`

func scanConversation(row interface{ Scan(...any) error }) (*ConversationRow, error) {
	var c ConversationRow
	err := row.Scan(&c.Key, &c.DumpPath, &c.Path, &c.Name, &c.ConvID, &c.Type, &c.Title, &c.Participants,
		&c.MessageCount, &c.AttachmentCount, &c.FirstAt, &c.LastAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// GetConversation returns nil, nil when key is not indexed.
func (d *DB) GetConversation(key string) (*ConversationRow, error) {
	c, err := scanConversation(d.db.QueryRow(
		"SELECT "+conversationColumns+" FROM conversations WHERE conv_key = ?", key,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return c, err
}

// FindConversations returns the indexed conversations whose id or name is ref.
func (d *DB) FindConversations(ref string) ([]ConversationRow, error) {
	rows, err := d.db.Query(
		"SELECT "+conversationColumns+" FROM conversations WHERE conv_id = ? OR name = ? ORDER BY last_at DESC",
		ref, ref,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ConversationRow
	for rows.Next() {
		c, err := scanConversation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

type MessageRow struct {
	ConvKey    string
	MsgIdx     int
	Ts         string
	Sender     string
	Content    string
	HasContent bool
	Reactions  string
}

func (d *DB) GetMessages(key string) ([]MessageRow, error) {
	rows, err := d.db.Query(
		"SELECT conv_key, msg_idx, ts, sender, content, has_content, reactions FROM messages WHERE conv_key = ? ORDER BY msg_idx",
		key,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []MessageRow
	for rows.Next() {
		var m MessageRow
		if err := rows.Scan(&m.ConvKey, &m.MsgIdx, &m.Ts, &m.Sender, &m.Content, &m.HasContent, &m.Reactions); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

type AttachmentRow struct {
	ConvKey  string
	MsgIdx   int
	Category string
	URI      string
	Ts       string
}

func (d *DB) GetAttachments(key string) ([]AttachmentRow, error) {
	rows, err := d.db.Query(
		"SELECT conv_key, msg_idx, category, uri, ts FROM attachments WHERE conv_key = ? ORDER BY msg_idx, rowid",
		key,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AttachmentRow
	for rows.Next() {
		var a AttachmentRow
		if err := rows.Scan(&a.ConvKey, &a.MsgIdx, &a.Category, &a.URI, &a.Ts); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
