package search

import (
	"database/sql"
	"fmt"
	"strings"
	"unicode"

	"github.com/Zuo-Peng/mda/internal/index"
)

type Result struct {
	ConvKey  string
	MsgIdx   int // -1 for conversation listings
	Ts       string
	DumpPath string
	Path     string
	Type     string
	Name     string
	ConvID   string
	Title    string
	Sender   string
	Snippet  string
	Rank     float64
}

type Options struct {
	Query  string
	Type   string // "" = all, "inbox", "message_requests", "archived_threads"
	Sender string // "" = all
	Since  string // "" = no filter, e.g. "2024-01-01"
	Limit  int
}

// containsCJK returns true if the string contains any CJK Unified Ideograph.
func containsCJK(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Han, r) {
			return true
		}
	}
	return false
}

// foldIndex is a case-insensitive rune index of q in text, or -1.
func foldIndex(text, q []rune) int {
	if len(q) == 0 {
		return 0
	}
outer:
	for i := 0; i+len(q) <= len(text); i++ {
		for j := range q {
			if unicode.ToLower(text[i+j]) != unicode.ToLower(q[j]) {
				continue outer
			}
		}
		return i
	}
	return -1
}

// makeSnippet extracts a snippet around the first occurrence of query in text.
func makeSnippet(text, query string, contextChars int) string {
	runes := []rune(text)
	qRunes := []rune(query)
	runePos := foldIndex(runes, qRunes)
	if runePos < 0 {
		// no match, return head
		if len(runes) > contextChars*2 {
			return string(runes[:contextChars*2]) + "..."
		}
		return text
	}
	start := runePos - contextChars
	if start < 0 {
		start = 0
	}
	end := runePos + len(qRunes) + contextChars
	if end > len(runes) {
		end = len(runes)
	}
	prefix := ""
	suffix := ""
	if start > 0 {
		prefix = "..."
	}
	if end < len(runes) {
		suffix = "..."
	}
	// wrap the matched part with markers
	snippet := string(runes[start:runePos]) +
		">>>" + string(runes[runePos:runePos+len(qRunes)]) + "<<<" +
		string(runes[runePos+len(qRunes):end])
	return prefix + snippet + suffix
}

// Search finds messages matching opts.Query and returns the best hit per
// conversation. Queries with Han characters use substring matching since
// the FTS tokenizer does not split them into words.
func Search(db *index.DB, opts Options) ([]Result, error) {
	if strings.TrimSpace(opts.Query) == "" {
		return nil, fmt.Errorf("empty query")
	}
	if opts.Limit <= 0 {
		opts.Limit = 100
	}

	// Fetch more results before dedup so we still have enough after
	origLimit := opts.Limit
	opts.Limit = origLimit * 3

	var results []Result
	var err error
	if containsCJK(opts.Query) {
		results, err = searchLike(db, opts)
	} else {
		results, err = searchFTS(db, opts)
	}
	if err != nil {
		return nil, err
	}

	// Deduplicate: keep only the best-ranked result per conversation
	seen := make(map[string]bool)
	var deduped []Result
	for _, r := range results {
		if seen[r.ConvKey] {
			continue
		}
		seen[r.ConvKey] = true
		deduped = append(deduped, r)
		if len(deduped) >= origLimit {
			break
		}
	}
	return deduped, nil
}

// filters returns the shared WHERE clauses for type, sender and since.
func filters(opts Options) ([]string, []any) {
	var conditions []string
	var args []any

	if opts.Type != "" {
		conditions = append(conditions, "cv.type = ?")
		args = append(args, opts.Type)
	}
	if opts.Sender != "" {
		conditions = append(conditions, "m.sender = ? COLLATE NOCASE")
		args = append(args, opts.Sender)
	}
	if opts.Since != "" {
		conditions = append(conditions, "m.ts >= ?")
		args = append(args, opts.Since)
	}
	return conditions, args
}

const resultColumns = `
			m.conv_key,
			m.msg_idx,
			m.ts,
			cv.dump_path,
			cv.path,
			cv.type,
			cv.name,
			cv.conv_id,
			cv.title,
			m.sender`

func searchFTS(db *index.DB, opts Options) ([]Result, error) {
	conditions := []string{"messages_fts MATCH ?"}
	args := []any{opts.Query}

	more, moreArgs := filters(opts)
	conditions = append(conditions, more...)
	args = append(args, moreArgs...)

	query := fmt.Sprintf(`
		SELECT %s,
			snippet(messages_fts, 0, '>>>','<<<', '...', 40) as snip,
			bm25(messages_fts, 1.0) as rank
		FROM messages_fts
		JOIN messages m ON messages_fts.rowid = m.rowid
		JOIN conversations cv ON m.conv_key = cv.conv_key
		WHERE %s
		ORDER BY rank
		LIMIT ?
	`, resultColumns, strings.Join(conditions, " AND "))

	args = append(args, opts.Limit)

	rows, err := db.Raw().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("search query: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var r Result
		dest := append(r.fields(), &r.Snippet, &r.Rank)
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

func searchLike(db *index.DB, opts Options) ([]Result, error) {
	// LIKE match for CJK substring search
	conditions := []string{"m.content LIKE ?"}
	args := []any{"%" + opts.Query + "%"}

	more, moreArgs := filters(opts)
	conditions = append(conditions, more...)
	args = append(args, moreArgs...)

	query := fmt.Sprintf(`
		SELECT %s,
			m.content
		FROM messages m
		JOIN conversations cv ON m.conv_key = cv.conv_key
		WHERE %s
		ORDER BY m.ts_ms DESC
		LIMIT ?
	`, resultColumns, strings.Join(conditions, " AND "))

	args = append(args, opts.Limit)

	rows, err := db.Raw().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("search query: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var r Result
		var fullText string
		if err := rows.Scan(append(r.fields(), &fullText)...); err != nil {
			return nil, err
		}
		r.Snippet = makeSnippet(fullText, opts.Query, 30)
		results = append(results, r)
	}
	return results, rows.Err()
}

func (r *Result) fields() []any {
	return []any{
		&r.ConvKey, &r.MsgIdx, &r.Ts,
		&r.DumpPath, &r.Path, &r.Type,
		&r.Name, &r.ConvID, &r.Title, &r.Sender,
	}
}

// ListAll returns indexed conversations, most recently active first. The
// snippet is the participant list.
func ListAll(db *index.DB, opts Options) ([]Result, error) {
	if opts.Limit <= 0 {
		opts.Limit = 100
	}

	var conditions []string
	var args []any
	if opts.Type != "" {
		conditions = append(conditions, "type = ?")
		args = append(args, opts.Type)
	}
	if opts.Since != "" {
		conditions = append(conditions, "last_at >= ?")
		args = append(args, opts.Since)
	}
	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`
		SELECT conv_key, last_at, dump_path, path, type, name, conv_id, title, participants
		FROM conversations
		%s
		ORDER BY last_at DESC, name
		LIMIT ?
	`, where)
	args = append(args, opts.Limit)

	rows, err := db.Raw().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list query: %w", err)
	}
	defer rows.Close()

	return scanListing(rows)
}

func scanListing(rows *sql.Rows) ([]Result, error) {
	var results []Result
	for rows.Next() {
		r := Result{MsgIdx: -1}
		var participants string
		if err := rows.Scan(
			&r.ConvKey, &r.Ts, &r.DumpPath, &r.Path,
			&r.Type, &r.Name, &r.ConvID, &r.Title, &participants,
		); err != nil {
			return nil, err
		}
		r.Snippet = strings.ReplaceAll(participants, "\n", ", ")
		results = append(results, r)
	}
	return results, rows.Err()
}
