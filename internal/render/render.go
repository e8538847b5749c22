package render

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"

	"github.com/Zuo-Peng/mda/internal/dump"
	"github.com/Zuo-Peng/mda/internal/index"
)

const (
	colorReset   = "\033[0m"
	colorSender  = "\033[1;34m" // bold blue
	colorSelf    = "\033[1;32m" // bold green
	colorDim     = "\033[2m"
	colorHit     = "\033[43m"   // yellow background
	colorBoldRed = "\033[1;31m" // bold red for keyword highlights
)

type Options struct {
	Hit     int    // message index to mark; <0 for none
	Context int    // messages before/after Hit to show
	Limit   int    // without a hit, show only the last Limit messages (0 = all)
	Width   int    // wrap width (0 = no wrap)
	Query   string // search query for keyword highlighting
	Self    string // sender name drawn in the second color
}

// fts5Operators are FTS5 operators that should not be highlighted as keywords.
var fts5Operators = map[string]bool{
	"AND": true, "OR": true, "NOT": true, "NEAR": true,
	"and": true, "or": true, "not": true, "near": true,
}

// highlightKeywords wraps case-insensitive matches of query terms in bold red ANSI codes.
func highlightKeywords(text, query string) string {
	if query == "" {
		return text
	}
	var filtered []string
	for _, t := range strings.Fields(query) {
		t = strings.Trim(t, `"*()`)
		if t != "" && !fts5Operators[t] {
			filtered = append(filtered, t)
		}
	}
	for _, term := range filtered {
		text = highlightTerm(text, []rune(term))
	}
	return text
}

func highlightTerm(text string, term []rune) string {
	runes := []rune(text)
	var b strings.Builder
	i := 0
	for i < len(runes) {
		if i+len(term) <= len(runes) && strings.EqualFold(string(runes[i:i+len(term)]), string(term)) {
			b.WriteString(colorBoldRed)
			b.WriteString(string(runes[i : i+len(term)]))
			b.WriteString(colorReset)
			i += len(term)
			continue
		}
		b.WriteRune(runes[i])
		i++
	}
	return b.String()
}

// indentLines prepends each line of text with the given prefix.
func indentLines(text, prefix string) string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}

// wrapLine breaks a single line into multiple lines that fit within maxWidth
// visible columns, correctly skipping ANSI escape sequences when measuring width.
func wrapLine(line string, maxWidth int) []string {
	if maxWidth <= 0 {
		return []string{line}
	}

	var result []string
	var cur strings.Builder
	visW := 0

	i := 0
	for i < len(line) {
		// check for ANSI escape sequence: ESC[ ... m
		if i+1 < len(line) && line[i] == '\033' && line[i+1] == '[' {
			j := i + 2
			for j < len(line) && line[j] != 'm' {
				j++
			}
			if j < len(line) {
				j++ // include 'm'
			}
			cur.WriteString(line[i:j])
			i = j
			continue
		}

		r, size := utf8.DecodeRuneInString(line[i:])
		rw := runewidth.RuneWidth(r)

		if visW+rw > maxWidth && visW > 0 {
			result = append(result, cur.String())
			cur.Reset()
			visW = 0
		}

		cur.WriteRune(r)
		visW += rw
		i += size
	}

	if cur.Len() > 0 {
		result = append(result, cur.String())
	}

	if len(result) == 0 {
		return []string{""}
	}
	return result
}

// window picks the slice of messages to draw.
func window(n int, opts Options) (start, end int) {
	switch {
	case opts.Hit >= 0 && opts.Hit < n:
		ctx := opts.Context
		if ctx == 0 {
			ctx = 10
		}
		if ctx < 0 {
			return 0, n
		}
		start = max(opts.Hit-ctx, 0)
		end = min(opts.Hit+ctx+1, n)
		return start, end
	case opts.Limit > 0 && opts.Limit < n:
		return n - opts.Limit, n
	default:
		return 0, n
	}
}

// view is what gets drawn, whether it came from the archive or the index.
type view struct {
	title        string
	typ          string
	id           string
	participants []string
	entries      []entry
}

type entry struct {
	sender      string
	ts          string
	text        string
	hasText     bool
	reactions   []string // "glyph actor"
	attachments []string // "category: uri"
}

const timeLayout = "2006-01-02 15:04:05"

func fromDump(conv *dump.Conversation) view {
	v := view{
		title:        conv.Title,
		typ:          string(conv.Type),
		id:           conv.Info().ID,
		participants: conv.Participants,
	}
	if v.title == "" {
		v.title = conv.Name
	}
	for _, m := range conv.Messages {
		e := entry{
			sender:  m.SenderName,
			ts:      m.Local.Format(timeLayout),
			text:    m.Text(),
			hasText: m.HasContent(),
		}
		for _, r := range m.Reactions {
			e.reactions = append(e.reactions, r.Type+" "+r.Actor)
		}
		for _, a := range m.Attachments.All {
			e.attachments = append(e.attachments, fmt.Sprintf("%s: %s", a.Category, a.URI))
		}
		v.entries = append(v.entries, e)
	}
	return v
}

func fromIndex(c *index.ConversationRow, msgs []index.MessageRow, atts []index.AttachmentRow) view {
	v := view{title: c.Title, typ: c.Type, id: c.ConvID}
	if v.title == "" {
		v.title = c.Name
	}
	if c.Participants != "" {
		v.participants = strings.Split(c.Participants, "\n")
	}

	byMsg := make(map[int][]string)
	for _, a := range atts {
		byMsg[a.MsgIdx] = append(byMsg[a.MsgIdx], fmt.Sprintf("%s: %s", a.Category, a.URI))
	}
	for _, m := range msgs {
		e := entry{
			sender:      m.Sender,
			ts:          m.Ts,
			text:        m.Content,
			hasText:     m.HasContent,
			attachments: byMsg[m.MsgIdx],
		}
		if t, err := time.Parse(index.TimeFormat, m.Ts); err == nil {
			e.ts = t.Format(timeLayout)
		}
		if m.Reactions != "" {
			e.reactions = strings.Split(m.Reactions, "\n")
		}
		v.entries = append(v.entries, e)
	}
	return v
}

// Conversation renders conv and returns the content and the 0-based line
// number of the hit message header (-1 if no hit).
func Conversation(conv *dump.Conversation, opts Options) (string, int) {
	return draw(fromDump(conv), opts)
}

// Indexed renders a conversation from its index rows. Times are UTC.
func Indexed(c *index.ConversationRow, msgs []index.MessageRow, atts []index.AttachmentRow, opts Options) (string, int) {
	return draw(fromIndex(c, msgs, atts), opts)
}

func draw(v view, opts Options) (string, int) {
	var b strings.Builder
	hitLine := -1
	lineCount := 0
	separator := colorDim + strings.Repeat("-", 50) + colorReset

	// helper to track line count; wraps long lines if Width is set
	writeLine := func(s string) {
		for _, wl := range wrapLine(s, opts.Width) {
			b.WriteString(wl)
			b.WriteString("\n")
			lineCount++
		}
	}

	writeLine(fmt.Sprintf("%s--- %s [%s] %s ---%s", colorDim, v.title, v.typ, v.id, colorReset))
	if len(v.participants) > 0 {
		writeLine(fmt.Sprintf("%swith %s%s", colorDim, strings.Join(v.participants, ", "), colorReset))
	}

	if len(v.entries) == 0 {
		writeLine("(empty conversation)")
		return b.String(), hitLine
	}

	start, end := window(len(v.entries), opts)
	if start > 0 {
		writeLine(fmt.Sprintf("%s... (%d messages before) ...%s", colorDim, start, colorReset))
	}

	for i := start; i < end; i++ {
		e := v.entries[i]
		isHit := i == opts.Hit

		if i > start {
			writeLine(separator)
		}
		if isHit {
			hitLine = lineCount
		}

		if isHit {
			writeLine(fmt.Sprintf("%s>> %s > %s <<%s", colorHit, e.sender, e.ts, colorReset))
		} else {
			color := colorSender
			if opts.Self != "" && e.sender == opts.Self {
				color = colorSelf
			}
			writeLine(fmt.Sprintf("%s%s >%s %s%s%s", color, e.sender, colorReset, colorDim, e.ts, colorReset))
		}

		text := colorDim + "(no text)" + colorReset
		if e.hasText {
			text = highlightKeywords(e.text, opts.Query)
		}
		for _, tl := range strings.Split(indentLines(text, "  "), "\n") {
			writeLine(tl)
		}

		if len(e.reactions) > 0 {
			writeLine(fmt.Sprintf("  %s[%s]%s", colorDim, strings.Join(e.reactions, ", "), colorReset))
		}
		for _, a := range e.attachments {
			writeLine(fmt.Sprintf("  %s%s%s", colorDim, a, colorReset))
		}
		writeLine("") // blank line after message
	}

	if after := len(v.entries) - end; after > 0 {
		writeLine(fmt.Sprintf("%s... (%d messages after) ...%s", colorDim, after, colorReset))
	}

	return b.String(), hitLine
}

// StripANSI removes the escape sequences written by this package.
func StripANSI(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\033' && i+1 < len(s) && s[i+1] == '[' {
			j := i + 2
			for j < len(s) && s[j] != 'm' {
				j++
			}
			i = j
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
