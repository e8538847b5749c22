package tui

import (
	"strings"
	"sync"

	"github.com/Zuo-Peng/mda/internal/dump"
	"github.com/Zuo-Peng/mda/internal/render"
	"github.com/Zuo-Peng/mda/internal/search"
)

// item is one row of the list panel.
type item struct {
	info    dump.ConversationInfo
	hit     int    // message index of a search hit, -1 otherwise
	ts      string // UTC time of the hit or last activity, may be empty
	sender  string
	snippet string
}

// source serializes access to the dump. Bubbletea runs commands on their own
// goroutines and a DataDump must not be used concurrently.
type source struct {
	mu sync.Mutex
	d  *dump.DataDump
}

func (s *source) conversations() []dump.ConversationInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.d.Conversations()
}

// filter returns the conversations whose name, id or type contains q,
// ignoring case. An empty q keeps everything.
func (s *source) filter(q string) []item {
	q = strings.ToLower(strings.TrimSpace(q))
	var out []item
	for _, info := range s.conversations() {
		if q != "" &&
			!strings.Contains(strings.ToLower(info.Name), q) &&
			!strings.Contains(string(info.Type), q) {
			continue
		}
		out = append(out, item{info: info, hit: -1, snippet: info.Path})
	}
	return out
}

// fromResults keeps the search results that belong to this dump.
func (s *source) fromResults(results []search.Result) []item {
	byPath := make(map[string]dump.ConversationInfo)
	for _, info := range s.conversations() {
		byPath[info.Path] = info
	}

	s.mu.Lock()
	dumpPath := s.d.Path()
	s.mu.Unlock()

	var out []item
	for _, r := range results {
		info, ok := byPath[r.Path]
		if !ok || r.DumpPath != dumpPath {
			continue
		}
		out = append(out, item{info: info, hit: r.MsgIdx, ts: r.Ts, sender: r.Sender, snippet: r.Snippet})
	}
	return out
}

// render parses the conversation behind it and renders it for the preview.
func (s *source) render(it item, query string, width int) (string, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, err := s.d.ConversationByInfo(it.info)
	if err != nil {
		return "", -1, err
	}
	content, hitLine := render.Conversation(conv, render.Options{
		Hit:     it.hit,
		Context: -1,
		Width:   width,
		Query:   query,
	})
	return content, hitLine, nil
}
