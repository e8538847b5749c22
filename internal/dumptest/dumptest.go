// Package dumptest builds small export archives on disk for tests.
package dumptest

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/require"

	"github.com/Zuo-Peng/mda/internal/dump"
)

type Entry struct {
	Name string
	Body string
}

func Dir(name string) Entry {
	return Entry{Name: name}
}

func File(name, body string) Entry {
	return Entry{Name: name, Body: body}
}

// Mojibake encodes s the way the export does: each UTF-8 byte becomes one rune.
func Mojibake(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		b.WriteRune(rune(s[i]))
	}
	return b.String()
}

type Message struct {
	Sender      string
	TimestampMS int64
	Content     string
	NoContent   bool
	Reactions   [][2]string // glyph, actor
	Photos      []string
	Files       []string
}

// Shard renders one message_N.json body with mojibake-encoded text.
func Shard(t testing.TB, title string, participants []string, msgs ...Message) string {
	t.Helper()

	type named struct {
		Name string `json:"name"`
	}
	type att struct {
		URI string `json:"uri"`
		TS  int64  `json:"creation_timestamp"`
	}
	type reaction struct {
		Reaction string `json:"reaction"`
		Actor    string `json:"actor"`
	}

	doc := map[string]any{}
	if title != "" {
		doc["title"] = Mojibake(title)
	}
	ps := make([]named, 0, len(participants))
	for _, p := range participants {
		ps = append(ps, named{Name: Mojibake(p)})
	}
	doc["participants"] = ps

	var out []map[string]any
	for _, m := range msgs {
		raw := map[string]any{
			"sender_name":  Mojibake(m.Sender),
			"timestamp_ms": m.TimestampMS,
		}
		if !m.NoContent {
			raw["content"] = Mojibake(m.Content)
		}
		if len(m.Reactions) > 0 {
			var rs []reaction
			for _, r := range m.Reactions {
				rs = append(rs, reaction{Reaction: Mojibake(r[0]), Actor: Mojibake(r[1])})
			}
			raw["reactions"] = rs
		}
		if len(m.Photos) > 0 {
			var as []att
			for _, u := range m.Photos {
				as = append(as, att{URI: u, TS: m.TimestampMS / 1000})
			}
			raw["photos"] = as
		}
		if len(m.Files) > 0 {
			var as []att
			for _, u := range m.Files {
				as = append(as, att{URI: u, TS: m.TimestampMS / 1000})
			}
			raw["files"] = as
		}
		out = append(out, raw)
	}
	doc["messages"] = out

	b, err := json.Marshal(doc)
	require.NoError(t, err)
	return string(b)
}

// WriteZip writes entries in order to a new zip under dir and returns its path.
func WriteZip(t testing.TB, dir string, entries ...Entry) string {
	t.Helper()
	path := filepath.Join(dir, "export.zip")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	for _, e := range entries {
		w, err := zw.Create(e.Name)
		require.NoError(t, err)
		if e.Body != "" {
			_, err = w.Write([]byte(e.Body))
			require.NoError(t, err)
		}
	}
	require.NoError(t, zw.Close())
	return path
}

// Open writes entries to a temporary zip and opens it. The dump is closed
// when the test ends.
func Open(t testing.TB, opts []dump.Option, entries ...Entry) *dump.DataDump {
	t.Helper()
	path := WriteZip(t, t.TempDir(), entries...)
	d, err := dump.Open(path, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })
	return d
}

// Sample is a two conversation export: alice in the inbox with a photo and a
// reaction, and a message request from bob.
func Sample(t testing.TB, opts ...dump.Option) *dump.DataDump {
	t.Helper()
	alice := "messages/inbox/alice_1234567890/"
	bob := "messages/message_requests/bob_abcdefghij/"
	return Open(t, opts,
		Dir("messages/"),
		Dir("messages/inbox/"),
		Dir(alice),
		File(alice+"message_1.json", Shard(t, "Alice", []string{"Alice", "Me"},
			Message{Sender: "Alice", TimestampMS: 1700000000000, Content: "hello there, café?"},
			Message{Sender: "Me", TimestampMS: 1700000060000, Content: "sure 👍",
				Reactions: [][2]string{{"❤", "Alice"}}},
			Message{Sender: "Alice", TimestampMS: 1700000120000, NoContent: true,
				Photos: []string{alice + "photos/sunset.jpg"}},
		)),
		Dir(alice+"photos/"),
		File(alice+"photos/sunset.jpg", "JPEGDATA"),
		Dir("messages/message_requests/"),
		Dir(bob),
		File(bob+"message_1.json", Shard(t, "", []string{"Bob", "Me"},
			Message{Sender: "Bob", TimestampMS: 1690000000000, Content: "你好 are you around"},
		)),
	)
}
