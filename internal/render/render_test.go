package render

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zuo-Peng/mda/internal/dump"
	"github.com/Zuo-Peng/mda/internal/dumptest"
	"github.com/Zuo-Peng/mda/internal/index"
)

func sampleConversation(t *testing.T) *dump.Conversation {
	t.Helper()
	d := dumptest.Sample(t)
	conv, err := d.ConversationByName("alice_1234567890", dump.Inbox)
	require.NoError(t, err)
	return conv
}

func TestConversation(t *testing.T) {
	conv := sampleConversation(t)

	out, hit := Conversation(conv, Options{Hit: -1})
	plain := StripANSI(out)
	assert.Equal(t, -1, hit)
	assert.Contains(t, plain, "--- Alice [inbox] 1234567890 ---")
	assert.Contains(t, plain, "with Alice, Me")
	assert.Contains(t, plain, "Alice > 2023-11-14 22:13:20")
	assert.Contains(t, plain, "  hello there, café?")
	assert.Contains(t, plain, "  [❤ Alice]")
	assert.Contains(t, plain, "  (no text)")
	assert.Contains(t, plain, "  photos: messages/inbox/alice_1234567890/photos/sunset.jpg")
	assert.NotContains(t, plain, "messages before")
}

func TestConversationHitWindow(t *testing.T) {
	conv := sampleConversation(t)

	out, hit := Conversation(conv, Options{Hit: 1, Context: 0})
	lines := strings.Split(out, "\n")
	require.Greater(t, hit, 0)
	assert.Contains(t, StripANSI(lines[hit]), ">> Me > 2023-11-14 22:14:20 <<")

	out, _ = Conversation(conv, Options{Hit: 2, Context: 1})
	plain := StripANSI(out)
	assert.Contains(t, plain, "... (1 messages before) ...")
	assert.NotContains(t, plain, "hello there")
}

func TestConversationLimit(t *testing.T) {
	conv := sampleConversation(t)
	out, _ := Conversation(conv, Options{Hit: -1, Limit: 1})
	plain := StripANSI(out)
	assert.Contains(t, plain, "... (2 messages before) ...")
	assert.Contains(t, plain, "(no text)")
	assert.NotContains(t, plain, "sure")
}

func TestConversationLocalTime(t *testing.T) {
	d := dumptest.Sample(t, dump.WithLocation(time.FixedZone("UTC+2", 2*3600)))
	conv, err := d.ConversationByName("alice_1234567890", "")
	require.NoError(t, err)
	out, _ := Conversation(conv, Options{Hit: -1})
	assert.Contains(t, StripANSI(out), "Alice > 2023-11-15 00:13:20")
}

func TestIndexedMatchesArchive(t *testing.T) {
	d := dumptest.Sample(t)
	db, err := index.OpenDB(filepath.Join(t.TempDir(), "mda.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	_, err = index.IndexDump(db, d, nil)
	require.NoError(t, err)

	conv, err := d.ConversationByName("alice_1234567890", dump.Inbox)
	require.NoError(t, err)
	key := index.Key(d.Path(), conv.Path)
	row, err := db.GetConversation(key)
	require.NoError(t, err)
	require.NotNil(t, row)
	msgs, err := db.GetMessages(key)
	require.NoError(t, err)
	atts, err := db.GetAttachments(key)
	require.NoError(t, err)

	for _, opts := range []Options{
		{Hit: -1},
		{Hit: 1, Context: 1, Query: "sure"},
		{Hit: -1, Limit: 1, Width: 20},
	} {
		want, wantHit := Conversation(conv, opts)
		got, gotHit := Indexed(row, msgs, atts, opts)
		assert.Equal(t, want, got, "%+v", opts)
		assert.Equal(t, wantHit, gotHit)
	}
}

func TestIndexedFallbacks(t *testing.T) {
	row := &index.ConversationRow{Name: "carol_1", ConvID: "1", Type: "inbox"}
	msgs := []index.MessageRow{{MsgIdx: 0, Ts: "not a time", Sender: "Carol"}}

	out, _ := Indexed(row, msgs, nil, Options{Hit: -1})
	plain := StripANSI(out)
	assert.Contains(t, plain, "--- carol_1 [inbox] 1 ---")
	assert.NotContains(t, plain, "with ")
	assert.Contains(t, plain, "Carol > not a time")
	assert.Contains(t, plain, "(no text)")

	out, _ = Indexed(row, nil, nil, Options{Hit: -1})
	assert.Contains(t, out, "(empty conversation)")
}

func TestHighlightKeywords(t *testing.T) {
	assert.Equal(t, "say "+colorBoldRed+"Hello"+colorReset+" x", highlightKeywords("say Hello x", "hello"))
	assert.Equal(t, "a or b", highlightKeywords("a or b", "OR"))
	assert.Equal(t, colorBoldRed+"café"+colorReset, highlightKeywords("café", `"café"`))
	assert.Equal(t, "plain", highlightKeywords("plain", ""))
}

func TestWrapLine(t *testing.T) {
	assert.Equal(t, []string{"abc", "def", "g"}, wrapLine("abcdefg", 3))
	assert.Equal(t, []string{"x"}, wrapLine("x", 0))
	assert.Equal(t, []string{""}, wrapLine("", 5))

	for _, l := range wrapLine("日本語の文章です", 5) {
		assert.LessOrEqual(t, runewidth.StringWidth(l), 5)
	}

	colored := colorDim + "abcdef" + colorReset
	lines := wrapLine(colored, 3)
	require.Len(t, lines, 2)
	assert.Equal(t, "abc", StripANSI(lines[0]))
}
