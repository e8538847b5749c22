package index

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Zuo-Peng/mda/internal/dumptest"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenDB(filepath.Join(t.TempDir(), "nested", "mda.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestIndexDump(t *testing.T) {
	db := openTestDB(t)
	d := dumptest.Sample(t)

	stats, err := IndexDump(db, d, nil)
	require.NoError(t, err)
	assert.Equal(t, Stats{Conversations: 2, Messages: 4, Attachments: 1}, stats)

	n, err := db.ConversationCount()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	n, err = db.MessageCount()
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	n, err = db.AttachmentCount()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	n, err = db.FTSCount()
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	key := Key(d.Path(), "messages/inbox/alice_1234567890/")
	conv, err := db.GetConversation(key)
	require.NoError(t, err)
	require.NotNil(t, conv)
	assert.Equal(t, "alice_1234567890", conv.Name)
	assert.Equal(t, "1234567890", conv.ConvID)
	assert.Equal(t, "inbox", conv.Type)
	assert.Equal(t, "Alice", conv.Title)
	assert.Equal(t, "Alice\nMe", conv.Participants)
	assert.Equal(t, 3, conv.MessageCount)
	assert.Equal(t, 1, conv.AttachmentCount)
	assert.Equal(t, "2023-11-14T22:13:20Z", conv.FirstAt)
	assert.Equal(t, "2023-11-14T22:15:20Z", conv.LastAt)

	msgs, err := db.GetMessages(key)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, "hello there, café?", msgs[0].Content)
	assert.True(t, msgs[0].HasContent)
	assert.Equal(t, "❤ Alice", msgs[1].Reactions)
	assert.False(t, msgs[2].HasContent)
	assert.Equal(t, "", msgs[2].Content)

	atts, err := db.GetAttachments(key)
	require.NoError(t, err)
	require.Len(t, atts, 1)
	assert.Equal(t, 2, atts[0].MsgIdx)
	assert.Equal(t, "photos", atts[0].Category)
	assert.Equal(t, "messages/inbox/alice_1234567890/photos/sunset.jpg", atts[0].URI)
}

func TestIndexDumpReplacesPreviousRun(t *testing.T) {
	db := openTestDB(t)
	d := dumptest.Sample(t)

	_, err := IndexDump(db, d, nil)
	require.NoError(t, err)
	stats, err := IndexDump(db, d, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Replaced)

	n, err := db.MessageCount()
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	n, err = db.FTSCount()
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestIndexDumpSkipsBrokenConversation(t *testing.T) {
	db := openTestDB(t)
	core, logs := observer.New(zapcore.WarnLevel)

	good := "messages/inbox/good_1111111111/"
	bad := "messages/inbox/bad_2222222222/"
	d := dumptest.Open(t, nil,
		dumptest.Dir(good),
		dumptest.File(good+"message_1.json", dumptest.Shard(t, "", []string{"A"},
			dumptest.Message{Sender: "A", TimestampMS: 1000, Content: "ok"})),
		dumptest.Dir(bad),
		dumptest.File(bad+"message_1.json", `{"messages": [{"content": "no sender"}]}`),
		dumptest.Dir("messages/inbox/empty_3333333333/"),
	)

	stats, err := IndexDump(db, d, zap.New(core))
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Conversations)
	assert.Equal(t, 2, stats.Errors)
	assert.Equal(t, 2, logs.FilterMessage("parse conversation").Len())
}

func TestGetConversationMissing(t *testing.T) {
	db := openTestDB(t)
	conv, err := db.GetConversation("nope")
	require.NoError(t, err)
	assert.Nil(t, conv)
}

func TestFindConversations(t *testing.T) {
	db := openTestDB(t)
	_, err := IndexDump(db, dumptest.Sample(t), nil)
	require.NoError(t, err)

	byID, err := db.FindConversations("abcdefghij")
	require.NoError(t, err)
	require.Len(t, byID, 1)
	assert.Equal(t, "bob_abcdefghij", byID[0].Name)
	assert.Equal(t, "message_requests", byID[0].Type)

	byName, err := db.FindConversations("alice_1234567890")
	require.NoError(t, err)
	require.Len(t, byName, 1)

	none, err := db.FindConversations("zzz")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSchemaVersionMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mda.db")
	db, err := OpenDB(path)
	require.NoError(t, err)
	_, err = db.Raw().Exec("UPDATE meta SET value = '0' WHERE key = 'schema_version'")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	_, err = OpenDB(path)
	assert.ErrorContains(t, err, "schema version")
}
