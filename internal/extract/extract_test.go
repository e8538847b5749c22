package extract

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zuo-Peng/mda/internal/dump"
	"github.com/Zuo-Peng/mda/internal/dumptest"
)

const alice = "messages/inbox/alice_1234567890/"

func TestAttachments(t *testing.T) {
	d := dumptest.Sample(t)
	conv, err := d.ConversationByName("alice_1234567890", dump.Inbox)
	require.NoError(t, err)

	dir := t.TempDir()
	stats, err := Attachments(conv, dir, Options{})
	require.NoError(t, err)
	assert.Equal(t, Stats{Files: 1, Bytes: 8}, stats)

	dst := filepath.Join(dir, alice, "photos", "sunset.jpg")
	body, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "JPEGDATA", string(body))

	fi, err := os.Stat(dst)
	require.NoError(t, err)
	assert.True(t, fi.ModTime().Equal(time.Unix(1700000120, 0)))
}

func TestAttachmentsCategoryFilter(t *testing.T) {
	d := dumptest.Sample(t)
	conv, err := d.ConversationByName("alice_1234567890", dump.Inbox)
	require.NoError(t, err)

	stats, err := Attachments(conv, t.TempDir(), Options{Category: dump.Videos})
	require.NoError(t, err)
	assert.Zero(t, stats.Files)

	_, err = Attachments(conv, t.TempDir(), Options{Category: "stickers"})
	assert.ErrorIs(t, err, dump.ErrInvalidArgument)
}

func TestAttachmentsMissingEntry(t *testing.T) {
	d := dumptest.Open(t, nil,
		dumptest.Dir(alice),
		dumptest.File(alice+"message_1.json", dumptest.Shard(t, "", []string{"A"},
			dumptest.Message{Sender: "A", TimestampMS: 1000, Files: []string{alice + "files/gone.pdf"}})),
	)
	conv, err := d.ConversationByName("alice_1234567890", dump.Inbox)
	require.NoError(t, err)

	_, err = Attachments(conv, t.TempDir(), Options{})
	assert.ErrorIs(t, err, dump.ErrNotFound)
}

func TestAttachmentsRejectsEscape(t *testing.T) {
	d := dumptest.Open(t, nil,
		dumptest.Dir(alice),
		dumptest.File(alice+"message_1.json", dumptest.Shard(t, "", []string{"A"},
			dumptest.Message{Sender: "A", TimestampMS: 1000, Files: []string{"../../etc/passwd"}})),
	)
	conv, err := d.ConversationByName("alice_1234567890", dump.Inbox)
	require.NoError(t, err)

	_, err = Attachments(conv, t.TempDir(), Options{})
	assert.ErrorIs(t, err, ErrUnsafePath)
}

func TestTarget(t *testing.T) {
	got, err := target("/out", "messages/inbox/a/photos/x.jpg")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/out", "messages", "inbox", "a", "photos", "x.jpg"), got)

	got, err = target("/out", "a/../b.txt")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/out", "b.txt"), got)

	for _, bad := range []string{"..", "../x", "a/../../x", "/etc/passwd"} {
		_, err := target("/out", bad)
		assert.ErrorIs(t, err, ErrUnsafePath, bad)
	}
}

func TestOpenRunsViewer(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("needs a posix shell")
	}
	d := dumptest.Sample(t)
	conv, err := d.ConversationByName("alice_1234567890", dump.Inbox)
	require.NoError(t, err)
	require.Len(t, conv.Attachments.Photos, 1)

	out := filepath.Join(t.TempDir(), "seen")
	script := filepath.Join(t.TempDir(), "viewer.sh")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\ncp \"$1\" "+out+"\n"), 0o755))

	path, err := Open(conv.Attachments.Photos[0], script)
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(filepath.Dir(path)) })
	assert.Equal(t, "sunset.jpg", filepath.Base(path))

	body, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "JPEGDATA", string(body))
}

func TestViewerCommandBlankViewer(t *testing.T) {
	t.Setenv("VIEWER", "")
	for _, blank := range []string{"", "   ", "\t\n"} {
		cmd := viewerCommand(blank, "/tmp/x.jpg")
		assert.Equal(t, []string{"xdg-open", "/tmp/x.jpg"}, cmd.Args, "%q", blank)
	}

	t.Setenv("VIEWER", "feh -F")
	cmd := viewerCommand(" ", "/tmp/x.jpg")
	assert.Equal(t, []string{"feh", "-F", "/tmp/x.jpg"}, cmd.Args)

	cmd = viewerCommand("less -R", "/tmp/x.txt")
	assert.Equal(t, []string{"less", "-R", "/tmp/x.txt"}, cmd.Args)
	assert.Equal(t, os.Stdout, cmd.Stdout)
}
