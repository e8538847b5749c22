package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/Zuo-Peng/mda/internal/config"
	"github.com/Zuo-Peng/mda/internal/dump"
	"github.com/Zuo-Peng/mda/internal/index"
	"github.com/Zuo-Peng/mda/internal/logging"
	"github.com/Zuo-Peng/mda/internal/scan"
)

// app holds the global flags and what setup derives from them.
type app struct {
	configPath string
	dumpPath   string
	timezone   string
	dbPath     string
	logLevel   string

	cfg *config.Config
	log *zap.Logger
}

// setup loads the config, applies flag overrides and builds the logger.
func (a *app) setup() error {
	var cfg *config.Config
	var err error
	if a.configPath != "" {
		cfg, err = config.LoadFile(a.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if a.dumpPath != "" {
		cfg.DumpPath = config.ExpandHome(a.dumpPath)
	}
	if a.timezone != "" {
		cfg.Timezone = a.timezone
	}
	if a.dbPath != "" {
		cfg.DBPath = config.ExpandHome(a.dbPath)
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	a.cfg = cfg
	a.log = log
	return nil
}

// dumps lists the configured exports, newest first.
func (a *app) dumps() ([]scan.FileInfo, error) {
	if a.cfg.DumpPath == "" {
		return nil, errors.New("no export configured: pass --dump or set dump_path in the config")
	}
	files, err := scan.FindDumps(a.cfg.DumpPath)
	if err != nil {
		return nil, fmt.Errorf("find exports: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no .zip exports under %s", a.cfg.DumpPath)
	}
	return files, nil
}

func (a *app) openDumpAt(path string) (*dump.DataDump, error) {
	loc, err := a.cfg.Location()
	if err != nil {
		return nil, err
	}
	d, err := dump.Open(path, dump.WithLocation(loc), dump.WithLogger(a.log.Named("dump")))
	if err != nil {
		return nil, err
	}
	a.log.Debug("opened export", zap.String("path", path))
	return d, nil
}

// openDump opens the newest configured export.
func (a *app) openDump() (*dump.DataDump, error) {
	files, err := a.dumps()
	if err != nil {
		return nil, err
	}
	return a.openDumpAt(files[0].Path)
}

func (a *app) openDB() (*index.DB, error) {
	db, err := index.OpenDB(a.cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	return db, nil
}

// findConversation resolves ref as a conversation id first, then as a
// directory name in any conversation type.
func findConversation(d *dump.DataDump, ref string) (*dump.Conversation, error) {
	if info, ok := d.FindByID(ref); ok {
		return d.ConversationByInfo(info)
	}
	for _, info := range d.Conversations() {
		if info.Name == ref {
			return d.ConversationByInfo(info)
		}
	}
	return nil, fmt.Errorf("conversation %q: %w", ref, dump.ErrNotFound)
}

// openConversation resolves ref in the newest export. When that export does
// not have it, the index is asked which export does. The caller closes the
// returned dump.
func (a *app) openConversation(ref string) (*dump.DataDump, *dump.Conversation, error) {
	d, err := a.openDump()
	if err != nil {
		return nil, nil, err
	}
	conv, err := findConversation(d, ref)
	if err == nil {
		return d, conv, nil
	}
	d.Close()
	if !errors.Is(err, dump.ErrNotFound) {
		return nil, nil, err
	}

	row, ierr := a.lookupIndexed(ref)
	if ierr != nil {
		a.log.Debug("index lookup", zap.String("ref", ref), zap.Error(ierr))
		return nil, nil, err
	}
	d, err = a.openDumpAt(row.DumpPath)
	if err != nil {
		return nil, nil, err
	}
	conv, err = d.ConversationByName(row.Name, dump.ConversationType(row.Type))
	if err != nil {
		d.Close()
		return nil, nil, err
	}
	a.log.Debug("resolved from index", zap.String("ref", ref), zap.String("dump", row.DumpPath))
	return d, conv, nil
}

// lookupIndexed finds ref in the index without creating a database that is
// not there yet.
func (a *app) lookupIndexed(ref string) (*index.ConversationRow, error) {
	if _, err := os.Stat(a.cfg.DBPath); err != nil {
		return nil, err
	}
	db, err := a.openDB()
	if err != nil {
		return nil, err
	}
	defer db.Close()
	return indexedConversation(db, ref)
}

// indexedConversation resolves ref as a full conversation key (dump!path),
// else as an id or name, preferring the most recently active match.
func indexedConversation(db *index.DB, ref string) (*index.ConversationRow, error) {
	if strings.Contains(ref, "!") {
		c, err := db.GetConversation(ref)
		if err != nil {
			return nil, err
		}
		if c != nil {
			return c, nil
		}
		return nil, fmt.Errorf("indexed conversation %q: %w", ref, dump.ErrNotFound)
	}

	rows, err := db.FindConversations(ref)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("indexed conversation %q: %w", ref, dump.ErrNotFound)
	}
	return &rows[0], nil
}

func stdoutIsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// terminalWidth is the stdout width, or 0 when stdout is not a terminal.
func terminalWidth() int {
	if !stdoutIsTerminal() {
		return 0
	}
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return 0
	}
	return w
}
