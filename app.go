package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/metcalfc/skim/internal/library"
	"github.com/metcalfc/skim/internal/logs"
	"github.com/metcalfc/skim/internal/playback"
	"github.com/metcalfc/skim/internal/reader"
	"github.com/metcalfc/skim/internal/settings"
	"github.com/metcalfc/skim/internal/state"
	"github.com/metcalfc/skim/internal/text"
)

// Version info (injected via ldflags)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var errNoText = errors.New("no text to read")

type options struct {
	wpm         int
	showVersion bool
	fresh       bool
	showTOC     bool
	list        bool
	open        string
	delete      string
	save        bool
	rename      string
	title       string
	configPath  string
	logLevel    string
	file        string

	// journal enables the systemd journal handler; not a flag.
	journal bool
}

func parseOptions(name string, args []string, stderr io.Writer) (options, error) {
	var o options
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.IntVar(&o.wpm, "w", 0, "Words per minute (default from settings: 200)")
	fs.BoolVar(&o.showVersion, "v", false, "Show version information")
	fs.BoolVar(&o.showVersion, "version", false, "Show version information")
	fs.BoolVar(&o.fresh, "fresh", false, "Ignore saved reading position")
	fs.BoolVar(&o.showTOC, "toc", false, "Show table of contents at startup")
	fs.BoolVar(&o.list, "list", false, "List saved documents and exit")
	fs.StringVar(&o.open, "open", "", "Open a saved document by ID")
	fs.StringVar(&o.delete, "delete", "", "Delete a saved document by ID and exit")
	fs.BoolVar(&o.save, "save", false, "Save text read from stdin to the library")
	fs.StringVar(&o.rename, "rename", "", "Rename a saved document by ID (with -title) and exit")
	fs.StringVar(&o.title, "title", "", "Title for -save or -rename")
	fs.StringVar(&o.configPath, "config", "", "Config file (default "+settings.DefaultPath()+")")
	fs.StringVar(&o.logLevel, "log-level", "info", "Log level: debug, info, warn or error")
	fs.Usage = func() { usage(fs, name) }

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if fs.NArg() > 1 {
		return options{}, fmt.Errorf("expected at most one file, got %d", fs.NArg())
	}
	if fs.NArg() == 1 {
		o.file = fs.Arg(0)
	}
	if o.rename != "" && o.title == "" {
		return options{}, errors.New("-rename needs -title")
	}
	if o.wpm != 0 && (o.wpm < settings.MinWordsPerMinute || o.wpm > settings.MaxConfiguredWPM) {
		return options{}, fmt.Errorf("-w must be between %d and %d", settings.MinWordsPerMinute, settings.MaxConfiguredWPM)
	}
	return o, nil
}

func usage(fs *flag.FlagSet, name string) {
	w := fs.Output()
	fmt.Fprintf(w, "Skim - Speed Reading Tool\n\n")
	fmt.Fprintf(w, "Usage:\n")
	fmt.Fprintf(w, "  %s [options] [file]\n\n", name)
	fmt.Fprintf(w, "Options:\n")
	fs.PrintDefaults()
	fmt.Fprintf(w, "\nFormats: plain text, %s\n", strings.Join(reader.SupportedFormats(), ", "))
	fmt.Fprintf(w, "\nExamples:\n")
	fmt.Fprintf(w, "  %s book.epub              Read a file, resuming where you left off\n", name)
	fmt.Fprintf(w, "  %s -w 350 notes.md        Read at 350 WPM\n", name)
	fmt.Fprintf(w, "  cat file.txt | %s         Read from stdin\n", name)
	fmt.Fprintf(w, "  %s                        Continue the last document\n", name)
	fmt.Fprintf(w, "  %s -list                  Show saved documents\n", name)
	fmt.Fprintf(w, "  cat a.txt | %s -save -title Notes   Save stdin under a title\n", name)
	fmt.Fprintf(w, "\nControls:\n")
	fmt.Fprintf(w, "  SPACE    Pause/play\n")
	fmt.Fprintf(w, "  ↑/↓      Speed while reading, paragraph while paused\n")
	fmt.Fprintf(w, "  ←/→      Sentence back/forward\n")
	fmt.Fprintf(w, "  +/-      Speed\n")
	fmt.Fprintf(w, "  R        Restart\n")
	fmt.Fprintf(w, "  S        Save stdin text to the library\n")
	fmt.Fprintf(w, "  T        Table of contents\n")
	fmt.Fprintf(w, "  Q        Quit\n")
}

// app holds the pieces shared by both frontends.
type app struct {
	opts     options
	logger   *slog.Logger
	closeLog func() error
	store    *state.Store
	library  *library.Library
	prefs    *settings.Store
	settings settings.Settings

	// sched drives engine timers; nil uses the system clock.
	sched playback.Scheduler
}

func newApp(opts options, stateDir string) (*app, error) {
	level, err := logs.ParseLevel(opts.logLevel)
	if err != nil {
		return nil, err
	}
	logs.Level.Set(level)

	store, err := state.Open(stateDir)
	if err != nil {
		return nil, err
	}

	logger, closeLog, err := logs.New(logs.Options{Dir: stateDir, Journal: opts.journal})
	if err != nil {
		return nil, err
	}

	prefs := settings.NewStore(store)
	configPath := opts.configPath
	if configPath == "" {
		configPath = settings.DefaultPath()
	}
	s, err := settings.Resolve(configPath, prefs)
	if err != nil {
		closeLog()
		return nil, fmt.Errorf("load settings: %w", err)
	}
	if opts.wpm != 0 {
		s.WordsPerMinute = opts.wpm
	}

	lib, err := library.New(store)
	if err != nil {
		closeLog()
		return nil, err
	}

	logger.Debug("started",
		"version", version,
		"state", store.Path(),
		"config", configPath,
		"wpm", s.WordsPerMinute,
	)

	return &app{
		opts:     opts,
		logger:   logger,
		closeLog: closeLog,
		store:    store,
		library:  lib,
		prefs:    prefs,
		settings: s,
	}, nil
}

func (a *app) Close() error {
	return a.closeLog()
}

// session is the text chosen for reading.
type session struct {
	docID string
	title string
	text  string
	start int
	toc   []reader.TOCEntry
}

// temp reports whether the text is unsaved stdin input.
func (s session) temp() bool {
	return s.docID == ""
}

// openSession picks what to read: an explicit file or stdin, a document
// named with -open, the active document, or the most recently read one.
func (a *app) openSession(stdin io.Reader, piped bool) (session, error) {
	switch {
	case a.opts.file != "":
		return a.openFile(a.opts.file)
	case piped:
		data, err := io.ReadAll(stdin)
		if err != nil {
			return session{}, fmt.Errorf("read stdin: %w", err)
		}
		return a.openStdin(string(data))
	case a.opts.open != "":
		doc, ok := a.library.Get(a.opts.open)
		if !ok {
			return session{}, fmt.Errorf("%s: %w", a.opts.open, library.ErrNotFound)
		}
		return a.openDocument(doc)
	}

	if doc, ok := a.library.Active(); ok {
		return a.openDocument(doc)
	}
	if docs := a.library.Documents(); len(docs) > 0 {
		return a.openDocument(docs[0])
	}
	return session{}, errNoText
}

func (a *app) openFile(filename string) (session, error) {
	book, err := reader.Open(filename)
	if err != nil {
		return session{}, fmt.Errorf("failed to read file '%s': %w", filename, err)
	}
	content := book.Text()
	if strings.TrimSpace(content) == "" {
		return session{}, errNoText
	}

	doc, err := a.library.Add(a.library.NewDocument(content, library.SourceFile, book.Title))
	if errors.Is(err, library.ErrStorageFull) {
		a.logger.Warn("library full, reading without saving", "file", filename)
		s, err := a.openStdin(content)
		s.toc = book.TOC()
		return s, err
	}
	if err != nil {
		return session{}, err
	}

	s, err := a.openDocument(doc)
	s.toc = book.TOC()
	return s, err
}

func (a *app) openStdin(content string) (session, error) {
	if strings.TrimSpace(content) == "" {
		return session{}, errNoText
	}

	s := session{title: library.GenerateTitle(content), text: content}
	if prev, pos, ok := a.library.Temp(); ok && prev == content && !a.opts.fresh {
		s.start = pos.WordIndex
	} else if err := a.library.SaveTemp(content, library.Position{}); err != nil {
		a.logger.Warn("keep unsaved text", "error", err)
	}

	if a.opts.save {
		doc, err := a.library.SaveTempToLibrary(a.opts.title)
		if err != nil {
			return session{}, fmt.Errorf("save to library: %w", err)
		}
		return a.openDocument(doc)
	}
	return s, nil
}

func (a *app) openDocument(doc library.Document) (session, error) {
	if err := a.library.SetActive(doc.ID); err != nil {
		return session{}, err
	}
	s := session{docID: doc.ID, title: doc.Title, text: doc.Text}
	if !a.opts.fresh {
		s.start = doc.Position.WordIndex
	}
	a.logger.Info("opened document", "id", doc.ID, "title", doc.Title, "start", s.start)
	return s, nil
}

// newEngine creates an engine for s, loads the text and positions it.
func (a *app) newEngine(s session, d playback.Display, t *tracker) (*playback.Engine, error) {
	e := playback.New(playback.Config{
		WordsPerMinute:    a.settings.WordsPerMinute,
		Increment:         a.settings.SpeedIncrement,
		MaxWordsPerMinute: a.settings.MaxWordsPerMinute,
		Display:           d,
		Persistence:       t,
		Scheduler:         a.sched,
		Logger:            a.logger,
	})
	if err := e.Load(s.text, s.start); err != nil {
		return nil, err
	}
	return e, nil
}

// saveTemp moves unsaved stdin text into the library.
func (a *app) saveTemp(t *tracker, pos playback.Position) (library.Document, error) {
	if err := a.library.UpdateTempPosition(library.Position(pos)); err != nil {
		a.logger.Warn("save position", "error", err)
	}
	doc, err := a.library.SaveTempToLibrary("")
	if err != nil {
		return library.Document{}, err
	}
	t.setDocument(doc.ID)
	a.logger.Info("saved to library", "id", doc.ID, "title", doc.Title)
	return doc, nil
}

// runCommand handles the flags that act on the library and exit. It reports
// whether a command ran.
func (a *app) runCommand(w io.Writer) (bool, error) {
	switch {
	case a.opts.list:
		a.listDocuments(w)
		return true, nil
	case a.opts.delete != "":
		if err := a.library.Delete(a.opts.delete); err != nil {
			return true, err
		}
		fmt.Fprintf(w, "Deleted %s\n", a.opts.delete)
		return true, nil
	case a.opts.rename != "":
		if err := a.library.Rename(a.opts.rename, a.opts.title); err != nil {
			return true, err
		}
		fmt.Fprintf(w, "Renamed %s to %q\n", a.opts.rename, a.opts.title)
		return true, nil
	}
	return false, nil
}

func (a *app) listDocuments(w io.Writer) {
	docs := a.library.Documents()
	if len(docs) == 0 {
		fmt.Fprintln(w, "Library is empty.")
		return
	}

	header := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)
	t := table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return cell
		}).
		Headers("ID", "TITLE", "PROGRESS", "LAST READ")

	for _, d := range docs {
		total := text.Process(d.Text).TotalWords
		progress := playback.NewProgress(d.Position.WordIndex, total, a.settings.WordsPerMinute)
		t.Row(d.ID, d.Title, fmt.Sprintf("%.0f%%", progress.Percent), d.LastRead.Local().Format(time.DateTime))
	}
	fmt.Fprintln(w, t.Render())

	u := a.library.Usage()
	fmt.Fprintf(w, "%d documents, %.1f%% of storage used\n", u.DocumentCount, u.Percent)
}

// tracker persists reading progress to the library.
type tracker struct {
	mu     sync.Mutex
	docID  string
	lib    *library.Library
	prefs  *settings.Store
	logger *slog.Logger
}

func (a *app) newTracker(s session) *tracker {
	return &tracker{docID: s.docID, lib: a.library, prefs: a.prefs, logger: a.logger}
}

func (t *tracker) setDocument(id string) {
	t.mu.Lock()
	t.docID = id
	t.mu.Unlock()
}

func (t *tracker) document() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.docID
}

func (t *tracker) SavePosition(p playback.Position) {
	pos := library.Position(p)
	var err error
	if id := t.document(); id != "" {
		err = t.lib.UpdatePosition(id, pos)
	} else {
		err = t.lib.UpdateTempPosition(pos)
	}
	if err != nil {
		t.logger.Warn("save position", "error", err)
	}
}

func (t *tracker) SaveSpeed(wpm int) {
	if err := t.prefs.SaveSpeed(wpm); err != nil {
		t.logger.Warn("save speed", "error", err)
	}
}

// stdinPiped reports whether stdin is a pipe or file rather than a terminal.
func stdinPiped() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// setup parses flags and prepares the session shared by both frontends. A
// nil session with a nil error means the program should exit successfully.
func setup(name string) (*app, *session, error) {
	opts, err := parseOptions(name, os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	if opts.showVersion {
		fmt.Printf("%s %s (commit: %s, built: %s)\n", name, version, commit, date)
		return nil, nil, nil
	}
	opts.journal = true

	a, err := newApp(opts, state.Dir())
	if err != nil {
		return nil, nil, err
	}
	if ran, err := a.runCommand(os.Stdout); ran || err != nil {
		a.Close()
		return nil, nil, err
	}

	s, err := a.openSession(os.Stdin, opts.file == "" && stdinPiped())
	if err != nil {
		a.Close()
		if errors.Is(err, errNoText) {
			return nil, nil, fmt.Errorf("%w: provide a file or pipe text to stdin (try: %s -h)", err, name)
		}
		return nil, nil, err
	}
	return a, &s, nil
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
