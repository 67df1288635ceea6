// Package logs builds the application logger.
//
// The terminal belongs to the reader, so records go to a file in the state
// directory and, when available, to the systemd journal.
package logs

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	slogmulti "github.com/samber/slog-multi"
	slogjournal "github.com/systemd/slog-journal"
)

const fileName = "skim.log"

// Level is shared by every handler so it can be changed after startup.
var Level = new(slog.LevelVar)

// ParseLevel maps debug, info, warn and error to slog levels.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
	return l, nil
}

// Options configure New.
type Options struct {
	// Dir receives the log file. Empty disables the file handler.
	Dir string
	// Journal enables the systemd journal handler.
	Journal bool
}

// New returns a logger and a function that closes its file.
func New(opts Options) (*slog.Logger, func() error, error) {
	var handlers []slog.Handler
	closeFn := func() error { return nil }

	var fileHandler slog.Handler
	if opts.Dir != "" {
		if err := os.MkdirAll(opts.Dir, 0755); err != nil {
			return nil, closeFn, fmt.Errorf("create log dir: %w", err)
		}
		f, err := os.OpenFile(filepath.Join(opts.Dir, fileName), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return nil, closeFn, fmt.Errorf("open log file: %w", err)
		}
		closeFn = f.Close
		fileHandler = slog.NewTextHandler(f, &slog.HandlerOptions{Level: Level})
		handlers = append(handlers, fileHandler)
	}

	if opts.Journal {
		journalHandler, err := slogjournal.NewHandler(&slogjournal.Options{
			Level: Level,
			ReplaceGroup: func(key string) string {
				return journalKey(key)
			},
			ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
				a.Key = journalKey(a.Key)
				return a
			},
		})
		if err != nil {
			if fileHandler != nil {
				record := slog.NewRecord(time.Now(), slog.LevelWarn, "systemd journal unavailable", 0)
				record.Add("error", err)
				_ = fileHandler.Handle(context.Background(), record)
			}
		} else {
			handlers = append(handlers, journalHandler)
		}
	}

	if len(handlers) == 0 {
		return slog.New(slog.DiscardHandler), closeFn, nil
	}
	return slog.New(slogmulti.Fanout(handlers...)), closeFn, nil
}

// NewWriter returns a text logger on w, for tests and one-shot commands.
func NewWriter(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: Level}))
}

// journalKey converts an attribute key to a journal field name, which must be
// upper case letters, digits and underscores.
func journalKey(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' {
			return r
		}
		return '_'
	}, strings.ToUpper(s))
}
