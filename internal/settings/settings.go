// Package settings holds reader preferences and resolves them from defaults,
// a CUE config file, and values persisted between sessions.
package settings

import (
	"errors"
	"fmt"
	"regexp"
)

// Limits for configured values.
const (
	MinWordsPerMinute        = 50
	MaxConfiguredWPM         = 1000
	DefaultMaxWordsPerMinute = 1500
)

var ErrInvalid = errors.New("invalid settings")

var colorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// Settings are the reader preferences.
type Settings struct {
	WordsPerMinute    int    `json:"wpm"`
	SpeedIncrement    int    `json:"speed_increment"`
	MaxWordsPerMinute int    `json:"max_wpm"`
	Theme             string `json:"theme"`
	WordFontSize      int    `json:"word_font_size"`
	ParagraphFontSize int    `json:"paragraph_font_size"`
	FontColor         string `json:"font_color"`
	BackgroundColor   string `json:"background_color"`
}

// Defaults returns the built-in settings.
func Defaults() Settings {
	return Settings{
		WordsPerMinute:    200,
		SpeedIncrement:    5,
		MaxWordsPerMinute: DefaultMaxWordsPerMinute,
		Theme:             "dark",
		WordFontSize:      80,
		ParagraphFontSize: 16,
		FontColor:         "#FFB000",
		BackgroundColor:   "#000000",
	}
}

// Validate checks every field and reports all problems at once.
func (s Settings) Validate() error {
	var errs []error
	check := func(name string, v, lo, hi int) {
		if v < lo || v > hi {
			errs = append(errs, fmt.Errorf("%s must be between %d and %d, got %d", name, lo, hi, v))
		}
	}
	check("wpm", s.WordsPerMinute, MinWordsPerMinute, MaxConfiguredWPM)
	check("speed_increment", s.SpeedIncrement, 1, 100)
	check("max_wpm", s.MaxWordsPerMinute, MinWordsPerMinute, DefaultMaxWordsPerMinute)
	check("word_font_size", s.WordFontSize, 40, 150)
	check("paragraph_font_size", s.ParagraphFontSize, 12, 24)

	if s.Theme != "dark" && s.Theme != "light" {
		errs = append(errs, fmt.Errorf("theme must be dark or light, got %q", s.Theme))
	}
	for name, c := range map[string]string{"font_color": s.FontColor, "background_color": s.BackgroundColor} {
		if !colorPattern.MatchString(c) {
			errs = append(errs, fmt.Errorf("%s must be #RRGGBB, got %q", name, c))
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
}

// ClampSpeed limits wpm to what the engine accepts under these settings.
func (s Settings) ClampSpeed(wpm int) int {
	return max(MinWordsPerMinute, min(wpm, s.MaxWordsPerMinute))
}
