package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// Schema constrains config files. Every field is optional; absent fields keep
// their previous value.
const Schema = `
wpm?:                 int & >=50 & <=1000
speed_increment?:     int & >=1 & <=100
max_wpm?:             int & >=50 & <=1500
theme?:               "dark" | "light"
word_font_size?:      int & >=40 & <=150
paragraph_font_size?: int & >=12 & <=24
font_color?:          =~"^#[0-9A-Fa-f]{6}$"
background_color?:    =~"^#[0-9A-Fa-f]{6}$"
`

// DefaultPath returns XDG_CONFIG_HOME/skim/config.cue or
// ~/.config/skim/config.cue.
func DefaultPath() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "skim", "config.cue")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "skim", "config.cue")
}

// LoadFile overlays the CUE file at path onto base. A missing file returns
// base unchanged.
func LoadFile(path string, base Settings) (Settings, error) {
	content, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return base, nil
	}
	if err != nil {
		return base, fmt.Errorf("read config: %w", err)
	}
	return Parse(content, path, base)
}

// Parse overlays CUE source onto base. filename is used in error messages.
func Parse(src []byte, filename string, base Settings) (Settings, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString("close({" + Schema + "})")
	if err := schema.Err(); err != nil {
		return base, fmt.Errorf("compile schema: %w", err)
	}

	value := ctx.CompileBytes(src, cue.Filename(filename))
	if err := value.Err(); err != nil {
		return base, fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	unified := schema.Unify(value)
	if err := unified.Validate(); err != nil {
		return base, fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	s := base
	if err := unified.Decode(&s); err != nil {
		return base, fmt.Errorf("decode config: %w", err)
	}
	if err := s.Validate(); err != nil {
		return base, err
	}
	return s, nil
}
