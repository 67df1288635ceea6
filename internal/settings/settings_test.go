package settings

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/metcalfc/skim/internal/state"
)

func TestDefaultsValid(t *testing.T) {
	if err := Defaults().Validate(); err != nil {
		t.Errorf("Defaults().Validate() = %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Settings)
		ok     bool
	}{
		{"defaults", func(*Settings) {}, true},
		{"slowest", func(s *Settings) { s.WordsPerMinute = 50 }, true},
		{"fastest", func(s *Settings) { s.WordsPerMinute = 1000 }, true},
		{"too slow", func(s *Settings) { s.WordsPerMinute = 49 }, false},
		{"too fast", func(s *Settings) { s.WordsPerMinute = 1001 }, false},
		{"zero increment", func(s *Settings) { s.SpeedIncrement = 0 }, false},
		{"max increment", func(s *Settings) { s.SpeedIncrement = 100 }, true},
		{"tiny word font", func(s *Settings) { s.WordFontSize = 39 }, false},
		{"huge paragraph font", func(s *Settings) { s.ParagraphFontSize = 25 }, false},
		{"light theme", func(s *Settings) { s.Theme = "light" }, true},
		{"unknown theme", func(s *Settings) { s.Theme = "sepia" }, false},
		{"lowercase color", func(s *Settings) { s.FontColor = "#ffb000" }, true},
		{"short color", func(s *Settings) { s.FontColor = "#FFF" }, false},
		{"named color", func(s *Settings) { s.BackgroundColor = "black" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Defaults()
			tt.modify(&s)
			err := s.Validate()
			if tt.ok && err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
			if !tt.ok && !errors.Is(err, ErrInvalid) {
				t.Errorf("Validate() = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestClampSpeed(t *testing.T) {
	s := Defaults()
	tests := []struct{ in, want int }{
		{10, 50},
		{300, 300},
		{5000, 1500},
	}
	for _, tt := range tests {
		if got := s.ClampSpeed(tt.in); got != tt.want {
			t.Errorf("ClampSpeed(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		want    func(Settings) bool
		wantErr bool
	}{
		{
			name: "empty file keeps defaults",
			src:  "",
			want: func(s Settings) bool { return s == Defaults() },
		},
		{
			name: "overrides some fields",
			src:  "wpm: 350\ntheme: \"light\"\n",
			want: func(s Settings) bool {
				return s.WordsPerMinute == 350 && s.Theme == "light" && s.SpeedIncrement == 5
			},
		},
		{
			name: "colors",
			src:  `font_color: "#00FF00"`,
			want: func(s Settings) bool { return s.FontColor == "#00FF00" },
		},
		{name: "out of range", src: "wpm: 2000", wantErr: true},
		{name: "wrong type", src: `wpm: "fast"`, wantErr: true},
		{name: "unknown field", src: "colour: 1", wantErr: true},
		{name: "bad theme", src: `theme: "sepia"`, wantErr: true},
		{name: "syntax error", src: "wpm: {", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse([]byte(tt.src), "test.cue", Defaults())
			if tt.wantErr {
				if err == nil {
					t.Errorf("Parse() = %+v, want error", got)
				}
				if got != Defaults() {
					t.Errorf("Parse() should return base on error, got %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse() error: %v", err)
			}
			if !tt.want(got) {
				t.Errorf("Parse() = %+v", got)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	got, err := LoadFile(filepath.Join(dir, "missing.cue"), Defaults())
	if err != nil || got != Defaults() {
		t.Errorf("LoadFile(missing) = %+v, %v", got, err)
	}

	path := filepath.Join(dir, "config.cue")
	os.WriteFile(path, []byte("speed_increment: 25\n"), 0644)
	got, err = LoadFile(path, Defaults())
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if got.SpeedIncrement != 25 {
		t.Errorf("SpeedIncrement = %d, want 25", got.SpeedIncrement)
	}
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/cfg")
	if got := DefaultPath(); got != "/tmp/cfg/skim/config.cue" {
		t.Errorf("DefaultPath() = %s", got)
	}
}

func TestStore(t *testing.T) {
	kv, err := state.Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	store := NewStore(kv)

	if got := store.Apply(Defaults()); got != Defaults() {
		t.Errorf("Apply with nothing persisted = %+v", got)
	}

	if err := store.SaveSpeed(420); err != nil {
		t.Fatalf("SaveSpeed failed: %v", err)
	}
	if got := store.Apply(Defaults()); got.WordsPerMinute != 420 {
		t.Errorf("WordsPerMinute = %d, want 420", got.WordsPerMinute)
	}

	// Speeds above the configured ceiling are clamped on the way back in.
	store.SaveSpeed(9000)
	if got := store.Apply(Defaults()); got.WordsPerMinute != DefaultMaxWordsPerMinute {
		t.Errorf("WordsPerMinute = %d, want %d", got.WordsPerMinute, DefaultMaxWordsPerMinute)
	}

	if err := store.Reset(); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	if got := store.Apply(Defaults()); got != Defaults() {
		t.Errorf("Apply after Reset = %+v", got)
	}
}

func TestResolve(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.cue")
	os.WriteFile(path, []byte("wpm: 300\nword_font_size: 100\n"), 0644)

	kv, _ := state.Open(dir)
	store := NewStore(kv)
	store.SaveSpeed(450)

	got, err := Resolve(path, store)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got.WordsPerMinute != 450 {
		t.Errorf("persisted speed should win over config: got %d", got.WordsPerMinute)
	}
	if got.WordFontSize != 100 {
		t.Errorf("WordFontSize = %d, want 100", got.WordFontSize)
	}

	os.WriteFile(path, []byte("wpm: 5\n"), 0644)
	if _, err := Resolve(path, store); !errors.Is(err, ErrInvalid) {
		t.Errorf("Resolve with invalid config = %v, want ErrInvalid", err)
	}
}
