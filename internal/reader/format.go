package reader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Format defines a file format reader for extracting text.
type Format interface {
	Name() string
	Extensions() []string
	Open(filename string) (Book, error)
}

var registry []Format

// Register adds a format reader to the registry.
func Register(f Format) {
	registry = append(registry, f)
}

// Lookup returns the registered format for filename's extension.
func Lookup(filename string) (Format, bool) {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, f := range registry {
		for _, e := range f.Extensions() {
			if ext == e {
				return f, true
			}
		}
	}
	return nil, false
}

// Open reads a file, using a registered format or plain text fallback.
func Open(filename string) (Book, error) {
	if f, ok := Lookup(filename); ok {
		book, err := f.Open(filename)
		if err != nil {
			return Book{}, fmt.Errorf("%s: %w", f.Name(), err)
		}
		return book, nil
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		return Book{}, err
	}
	return FromText(string(data)), nil
}

// SupportedFormats returns registered format names with their extensions.
func SupportedFormats() []string {
	var out []string
	for _, f := range registry {
		out = append(out, f.Name()+" ("+strings.Join(f.Extensions(), ", ")+")")
	}
	return out
}
