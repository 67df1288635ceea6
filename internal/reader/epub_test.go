package reader

import (
	"archive/zip"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

func writeTestEPUB(t *testing.T, withNCX bool) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "book.epub")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()

	ncxItem := ""
	if withNCX {
		ncxItem = `<item id="ncx" href="toc.ncx" media-type="application/x-dtbncx+xml"/>`
	}

	files := []struct{ name, body string }{
		{"mimetype", "application/epub+zip"},
		{"META-INF/container.xml", `<?xml version="1.0"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>`},
		{"OEBPS/content.opf", fmt.Sprintf(`<?xml version="1.0"?>
<package xmlns="http://www.idpf.org/2007/opf" version="2.0" unique-identifier="id">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/">
    <dc:title>Test Book</dc:title>
  </metadata>
  <manifest>
    %s
    <item id="cover" href="cover.xhtml" media-type="application/xhtml+xml"/>
    <item id="ch1" href="text/ch1.xhtml" media-type="application/xhtml+xml"/>
    <item id="ch2" href="text/ch2.xhtml" media-type="application/xhtml+xml"/>
  </manifest>
  <spine toc="ncx">
    <itemref idref="cover"/>
    <itemref idref="ch1"/>
    <itemref idref="ch2"/>
  </spine>
</package>`, ncxItem)},
		{"OEBPS/cover.xhtml", `<html><body><img src="cover.png"/></body></html>`},
		{"OEBPS/text/ch1.xhtml", `<html><head><title>ch1</title></head><body><h1>Chapter One</h1><p>It was a dark night.</p></body></html>`},
		{"OEBPS/text/ch2.xhtml", `<html><body><h1>Chapter Two</h1><p>Morning came.</p></body></html>`},
	}
	if withNCX {
		files = append(files, struct{ name, body string }{"OEBPS/toc.ncx", `<?xml version="1.0"?>
<ncx xmlns="http://www.daisy.org/z3986/2005/ncx/" version="2005-1">
  <docTitle><text>Test Book</text></docTitle>
  <navMap>
    <navPoint id="n1" playOrder="1">
      <navLabel><text>The First Chapter</text></navLabel>
      <content src="text/ch1.xhtml"/>
      <navPoint id="n2" playOrder="2">
        <navLabel><text>The Second Chapter</text></navLabel>
        <content src="text/ch2.xhtml#start"/>
      </navPoint>
    </navPoint>
  </navMap>
</ncx>`})
	}

	zw := zip.NewWriter(f)
	for _, file := range files {
		w, err := zw.Create(file.name)
		if err != nil {
			t.Fatalf("zip create: %v", err)
		}
		w.Write([]byte(file.body))
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	return path
}

func TestEPUBOpen(t *testing.T) {
	book, err := Open(writeTestEPUB(t, true))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if book.Title != "Test Book" {
		t.Errorf("Title = %q, want Test Book", book.Title)
	}

	// The cover has no words and is dropped.
	want := []Part{
		{Title: "The First Chapter", Level: 0, Text: "Chapter One\n\nIt was a dark night."},
		{Title: "The Second Chapter", Level: 1, Text: "Chapter Two\n\nMorning came."},
	}
	if len(book.Parts) != len(want) {
		t.Fatalf("got %d parts, want %d: %+v", len(book.Parts), len(want), book.Parts)
	}
	for i := range want {
		if book.Parts[i] != want[i] {
			t.Errorf("part %d = %+v, want %+v", i, book.Parts[i], want[i])
		}
	}

	toc := book.TOC()
	if len(toc) != 2 || toc[0].WordIndex != 0 || toc[1].WordIndex != 7 {
		t.Errorf("TOC = %+v", toc)
	}
}

func TestEPUBWithoutNCX(t *testing.T) {
	book, err := Open(writeTestEPUB(t, false))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if len(book.Parts) != 2 {
		t.Fatalf("got %d parts", len(book.Parts))
	}
	// Spine positions are 1-based and include the empty cover.
	if book.Parts[0].Title != "Section 2" || book.Parts[1].Title != "Section 3" {
		t.Errorf("titles = %q, %q", book.Parts[0].Title, book.Parts[1].Title)
	}
}

func TestEPUBFormat(t *testing.T) {
	f := &EPUBFormat{}
	if f.Name() != "EPUB" {
		t.Errorf("Name() = %q, want EPUB", f.Name())
	}
	if exts := f.Extensions(); len(exts) != 1 || exts[0] != ".epub" {
		t.Errorf("Extensions() = %v, want [.epub]", exts)
	}
}

func TestParseNCX(t *testing.T) {
	if _, err := parseNCX([]byte("<ncx><navMap>")); err == nil {
		t.Error("expected error for truncated NCX")
	}
}
