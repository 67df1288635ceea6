package reader

import (
	"encoding/xml"
	"fmt"
	"path"
	"strings"

	"github.com/taylorskalyo/goreader/epub"
)

// ncx is the subset of an EPUB 2 toc.ncx that titles spine documents.
type ncx struct {
	DocTitle navLabel `xml:"docTitle"`
	NavMap   navMap   `xml:"navMap"`
}

type navMap struct {
	NavPoints []navPoint `xml:"navPoint"`
}

type navPoint struct {
	ID        string     `xml:"id,attr"`
	PlayOrder int        `xml:"playOrder,attr"`
	Label     navLabel   `xml:"navLabel"`
	Content   navContent `xml:"content"`
	Children  []navPoint `xml:"navPoint"`
}

type navLabel struct {
	Text string `xml:"text"`
}

type navContent struct {
	Src string `xml:"src,attr"`
}

type ncxEntry struct {
	title string
	level int
}

// ncxIndex maps spine hrefs to the first NCX entry pointing into them.
type ncxIndex struct {
	title   string
	entries map[string]ncxEntry
}

func (x ncxIndex) lookup(href string) (ncxEntry, bool) {
	for _, k := range hrefKeys(href) {
		if e, ok := x.entries[k]; ok {
			return e, true
		}
	}
	return ncxEntry{}, false
}

const ncxMediaType = "application/x-dtbncx+xml"

// readNCX indexes the book's NCX navigation. A missing or broken NCX yields
// an empty index and parts fall back to numbered titles.
func readNCX(rootfile *epub.Rootfile) ncxIndex {
	idx := ncxIndex{entries: make(map[string]ncxEntry)}

	item := ncxItem(rootfile)
	if item == nil {
		return idx
	}
	r, err := item.Open()
	if err != nil {
		return idx
	}
	data, err := readAll(r)
	if err != nil {
		return idx
	}
	toc, err := parseNCX(data)
	if err != nil {
		return idx
	}
	idx.title = strings.TrimSpace(toc.DocTitle.Text)

	var walk func(points []navPoint, level int)
	walk = func(points []navPoint, level int) {
		for _, np := range points {
			entry := ncxEntry{title: strings.TrimSpace(np.Label.Text), level: level}
			for _, k := range hrefKeys(np.Content.Src) {
				if _, seen := idx.entries[k]; !seen {
					idx.entries[k] = entry
				}
			}
			walk(np.Children, level+1)
		}
	}
	walk(toc.NavMap.NavPoints, 0)
	return idx
}

func ncxItem(rootfile *epub.Rootfile) *epub.Item {
	for i := range rootfile.Manifest.Items {
		item := &rootfile.Manifest.Items[i]
		if item.MediaType == ncxMediaType || strings.EqualFold(path.Ext(item.HREF), ".ncx") {
			return item
		}
	}
	return nil
}

func parseNCX(data []byte) (ncx, error) {
	var toc ncx
	if err := xml.Unmarshal(data, &toc); err != nil {
		return ncx{}, fmt.Errorf("parse NCX: %w", err)
	}
	return toc, nil
}
