//go:build gui

package main

import (
	"fmt"
	"image/color"
	"os"
	"strings"
	"sync"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/metcalfc/skim/internal/playback"
	"github.com/metcalfc/skim/internal/reader"
	"github.com/metcalfc/skim/internal/settings"
	"github.com/metcalfc/skim/internal/text"
)

const (
	minFontSize  = 40
	maxFontSize  = 150
	fontSizeStep = 5
)

// readerTheme applies the configured variant, background and paragraph size
// on top of the default theme.
type readerTheme struct {
	fyne.Theme
	variant    fyne.ThemeVariant
	background color.Color
	textSize   float32
}

func newReaderTheme(s settings.Settings) readerTheme {
	variant := theme.VariantDark
	if s.Theme == "light" {
		variant = theme.VariantLight
	}
	return readerTheme{
		Theme:      theme.DefaultTheme(),
		variant:    variant,
		background: parseColor(s.BackgroundColor, color.Black),
		textSize:   float32(s.ParagraphFontSize),
	}
}

func (t readerTheme) Color(name fyne.ThemeColorName, _ fyne.ThemeVariant) color.Color {
	if name == theme.ColorNameBackground {
		return t.background
	}
	return t.Theme.Color(name, t.variant)
}

func (t readerTheme) Size(name fyne.ThemeSizeName) float32 {
	if name == theme.SizeNameText {
		return t.textSize
	}
	return t.Theme.Size(name)
}

// parseColor reads a #RRGGBB value.
func parseColor(s string, fallback color.Color) color.Color {
	var r, g, b uint8
	if _, err := fmt.Sscanf(s, "#%02x%02x%02x", &r, &g, &b); err != nil {
		return fallback
	}
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// orpLayout places three texts (before, pivot, after) so the pivot starts
// at the horizontal centre, and centres them vertically.
type orpLayout struct{}

func (orpLayout) MinSize(objects []fyne.CanvasObject) fyne.Size {
	var w, h float32
	for _, o := range objects {
		size := o.MinSize()
		w += size.Width
		h = max(h, size.Height)
	}
	return fyne.NewSize(w, h)
}

func (orpLayout) Layout(objects []fyne.CanvasObject, size fyne.Size) {
	if len(objects) != 3 {
		return
	}
	before, pivot, after := objects[0], objects[1], objects[2]

	var maxH float32
	for _, o := range objects {
		maxH = max(maxH, o.MinSize().Height)
	}
	y := max((size.Height-maxH)/2, 0)

	centerX := size.Width / 2
	before.Move(fyne.NewPos(max(centerX-before.MinSize().Width, 0), y))
	pivot.Move(fyne.NewPos(centerX, y))
	after.Move(fyne.NewPos(centerX+pivot.MinSize().Width, y))
	for _, o := range objects {
		o.Resize(o.MinSize())
	}
}

// gui is the desktop frontend. Its Display methods marshal engine
// notifications onto the fyne main goroutine.
type gui struct {
	app     *app
	sess    *session
	engine  *playback.Engine
	tracker *tracker

	fyne     fyne.App
	window   fyne.Window
	fontSize float32

	status     *widget.Label
	message    string
	word       *fyne.Container
	before     *canvas.Text
	pivot      *canvas.Text
	after      *canvas.Text
	paragraph  *widget.RichText
	bar        *widget.ProgressBar
	pausedView *fyne.Container
	tocPanel   *container.Split
	tocList    *widget.List

	lastStatus playback.Status
	closeOnce  sync.Once
}

func newGUI(a *app, s *session) *gui {
	g := &gui{
		app:      a,
		sess:     s,
		tracker:  a.newTracker(*s),
		fyne:     fyneapp.New(),
		fontSize: float32(a.settings.WordFontSize),
	}
	g.fyne.Settings().SetTheme(newReaderTheme(a.settings))
	g.window = g.fyne.NewWindow("skim - Speed Reader")

	wordColor := parseColor(a.settings.FontColor, color.White)
	newText := func(c color.Color) *canvas.Text {
		t := canvas.NewText("", c)
		t.TextSize = g.fontSize
		t.TextStyle.Bold = true
		return t
	}
	g.before = newText(wordColor)
	g.pivot = newText(color.RGBA{R: 255, A: 255})
	g.after = newText(wordColor)
	g.word = container.New(orpLayout{}, g.before, g.pivot, g.after)

	g.status = widget.NewLabel("")
	g.status.Alignment = fyne.TextAlignCenter

	g.paragraph = widget.NewRichText()
	g.paragraph.Wrapping = fyne.TextWrapWord
	g.bar = widget.NewProgressBar()
	g.bar.TextFormatter = func() string {
		return playback.NewProgress(g.lastStatus.WordIndex, g.lastStatus.TotalWords, g.lastStatus.WordsPerMinute).LongRemaining() + " left"
	}
	g.pausedView = container.NewVBox(g.paragraph, g.bar)

	tocHint := ""
	if len(s.toc) > 0 {
		tocHint = "  T: contents"
	}
	controls := widget.NewLabel("SPACE: pause  ↑/↓: speed/paragraph  ←/→: sentence  +/-: font  R: restart  S: save" + tocHint + "  F: fullscreen  Q: quit")
	controls.Alignment = fyne.TextAlignCenter

	reading := container.NewBorder(
		g.status,
		container.NewVBox(g.pausedView, controls),
		nil, nil,
		g.word,
	)

	if len(s.toc) == 0 {
		g.window.SetContent(reading)
	} else {
		g.tocList = g.newTOCList()
		toc := container.NewBorder(
			widget.NewLabel("Table of Contents"),
			widget.NewLabel("Click to jump • T to close"),
			nil, nil,
			g.tocList,
		)
		g.tocPanel = container.NewHSplit(toc, reading)
		g.tocPanel.Offset = 0.33
		if !a.opts.showTOC {
			toc.Hide()
		}
		g.window.SetContent(g.tocPanel)
	}

	g.window.Canvas().SetOnTypedKey(g.typedKey)
	g.window.Canvas().SetOnTypedRune(g.typedRune)
	g.window.SetOnClosed(g.quit)
	g.window.Resize(fyne.NewSize(800, 600))

	// The engine draws through fyne.Do, so it is created once the app runs.
	g.fyne.Lifecycle().SetOnStarted(func() {
		e, err := a.newEngine(*s, g, g.tracker)
		if err != nil {
			a.logger.Error("load document", "error", err)
			g.fyne.Quit()
			return
		}
		g.engine = e
	})
	return g
}

func (g *gui) newTOCList() *widget.List {
	toc := g.sess.toc
	list := widget.NewList(
		func() int { return len(toc) },
		func() fyne.CanvasObject {
			return container.NewVBox(
				widget.NewLabel("Title"),
				widget.NewLabel("Preview"),
			)
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			entry := toc[id]
			vbox := obj.(*fyne.Container)
			titleLabel := vbox.Objects[0].(*widget.Label)
			previewLabel := vbox.Objects[1].(*widget.Label)

			indent := strings.Repeat("  ", entry.Level)
			titleLabel.SetText(indent + entry.Title)
			titleLabel.TextStyle.Bold = true
			previewLabel.SetText(indent + entry.Preview)
		},
	)
	list.OnSelected = func(id widget.ListItemID) {
		if g.engine != nil && id < len(toc) {
			g.engine.JumpTo(toc[id].WordIndex)
		}
		list.UnselectAll()
		g.setTOCVisible(false)
	}
	return list
}

func (g *gui) setTOCVisible(visible bool) {
	if g.tocPanel == nil {
		return
	}
	if visible {
		if g.engine != nil {
			g.engine.Pause()
		}
		g.tocPanel.Leading.Show()
	} else {
		g.tocPanel.Leading.Hide()
	}
	g.tocPanel.Refresh()
}

func (g *gui) ShowWord(w text.FlatWord) {
	fyne.Do(func() {
		before, pivot, after := reader.SplitORP(w.Text)
		g.before.Text = before
		g.pivot.Text = pivot
		g.after.Text = after
		g.word.Refresh()
		g.lastStatus.WordIndex = w.GlobalIndex
		g.refreshStatus()
	})
}

func (g *gui) ShowParagraph(p text.Paragraph, highlight int) {
	fyne.Do(func() {
		segments := make([]widget.RichTextSegment, 0, len(p.Sentences))
		for _, s := range p.Sentences {
			style := widget.RichTextStyleInline
			if s.Index == highlight {
				style.TextStyle.Bold = true
				style.ColorName = theme.ColorNamePrimary
			}
			segments = append(segments, &widget.TextSegment{Text: s.Text + " ", Style: style})
		}
		g.paragraph.Segments = segments
		g.paragraph.Refresh()
		g.pausedView.Show()
	})
}

func (g *gui) ShowStatus(st playback.Status) {
	fyne.Do(func() {
		g.lastStatus = st
		if st.State == playback.Reading {
			g.pausedView.Hide()
			g.message = ""
		}
		g.refreshStatus()
	})
}

func (g *gui) refreshStatus() {
	st := g.lastStatus
	p := playback.NewProgress(st.WordIndex, st.TotalWords, st.WordsPerMinute)
	line := fmt.Sprintf("Word %d/%d | %d WPM | %s left | Font: %.0f",
		p.Current, p.Total, st.WordsPerMinute, p.ShortRemaining(), g.fontSize)
	if section := reader.Section(g.sess.toc, st.WordIndex); section != "" {
		line += " | " + section
	}
	switch {
	case st.State == playback.Paused && st.TotalWords > 0 && st.WordIndex == st.TotalWords-1:
		line += " | Reading complete"
	case st.State == playback.Paused:
		line += " [PAUSED]"
	}
	if g.message != "" {
		line += " | " + g.message
	}
	g.status.SetText(line)
	g.bar.SetValue(p.Percent / 100)
}

func (g *gui) setFontSize(size float32) {
	g.fontSize = min(max(size, minFontSize), maxFontSize)
	for _, t := range []*canvas.Text{g.before, g.pivot, g.after} {
		t.TextSize = g.fontSize
	}
	g.word.Refresh()
	g.refreshStatus()
}

func (g *gui) typedKey(ev *fyne.KeyEvent) {
	if g.engine == nil {
		return
	}
	switch ev.Name {
	case fyne.KeySpace:
		control(g.engine, actionToggle)
	case fyne.KeyUp:
		control(g.engine, actionUp)
	case fyne.KeyDown:
		control(g.engine, actionDown)
	case fyne.KeyLeft:
		control(g.engine, actionLeft)
	case fyne.KeyRight:
		control(g.engine, actionRight)
	case fyne.KeyF:
		g.window.SetFullScreen(!g.window.FullScreen())
	case fyne.KeyQ:
		g.quit()
		g.fyne.Quit()
	}
}

func (g *gui) typedRune(r rune) {
	if g.engine == nil {
		return
	}
	switch r {
	case 't', 'T':
		g.setTOCVisible(g.tocPanel != nil && !g.tocPanel.Leading.Visible())
	case 'r', 'R':
		control(g.engine, actionRestart)
	case 's', 'S':
		g.save()
	case '+', '=':
		g.setFontSize(g.fontSize + fontSizeStep)
	case '-':
		g.setFontSize(g.fontSize - fontSizeStep)
	}
}

func (g *gui) save() {
	if !g.sess.temp() {
		g.message = "Already in library"
		g.refreshStatus()
		return
	}
	pos, _ := g.engine.Position()
	doc, err := g.app.saveTemp(g.tracker, pos)
	if err != nil {
		g.app.logger.Error("save to library", "error", err)
		g.message = "Save failed"
	} else {
		g.sess.docID = doc.ID
		g.message = "Saved: " + doc.Title
	}
	g.refreshStatus()
}

// quit saves the position and stops the engine. It runs on Q and again when
// the window closes.
func (g *gui) quit() {
	g.closeOnce.Do(func() {
		if g.engine == nil {
			return
		}
		if pos, ok := g.engine.Position(); ok {
			g.tracker.SavePosition(pos)
		}
		g.engine.Close()
	})
}

func main() {
	a, s, err := setup("skim")
	if err != nil {
		fail(err)
	}
	if s == nil {
		os.Exit(0)
	}
	defer a.Close()

	newGUI(a, s).window.ShowAndRun()
}
