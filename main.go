//go:build !gui

package main

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/metcalfc/skim/internal/playback"
	"github.com/metcalfc/skim/internal/reader"
	"github.com/metcalfc/skim/internal/settings"
	"github.com/metcalfc/skim/internal/text"
)

type styles struct {
	word      lipgloss.Style
	pivot     lipgloss.Style
	status    lipgloss.Style
	controls  lipgloss.Style
	paused    lipgloss.Style
	complete  lipgloss.Style
	paragraph lipgloss.Style
	highlight lipgloss.Style
}

func newStyles(s settings.Settings) styles {
	status, dim, body := lipgloss.Color("#888888"), lipgloss.Color("#666666"), lipgloss.Color("#BBBBBB")
	if s.Theme == "light" {
		status, dim, body = lipgloss.Color("#555555"), lipgloss.Color("#777777"), lipgloss.Color("#333333")
	}
	return styles{
		word: lipgloss.NewStyle().
			Foreground(lipgloss.Color(s.FontColor)),
		pivot: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF0000")),
		status: lipgloss.NewStyle().
			Foreground(status).
			Padding(0, 1),
		controls: lipgloss.NewStyle().
			Foreground(dim).
			Italic(true),
		paused: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFAA00")).
			Bold(true),
		complete: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FF00")).
			Bold(true),
		paragraph: lipgloss.NewStyle().
			Foreground(body),
		highlight: lipgloss.NewStyle().
			Foreground(lipgloss.Color(s.FontColor)).
			Underline(true),
	}
}

type keyMap struct {
	Toggle  key.Binding
	Up      key.Binding
	Down    key.Binding
	Left    key.Binding
	Right   key.Binding
	Faster  key.Binding
	Slower  key.Binding
	Restart key.Binding
	Save    key.Binding
	TOC     key.Binding
	Help    key.Binding
	Quit    key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Toggle:  key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "pause/play")),
		Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑", "faster / prev paragraph")),
		Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓", "slower / next paragraph")),
		Left:    key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←", "prev sentence")),
		Right:   key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→", "next sentence")),
		Faster:  key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "faster")),
		Slower:  key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "slower")),
		Restart: key.NewBinding(key.WithKeys("r", "R"), key.WithHelp("r", "restart")),
		Save:    key.NewBinding(key.WithKeys("s", "S"), key.WithHelp("s", "save to library")),
		TOC:     key.NewBinding(key.WithKeys("t", "T"), key.WithHelp("t", "contents")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more")),
		Quit:    key.NewBinding(key.WithKeys("q", "Q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Up, k.Down, k.Left, k.Right, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Toggle, k.Up, k.Down, k.Left, k.Right},
		{k.Faster, k.Slower, k.Restart},
		{k.Save, k.TOC, k.Help, k.Quit},
	}
}

// action maps a key press to a reader action.
func (k keyMap) action(msg tea.KeyMsg) action {
	bindings := []struct {
		b   key.Binding
		act action
	}{
		{k.Toggle, actionToggle},
		{k.Up, actionUp},
		{k.Down, actionDown},
		{k.Left, actionLeft},
		{k.Right, actionRight},
		{k.Faster, actionFaster},
		{k.Slower, actionSlower},
		{k.Restart, actionRestart},
		{k.Save, actionSave},
		{k.TOC, actionTOC},
		{k.Quit, actionQuit},
	}
	for _, kb := range bindings {
		if key.Matches(msg, kb.b) {
			return kb.act
		}
	}
	return actionNone
}

// frame is what the engine last asked the terminal to show.
type frame struct {
	word          text.FlatWord
	paragraph     text.Paragraph
	highlight     int
	showParagraph bool
	status        playback.Status
}

// atEnd reports whether reading stopped on the last word.
func (f frame) atEnd() bool {
	return f.status.State == playback.Paused &&
		f.status.TotalWords > 0 &&
		f.status.WordIndex == f.status.TotalWords-1
}

type frameMsg frame

// screen is the engine's Display for the terminal. Engine callbacks arrive
// on timer goroutines; they update the frame and wake the program.
type screen struct {
	mu    sync.Mutex
	frame frame
	ready chan struct{}
}

func newScreen() *screen {
	return &screen{ready: make(chan struct{}, 1)}
}

func (s *screen) update(fn func(f *frame)) {
	s.mu.Lock()
	fn(&s.frame)
	s.mu.Unlock()
	select {
	case s.ready <- struct{}{}:
	default:
	}
}

func (s *screen) snapshot() frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frame
}

func (s *screen) ShowWord(w text.FlatWord) {
	s.update(func(f *frame) { f.word = w })
}

func (s *screen) ShowParagraph(p text.Paragraph, highlight int) {
	s.update(func(f *frame) {
		f.paragraph = p
		f.highlight = highlight
		f.showParagraph = true
	})
}

func (s *screen) ShowStatus(st playback.Status) {
	s.update(func(f *frame) {
		f.status = st
		if st.State == playback.Reading {
			f.showParagraph = false
		}
	})
}

// wait delivers the next frame once the engine has drawn something.
func (s *screen) wait() tea.Cmd {
	return func() tea.Msg {
		<-s.ready
		return frameMsg(s.snapshot())
	}
}

type tocItem struct {
	entry reader.TOCEntry
}

func (i tocItem) Title() string {
	return strings.Repeat("  ", i.entry.Level) + i.entry.Title
}

func (i tocItem) Description() string {
	return strings.Repeat("  ", i.entry.Level) + i.entry.Preview
}

func (i tocItem) FilterValue() string { return i.entry.Title }

type model struct {
	app     *app
	engine  *playback.Engine
	screen  *screen
	tracker *tracker
	sess    *session

	frame   frame
	styles  styles
	keys    keyMap
	help    help.Model
	bar     progress.Model
	toc     list.Model
	tocOpen bool

	message  string
	quitting bool
	width    int
	height   int
}

func newModel(a *app, s *session) (model, error) {
	scr := newScreen()
	t := a.newTracker(*s)
	e, err := a.newEngine(*s, scr, t)
	if err != nil {
		return model{}, err
	}

	items := make([]list.Item, len(s.toc))
	for i, entry := range s.toc {
		items[i] = tocItem{entry: entry}
	}
	toc := list.New(items, list.NewDefaultDelegate(), 80, 22)
	toc.Title = "Contents"
	toc.SetFilteringEnabled(false)
	toc.SetShowStatusBar(false)
	toc.SetShowHelp(false)
	toc.KeyMap.Quit.SetEnabled(false)
	toc.KeyMap.ForceQuit.SetEnabled(false)

	m := model{
		app:     a,
		engine:  e,
		screen:  scr,
		tracker: t,
		sess:    s,
		frame:   scr.snapshot(),
		styles:  newStyles(a.settings),
		keys:    newKeyMap(),
		help:    help.New(),
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(60)),
		toc:     toc,
		width:   80,
		height:  24,
	}
	if a.opts.showTOC {
		m.openTOC()
	}
	return m, nil
}

func (m model) Init() tea.Cmd {
	return m.screen.wait()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case frameMsg:
		m.frame = frame(msg)
		return m, m.screen.wait()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.bar.Width = max(min(msg.Width-4, 60), 10)
		m.toc.SetSize(msg.Width, max(msg.Height-1, 1))
		return m, nil

	case tea.KeyMsg:
		if m.tocOpen {
			return m.updateTOC(msg)
		}
		if key.Matches(msg, m.keys.Help) {
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}
		m.message = ""
		switch act := m.keys.action(msg); act {
		case actionQuit:
			m.quit()
			return m, tea.Quit
		case actionSave:
			m.save()
		case actionTOC:
			m.openTOC()
		default:
			control(m.engine, act)
		}
		return m, nil
	}
	return m, nil
}

func (m model) updateTOC(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.String() == "ctrl+c":
		m.quit()
		return m, tea.Quit
	case msg.String() == "esc", key.Matches(msg, m.keys.TOC):
		m.tocOpen = false
		return m, nil
	case msg.String() == "enter":
		if it, ok := m.toc.SelectedItem().(tocItem); ok {
			m.engine.JumpTo(it.entry.WordIndex)
		}
		m.tocOpen = false
		return m, nil
	}
	var cmd tea.Cmd
	m.toc, cmd = m.toc.Update(msg)
	return m, cmd
}

// openTOC pauses reading and shows the contents with the current section
// selected.
func (m *model) openTOC() {
	if len(m.sess.toc) == 0 {
		m.message = "No table of contents"
		return
	}
	m.engine.Pause()
	current := 0
	if pos, ok := m.engine.Position(); ok {
		for i, e := range m.sess.toc {
			if e.WordIndex <= pos.WordIndex {
				current = i
			}
		}
	}
	m.toc.Select(current)
	m.tocOpen = true
}

func (m *model) save() {
	if !m.sess.temp() {
		m.message = "Already in library"
		return
	}
	pos, _ := m.engine.Position()
	doc, err := m.app.saveTemp(m.tracker, pos)
	if err != nil {
		m.app.logger.Error("save to library", "error", err)
		m.message = fmt.Sprintf("Save failed: %v", err)
		return
	}
	m.sess.docID = doc.ID
	m.sess.title = doc.Title
	m.message = "Saved: " + doc.Title
}

func (m *model) quit() {
	if pos, ok := m.engine.Position(); ok {
		m.tracker.SavePosition(pos)
	}
	m.quitting = true
}

func (m model) View() string {
	if m.quitting {
		if m.frame.atEnd() {
			return m.styles.complete.Render("\n  Reading complete!\n")
		}
		return ""
	}
	if m.tocOpen {
		return m.toc.View() + "\n" + m.styles.controls.Render("enter: jump  esc: back")
	}

	paused := m.frame.status.State == playback.Paused
	body := []string{anchorORPText(formatWord(m.frame.word.Text, m.styles), m.frame.word.Text, m.width)}
	if paused && m.frame.showParagraph {
		p := playback.NewProgress(m.frame.status.WordIndex, m.frame.status.TotalWords, m.frame.status.WordsPerMinute)
		body = append(body,
			"",
			m.paragraphView(),
			"",
			lipgloss.PlaceHorizontal(m.width, lipgloss.Center, m.bar.ViewAs(p.Percent/100)),
		)
	}
	bodyText := strings.Join(body, "\n")

	footer := m.help.View(m.keys)
	if m.message != "" {
		footer = m.styles.controls.Render(m.message)
	}

	// Reserve lines for the status at the top and the footer at the bottom.
	avail := max(m.height-1-lipgloss.Height(footer), 1)
	bodyHeight := lipgloss.Height(bodyText)
	vPad := max((avail-bodyHeight)/2, 0)

	var sb strings.Builder
	sb.WriteString(m.statusLine())
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("\n", vPad))
	sb.WriteString(bodyText)
	sb.WriteString(strings.Repeat("\n", max(avail-vPad-bodyHeight, 0)+1))
	sb.WriteString(footer)
	return sb.String()
}

func (m model) statusLine() string {
	st := m.frame.status
	p := playback.NewProgress(st.WordIndex, st.TotalWords, st.WordsPerMinute)

	line := fmt.Sprintf("Word %d/%d | %d WPM | %.0f%% | %s left",
		p.Current, p.Total, st.WordsPerMinute, p.Percent, p.ShortRemaining())
	if section := reader.Section(m.sess.toc, st.WordIndex); section != "" {
		line += " | " + section
	} else if m.sess.title != "" {
		line += " | " + m.sess.title
	}

	suffix := ""
	switch {
	case m.frame.atEnd():
		suffix = m.styles.complete.Render(" Reading complete")
	case st.State == playback.Paused:
		suffix = m.styles.paused.Render(" [PAUSED]")
	}
	return m.styles.status.Render(line) + suffix
}

// paragraphView renders the paragraph around the current word with the
// current sentence highlighted.
func (m model) paragraphView() string {
	parts := make([]string, len(m.frame.paragraph.Sentences))
	for i, s := range m.frame.paragraph.Sentences {
		style := m.styles.paragraph
		if s.Index == m.frame.highlight {
			style = m.styles.highlight
		}
		parts[i] = style.Render(s.Text)
	}
	width := max(min(m.width-4, 72), 20)
	block := lipgloss.NewStyle().Width(width).Render(strings.Join(parts, " "))
	return lipgloss.PlaceHorizontal(m.width, lipgloss.Center, block)
}

func formatWord(word string, st styles) string {
	before, pivot, after := reader.SplitORP(word)
	return st.word.Render(before) +
		st.pivot.Render(pivot) +
		st.word.Render(after)
}

// anchorORPText pads the rendered word so the word's pivot sits in the middle column.
func anchorORPText(rendered string, word string, width int) string {
	before, _, _ := reader.SplitORP(word)
	pad := max(width/2-runewidth.StringWidth(before), 0)
	return strings.Repeat(" ", pad) + rendered
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

	m, err := newModel(a, s)
	if err != nil {
		a.Close()
		fail(err)
	}
	defer m.engine.Close()

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		m.engine.Close()
		a.Close()
		fail(err)
	}
}
