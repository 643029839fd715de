package ui

import (
	"fmt"
	"os"
	"runtime/debug"
	"strings"
	"sync"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/textarea"
	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/glamour"
	clog "github.com/charmbracelet/log"
)

type applyMsg struct {
	fn func(*Root)
}

type focusArea int

const (
	focusEditor focusArea = iota
	focusMenu
)

type playKeyMap struct {
	Run    key.Binding
	Hint   key.Binding
	Menu   key.Binding
	Engine key.Binding
	Next   key.Binding
	Stats  key.Binding
	Save   key.Binding
	Load   key.Binding
	Quit   key.Binding
}

func (k playKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Run, k.Hint, k.Menu, k.Engine, k.Next, k.Save, k.Load, k.Quit}
}

func (k playKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Run, k.Hint, k.Menu, k.Engine, k.Next}, {k.Stats, k.Save, k.Load, k.Quit}}
}

type Root struct {
	theme Theme
	ascii bool
	debug bool
	ctrl  Controller

	mu      sync.Mutex
	program *tea.Program
	running bool

	screen Screen
	layout LayoutMode
	cols   int
	rows   int

	header    HeaderState
	menu      []MenuEntry
	menuIndex int
	intro     string
	exercise  ExerciseState
	outcome   OutcomeState
	drafts    map[string]string

	hintOpen    bool
	menuOpen    bool
	infoOpen    bool
	infoTitle   string
	infoText    string
	busy        bool
	statusFlash string
	focus       focusArea

	editor   textarea.Model
	help     help.Model
	keymap   playKeyMap
	spin     spinner.Model
	markdown *glamour.TermRenderer
	mdCache  map[string]string
	logger   *clog.Logger

	lastInputEvent string
}

type Options struct {
	ASCIIOnly    bool
	Debug        bool
	StyleVariant string
}

func New(opts Options) *Root {
	logger := clog.NewWithOptions(os.Stderr, clog.Options{Prefix: "ossql-ui", Level: clog.WarnLevel})
	if opts.Debug {
		logger.SetLevel(clog.DebugLevel)
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(78),
	)
	if err != nil {
		renderer = nil
	}

	h := help.New()
	h.Styles = help.DefaultDarkStyles()
	theme := ThemeForVariant(normalizeStyleVariant(opts.StyleVariant))

	editor := textarea.New()
	editor.Placeholder = "-- Digite seu código SQL aqui..."
	editor.ShowLineNumbers = true
	editor.SetStyles(textarea.DefaultDarkStyles())
	editor.Focus()

	r := &Root{
		theme:    theme,
		ascii:    opts.ASCIIOnly,
		debug:    opts.Debug,
		screen:   ScreenIntro,
		layout:   LayoutWide,
		cols:     120,
		rows:     32,
		drafts:   map[string]string{},
		editor:   editor,
		help:     h,
		spin:     spinner.New(spinner.WithSpinner(spinner.MiniDot), spinner.WithStyle(theme.Accent)),
		markdown: renderer,
		mdCache:  map[string]string{},
		logger:   logger,
	}
	r.keymap = playKeyMap{
		Run:    key.NewBinding(key.WithKeys("f5", "ctrl+r"), key.WithHelp("F5", "Executar")),
		Hint:   key.NewBinding(key.WithKeys("f1"), key.WithHelp("F1", "Dica")),
		Menu:   key.NewBinding(key.WithKeys("f2"), key.WithHelp("F2", "Exercícios")),
		Engine: key.NewBinding(key.WithKeys("f6"), key.WithHelp("F6", "Motor")),
		Next:   key.NewBinding(key.WithKeys("f7", "ctrl+n"), key.WithHelp("F7", "Próximo")),
		Stats:  key.NewBinding(key.WithKeys("f9"), key.WithHelp("F9", "Estatísticas")),
		Save:   key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("^S", "Salvar")),
		Load:   key.NewBinding(key.WithKeys("ctrl+o"), key.WithHelp("^O", "Carregar")),
		Quit:   key.NewBinding(key.WithKeys("ctrl+q"), key.WithHelp("^Q", "Sair")),
	}
	r.resizeEditor()
	return r
}

func (r *Root) Init() tea.Cmd {
	return tea.Batch(spinnerTickCmd(r.spin), textarea.Blink)
}

func (r *Root) Update(msg tea.Msg) (model tea.Model, cmd tea.Cmd) {
	defer func() {
		if rec := recover(); rec != nil {
			r.onModelPanic("update", rec, msg)
			model = r
			cmd = nil
		}
	}()

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		r.cols = msg.Width
		r.rows = msg.Height
		r.layout = DetermineLayoutMode(r.cols, r.rows)
		if r.layout == LayoutWide {
			r.menuOpen = false
		}
		r.resizeEditor()
		return r, nil
	case applyMsg:
		if msg.fn != nil {
			msg.fn(r)
		}
		return r, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		r.spin, cmd = r.spin.Update(msg)
		return r, cmd
	case tea.PasteMsg:
		if r.screen != ScreenExercise || r.overlayActive() || r.focus != focusEditor {
			return r, nil
		}
	case tea.KeyPressMsg:
		return r.handleKey(msg)
	}

	var edCmd tea.Cmd
	r.editor, edCmd = r.editor.Update(msg)
	return r, edCmd
}

func (r *Root) Run() error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return nil
	}
	p := tea.NewProgram(r)
	r.program = p
	r.running = true
	r.mu.Unlock()

	_, err := p.Run()

	r.mu.Lock()
	r.program = nil
	r.running = false
	r.mu.Unlock()
	return err
}

func (r *Root) Stop() {
	r.mu.Lock()
	p := r.program
	r.mu.Unlock()
	if p != nil {
		p.Quit()
	}
}

func (r *Root) SetController(c Controller) {
	r.ctrl = c
}

func (r *Root) SetScreen(screen Screen) {
	r.apply(func(m *Root) {
		m.screen = screen
		if screen == ScreenIntro {
			m.menuIndex = 0
		}
	})
}

func (r *Root) SetHeader(state HeaderState) {
	r.apply(func(m *Root) {
		m.header = state
	})
}

func (r *Root) SetMenu(entries []MenuEntry) {
	r.apply(func(m *Root) {
		m.menu = append([]MenuEntry(nil), entries...)
		m.syncMenuIndex()
	})
}

func (r *Root) SetIntro(markdown string) {
	r.apply(func(m *Root) {
		m.intro = markdown
	})
}

// SetExercise swaps the editor contents so each exercise keeps its own draft.
func (r *Root) SetExercise(state ExerciseState) {
	r.apply(func(m *Root) {
		if m.exercise.ID != "" {
			m.drafts[m.exercise.ID] = m.editor.Value()
		}
		if state.ID != m.exercise.ID {
			m.outcome = OutcomeState{}
			m.hintOpen = false
		}
		m.exercise = state
		m.editor.SetValue(m.drafts[state.ID])
		m.screen = ScreenExercise
		m.focus = focusEditor
		m.syncFocus()
		m.syncMenuIndex()
	})
}

func (r *Root) SetOutcome(state OutcomeState) {
	r.apply(func(m *Root) {
		m.outcome = state
	})
}

func (r *Root) SetRunning(running bool) {
	r.apply(func(m *Root) {
		m.busy = running
		if running {
			m.statusFlash = ""
		}
	})
}

func (r *Root) SetInfo(title, text string, open bool) {
	r.apply(func(m *Root) {
		m.infoTitle = title
		m.infoText = text
		m.infoOpen = open
	})
}

func (r *Root) FlashStatus(msg string) {
	r.apply(func(m *Root) {
		m.statusFlash = msg
	})
}

func (r *Root) apply(fn func(*Root)) {
	if fn == nil {
		return
	}
	r.mu.Lock()
	p := r.program
	running := r.running
	if !running || p == nil {
		fn(r)
		r.mu.Unlock()
		return
	}
	r.mu.Unlock()
	p.Send(applyMsg{fn: fn})
}

func (r *Root) dispatchController(fn func(Controller)) {
	if fn == nil || r.ctrl == nil {
		return
	}
	ctrl := r.ctrl
	go fn(ctrl)
}

func (r *Root) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	r.recordInputEvent(fmt.Sprintf("key:%v mod:%v text:%q", msg.Code, msg.Mod, msg.Text))

	if key.Matches(msg, r.keymap.Quit) {
		r.dispatchController(func(c Controller) { c.OnQuit() })
		return r, nil
	}

	if r.infoOpen {
		if msg.Code == tea.KeyEsc || msg.Code == tea.KeyEnter || (msg.Mod == 0 && (msg.Code == 'q' || msg.Code == 'Q')) {
			r.infoOpen = false
		}
		return r, nil
	}

	switch {
	case key.Matches(msg, r.keymap.Save):
		r.dispatchController(func(c Controller) { c.OnSaveProgress() })
		return r, nil
	case key.Matches(msg, r.keymap.Load):
		r.dispatchController(func(c Controller) { c.OnLoadProgress() })
		return r, nil
	case key.Matches(msg, r.keymap.Stats):
		r.dispatchController(func(c Controller) { c.OnStats() })
		return r, nil
	case key.Matches(msg, r.keymap.Engine):
		r.dispatchController(func(c Controller) { c.OnToggleEngine() })
		return r, nil
	case key.Matches(msg, r.keymap.Menu):
		r.toggleMenuFocus()
		return r, nil
	}

	if r.menuOpen || r.focus == focusMenu {
		return r.handleMenuKey(msg)
	}

	if r.screen == ScreenIntro {
		switch msg.Code {
		case tea.KeyEnter:
			if len(r.menu) > 0 {
				id := r.menu[0].ID
				r.dispatchController(func(c Controller) { c.OnSelectExercise(id) })
			}
		case tea.KeyTab, tea.KeyUp, tea.KeyDown:
			r.toggleMenuFocus()
		}
		return r, nil
	}

	switch {
	case key.Matches(msg, r.keymap.Run):
		r.submit()
		return r, nil
	case key.Matches(msg, r.keymap.Hint):
		r.hintOpen = !r.hintOpen
		return r, nil
	case key.Matches(msg, r.keymap.Next):
		if r.outcome.CanNext {
			r.dispatchController(func(c Controller) { c.OnNextExercise() })
		}
		return r, nil
	}
	if msg.Code == tea.KeyTab && msg.Mod == 0 {
		r.toggleMenuFocus()
		return r, nil
	}

	var cmd tea.Cmd
	r.editor, cmd = r.editor.Update(msg)
	return r, cmd
}

func (r *Root) handleMenuKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	n := len(r.menu) + 1
	switch msg.Code {
	case tea.KeyUp:
		r.menuIndex = wrapIndex(r.menuIndex-1, n)
	case tea.KeyDown:
		r.menuIndex = wrapIndex(r.menuIndex+1, n)
	case tea.KeyEnter:
		r.activateMenuSelection()
	case tea.KeyEsc, tea.KeyTab:
		r.menuOpen = false
		r.focus = focusEditor
		r.syncFocus()
	}
	return r, nil
}

// toggleMenuFocus docks focus on the sidebar in the wide layout and opens
// the menu overlay otherwise.
func (r *Root) toggleMenuFocus() {
	if r.layout != LayoutWide {
		r.menuOpen = !r.menuOpen
		r.focus = focusEditor
		if r.menuOpen {
			r.focus = focusMenu
		}
	} else if r.focus == focusMenu {
		r.focus = focusEditor
	} else {
		r.focus = focusMenu
	}
	r.syncFocus()
}

func (r *Root) activateMenuSelection() {
	idx := r.menuIndex
	r.menuOpen = false
	r.focus = focusEditor
	r.syncFocus()
	if idx == 0 {
		r.dispatchController(func(c Controller) { c.OnShowIntro() })
		return
	}
	if idx-1 < len(r.menu) {
		id := r.menu[idx-1].ID
		r.dispatchController(func(c Controller) { c.OnSelectExercise(id) })
	}
}

func (r *Root) submit() {
	if r.busy {
		return
	}
	query := r.editor.Value()
	r.dispatchController(func(c Controller) { c.OnSubmit(query) })
}

func (r *Root) syncFocus() {
	if r.focus == focusEditor && r.screen == ScreenExercise {
		r.editor.Focus()
		return
	}
	r.editor.Blur()
}

// syncMenuIndex points the menu cursor at the open exercise; index 0 is the
// introduction.
func (r *Root) syncMenuIndex() {
	if r.screen == ScreenIntro {
		r.menuIndex = 0
		return
	}
	for i, e := range r.menu {
		if e.ID == r.exercise.ID {
			r.menuIndex = i + 1
			return
		}
	}
	r.menuIndex = wrapIndex(r.menuIndex, len(r.menu)+1)
}

func (r *Root) overlayActive() bool {
	return r.infoOpen || r.menuOpen
}

func (r *Root) recordInputEvent(event string) {
	r.lastInputEvent = trimForWidth(strings.TrimSpace(event), 160)
}

func (r *Root) onModelPanic(where string, recovered any, msg tea.Msg) {
	if r.statusFlash == "" {
		r.statusFlash = "Recovered UI panic"
	}
	msgType := ""
	if msg != nil {
		msgType = fmt.Sprintf("%T", msg)
	}
	r.logger.Error("ui.panic_recovered",
		"where", where,
		"panic", fmt.Sprintf("%v", recovered),
		"message_type", msgType,
		"screen", r.screen,
		"layout", r.layout,
		"cols", r.cols,
		"rows", r.rows,
		"last_input", r.lastInputEvent,
		"stack", string(debug.Stack()),
	)
}

func spinnerTickCmd(model spinner.Model) tea.Cmd {
	return func() tea.Msg {
		return model.Tick()
	}
}

var _ tea.Model = (*Root)(nil)
var _ View = (*Root)(nil)
