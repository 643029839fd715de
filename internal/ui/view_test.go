package ui

import (
	"strings"
	"sync"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/x/ansi"
)

type mockController struct {
	mu        sync.Mutex
	quitCalls int
	introShow int
	selected  []string
	submitted []string
	toggles   int
	nexts     int
	saves     int
	loads     int
	stats     int
}

func (m *mockController) OnShowIntro() { m.mu.Lock(); m.introShow++; m.mu.Unlock() }
func (m *mockController) OnSelectExercise(id string) {
	m.mu.Lock()
	m.selected = append(m.selected, id)
	m.mu.Unlock()
}
func (m *mockController) OnSubmit(query string) {
	m.mu.Lock()
	m.submitted = append(m.submitted, query)
	m.mu.Unlock()
}
func (m *mockController) OnToggleEngine()  { m.mu.Lock(); m.toggles++; m.mu.Unlock() }
func (m *mockController) OnNextExercise()  { m.mu.Lock(); m.nexts++; m.mu.Unlock() }
func (m *mockController) OnSaveProgress()  { m.mu.Lock(); m.saves++; m.mu.Unlock() }
func (m *mockController) OnLoadProgress()  { m.mu.Lock(); m.loads++; m.mu.Unlock() }
func (m *mockController) OnStats()         { m.mu.Lock(); m.stats++; m.mu.Unlock() }
func (m *mockController) OnQuit()          { m.mu.Lock(); m.quitCalls++; m.mu.Unlock() }

func (m *mockController) read(fn func(*mockController) bool) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(m)
}

func press(v *Root, code rune, mod tea.KeyMod, text string) {
	_, _ = v.Update(tea.KeyPressMsg{Code: code, Mod: mod, Text: text})
}

func waitFor(t *testing.T, ctrl *mockController, cond func(*mockController) bool) {
	t.Helper()
	deadline := time.Now().Add(300 * time.Millisecond)
	for !ctrl.read(cond) && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
}

func newExerciseView(t *testing.T) (*Root, *mockController) {
	t.Helper()
	v := New(Options{ASCIIOnly: true})
	ctrl := &mockController{}
	v.SetController(ctrl)
	v.SetMenu([]MenuEntry{
		{ID: "ex-1", Title: "Select *", Solved: true},
		{ID: "ex-2", Title: "Filtrando linhas"},
	})
	v.SetExercise(ExerciseState{ID: "ex-1", Title: "Select *", PromptMD: "Liste todos os atletas.", Hint: "Use SELECT *", Mandatory: []string{"SELECT"}})
	return v, ctrl
}

func TestCtrlQQuitsFromAnyScreen(t *testing.T) {
	v := New(Options{})
	ctrl := &mockController{}
	v.SetController(ctrl)
	v.SetScreen(ScreenIntro)

	press(v, 'q', tea.ModCtrl, "")

	waitFor(t, ctrl, func(m *mockController) bool { return m.quitCalls > 0 })
	if !ctrl.read(func(m *mockController) bool { return m.quitCalls == 1 }) {
		t.Fatalf("expected Ctrl+Q to trigger quit")
	}
}

func TestF5SubmitsEditorContents(t *testing.T) {
	v, ctrl := newExerciseView(t)
	v.editor.SetValue("SELECT * FROM atletas")

	press(v, tea.KeyF5, 0, "")

	waitFor(t, ctrl, func(m *mockController) bool { return len(m.submitted) > 0 })
	ok := ctrl.read(func(m *mockController) bool {
		return len(m.submitted) == 1 && m.submitted[0] == "SELECT * FROM atletas"
	})
	if !ok {
		t.Fatalf("expected one submission of the editor text, got %v", ctrl.submitted)
	}
}

func TestRunIgnoredWhileBusy(t *testing.T) {
	v, ctrl := newExerciseView(t)
	v.SetRunning(true)

	press(v, tea.KeyF5, 0, "")
	time.Sleep(30 * time.Millisecond)

	if n := ctrl.read(func(m *mockController) bool { return len(m.submitted) == 0 }); !n {
		t.Fatalf("expected no submission while a query is running")
	}
}

func TestTabFocusesMenuAndEnterSelects(t *testing.T) {
	v, ctrl := newExerciseView(t)
	if v.menuIndex != 1 {
		t.Fatalf("expected cursor on the open exercise, got %d", v.menuIndex)
	}

	press(v, tea.KeyTab, 0, "")
	if v.focus != focusMenu {
		t.Fatalf("expected Tab to focus the menu")
	}
	press(v, tea.KeyDown, 0, "")
	press(v, tea.KeyEnter, 0, "")

	waitFor(t, ctrl, func(m *mockController) bool { return len(m.selected) > 0 })
	ok := ctrl.read(func(m *mockController) bool { return len(m.selected) == 1 && m.selected[0] == "ex-2" })
	if !ok {
		t.Fatalf("expected ex-2 selection, got %v", ctrl.selected)
	}
	if v.focus != focusEditor {
		t.Fatalf("expected focus to return to the editor")
	}
}

func TestMenuFirstEntryShowsIntro(t *testing.T) {
	v, ctrl := newExerciseView(t)
	press(v, tea.KeyTab, 0, "")
	press(v, tea.KeyUp, 0, "")
	press(v, tea.KeyEnter, 0, "")

	waitFor(t, ctrl, func(m *mockController) bool { return m.introShow > 0 })
	if !ctrl.read(func(m *mockController) bool { return m.introShow == 1 }) {
		t.Fatalf("expected intro entry to call OnShowIntro")
	}
}

func TestF1TogglesHint(t *testing.T) {
	v, _ := newExerciseView(t)
	if strings.Contains(v.renderScreen(), "Dica: Use SELECT *") {
		t.Fatalf("hint should start hidden")
	}
	press(v, tea.KeyF1, 0, "")
	if !v.hintOpen {
		t.Fatalf("expected F1 to open the hint")
	}
	if !strings.Contains(v.renderScreen(), "Dica: Use SELECT *") {
		t.Fatalf("expected hint text in the exercise panel")
	}
}

func TestSetExerciseKeepsDraftsPerExercise(t *testing.T) {
	v, _ := newExerciseView(t)
	v.editor.SetValue("SELECT nome")

	v.SetExercise(ExerciseState{ID: "ex-2", Title: "Filtrando linhas"})
	if got := v.editor.Value(); got != "" {
		t.Fatalf("expected empty editor for a new exercise, got %q", got)
	}
	v.SetExercise(ExerciseState{ID: "ex-1", Title: "Select *"})
	if got := v.editor.Value(); got != "SELECT nome" {
		t.Fatalf("expected draft restored, got %q", got)
	}
}

func TestInfoOverlayClosesOnEsc(t *testing.T) {
	v, _ := newExerciseView(t)
	v.SetInfo("Estatísticas", "Tentativas: 3", true)
	if !strings.Contains(v.renderOverlay(), "Tentativas: 3") {
		t.Fatalf("expected info text in overlay")
	}
	press(v, tea.KeyEsc, 0, "")
	if v.infoOpen {
		t.Fatalf("expected Esc to close the info overlay")
	}
}

func TestNextOnlyAfterAcceptedOutcome(t *testing.T) {
	v, ctrl := newExerciseView(t)
	press(v, tea.KeyF7, 0, "")
	time.Sleep(30 * time.Millisecond)
	if !ctrl.read(func(m *mockController) bool { return m.nexts == 0 }) {
		t.Fatalf("expected F7 to be ignored before an accepted submission")
	}

	v.SetOutcome(OutcomeState{Status: "pass", Message: "ok", CanNext: true})
	press(v, tea.KeyF7, 0, "")
	waitFor(t, ctrl, func(m *mockController) bool { return m.nexts > 0 })
	if !ctrl.read(func(m *mockController) bool { return m.nexts == 1 }) {
		t.Fatalf("expected F7 to advance after acceptance")
	}
}

func TestResultTableRendersRows(t *testing.T) {
	v, _ := newExerciseView(t)
	v.SetOutcome(OutcomeState{
		Status:   "fail",
		Message:  "Sua query foi executada, mas não retornou o resultado esperado. Tente novamente!",
		Columns:  []string{"nome", "idade"},
		Rows:     [][]string{{"Ana", "21"}, {"Bruno", "34"}},
		RowCount: 2,
	})
	out := ansi.Strip(v.renderScreen())
	for _, want := range []string{"Resultado da Execução", "nome", "Bruno", "34"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in rendered screen", want)
		}
	}
}

func TestIdleResultMessage(t *testing.T) {
	v, _ := newExerciseView(t)
	if !strings.Contains(ansi.Strip(v.renderScreen()), idleMessage) {
		t.Fatalf("expected idle message before the first run")
	}
}

func TestMediumLayoutOpensMenuOverlay(t *testing.T) {
	v, _ := newExerciseView(t)
	_, _ = v.Update(tea.WindowSizeMsg{Width: 90, Height: 26})
	if v.layout != LayoutMedium {
		t.Fatalf("expected medium layout, got %v", v.layout)
	}
	press(v, tea.KeyF2, 0, "")
	if !v.menuOpen {
		t.Fatalf("expected F2 to open the menu overlay")
	}
	if !strings.Contains(v.renderOverlay(), "Filtrando linhas") {
		t.Fatalf("expected menu entries in overlay")
	}
	press(v, tea.KeyEsc, 0, "")
	if v.menuOpen {
		t.Fatalf("expected Esc to close the menu overlay")
	}
}

func TestTooSmallLayoutShowsResizePanel(t *testing.T) {
	v, _ := newExerciseView(t)
	_, _ = v.Update(tea.WindowSizeMsg{Width: 60, Height: 20})
	if !strings.Contains(v.renderScreen(), "Terminal muito pequeno") {
		t.Fatalf("expected resize panel")
	}
}

func TestGlobalKeysDispatch(t *testing.T) {
	v, ctrl := newExerciseView(t)
	press(v, tea.KeyF6, 0, "")
	press(v, 's', tea.ModCtrl, "")
	press(v, 'o', tea.ModCtrl, "")
	press(v, tea.KeyF9, 0, "")

	waitFor(t, ctrl, func(m *mockController) bool {
		return m.toggles > 0 && m.saves > 0 && m.loads > 0 && m.stats > 0
	})
	ok := ctrl.read(func(m *mockController) bool {
		return m.toggles == 1 && m.saves == 1 && m.loads == 1 && m.stats == 1
	})
	if !ok {
		t.Fatalf("expected each global key to dispatch once")
	}
}

func TestPadANSIIgnoresEscapes(t *testing.T) {
	s := padANSI("\x1b[1mab\x1b[0m", 4)
	if got := ansi.StringWidth(s); got != 4 {
		t.Fatalf("expected width 4, got %d", got)
	}
	if got := ansi.Strip(padANSI("abcdef", 3)); got != "abc" {
		t.Fatalf("expected truncation, got %q", got)
	}
}

func TestViewImplementsInterfaceCompileTime(t *testing.T) {
	var _ View = New(Options{})
}

func TestPanelsUseThemeFrames(t *testing.T) {
	v, _ := newExerciseView(t)
	_, _ = v.Update(tea.WindowSizeMsg{Width: 120, Height: 40})

	screen := v.renderScreen()
	if !strings.Contains(screen, v.theme.PanelTitle.Render(" "+editorTitle+" ")) {
		t.Fatalf("expected styled editor title")
	}
	if !strings.Contains(screen, v.theme.EditorBorder.Render("+")) {
		t.Fatalf("expected editor border style in screen")
	}

	v.SetInfo("Estatísticas", "Tentativas: 3", true)
	overlay := v.renderOverlay()
	if !strings.Contains(overlay, v.theme.OverlayTitle.Render(" Estatísticas ")) {
		t.Fatalf("expected overlay title style")
	}
	if !strings.Contains(overlay, v.theme.OverlayBody.Render(padANSI("Tentativas: 3", 70))) {
		t.Fatalf("expected overlay body style")
	}
}

func TestDrawPanelKeepsWidthWithTitle(t *testing.T) {
	v := New(Options{})
	for _, title := range []string{"", "Menu exercícios", strings.Repeat("x", 80)} {
		out := v.drawPanel(title, []string{"linha"}, 24, 4, v.theme.panelFrame())
		lines := strings.Split(out, "\n")
		if len(lines) != 4 {
			t.Fatalf("%q: expected 4 lines, got %d", title, len(lines))
		}
		for i, line := range lines {
			if got := ansi.StringWidth(line); got != 24 {
				t.Fatalf("%q line %d: width %d, want 24", title, i, got)
			}
		}
	}
}
