package ui

type Controller interface {
	OnShowIntro()
	OnSelectExercise(id string)
	OnSubmit(query string)
	OnToggleEngine()
	OnNextExercise()
	OnSaveProgress()
	OnLoadProgress()
	OnStats()
	OnQuit()
}

type View interface {
	Run() error
	Stop()
	SetController(Controller)
	SetScreen(screen Screen)
	SetHeader(state HeaderState)
	SetMenu(entries []MenuEntry)
	SetIntro(markdown string)
	SetExercise(state ExerciseState)
	SetOutcome(state OutcomeState)
	SetRunning(running bool)
	SetInfo(title, text string, open bool)
	FlashStatus(msg string)
}

type Screen int

const (
	ScreenIntro Screen = iota
	ScreenExercise
)

type LayoutMode int

const (
	LayoutWide LayoutMode = iota
	LayoutMedium
	LayoutTooSmall
)

type HeaderState struct {
	Title  string
	Engine string
	Solved int
	Total  int
}

// MenuEntry is one unlocked exercise in the sidebar.
type MenuEntry struct {
	ID     string
	Title  string
	Solved bool
}

type ExerciseState struct {
	ID        string
	Title     string
	PromptMD  string
	Hint      string
	Mandatory []string
}

// OutcomeState is what the result panel shows. Status is one of "pass",
// "fail", "error" or "" for the idle placeholder.
type OutcomeState struct {
	Status   string
	Message  string
	Columns  []string
	Rows     [][]string
	RowCount int
	CanNext  bool
}
