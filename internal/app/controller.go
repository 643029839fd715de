package app

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"ossql/internal/catalog"
	"ossql/internal/engine"
	"ossql/internal/grading"
	"ossql/internal/progress"
	"ossql/internal/session"
	"ossql/internal/state"
	"ossql/internal/ui"

	"github.com/dustin/go-humanize"
)

const (
	msgAccepted       = "Parabéns! Sua query está correta. 🥳"
	msgWrongResult    = "Sua query foi executada, mas não retornou o resultado esperado. Tente novamente!"
	msgMissingClause  = "Sua query não contém as cláusulas obrigatórias."
	msgExecutionError = "Ocorreu um erro na execução da query: %s"
	msgEmptyQuery     = "Por favor, digite uma query para executar."
)

// Exercises lists the catalog with lock, solved and attempt state.
func (a *App) Exercises(ctx context.Context) ([]ExerciseStatus, error) {
	stats, err := a.store.GetExerciseStats(ctx)
	if err != nil {
		return nil, err
	}
	a.mu.Lock()
	prog := a.session.Progress()
	a.mu.Unlock()

	all := a.catalog.Exercises()
	out := make([]ExerciseStatus, len(all))
	for i, ex := range all {
		out[i] = ExerciseStatus{
			Index:    i,
			Exercise: ex,
			Unlocked: prog.IsUnlocked(i),
			Solved:   i < prog.SolvedCount,
			Stats:    stats[ex.ID],
		}
	}
	return out, nil
}

func (a *App) OnShowIntro() {
	a.view.SetIntro(a.catalog.Intro)
	a.view.SetScreen(ui.ScreenIntro)
}

func (a *App) OnSelectExercise(id string) {
	a.mu.Lock()
	err := a.session.Select(id)
	a.mu.Unlock()
	if errors.Is(err, session.ErrLocked) {
		a.view.FlashStatus("Exercício bloqueado: resolva os anteriores primeiro.")
		return
	}
	if err != nil {
		a.view.FlashStatus(err.Error())
		return
	}
	a.showCurrent()
}

func (a *App) OnSubmit(query string) {
	a.view.SetRunning(true)
	defer a.view.SetRunning(false)

	a.mu.Lock()
	out, err := a.session.Submit(context.Background(), query)
	canNext := out.Accepted() && a.nextUnlocked()
	a.mu.Unlock()

	if errors.Is(err, session.ErrEmptySubmission) {
		a.view.SetOutcome(ui.OutcomeState{Status: "error", Message: msgEmptyQuery})
		return
	}
	if err != nil {
		a.view.SetOutcome(ui.OutcomeState{Status: "error", Message: err.Error()})
		return
	}
	st := outcomeState(out)
	st.CanNext = canNext
	a.view.SetOutcome(st)
	a.refreshChrome()
}

func (a *App) OnToggleEngine() {
	a.mu.Lock()
	kinds := engine.Kinds()
	next := kinds[0]
	for i, k := range kinds {
		if k == a.session.Engine() {
			next = kinds[(i+1)%len(kinds)]
		}
	}
	err := a.session.UseEngine(next)
	a.mu.Unlock()
	if err != nil {
		a.view.FlashStatus(err.Error())
		return
	}
	if err := a.store.SaveSettings(context.Background(), map[string]string{settingEngine: string(next)}); err != nil {
		a.logger.Error("state.save_settings_failed", map[string]any{"error": err.Error()})
	}
	a.logger.Info("engine.selected", map[string]any{"engine": string(next)})
	a.refreshChrome()
	a.view.FlashStatus("Motor: " + next.Label())
}

func (a *App) OnNextExercise() {
	a.mu.Lock()
	moved := a.session.Next()
	a.mu.Unlock()
	if !moved {
		a.view.FlashStatus("Nenhum exercício disponível depois deste.")
		return
	}
	a.showCurrent()
}

func (a *App) OnSaveProgress() {
	if err := a.ExportProgress(a.cfg.ProgressFile); err != nil {
		a.view.FlashStatus("Falha ao salvar o progresso: " + err.Error())
		return
	}
	a.view.FlashStatus("Progresso salvo em " + a.cfg.ProgressFile)
}

func (a *App) OnLoadProgress() {
	err := a.ImportProgress(context.Background(), a.cfg.ProgressFile)
	switch {
	case errors.Is(err, progress.ErrCorruptProgress):
		a.view.FlashStatus("Arquivo de progresso inválido; nada foi alterado.")
		return
	case err != nil:
		a.view.FlashStatus("Falha ao carregar o progresso: " + err.Error())
		return
	}
	a.refreshChrome()
	a.showCurrent()
	a.view.FlashStatus("Progresso carregado de " + a.cfg.ProgressFile)
}

func (a *App) OnStats() {
	ctx := context.Background()
	summary, err := a.store.GetSummary(ctx)
	if err != nil {
		a.view.SetInfo("Estatísticas", "Falha ao carregar estatísticas: "+err.Error(), true)
		return
	}
	statuses, err := a.Exercises(ctx)
	if err != nil {
		a.view.SetInfo("Estatísticas", "Falha ao carregar estatísticas: "+err.Error(), true)
		return
	}
	a.view.SetInfo("Estatísticas", statsText(summary, statuses, time.Now()), true)
}

func (a *App) OnQuit() {
	a.view.Stop()
}

func (a *App) showCurrent() {
	a.mu.Lock()
	ex := a.session.Current()
	last := a.session.LastOutcome()
	canNext := last != nil && last.Accepted() && a.nextUnlocked()
	a.mu.Unlock()

	a.view.SetExercise(exerciseState(ex))
	if last != nil {
		st := outcomeState(*last)
		st.CanNext = canNext
		a.view.SetOutcome(st)
	}
	a.refreshChrome()
}

// refreshChrome pushes the header and the menu, which change with progress
// and engine selection.
func (a *App) refreshChrome() {
	a.mu.Lock()
	prog := a.session.Progress()
	kind := a.session.Engine()
	a.mu.Unlock()

	a.view.SetHeader(ui.HeaderState{
		Title:  a.catalog.Title,
		Engine: kind.Label(),
		Solved: prog.SolvedCount,
		Total:  prog.Total,
	})

	all := a.catalog.Exercises()
	entries := make([]ui.MenuEntry, 0, prog.Unlocked())
	for i := 0; i < prog.Unlocked() && i < len(all); i++ {
		entries = append(entries, ui.MenuEntry{ID: all[i].ID, Title: all[i].Title, Solved: i < prog.SolvedCount})
	}
	a.view.SetMenu(entries)
}

// nextUnlocked reports whether an exercise after the current one can be
// opened. Callers hold a.mu.
func (a *App) nextUnlocked() bool {
	return a.session.Progress().IsUnlocked(a.session.CurrentIndex() + 1)
}

func exerciseState(ex catalog.Exercise) ui.ExerciseState {
	return ui.ExerciseState{
		ID:        ex.ID,
		Title:     ex.Title,
		PromptMD:  ex.Prompt,
		Hint:      ex.Hint,
		Mandatory: append([]string(nil), ex.Mandatory...),
	}
}

func outcomeState(o grading.Outcome) ui.OutcomeState {
	var st ui.OutcomeState
	switch o.Kind {
	case grading.Accepted:
		st = ui.OutcomeState{Status: "pass", Message: msgAccepted}
	case grading.RejectedWrongResult:
		st = ui.OutcomeState{Status: "fail", Message: msgWrongResult}
	case grading.RejectedMissingClause:
		msg := msgMissingClause
		if len(o.Missing) > 0 {
			msg += " Faltando: " + strings.Join(o.Missing, ", ")
		}
		st = ui.OutcomeState{Status: "fail", Message: msg}
	default:
		st = ui.OutcomeState{Status: "error", Message: fmt.Sprintf(msgExecutionError, o.Message)}
	}
	if o.Result != nil {
		st.Columns = o.Result.ColumnNames()
		st.RowCount = o.Result.NumRows()
		st.Rows = make([][]string, len(o.Result.Rows))
		for i, row := range o.Result.Rows {
			cells := make([]string, len(row))
			for j, v := range row {
				cells[j] = formatCell(v)
			}
			st.Rows[i] = cells
		}
	}
	return st
}

func formatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		if math.IsNaN(x) {
			return "NaN"
		}
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		if x.Hour() == 0 && x.Minute() == 0 && x.Second() == 0 && x.Nanosecond() == 0 {
			return x.Format(time.DateOnly)
		}
		return x.Format(time.DateTime)
	default:
		return fmt.Sprint(x)
	}
}

func statsText(summary state.Summary, statuses []ExerciseStatus, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Sessões: %s\n", humanize.Comma(int64(summary.Sessions)))
	fmt.Fprintf(&b, "Tentativas: %s\n", humanize.Comma(int64(summary.Attempts)))
	fmt.Fprintf(&b, "Acertos: %s\n", humanize.Comma(int64(summary.Accepted)))
	fmt.Fprintf(&b, "Exercícios praticados: %d\n\n", summary.Exercises)
	for _, st := range statuses {
		if st.Stats.Attempts == 0 {
			continue
		}
		line := fmt.Sprintf("%s: %d tentativa(s)", st.Exercise.Title, st.Stats.Attempts)
		if st.Stats.AcceptedCount > 0 {
			line += fmt.Sprintf(", melhor %d ms", st.Stats.BestDurationMS)
		}
		if !st.Stats.LastPlayedTS.IsZero() {
			line += ", " + humanize.RelTime(st.Stats.LastPlayedTS, now, "atrás", "depois")
		}
		b.WriteString(line + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

var _ ui.Controller = (*App)(nil)
var _ session.Recorder = (*App)(nil)
