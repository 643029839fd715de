package ui

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
	"github.com/charmbracelet/x/ansi"
)

const (
	sidebarWidth = 30
	introLabel   = "Apresentação"
	idleMessage  = "O resultado da sua query aparecerá aqui."
	editorTitle  = "Editor de Código SQL"
)

func (r *Root) View() (view tea.View) {
	defer func() {
		if rec := recover(); rec != nil {
			r.onModelPanic("view", rec, nil)
			width := max(1, r.cols)
			msg := "UI recovered from a rendering panic. Check logs."
			view = tea.NewView(r.theme.Fail.Width(width).Render(trimForWidth(msg, max(1, width-1))))
		}
	}()

	if r.cols < 1 {
		r.cols = 120
	}
	if r.rows < 1 {
		r.rows = 30
	}

	base := r.renderScreen()
	if overlay := r.renderOverlay(); overlay != "" {
		base = composeOverlay(base, overlay, r.cols, r.rows)
	}
	v := tea.NewView(base)
	v.AltScreen = true
	return v
}

func (r *Root) renderScreen() string {
	w, h := r.cols, r.rows
	if r.layout == LayoutTooSmall {
		msg := []string{
			"Terminal muito pequeno",
			fmt.Sprintf("Atual: %dx%d", w, h),
			fmt.Sprintf("Mínimo: %dx%d", minCols, minRows),
			"Redimensione o terminal para continuar.",
		}
		panel := r.drawPanel("Redimensionar", msg, min(50, w), min(8, h), r.theme.overlayFrame())
		return lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center, panel)
	}

	bodyH := max(3, h-2)
	mainW := w
	var sidebar string
	if r.layout == LayoutWide {
		sidebar = r.drawPanel("Menu exercícios", r.menuLines(bodyH-2), sidebarWidth, bodyH, r.theme.panelFrame())
		mainW = max(20, w-sidebarWidth)
	}

	var main string
	if r.screen == ScreenIntro {
		main = r.drawPanel(introLabel, r.markdownLines(r.intro), mainW, bodyH, r.theme.panelFrame())
	} else {
		main = r.renderExercise(mainW, bodyH)
	}

	body := main
	if sidebar != "" {
		body = lipgloss.JoinHorizontal(lipgloss.Top, sidebar, main)
	}
	return r.headerText() + "\n" + body + "\n" + r.statusText()
}

func (r *Root) renderExercise(width, height int) string {
	promptH, editorH, resultH := sectionHeights(height)

	prompt := r.markdownLines(r.exercise.PromptMD)
	extra := []string{}
	if len(r.exercise.Mandatory) > 0 {
		extra = append(extra, r.theme.Muted.Render("Cláusulas obrigatórias: "+strings.Join(r.exercise.Mandatory, ", ")))
	}
	if r.hintOpen && strings.TrimSpace(r.exercise.Hint) != "" {
		extra = append(extra, r.theme.Info.Render("Dica: "+r.exercise.Hint))
	} else if strings.TrimSpace(r.exercise.Hint) != "" {
		extra = append(extra, r.theme.Muted.Render("Precisa de uma dica? (F1)"))
	}
	room := max(0, promptH-2-len(extra))
	if len(prompt) > room {
		prompt = prompt[:room]
	}
	prompt = append(prompt, extra...)

	title := firstNonEmptyStr(r.exercise.Title, r.exercise.ID)
	promptPanel := r.drawPanel(title, prompt, width, promptH, r.theme.panelFrame())
	editorPanel := r.drawPanel(editorTitle, strings.Split(r.editor.View(), "\n"), width, editorH, r.theme.editorFrame())
	resultPanel := r.drawPanel("Resultado da Execução", r.resultLines(width-2, resultH-2), width, resultH, r.theme.panelFrame())
	return lipgloss.JoinVertical(lipgloss.Left, promptPanel, editorPanel, resultPanel)
}

// sectionHeights splits the exercise column into prompt, editor and result
// panels. Every panel keeps at least one inner line.
func sectionHeights(height int) (int, int, int) {
	promptH := max(3, height*3/10)
	editorH := max(4, height*3/10)
	resultH := max(3, height-promptH-editorH)
	return promptH, editorH, resultH
}

func (r *Root) resizeEditor() {
	if r.layout == LayoutTooSmall {
		return
	}
	mainW := r.cols
	if r.layout == LayoutWide {
		mainW = max(20, r.cols-sidebarWidth)
	}
	_, editorH, _ := sectionHeights(max(3, r.rows-2))
	r.editor.SetWidth(max(10, mainW-2))
	r.editor.SetHeight(max(1, editorH-2))
	r.help.SetWidth(max(10, r.cols))
}

func (r *Root) headerText() string {
	title := firstNonEmptyStr(r.header.Title, "OSSql")
	text := fmt.Sprintf("%s | Motor: %s | Resolvidos: %d/%d", title, firstNonEmptyStr(r.header.Engine, "-"), r.header.Solved, r.header.Total)
	return r.theme.Header.Width(max(1, r.cols)).Render(trimForWidth(text, max(1, r.cols-2)))
}

func (r *Root) statusText() string {
	var text string
	switch {
	case r.busy:
		text = r.spin.View() + " Executando query..."
	case r.statusFlash != "":
		text = r.statusFlash
	default:
		text = r.help.View(r.keymap)
	}
	return r.theme.Status.Width(max(1, r.cols)).Render(ansi.Truncate(text, max(1, r.cols), ""))
}

func (r *Root) menuLines(limit int) []string {
	labels := make([]string, 0, len(r.menu)+1)
	labels = append(labels, introLabel)
	for _, e := range r.menu {
		mark := "  "
		if e.Solved {
			mark = "✓ "
			if r.ascii {
				mark = "* "
			}
		}
		labels = append(labels, mark+e.Title)
	}

	cursor := r.focus == focusMenu || r.menuOpen
	start := 0
	if limit > 0 && r.menuIndex >= limit {
		start = r.menuIndex - limit + 1
	}
	out := make([]string, 0, len(labels))
	for i := start; i < len(labels); i++ {
		if limit > 0 && len(out) >= limit {
			break
		}
		prefix := "  "
		if i == r.menuIndex {
			if cursor {
				prefix = "> "
			}
			out = append(out, r.theme.Selected.Render(prefix+labels[i]))
			continue
		}
		out = append(out, prefix+labels[i])
	}
	return out
}

func (r *Root) resultLines(width, height int) []string {
	o := r.outcome
	if o.Status == "" {
		return []string{r.theme.Muted.Render(idleMessage)}
	}

	style := r.theme.Fail
	switch o.Status {
	case "pass":
		style = r.theme.Pass
	case "error":
		style = r.theme.Pending
	}
	lines := []string{style.Render(trimForWidth(o.Message, max(1, width)))}
	if o.Status == "pass" && o.CanNext {
		lines = append(lines, r.theme.Muted.Render("F7 para o próximo exercício"))
	}
	if len(o.Columns) == 0 {
		return lines
	}

	// header, two borders and the message lines
	room := height - len(lines) - 4
	rows := o.Rows
	truncated := false
	if room < len(rows) {
		rows = rows[:max(0, room-1)]
		truncated = true
	}
	lines = append(lines, strings.Split(r.renderTable(o.Columns, rows), "\n")...)
	if truncated {
		lines = append(lines, r.theme.Muted.Render(fmt.Sprintf("... %d linhas no total", o.RowCount)))
	}
	return lines
}

func (r *Root) renderTable(columns []string, rows [][]string) string {
	border := lipgloss.NormalBorder()
	if r.ascii {
		border = lipgloss.ASCIIBorder()
	}
	t := table.New().
		Border(border).
		BorderStyle(r.theme.PanelBorder).
		Headers(columns...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return r.theme.TableHeader
			}
			return r.theme.TableCell
		})
	return t.String()
}

func (r *Root) markdownLines(md string) []string {
	md = strings.TrimSpace(md)
	if md == "" {
		return nil
	}
	if cached, ok := r.mdCache[md]; ok {
		return strings.Split(cached, "\n")
	}
	out := md
	if r.markdown != nil {
		if rendered, err := r.markdown.Render(md); err == nil {
			out = strings.Trim(rendered, "\n")
		} else {
			r.logger.Warn("ui.markdown_render_failed", "err", err)
		}
	}
	r.mdCache[md] = out
	return strings.Split(out, "\n")
}

func (r *Root) renderOverlay() string {
	switch {
	case r.infoOpen:
		lines := strings.Split(strings.TrimRight(r.infoText, "\n"), "\n")
		lines = append(lines, "", "Esc para fechar")
		w := min(72, max(20, r.cols-4))
		h := min(len(lines)+2, max(3, r.rows-2))
		return r.drawPanel(firstNonEmptyStr(r.infoTitle, "Info"), lines, w, h, r.theme.overlayFrame())
	case r.menuOpen:
		lines := r.menuLines(max(1, r.rows-6))
		w := min(44, max(20, r.cols-4))
		return r.drawPanel("Menu exercícios", lines, w, len(lines)+2, r.theme.overlayFrame())
	}
	return ""
}

func (r *Root) drawPanel(title string, lines []string, width, height int, f frame) string {
	width = max(4, width)
	height = max(3, height)
	innerW := width - 2
	innerH := height - 2

	h := "─"
	v := "│"
	tl := "┌"
	tr := "┐"
	bl := "└"
	br := "┘"
	if r.ascii {
		h = "-"
		v = "|"
		tl, tr, bl, br = "+", "+", "+", "+"
	}

	top := f.border.Render(tl + strings.Repeat(h, innerW) + tr)
	if title != "" && innerW > 2 {
		label := " " + trimForWidth(title, innerW-2) + " "
		rest := max(0, innerW-ansi.StringWidth(label))
		top = f.border.Render(tl) + f.title.Render(label) + f.border.Render(strings.Repeat(h, rest)+tr)
	}

	out := make([]string, 0, height)
	out = append(out, top)
	for row := 0; row < innerH; row++ {
		line := ""
		if row < len(lines) {
			line = lines[row]
		}
		out = append(out, f.border.Render(v)+f.body.Render(padANSI(line, innerW))+f.border.Render(v))
	}
	out = append(out, f.border.Render(bl+strings.Repeat(h, innerW)+br))
	return strings.Join(out, "\n")
}

func firstNonEmptyStr(a, b string) string {
	if strings.TrimSpace(a) != "" {
		return a
	}
	return b
}

func wrapIndex(i, n int) int {
	if n <= 0 {
		return 0
	}
	if i < 0 {
		i = n - 1
	}
	if i >= n {
		i = 0
	}
	return i
}

func padRune(s string, width int) string {
	if width <= 0 {
		return ""
	}
	r := []rune(strings.ReplaceAll(s, "\t", "    "))
	if len(r) > width {
		r = r[:width]
	}
	if len(r) < width {
		r = append(r, []rune(strings.Repeat(" ", width-len(r)))...)
	}
	return string(r)
}

// padANSI is padRune for styled text: width is measured in cells with escape
// sequences ignored.
func padANSI(s string, width int) string {
	if width <= 0 {
		return ""
	}
	s = strings.ReplaceAll(s, "\t", "    ")
	if ansi.StringWidth(s) > width {
		s = ansi.Truncate(s, width, "")
	}
	if w := ansi.StringWidth(s); w < width {
		s += strings.Repeat(" ", width-w)
	}
	return s
}

func composeOverlay(base, overlay string, cols, rows int) string {
	if cols <= 0 || rows <= 0 {
		return base
	}
	base = ansi.Strip(base)
	overlay = ansi.Strip(overlay)
	baseLines := strings.Split(base, "\n")
	if len(baseLines) < rows {
		baseLines = append(baseLines, make([]string, rows-len(baseLines))...)
	}
	for i := 0; i < rows; i++ {
		baseLines[i] = padRune(baseLines[i], cols)
	}

	overlayLines := strings.Split(strings.TrimRight(overlay, "\n"), "\n")
	ow := 1
	for _, line := range overlayLines {
		if lw := len([]rune(line)); lw > ow {
			ow = lw
		}
	}
	ow = min(ow, cols)
	oh := min(len(overlayLines), rows)
	startRow := (rows - oh) / 2
	startCol := max(0, (cols-ow)/2)

	for i := 0; i < oh; i++ {
		row := startRow + i
		if row < 0 || row >= rows {
			continue
		}
		dst := []rune(baseLines[row])
		src := []rune(overlayLines[i])
		if len(src) > ow {
			src = src[:ow]
		}
		for j := 0; j < ow && startCol+j < len(dst); j++ {
			dst[startCol+j] = ' '
		}
		for j := 0; j < len(src) && startCol+j < len(dst); j++ {
			dst[startCol+j] = src[j]
		}
		baseLines[row] = string(dst)
	}
	return strings.Join(baseLines[:rows], "\n")
}

func trimForWidth(s string, width int) string {
	if width <= 0 {
		return ""
	}
	r := []rune(strings.ReplaceAll(ansi.Strip(s), "\n", " "))
	if len(r) <= width {
		return string(r)
	}
	if width == 1 {
		return "…"
	}
	return string(r[:width-1]) + "…"
}

func normalizeStyleVariant(v string) string {
	switch strings.TrimSpace(v) {
	case "cozy_clean", "retro_terminal", "modern_arcade":
		return strings.TrimSpace(v)
	default:
		return "modern_arcade"
	}
}
