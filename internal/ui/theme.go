package ui

import "charm.land/lipgloss/v2"

// Theme holds the styles for one look. Panels are drawn by hand, so the
// border styles only carry colors.
type Theme struct {
	Header        lipgloss.Style
	Status        lipgloss.Style
	PanelTitle    lipgloss.Style
	PanelBorder   lipgloss.Style
	PanelBody     lipgloss.Style
	EditorBorder  lipgloss.Style
	OverlayTitle  lipgloss.Style
	OverlayBorder lipgloss.Style
	OverlayBody   lipgloss.Style
	Accent        lipgloss.Style
	Pass          lipgloss.Style
	Fail          lipgloss.Style
	Pending       lipgloss.Style
	Muted         lipgloss.Style
	Info          lipgloss.Style
	Selected      lipgloss.Style
	TableHeader   lipgloss.Style
	TableCell     lipgloss.Style
}

// frame is the set of styles drawPanel paints one panel with.
type frame struct {
	border lipgloss.Style
	title  lipgloss.Style
	body   lipgloss.Style
}

func (t Theme) panelFrame() frame {
	return frame{border: t.PanelBorder, title: t.PanelTitle, body: t.PanelBody}
}

func (t Theme) editorFrame() frame {
	return frame{border: t.EditorBorder, title: t.PanelTitle, body: t.PanelBody}
}

func (t Theme) overlayFrame() frame {
	return frame{border: t.OverlayBorder, title: t.OverlayTitle, body: t.OverlayBody}
}

func DefaultTheme() Theme {
	return ThemeForVariant("modern_arcade")
}

func ThemeForVariant(variant string) Theme {
	switch variant {
	case "cozy_clean":
		return cozyCleanTheme()
	case "retro_terminal":
		return retroTerminalTheme()
	default:
		return modernArcadeTheme()
	}
}

// modernArcadeTheme uses belt colors: blue chrome, a purple editor and
// gold overlays.
func modernArcadeTheme() Theme {
	belt := lipgloss.Color("#3D7BFD")
	purple := lipgloss.Color("#A77BFF")
	gold := lipgloss.Color("#F5B841")
	green := lipgloss.Color("#4ADE80")
	red := lipgloss.Color("#F2545B")
	night := lipgloss.Color("#101726")
	steel := lipgloss.Color("#22304A")
	chalk := lipgloss.Color("#E8EEF8")
	frameColor := lipgloss.Color("#4A5B7D")

	return Theme{
		Header:        lipgloss.NewStyle().Background(night).Foreground(chalk).Bold(true).Padding(0, 1),
		Status:        lipgloss.NewStyle().Background(steel).Foreground(chalk).Padding(0, 1),
		PanelTitle:    lipgloss.NewStyle().Foreground(belt).Bold(true),
		PanelBorder:   lipgloss.NewStyle().Foreground(frameColor),
		PanelBody:     lipgloss.NewStyle().Foreground(chalk),
		EditorBorder:  lipgloss.NewStyle().Foreground(purple),
		OverlayTitle:  lipgloss.NewStyle().Foreground(gold).Bold(true),
		OverlayBorder: lipgloss.NewStyle().Foreground(gold),
		OverlayBody:   lipgloss.NewStyle().Background(night).Foreground(chalk),
		Accent:        lipgloss.NewStyle().Foreground(purple).Bold(true),
		Pass:          lipgloss.NewStyle().Foreground(green).Bold(true),
		Fail:          lipgloss.NewStyle().Foreground(red).Bold(true),
		Pending:       lipgloss.NewStyle().Foreground(gold),
		Muted:         lipgloss.NewStyle().Foreground(lipgloss.Color("#8E9BB5")),
		Info:          lipgloss.NewStyle().Foreground(belt),
		Selected:      lipgloss.NewStyle().Foreground(night).Background(belt).Bold(true),
		TableHeader:   lipgloss.NewStyle().Foreground(gold).Bold(true).Padding(0, 1),
		TableCell:     lipgloss.NewStyle().Foreground(chalk).Padding(0, 1),
	}
}

func cozyCleanTheme() Theme {
	linen := lipgloss.Color("#FAF7F0")
	charcoal := lipgloss.Color("#2B2D33")
	clay := lipgloss.Color("#C8744F")
	olive := lipgloss.Color("#6E8B3D")
	wine := lipgloss.Color("#A23B4C")
	denim := lipgloss.Color("#3F6E9A")
	sand := lipgloss.Color("#D9CBB0")
	stone := lipgloss.Color("#8A8378")

	return Theme{
		Header:        lipgloss.NewStyle().Background(charcoal).Foreground(linen).Padding(0, 1),
		Status:        lipgloss.NewStyle().Background(sand).Foreground(charcoal).Padding(0, 1),
		PanelTitle:    lipgloss.NewStyle().Foreground(clay).Bold(true),
		PanelBorder:   lipgloss.NewStyle().Foreground(stone),
		PanelBody:     lipgloss.NewStyle(),
		EditorBorder:  lipgloss.NewStyle().Foreground(denim),
		OverlayTitle:  lipgloss.NewStyle().Foreground(denim).Bold(true),
		OverlayBorder: lipgloss.NewStyle().Foreground(clay),
		OverlayBody:   lipgloss.NewStyle().Background(linen).Foreground(charcoal),
		Accent:        lipgloss.NewStyle().Foreground(clay).Bold(true),
		Pass:          lipgloss.NewStyle().Foreground(olive).Bold(true),
		Fail:          lipgloss.NewStyle().Foreground(wine).Bold(true),
		Pending:       lipgloss.NewStyle().Foreground(clay),
		Muted:         lipgloss.NewStyle().Foreground(stone),
		Info:          lipgloss.NewStyle().Foreground(denim),
		Selected:      lipgloss.NewStyle().Foreground(linen).Background(denim),
		TableHeader:   lipgloss.NewStyle().Foreground(denim).Bold(true).Padding(0, 1),
		TableCell:     lipgloss.NewStyle().Padding(0, 1),
	}
}

// retroTerminalTheme is a phosphor green look that still reads on a
// monochrome display.
func retroTerminalTheme() Theme {
	phosphor := lipgloss.Color("#33FF66")
	dim := lipgloss.Color("#1E8C3A")
	black := lipgloss.Color("#050A05")
	amber := lipgloss.Color("#FFB000")

	return Theme{
		Header:        lipgloss.NewStyle().Background(phosphor).Foreground(black).Bold(true).Padding(0, 1),
		Status:        lipgloss.NewStyle().Foreground(phosphor).Padding(0, 1),
		PanelTitle:    lipgloss.NewStyle().Foreground(phosphor).Bold(true),
		PanelBorder:   lipgloss.NewStyle().Foreground(dim),
		PanelBody:     lipgloss.NewStyle().Foreground(phosphor),
		EditorBorder:  lipgloss.NewStyle().Foreground(phosphor),
		OverlayTitle:  lipgloss.NewStyle().Foreground(amber).Bold(true),
		OverlayBorder: lipgloss.NewStyle().Foreground(amber),
		OverlayBody:   lipgloss.NewStyle().Background(black).Foreground(phosphor),
		Accent:        lipgloss.NewStyle().Foreground(amber),
		Pass:          lipgloss.NewStyle().Foreground(phosphor).Bold(true).Underline(true),
		Fail:          lipgloss.NewStyle().Foreground(amber).Bold(true).Reverse(true),
		Pending:       lipgloss.NewStyle().Foreground(amber),
		Muted:         lipgloss.NewStyle().Foreground(dim),
		Info:          lipgloss.NewStyle().Foreground(phosphor),
		Selected:      lipgloss.NewStyle().Reverse(true).Bold(true),
		TableHeader:   lipgloss.NewStyle().Foreground(amber).Bold(true).Padding(0, 1),
		TableCell:     lipgloss.NewStyle().Foreground(phosphor).Padding(0, 1),
	}
}
