package ui

const (
	minCols = 80
	minRows = 24
)

// DetermineLayoutMode picks a layout for a cols x rows terminal. The wide
// layout keeps the exercise menu docked on the left.
func DetermineLayoutMode(cols, rows int) LayoutMode {
	if cols < minCols || rows < minRows {
		return LayoutTooSmall
	}
	if cols >= 110 && rows >= 28 {
		return LayoutWide
	}
	return LayoutMedium
}
