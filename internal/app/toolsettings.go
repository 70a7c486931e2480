package app

// ViewMode is the mode in which a data tool renders its content.
type ViewMode uint

const (
	ViewTable ViewMode = iota
	ViewList
)

func (m ViewMode) String() string {
	switch m {
	case ViewTable:
		return "table"
	case ViewList:
		return "list"
	}
	return "?"
}

// TextColorMode defines how the text of data cells is colored.
type TextColorMode uint

const (
	// Default text color of the theme.
	TextColorDefault TextColorMode = iota
	// Preferred color of the column's item.
	TextColorPreferredItem
	// Empty values are shown subdued and positive values highlighted.
	TextColorImportance
)

func (m TextColorMode) String() string {
	switch m {
	case TextColorDefault:
		return "default"
	case TextColorPreferredItem:
		return "preferred-item"
	case TextColorImportance:
		return "importance"
	}
	return "?"
}

// ToolSettings is the bundle of rendering preferences of a data tool.
type ToolSettings struct {
	ViewMode             ViewMode
	TextColorMode        TextColorMode
	AutoSizeEqualColumns bool
}
