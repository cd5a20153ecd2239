package ui

// Color constants for consistent styling
const (
	ColorBrightCyan  = "14"
	ColorRed         = "9"
	ColorYellow      = "11"
	ColorGreen       = "10"
	ColorGray        = "7"
	ColorBrightGray  = "8"
	ColorBrightWhite = "15"
)

const (
	// TableMaxWidth caps the rendered table width on wide terminals.
	TableMaxWidth = 160

	// fallbackWidth is used when stdout is not a terminal.
	fallbackWidth = 120
)
