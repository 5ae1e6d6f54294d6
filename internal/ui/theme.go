package ui

import (
	"os"
	"strings"
)

// ANSI color codes - exported for use across packages.
var (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[91m"
	ColorGreen  = "\033[92m"
	ColorYellow = "\033[93m"
	ColorBlue   = "\033[94m"
	ColorCyan   = "\033[96m"
	ColorBold   = "\033[1m"
)

// Unicode symbols
var (
	SymbolCheck   = "✓"
	SymbolCross   = "✗"
	SymbolArrow   = "→"
	SymbolUpload  = "⬆"
	SymbolInfo    = "ℹ"
	SymbolWarning = "⚠"
)

func init() {
	if os.Getenv("NO_COLOR") != "" || strings.EqualFold(os.Getenv("TERM"), "dumb") {
		DisableColor()
	}
}

// DisableColor blanks every color code for plain-text output.
func DisableColor() {
	ColorReset = ""
	ColorRed = ""
	ColorGreen = ""
	ColorYellow = ""
	ColorBlue = ""
	ColorCyan = ""
	ColorBold = ""
}
