package ui

import (
	"fmt"
	"strings"
)

// RunErrorCount and RunWarningCount track errors/warnings during a run.
var RunErrorCount int
var RunWarningCount int

// PrintSuccess prints a success message.
func PrintSuccess(msg string) {
	fmt.Printf("%s%s%s %s\n", ColorGreen, SymbolCheck, ColorReset, msg)
}

// PrintError prints an error message and increments the error counter.
func PrintError(msg string) {
	RunErrorCount++
	fmt.Printf("%s%s%s %s\n", ColorRed, SymbolCross, ColorReset, msg)
}

// PrintInfo prints an info message.
func PrintInfo(msg string) {
	fmt.Printf("%s%s%s %s\n", ColorBlue, SymbolInfo, ColorReset, msg)
}

// PrintWarning prints a warning message and increments the warning counter.
func PrintWarning(msg string) {
	RunWarningCount++
	fmt.Printf("%s%s%s %s\n", ColorYellow, SymbolWarning, ColorReset, msg)
}

// PrintUpload prints an upload progress message.
func PrintUpload(msg string) {
	fmt.Printf("%s%s%s %s\n", ColorCyan, SymbolUpload, ColorReset, msg)
}

// PrintHeader prints a bold underlined section header.
func PrintHeader(title string) {
	fmt.Printf("\n%s%s%s\n%s\n", ColorBold, title, ColorReset, strings.Repeat("─", len([]rune(title))))
}

// PrintRename prints an old → new name pair.
func PrintRename(from, to string) {
	fmt.Printf("  %s %s%s%s %s\n", from, ColorCyan, SymbolArrow, ColorReset, to)
}
