package common

import (
	"fmt"
	"strings"
)

// Report widths used by the CLIs
const (
	DefaultWidth = 80
	WideWidth    = 100
)

const fieldLabelWidth = 19

func rule(char string, width int) string {
	return strings.Repeat(char, width)
}

func PrintSeparator(char string, width int) {
	fmt.Println(rule(char, width))
}

// PrintHeader opens a report with the title between two rules
func PrintHeader(title string, width int) {
	fmt.Printf("\n%s\n%s\n%s\n", rule("=", width), title, rule("=", width))
}

// PrintFooter closes a report, leaving a blank line after it
func PrintFooter(message string, width int) {
	fmt.Printf("\n%s\n%s\n%s\n\n", rule("=", width), message, rule("=", width))
}

// PrintField prints one "Label:  value" line with values aligned in a column
func PrintField(label, format string, args ...any) {
	fmt.Printf("%-*s%s\n", fieldLabelWidth, label+":", fmt.Sprintf(format, args...))
}

// PrintBoxSeparator splits sub-sections of a tree listing
func PrintBoxSeparator(width int) {
	fmt.Println("├" + rule("─", width))
}

// BoxPrefix starts one tree item; the last item closes the branch
func BoxPrefix(isLast bool) string {
	if isLast {
		return "└  "
	}
	return "│  "
}
