package ui

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Confirm shows a warning box and asks a yes/no question.
// Only "y" or "yes" (any case) confirms; EOF or anything else declines.
func (p *Printer) Confirm(in io.Reader, title string, warnings []string, question string) bool {
	result := NewWarningResult(title, nil).SetWidth(p.width)
	for _, w := range warnings {
		result.AddDetail("Note", w)
	}
	p.Println(result.Render())

	p.Print(WarningTitleStyle.Render(question + " [y/N]: "))

	reader := bufio.NewReader(in)
	input, err := reader.ReadString('\n')
	if err != nil && input == "" {
		p.Newline()
		return false
	}

	switch strings.ToLower(strings.TrimSpace(input)) {
	case "y", "yes":
		return true
	}

	p.Println(MutedStyle.Render(fmt.Sprintf("  %s cancelled.", title)))
	return false
}
