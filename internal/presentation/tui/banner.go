package tui

import (
	"fmt"

	"github.com/muesli/termenv"

	"github.com/switchyard-ai/switchyard"
)

// PrintBanner outputs the ASCII art banner shown when an interactive chat
// starts on a terminal.
func PrintBanner() {
	p := termenv.ColorProfile()
	// Amber-to-red gradient, one color per row.
	lines := []struct {
		text  string
		color string
	}{
		{`               _ _       _                         _`, "#fbbf24"},
		{`  _____      _(_) |_ ___| |__  _   _  __ _ _ __ __| |`, "#f59e0b"},
		{` / __\ \ /\ / / | __/ __| '_ \| | | |/ _' | '__/ _' |`, "#f97316"},
		{` \__ \\ V  V /| | || (__| | | | |_| | (_| | | | (_| |`, "#ea580c"},
		{` |___/ \_/\_/ |_|\__\___|_| |_|\__, |\__,_|_|  \__,_|`, "#dc2626"},
		{`                               |___/`, "#b91c1c"},
	}

	fmt.Println()
	for _, line := range lines {
		fmt.Println(termenv.String(line.text).Foreground(p.Color(line.color)))
	}
	fmt.Printf("  insurance support desk %s\n\n", switchyard.Version)
}
