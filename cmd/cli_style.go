/*
Copyright (c) YugabyteDB, Inc.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ruleWidth is the length of the thin rule under section titles.
const ruleWidth = 50

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true)

	ruleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("2")) // green

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("3")) // yellow
)

// printSection prints a bold title and a thin rule, then the body lines indented by 2 spaces.
func printSection(w io.Writer, title string, bodyLines ...string) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  "+titleStyle.Render(title))
	fmt.Fprintln(w, "  "+ruleStyle.Render(strings.Repeat("─", ruleWidth)))
	for _, line := range bodyLines {
		if line == "" {
			fmt.Fprintln(w)
		} else {
			fmt.Fprintln(w, "  "+line)
		}
	}
}

// displayPath returns a ./ relative path when absPath is under the current directory.
func displayPath(absPath string) string {
	cwd, err := os.Getwd()
	if err != nil {
		return absPath
	}
	abs, err := filepath.Abs(absPath)
	if err != nil {
		return absPath
	}
	rel, err := filepath.Rel(cwd, abs)
	if err != nil || strings.HasPrefix(rel, "..") {
		return abs
	}
	return "./" + rel
}

func successLine(text string) string {
	return successStyle.Render("✓") + " " + text
}

func warnLine(text string) string {
	return warnStyle.Render("!") + " " + text
}

// formatKeyValue pads key to keyWidth visible columns so styled keys still align.
func formatKeyValue(key, value string, keyWidth int) string {
	pad := keyWidth - lipgloss.Width(key)
	if pad < 0 {
		pad = 0
	}
	return key + strings.Repeat(" ", pad) + " " + value
}
