package cmd

import (
	"fmt"
	"os/exec"
	"runtime"

	"github.com/charmbracelet/lipgloss"
	"github.com/panorama-cli/panorama/color"
	"github.com/panorama-cli/panorama/constant"
	"github.com/panorama-cli/panorama/icon"
	"github.com/panorama-cli/panorama/style"
)

// missingDependency is an executable that could not be found.
type missingDependency struct {
	name   string
	binary string
}

func (m missingDependency) Error() string {
	return fmt.Sprintf("%s was not found (looked for %q)", m.name, m.binary)
}

// checkDependency looks binary up in PATH and prints install hints when it is missing.
func checkDependency(name, binary string) error {
	if _, err := exec.LookPath(binary); err != nil {
		printMissingDependency(name)
		return missingDependency{name: name, binary: binary}
	}
	return nil
}

func installHint(name string) string {
	switch runtime.GOOS {
	case constant.Darwin:
		return "brew install " + name
	case constant.Linux:
		return "sudo apt install " + name
	case constant.Windows:
		return "scoop install " + name
	default:
		return ""
	}
}

func printMissingDependency(name string) {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(color.HiRed).
		Padding(1, 2).
		Margin(1, 0)

	title := style.New().Bold(true).Foreground(color.HiRed).Render(fmt.Sprintf("%s Error: Missing Dependency", icon.Get(icon.Fail)))
	body := fmt.Sprintf("The required dependency '%s' was not found in your PATH.", name)

	suggestion := ""
	if hint := installHint(name); hint != "" {
		suggestion = fmt.Sprintf("\n\nTo install it, try running:\n  %s", style.New().Foreground(color.Orange).Bold(true).Render(hint))
	}

	fmt.Println(box.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			title,
			"\n",
			body,
			suggestion,
		),
	))
}
