package surface

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"
)

// TerminalRenderer renders RunSummary as colored terminal output.
type TerminalRenderer struct {
	// NoColor disables ANSI colors. The NO_COLOR environment variable has
	// the same effect.
	NoColor bool
}

func (r *TerminalRenderer) noColor() bool {
	if r.NoColor {
		return true
	}
	_, ok := os.LookupEnv("NO_COLOR")
	return ok
}

func (r *TerminalRenderer) paint(attrs ...color.Attribute) func(a ...interface{}) string {
	c := color.New(attrs...)
	if r.noColor() {
		c.DisableColor()
	} else {
		c.EnableColor()
	}
	return c.SprintFunc()
}

func (r *TerminalRenderer) gradeColor(grade string) func(a ...interface{}) string {
	switch grade {
	case "A", "B":
		return r.paint(color.FgGreen)
	case "C":
		return r.paint(color.FgYellow)
	case "D", "F":
		return r.paint(color.FgRed)
	default:
		return fmt.Sprint
	}
}

// gradeOrder lists letters best first.
var gradeOrder = []string{"A", "B", "C", "D", "F"}

func (r *TerminalRenderer) Render(w io.Writer, summary *RunSummary) error {
	bold := r.paint(color.Bold)
	dim := r.paint(color.Faint)
	green := r.paint(color.FgGreen)
	red := r.paint(color.FgRed)

	status := green("ok")
	if summary.Failed() {
		status = red("failed")
	}
	fmt.Fprintf(w, "%s\n\n", bold(fmt.Sprintf("benchgrade run %s: %s in %s",
		summary.RunID, status, summary.Duration.Round(time.Millisecond))))

	// Stages
	fmt.Fprintln(w, "Stages:")
	for _, st := range summary.Stages {
		mark := green("✓")
		if st.Error != "" {
			mark = red("✗")
		}
		fmt.Fprintf(w, "  %s %-34s %s\n", mark, st.Name, dim(st.Duration.Round(time.Millisecond).String()))
		if st.Error != "" {
			for _, line := range wrapText(st.Error, 70) {
				fmt.Fprintf(w, "      %s\n", red(line))
			}
			continue
		}
		for _, out := range st.Outputs {
			fmt.Fprintf(w, "      %s\n", dim(out))
		}
	}
	fmt.Fprintln(w)

	// Grades
	if len(summary.GradeDistribution) > 0 {
		fmt.Fprintf(w, "Overall grades (%d buildings):\n", summary.Buildings)
		letters := make([]string, 0, len(summary.GradeDistribution))
		for _, g := range gradeOrder {
			if _, ok := summary.GradeDistribution[g]; ok {
				letters = append(letters, g)
			}
		}
		var other []string
		for g := range summary.GradeDistribution {
			if !contains(gradeOrder, g) {
				other = append(other, g)
			}
		}
		sort.Strings(other)
		letters = append(letters, other...)

		for _, g := range letters {
			fmt.Fprintf(w, "  %s %d\n", r.gradeColor(g)(g), summary.GradeDistribution[g])
		}
		fmt.Fprintln(w)
	}

	// Warnings
	if len(summary.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range summary.Warnings {
			lines := wrapText(warn, 70)
			for i, line := range lines {
				prefix := "    "
				if i == 0 {
					prefix = "  • "
				}
				fmt.Fprintf(w, "%s%s\n", prefix, line)
			}
		}
		fmt.Fprintln(w)
	}

	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// wrapText wraps a string at the given width, returning lines.
func wrapText(s string, width int) []string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return nil
	}

	var lines []string
	current := words[0]

	for _, word := range words[1:] {
		if len(current)+1+len(word) > width {
			lines = append(lines, current)
			current = word
		} else {
			current += " " + word
		}
	}
	lines = append(lines, current)
	return lines
}
