// Package diff computes line diffs between two versions of a file.
package diff

import (
	"bytes"
	"fmt"
)

// Line is one line of a diff.
type Line struct {
	Type    LineType
	Content string
	// OldNum and NewNum are 1-based; zero when the line is absent on that side.
	OldNum int
	NewNum int
}

// LineType indicates whether a line was added, removed, or is context
type LineType int

const (
	Context LineType = iota
	Addition
	Deletion
)

// Stats counts changed lines.
type Stats struct {
	Additions int
	Deletions int
	Changes   int
}

// Result contains the complete diff information
type Result struct {
	Hunks []Hunk
	Stats Stats
}

// Hunk is a run of changes with its surrounding context.
type Hunk struct {
	OldStart int
	OldLines int
	NewStart int
	NewLines int
	Lines    []Line
}

// Engine computes LCS line diffs.
type Engine struct {
	contextLines int
}

// NewEngine creates a new diff engine with specified context lines
func NewEngine(contextLines int) *Engine {
	if contextLines < 0 {
		contextLines = 0
	}
	return &Engine{
		contextLines: contextLines,
	}
}

// Diff generates a line-by-line diff between two contents
func (e *Engine) Diff(oldContent, newContent []byte) *Result {
	oldLines := splitLines(oldContent)
	newLines := splitLines(newContent)

	script, pos := e.editScript(oldLines, newLines)
	result := &Result{Hunks: e.group(script, pos)}
	for _, l := range script {
		switch l.Type {
		case Addition:
			result.Stats.Additions++
		case Deletion:
			result.Stats.Deletions++
		}
	}
	result.Stats.Changes = result.Stats.Additions + result.Stats.Deletions
	return result
}

func splitLines(content []byte) [][]byte {
	if len(content) == 0 {
		return nil
	}
	return bytes.Split(bytes.TrimSuffix(content, []byte{'\n'}), []byte{'\n'})
}

// position records how many old and new lines precede a script entry.
type position struct{ old, new int }

// editScript walks an LCS suffix table forward, preferring deletions
// before additions.
func (e *Engine) editScript(oldLines, newLines [][]byte) ([]Line, []position) {
	n, m := len(oldLines), len(newLines)
	lcs := make([][]int, n+1)
	for i := range lcs {
		lcs[i] = make([]int, m+1)
	}
	for i := n - 1; i >= 0; i-- {
		for j := m - 1; j >= 0; j-- {
			if bytes.Equal(oldLines[i], newLines[j]) {
				lcs[i][j] = lcs[i+1][j+1] + 1
			} else {
				lcs[i][j] = max(lcs[i+1][j], lcs[i][j+1])
			}
		}
	}

	var script []Line
	var pos []position
	i, j := 0, 0
	for i < n || j < m {
		pos = append(pos, position{old: i, new: j})
		switch {
		case i < n && j < m && bytes.Equal(oldLines[i], newLines[j]):
			script = append(script, Line{Type: Context, Content: string(oldLines[i]), OldNum: i + 1, NewNum: j + 1})
			i++
			j++
		case i < n && (j == m || lcs[i+1][j] >= lcs[i][j+1]):
			script = append(script, Line{Type: Deletion, Content: string(oldLines[i]), OldNum: i + 1})
			i++
		default:
			script = append(script, Line{Type: Addition, Content: string(newLines[j]), NewNum: j + 1})
			j++
		}
	}
	return script, pos
}

// group cuts the script into hunks. Changes separated by at most twice the
// context length share a hunk.
func (e *Engine) group(script []Line, pos []position) []Hunk {
	ctx := e.contextLines
	var hunks []Hunk
	for k := 0; k < len(script); {
		if script[k].Type == Context {
			k++
			continue
		}
		start := max(0, k-ctx)
		end := k
		for end < len(script) {
			if script[end].Type != Context {
				end++
				continue
			}
			run := end
			for run < len(script) && script[run].Type == Context {
				run++
			}
			if run == len(script) || run-end > 2*ctx {
				break
			}
			end = run
		}
		stop := min(len(script), end+ctx)
		hunks = append(hunks, newHunk(script[start:stop], pos[start]))
		k = stop
	}
	return hunks
}

func newHunk(lines []Line, at position) Hunk {
	h := Hunk{Lines: append([]Line(nil), lines...)}
	for _, l := range lines {
		if l.Type != Addition {
			h.OldLines++
		}
		if l.Type != Deletion {
			h.NewLines++
		}
	}
	h.OldStart = at.old
	if h.OldLines > 0 {
		h.OldStart++
	}
	h.NewStart = at.new
	if h.NewLines > 0 {
		h.NewStart++
	}
	return h
}

// Empty reports whether the two sides were identical.
func (r *Result) Empty() bool { return len(r.Hunks) == 0 }

// Format returns a string representation of the diff
func (r *Result) Format() string {
	var buf bytes.Buffer

	for _, hunk := range r.Hunks {
		fmt.Fprintf(&buf, "@@ -%d,%d +%d,%d @@\n",
			hunk.OldStart, hunk.OldLines,
			hunk.NewStart, hunk.NewLines)

		for _, line := range hunk.Lines {
			switch line.Type {
			case Addition:
				buf.WriteString("+ ")
			case Deletion:
				buf.WriteString("- ")
			case Context:
				buf.WriteString("  ")
			}
			buf.WriteString(line.Content)
			buf.WriteString("\n")
		}
	}

	return buf.String()
}
