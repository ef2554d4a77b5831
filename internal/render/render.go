// Package render formats repository state for terminals and text/plain
// responses.
package render

import (
	"fmt"
	"io"
	"strings"

	"svc/internal/change"
	"svc/internal/diff"
	"svc/internal/graph"
	"svc/internal/journal"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/gosuri/uitable"
)

const rule = "====================================="

// Printer writes to one writer. Write errors are ignored, as with fmt.Print.
type Printer struct {
	w       io.Writer
	added   *color.Color
	removed *color.Color
	changed *color.Color
	header  *color.Color
}

// New returns a Printer. With colored false no escape codes are written.
func New(w io.Writer, colored bool) *Printer {
	p := &Printer{
		w:       w,
		added:   color.New(color.FgGreen),
		removed: color.New(color.FgRed),
		changed: color.New(color.FgYellow),
		header:  color.New(color.FgCyan),
	}
	for _, c := range []*color.Color{p.added, p.removed, p.changed, p.header} {
		if colored {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p *Printer) kindColor(k change.Kind) *color.Color {
	switch k {
	case change.Add:
		return p.added
	case change.Remove:
		return p.removed
	default:
		return p.changed
	}
}

// Commit prints a sealed commit, its actions and its tracked files. A nil
// view prints "Invalid commit id".
func (p *Printer) Commit(v *graph.View) {
	if v == nil || !v.Sealed {
		fmt.Fprintln(p.w, "Invalid commit id")
		return
	}
	fmt.Fprintf(p.w, "%s [%s]: %s\n", p.header.Sprint(v.ID), v.Branch, v.Message)
	for _, a := range v.Actions {
		c := p.kindColor(a.Kind).SprintFunc()
		if a.Kind == change.Modify {
			fmt.Fprintf(p.w, "    %s %s [%10d -> %10d]\n", c(a.Kind.Symbol()), a.Name, a.OldFingerprint, a.Fingerprint)
			continue
		}
		fmt.Fprintf(p.w, "    %s %s\n", c(a.Kind.Symbol()), a.Name)
	}
	fmt.Fprintln(p.w)
	fmt.Fprintf(p.w, "    Tracked files (%d):\n", len(v.Files))
	for _, f := range v.Files {
		fmt.Fprintf(p.w, "    [%10d] %s\n", f.Fingerprint, f.Name)
	}
}

// Graph dumps every node in the order given, normally a depth-first walk
// from the root. Open nodes print null for id and message.
func (p *Printer) Graph(nodes []graph.View) {
	fmt.Fprintln(p.w, rule)
	for _, v := range nodes {
		id, msg := "null", "null"
		if v.Sealed {
			id, msg = v.ID, v.Message
		}
		fmt.Fprintf(p.w, "Commit[%s]: %s\n", id, msg)
		fmt.Fprintf(p.w, "branch: %s\n", v.Branch)
		for i, f := range v.Files {
			fmt.Fprintf(p.w, "\tFile[%d]: [Hash:%04d] %s\n", i, f.Fingerprint, f.Name)
		}
		for i, a := range v.Actions {
			fmt.Fprintf(p.w, "\tAct[%d]: %s %s\n", i, a.Kind.Symbol(), a.Name)
		}
		fmt.Fprintln(p.w)
	}
	fmt.Fprintln(p.w)
}

// Branches lists branch names and marks the current one.
func (p *Printer) Branches(names []string, current string) {
	table := uitable.New()
	table.Separator = " "
	for _, name := range names {
		marker := " "
		if name == current {
			marker = p.added.Sprint("*")
		}
		table.AddRow(marker, name)
	}
	fmt.Fprintln(p.w, table)
}

// Files prints a tracked-file table.
func (p *Printer) Files(files []graph.FileView) {
	if len(files) == 0 {
		fmt.Fprintln(p.w, "no tracked files")
		return
	}
	table := uitable.New()
	table.MaxColWidth = 60
	table.AddRow("NAME", "FINGERPRINT", "SIZE")
	for _, f := range files {
		size := "-"
		if f.Loaded {
			size = humanize.Bytes(uint64(f.Size))
		}
		table.AddRow(f.Name, f.Fingerprint, size)
	}
	fmt.Fprintln(p.w, table)
}

// Log prints journal records, oldest first.
func (p *Printer) Log(records []journal.Record) {
	if len(records) == 0 {
		fmt.Fprintln(p.w, "no commits")
		return
	}
	table := uitable.New()
	table.MaxColWidth = 50
	table.AddRow("ID", "BRANCH", "ACTIONS", "WHEN", "MESSAGE")
	for _, r := range records {
		table.AddRow(
			p.header.Sprint(r.ID),
			r.Branch,
			summarize(r.Actions),
			humanize.Time(r.CreatedAt),
			r.Message,
		)
	}
	fmt.Fprintln(p.w, table)
}

func summarize(actions change.Set) string {
	return fmt.Sprintf("+%d -%d /%d",
		actions.Count(change.Add),
		actions.Count(change.Remove),
		actions.Count(change.Modify),
	)
}

// Diff prints a line diff of name.
func (p *Printer) Diff(name string, r *diff.Result) {
	fmt.Fprintf(p.w, "%s\n", p.header.Sprintf("--- %s", name))
	if r.Empty() {
		fmt.Fprintln(p.w, "(no line changes)")
		return
	}
	for _, line := range strings.Split(strings.TrimSuffix(r.Format(), "\n"), "\n") {
		switch {
		case strings.HasPrefix(line, "@@"):
			fmt.Fprintln(p.w, p.header.Sprint(line))
		case strings.HasPrefix(line, "+"):
			fmt.Fprintln(p.w, p.added.Sprint(line))
		case strings.HasPrefix(line, "-"):
			fmt.Fprintln(p.w, p.removed.Sprint(line))
		default:
			fmt.Fprintln(p.w, line)
		}
	}
	fmt.Fprintf(p.w, "%d additions, %d deletions\n", r.Stats.Additions, r.Stats.Deletions)
}
