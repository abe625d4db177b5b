package presentation

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// DiffOp classifies one line of a markup diff.
type DiffOp int

const (
	DiffEqual DiffOp = iota
	DiffDeleted
	DiffAdded
)

// DiffLine is one line of a line-level diff.
type DiffLine struct {
	Op   DiffOp
	Text string
}

// MarkupDiff compares two SVG documents line by line. Single-line markup is
// split between adjacent tags first so a changed path does not mark the
// whole document as replaced.
func MarkupDiff(oldMarkup, newMarkup string) []DiffLine {
	oldText := splitTags(oldMarkup)
	newText := splitTags(newMarkup)

	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(oldText, newText)
	diffs := dmp.DiffMain(a, b, false)
	diffs = dmp.DiffCharsToLines(diffs, lines)

	var out []DiffLine
	for _, d := range diffs {
		op := DiffEqual
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			op = DiffDeleted
		case diffmatchpatch.DiffInsert:
			op = DiffAdded
		}
		for _, line := range strings.Split(strings.TrimSuffix(d.Text, "\n"), "\n") {
			out = append(out, DiffLine{Op: op, Text: line})
		}
	}
	return out
}

// Changed reports whether any line differs.
func Changed(lines []DiffLine) bool {
	for _, l := range lines {
		if l.Op != DiffEqual {
			return true
		}
	}
	return false
}

func splitTags(markup string) string {
	markup = strings.TrimSpace(markup)
	if markup == "" {
		return ""
	}
	if !strings.Contains(markup, "\n") {
		markup = strings.ReplaceAll(markup, "><", ">\n<")
	}
	return markup + "\n"
}
