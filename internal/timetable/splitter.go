package timetable

import (
	"iter"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// hrPattern matches the horizontal-rule separator between schedule blocks
// inside one cell, in any of its authored spellings (<hr>, <HR/>, <hr />).
var hrPattern = regexp.MustCompile(`(?i)<hr\s*/?>`)

// Blocks splits one cell's inner markup into its schedule blocks. The sequence
// is lazy and restartable; whitespace-only fragments are dropped and authored
// top-to-bottom order is preserved.
func Blocks(cellHTML string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, fragment := range hrPattern.Split(cellHTML, -1) {
			fragment = strings.TrimSpace(fragment)
			if fragment == "" {
				continue
			}
			if !yield(fragment) {
				return
			}
		}
	}
}

// blockLines renders a block fragment into its visible text lines: every text
// node stripped of surrounding whitespace and wrapping quotes, blanks removed.
func blockLines(fragment string) []string {
	root, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return nil
	}

	var lines []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			line := strings.TrimSpace(n.Data)
			line = strings.TrimSpace(strings.Trim(line, `"`))
			if line != "" {
				lines = append(lines, line)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	return lines
}
