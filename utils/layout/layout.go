package layout

import (
	"math"
	"sort"
	"strings"
)

// DefaultTolerance is the vertical distance, in PDF units, within which two
// fragments are considered to sit on the same row.
const DefaultTolerance = 3.0

// TextToken is a positioned text fragment. The origin is the bottom-left
// corner of the page, so larger Y values are higher up.
type TextToken struct {
	Text   string  `json:"text"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Page holds the tokens of a single page, numbered from 1.
type Page struct {
	Number int         `json:"number"`
	Tokens []TextToken `json:"tokens"`
}

// Document is the output of a token source.
type Document struct {
	Pages []Page `json:"pages"`
}

// FirstPage returns page 1, or false when the document has no pages.
func (d Document) FirstPage() (Page, bool) {
	if len(d.Pages) == 0 {
		return Page{}, false
	}
	return d.Pages[0], true
}

// LineGroup is a visual row: tokens sharing a vertical band, left to right.
type LineGroup struct {
	Y      float64     `json:"y"`
	Tokens []TextToken `json:"tokens"`
}

// Text joins the row's tokens with single spaces.
func (g LineGroup) Text() string {
	parts := make([]string, 0, len(g.Tokens))
	for _, t := range g.Tokens {
		parts = append(parts, t.Text)
	}
	return strings.Join(parts, " ")
}

// GroupLines clusters tokens into rows in reading order (top to bottom).
//
// A new row starts whenever a token's Y differs from the row anchor by more
// than tolerance. The anchor is the Y of the row's first token and never moves,
// so a slowly drifting baseline cannot chain unrelated rows together.
func GroupLines(tokens []TextToken, tolerance float64) []LineGroup {
	if len(tokens) == 0 {
		return nil
	}
	if tolerance < 0 {
		tolerance = 0
	}

	sorted := make([]TextToken, len(tokens))
	copy(sorted, tokens)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Y != sorted[j].Y {
			return sorted[i].Y > sorted[j].Y
		}
		return sorted[i].X < sorted[j].X
	})

	var groups []LineGroup
	current := LineGroup{Y: sorted[0].Y, Tokens: []TextToken{sorted[0]}}
	for _, tok := range sorted[1:] {
		if math.Abs(tok.Y-current.Y) > tolerance {
			groups = append(groups, current.ordered())
			current = LineGroup{Y: tok.Y}
		}
		current.Tokens = append(current.Tokens, tok)
	}
	groups = append(groups, current.ordered())

	return groups
}

// ordered returns the group with its tokens sorted left to right.
func (g LineGroup) ordered() LineGroup {
	sort.SliceStable(g.Tokens, func(i, j int) bool {
		return g.Tokens[i].X < g.Tokens[j].X
	})
	return g
}

// LinesToText renders groups one per line, mostly for debugging extraction.
func LinesToText(groups []LineGroup) string {
	lines := make([]string, 0, len(groups))
	for _, g := range groups {
		lines = append(lines, g.Text())
	}
	return strings.Join(lines, "\n")
}
