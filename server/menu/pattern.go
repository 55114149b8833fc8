package menu

import "strings"

const (
	// RowWidth is the number of slots in a row of a standard chest menu.
	RowWidth = 9
	// DefaultMarker is the pattern token that marks a slot to be painted.
	DefaultMarker = "X"
	// DefaultSeparator separates the tokens of a pattern row.
	DefaultSeparator = " "
)

// Pattern describes a set of slots as rows of text. Each row is split into
// tokens by Separator and every token equal to Marker marks the slot at that
// row and column. Other tokens leave their slot untouched. A run of
// separators counts as one, except that a row starting with separators has an
// empty token in its first column, so " X" and "  X" both mark column 1.
//
//	menu.Rows(
//		"X X X X X X X X X",
//		"X _ _ _ _ _ _ _ X",
//		"X X X X X X X X X",
//	)
type Pattern struct {
	Rows      []string
	Marker    string
	Separator string
}

// Rows returns a Pattern of the rows passed using the default marker and
// separator.
func Rows(rows ...string) Pattern {
	return Pattern{Rows: rows, Marker: DefaultMarker, Separator: DefaultSeparator}
}

// WithMarker returns a copy of the pattern using marker as marker token.
func (p Pattern) WithMarker(marker string) Pattern {
	p.Marker = marker
	return p
}

// WithSeparator returns a copy of the pattern splitting rows on sep.
func (p Pattern) WithSeparator(sep string) Pattern {
	p.Separator = sep
	return p
}

// Paint is the outcome of applying a Pattern to a grid. Rows and marked
// columns outside of the grid are not painted and are counted instead.
type Paint struct {
	// Painted holds the slots that were painted, in row-major order.
	Painted []int
	// SkippedRows is the number of pattern rows below the last row of the
	// grid.
	SkippedRows int
	// SkippedColumns is the number of marker tokens right of the last column
	// of the grid.
	SkippedColumns int
}

// Clipped reports if any part of the pattern fell outside of the grid.
func (p Paint) Clipped() bool {
	return p.SkippedRows > 0 || p.SkippedColumns > 0
}

// Cells computes the slots marked by the pattern on a grid of rows rows of
// width columns each. A slot is computed as column + row*width.
func (p Pattern) Cells(rows, width int) Paint {
	marker, sep := p.Marker, p.Separator
	if marker == "" {
		marker = DefaultMarker
	}
	if sep == "" {
		sep = DefaultSeparator
	}

	var res Paint
	for row, line := range p.Rows {
		if row >= rows {
			res.SkippedRows = len(p.Rows) - row
			break
		}
		for col, token := range tokens(line, sep) {
			if token != marker {
				continue
			}
			if col >= width {
				res.SkippedColumns++
				continue
			}
			res.Painted = append(res.Painted, col+row*width)
		}
	}
	return res
}

// tokens splits line by sep, dropping the empty tokens left by consecutive
// separators. An empty first token is kept.
func tokens(line, sep string) []string {
	parts := strings.Split(line, sep)
	out := parts[:1]
	for _, part := range parts[1:] {
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
