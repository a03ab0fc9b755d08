package complete

import (
	"fmt"
	"io"

	"github.com/mattn/go-runewidth"
)

const columnPad = 4

// Grid writes suggestions as a left-aligned, row-major grid sized to
// the terminal width. Column width is the widest name plus padding;
// names are measured in terminal cells so wide runes line up. A newline
// follows every full row and the final partial row.
func Grid(w io.Writer, matches []Suggestion, termWidth int) {
	if len(matches) == 0 {
		return
	}

	maxName := 0
	for _, m := range matches {
		if cells := runewidth.StringWidth(m.Name); cells > maxName {
			maxName = cells
		}
	}
	colWidth := maxName + columnPad
	cols := termWidth / colWidth
	if cols < 1 {
		cols = 1
	}

	for i, m := range matches {
		fmt.Fprint(w, runewidth.FillRight(m.Name, colWidth))
		if (i+1)%cols == 0 {
			fmt.Fprintln(w)
		}
	}
	if len(matches)%cols != 0 {
		fmt.Fprintln(w)
	}
}
