package tracking

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
)

// Results are the results of consecutive frames, in frame order.
type Results []TrackResult

// Present returns how many frames reported the object.
func (rs Results) Present() int {
	n := 0
	for _, r := range rs {
		if r.ObjectPresent {
			n++
		}
	}
	return n
}

// String prints out a table of each frame, with columns of frame number,
// presence, window, score and spread.
func (rs Results) String() string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Frame", "Present", "Window", "Score", "Spread"})
	for i, r := range rs {
		window := ""
		if r.ObjectPresent {
			window = r.Window().String()
		}
		t.AppendRow([]interface{}{
			fmt.Sprintf("%05d", i),
			r.ObjectPresent,
			window,
			fmt.Sprintf("%.1f", r.Score),
			fmt.Sprintf("%.1f", r.Spread),
		})
	}
	return t.Render()
}
