package tui

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// truncateEnd shortens s to at most limit terminal cells, appending an
// ellipsis if truncation occurs.
func truncateEnd(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= limit {
		return s
	}
	if limit <= 1 {
		return "…"
	}
	return runewidth.Truncate(s, limit, "…")
}

// truncateMiddle shortens s to at most limit cells by keeping both ends.
// Used for links, where the host and the last path segment carry meaning.
func truncateMiddle(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= limit {
		return s
	}
	if limit <= 1 {
		return "…"
	}
	keep := limit - 1
	left := keep / 2
	right := keep - left

	r := []rune(s)
	tail := make([]rune, 0, right)
	w := 0
	for i := len(r) - 1; i >= 0; i-- {
		cw := runewidth.RuneWidth(r[i])
		if w+cw > right {
			break
		}
		w += cw
		tail = append([]rune{r[i]}, tail...)
	}
	return runewidth.Truncate(s, left, "") + "…" + string(tail)
}

// oneLine collapses whitespace runs so backend text fits on a card line.
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
