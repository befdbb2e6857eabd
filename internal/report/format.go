// Package report renders assistant replies as plain text. Every function is
// pure: output depends only on the arguments.
package report

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	labelWidth = 20
	valueWidth = 8
)

// Row is one line of a two-column table.
type Row struct {
	Label string
	Value string
}

// Table renders rows in a box-drawing frame. Values longer than the value
// column are kept whole and push the right border out.
func Table(rows []Row) string {
	var b strings.Builder
	b.WriteString("┌" + strings.Repeat("─", labelWidth+1) + "┬" + strings.Repeat("─", valueWidth+2) + "┐\n")
	for _, r := range rows {
		fmt.Fprintf(&b, "│ %s│ %s │\n", PadEnd(r.Label, labelWidth), PadEnd(r.Value, valueWidth))
	}
	b.WriteString("└" + strings.Repeat("─", labelWidth+1) + "┴" + strings.Repeat("─", valueWidth+2) + "┘\n")
	return b.String()
}

// PadEnd right-pads s with spaces to width runes.
func PadEnd(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}

// Currency renders an amount as "RWF 1,234", rounded to whole francs.
func Currency(amount float64) string {
	return "RWF " + groupThousands(int64(math.Round(amount)))
}

func groupThousands(n int64) string {
	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}
	digits := strconv.FormatInt(n, 10)
	if len(digits) <= 3 {
		return sign + digits
	}

	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return sign + b.String()
}

// NumberedList renders "1. a\n2. b".
func NumberedList(items []string) string {
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = fmt.Sprintf("%d. %s", i+1, item)
	}
	return strings.Join(lines, "\n")
}

// BulletList renders "• a\n• b".
func BulletList(items []string) string {
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = "• " + item
	}
	return strings.Join(lines, "\n")
}

// SuggestedActions renders a heading line followed by a numbered list.
func SuggestedActions(heading string, items []string) string {
	return heading + "\n" + NumberedList(items)
}

// Date renders t the way the admin console shows dates, e.g. 3/31/2025.
func Date(t time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	return t.Format("1/2/2006")
}

// DaysUntil counts whole days from now to t, rounding up.
func DaysUntil(t, now time.Time) int {
	return int(math.Ceil(t.Sub(now).Hours() / 24))
}

func percent(count, total int) int {
	if total < 1 {
		total = 1
	}
	return int(math.Round(float64(count) / float64(total) * 100))
}
