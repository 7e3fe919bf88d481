// Package report renders aggregation results as bar charts, either as
// images through gonum/plot or as labelled text for a terminal.
package report

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

const (
	barRune      = '█'
	defaultWidth = 40
)

// Bar is one labelled value in a chart.
type Bar struct {
	Label string
	Value int
}

// Chart is a titled horizontal bar chart.
type Chart struct {
	Title  string
	XLabel string // names the label column, e.g. "Religion"
	YLabel string // names the value column, e.g. "Count"
	Bars   []Bar
	Width  int // longest bar in runes; defaultWidth when zero
}

// Render writes c to w. Bars are scaled so the largest value spans Width;
// any non-zero value gets at least one rune.
func (c Chart) Render(w io.Writer) error {
	width := c.Width
	if width <= 0 {
		width = defaultWidth
	}

	var b strings.Builder
	b.WriteString(c.Title)
	b.WriteByte('\n')
	b.WriteString(strings.Repeat("=", utf8.RuneCountInString(c.Title)))
	b.WriteByte('\n')

	if len(c.Bars) == 0 {
		b.WriteString("(no data)\n")
		_, err := io.WriteString(w, b.String())
		return err
	}

	labelWidth := utf8.RuneCountInString(c.XLabel)
	maxValue := 0
	for _, bar := range c.Bars {
		labelWidth = max(labelWidth, utf8.RuneCountInString(bar.Label))
		maxValue = max(maxValue, bar.Value)
	}

	if c.XLabel != "" || c.YLabel != "" {
		fmt.Fprintf(&b, "%s  %s\n", pad(c.XLabel, labelWidth), c.YLabel)
	}
	for _, bar := range c.Bars {
		fmt.Fprintf(&b, "%s  %s %d\n", pad(bar.Label, labelWidth), strings.Repeat(string(barRune), scale(bar.Value, maxValue, width)), bar.Value)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func scale(v, maxValue, width int) int {
	if v <= 0 || maxValue <= 0 {
		return 0
	}
	return max(1, v*width/maxValue)
}

func pad(s string, width int) string {
	if n := utf8.RuneCountInString(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}
