package report

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func worshipChart() Chart {
	return Chart{
		Title:  "Places of worship",
		XLabel: "Religion",
		YLabel: "Count",
		Bars:   []Bar{{"christian", 10}, {"muslim", 5}, {"sikh", 1}},
	}
}

func TestChart_Plot(t *testing.T) {
	p, err := worshipChart().Plot()
	require.NoError(t, err)

	assert.Equal(t, "Places of worship", p.Title.Text)
	assert.Equal(t, "Religion", p.X.Label.Text)
	assert.Equal(t, "Count", p.Y.Label.Text)

	ticks := p.X.Tick.Marker.Ticks(p.X.Min, p.X.Max)
	labels := make([]string, 0, len(ticks))
	for _, tk := range ticks {
		labels = append(labels, tk.Label)
	}
	assert.Equal(t, []string{"christian", "muslim", "sikh"}, labels)
	assert.Equal(t, 0.0, p.Y.Min)
	assert.GreaterOrEqual(t, p.Y.Max, 10.0)
}

func TestChart_WriteImage(t *testing.T) {
	tests := []struct {
		format string
		prefix []byte
	}{
		{FormatPNG, []byte("\x89PNG\r\n\x1a\n")},
		{FormatSVG, []byte("<?xml")},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, worshipChart().WriteImage(&buf, tt.format))
			assert.True(t, bytes.HasPrefix(buf.Bytes(), tt.prefix), "unexpected header %q", buf.Bytes()[:min(16, buf.Len())])
		})
	}
}

func TestChart_WriteImageEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Chart{Title: "Land use summary"}.WriteImage(&buf, FormatPNG))
	assert.Positive(t, buf.Len())
}

func TestChart_WriteImageUnknownFormat(t *testing.T) {
	err := worshipChart().WriteImage(&bytes.Buffer{}, "gif")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported image format")
}

func TestChart_SaveImage(t *testing.T) {
	dir := t.TempDir()

	path, err := worshipChart().SaveImage(dir, "worship", FormatSVG)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "worship.svg"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<svg")
}

func TestChart_ImageWidthGrowsWithBars(t *testing.T) {
	few := worshipChart()
	many := Chart{Bars: make([]Bar, 50)}
	assert.Equal(t, minWidth, few.imageWidth())
	assert.Greater(t, many.imageWidth(), minWidth)
}
