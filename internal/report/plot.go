package report

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Image formats accepted by WriteImage and SaveImage.
const (
	FormatPNG = "png"
	FormatSVG = "svg"
)

const (
	imageHeight = 12 * vg.Centimeter
	minWidth    = 16 * vg.Centimeter
	barSlot     = 8 * vg.Millimeter
	barFill     = 0.8
)

// Plot builds a vertical bar chart of c, one bar per entry in order, with the
// labels on the X axis.
func (c Chart) Plot() (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = c.Title
	p.X.Label.Text = c.XLabel
	p.Y.Label.Text = c.YLabel
	p.Y.Min = 0

	if len(c.Bars) == 0 {
		p.HideX()
		p.X.Min, p.X.Max = 0, 1
		p.Y.Max = 1
		return p, nil
	}

	values := make(plotter.Values, len(c.Bars))
	names := make([]string, len(c.Bars))
	for i, b := range c.Bars {
		values[i] = float64(b.Value)
		names[i] = b.Label
	}

	bars, err := plotter.NewBarChart(values, barSlot*barFill)
	if err != nil {
		return nil, fmt.Errorf("bar chart %q: %w", c.Title, err)
	}
	bars.LineStyle.Width = 0
	p.Add(bars)
	p.NominalX(names...)

	p.X.Tick.Label.Rotation = math.Pi / 2
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter
	return p, nil
}

// WriteImage renders c in format (FormatPNG or FormatSVG) to w. The image
// widens with the number of bars so long label lists stay legible.
func (c Chart) WriteImage(w io.Writer, format string) error {
	format = strings.ToLower(format)
	if format != FormatPNG && format != FormatSVG {
		return fmt.Errorf("unsupported image format %q", format)
	}

	p, err := c.Plot()
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(c.imageWidth(), imageHeight, format)
	if err != nil {
		return fmt.Errorf("render %q: %w", c.Title, err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("write %q: %w", c.Title, err)
	}
	return nil
}

// SaveImage writes c into dir as <name>.<format> and returns the file path.
func (c Chart) SaveImage(dir, name, format string) (path string, err error) {
	path = filepath.Join(dir, name+"."+strings.ToLower(format))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()
	if err := c.WriteImage(f, format); err != nil {
		return "", err
	}
	return path, nil
}

func (c Chart) imageWidth() vg.Length {
	return max(minWidth, vg.Length(len(c.Bars))*barSlot+4*vg.Centimeter)
}
