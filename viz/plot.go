package viz

import (
	"bufio"
	"image/color"
	"os"
	"path/filepath"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"go.viam.com/quadruped/leg"
)

// FootHeightPlot plots each foot's world height against time since the first sample.
func FootHeightPlot(t *Trace) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Foot height"
	p.X.Label.Text = "time (s)"
	p.Y.Label.Text = "z (m)"

	for _, id := range leg.All {
		samples := t.Samples(id)
		if len(samples) == 0 {
			continue
		}
		pts := make(plotter.XYs, len(samples))
		for i, s := range samples {
			pts[i].X = s.Time.Sub(samples[0].Time).Seconds()
			pts[i].Y = s.Position.Z
		}
		if err := addLine(p, id, pts); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// SwingPathPlot plots swing paths from the side: x against z in the world frame.
func SwingPathPlot(paths [leg.Count][]r3.Vector) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Swing paths"
	p.X.Label.Text = "x (m)"
	p.Y.Label.Text = "z (m)"

	for _, id := range leg.All {
		if len(paths[id]) == 0 {
			continue
		}
		pts := make(plotter.XYs, len(paths[id]))
		for i, v := range paths[id] {
			pts[i].X = v.X
			pts[i].Y = v.Z
		}
		if err := addLine(p, id, pts); err != nil {
			return nil, err
		}
	}
	return p, nil
}

var (
	frontLeftPairColor  = color.RGBA{R: 214, G: 39, B: 40, A: 255}
	frontRightPairColor = color.RGBA{R: 31, G: 119, B: 180, A: 255}
)

// legColor gives each diagonal pair one color: FL and RR red, RL and FR blue.
func legColor(id leg.ID) color.Color {
	if id.Left() == id.Front() {
		return frontLeftPairColor
	}
	return frontRightPairColor
}

func addLine(p *plot.Plot, id leg.ID, pts plotter.XYs) error {
	line, err := plotter.NewLine(pts)
	if err != nil {
		return errors.Wrapf(err, "cannot plot leg %s", id)
	}
	line.LineStyle.Width = vg.Points(1.5)
	line.LineStyle.Color = legColor(id)
	// the rear leg of each pair is dashed
	if !id.Front() {
		line.LineStyle.Dashes = plotutil.Dashes(1)
	}
	p.Add(line)
	p.Legend.Add(id.String(), line)
	return nil
}

// SavePNG renders p into a PNG file of the given size in inches.
func SavePNG(p *plot.Plot, widthIn, heightIn float64, filename string) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return errors.Wrap(err, "cannot create directory")
	}
	c := vgimg.NewWith(
		vgimg.UseWH(vg.Length(widthIn)*vg.Inch, vg.Length(heightIn)*vg.Inch),
		vgimg.UseDPI(150),
	)
	p.Draw(draw.New(c))

	//nolint:gosec
	f, err := os.Create(filename)
	if err != nil {
		return errors.Wrap(err, "cannot create png")
	}
	bw := bufio.NewWriter(f)
	if _, err := (vgimg.PngCanvas{Canvas: c}).WriteTo(bw); err != nil {
		//nolint:errcheck
		f.Close()
		return errors.Wrap(err, "cannot write png")
	}
	if err := bw.Flush(); err != nil {
		//nolint:errcheck
		f.Close()
		return err
	}
	return f.Close()
}
