package export

import (
	"bytes"
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/thuan-cell/thuan-cell/internal/scoring"
)

var (
	colorMax    = color.RGBA{R: 0xcb, G: 0xd5, B: 0xe1, A: 0xff}
	colorScore  = color.RGBA{R: 0x1e, G: 0x3a, B: 0x8a, A: 0xff}
	sliceColors = []color.Color{
		color.RGBA{R: 0x3b, G: 0x82, B: 0xf6, A: 0xff},
		color.RGBA{R: 0x22, G: 0xc5, B: 0x5e, A: 0xff},
		color.RGBA{R: 0xea, G: 0xb3, B: 0x08, A: 0xff},
		color.RGBA{R: 0xf9, G: 0x73, B: 0x16, A: 0xff},
		color.RGBA{R: 0xa8, G: 0x55, B: 0xf7, A: 0xff},
	}
)

// chartRenderer rasterises the category charts that go into the PDF.
type chartRenderer struct {
	width  vg.Length
	height vg.Length
	dpi    int
}

func (cr chartRenderer) png(p *plot.Plot) ([]byte, error) {
	img := vgimg.NewWith(vgimg.UseWH(cr.width, cr.height), vgimg.UseDPI(cr.dpi))
	p.Draw(draw.New(img))

	var buf bytes.Buffer
	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode chart: %w", err)
	}
	return buf.Bytes(), nil
}

// barChart compares achieved points against the ceiling of each category.
func (cr chartRenderer) barChart(cats []scoring.CategoryScore) ([]byte, error) {
	p := plot.New()
	p.Title.Text = "Điểm theo nhóm"
	p.Y.Min = 0
	p.Legend.Top = true

	names := make([]string, len(cats))
	maxVals := make(plotter.Values, len(cats))
	scoreVals := make(plotter.Values, len(cats))
	for i, c := range cats {
		names[i] = c.ShortName
		maxVals[i] = c.Max
		scoreVals[i] = c.Score
	}

	w := vg.Points(10)
	maxBars, err := plotter.NewBarChart(maxVals, w)
	if err != nil {
		return nil, fmt.Errorf("failed to build max bars: %w", err)
	}
	maxBars.Color = colorMax
	maxBars.LineStyle.Width = 0
	maxBars.Offset = -w / 2

	scoreBars, err := plotter.NewBarChart(scoreVals, w)
	if err != nil {
		return nil, fmt.Errorf("failed to build score bars: %w", err)
	}
	scoreBars.Color = colorScore
	scoreBars.LineStyle.Width = 0
	scoreBars.Offset = w / 2

	p.Add(plotter.NewGrid(), maxBars, scoreBars)
	p.Legend.Add("Tối đa", maxBars)
	p.Legend.Add("Đạt được", scoreBars)
	p.NominalX(names...)

	return cr.png(p)
}

// pieChart shows how the achieved points split across categories.
func (cr chartRenderer) pieChart(cats []scoring.CategoryScore) ([]byte, error) {
	p := plot.New()
	p.Title.Text = "Cơ cấu điểm"
	p.HideAxes()
	p.Legend.Top = true

	pie := pieSlices{}
	for i, c := range cats {
		col := sliceColors[i%len(sliceColors)]
		pie.values = append(pie.values, c.Score)
		pie.colors = append(pie.colors, col)
		p.Legend.Add(c.ShortName, swatch{col})
	}
	p.Add(pie)

	return cr.png(p)
}

// pieSlices draws a donut over the whole data area of the plot.
type pieSlices struct {
	values []float64
	colors []color.Color
}

func (ps pieSlices) Plot(c draw.Canvas, _ *plot.Plot) {
	var total float64
	for _, v := range ps.values {
		total += v
	}
	center := c.Center()
	radius := vg.Length(math.Min(float64(c.Max.X-c.Min.X), float64(c.Max.Y-c.Min.Y))) * 0.45
	if total <= 0 {
		var ring vg.Path
		ring.Move(vg.Point{X: center.X + radius, Y: center.Y})
		ring.Arc(center, radius, 0, 2*math.Pi)
		ring.Close()
		c.SetColor(colorMax)
		c.Fill(ring)
		ps.hole(c, center, radius)
		return
	}

	start := math.Pi / 2
	for i, v := range ps.values {
		if v <= 0 {
			continue
		}
		sweep := 2 * math.Pi * v / total
		var slice vg.Path
		slice.Move(center)
		slice.Arc(center, radius, start, -sweep)
		slice.Close()
		c.SetColor(ps.colors[i])
		c.Fill(slice)
		start -= sweep
	}
	ps.hole(c, center, radius)
}

func (pieSlices) hole(c draw.Canvas, center vg.Point, radius vg.Length) {
	inner := radius * 0.55
	var hole vg.Path
	hole.Move(vg.Point{X: center.X + inner, Y: center.Y})
	hole.Arc(center, inner, 0, 2*math.Pi)
	hole.Close()
	c.SetColor(color.White)
	c.Fill(hole)
}

// swatch is a filled legend thumbnail.
type swatch struct {
	color color.Color
}

func (s swatch) Thumbnail(c *draw.Canvas) {
	c.SetColor(s.color)
	c.Fill(c.Rectangle.Path())
}
