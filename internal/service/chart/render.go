package chart

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"strconv"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

const (
	defaultWidth  = 1000
	defaultHeight = 400

	marginLeft   = 60
	marginRight  = 30
	marginTop    = 50
	marginBottom = 45
	plotPadding  = 20

	// ReferenceLevel is drawn as a dashed red line: the activity target.
	ReferenceLevel = 100

	lineWidth    = 2.5
	markerRadius = 4
	yTicks       = 5
)

var (
	bgColor   = color.RGBA{R: 0x03, G: 0x0d, B: 0x3a, A: 0xff}
	lineColor = color.RGBA{R: 0x10, G: 0xe0, B: 0xa3, A: 0xff}
	fillColor = color.NRGBA{R: 0x10, G: 0xe0, B: 0xa3, A: 0x1a}
	gridColor = color.NRGBA{R: 0x80, G: 0x80, B: 0x80, A: 0x4d}
	refColor  = color.RGBA{R: 0xff, A: 0xff}
	textColor = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
)

// Renderer draws a Projection as a PNG line chart.
type Renderer struct {
	Title  string
	Width  int
	Height int
	face   font.Face
}

func NewRenderer() *Renderer {
	return &Renderer{
		Title:  "Your activity",
		Width:  defaultWidth,
		Height: defaultHeight,
		face:   basicfont.Face7x13,
	}
}

type point struct {
	x, y float32
}

func (r *Renderer) Render(p Projection) ([]byte, error) {
	if len(p.Points) == 0 {
		return nil, fmt.Errorf("render: empty series")
	}

	img := image.NewRGBA(image.Rect(0, 0, r.Width, r.Height))
	draw.Draw(img, img.Bounds(), image.NewUniform(bgColor), image.Point{}, draw.Src)

	yMax := r.yMax(p.Points)
	r.drawGrid(img, p, yMax)

	refY := r.yFor(ReferenceLevel, yMax)
	r.dashed(img, point{marginLeft, refY}, point{float32(r.Width - marginRight), refY}, 1.5, refColor)

	pts := make([]point, len(p.Points))
	for i, v := range p.Points {
		pts[i] = r.pointAt(i, len(p.Points), v, yMax)
	}

	// translucent area between the series and zero
	base := r.yFor(0, yMax)
	area := append([]point{{pts[0].x, base}}, pts...)
	area = append(area, point{pts[len(pts)-1].x, base})
	r.polygon(img, area, fillColor)

	for i := 1; i < len(pts); i++ {
		r.stroke(img, pts[i-1], pts[i], lineWidth, lineColor)
	}
	for i, pt := range pts {
		r.circle(img, pt, markerRadius, lineColor)
		r.text(img, strconv.Itoa(p.Points[i]), int(pt.x), int(pt.y)-markerRadius-4, true)
	}

	r.text(img, r.Title, r.Width/2, marginTop-20, true)
	r.text(img, "Messages", marginLeft, marginTop-6, false)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("render: encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) drawGrid(img *image.RGBA, p Projection, yMax float64) {
	left, right := float32(marginLeft), float32(r.Width-marginRight)

	for i := 0; i <= yTicks; i++ {
		v := yMax * float64(i) / yTicks
		y := r.yFor(v, yMax)
		r.dashed(img, point{left, y}, point{right, y}, 1, gridColor)
		r.text(img, strconv.Itoa(int(math.Round(v))), marginLeft-24, int(y)+4, true)
	}

	for i := range p.Points {
		pt := r.pointAt(i, len(p.Points), 0, yMax)
		r.dashed(img, point{pt.x, marginTop}, point{pt.x, pt.y}, 1, gridColor)
		if i < len(p.Labels) {
			r.text(img, p.Labels[i], int(pt.x), r.Height-marginBottom+18, true)
		}
	}
}

// yMax is a round upper bound that keeps the reference line visible.
func (r *Renderer) yMax(points []int) float64 {
	top := ReferenceLevel
	for _, v := range points {
		top = max(top, v)
	}
	step := math.Pow(10, math.Floor(math.Log10(float64(top))))
	return math.Ceil(float64(top)*1.1/step) * step
}

func (r *Renderer) yFor(v, yMax float64) float32 {
	top, bottom := float64(marginTop), float64(r.Height-marginBottom)
	return float32(bottom - v/yMax*(bottom-top))
}

func (r *Renderer) pointAt(i, n, v int, yMax float64) point {
	left := float32(marginLeft + plotPadding)
	right := float32(r.Width - marginRight - plotPadding)

	x := (left + right) / 2
	if n > 1 {
		x = left + float32(i)*(right-left)/float32(n-1)
	}
	return point{x, r.yFor(float64(v), yMax)}
}

func (r *Renderer) polygon(dst draw.Image, pts []point, c color.Color) {
	if len(pts) < 3 {
		return
	}
	z := vector.NewRasterizer(r.Width, r.Height)
	z.MoveTo(pts[0].x, pts[0].y)
	for _, p := range pts[1:] {
		z.LineTo(p.x, p.y)
	}
	z.ClosePath()
	z.Draw(dst, dst.Bounds(), image.NewUniform(c), image.Point{})
}

func (r *Renderer) stroke(dst draw.Image, a, b point, width float32, c color.Color) {
	dx, dy := b.x-a.x, b.y-a.y
	l := float32(math.Hypot(float64(dx), float64(dy)))
	if l == 0 {
		return
	}
	nx, ny := -dy/l*width/2, dx/l*width/2
	r.polygon(dst, []point{
		{a.x + nx, a.y + ny},
		{b.x + nx, b.y + ny},
		{b.x - nx, b.y - ny},
		{a.x - nx, a.y - ny},
	}, c)
}

func (r *Renderer) dashed(dst draw.Image, a, b point, width float32, c color.Color) {
	const dash, gap = 6, 4
	dx, dy := b.x-a.x, b.y-a.y
	l := float32(math.Hypot(float64(dx), float64(dy)))
	if l == 0 {
		return
	}
	ux, uy := dx/l, dy/l
	for s := float32(0); s < l; s += dash + gap {
		e := min(s+dash, l)
		r.stroke(dst, point{a.x + ux*s, a.y + uy*s}, point{a.x + ux*e, a.y + uy*e}, width, c)
	}
}

func (r *Renderer) circle(dst draw.Image, c point, radius float32, col color.Color) {
	const segments = 16
	pts := make([]point, segments)
	for i := range pts {
		a := 2 * math.Pi * float64(i) / segments
		pts[i] = point{c.x + radius*float32(math.Cos(a)), c.y + radius*float32(math.Sin(a))}
	}
	r.polygon(dst, pts, col)
}

func (r *Renderer) text(dst draw.Image, s string, x, y int, centered bool) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(textColor),
		Face: r.face,
	}
	if centered {
		x -= d.MeasureString(s).Ceil() / 2
	}
	d.Dot = fixed.P(x, y)
	d.DrawString(s)
}
