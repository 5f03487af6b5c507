package report

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"

	"github.com/mj1618/stepwright/internal/model"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	pieSize     = 260
	barWidth    = 28
	barGap      = 14
	chartHeight = 200
	chartMargin = 24
	pointGap    = 56
	pointRadius = 3
)

var (
	passColor    = color.RGBA{R: 46, G: 160, B: 67, A: 255}
	failColor    = color.RGBA{R: 218, G: 54, B: 51, A: 255}
	emptyColor   = color.RGBA{R: 200, G: 200, B: 200, A: 255}
	axisColor    = color.RGBA{R: 90, G: 90, B: 90, A: 255}
	textColor    = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	outlineColor = color.RGBA{R: 0, G: 0, B: 0, A: 200}
	timeColor    = color.RGBA{R: 255, G: 152, B: 0, A: 255}
	growthColor  = color.RGBA{R: 46, G: 125, B: 50, A: 255}
)

// PieChart draws the pass/fail split as a PNG. Passed cases fill clockwise
// from twelve o'clock. An empty run draws a grey disc.
func PieChart(passed, failed int) ([]byte, error) {
	img := newCanvas(pieSize, pieSize)
	total := passed + failed
	cx, cy := pieSize/2, pieSize/2
	radius := float64(pieSize/2 - chartMargin/2)

	passShare := 0.0
	if total > 0 {
		passShare = float64(passed) / float64(total)
	}
	for y := 0; y < pieSize; y++ {
		for x := 0; x < pieSize; x++ {
			dx, dy := float64(x-cx), float64(y-cy)
			if math.Hypot(dx, dy) > radius {
				continue
			}
			switch {
			case total == 0:
				img.Set(x, y, emptyColor)
			case sweep(dx, dy) < passShare:
				img.Set(x, y, passColor)
			default:
				img.Set(x, y, failColor)
			}
		}
	}

	if total == 0 {
		drawTextWithOutline(img, "no cases", cx, cy, textColor, outlineColor)
	} else {
		drawTextWithOutline(img, fmt.Sprintf("%.0f%% pass", passShare*100), cx, cy, textColor, outlineColor)
		drawTextWithOutline(img, fmt.Sprintf("%d/%d", passed, total), cx, cy+16, textColor, outlineColor)
	}
	return encodePNG(img)
}

// sweep returns the clockwise angle of (dx, dy) from twelve o'clock as a
// fraction of a full turn.
func sweep(dx, dy float64) float64 {
	a := math.Atan2(dx, -dy)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a / (2 * math.Pi)
}

// TrendChart draws one stacked bar per run, oldest first: passed at the
// bottom, failed on top, each labelled with its pass rate.
func TrendChart(records []model.RunRecord) ([]byte, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("no runs to chart")
	}
	width := 2*chartMargin + len(records)*(barWidth+barGap)
	height := chartHeight + 2*chartMargin
	img := newCanvas(width, height)

	maxTotal := 1
	for _, r := range records {
		if r.Total > maxTotal {
			maxTotal = r.Total
		}
	}
	base := chartMargin + chartHeight
	fillRect(img, chartMargin/2, base, width-chartMargin/2, base+1, axisColor)

	for i, r := range records {
		x := chartMargin + i*(barWidth+barGap) + barGap/2
		passH := r.Passed * chartHeight / maxTotal
		failH := r.Failed * chartHeight / maxTotal
		fillRect(img, x, base-passH, x+barWidth, base, passColor)
		fillRect(img, x, base-passH-failH, x+barWidth, base-passH, failColor)
		drawRectangle(img, x, base-passH-failH, x+barWidth, base, axisColor)
		drawTextWithOutline(img, fmt.Sprintf("%.0f%%", r.PassRate()*100), x+barWidth/2, base+chartMargin/2+4, textColor, outlineColor)
	}
	return encodePNG(img)
}

// DurationChart draws the run duration of each run as a line, oldest first,
// each point labelled in seconds.
func DurationChart(records []model.RunRecord) ([]byte, error) {
	values := make([]float64, len(records))
	for i, r := range records {
		values[i] = r.Duration.Seconds()
	}
	return lineChart(values, timeColor, func(v float64) string { return fmt.Sprintf("%.1fs", v) })
}

// GrowthChart draws the number of cases in each run as a line, oldest first.
func GrowthChart(records []model.RunRecord) ([]byte, error) {
	values := make([]float64, len(records))
	for i, r := range records {
		values[i] = float64(r.Total)
	}
	return lineChart(values, growthColor, func(v float64) string { return fmt.Sprintf("%.0f", v) })
}

// lineChart plots values left to right, scaled so the largest reaches the
// top of the chart area.
func lineChart(values []float64, c color.Color, label func(float64) string) ([]byte, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("no runs to chart")
	}
	width := 2*chartMargin + len(values)*pointGap
	height := chartHeight + 2*chartMargin
	img := newCanvas(width, height)

	maxValue := 0.0
	for _, v := range values {
		maxValue = math.Max(maxValue, v)
	}
	if maxValue == 0 {
		maxValue = 1
	}
	base := chartMargin + chartHeight
	fillRect(img, chartMargin/2, base, width-chartMargin/2, base+1, axisColor)

	points := make([]image.Point, len(values))
	for i, v := range values {
		points[i] = image.Pt(chartMargin+i*pointGap+pointGap/2, base-int(v/maxValue*chartHeight))
	}
	for i := 1; i < len(points); i++ {
		drawLine(img, points[i-1], points[i], c)
	}
	for i, p := range points {
		fillRect(img, p.X-pointRadius, p.Y-pointRadius, p.X+pointRadius+1, p.Y+pointRadius+1, c)
		drawTextWithOutline(img, label(values[i]), p.X, base+chartMargin/2+4, textColor, outlineColor)
	}
	return encodePNG(img)
}

// drawLine draws a two-pixel-thick line from a to b.
func drawLine(img *image.RGBA, a, b image.Point, c color.Color) {
	dx, dy := b.X-a.X, b.Y-a.Y
	steps := max(abs(dx), abs(dy))
	if steps == 0 {
		img.Set(a.X, a.Y, c)
		return
	}
	for i := 0; i <= steps; i++ {
		x := a.X + dx*i/steps
		y := a.Y + dy*i/steps
		img.Set(x, y, c)
		img.Set(x, y+1, c)
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func newCanvas(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	return img
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// fillRect fills [x1,x2) x [y1,y2), clamped to the image.
func fillRect(img *image.RGBA, x1, y1, x2, y2 int, c color.Color) {
	r := image.Rect(x1, y1, x2, y2).Intersect(img.Bounds())
	if r.Empty() {
		return
	}
	draw.Draw(img, r, image.NewUniform(c), image.Point{}, draw.Over)
}

// isWithinBounds checks if a point is within the image bounds
func isWithinBounds(bounds image.Rectangle, x, y int) bool {
	return x >= bounds.Min.X && x < bounds.Max.X && y >= bounds.Min.Y && y < bounds.Max.Y
}

// drawRectangle draws a rectangle outline on the image
func drawRectangle(img *image.RGBA, x1, y1, x2, y2 int, c color.Color) {
	bounds := img.Bounds()
	if x2 <= x1 || y2 <= y1 {
		return
	}
	for x := x1; x < x2; x++ {
		if isWithinBounds(bounds, x, y1) {
			img.Set(x, y1, c)
		}
		if isWithinBounds(bounds, x, y2-1) {
			img.Set(x, y2-1, c)
		}
	}
	for y := y1; y < y2; y++ {
		if isWithinBounds(bounds, x1, y) {
			img.Set(x1, y, c)
		}
		if isWithinBounds(bounds, x2-1, y) {
			img.Set(x2-1, y, c)
		}
	}
}

// drawTextWithOutline draws text centred at (x, y) with a one-pixel outline.
// basicfont.Face7x13 glyphs are 7 pixels wide and 13 high.
func drawTextWithOutline(img *image.RGBA, text string, x, y int, fg, outline color.Color) {
	offsetX := x - len(text)*7/2
	offsetY := y + 13/2 - 2

	stamp := func(dx, dy int, c color.Color) {
		d := &font.Drawer{
			Dst:  img,
			Src:  image.NewUniform(c),
			Face: basicfont.Face7x13,
			Dot: fixed.Point26_6{
				X: fixed.I(offsetX + dx),
				Y: fixed.I(offsetY + dy),
			},
		}
		d.DrawString(text)
	}
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			if dx != 0 || dy != 0 {
				stamp(dx, dy, outline)
			}
		}
	}
	stamp(0, 0, fg)
}
