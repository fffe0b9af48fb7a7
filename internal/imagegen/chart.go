// Package imagegen renders sounding diagrams as PNG images.
package imagegen

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"time"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/Miauneiro/Convective-Risk-Analyzer/internal/convective"
)

// Chart dimensions in pixels.
const (
	ChartWidth  = 800
	ChartHeight = 600

	marginLeft   = 60
	marginRight  = 20
	marginTop    = 40
	marginBottom = 40
)

// Plot pressure range in hPa. Levels outside it are clipped.
const (
	plotPressureBottom = 1050.0
	plotPressureTop    = 100.0
)

// Temperature range at the bottom axis. The skew shifts warmer
// temperatures left as pressure decreases, as on a skew-T diagram.
const (
	plotTempMin = -40.0
	plotTempMax = 45.0
	skewFactor  = 35.0 // degrees of rightward shift from bottom to top
)

var (
	colBackground = color.RGBA{255, 255, 255, 255}
	colGrid       = color.RGBA{220, 220, 220, 255}
	colIsotherm   = color.RGBA{235, 225, 210, 255}
	colAxis       = color.RGBA{80, 80, 80, 255}
	colText       = color.RGBA{40, 40, 40, 255}
	colEnvTemp    = color.RGBA{200, 30, 30, 255}
	colDewpoint   = color.RGBA{30, 150, 30, 255}
	colParcel     = color.RGBA{120, 30, 160, 255}
	colMarker     = color.RGBA{30, 60, 200, 255}
)

// ChartData carries everything the renderer needs for one sounding.
type ChartData struct {
	StationID   string
	ObservedAt  time.Time
	Pressures   []float64
	EnvTemps    []float64
	Dewpoints   []float64
	ParcelTemps []float64
	LCL         convective.Level
	LFC         *convective.Level
	EL          *convective.Level
	CAPE        float64
	CIN         float64
}

// RenderChart draws the sounding as a skewed temperature/log-pressure
// diagram and returns it as PNG bytes.
func RenderChart(data ChartData) ([]byte, error) {
	if len(data.Pressures) < 2 {
		return nil, fmt.Errorf("render chart: need at least 2 levels, got %d", len(data.Pressures))
	}

	img := image.NewRGBA(image.Rect(0, 0, ChartWidth, ChartHeight))
	fill(img, colBackground)

	drawIsotherms(img)
	drawIsobars(img)
	drawFrame(img)

	drawCurve(img, data.Pressures, data.Dewpoints, colDewpoint, false)
	drawCurve(img, data.Pressures, data.EnvTemps, colEnvTemp, false)
	if len(data.ParcelTemps) == len(data.Pressures) {
		drawCurve(img, data.Pressures, data.ParcelTemps, colParcel, true)
	}

	drawLevelMarker(img, data.LCL, "LCL")
	if data.LFC != nil {
		drawLevelMarker(img, *data.LFC, "LFC")
	}
	if data.EL != nil {
		drawLevelMarker(img, *data.EL, "EL")
	}

	title := fmt.Sprintf("%s  %s", data.StationID, data.ObservedAt.UTC().Format("2006-01-02 15Z"))
	drawLabel(img, title, marginLeft, 20, colText)
	summary := fmt.Sprintf("CAPE %.0f J/kg   CIN %.0f J/kg", data.CAPE, data.CIN)
	drawLabel(img, summary, marginLeft, 34, colText)
	drawLegend(img)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode chart: %w", err)
	}
	return buf.Bytes(), nil
}

// pressureToY maps pressure to a vertical pixel, logarithmic in pressure.
func pressureToY(p float64) int {
	if p > plotPressureBottom {
		p = plotPressureBottom
	}
	if p < plotPressureTop {
		p = plotPressureTop
	}
	frac := (math.Log(plotPressureBottom) - math.Log(p)) /
		(math.Log(plotPressureBottom) - math.Log(plotPressureTop))
	return marginTop + int(frac*float64(ChartHeight-marginTop-marginBottom)+0.5)
}

// tempToX maps a temperature at a given pressure to a horizontal pixel.
// The skew term pushes isotherms to the right with height.
func tempToX(t, p float64) int {
	frac := (math.Log(plotPressureBottom) - math.Log(p)) /
		(math.Log(plotPressureBottom) - math.Log(plotPressureTop))
	skewed := t + frac*skewFactor
	x := (skewed - plotTempMin) / (plotTempMax - plotTempMin)
	return marginLeft + int(x*float64(ChartWidth-marginLeft-marginRight)+0.5)
}

func fill(img *image.RGBA, c color.RGBA) {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			img.SetRGBA(x, y, c)
		}
	}
}

func drawIsobars(img *image.RGBA) {
	for _, p := range []float64{1000, 850, 700, 500, 400, 300, 250, 200, 150, 100} {
		y := pressureToY(p)
		drawLine(img, marginLeft, y, ChartWidth-marginRight, y, colGrid, false)
		drawLabel(img, fmt.Sprintf("%.0f", p), 12, y+4, colText)
	}
}

func drawIsotherms(img *image.RGBA) {
	for t := -80.0; t <= plotTempMax; t += 10 {
		x0 := tempToX(t, plotPressureBottom)
		x1 := tempToX(t, plotPressureTop)
		y0 := ChartHeight - marginBottom
		y1 := marginTop
		drawLine(img, x0, y0, x1, y1, colIsotherm, false)
		if x0 >= marginLeft && x0 <= ChartWidth-marginRight {
			drawLabel(img, fmt.Sprintf("%.0f", t), x0-6, ChartHeight-marginBottom+16, colText)
		}
	}
}

func drawFrame(img *image.RGBA) {
	drawLine(img, marginLeft, marginTop, marginLeft, ChartHeight-marginBottom, colAxis, false)
	drawLine(img, marginLeft, ChartHeight-marginBottom, ChartWidth-marginRight, ChartHeight-marginBottom, colAxis, false)
	drawLine(img, ChartWidth-marginRight, marginTop, ChartWidth-marginRight, ChartHeight-marginBottom, colAxis, false)
	drawLine(img, marginLeft, marginTop, ChartWidth-marginRight, marginTop, colAxis, false)
}

func drawCurve(img *image.RGBA, pressures, temps []float64, c color.RGBA, dashed bool) {
	n := len(pressures)
	if len(temps) < n {
		n = len(temps)
	}
	for i := 0; i+1 < n; i++ {
		if pressures[i] < plotPressureTop && pressures[i+1] < plotPressureTop {
			continue
		}
		x0 := tempToX(temps[i], pressures[i])
		y0 := pressureToY(pressures[i])
		x1 := tempToX(temps[i+1], pressures[i+1])
		y1 := pressureToY(pressures[i+1])
		drawLine(img, x0, y0, x1, y1, c, dashed)
		drawLine(img, x0+1, y0, x1+1, y1, c, dashed)
	}
}

func drawLevelMarker(img *image.RGBA, lvl convective.Level, label string) {
	y := pressureToY(lvl.Pressure)
	x := tempToX(lvl.Temperature, lvl.Pressure)
	for dx := -3; dx <= 3; dx++ {
		setClipped(img, x+dx, y, colMarker)
		setClipped(img, x, y+dx, colMarker)
	}
	drawLabel(img, fmt.Sprintf("%s %.0f", label, lvl.Pressure), x+8, y+4, colMarker)
}

func drawLegend(img *image.RGBA) {
	y := marginTop + 14
	x := ChartWidth - marginRight - 150
	entries := []struct {
		name string
		c    color.RGBA
	}{
		{"Temperature", colEnvTemp},
		{"Dewpoint", colDewpoint},
		{"Parcel", colParcel},
	}
	for _, e := range entries {
		drawLine(img, x, y-4, x+20, y-4, e.c, false)
		drawLine(img, x, y-3, x+20, y-3, e.c, false)
		drawLabel(img, e.name, x+26, y, e.c)
		y += 14
	}
}

// drawLine is Bresenham with an optional 4-on/4-off dash pattern.
func drawLine(img *image.RGBA, x0, y0, x1, y1 int, c color.RGBA, dashed bool) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx := 1
	if x0 > x1 {
		sx = -1
	}
	sy := 1
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	step := 0
	for {
		if !dashed || (step/4)%2 == 0 {
			setClipped(img, x0, y0, c)
		}
		step++
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func setClipped(img *image.RGBA, x, y int, c color.RGBA) {
	if x < 0 || y < 0 || x >= ChartWidth || y >= ChartHeight {
		return
	}
	img.SetRGBA(x, y, c)
}

func drawLabel(img *image.RGBA, text string, x, y int, c color.Color) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(text)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
