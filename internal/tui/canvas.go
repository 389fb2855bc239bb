package tui

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/festmap/festmap/backend-go/internal/document"
	"github.com/festmap/festmap/backend-go/internal/geo"
	"github.com/festmap/festmap/backend-go/internal/render"
)

// Terminal cells are roughly twice as tall as wide.
const (
	cellWidthPx  = 8
	cellHeightPx = 16
	// webMercatorMPP is meters per pixel at zoom 0 on the equator.
	webMercatorMPP = 156543.03392
)

type cell struct {
	r     rune
	color string
}

// canvas rasterizes draw commands onto a grid of terminal cells centered
// on the view.
type canvas struct {
	w, h        int
	center      geo.LatLng
	cellMetersX float64
	cellMetersY float64
	latLength   float64
	lngLength   float64
	cells       [][]cell
}

func newCanvas(w, h int, view document.Viewport) *canvas {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	mpp := webMercatorMPP * math.Cos(view.Lat*math.Pi/180) / math.Pow(2, view.Zoom)
	latLength, lngLength := geo.MetersToDegrees(view.Lat)
	c := &canvas{
		w:           w,
		h:           h,
		center:      view.Center(),
		cellMetersX: cellWidthPx * mpp,
		cellMetersY: cellHeightPx * mpp,
		latLength:   latLength,
		lngLength:   lngLength,
		cells:       make([][]cell, h),
	}
	for y := range c.cells {
		c.cells[y] = make([]cell, w)
		for x := range c.cells[y] {
			c.cells[y][x] = cell{r: ' '}
		}
	}
	return c
}

// project returns the cell of ll. It may lie outside the grid.
func (c *canvas) project(ll geo.LatLng) (int, int) {
	dx := (ll.Lng - c.center.Lng) * c.lngLength / c.cellMetersX
	dy := (ll.Lat - c.center.Lat) * c.latLength / c.cellMetersY
	return c.w/2 + int(math.Round(dx)), c.h/2 - int(math.Round(dy))
}

// unproject returns the position at the center of cell (x, y).
func (c *canvas) unproject(x, y int) geo.LatLng {
	return geo.LatLng{
		Lat: c.center.Lat - float64(y-c.h/2)*c.cellMetersY/c.latLength,
		Lng: c.center.Lng + float64(x-c.w/2)*c.cellMetersX/c.lngLength,
	}
}

func (c *canvas) set(x, y int, r rune, color string) {
	if x < 0 || y < 0 || x >= c.w || y >= c.h {
		return
	}
	c.cells[y][x] = cell{r: r, color: color}
}

// line draws a Bresenham line. Segments spanning far beyond the grid are
// skipped.
func (c *canvas) line(x0, y0, x1, y1 int, r rune, color string) {
	limit := 8 * (c.w + c.h)
	if abs(x0) > limit || abs(x1) > limit || abs(y0) > limit || abs(y1) > limit {
		return
	}
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		c.set(x0, y0, r, color)
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

func (c *canvas) text(x, y int, s, color string) {
	for i, r := range []rune(s) {
		c.set(x+i, y, r, color)
	}
}

func (c *canvas) draw(cmd render.DrawCommand) {
	if len(cmd.LatLngs) == 0 {
		return
	}
	switch cmd.Op {
	case render.KindPolygon, render.KindPolyline:
		r := '#'
		if cmd.Op == render.KindPolyline {
			r = '*'
		}
		n := len(cmd.LatLngs)
		last := n - 1
		if cmd.Op == render.KindPolygon {
			last = n
		}
		if n == 1 {
			x, y := c.project(cmd.LatLngs[0])
			c.set(x, y, r, cmd.Color)
		}
		for i := 0; i < last && n > 1; i++ {
			x0, y0 := c.project(cmd.LatLngs[i])
			x1, y1 := c.project(cmd.LatLngs[(i+1)%n])
			c.line(x0, y0, x1, y1, r, cmd.Color)
		}
	case render.KindCircle:
		cx, cy := c.project(cmd.LatLngs[0])
		rx := cmd.Radius / c.cellMetersX
		ry := cmd.Radius / c.cellMetersY
		steps := int(math.Min(math.Max(8, 4*(rx+ry)), float64(8*(c.w+c.h))))
		for i := 0; i < steps; i++ {
			a := 2 * math.Pi * float64(i) / float64(steps)
			c.set(cx+int(math.Round(rx*math.Sin(a))), cy-int(math.Round(ry*math.Cos(a))), 'o', cmd.Color)
		}
		c.set(cx, cy, '+', cmd.Color)
	case render.KindMarker:
		x, y := c.project(cmd.LatLngs[0])
		r := '@'
		if cmd.Handle {
			r = 'x'
		}
		c.set(x, y, r, cmd.Color)
	}
}

// lines renders the grid, colored with lipgloss.
func (c *canvas) lines() []string {
	out := make([]string, c.h)
	for y, row := range c.cells {
		var b strings.Builder
		i := 0
		for i < len(row) {
			j := i
			for j < len(row) && row[j].color == row[i].color {
				j++
			}
			var run strings.Builder
			for _, cl := range row[i:j] {
				run.WriteRune(cl.r)
			}
			if row[i].color != "" {
				b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(row[i].color)).Render(run.String()))
			} else {
				b.WriteString(run.String())
			}
			i = j
		}
		out[y] = b.String()
	}
	return out
}

// plain renders the grid without colors.
func (c *canvas) plain() []string {
	out := make([]string, c.h)
	for y, row := range c.cells {
		rs := make([]rune, len(row))
		for x, cl := range row {
			rs[x] = cl.r
		}
		out[y] = string(rs)
	}
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
