package export

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"math"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"

	"github.com/festmap/festmap/backend-go/internal/geo"
	"github.com/festmap/festmap/backend-go/internal/render"
)

// ErrNothingToExport is returned when there is nothing to draw.
var ErrNothingToExport = errors.New("nothing to export")

type PNGOptions struct {
	// Width of the image in pixels. The height follows the aspect ratio.
	Width   int
	Padding float64
	Labels  bool
}

func DefaultPNGOptions() PNGOptions {
	return PNGOptions{Width: 1600, Padding: 40, Labels: true}
}

// projection maps lat/lng onto image pixels with an equirectangular
// projection around the center latitude.
type projection struct {
	bounds  geo.Bounds
	scale   float64 // pixels per degree of latitude
	lngCos  float64
	padding float64
}

func (p projection) point(ll geo.LatLng) (float64, float64) {
	x := (ll.Lng-p.bounds.West)*p.lngCos*p.scale + p.padding
	y := (p.bounds.North-ll.Lat)*p.scale + p.padding
	return x, y
}

func (p projection) meters(m float64) float64 {
	return m / geo.LatLength * p.scale
}

// RenderPNG draws the item primitives of commands as a plan. Edit handles
// are skipped.
func RenderPNG(w io.Writer, commands []render.DrawCommand, opts PNGOptions) error {
	if opts.Width <= 0 {
		opts.Width = DefaultPNGOptions().Width
	}

	var bounds geo.Bounds
	var drawn []render.DrawCommand
	for _, cmd := range commands {
		if cmd.Handle || len(cmd.LatLngs) == 0 {
			continue
		}
		drawn = append(drawn, cmd)
		bounds = bounds.Union(commandBounds(cmd))
	}
	if len(drawn) == 0 || bounds.IsEmpty() {
		return ErrNothingToExport
	}

	center := bounds.Center()
	lngCos := math.Cos(center.Lat * math.Pi / 180)
	spanX := (bounds.East - bounds.West) * lngCos
	spanY := bounds.North - bounds.South
	if spanX <= 0 {
		spanX = spanY
	}
	if spanX <= 0 {
		// a single point: show 50 m around it
		spanX, spanY = 50/geo.LatLength, 50/geo.LatLength
		bounds = bounds.Pad(25 / geo.LatLength)
	}

	inner := float64(opts.Width) - 2*opts.Padding
	if inner <= 0 {
		return fmt.Errorf("width %d too small for padding %v", opts.Width, opts.Padding)
	}
	proj := projection{bounds: bounds, scale: inner / spanX, lngCos: lngCos, padding: opts.Padding}
	height := int(math.Ceil(spanY*proj.scale + 2*opts.Padding))

	dc := gg.NewContext(opts.Width, height)
	dc.SetColor(color.White)
	dc.Clear()

	if opts.Labels {
		face, err := labelFace(12)
		if err != nil {
			return err
		}
		dc.SetFontFace(face)
	}

	for _, cmd := range drawn {
		drawCommand(dc, proj, cmd)
	}
	if opts.Labels {
		for _, cmd := range drawn {
			drawLabel(dc, proj, cmd)
		}
	}

	return dc.EncodePNG(w)
}

func labelFace(size float64) (font.Face, error) {
	ttfFont, err := truetype.Parse(gomono.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %v", err)
	}
	return truetype.NewFace(ttfFont, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	}), nil
}

func commandBounds(cmd render.DrawCommand) geo.Bounds {
	b := geo.BoundsOf(cmd.LatLngs...)
	if cmd.Op == render.KindCircle && cmd.Radius > 0 {
		latLength, lngLength := geo.MetersToDegrees(cmd.LatLngs[0].Lat)
		c := cmd.LatLngs[0]
		b = b.Extend(geo.LatLng{Lat: c.Lat + cmd.Radius/latLength, Lng: c.Lng + cmd.Radius/lngLength})
		b = b.Extend(geo.LatLng{Lat: c.Lat - cmd.Radius/latLength, Lng: c.Lng - cmd.Radius/lngLength})
	}
	return b
}

func setColor(dc *gg.Context, hex string, alpha float64) {
	r, g, b := parseHex(hex)
	dc.SetRGBA255(r, g, b, int(alpha*255))
}

// parseHex reads #rgb and #rrggbb colors. Anything else draws in the
// default map blue.
func parseHex(hex string) (r, g, b int) {
	var rv, gv, bv uint8
	switch len(hex) {
	case 7:
		if _, err := fmt.Sscanf(hex, "#%02x%02x%02x", &rv, &gv, &bv); err == nil {
			return int(rv), int(gv), int(bv)
		}
	case 4:
		if _, err := fmt.Sscanf(hex, "#%1x%1x%1x", &rv, &gv, &bv); err == nil {
			return int(rv) * 17, int(gv) * 17, int(bv) * 17
		}
	}
	return 0x33, 0x88, 0xff
}

func drawCommand(dc *gg.Context, p projection, cmd render.DrawCommand) {
	dc.SetLineWidth(2)
	switch cmd.Op {
	case render.KindPolygon:
		for i, ll := range cmd.LatLngs {
			x, y := p.point(ll)
			if i == 0 {
				dc.MoveTo(x, y)
			} else {
				dc.LineTo(x, y)
			}
		}
		dc.ClosePath()
		setColor(dc, cmd.Color, 0.2)
		dc.FillPreserve()
		setColor(dc, cmd.Color, 1)
		dc.Stroke()
	case render.KindCircle:
		x, y := p.point(cmd.LatLngs[0])
		dc.DrawCircle(x, y, p.meters(cmd.Radius))
		setColor(dc, cmd.Color, 0.2)
		dc.FillPreserve()
		setColor(dc, cmd.Color, 1)
		dc.Stroke()
	case render.KindPolyline:
		for i, ll := range cmd.LatLngs {
			x, y := p.point(ll)
			if i == 0 {
				dc.MoveTo(x, y)
			} else {
				dc.LineTo(x, y)
			}
		}
		setColor(dc, cmd.Color, 1)
		dc.SetLineWidth(3)
		dc.Stroke()
	case render.KindMarker:
		x, y := p.point(cmd.LatLngs[0])
		dc.DrawCircle(x, y, 5)
		setColor(dc, cmd.Color, 1)
		dc.Fill()
	}
}

func drawLabel(dc *gg.Context, p projection, cmd render.DrawCommand) {
	if cmd.Tooltip == "" {
		return
	}
	anchor := geo.BoundsOf(cmd.LatLngs...).Center()
	if cmd.Op == render.KindPolyline {
		anchor = cmd.LatLngs[0]
	}
	x, y := p.point(anchor)
	if cmd.Op == render.KindMarker {
		y -= 12
	}
	dc.SetColor(color.Black)
	dc.DrawStringAnchored(cmd.Tooltip, x, y, 0.5, 0.5)
}
