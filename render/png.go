package render

import (
	"image/color"
	"image/png"
	"io"
	"math"

	"git.sr.ht/~sbinet/gg"
	"golang.org/x/image/font/basicfont"
)

// WritePNG rasterizes l and encodes it as PNG.
func WritePNG(w io.Writer, l *Layout) error {
	dc := gg.NewContext(l.Width, l.Height)
	dc.SetColor(color.White)
	dc.Clear()
	dc.SetFontFace(basicfont.Face7x13)

	if l.Title != "" {
		dc.SetColor(color.Black)
		dc.DrawStringAnchored(l.Title, 15, 15, 0, 0.5)
	}

	for _, r := range l.Ribbons {
		xm := (r.X0 + r.X1) / 2
		dc.SetColor(withAlpha(r.Color, 128))
		dc.SetLineWidth(math.Max(1, r.Width))
		dc.MoveTo(r.X0, r.Y0)
		dc.CubicTo(xm, r.Y0, xm, r.Y1, r.X1, r.Y1)
		dc.Stroke()
	}

	for _, n := range l.Nodes {
		dc.SetColor(withAlpha(n.Color, 204))
		dc.DrawRoundedRectangle(n.X, n.Y, n.W, math.Max(1, n.H), 4)
		dc.Fill()
	}

	dc.SetColor(color.Black)
	for _, n := range l.Nodes {
		x, anchor := labelPosition(l, n)
		ax := 0.0
		if anchor == "end" {
			ax = 1
		}
		dc.DrawStringAnchored(n.Name, x, n.Y+n.H/2, ax, 0.5)
	}

	return png.Encode(w, dc.Image())
}

func withAlpha(c color.RGBA, a uint8) color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: a}
}
