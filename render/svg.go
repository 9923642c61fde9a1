package render

import (
	"fmt"
	"image/color"
	"io"
	"math"

	svg "github.com/ajstarks/svgo"
)

// WriteSVG draws l as an SVG document.
func WriteSVG(w io.Writer, l *Layout) error {
	canvas := svg.New(w)
	canvas.Start(l.Width, l.Height)
	canvas.Rect(0, 0, l.Width, l.Height, "fill:#ffffff")

	if l.Title != "" {
		canvas.Title(l.Title)
		canvas.Text(15, 20, l.Title, "fill:#111827;font-size:16px;font-family:sans-serif;font-weight:bold")
	}

	canvas.Gstyle("fill:none;stroke-opacity:0.5")
	for _, r := range l.Ribbons {
		canvas.Path(ribbonPath(r), fmt.Sprintf("stroke:%s;stroke-width:%.2f", css(r.Color), math.Max(1, r.Width)))
	}
	canvas.Gend()

	for _, n := range l.Nodes {
		canvas.Roundrect(px(n.X), px(n.Y), px(n.W), px(math.Max(1, n.H)), 4, 4,
			fmt.Sprintf("fill:%s;fill-opacity:0.8", css(n.Color)))
	}

	for _, n := range l.Nodes {
		x, anchor := labelPosition(l, n)
		canvas.Text(px(x), px(n.Y+n.H/2)+4, n.Name,
			fmt.Sprintf("fill:#111827;font-size:12px;font-family:sans-serif;text-anchor:%s", anchor))
	}

	canvas.End()
	return nil
}

// ribbonPath is a horizontal cubic Bézier from source to target.
func ribbonPath(r Ribbon) string {
	xm := (r.X0 + r.X1) / 2
	return fmt.Sprintf("M%.2f,%.2f C%.2f,%.2f %.2f,%.2f %.2f,%.2f",
		r.X0, r.Y0, xm, r.Y0, xm, r.Y1, r.X1, r.Y1)
}

// labelPosition puts labels right of nodes in the left half of the canvas
// and left of nodes in the right half.
func labelPosition(l *Layout, n Node) (float64, string) {
	if n.X < float64(l.Width)/2 {
		return n.X + n.W + 6, "start"
	}
	return n.X - 6, "end"
}

func px(v float64) int { return int(math.Round(v)) }

func css(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
