package stream

import (
	"image"
	"image/color"
	"image/draw"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

var (
	boxColor   = color.RGBA{G: 255, A: 255}
	labelColor = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

const (
	boxThickness = 2
	labelOffset  = 10
)

// downscale returns frame shrunk by scale, anchored at the origin.
func downscale(frame image.Image, scale float64) image.Image {
	if scale == 1 {
		return frame
	}

	b := frame.Bounds()
	w := max(1, int(float64(b.Dx())*scale))
	h := max(1, int(float64(b.Dy())*scale))

	small := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.ApproxBiLinear.Scale(small, small.Bounds(), frame, b, xdraw.Src, nil)
	return small
}

// annotate draws a box around every face with its name above the box.
func annotate(img *image.RGBA, boxes []image.Rectangle, names []string) {
	for i, box := range boxes {
		drawBox(img, box)
		if i < len(names) {
			drawLabel(img, names[i], image.Pt(box.Min.X, box.Min.Y-labelOffset))
		}
	}
}

func drawBox(img *image.RGBA, box image.Rectangle) {
	fill := image.NewUniform(boxColor)
	t := boxThickness
	edges := []image.Rectangle{
		image.Rect(box.Min.X, box.Min.Y, box.Max.X, box.Min.Y+t),
		image.Rect(box.Min.X, box.Max.Y-t, box.Max.X, box.Max.Y),
		image.Rect(box.Min.X, box.Min.Y, box.Min.X+t, box.Max.Y),
		image.Rect(box.Max.X-t, box.Min.Y, box.Max.X, box.Max.Y),
	}
	for _, e := range edges {
		draw.Draw(img, e.Intersect(img.Bounds()), fill, image.Point{}, draw.Src)
	}
}

// drawLabel writes text with its baseline starting at dot.
func drawLabel(img *image.RGBA, text string, dot image.Point) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(labelColor),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(dot.X, dot.Y),
	}
	d.DrawString(text)
}
