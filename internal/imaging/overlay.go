package imaging

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/docscan/internal/geometry"
)

// DefaultOverlayColor is the outline colour used when none is given.
const DefaultOverlayColor = "#00ff00"

// cornerLabels names the corner roles in OrderCorners order.
var cornerLabels = [4]string{"TL", "BL", "BR", "TR"}

// DrawQuad returns a copy of img with q outlined, its interior tinted and each
// vertex labelled with its corner role. q must be in role order
// (top-left, bottom-left, bottom-right, top-right) for the labels to be right.
//
// hexColor accepts "#rgb" or "#rrggbb"; anything else falls back to
// DefaultOverlayColor.
func DrawQuad(img image.Image, q geometry.Quad, hexColor string) *image.NRGBA {
	line, err := colorful.Hex(hexColor)
	if err != nil {
		line, _ = colorful.Hex(DefaultOverlayColor)
	}

	out := imaging.Clone(img)
	b := out.Bounds()

	tintQuad(out, q, line, 0.25)
	for i := range q {
		drawSegment(out, q[i], q[(i+1)%4], line, 2)
	}

	fg := color.NRGBA{255, 255, 255, 255}
	bg := color.NRGBA{0, 0, 0, 180}
	for i, p := range q {
		x := clampInt(int(p.X)+3, 0, b.Dx()-1)
		y := clampInt(int(p.Y)+3, 0, b.Dy()-1)
		drawLabel(out, x, y, cornerLabels[i], fg, bg)
	}
	return out
}

// tintQuad blends every pixel inside q toward tint in Lab space.
func tintQuad(img *image.NRGBA, q geometry.Quad, tint colorful.Color, amount float64) {
	minX, minY, maxX, maxY := quadBounds(q, img.Bounds())
	for y := minY; y < maxY; y++ {
		for x := minX; x < maxX; x++ {
			if !insideQuad(q, float64(x)+0.5, float64(y)+0.5) {
				continue
			}
			c := img.NRGBAAt(x, y)
			base, ok := colorful.MakeColor(c)
			if !ok {
				continue
			}
			r, g, bl := base.BlendLab(tint, amount).Clamped().RGB255()
			img.SetNRGBA(x, y, color.NRGBA{R: r, G: g, B: bl, A: c.A})
		}
	}
}

// drawSegment draws a line of the given thickness from a to b.
func drawSegment(img *image.NRGBA, a, b geometry.Point, c colorful.Color, thickness int) {
	r, g, bl := c.Clamped().RGB255()
	px := color.NRGBA{R: r, G: g, B: bl, A: 255}
	bounds := img.Bounds()

	steps := int(math.Ceil(geometry.Distance(a, b)))
	if steps == 0 {
		steps = 1
	}
	half := thickness / 2
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		cx := int(math.Round(a.X + (b.X-a.X)*t))
		cy := int(math.Round(a.Y + (b.Y-a.Y)*t))
		for dy := -half; dy < thickness-half; dy++ {
			for dx := -half; dx < thickness-half; dx++ {
				x, y := cx+dx, cy+dy
				if x >= bounds.Min.X && x < bounds.Max.X && y >= bounds.Min.Y && y < bounds.Max.Y {
					img.SetNRGBA(x, y, px)
				}
			}
		}
	}
}

func quadBounds(q geometry.Quad, r image.Rectangle) (minX, minY, maxX, maxY int) {
	fx0, fy0 := math.Inf(1), math.Inf(1)
	fx1, fy1 := math.Inf(-1), math.Inf(-1)
	for _, p := range q {
		fx0, fy0 = math.Min(fx0, p.X), math.Min(fy0, p.Y)
		fx1, fy1 = math.Max(fx1, p.X), math.Max(fy1, p.Y)
	}
	minX = clampInt(int(math.Floor(fx0)), r.Min.X, r.Max.X)
	minY = clampInt(int(math.Floor(fy0)), r.Min.Y, r.Max.Y)
	maxX = clampInt(int(math.Ceil(fx1))+1, r.Min.X, r.Max.X)
	maxY = clampInt(int(math.Ceil(fy1))+1, r.Min.Y, r.Max.Y)
	return
}

// insideQuad reports whether (x, y) lies inside the convex quad q, edges included.
func insideQuad(q geometry.Quad, x, y float64) bool {
	sign := 0.0
	for i := range q {
		a, b := q[i], q[(i+1)%4]
		cross := (b.X-a.X)*(y-a.Y) - (b.Y-a.Y)*(x-a.X)
		if cross == 0 {
			continue
		}
		if sign == 0 {
			sign = cross
		} else if (cross > 0) != (sign > 0) {
			return false
		}
	}
	return true
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// drawLabel draws text in a 3x5 pixel font on a filled background box.
func drawLabel(img *image.NRGBA, x, y int, text string, fg, bg color.NRGBA) {
	glyphs := map[rune][]string{
		'B': {"110", "101", "110", "101", "110"},
		'L': {"100", "100", "100", "100", "111"},
		'R': {"110", "101", "110", "101", "101"},
		'T': {"111", "010", "010", "010", "010"},
		'0': {"111", "101", "101", "101", "111"},
		'1': {"010", "110", "010", "010", "111"},
		'2': {"111", "001", "111", "100", "111"},
		'3': {"111", "001", "111", "001", "111"},
	}

	bounds := img.Bounds()
	charWidth := 4
	labelWidth := len(text) * charWidth
	labelHeight := 7

	for dy := -1; dy < labelHeight; dy++ {
		for dx := -1; dx < labelWidth; dx++ {
			px, py := x+dx, y+dy
			if px >= bounds.Min.X && px < bounds.Max.X && py >= bounds.Min.Y && py < bounds.Max.Y {
				img.SetNRGBA(px, py, bg)
			}
		}
	}

	cx := x
	for _, ch := range text {
		glyph, ok := glyphs[ch]
		if !ok {
			cx += charWidth
			continue
		}
		for row, line := range glyph {
			for col, pixel := range line {
				if pixel == '1' {
					px, py := cx+col, y+row
					if px >= bounds.Min.X && px < bounds.Max.X && py >= bounds.Min.Y && py < bounds.Max.Y {
						img.SetNRGBA(px, py, fg)
					}
				}
			}
		}
		cx += charWidth
	}
}
