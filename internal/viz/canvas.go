package viz

import (
	"math"
	"strings"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const brailleBase = 0x2800

type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

// Set lights the sub-pixel (x, y). The canvas is (Width*2) x (Height*4)
// sub-pixels with y growing downward.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}

	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}

	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = brailleBase
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// DrawMarker draws a small cross centred on (x, y).
func (c *Canvas) DrawMarker(x, y int) {
	c.DrawLine(x-2, y, x+2, y)
	c.DrawLine(x, y-2, x, y+2)
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

// Viewport maps world coordinates onto canvas sub-pixels with the world
// y axis pointing up.
type Viewport struct {
	MinX, MaxX float64
	MinY, MaxY float64
	w, h       int
}

// Fit returns a viewport covering xs and ys with a small margin.
func Fit(c *Canvas, xs, ys []float64) Viewport {
	v := Viewport{
		MinX: math.Inf(1), MaxX: math.Inf(-1),
		MinY: math.Inf(1), MaxY: math.Inf(-1),
		w: c.Width * 2, h: c.Height * 4,
	}
	for i := range xs {
		v.MinX = math.Min(v.MinX, xs[i])
		v.MaxX = math.Max(v.MaxX, xs[i])
		v.MinY = math.Min(v.MinY, ys[i])
		v.MaxY = math.Max(v.MaxY, ys[i])
	}
	if len(xs) == 0 {
		v.MinX, v.MaxX, v.MinY, v.MaxY = 0, 1, 0, 1
	}
	if v.MaxX == v.MinX {
		v.MaxX = v.MinX + 1
	}
	if v.MaxY == v.MinY {
		v.MaxY = v.MinY + 1
	}
	pad := 0.05 * (v.MaxY - v.MinY)
	v.MinY -= pad
	v.MaxY += pad
	return v
}

func (v Viewport) Project(x, y float64) (int, int) {
	px := (x - v.MinX) / (v.MaxX - v.MinX) * float64(v.w-1)
	py := (v.MaxY - y) / (v.MaxY - v.MinY) * float64(v.h-1)
	return int(math.Round(px)), int(math.Round(py))
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
