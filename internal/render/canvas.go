package render

import "sort"

// Canvas is a braille raster: each terminal cell holds a 2x4 grid of
// micro-pixels.
type Canvas struct {
	w, h int       // in cells
	m    [][]uint8 // per-cell 8-bit mask
}

func NewCanvas(w, h int) *Canvas {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	m := make([][]uint8, h)
	for i := range m {
		m[i] = make([]uint8, w)
	}
	return &Canvas{w: w, h: h, m: m}
}

// Size returns the canvas size in micro-pixels.
func (c *Canvas) Size() (int, int) { return c.w * 2, c.h * 4 }

// Cells returns the canvas size in terminal cells.
func (c *Canvas) Cells() (int, int) { return c.w, c.h }

var brailleBits = [2][4]uint8{
	{0x01, 0x02, 0x04, 0x40},
	{0x08, 0x10, 0x20, 0x80},
}

// Set sets a micro-pixel.
func (c *Canvas) Set(mx, my int) {
	if mx < 0 || my < 0 {
		return
	}
	cx, cy := mx/2, my/4
	if cy >= c.h || cx >= c.w {
		return
	}
	c.m[cy][cx] |= brailleBits[mx%2][my%4]
}

// Line draws a Bresenham line on the micro grid.
func (c *Canvas) Line(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	dy := -absInt(y1 - y0)
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx + dy
	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
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

// Fill paints the interior of rings with the even-odd rule, so inner rings
// punch holes.
func (c *Canvas) Fill(rings [][][2]int) {
	_, hMic := c.Size()
	minY, maxY := hMic, -1
	for _, r := range rings {
		for _, p := range r {
			minY = min(minY, p[1])
			maxY = max(maxY, p[1])
		}
	}
	minY = max(minY, 0)
	maxY = min(maxY, hMic-1)
	wMic, _ := c.Size()
	var xs []int
	for y := minY; y <= maxY; y++ {
		xs = xs[:0]
		for _, r := range rings {
			for i := range r {
				a, b := r[i], r[(i+1)%len(r)]
				if a[1] == b[1] {
					continue
				}
				if (y >= a[1] && y < b[1]) || (y >= b[1] && y < a[1]) {
					t := float64(y-a[1]) / float64(b[1]-a[1])
					xs = append(xs, a[0]+int(t*float64(b[0]-a[0])))
				}
			}
		}
		sort.Ints(xs)
		for i := 0; i+1 < len(xs); i += 2 {
			for x := max(0, xs[i]); x <= xs[i+1] && x < wMic; x++ {
				c.Set(x, y)
			}
		}
	}
}

// Outline strokes each ring as a closed path.
func (c *Canvas) Outline(rings [][][2]int) {
	for _, r := range rings {
		for i := range r {
			a, b := r[i], r[(i+1)%len(r)]
			c.Line(a[0], a[1], b[0], b[1])
		}
	}
}

// Mask returns the braille mask of a cell; zero means empty.
func (c *Canvas) Mask(cx, cy int) uint8 {
	if cx < 0 || cy < 0 || cy >= c.h || cx >= c.w {
		return 0
	}
	return c.m[cy][cx]
}

// Lines renders the canvas as one string per cell row.
func (c *Canvas) Lines() []string {
	out := make([]string, c.h)
	for y := 0; y < c.h; y++ {
		row := make([]rune, c.w)
		for x := 0; x < c.w; x++ {
			row[x] = Glyph(c.m[y][x])
		}
		out[y] = string(row)
	}
	return out
}

// Glyph returns the braille rune for a mask, or a space when empty.
func Glyph(mask uint8) rune {
	if mask == 0 {
		return ' '
	}
	return rune(0x2800 + int(mask))
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
