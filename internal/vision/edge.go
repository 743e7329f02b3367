package vision

import (
	"image"
	"math"
)

// canny performs Canny edge detection on a luminance plane.
//
// The plane is expected to be denoised already; no smoothing happens here.
//
//  1. Gradient: 3x3 Sobel operators, magnitude = sqrt(Gx² + Gy²) on 0-255 intensities.
//  2. Non-maximum suppression: keep only local maxima along the gradient direction.
//  3. Hysteresis: pixels at or above high are strong edges; pixels at or above low
//     survive only when 8-connected, directly or through other weak pixels, to a
//     strong edge.
//
// Border pixels use clamped (replicated) neighbours.
func canny(p plane, low, high float64) *image.Gray {
	w, h := p.w, p.h
	magnitude := make([]float64, w*h)
	direction := make([]float64, w*h)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var gx, gy float64
			for ky := -1; ky <= 1; ky++ {
				for kx := -1; kx <= 1; kx++ {
					v := float64(p.at(clamp(x+kx, 0, w-1), clamp(y+ky, 0, h-1)))
					gx += v * sobelX[ky+1][kx+1]
					gy += v * sobelY[ky+1][kx+1]
				}
			}
			magnitude[y*w+x] = math.Sqrt(gx*gx + gy*gy)
			direction[y*w+x] = math.Atan2(gy, gx)
		}
	}

	suppressed := make([]float64, w*h)
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			i := y*w + x
			angle := direction[i]
			mag := magnitude[i]

			var n1, n2 float64
			switch {
			case (angle >= -math.Pi/8 && angle < math.Pi/8) || angle >= 7*math.Pi/8 || angle < -7*math.Pi/8:
				n1, n2 = magnitude[i-1], magnitude[i+1]
			case (angle >= math.Pi/8 && angle < 3*math.Pi/8) || (angle >= -7*math.Pi/8 && angle < -5*math.Pi/8):
				n1, n2 = magnitude[i-w+1], magnitude[i+w-1]
			case (angle >= 3*math.Pi/8 && angle < 5*math.Pi/8) || (angle >= -5*math.Pi/8 && angle < -3*math.Pi/8):
				n1, n2 = magnitude[i-w], magnitude[i+w]
			default:
				n1, n2 = magnitude[i-w-1], magnitude[i+w+1]
			}

			if mag >= n1 && mag >= n2 {
				suppressed[i] = mag
			}
		}
	}

	out := image.NewGray(image.Rect(0, 0, w, h))
	stack := make([]int, 0, 64)
	for i, v := range suppressed {
		if v > 0 && v >= high && out.Pix[i] == 0 {
			out.Pix[i] = 255
			stack = append(stack, i)
		}
		for len(stack) > 0 {
			j := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			jx, jy := j%w, j/w
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					nx, ny := jx+dx, jy+dy
					if nx < 0 || nx >= w || ny < 0 || ny >= h {
						continue
					}
					k := ny*w + nx
					if out.Pix[k] == 0 && suppressed[k] > 0 && suppressed[k] >= low {
						out.Pix[k] = 255
						stack = append(stack, k)
					}
				}
			}
		}
	}
	return out
}

var (
	sobelX = [3][3]float64{
		{-1, 0, 1},
		{-2, 0, 2},
		{-1, 0, 1},
	}
	sobelY = [3][3]float64{
		{-1, -2, -1},
		{0, 0, 0},
		{1, 2, 1},
	}
)
