package compute

import (
	"image"
	"math"

	"gonum.org/v1/gonum/floats"
)

// ErrorMeasure summarizes how far the raster is from the neutral value.
// Residuals are 127 minus each channel value.
type ErrorMeasure struct {
	Average    int `json:"average"`     // mean residual
	Variance   int `json:"variance"`    // mean squared deviation of per-pixel mean residuals
	MeanSquare int `json:"mean_square"` // mean squared residual
}

// Measure computes the error of an 8-bit raster snapshot. Values are rounded
// half up.
func Measure(img *image.RGBA) ErrorMeasure {
	b := img.Bounds()
	n := b.Dx() * b.Dy()
	if n == 0 {
		return ErrorMeasure{}
	}

	residuals := make([]float64, 0, 3*n)
	pixels := make([]float64, 0, n)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.Pix[img.PixOffset(b.Min.X, y):]
		for x := 0; x < b.Dx(); x++ {
			r := neutral - float64(row[4*x])
			g := neutral - float64(row[4*x+1])
			bl := neutral - float64(row[4*x+2])
			residuals = append(residuals, r, g, bl)
			pixels = append(pixels, (r+g+bl)/3)
		}
	}

	samples := float64(len(residuals))
	average := round(floats.Sum(residuals) / samples)
	meanSquare := round(floats.Dot(residuals, residuals) / samples)

	floats.AddConst(-average, pixels)
	variance := round(floats.Dot(pixels, pixels) / float64(n))

	return ErrorMeasure{
		Average:    int(average),
		Variance:   int(variance),
		MeanSquare: int(meanSquare),
	}
}

func round(x float64) float64 {
	return math.Floor(x + 0.5)
}
