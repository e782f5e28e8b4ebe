package compute_test

import (
	"fmt"
	"image"
	"image/color"
	"time"

	"github.com/matzehuels/threadart/pkg/core/compute"
	"github.com/matzehuels/threadart/pkg/core/pegs"
)

func Example() {
	img := image.NewGray(image.Rect(0, 0, 64, 64))
	for y := range 64 {
		for x := range 64 {
			img.SetGray(x, y, color.Gray{Y: uint8(4 * x)})
		}
	}

	c, err := compute.New(img, compute.Options{
		Shape:      pegs.Ellipse,
		PegSpacing: 40,
		Seed:       1,
	})
	if err != nil {
		panic(err)
	}

	c.SetTarget(50)
	if err := c.Run(20 * time.Millisecond); err != nil {
		panic(err)
	}

	ind := c.Indicators()
	fmt.Println("pegs:", ind.PegCount)
	fmt.Println("segments:", ind.SegmentCount)
	// Output:
	// pegs: 79
	// segments: 50
}
