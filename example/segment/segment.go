package main

import (
	"fmt"
	"log"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/sugarme/gotch"
	"github.com/sugarme/gotch/nn"
	ts "github.com/sugarme/gotch/tensor"

	"github.com/vantng/pyrseg/pyramid"
)

func runCheckModel() {
	vs := nn.NewVarStore(Device)
	net := pyramid.DefaultNet(vs.Root())

	image := ts.MustRand([]int64{1, 3, int64(ImageSize), int64(ImageSize)}, gotch.Float, Device)
	for i := 0; i < 10; i++ {
		ts.NoGrad(func() {
			logit := net.ForwardT(image, false)
			fmt.Printf("%02d - score map shape: %v\n", i, logit.MustSize())
			logit.MustDrop()
		})
	}
	image.MustDrop()
}

func runSegment() {
	src, err := readImage(ImagePath)
	if err != nil {
		log.Fatal(err)
	}

	vs := nn.NewVarStore(Device)
	net, err := pyramid.New(vs.Root(), Classes, Depth)
	if err != nil {
		log.Fatal(err)
	}
	if ModelPath != "" {
		if _, err := vs.LoadPartial(absPath(ModelPath)); err != nil {
			log.Fatal(err)
		}
		fmt.Printf("Model weights loaded from %v\n", ModelPath)
	}

	input := imageToTensor(src, ImageSize).MustTo(Device, true)

	var mask *ts.Tensor
	ts.NoGrad(func() {
		logit, err := net.Forward(input)
		if err != nil {
			log.Fatal(err)
		}
		// [1 classes H W] -> [H W] class ids
		mask = logit.MustArgmax(1, false, true).MustSqueeze1(0, true)
	})
	input.MustDrop()

	maskImg := maskToImage(mask)
	overlay := overlayMask(src, maskImg)

	maskPath := filepath.Join(OutDir, "mask.png")
	overlayPath := filepath.Join(OutDir, "overlay.png")
	if err := imaging.Save(maskImg, maskPath); err != nil {
		log.Fatal(err)
	}
	if err := imaging.Save(overlay, overlayPath); err != nil {
		log.Fatal(err)
	}

	statsPath := filepath.Join(OutDir, "stats.csv")
	if err := writeClassStats(mask, statsPath); err != nil {
		log.Fatal(err)
	}
	mask.MustDrop()

	fmt.Printf("Saved %v, %v and %v\n", maskPath, overlayPath, statsPath)
}
