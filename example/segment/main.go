package main

import (
	"flag"
	"fmt"
	"log"
	"path/filepath"

	"github.com/sugarme/gotch"
)

// flag variables
var (
	ImagePath string
	ModelPath string
	OutDir    string
	Cuda      bool
	task      string
	Device    gotch.Device
)

// model configuration
var (
	Classes   int64   // number of segmentation classes
	Depth     float64 // depth multiplier
	ImageSize int     // model input resolution
)

func init() {
	flag.StringVar(&ImagePath, "image", "./input.png", "specify input image (png, jpeg or tiff)")
	flag.StringVar(&ModelPath, "model", "", "specify full path to model weight '.ot' file")
	flag.StringVar(&OutDir, "out", ".", "specify output directory")
	flag.BoolVar(&Cuda, "cuda", false, "specify whether using CUDA or not")
	flag.StringVar(&task, "task", "segment", "specify task to run")
	flag.Int64Var(&Classes, "classes", 80, "specify number of segmentation classes")
	flag.Float64Var(&Depth, "depth", 0.33, "specify depth multiplier")
	flag.IntVar(&ImageSize, "size", 640, "specify model input resolution")
}

func main() {
	flag.Parse()

	ImagePath = absPath(ImagePath)
	OutDir = absPath(OutDir)

	Device = gotch.CPU
	if Cuda {
		Device = gotch.NewCuda().CudaIfAvailable()
	}

	switch task {
	case "model":
		runCheckModel()
	case "segment":
		runSegment()
	case "stats":
		runStats()
	default:
		err := fmt.Errorf("Unknown 'task' name. Please specify valid 'task' flag to run.\n")
		panic(err)
	}
}

// helper to get absolute file path
func absPath(p string) string {
	fullpath, err := filepath.Abs(p)
	if err != nil {
		log.Fatal(err)
	}
	return fullpath
}
