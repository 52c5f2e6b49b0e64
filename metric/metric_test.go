package metric_test

import (
	"math"
	"testing"

	ts "github.com/sugarme/gotch/tensor"

	"github.com/vantng/pyrseg/metric"
)

func near(got, want float64) bool {
	return math.Abs(got-want) < 0.01
}

func masks() (pred, target *ts.Tensor) {
	pslice := []int64{1, 0, 0, 1, 0, 0, 1, 0, 0}
	tslice := []int64{1, 0, 0, 1, 1, 0, 1, 0, 0}

	pred = ts.MustOfSlice(pslice).MustView([]int64{1, 3, 3}, true)
	target = ts.MustOfSlice(tslice).MustView([]int64{1, 3, 3}, true)
	return pred, target
}

func TestDiceCoeff(t *testing.T) {
	pred, target := masks()
	defer pred.MustDrop()
	defer target.MustDrop()

	// overlap 3, sizes 3 and 4: 2*3/7
	if got := metric.DiceCoeff(pred, target); !near(got, 0.8571) {
		t.Errorf("DiceCoeff = %0.4f, want 0.8571", got)
	}
}

func TestIoU(t *testing.T) {
	pred, target := masks()
	defer pred.MustDrop()
	defer target.MustDrop()

	// intersection 3, union 4
	if got := metric.IoU(pred, target); !near(got, 0.7500) {
		t.Errorf("IoU = %0.4f, want 0.7500", got)
	}
}

func TestJaccardIndex(t *testing.T) {
	pred, target := masks()
	defer pred.MustDrop()
	defer target.MustDrop()

	// class 0: 5/6, class 1: 3/4
	if got := metric.JaccardIndex(pred, target, 2); !near(got, 0.7917) {
		t.Errorf("JaccardIndex = %0.4f, want 0.7917", got)
	}
}

func TestPixelAccuracy(t *testing.T) {
	pred, target := masks()
	defer pred.MustDrop()
	defer target.MustDrop()

	// 8 of 9 pixels agree
	if got := metric.PixelAccuracy(pred, target); !near(got, 0.8889) {
		t.Errorf("PixelAccuracy = %0.4f, want 0.8889", got)
	}
}
