package metric

import (
	"github.com/sugarme/gotch"
	ts "github.com/sugarme/gotch/tensor"
)

const eps = 0.001

// binarize flattens a mask tensor and thresholds it at 0.5.
func binarize(x *ts.Tensor) *ts.Tensor {
	flat := x.MustView([]int64{-1}, false)
	return flat.MustGt(ts.FloatScalar(0.5), true)
}

// DiceCoeff computes the Dice coefficient between a predicted and a target
// binary mask.
func DiceCoeff(pred, target *ts.Tensor) float64 {
	p := binarize(pred)
	t := binarize(target)
	ptMul := p.MustMul(t, false)
	overlap := ptMul.MustSum(gotch.Double, true).Float64Values()[0]
	total := p.MustSum(gotch.Double, true).Float64Values()[0] + t.MustSum(gotch.Double, true).Float64Values()[0]

	return (2 * overlap) / (total + eps)
}

// IoU computes intersection over union between a predicted and a target
// binary mask.
func IoU(pred, target *ts.Tensor) float64 {
	p := binarize(pred)
	t := binarize(target)
	ptMul := p.MustMul(t, false)
	overlap := ptMul.MustSum(gotch.Double, true).Float64Values()[0]
	pSum := p.MustSum(gotch.Double, true).Float64Values()[0]
	tSum := t.MustSum(gotch.Double, true).Float64Values()[0]

	return overlap / (pSum + tSum - overlap + eps)
}

// JaccardIndex computes the mean per-class IoU between predicted and target
// class masks over nclasses classes.
func JaccardIndex(pred, target *ts.Tensor, nclasses int64) float64 {
	pflat := pred.MustView([]int64{-1}, false)
	tflat := target.MustView([]int64{-1}, false)

	var sum float64
	for c := int64(0); c < nclasses; c++ {
		p := pflat.MustEq(ts.IntScalar(c), false).MustTotype(gotch.Double, true)
		t := tflat.MustEq(ts.IntScalar(c), false).MustTotype(gotch.Double, true)
		ptMul := p.MustMul(t, false)
		overlap := ptMul.MustSum(gotch.Double, true).Float64Values()[0]
		pSum := p.MustSum(gotch.Double, true).Float64Values()[0]
		tSum := t.MustSum(gotch.Double, true).Float64Values()[0]
		sum += overlap / (pSum + tSum - overlap + eps)
	}

	pflat.MustDrop()
	tflat.MustDrop()

	return sum / float64(nclasses)
}

// PixelAccuracy computes the fraction of pixels whose predicted class equals
// the target class.
func PixelAccuracy(pred, target *ts.Tensor) float64 {
	pflat := pred.MustView([]int64{-1}, false)
	tflat := target.MustView([]int64{-1}, false)
	eq := pflat.MustEq1(tflat, true).MustTotype(gotch.Double, true)
	tflat.MustDrop()

	return eq.MustMean(gotch.Double, true).Float64Values()[0]
}
