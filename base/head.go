package base

import "github.com/sugarme/gotch/nn"

// NewSegmentationHead creates the output projection: a pointwise Conv2D with
// bias mapping feature channels to per-class score channels. No activation -
// the scores are raw logits.
func NewSegmentationHead(p *nn.Path, cIn, classCount int64) *nn.Conv2D {
	return Conv2d(p, cIn, classCount, 1, 0, 1)
}
