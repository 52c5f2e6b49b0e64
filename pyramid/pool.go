package pyramid

import (
	"github.com/sugarme/gotch/nn"
	ts "github.com/sugarme/gotch/tensor"

	"github.com/vantng/pyrseg/base"
)

// PoolBlock is the SPPF aggregator: project to half width, max-pool with
// stride 1 and same-size padding, concatenate pre- and post-pool tensors and
// project back to the input width. Spatial size is unchanged throughout.
type PoolBlock struct {
	reduce  *nn.SequentialT
	project *nn.SequentialT
	ksize   int64
}

// NewPoolBlock creates a PoolBlock over c channels with a ksize pooling
// window. The final projection width is sized from the actual concatenation:
// two branches of c/2 channels each.
func NewPoolBlock(p *nn.Path, c, ksize int64) *PoolBlock {
	half := c / 2

	return &PoolBlock{
		reduce:  base.ConvBlock(p.Sub("reduce"), c, half, 1, 1),
		project: base.ConvBlock(p.Sub("project"), half*2, c, 1, 1),
		ksize:   ksize,
	}
}

// ForwardT implements ts.ModuleT for PoolBlock.
func (b *PoolBlock) ForwardT(x *ts.Tensor, train bool) *ts.Tensor {
	pad := b.ksize / 2
	pre := b.reduce.ForwardT(x, train)
	pooled := pre.MustMaxPool2d([]int64{b.ksize, b.ksize}, []int64{1, 1}, []int64{pad, pad}, []int64{1, 1}, false, false)
	cat := ts.MustCat([]ts.Tensor{*pre, *pooled}, 1)
	pre.MustDrop()
	pooled.MustDrop()
	res := b.project.ForwardT(cat, train)
	cat.MustDrop()

	return res
}
