package pyramid

import (
	"fmt"

	"github.com/sugarme/gotch/nn"
	ts "github.com/sugarme/gotch/tensor"

	"github.com/vantng/pyrseg/base"
)

// FusionBlock is the C2f unit: reduce to a hidden width, transform through a
// chain of 3x3 conv blocks, then merge back by channel concatenation with the
// original input and project to the input width.
type FusionBlock struct {
	reduce  *nn.SequentialT
	chain   *nn.SequentialT
	project *nn.SequentialT
	skip    bool
}

// NewFusionBlock creates a channel-preserving FusionBlock over c channels
// with `repeat` sequential hidden conv blocks. With skip enabled the final
// projection consumes the original input concatenated with the chain output;
// without it, the chain output alone.
func NewFusionBlock(p *nn.Path, c int64, repeat int, skip bool) *FusionBlock {
	h := hiddenWidth(c)
	chain := nn.SeqT()
	for i := 0; i < repeat; i++ {
		chain.Add(base.ConvBlock(p.Sub(fmt.Sprintf("m%v", i)), h, h, 3, 1))
	}

	projIn := h
	if skip {
		projIn = c + h
	}

	return &FusionBlock{
		reduce:  base.ConvBlock(p.Sub("reduce"), c, h, 1, 1),
		chain:   chain,
		project: base.ConvBlock(p.Sub("project"), projIn, c, 1, 1),
		skip:    skip,
	}
}

// ForwardT implements ts.ModuleT for FusionBlock. Only the output of the
// whole chain feeds the concatenation, not per-block intermediates.
func (f *FusionBlock) ForwardT(x *ts.Tensor, train bool) *ts.Tensor {
	hidden := f.reduce.ForwardT(x, train)
	transformed := f.chain.ForwardT(hidden, train)
	hidden.MustDrop()

	var merged *ts.Tensor
	if f.skip {
		merged = ts.MustCat([]ts.Tensor{*x, *transformed}, 1)
		transformed.MustDrop()
	} else {
		merged = transformed
	}

	res := f.project.ForwardT(merged, train)
	merged.MustDrop()

	return res
}
