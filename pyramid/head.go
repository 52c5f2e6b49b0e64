package pyramid

import (
	"fmt"
	"log"
	"reflect"

	"github.com/sugarme/gotch/nn"
	ts "github.com/sugarme/gotch/tensor"

	"github.com/vantng/pyrseg/base"
)

// Head is the top-down pipeline: three rounds of nearest x2 upsample,
// concatenation with a cached backbone feature, and a 3x3 conv-block fuse,
// restoring resolution from the coarsest backbone output to P3 scale.
//
// Skip connections are declared by stage name in headTable and resolved to
// cache positions here - they draw from the post-fusion entries (fuse5,
// fuse4, fuse3), not from the downsample entry at the same resolution.
type Head struct {
	fuse     []*nn.SequentialT
	skipPos  []int
	cacheLen int
	outCh    int64
}

// NewHead builds the head against a constructed backbone, validating at each
// round that the declared fuse input width equals the sum of the running
// width and the skip feature's width.
func NewHead(p *nn.Path, bb *Backbone) (*Head, error) {
	fuse := make([]*nn.SequentialT, 0, len(headTable))
	skipPos := make([]int, 0, len(headTable))

	cur := bb.OutChannels()
	for _, step := range headTable {
		pos, skipCh, err := bb.Stage(step.Skip)
		if err != nil {
			return nil, err
		}
		if cur+skipCh != step.CIn {
			return nil, fmt.Errorf("%w: head step %q declares %v input channels but concatenating %v and %v yields %v",
				ErrConfig, step.Name, step.CIn, cur, skipCh, cur+skipCh)
		}
		fuse = append(fuse, base.ConvBlock(p.Sub(step.Name), step.CIn, step.COut, 3, 1))
		skipPos = append(skipPos, pos)
		cur = step.COut
	}

	return &Head{fuse: fuse, skipPos: skipPos, cacheLen: bb.Len(), outCh: cur}, nil
}

// OutChannels returns the channel width of the head's final feature map.
func (h *Head) OutChannels() int64 {
	return h.outCh
}

// interpolation using `nearest` algorithm, sized to the reference tensor
func upsample(x, ref *ts.Tensor) *ts.Tensor {
	xSize := x.MustSize()
	refSize := ref.MustSize()
	if reflect.DeepEqual(xSize[2:], refSize[2:]) {
		return x.MustDetach(false)
	}

	return x.MustUpsampleNearest2d(refSize[2:], nil, nil, false)
}

// ForwardFeatures forwards through the cached backbone features, coarsest
// first. The caller keeps ownership of the feature slice.
func (h *Head) ForwardFeatures(features []*ts.Tensor, train bool) *ts.Tensor {
	if len(features) != h.cacheLen {
		log.Fatalf("Expected feature cache of %v tensors. Got %v\n", h.cacheLen, len(features))
	}

	cur := features[len(features)-1]
	owned := false
	for i, fuse := range h.fuse {
		skip := features[h.skipPos[i]]
		up := upsample(cur, skip)
		if owned {
			cur.MustDrop()
		}
		cat := ts.MustCat([]ts.Tensor{*up, *skip}, 1)
		up.MustDrop()
		cur = fuse.ForwardT(cat, train)
		owned = true
		cat.MustDrop()
	}

	return cur
}
