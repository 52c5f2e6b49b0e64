package pyramid

import (
	"fmt"

	"github.com/sugarme/gotch/nn"
	ts "github.com/sugarme/gotch/tensor"

	"github.com/vantng/pyrseg/base"
)

// FeatureExtractor produces one feature map per stage, in stage order. The
// caller owns the returned tensors and must drop them.
type FeatureExtractor interface {
	ForwardAll(x *ts.Tensor, train bool) []*ts.Tensor
}

// Backbone is the fixed downsampling pipeline built from backboneTable. Every
// stage output - downsample, fusion and pooling stages alike - is cached in
// pipeline order so the head can address specific entries.
type Backbone struct {
	stages []ts.ModuleT
	specs  []StageSpec
	index  map[string]int
}

// NewBackbone builds the backbone with fusion repeat counts scaled by
// depthMultiplier.
func NewBackbone(p *nn.Path, depthMultiplier float64) (*Backbone, error) {
	if err := validateBackbone(backboneTable); err != nil {
		return nil, err
	}

	stages := make([]ts.ModuleT, 0, len(backboneTable))
	index := make(map[string]int, len(backboneTable))
	for i, s := range backboneTable {
		var m ts.ModuleT
		switch s.Kind {
		case kindDownsample:
			m = base.ConvBlock(p.Sub(s.Name), s.CIn, s.COut, s.Ksize, s.Stride)
		case kindFusion:
			m = NewFusionBlock(p.Sub(s.Name), s.COut, repeatCount(s.Repeat, depthMultiplier), true)
		case kindPool:
			m = NewPoolBlock(p.Sub(s.Name), s.COut, s.Ksize)
		default:
			return nil, fmt.Errorf("%w: stage %q has unknown kind %v", ErrConfig, s.Name, s.Kind)
		}
		stages = append(stages, m)
		index[s.Name] = i
	}

	return &Backbone{stages: stages, specs: backboneTable, index: index}, nil
}

// ForwardAll implements FeatureExtractor for Backbone. The returned slice is
// the per-invocation feature cache, one entry per stage.
func (b *Backbone) ForwardAll(x *ts.Tensor, train bool) []*ts.Tensor {
	features := make([]*ts.Tensor, 0, len(b.stages))
	cur := x
	for _, stage := range b.stages {
		cur = stage.ForwardT(cur, train)
		features = append(features, cur)
	}

	return features
}

// Stage resolves a stage name to its cache position and output width.
func (b *Backbone) Stage(name string) (pos int, channels int64, err error) {
	i, ok := b.index[name]
	if !ok {
		return 0, 0, fmt.Errorf("%w: no backbone stage named %q", ErrConfig, name)
	}
	return i, b.specs[i].COut, nil
}

// Len returns the number of backbone stages (the feature cache length).
func (b *Backbone) Len() int {
	return len(b.stages)
}

// OutChannels returns the channel width of the final stage.
func (b *Backbone) OutChannels() int64 {
	return b.specs[len(b.specs)-1].COut
}
