package pyramid

import (
	"errors"
	"fmt"
	"log"

	"github.com/sugarme/gotch/nn"
	ts "github.com/sugarme/gotch/tensor"

	"github.com/vantng/pyrseg/base"
)

var (
	// ErrConfig reports invalid construction parameters or an inconsistent
	// stage table. Raised at construction, before any forward pass.
	ErrConfig = errors.New("pyramid: invalid configuration")
	// ErrShape reports an input tensor incompatible with the graph.
	ErrShape = errors.New("pyramid: shape mismatch")
)

const inputChannels = 3

// Net is the full segmentation model: backbone, top-down head, and output
// projection. Learned parameters and stage configuration are read-only after
// construction; every forward call allocates its own intermediates, so
// concurrent passes over one Net are safe.
type Net struct {
	backbone *Backbone
	head     *Head
	project  ts.Module
}

// New builds a Net producing classCount score channels, with fusion-block
// depths scaled by depthMultiplier.
func New(p *nn.Path, classCount int64, depthMultiplier float64) (*Net, error) {
	if classCount <= 0 {
		return nil, fmt.Errorf("%w: class count must be positive, got %v", ErrConfig, classCount)
	}
	if depthMultiplier <= 0 {
		return nil, fmt.Errorf("%w: depth multiplier must be positive, got %v", ErrConfig, depthMultiplier)
	}

	bb, err := NewBackbone(p.Sub("backbone"), depthMultiplier)
	if err != nil {
		return nil, err
	}
	head, err := NewHead(p.Sub("head"), bb)
	if err != nil {
		return nil, err
	}
	project := base.NewSegmentationHead(p.Sub("logit"), head.OutChannels(), classCount)

	return &Net{backbone: bb, head: head, project: project}, nil
}

// DefaultNet creates a Net with the reference configuration: 80 classes,
// depth multiplier 0.33.
func DefaultNet(p *nn.Path) *Net {
	net, err := New(p, 80, 0.33)
	if err != nil {
		log.Fatal(err)
	}

	return net
}

// ForwardT implements ts.ModuleT for Net. Input is NCHW with 3 channels; the
// output score map is at 1/8 input resolution.
func (n *Net) ForwardT(x *ts.Tensor, train bool) *ts.Tensor {
	features := n.backbone.ForwardAll(x, train)
	out := n.head.ForwardFeatures(features, train)
	logit := out.Apply(n.project)

	for _, f := range features {
		f.MustDrop()
	}
	out.MustDrop()

	return logit
}

// Forward runs one inference pass, validating the input contract first.
func (n *Net) Forward(x *ts.Tensor) (*ts.Tensor, error) {
	size := x.MustSize()
	if len(size) != 4 {
		return nil, fmt.Errorf("%w: expected NCHW input, got %v dimensions", ErrShape, len(size))
	}
	if size[1] != inputChannels {
		return nil, fmt.Errorf("%w: stem expects %v input channels, got %v", ErrShape, inputChannels, size[1])
	}

	return n.ForwardT(x, false), nil
}
