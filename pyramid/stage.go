package pyramid

import (
	"fmt"
	"math"
)

type stageKind int

// The closed set of backbone stage variants. Every variant satisfies the
// ts.ModuleT contract once built.
const (
	kindDownsample stageKind = iota // strided conv-bn-relu
	kindFusion                      // channel-preserving fusion block (C2f)
	kindPool                        // multi-scale pooling aggregator (SPPF)
)

// StageSpec describes one backbone stage. The table below is the single
// source of truth for the architecture; it is validated once at construction
// and never mutated.
type StageSpec struct {
	Name   string
	Kind   stageKind
	CIn    int64
	COut   int64
	Ksize  int64
	Stride int64
	Repeat int // base repeat count, fusion stages only
}

// backboneTable is the fixed channel progression
// 3>64>128>C2f>256>C2f>512>C2f>768>C2f>1024>C2f>SPPF(1024), stride 2 on
// every plain conv and 1 elsewhere. Stage names double as skip-connection
// anchors for the head: skips draw from the fuse* entries, never from the
// down* entry at the same resolution.
var backboneTable = []StageSpec{
	{Name: "stem", Kind: kindDownsample, CIn: 3, COut: 64, Ksize: 3, Stride: 2},
	{Name: "down2", Kind: kindDownsample, CIn: 64, COut: 128, Ksize: 3, Stride: 2},
	{Name: "fuse2", Kind: kindFusion, CIn: 128, COut: 128, Stride: 1, Repeat: 3},
	{Name: "down3", Kind: kindDownsample, CIn: 128, COut: 256, Ksize: 3, Stride: 2},
	{Name: "fuse3", Kind: kindFusion, CIn: 256, COut: 256, Stride: 1, Repeat: 6},
	{Name: "down4", Kind: kindDownsample, CIn: 256, COut: 512, Ksize: 3, Stride: 2},
	{Name: "fuse4", Kind: kindFusion, CIn: 512, COut: 512, Stride: 1, Repeat: 6},
	{Name: "down5", Kind: kindDownsample, CIn: 512, COut: 768, Ksize: 3, Stride: 2},
	{Name: "fuse5", Kind: kindFusion, CIn: 768, COut: 768, Stride: 1, Repeat: 6},
	{Name: "down6", Kind: kindDownsample, CIn: 768, COut: 1024, Ksize: 3, Stride: 2},
	{Name: "fuse6", Kind: kindFusion, CIn: 1024, COut: 1024, Stride: 1, Repeat: 3},
	{Name: "sppf", Kind: kindPool, CIn: 1024, COut: 1024, Ksize: 5, Stride: 1},
}

// headStep describes one top-down round: upsample the running feature to the
// skip feature's resolution, concatenate, then fuse with a 3x3 conv block.
// CIn is declared rather than computed so the concatenation arithmetic can be
// cross-checked at construction.
type headStep struct {
	Name string
	Skip string // backbone stage supplying the lateral feature
	CIn  int64
	COut int64
}

var headTable = []headStep{
	{Name: "up5", Skip: "fuse5", CIn: 1792, COut: 768},
	{Name: "up4", Skip: "fuse4", CIn: 1280, COut: 512},
	{Name: "up3", Skip: "fuse3", CIn: 768, COut: 256},
}

// repeatCount scales a base repeat count by the depth multiplier, clamped so
// it can never reach zero.
func repeatCount(base int, depthMultiplier float64) int {
	n := int(math.Round(float64(base) * depthMultiplier))
	if n < 1 {
		n = 1
	}
	return n
}

// hiddenWidth is the fusion-block bottleneck width.
func hiddenWidth(c int64) int64 {
	return int64(math.Round(float64(c) * 0.25))
}

// validateBackbone checks that the stage table chains: each stage consumes
// exactly what the previous one produces, and channel-preserving stages
// preserve.
func validateBackbone(table []StageSpec) error {
	prev := table[0].CIn
	for _, s := range table {
		if s.CIn != prev {
			return fmt.Errorf("%w: stage %q expects %v input channels, upstream produces %v", ErrConfig, s.Name, s.CIn, prev)
		}
		if s.Kind != kindDownsample && s.CIn != s.COut {
			return fmt.Errorf("%w: stage %q must preserve channels, got %v->%v", ErrConfig, s.Name, s.CIn, s.COut)
		}
		prev = s.COut
	}
	return nil
}
