package pyramid_test

import (
	"testing"

	"github.com/sugarme/gotch"
	"github.com/sugarme/gotch/nn"
	ts "github.com/sugarme/gotch/tensor"

	"github.com/vantng/pyrseg/pyramid"
)

func TestBackboneFeatureCache(t *testing.T) {
	vs := nn.NewVarStore(gotch.CPU)
	bb, err := pyramid.NewBackbone(vs.Root(), 0.33)
	if err != nil {
		t.Fatal(err)
	}

	image := ts.MustRand([]int64{1, 3, 640, 640}, gotch.Float, gotch.CPU)
	defer image.MustDrop()

	features := bb.ForwardAll(image, false)
	defer func() {
		for _, f := range features {
			f.MustDrop()
		}
	}()

	if len(features) != bb.Len() {
		t.Fatalf("feature cache has %v entries, want %v", len(features), bb.Len())
	}

	// six stride-2 stages: 640 / 64 = 10
	last := features[len(features)-1].MustSize()
	want := []int64{1, 1024, 10, 10}
	for i := range want {
		if last[i] != want[i] {
			t.Fatalf("final feature shape = %v, want %v", last, want)
		}
	}
}

func TestBackboneSkipStages(t *testing.T) {
	vs := nn.NewVarStore(gotch.CPU)
	bb, err := pyramid.NewBackbone(vs.Root(), 1.0)
	if err != nil {
		t.Fatal(err)
	}

	// The head's lateral features come from post-fusion entries; their
	// widths anchor the concatenation arithmetic.
	for name, wantCh := range map[string]int64{"fuse3": 256, "fuse4": 512, "fuse5": 768} {
		_, ch, err := bb.Stage(name)
		if err != nil {
			t.Fatalf("stage %q: %v", name, err)
		}
		if ch != wantCh {
			t.Errorf("stage %q width = %v, want %v", name, ch, wantCh)
		}
	}

	if _, _, err := bb.Stage("nope"); err == nil {
		t.Error("unknown stage name should fail")
	}
}
