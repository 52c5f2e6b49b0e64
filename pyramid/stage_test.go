package pyramid

import "testing"

func TestRepeatCountClamp(t *testing.T) {
	multipliers := []float64{0.01, 0.1, 0.25, 0.33, 0.5, 1.0, 1.33}
	for _, dm := range multipliers {
		for _, base := range []int{3, 6} {
			if n := repeatCount(base, dm); n < 1 {
				t.Errorf("repeatCount(%v, %v) = %v, want >= 1", base, dm, n)
			}
		}
	}
}

func TestRepeatCountReference(t *testing.T) {
	// depth multiplier 0.33: round(3*0.33)=1, round(6*0.33)=2
	if n := repeatCount(3, 0.33); n != 1 {
		t.Errorf("repeatCount(3, 0.33) = %v, want 1", n)
	}
	if n := repeatCount(6, 0.33); n != 2 {
		t.Errorf("repeatCount(6, 0.33) = %v, want 2", n)
	}
}

func TestHiddenWidth(t *testing.T) {
	cases := map[int64]int64{128: 32, 256: 64, 512: 128, 768: 192, 1024: 256}
	for c, want := range cases {
		if got := hiddenWidth(c); got != want {
			t.Errorf("hiddenWidth(%v) = %v, want %v", c, got, want)
		}
	}
}

func TestValidateBackboneTable(t *testing.T) {
	if err := validateBackbone(backboneTable); err != nil {
		t.Errorf("architecture table failed validation: %v", err)
	}
}

func TestValidateBackboneBrokenChain(t *testing.T) {
	broken := make([]StageSpec, len(backboneTable))
	copy(broken, backboneTable)
	broken[3].CIn = 100

	if err := validateBackbone(broken); err == nil {
		t.Error("expected validation error for broken channel chain, got nil")
	}
}

func TestHeadTableConcatWidths(t *testing.T) {
	// Every fuse step's declared input width must equal the sum of the
	// running width and its skip feature's width.
	widths := make(map[string]int64)
	for _, s := range backboneTable {
		widths[s.Name] = s.COut
	}

	cur := backboneTable[len(backboneTable)-1].COut
	for _, step := range headTable {
		skipCh, ok := widths[step.Skip]
		if !ok {
			t.Fatalf("head step %q references unknown stage %q", step.Name, step.Skip)
		}
		if cur+skipCh != step.CIn {
			t.Errorf("head step %q: declared %v input channels, concatenation yields %v", step.Name, step.CIn, cur+skipCh)
		}
		cur = step.COut
	}

	if cur != 256 {
		t.Errorf("head output width = %v, want 256", cur)
	}
}
