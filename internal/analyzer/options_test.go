package analyzer

import "testing"

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()

	if opts.Force || opts.SkipEnhancement || opts.SkipUpscale {
		t.Errorf("Expected every stage enabled and blocking by default, got %+v", opts)
	}
}

func TestOptionBuilders_ReturnCopies(t *testing.T) {
	base := DefaultOptions()
	forced := base.WithForce(true).WithoutEnhancement().WithoutUpscale()

	if !forced.Force || !forced.SkipEnhancement || !forced.SkipUpscale {
		t.Errorf("Expected builders to set all flags, got %+v", forced)
	}
	if base.Force || base.SkipEnhancement || base.SkipUpscale {
		t.Errorf("Expected base options to be unchanged, got %+v", base)
	}
}
