package analyzer

// PreprocessOptions controls which preprocessing stages run for a document
type PreprocessOptions struct {
	// Force continues past a failed quality gate, recording the issues as warnings
	Force bool

	SkipEnhancement bool
	SkipUpscale     bool
}

// DefaultOptions runs every stage and blocks on quality rejection
func DefaultOptions() PreprocessOptions {
	return PreprocessOptions{}
}

// WithForce returns a copy that does not block on quality rejection
func (o PreprocessOptions) WithForce(force bool) PreprocessOptions {
	o.Force = force
	return o
}

// WithoutEnhancement returns a copy that skips the enhancement stage
func (o PreprocessOptions) WithoutEnhancement() PreprocessOptions {
	o.SkipEnhancement = true
	return o
}

// WithoutUpscale returns a copy that skips the upscaler
func (o PreprocessOptions) WithoutUpscale() PreprocessOptions {
	o.SkipUpscale = true
	return o
}
