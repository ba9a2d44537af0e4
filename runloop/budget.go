package runloop

// DefaultMaxIterations bounds a run when the caller does not set a limit.
const DefaultMaxIterations = 10

// OutputTokenCeiling is the platform-wide cap on output tokens per model
// call, regardless of how verbose a skill estimates itself to be.
const OutputTokenCeiling = 8192

// Budget is the immutable per-run iteration and token configuration.
type Budget struct {
	MaxIterations   int `json:"max_iterations"`
	MaxOutputTokens int `json:"max_output_tokens"`
}

// normalized fills in defaults for unset fields.
func (b Budget) normalized() Budget {
	if b.MaxIterations <= 0 {
		b.MaxIterations = DefaultMaxIterations
	}
	if b.MaxOutputTokens <= 0 {
		b.MaxOutputTokens = OutputTokenCeiling
	}
	return b
}

// OutputTokenBudget computes the per-call output token limit for a skill:
// twice its estimated token footprint, capped at OutputTokenCeiling. A
// non-positive estimate gets the full ceiling.
func OutputTokenBudget(skillEstimatedTokens int) int {
	if skillEstimatedTokens <= 0 {
		return OutputTokenCeiling
	}
	n := 2 * skillEstimatedTokens
	if n > OutputTokenCeiling {
		return OutputTokenCeiling
	}
	return n
}
