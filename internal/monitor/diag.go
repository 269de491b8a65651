package monitor

type Severity string

const (
	Info Severity = "info"
	Warn Severity = "warning"
	Err  Severity = "error"
)

type Diagnostic struct {
	Severity       Severity       `json:"severity"`
	Code           string         `json:"code"`
	Summary        string         `json:"summary"`
	Detail         string         `json:"detail,omitempty"`
	LikelyCauses   []string       `json:"likely_causes,omitempty"`
	SuggestedFixes []string       `json:"suggested_fixes,omitempty"`
	Evidence       map[string]any `json:"evidence,omitempty"`
}

// Inspect turns a latch report into diagnostics. A clean frame yields none.
func Inspect(length int, r Report) []Diagnostic {
	var out []Diagnostic
	if r.Pixels < length {
		out = append(out, Diagnostic{
			Severity: Warn,
			Code:     "FRAME.SHORT",
			Summary:  "Strip latched before every pixel was written",
			LikelyCauses: []string{
				"latch gap inserted mid-frame",
				"producer stalled longer than the reset time",
			},
			SuggestedFixes: []string{"raise fifo depth", "lower the sequencer frequency"},
			Evidence:       map[string]any{"frame": r.Frame, "pixels": r.Pixels, "length": length},
		})
	}
	if r.Overflow > 0 {
		out = append(out, Diagnostic{
			Severity:       Warn,
			Code:           "FRAME.OVERFLOW",
			Summary:        "More words than pixels before the latch",
			LikelyCauses:   []string{"latch gap shorter than the strip reset time"},
			SuggestedFixes: []string{"check the latch setting is at least 50us"},
			Evidence:       map[string]any{"frame": r.Frame, "overflow": r.Overflow},
		})
	}
	if r.TrailingBits > 0 {
		out = append(out, Diagnostic{
			Severity: Err,
			Code:     "FRAME.PARTIAL_WORD",
			Summary:  "Line went quiet in the middle of a word",
			Evidence: map[string]any{"frame": r.Frame, "bits": r.TrailingBits},
		})
	}
	return out
}
