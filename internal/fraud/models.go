package fraud

// Flag is the three-level risk classification attached to a submission.
type Flag string

const (
	FlagGreen  Flag = "green"
	FlagYellow Flag = "yellow"
	FlagRed    Flag = "red"
)

// ValidFlag reports whether s is a known risk flag value.
func ValidFlag(s string) bool {
	switch Flag(s) {
	case FlagGreen, FlagYellow, FlagRed:
		return true
	}
	return false
}

// Signals are the per-submission facts the scorer evaluates. They are
// gathered once by the enrichment collectors; the scorer itself does no I/O.
type Signals struct {
	IsFreeEmail       bool
	IsDisposableEmail bool
	TimeOnPage        int // seconds the visitor spent on the page before submitting
	IsDuplicate       bool
	DuplicateCount    int
	HasGeo            bool
	Proxy             bool
	Hosting           bool
	Country           string
	CountryCode       string
	Message           string
	Timeline          string
}

// Result is the scorer output. Score starts at 0 (clean) and accumulates
// penalties; Flag is derived from Score alone.
type Result struct {
	Score   int      `json:"score"`
	Flag    Flag     `json:"flag"`
	Reasons []string `json:"reasons"`
}
