package models

import "fmt"

// AnalyzeMode is the requested analysis strategy.
type AnalyzeMode int

const (
	// ModeBinary asks for a single flagged/clean verdict. The inference
	// engine does not implement it yet.
	ModeBinary AnalyzeMode = 0
	// ModeMulti asks for multi-category time-windowed suggestions.
	ModeMulti AnalyzeMode = 1
)

// ParseMode maps a raw wire value onto an AnalyzeMode.
func ParseMode(v int64) (AnalyzeMode, error) {
	switch v {
	case 0:
		return ModeBinary, nil
	case 1:
		return ModeMulti, nil
	default:
		return 0, fmt.Errorf("unknown analyze mode %d", v)
	}
}

// String returns the human-readable mode label used in responses.
func (m AnalyzeMode) String() string {
	switch m {
	case ModeBinary:
		return "binary"
	case ModeMulti:
		return "multi"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}
