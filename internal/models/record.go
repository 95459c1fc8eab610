package models

import "time"

// AnalysisRecord is the persisted trace of one completed analysis. It holds
// the response document only; video bytes never outlive their request.
type AnalysisRecord struct {
	ID          string       `json:"id"`
	FileName    string       `json:"file_name"`
	AnalyzeTime time.Time    `json:"analyze_time"`
	AnalyzeMode string       `json:"analyze_mode"`
	Crashed     bool         `json:"crashed"`
	Suggestions []Suggestion `json:"suggestions"`
}
