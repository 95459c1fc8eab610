package models

import "time"

// UploadResponse is the document returned by POST /upload.
//
// Suggestions marshals as null if and only if the engine crashed; a clean
// run with no flagged segments marshals as an empty array.
type UploadResponse struct {
	FileName    string       `json:"file_name"`
	AnalyzeTime time.Time    `json:"analyze_time"`
	AnalyzeMode string       `json:"analyze_mode"`
	Suggestions []Suggestion `json:"suggestions"`
}

// NewUploadResponse assembles the response for a finished analysis. The
// timestamp is captured here, at assembly time, in UTC so the serialized
// form always carries an explicit zero offset.
func NewUploadResponse(fileName string, mode AnalyzeMode, out Outcome) *UploadResponse {
	res := &UploadResponse{
		FileName:    fileName,
		AnalyzeTime: time.Now().UTC(),
		AnalyzeMode: mode.String(),
	}
	if !out.Crashed {
		res.Suggestions = out.Suggestions
		if res.Suggestions == nil {
			res.Suggestions = []Suggestion{}
		}
	}
	return res
}
