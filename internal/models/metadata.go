package models

// UploadMetadata is the validated JSON control block accompanying an upload.
type UploadMetadata struct {
	Mode AnalyzeMode `json:"mode"`
}
