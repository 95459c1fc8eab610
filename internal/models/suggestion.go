package models

// Suggestion is a time-windowed content-category label produced by the
// inference engine. Start and End are offsets into the video in seconds.
type Suggestion struct {
	Start      int    `json:"start"`
	End        int    `json:"end"`
	Suggestion string `json:"suggestion"`
}

// Valid reports whether the window is well formed: non-negative offsets
// with End no earlier than Start.
func (s Suggestion) Valid() bool {
	return s.Start >= 0 && s.End >= s.Start
}
