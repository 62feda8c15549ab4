package model

// HistoryEntry is the durable record of one successful AI generation.
// It is written once and never updated; the job record that produced it
// lives and dies independently.
type HistoryEntry struct {
	ID         string `json:"id"`
	URL        string `json:"url"`
	Platform   string `json:"platform"`
	VideoTitle string `json:"video_title"`
	Model      string `json:"model"`
	Lang       string `json:"lang"`
	Style      string `json:"style"`
	Result     string `json:"result"`
	WordCount  int    `json:"word_count"`
	Timestamp  string `json:"timestamp"` // RFC 3339
}
