package model

// Match is one scored retrieval result. Score is a cosine-similarity value
// normalized to [0, 1]; results below the relevance floor are never returned.
type Match struct {
	ID      string  `json:"id"`
	Title   string  `json:"job_title"`
	Score   float64 `json:"score"`
	Content string  `json:"content"`
	Source  string  `json:"source"`
}
