package model

import (
	"encoding/json"
	"time"
)

// ChunkRecord persists a text chunk and its embedding in MySQL for the
// gorm-backed vector store. Embedding is stored as a JSON array of float32
// for portability.
type ChunkRecord struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ChunkID   string    `gorm:"size:256;not null;uniqueIndex" json:"chunk_id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Source    string    `gorm:"size:512;not null;index" json:"source"`
	Title     string    `gorm:"size:512" json:"title"`
	Embedding string    `gorm:"type:mediumtext" json:"-"` // JSON array of float32
	CreatedAt time.Time `json:"created_at"`
}

// EmbeddingVector returns the parsed embedding slice; empty on parse error.
func (c *ChunkRecord) EmbeddingVector() []float32 {
	if c.Embedding == "" {
		return nil
	}
	var v []float32
	_ = json.Unmarshal([]byte(c.Embedding), &v)
	return v
}

// SetEmbedding stores the embedding as JSON.
func (c *ChunkRecord) SetEmbedding(vec []float32) {
	if len(vec) == 0 {
		c.Embedding = "[]"
		return
	}
	b, _ := json.Marshal(vec)
	c.Embedding = string(b)
}
