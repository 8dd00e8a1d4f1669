package repository

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"talentsearch/internal/model"
)

type ChunkRepository struct {
	db *gorm.DB
}

func NewChunkRepository(db *gorm.DB) *ChunkRepository {
	return &ChunkRepository{db: db}
}

func (r *ChunkRepository) Migrate() error {
	if err := r.db.AutoMigrate(&model.ChunkRecord{}); err != nil {
		return fmt.Errorf("auto migrate chunk table failed: %w", err)
	}
	return nil
}

// UpsertBatch inserts chunks, replacing existing rows with the same chunk ID.
func (r *ChunkRepository) UpsertBatch(chunks []model.ChunkRecord) error {
	if len(chunks) == 0 {
		return nil
	}
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "chunk_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"content", "source", "title", "embedding"}),
	}).Create(&chunks).Error
	if err != nil {
		return fmt.Errorf("upsert chunk batch failed: %w", err)
	}
	return nil
}

func (r *ChunkRepository) ListAll() ([]model.ChunkRecord, error) {
	var chunks []model.ChunkRecord
	if err := r.db.Order("id asc").Find(&chunks).Error; err != nil {
		return nil, fmt.Errorf("list chunks failed: %w", err)
	}
	return chunks, nil
}

// First returns the oldest chunk row, or nil when the table is empty.
func (r *ChunkRepository) First() (*model.ChunkRecord, error) {
	var chunk model.ChunkRecord
	err := r.db.Order("id asc").First(&chunk).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load first chunk failed: %w", err)
	}
	return &chunk, nil
}

func (r *ChunkRepository) DeleteAll() error {
	if err := r.db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&model.ChunkRecord{}).Error; err != nil {
		return fmt.Errorf("delete chunks failed: %w", err)
	}
	return nil
}

func (r *ChunkRepository) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&model.ChunkRecord{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count chunks failed: %w", err)
	}
	return count, nil
}
