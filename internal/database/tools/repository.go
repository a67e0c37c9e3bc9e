// Package tools provides database operations for the tool catalog.
package tools

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/mrlokans/toolshed/internal/entities"
)

// Repository handles all tool database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new tools repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListAll returns every tool in the catalog, ordered by name.
func (r *Repository) ListAll() ([]entities.Tool, error) {
	var tools []entities.Tool
	if err := r.db.Order("name").Find(&tools).Error; err != nil {
		return nil, fmt.Errorf("failed to list tools: %w", err)
	}
	return tools, nil
}

// FindByIDs returns the tools matching the given IDs. Unknown IDs are
// silently skipped, so the result may be shorter than the input.
func (r *Repository) FindByIDs(ids []uint) ([]entities.Tool, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var tools []entities.Tool
	if err := r.db.Where("id IN ?", ids).Find(&tools).Error; err != nil {
		return nil, fmt.Errorf("failed to find tools: %w", err)
	}
	return tools, nil
}
