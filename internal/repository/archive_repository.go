package repository

import (
	"context"

	"gorm.io/gorm"

	"safewatch/internal/model"
)

// ArchiveRepository defines archive persistence operations. Only the most
// recently created record is ever read or appended to.
type ArchiveRepository interface {
	Create(ctx context.Context, archive *model.IncidentArchive) error
	Save(ctx context.Context, archive *model.IncidentArchive) error
	FindLatest(ctx context.Context) (*model.IncidentArchive, error)
	// FindLatestForUpdate locks the archive row so concurrent resolutions
	// append rows serially instead of overwriting each other.
	FindLatestForUpdate(ctx context.Context) (*model.IncidentArchive, error)
}

type archiveRepository struct {
	db *gorm.DB
}

// NewArchiveRepository creates a new archive repository.
func NewArchiveRepository(db *gorm.DB) ArchiveRepository {
	return &archiveRepository{db: db}
}

// Create creates a new archive record.
func (r *archiveRepository) Create(ctx context.Context, archive *model.IncidentArchive) error {
	return r.db.WithContext(ctx).Create(archive).Error
}

// Save updates an existing archive record.
func (r *archiveRepository) Save(ctx context.Context, archive *model.IncidentArchive) error {
	return r.db.WithContext(ctx).Save(archive).Error
}

// FindLatest returns the most recently created archive record.
func (r *archiveRepository) FindLatest(ctx context.Context) (*model.IncidentArchive, error) {
	var archive model.IncidentArchive
	if err := r.db.WithContext(ctx).Order("created_at DESC").First(&archive).Error; err != nil {
		return nil, err
	}
	return &archive, nil
}

// FindLatestForUpdate returns the most recent archive record with a row lock.
func (r *archiveRepository) FindLatestForUpdate(ctx context.Context) (*model.IncidentArchive, error) {
	var archive model.IncidentArchive
	if err := r.db.WithContext(ctx).Set("gorm:query_option", "FOR UPDATE").
		Order("created_at DESC").First(&archive).Error; err != nil {
		return nil, err
	}
	return &archive, nil
}
