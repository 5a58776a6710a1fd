package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"safewatch/internal/model"
)

// IncidentRepository defines incident persistence operations. Lifecycle
// transitions run through WithTransaction so the precondition check, the
// row update, and the archive append commit as one unit.
type IncidentRepository interface {
	Create(ctx context.Context, incident *model.Incident) error
	Save(ctx context.Context, incident *model.Incident) error
	Delete(ctx context.Context, incident *model.Incident) error
	FindByID(ctx context.Context, id uint) (*model.Incident, error)
	// FindByIDForUpdate locks the incident row so concurrent transitions
	// evaluate preconditions against the committed value, not a snapshot.
	FindByIDForUpdate(ctx context.Context, id uint) (*model.Incident, error)
	ListByResolved(ctx context.Context, resolved bool) ([]model.Incident, error)
	ListAssignedTo(ctx context.Context, username string) ([]model.Incident, error)
	ListResolvedBefore(ctx context.Context, cutoff time.Time) ([]model.Incident, error)
	WithTransaction(ctx context.Context, fn func(ctx context.Context, incidents IncidentRepository, users UserRepository, archives ArchiveRepository) error) error
}

type incidentRepository struct {
	db *gorm.DB
}

// NewIncidentRepository creates a new incident repository.
func NewIncidentRepository(db *gorm.DB) IncidentRepository {
	return &incidentRepository{db: db}
}

// Create creates a new incident record.
func (r *incidentRepository) Create(ctx context.Context, incident *model.Incident) error {
	return r.db.WithContext(ctx).Create(incident).Error
}

// Save updates an existing incident record.
func (r *incidentRepository) Save(ctx context.Context, incident *model.Incident) error {
	return r.db.WithContext(ctx).Save(incident).Error
}

// Delete permanently removes an incident record.
func (r *incidentRepository) Delete(ctx context.Context, incident *model.Incident) error {
	return r.db.WithContext(ctx).Unscoped().Delete(incident).Error
}

// FindByID finds an incident by ID.
func (r *incidentRepository) FindByID(ctx context.Context, id uint) (*model.Incident, error) {
	var incident model.Incident
	if err := r.db.WithContext(ctx).First(&incident, id).Error; err != nil {
		return nil, err
	}
	return &incident, nil
}

// FindByIDForUpdate finds an incident by ID with a row-level lock.
func (r *incidentRepository) FindByIDForUpdate(ctx context.Context, id uint) (*model.Incident, error) {
	var incident model.Incident
	if err := r.db.WithContext(ctx).Set("gorm:query_option", "FOR UPDATE").
		First(&incident, id).Error; err != nil {
		return nil, err
	}
	return &incident, nil
}

// ListByResolved lists incidents filtered by their resolved flag.
func (r *incidentRepository) ListByResolved(ctx context.Context, resolved bool) ([]model.Incident, error) {
	var incidents []model.Incident
	if err := r.db.WithContext(ctx).Where("resolved = ?", resolved).Find(&incidents).Error; err != nil {
		return nil, err
	}
	return incidents, nil
}

// ListAssignedTo lists unresolved incidents assigned to the given username.
func (r *incidentRepository) ListAssignedTo(ctx context.Context, username string) ([]model.Incident, error) {
	var incidents []model.Incident
	if err := r.db.WithContext(ctx).
		Where("assigned_to = ? AND resolved = ?", username, false).
		Find(&incidents).Error; err != nil {
		return nil, err
	}
	return incidents, nil
}

// ListResolvedBefore lists incidents resolved earlier than cutoff.
func (r *incidentRepository) ListResolvedBefore(ctx context.Context, cutoff time.Time) ([]model.Incident, error) {
	var incidents []model.Incident
	if err := r.db.WithContext(ctx).
		Where("resolved = ? AND resolved_at < ?", true, cutoff).
		Find(&incidents).Error; err != nil {
		return nil, err
	}
	return incidents, nil
}

// WithTransaction executes fn with transaction-scoped repositories.
func (r *incidentRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context, incidents IncidentRepository, users UserRepository, archives ArchiveRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, &incidentRepository{db: tx}, &userRepository{db: tx}, &archiveRepository{db: tx})
	})
}
