package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"

	"safewatch/internal/auth"
	"safewatch/internal/cache"
	"safewatch/internal/errors"
	"safewatch/internal/model"
	"safewatch/internal/repository"
)

const incidentCacheTTL = 5 * time.Minute

// ReportIncidentInput carries the fields of a public incident report.
type ReportIncidentInput struct {
	Title       string
	Description string
	Location    string
	Lat         float64
	Lng         float64
}

// IncidentService is the incident lifecycle engine: it validates requested
// transitions against the incident's current state and the caller's role,
// and commits each transition as a single read-check-write transaction.
type IncidentService interface {
	Report(ctx context.Context, in ReportIncidentInput) (*model.Incident, error)
	Get(ctx context.Context, id uint) (*model.Incident, error)
	ListOpen(ctx context.Context) ([]model.Incident, error)
	ListResolved(ctx context.Context) ([]model.Incident, error)
	ListAssignedTo(ctx context.Context, caller *auth.Claims) ([]model.Incident, error)
	// Assign sets or clears (username == nil) the assignee. Admin only.
	Assign(ctx context.Context, caller *auth.Claims, id uint, username *string) (*model.Incident, error)
	// Resolve marks the incident resolved and appends its archive row in
	// the same transaction. Permitted for the assignee or an admin.
	Resolve(ctx context.Context, caller *auth.Claims, id uint) (*model.Incident, error)
}

type incidentService struct {
	incidentRepo repository.IncidentRepository
	userRepo     repository.UserRepository
	archive      ArchiveService
	cache        *cache.Client
	now          func() time.Time
}

// NewIncidentService creates a new incident lifecycle service.
func NewIncidentService(
	incidentRepo repository.IncidentRepository,
	userRepo repository.UserRepository,
	archive ArchiveService,
	cache *cache.Client,
) IncidentService {
	return &incidentService{
		incidentRepo: incidentRepo,
		userRepo:     userRepo,
		archive:      archive,
		cache:        cache,
		now:          time.Now,
	}
}

// incidentCacheKey is shared with the retention sweeper, which must evict
// swept incidents so the cache never outlives the store row.
func incidentCacheKey(id uint) string {
	return fmt.Sprintf("incident:%d", id)
}

// Report creates a new incident in the Open state.
func (s *incidentService) Report(ctx context.Context, in ReportIncidentInput) (*model.Incident, error) {
	incident := &model.Incident{
		Title:       in.Title,
		Description: in.Description,
		Location:    in.Location,
		Lat:         in.Lat,
		Lng:         in.Lng,
	}
	if err := s.incidentRepo.Create(ctx, incident); err != nil {
		return nil, fmt.Errorf("create incident: %w", err)
	}
	return incident, nil
}

// Get fetches one incident by id.
func (s *incidentService) Get(ctx context.Context, id uint) (*model.Incident, error) {
	if data, _ := s.cache.Get(ctx, incidentCacheKey(id)); data != nil {
		var cached model.Incident
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	incident, err := s.incidentRepo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrIncidentNotFound
		}
		return nil, fmt.Errorf("find incident: %w", err)
	}

	if payload, err := json.Marshal(incident); err == nil {
		_ = s.cache.Set(ctx, incidentCacheKey(id), payload, incidentCacheTTL)
	}
	return incident, nil
}

// ListOpen lists all unresolved incidents (Open and Assigned).
func (s *incidentService) ListOpen(ctx context.Context) ([]model.Incident, error) {
	return s.incidentRepo.ListByResolved(ctx, false)
}

// ListResolved lists all resolved incidents.
func (s *incidentService) ListResolved(ctx context.Context) ([]model.Incident, error) {
	return s.incidentRepo.ListByResolved(ctx, true)
}

// ListAssignedTo lists the caller's unresolved assigned incidents.
// Restricted to callers with the resolver role.
func (s *incidentService) ListAssignedTo(ctx context.Context, caller *auth.Claims) ([]model.Incident, error) {
	if caller == nil {
		return nil, errors.ErrUnauthenticated
	}
	if !caller.IsResolver() {
		return nil, errors.ErrForbidden
	}
	return s.incidentRepo.ListAssignedTo(ctx, caller.Username)
}

// Assign sets or clears the incident's assignee.
func (s *incidentService) Assign(ctx context.Context, caller *auth.Claims, id uint, username *string) (*model.Incident, error) {
	if caller == nil {
		return nil, errors.ErrUnauthenticated
	}
	if !caller.IsAdmin() {
		return nil, errors.ErrForbidden
	}

	var updated *model.Incident
	err := s.incidentRepo.WithTransaction(ctx, func(ctx context.Context, incidents repository.IncidentRepository, users repository.UserRepository, _ repository.ArchiveRepository) error {
		incident, err := incidents.FindByIDForUpdate(ctx, id)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return errors.ErrIncidentNotFound
			}
			return fmt.Errorf("find incident: %w", err)
		}
		if incident.Resolved {
			return errors.ErrIncidentResolved
		}

		if username == nil {
			incident.AssignedTo = nil
		} else {
			user, err := users.FindByUsername(ctx, *username)
			if err != nil {
				if err == gorm.ErrRecordNotFound {
					return errors.ErrUserNotFound
				}
				return fmt.Errorf("find user: %w", err)
			}
			incident.AssignedTo = &user.Username
		}

		if err := incidents.Save(ctx, incident); err != nil {
			return fmt.Errorf("save incident: %w", err)
		}
		updated = incident
		return nil
	})
	if err != nil {
		return nil, err
	}

	_ = s.cache.Delete(ctx, incidentCacheKey(id))
	return updated, nil
}

// Resolve marks the incident resolved and archives it atomically.
func (s *incidentService) Resolve(ctx context.Context, caller *auth.Claims, id uint) (*model.Incident, error) {
	if caller == nil {
		return nil, errors.ErrUnauthenticated
	}

	var updated *model.Incident
	err := s.incidentRepo.WithTransaction(ctx, func(ctx context.Context, incidents repository.IncidentRepository, _ repository.UserRepository, archives repository.ArchiveRepository) error {
		incident, err := incidents.FindByIDForUpdate(ctx, id)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return errors.ErrIncidentNotFound
			}
			return fmt.Errorf("find incident: %w", err)
		}
		if incident.Resolved {
			return errors.ErrIncidentResolved
		}

		// The assignee check runs against the locked row, so a racing
		// unassign cannot let a stale assignee through.
		isAssignee := incident.AssignedTo != nil && *incident.AssignedTo == caller.Username
		if !isAssignee && !caller.IsAdmin() {
			return errors.ErrForbidden
		}

		now := s.now().UTC()
		incident.Resolved = true
		incident.ResolvedAt = &now

		if err := incidents.Save(ctx, incident); err != nil {
			return fmt.Errorf("save incident: %w", err)
		}
		if err := s.archive.Append(ctx, archives, incident); err != nil {
			return err
		}
		updated = incident
		return nil
	})
	if err != nil {
		return nil, err
	}

	_ = s.cache.Delete(ctx, incidentCacheKey(id))
	return updated, nil
}
