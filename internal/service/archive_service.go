package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"safewatch/internal/cache"
	"safewatch/internal/errors"
	"safewatch/internal/model"
	"safewatch/internal/repository"
)

// ArchiveHeader is the fixed first line of the cumulative CSV log.
const ArchiveHeader = "Title,Description,Location,Lat,Lng,Created At,Resolved At,Resolved By"

const (
	archiveCacheKey = "incident-archive"
	archiveCacheTTL = time.Minute
)

// ArchiveService accumulates a permanent CSV record of resolved incidents.
// The archive is the only durable trace of an incident after the retention
// sweeper deletes it, so Append runs inside the resolve transaction.
type ArchiveService interface {
	// Append writes one CSV row for a freshly resolved incident using the
	// transaction-scoped repository of the resolve transaction.
	Append(ctx context.Context, archives repository.ArchiveRepository, incident *model.Incident) error
	// Fetch returns the latest archive record, or ErrArchiveNotFound.
	Fetch(ctx context.Context) (*model.IncidentArchive, error)
}

type archiveService struct {
	archiveRepo repository.ArchiveRepository
	cache       *cache.Client
}

// NewArchiveService creates a new archive service.
func NewArchiveService(archiveRepo repository.ArchiveRepository, cache *cache.Client) ArchiveService {
	return &archiveService{
		archiveRepo: archiveRepo,
		cache:       cache,
	}
}

// Append appends the incident's row to the latest archive record, creating
// the record with a header row if none exists. An existing but blank
// record is re-seeded with the header.
func (s *archiveService) Append(ctx context.Context, archives repository.ArchiveRepository, incident *model.Incident) error {
	row, err := archiveRow(incident)
	if err != nil {
		return fmt.Errorf("encode archive row: %w", err)
	}

	archive, err := archives.FindLatestForUpdate(ctx)
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			return fmt.Errorf("load archive: %w", err)
		}
		archive = &model.IncidentArchive{CSVContent: ArchiveHeader + "\n" + row}
		if err := archives.Create(ctx, archive); err != nil {
			return fmt.Errorf("create archive: %w", err)
		}
		_ = s.cache.Delete(ctx, archiveCacheKey)
		return nil
	}

	if strings.TrimSpace(archive.CSVContent) == "" {
		archive.CSVContent = ArchiveHeader + "\n" + row
	} else {
		archive.CSVContent += "\n" + row
	}
	if err := archives.Save(ctx, archive); err != nil {
		return fmt.Errorf("append archive: %w", err)
	}
	_ = s.cache.Delete(ctx, archiveCacheKey)
	return nil
}

// Fetch returns the latest archive record.
func (s *archiveService) Fetch(ctx context.Context) (*model.IncidentArchive, error) {
	if data, _ := s.cache.Get(ctx, archiveCacheKey); data != nil {
		return &model.IncidentArchive{CSVContent: string(data)}, nil
	}

	archive, err := s.archiveRepo.FindLatest(ctx)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrArchiveNotFound
		}
		return nil, fmt.Errorf("load archive: %w", err)
	}

	_ = s.cache.Set(ctx, archiveCacheKey, []byte(archive.CSVContent), archiveCacheTTL)
	return archive, nil
}

// archiveRow renders a resolved incident as a single CSV-escaped line.
// Free-text fields containing commas, quotes, or newlines are quoted per
// standard CSV rules so they cannot corrupt the log.
func archiveRow(incident *model.Incident) (string, error) {
	assignedTo := ""
	if incident.AssignedTo != nil {
		assignedTo = *incident.AssignedTo
	}
	resolvedAt := ""
	if incident.ResolvedAt != nil {
		resolvedAt = incident.ResolvedAt.UTC().Format(time.RFC3339)
	}

	var sb strings.Builder
	w := csv.NewWriter(&sb)
	if err := w.Write([]string{
		incident.Title,
		incident.Description,
		incident.Location,
		strconv.FormatFloat(incident.Lat, 'f', -1, 64),
		strconv.FormatFloat(incident.Lng, 'f', -1, 64),
		incident.CreatedAt.UTC().Format(time.RFC3339),
		resolvedAt,
		assignedTo,
	}); err != nil {
		return "", err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return strings.TrimRight(sb.String(), "\n"), nil
}
