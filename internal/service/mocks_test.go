package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"safewatch/internal/model"
	"safewatch/internal/repository"
)

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.User), args.Error(1)
}

// MockArchiveRepository is a mock implementation of ArchiveRepository.
type MockArchiveRepository struct {
	mock.Mock
}

func (m *MockArchiveRepository) Create(ctx context.Context, archive *model.IncidentArchive) error {
	args := m.Called(ctx, archive)
	return args.Error(0)
}

func (m *MockArchiveRepository) Save(ctx context.Context, archive *model.IncidentArchive) error {
	args := m.Called(ctx, archive)
	return args.Error(0)
}

func (m *MockArchiveRepository) FindLatest(ctx context.Context) (*model.IncidentArchive, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.IncidentArchive), args.Error(1)
}

func (m *MockArchiveRepository) FindLatestForUpdate(ctx context.Context) (*model.IncidentArchive, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.IncidentArchive), args.Error(1)
}

// MockIncidentRepository is a mock implementation of IncidentRepository.
// WithTransaction is not mocked: it runs fn against the same mocks, so
// tests set expectations once and the transaction body hits them.
type MockIncidentRepository struct {
	mock.Mock
	TxUsers    *MockUserRepository
	TxArchives *MockArchiveRepository
}

func NewMockIncidentRepository() *MockIncidentRepository {
	return &MockIncidentRepository{
		TxUsers:    new(MockUserRepository),
		TxArchives: new(MockArchiveRepository),
	}
}

func (m *MockIncidentRepository) Create(ctx context.Context, incident *model.Incident) error {
	args := m.Called(ctx, incident)
	return args.Error(0)
}

func (m *MockIncidentRepository) Save(ctx context.Context, incident *model.Incident) error {
	args := m.Called(ctx, incident)
	return args.Error(0)
}

func (m *MockIncidentRepository) Delete(ctx context.Context, incident *model.Incident) error {
	args := m.Called(ctx, incident)
	return args.Error(0)
}

func (m *MockIncidentRepository) FindByID(ctx context.Context, id uint) (*model.Incident, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Incident), args.Error(1)
}

func (m *MockIncidentRepository) FindByIDForUpdate(ctx context.Context, id uint) (*model.Incident, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Incident), args.Error(1)
}

func (m *MockIncidentRepository) ListByResolved(ctx context.Context, resolved bool) ([]model.Incident, error) {
	args := m.Called(ctx, resolved)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Incident), args.Error(1)
}

func (m *MockIncidentRepository) ListAssignedTo(ctx context.Context, username string) ([]model.Incident, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Incident), args.Error(1)
}

func (m *MockIncidentRepository) ListResolvedBefore(ctx context.Context, cutoff time.Time) ([]model.Incident, error) {
	args := m.Called(ctx, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Incident), args.Error(1)
}

func (m *MockIncidentRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context, incidents repository.IncidentRepository, users repository.UserRepository, archives repository.ArchiveRepository) error) error {
	return fn(ctx, m, m.TxUsers, m.TxArchives)
}

// MockArchiveService is a mock implementation of ArchiveService.
type MockArchiveService struct {
	mock.Mock
}

func (m *MockArchiveService) Append(ctx context.Context, archives repository.ArchiveRepository, incident *model.Incident) error {
	args := m.Called(ctx, archives, incident)
	return args.Error(0)
}

func (m *MockArchiveService) Fetch(ctx context.Context) (*model.IncidentArchive, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.IncidentArchive), args.Error(1)
}
