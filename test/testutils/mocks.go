// Package testutils provides mock implementations and fixtures for testing
package testutils

import (
	"context"
	"sync"
	"time"

	"github.com/alchemorsel/dishgen/internal/domain/shared"
	"github.com/alchemorsel/dishgen/internal/domain/user"
	"github.com/alchemorsel/dishgen/internal/ports/inbound"
	"github.com/alchemorsel/dishgen/internal/ports/outbound"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockUserRepository provides a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

// NewMockUserRepository creates a new mock user repository
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{}
}

// Create stores a user
func (m *MockUserRepository) Create(ctx context.Context, u *user.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

// Update updates a user
func (m *MockUserRepository) Update(ctx context.Context, u *user.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

// FindByID finds a user by ID
func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	args := m.Called(ctx, id)
	if u, ok := args.Get(0).(*user.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

// FindByUsername finds a user by username
func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*user.User, error) {
	args := m.Called(ctx, username)
	if u, ok := args.Get(0).(*user.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

// UpdateLastLogin records a login
func (m *MockUserRepository) UpdateLastLogin(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// SetupStandardMockBehavior sets up common mock behaviors
func (m *MockUserRepository) SetupStandardMockBehavior() {
	m.On("Create", mock.Anything, mock.AnythingOfType("*user.User")).
		Return(nil).Maybe()

	m.On("FindByID", mock.Anything, mock.AnythingOfType("uuid.UUID")).
		Return((*user.User)(nil), user.ErrUserNotFound).Maybe()

	m.On("FindByUsername", mock.Anything, mock.AnythingOfType("string")).
		Return((*user.User)(nil), user.ErrUserNotFound).Maybe()

	m.On("UpdateLastLogin", mock.Anything, mock.AnythingOfType("uuid.UUID")).
		Return(nil).Maybe()
}

// MockTokenIssuer provides a mock implementation of TokenIssuer
type MockTokenIssuer struct {
	mock.Mock
}

// NewMockTokenIssuer creates a new mock token issuer
func NewMockTokenIssuer() *MockTokenIssuer {
	return &MockTokenIssuer{}
}

// Issue signs a token
func (m *MockTokenIssuer) Issue(userID uuid.UUID, username string) (*outbound.IssuedToken, error) {
	args := m.Called(userID, username)
	if t, ok := args.Get(0).(*outbound.IssuedToken); ok {
		return t, args.Error(1)
	}
	return nil, args.Error(1)
}

// Revoke revokes a token id
func (m *MockTokenIssuer) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	args := m.Called(ctx, tokenID, expiresAt)
	return args.Error(0)
}

// MockDishService provides a mock implementation of the dish use cases
type MockDishService struct {
	mock.Mock
}

// NewMockDishService creates a new mock dish service
func NewMockDishService() *MockDishService {
	return &MockDishService{}
}

func (m *MockDishService) Generate(ctx context.Context, userID uuid.UUID) (*inbound.GenerateResult, error) {
	args := m.Called(ctx, userID)
	if r, ok := args.Get(0).(*inbound.GenerateResult); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockDishService) GenerateDemo(ctx context.Context, cmd inbound.DemoGenerateCommand) (*inbound.GenerateResult, error) {
	args := m.Called(ctx, cmd)
	if r, ok := args.Get(0).(*inbound.GenerateResult); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockDishService) ComposeDemo(ctx context.Context, cmd inbound.ComposeDemoCommand) (*inbound.ComposeResult, error) {
	args := m.Called(ctx, cmd)
	if r, ok := args.Get(0).(*inbound.ComposeResult); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockDishService) Save(ctx context.Context, cmd inbound.SaveDishCommand) (*inbound.DishDTO, error) {
	args := m.Called(ctx, cmd)
	if r, ok := args.Get(0).(*inbound.DishDTO); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockDishService) Delete(ctx context.Context, dishID, userID uuid.UUID) error {
	args := m.Called(ctx, dishID, userID)
	return args.Error(0)
}

func (m *MockDishService) ToggleLike(ctx context.Context, dishID, userID uuid.UUID) (*inbound.ToggleLikeResult, error) {
	args := m.Called(ctx, dishID, userID)
	if r, ok := args.Get(0).(*inbound.ToggleLikeResult); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockDishService) ListMine(ctx context.Context, userID uuid.UUID, params inbound.PaginationParams) (*inbound.DishList, error) {
	args := m.Called(ctx, userID, params)
	if r, ok := args.Get(0).(*inbound.DishList); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockDishService) Ranking(ctx context.Context, viewerID *uuid.UUID, params inbound.PaginationParams) (*inbound.DishList, error) {
	args := m.Called(ctx, viewerID, params)
	if r, ok := args.Get(0).(*inbound.DishList); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockDishService) Recent(ctx context.Context, viewerID *uuid.UUID, params inbound.PaginationParams) (*inbound.DishList, error) {
	args := m.Called(ctx, viewerID, params)
	if r, ok := args.Get(0).(*inbound.DishList); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

// RecordingDispatcher is an EventDispatcher that keeps every event
type RecordingDispatcher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

// NewRecordingDispatcher creates an empty recording dispatcher
func NewRecordingDispatcher() *RecordingDispatcher {
	return &RecordingDispatcher{}
}

// Dispatch records the event
func (d *RecordingDispatcher) Dispatch(ctx context.Context, event shared.DomainEvent) error {
	d.mu.Lock()
	d.events = append(d.events, event)
	d.mu.Unlock()
	return nil
}

// Register is a no-op
func (d *RecordingDispatcher) Register(string, shared.EventHandler) {}

// Names returns the names of recorded events in order
func (d *RecordingDispatcher) Names() []string {
	d.mu.Lock()
	defer d.mu.Unlock()

	names := make([]string, len(d.events))
	for i, e := range d.events {
		names[i] = e.EventName()
	}
	return names
}

// Compile-time interface checks
var (
	_ outbound.UserRepository = (*MockUserRepository)(nil)
	_ outbound.TokenIssuer    = (*MockTokenIssuer)(nil)
	_ inbound.DishService     = (*MockDishService)(nil)
	_ shared.EventDispatcher  = (*RecordingDispatcher)(nil)
)
