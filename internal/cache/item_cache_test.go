package cache

import (
	"context"
	"testing"
	"time"

	"rentalhub-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockItemRepository struct {
	mock.Mock
}

func (m *MockItemRepository) GetByID(ctx context.Context, id int32) (*domain.Item, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Item), args.Error(1)
}

func TestItemCache_ReadThrough(t *testing.T) {
	ctx := context.Background()
	repo := new(MockItemRepository)
	repo.On("GetByID", ctx, int32(1)).Return(&domain.Item{ID: 1, OwnerID: 4, DailyRateCents: 2000}, nil)

	c := NewItemCache(repo, 10, time.Minute)
	defer c.Stop()

	first, err := c.GetByID(ctx, 1)
	require.NoError(t, err)
	first.DailyRateCents = 1

	second, err := c.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int32(2000), second.DailyRateCents, "callers cannot mutate the cached value")
	repo.AssertNumberOfCalls(t, "GetByID", 1)

	_, err = c.GetFresh(ctx, 1)
	require.NoError(t, err)
	repo.AssertNumberOfCalls(t, "GetByID", 2)

	c.Invalidate(1)
	_, err = c.GetByID(ctx, 1)
	require.NoError(t, err)
	repo.AssertNumberOfCalls(t, "GetByID", 3)
}

func TestItemCache_NotFoundIsNotCached(t *testing.T) {
	ctx := context.Background()
	repo := new(MockItemRepository)
	repo.On("GetByID", ctx, int32(9)).Return(nil, domain.ErrNotFound)

	c := NewItemCache(repo, 10, time.Minute)
	defer c.Stop()

	_, err := c.GetByID(ctx, 9)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = c.GetByID(ctx, 9)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	repo.AssertNumberOfCalls(t, "GetByID", 2)
}
