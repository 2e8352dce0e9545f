package mocks

import (
	"context"
	"time"

	"github.com/ganot/recital/internal/domain/clip"
	"github.com/stretchr/testify/mock"
)

// ClipRepository is a mock for clip.ClipRepository.
type ClipRepository struct {
	mock.Mock
}

func (m *ClipRepository) Insert(ctx context.Context, c *clip.Clip) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *ClipRepository) Get(ctx context.Context, id string) (*clip.Clip, error) {
	args := m.Called(ctx, id)
	if c, ok := args.Get(0).(*clip.Clip); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ClipRepository) ListByStory(ctx context.Context, storyID string) ([]clip.ClipRef, error) {
	args := m.Called(ctx, storyID)
	if list, ok := args.Get(0).([]clip.ClipRef); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ClipRepository) ListAll(ctx context.Context) ([]clip.ClipRef, error) {
	args := m.Called(ctx)
	if list, ok := args.Get(0).([]clip.ClipRef); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ClipRepository) Delete(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *ClipRepository) TotalPayloadBytes(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *ClipRepository) ListOldest(ctx context.Context, limit int) ([]clip.ClipRef, error) {
	args := m.Called(ctx, limit)
	if list, ok := args.Get(0).([]clip.ClipRef); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ClipRepository) ListExpiredIDs(ctx context.Context, cutoff time.Time, limit int) ([]string, error) {
	args := m.Called(ctx, cutoff, limit)
	if list, ok := args.Get(0).([]string); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// CapacityProvider is a mock for clip.CapacityProvider.
type CapacityProvider struct {
	mock.Mock
}

func (m *CapacityProvider) Capacity(ctx context.Context) (clip.CapacityInfo, error) {
	args := m.Called(ctx)
	return args.Get(0).(clip.CapacityInfo), args.Error(1)
}
