package discount

import (
	"context"
	"errors"
	"testing"

	"fashion-shop/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) Upsert(ctx context.Context, def *model.DiscountCodeRequest) error {
	args := m.Called(ctx, def)
	return args.Error(0)
}

func TestImporter_Import(t *testing.T) {
	files := map[string][]model.DiscountCodeRequest{
		"a.gz": {{Code: "SPRING25", UsageLimit: 1}, {Code: "WELCOME10"}},
		"b.gz": {{Code: "SPRING25", UsageLimit: 2}},
	}
	loader := stubLoader(func(_ context.Context, path string) ([]model.DiscountCodeRequest, error) {
		return files[path], nil
	})

	store := new(MockStore)
	store.On("Upsert", mock.Anything, mock.MatchedBy(func(d *model.DiscountCodeRequest) bool {
		return d.Code == "SPRING25" && d.UsageLimit == 2
	})).Return(nil).Once()
	store.On("Upsert", mock.Anything, mock.MatchedBy(func(d *model.DiscountCodeRequest) bool {
		return d.Code == "WELCOME10"
	})).Return(nil).Once()

	n, err := NewImporter(loader, store, zerolog.Nop()).Import(context.Background(), []string{"a.gz", "b.gz"})

	require.NoError(t, err)
	assert.Equal(t, 2, n)
	store.AssertExpectations(t)
}

func TestImporter_Import_LoadFailure(t *testing.T) {
	loader := stubLoader(func(_ context.Context, path string) ([]model.DiscountCodeRequest, error) {
		if path == "b.gz" {
			return nil, errors.New("corrupt")
		}
		return []model.DiscountCodeRequest{{Code: "SPRING25"}}, nil
	})
	store := new(MockStore)

	_, err := NewImporter(loader, store, zerolog.Nop()).Import(context.Background(), []string{"a.gz", "b.gz"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "b.gz")
	store.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestImporter_Import_NoFiles(t *testing.T) {
	n, err := NewImporter(nil, nil, zerolog.Nop()).Import(context.Background(), nil)

	require.NoError(t, err)
	assert.Zero(t, n)
}
