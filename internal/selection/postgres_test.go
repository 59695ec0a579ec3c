package selection

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github-dashboard/internal/database"
)

// MockQuerier is a mock of the database.Querier interface.
type MockQuerier struct {
	mock.Mock
}

func (m *MockQuerier) ListSelectedRepositories(ctx context.Context, storageKey string) ([]string, error) {
	args := m.Called(ctx, storageKey)
	return args.Get(0).([]string), args.Error(1)
}
func (m *MockQuerier) DeleteSelectedRepositories(ctx context.Context, storageKey string) (int64, error) {
	args := m.Called(ctx, storageKey)
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockQuerier) InsertSelectedRepository(ctx context.Context, arg database.InsertSelectedRepositoryParams) error {
	args := m.Called(ctx, arg)
	return args.Error(0)
}

func TestReplaceSelection(t *testing.T) {
	ctx := context.Background()

	t.Run("clears then inserts in order", func(t *testing.T) {
		mockQ := new(MockQuerier)
		mockQ.On("DeleteSelectedRepositories", ctx, "k").Return(int64(3), nil).Once()
		mockQ.On("InsertSelectedRepository", ctx, database.InsertSelectedRepositoryParams{StorageKey: "k", Position: 0, FullName: "acme/api"}).Return(nil).Once()
		mockQ.On("InsertSelectedRepository", ctx, database.InsertSelectedRepositoryParams{StorageKey: "k", Position: 1, FullName: "acme/web"}).Return(nil).Once()

		err := replaceSelection(ctx, mockQ, "k", []string{"acme/api", "acme/web"})

		assert.NoError(t, err)
		mockQ.AssertExpectations(t)
	})

	t.Run("empty list only clears", func(t *testing.T) {
		mockQ := new(MockQuerier)
		mockQ.On("DeleteSelectedRepositories", ctx, "k").Return(int64(1), nil).Once()

		err := replaceSelection(ctx, mockQ, "k", nil)

		assert.NoError(t, err)
		mockQ.AssertNotCalled(t, "InsertSelectedRepository", mock.Anything, mock.Anything)
	})

	t.Run("stops at the first failed insert", func(t *testing.T) {
		mockQ := new(MockQuerier)
		dbError := errors.New("unexpected database error")
		mockQ.On("DeleteSelectedRepositories", ctx, "k").Return(int64(0), nil).Once()
		mockQ.On("InsertSelectedRepository", ctx, mock.Anything).Return(dbError).Once()

		err := replaceSelection(ctx, mockQ, "k", []string{"acme/api", "acme/web"})

		assert.ErrorIs(t, err, dbError)
		mockQ.AssertNumberOfCalls(t, "InsertSelectedRepository", 1)
	})

	t.Run("returns the delete error", func(t *testing.T) {
		mockQ := new(MockQuerier)
		dbError := errors.New("unexpected database error")
		mockQ.On("DeleteSelectedRepositories", ctx, "k").Return(int64(0), dbError).Once()

		err := replaceSelection(ctx, mockQ, "k", []string{"acme/api"})

		assert.ErrorIs(t, err, dbError)
	})
}
