package journal

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"trade-journal-go/internal/config"
	"trade-journal-go/internal/database"
	"trade-journal-go/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockStore is a mock implementation of database.Store.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) Append(ctx context.Context, trade *models.Trade) (string, error) {
	args := m.Called(ctx, trade)
	return args.String(0), args.Error(1)
}

func (m *MockStore) ListAll(ctx context.Context) ([]models.Trade, error) {
	args := m.Called(ctx)
	trades, _ := args.Get(0).([]models.Trade)
	return trades, args.Error(1)
}

func (m *MockStore) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockStore) Close() error {
	return m.Called().Error(0)
}

func TestService_Record_ValidationNeverReachesStore(t *testing.T) {
	// Arrange
	store := new(MockStore)
	svc := NewService(newTestNormalizer(Policy{}), store, zap.NewNop())
	sub := validSubmission()
	sub.Side = "Breakeven"

	// Act
	trade, err := svc.Record(context.Background(), sub)

	// Assert
	assert.Nil(t, trade)
	assert.True(t, IsValidation(err))
	store.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
}

func TestService_Record_StorageFailure(t *testing.T) {
	// Arrange
	store := new(MockStore)
	svc := NewService(newTestNormalizer(Policy{}), store, zap.NewNop())
	storeErr := fmt.Errorf("failed to save trade: %w", database.ErrStorageUnavailable)
	store.On("Append", mock.Anything, mock.AnythingOfType("*models.Trade")).Return("", storeErr)

	// Act
	trade, err := svc.Record(context.Background(), validSubmission())

	// Assert
	assert.Nil(t, trade)
	assert.True(t, errors.Is(err, database.ErrStorageUnavailable))
	assert.False(t, IsValidation(err))
	store.AssertExpectations(t)
}

func TestService_Record_PassesCanonicalTrade(t *testing.T) {
	store := new(MockStore)
	svc := NewService(newTestNormalizer(Policy{}), store, zap.NewNop())
	store.On("Append", mock.Anything, mock.MatchedBy(func(tr *models.Trade) bool {
		return tr.Percentage == 4.5 && tr.CreatedAt.Equal(fixedNow)
	})).Return("01TESTID", nil)

	sub := validSubmission()
	sub.Percentage = f(12)
	trade, err := svc.Record(context.Background(), sub)

	require.NoError(t, err)
	assert.Equal(t, 4.5, trade.Percentage)
	store.AssertExpectations(t)
}

func TestService_List_Error(t *testing.T) {
	store := new(MockStore)
	svc := NewService(newTestNormalizer(Policy{}), store, zap.NewNop())
	store.On("ListAll", mock.Anything).Return(nil, database.ErrStorageUnavailable)

	trades, err := svc.List(context.Background())

	assert.Nil(t, trades)
	assert.True(t, errors.Is(err, database.ErrStorageUnavailable))
}

// TestService_EndToEnd runs the service against a real SQLite store.
func TestService_EndToEnd(t *testing.T) {
	// Arrange
	store, err := database.Open(config.Database{
		Driver: "sqlite",
		DSN:    filepath.Join(t.TempDir(), "journal.db"),
	}, zap.NewNop())
	require.NoError(t, err)
	defer store.Close()

	clock := fixedNow
	svc := NewService(NewNormalizer(Policy{}, func() time.Time { return clock }), store, zap.NewNop())
	ctx := context.Background()

	first := validSubmission()
	first.InvestorName = "first"
	first.Percentage = f(50)
	second := validSubmission()
	second.InvestorName = "second"
	second.Side = "Loss"
	second.ProfitLoss = f(300)
	second.Brokerage = f(20)

	// Act
	_, err = svc.Record(ctx, first)
	require.NoError(t, err)
	clock = clock.Add(time.Second)
	_, err = svc.Record(ctx, second)
	require.NoError(t, err)
	_, err = svc.Record(ctx, Submission{InvestorName: "nobody"})
	require.Error(t, err)

	trades, err := svc.List(ctx)

	// Assert
	require.NoError(t, err)
	require.Len(t, trades, 2)
	assert.Equal(t, "second", trades[0].InvestorName)
	assert.Equal(t, 3.2, trades[0].Percentage)
	assert.Equal(t, "first", trades[1].InvestorName)
	assert.Equal(t, 4.5, trades[1].Percentage)
	assert.NoError(t, svc.Ping(ctx))
}
