package journal

import (
	"context"
	"errors"

	"trade-journal-go/internal/database"
	"trade-journal-go/internal/metrics"
	"trade-journal-go/internal/models"

	"go.uber.org/zap"
)

// Service records and lists trades. It is safe for concurrent use.
type Service struct {
	normalizer *Normalizer
	store      database.Store
	logger     *zap.Logger
}

// NewService creates a new Service.
func NewService(normalizer *Normalizer, store database.Store, logger *zap.Logger) *Service {
	return &Service{
		normalizer: normalizer,
		store:      store,
		logger:     logger.Named("journal"),
	}
}

// Record validates sub, computes its percentage and stores it.
// Invalid input is rejected before the store is touched.
func (s *Service) Record(ctx context.Context, sub Submission) (*models.Trade, error) {
	trade, err := s.normalizer.Normalize(sub)
	if err != nil {
		metrics.RecordRejection(metrics.ReasonValidation)
		s.logger.Info("Rejected trade submission", zap.Error(err))
		return nil, err
	}

	if sub.Percentage != nil && *sub.Percentage != trade.Percentage {
		s.logger.Warn("Discarded client-supplied percentage",
			zap.Float64("client_percentage", *sub.Percentage),
			zap.Float64("percentage", trade.Percentage))
	}

	id, err := s.store.Append(ctx, trade)
	if err != nil {
		metrics.RecordRejection(metrics.ReasonStorage)
		return nil, err
	}

	metrics.RecordTrade(trade.Side.String(), trade.Category.String())
	s.logger.Info("Recorded trade",
		zap.String("trade_id", id),
		zap.String("investor", trade.InvestorName),
		zap.String("side", trade.Side.String()),
		zap.Float64("percentage", trade.Percentage))
	return trade, nil
}

// List returns every trade, most recent first.
func (s *Service) List(ctx context.Context) ([]models.Trade, error) {
	trades, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return trades, nil
}

// Ping reports whether the store can serve requests.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// IsValidation reports whether err was caused by bad input.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}
