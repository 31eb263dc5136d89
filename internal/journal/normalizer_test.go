package journal

import (
	"errors"
	"math"
	"testing"
	"time"

	"trade-journal-go/internal/config"
	"trade-journal-go/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)

func f(v float64) *float64 { return &v }

func validSubmission() Submission {
	return Submission{
		InvestorName: "Arjun",
		Date:         "2025-03-14",
		Time:         "9:15 AM",
		Investment:   f(10000),
		Side:         "Profit",
		ProfitLoss:   f(500),
		Brokerage:    f(50),
		Category:     "Price Action",
		SubCategory:  "EMA crossover",
	}
}

func newTestNormalizer(policy Policy) *Normalizer {
	return NewNormalizer(policy, func() time.Time { return fixedNow })
}

func TestPercentage(t *testing.T) {
	testCases := []struct {
		name       string
		investment float64
		profitLoss float64
		brokerage  float64
		side       models.Side
		want       float64
	}{
		{name: "Profit example", investment: 10000, profitLoss: 500, brokerage: 50, side: models.SideProfit, want: 4.50},
		{name: "Loss example", investment: 10000, profitLoss: 300, brokerage: 20, side: models.SideLoss, want: 3.20},
		{name: "Zero investment profit", investment: 0, profitLoss: 500, brokerage: 50, side: models.SideProfit, want: 0},
		{name: "Zero investment loss", investment: 0, profitLoss: 500, brokerage: 50, side: models.SideLoss, want: 0},
		{name: "Negative investment", investment: -100, profitLoss: 5, brokerage: 0, side: models.SideProfit, want: 0},
		{name: "Brokerage exceeds profit", investment: 1000, profitLoss: 10, brokerage: 25, side: models.SideProfit, want: -1.50},
		{name: "Repeating decimal", investment: 3, profitLoss: 1, brokerage: 0, side: models.SideProfit, want: 33.33},
		{name: "Rounds two thirds up", investment: 3, profitLoss: 2, brokerage: 0, side: models.SideLoss, want: 66.67},
		{name: "Exact half rounds away from zero", investment: 200, profitLoss: 0.01, brokerage: 0, side: models.SideProfit, want: 0.01},
		{name: "Negative half rounds away from zero", investment: 200, profitLoss: 0, brokerage: 0.01, side: models.SideProfit, want: -0.01},
		{name: "Float noise does not leak", investment: 0.3, profitLoss: 0.1, brokerage: 0.2, side: models.SideLoss, want: 100},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := Percentage(tc.investment, tc.profitLoss, tc.brokerage, tc.side)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNormalize_Valid(t *testing.T) {
	// Arrange
	n := newTestNormalizer(Policy{MaxClockSkew: time.Minute})
	sub := validSubmission()
	sub.InvestorName = "  Arjun  "

	// Act
	trade, err := n.Normalize(sub)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "Arjun", trade.InvestorName)
	assert.Equal(t, "2025-03-14", trade.Date)
	assert.Equal(t, "9:15 AM", trade.Time)
	assert.Equal(t, 10000.0, trade.Investment)
	assert.Equal(t, models.SideProfit, trade.Side)
	assert.Equal(t, 500.0, trade.ProfitLoss)
	assert.Equal(t, 50.0, trade.Brokerage)
	assert.Equal(t, 4.5, trade.Percentage)
	assert.Equal(t, models.CategoryPriceAction, trade.Category)
	assert.Equal(t, "EMA crossover", trade.SubCategory)
	assert.Equal(t, fixedNow, trade.CreatedAt)
	assert.Empty(t, trade.ID)
}

func TestNormalize_IgnoresClientPercentage(t *testing.T) {
	n := newTestNormalizer(Policy{})
	sub := validSubmission()
	sub.Side = "Loss"
	sub.ProfitLoss = f(300)
	sub.Brokerage = f(20)
	sub.Percentage = f(99.99)

	trade, err := n.Normalize(sub)

	require.NoError(t, err)
	assert.Equal(t, 3.2, trade.Percentage)
}

func TestNormalize_ProfitLossIsMagnitude(t *testing.T) {
	n := newTestNormalizer(Policy{})
	sub := validSubmission()
	sub.Side = "Loss"
	sub.ProfitLoss = f(-300)
	sub.Brokerage = f(20)

	trade, err := n.Normalize(sub)

	require.NoError(t, err)
	assert.Equal(t, 300.0, trade.ProfitLoss)
	assert.Equal(t, 3.2, trade.Percentage)
}

func TestNormalize_CreatedAt(t *testing.T) {
	n := newTestNormalizer(Policy{MaxClockSkew: time.Minute})

	t.Run("SuppliedIsTrustedAndUTC", func(t *testing.T) {
		sub := validSubmission()
		sub.CreatedAt = "2025-03-14T15:30:00.250+05:30"

		trade, err := n.Normalize(sub)

		require.NoError(t, err)
		assert.Equal(t, time.Date(2025, 3, 14, 10, 0, 0, 250_000_000, time.UTC), trade.CreatedAt)
	})

	t.Run("WithinSkewAccepted", func(t *testing.T) {
		sub := validSubmission()
		sub.CreatedAt = fixedNow.Add(30 * time.Second).Format(time.RFC3339)

		_, err := n.Normalize(sub)

		assert.NoError(t, err)
	})

	t.Run("FutureRejected", func(t *testing.T) {
		sub := validSubmission()
		sub.CreatedAt = fixedNow.Add(time.Hour).Format(time.RFC3339)

		_, err := n.Normalize(sub)

		assertField(t, err, "createdAt")
	})

	t.Run("DefaultSkewToleratesFastClientClock", func(t *testing.T) {
		wide := newTestNormalizer(PolicyFromConfig(config.Journal{MaxClockSkew: 5 * time.Minute}))
		sub := validSubmission()
		sub.CreatedAt = fixedNow.Add(3 * time.Minute).Format(time.RFC3339)

		trade, err := wide.Normalize(sub)

		require.NoError(t, err)
		assert.Equal(t, fixedNow.Add(3*time.Minute).UTC().Truncate(time.Second), trade.CreatedAt)
	})

	t.Run("MalformedRejected", func(t *testing.T) {
		sub := validSubmission()
		sub.CreatedAt = "yesterday"

		_, err := n.Normalize(sub)

		assertField(t, err, "createdAt")
	})
}

func TestNormalize_Invalid(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(*Submission)
		field  string
	}{
		{name: "Missing side", mutate: func(s *Submission) { s.Side = "" }, field: "side"},
		{name: "Unknown side", mutate: func(s *Submission) { s.Side = "Gain" }, field: "side"},
		{name: "Lowercase side", mutate: func(s *Submission) { s.Side = "profit" }, field: "side"},
		{name: "Blank investor", mutate: func(s *Submission) { s.InvestorName = "   " }, field: "investorName"},
		{name: "Missing date", mutate: func(s *Submission) { s.Date = "" }, field: "date"},
		{name: "Bad date", mutate: func(s *Submission) { s.Date = "14/03/2025" }, field: "date"},
		{name: "Missing time", mutate: func(s *Submission) { s.Time = "" }, field: "time"},
		{name: "24-hour time", mutate: func(s *Submission) { s.Time = "14:30" }, field: "time"},
		{name: "Missing category", mutate: func(s *Submission) { s.Category = "" }, field: "category"},
		{name: "Unknown category", mutate: func(s *Submission) { s.Category = "Fundamentals" }, field: "category"},
		{name: "Missing investment", mutate: func(s *Submission) { s.Investment = nil }, field: "investment"},
		{name: "Negative investment", mutate: func(s *Submission) { s.Investment = f(-1) }, field: "investment"},
		{name: "Missing profitLoss", mutate: func(s *Submission) { s.ProfitLoss = nil }, field: "profitLoss"},
		{name: "NaN profitLoss", mutate: func(s *Submission) { s.ProfitLoss = f(math.NaN()) }, field: "profitLoss"},
		{name: "Missing brokerage", mutate: func(s *Submission) { s.Brokerage = nil }, field: "brokerage"},
		{name: "Negative brokerage", mutate: func(s *Submission) { s.Brokerage = f(-5) }, field: "brokerage"},
	}

	n := newTestNormalizer(Policy{MaxClockSkew: time.Minute})
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			sub := validSubmission()
			tc.mutate(&sub)

			trade, err := n.Normalize(sub)

			assert.Nil(t, trade)
			assertField(t, err, tc.field)
		})
	}
}

func TestNormalize_LenientAmounts(t *testing.T) {
	n := newTestNormalizer(Policy{LenientAmounts: true})
	sub := validSubmission()
	sub.Investment = nil
	sub.ProfitLoss = nil
	sub.Brokerage = nil

	trade, err := n.Normalize(sub)

	require.NoError(t, err)
	assert.Equal(t, 0.0, trade.Investment)
	assert.Equal(t, 0.0, trade.ProfitLoss)
	assert.Equal(t, 0.0, trade.Brokerage)
	assert.Equal(t, 0.0, trade.Percentage)
}

func TestNormalize_AllowsEveryCategory(t *testing.T) {
	n := newTestNormalizer(Policy{})
	for _, c := range models.Categories {
		sub := validSubmission()
		sub.Category = c.String()

		trade, err := n.Normalize(sub)

		require.NoError(t, err, c)
		assert.Equal(t, c, trade.Category)
	}
}

func assertField(t *testing.T, err error, field string) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, field, verr.Field)
}
