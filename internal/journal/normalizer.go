package journal

import (
	"errors"
	"math"
	"reflect"
	"strings"
	"time"

	"trade-journal-go/internal/config"
	"trade-journal-go/internal/models"
	"trade-journal-go/internal/timeofday"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

var hundred = decimal.NewFromInt(100)

// Submission is a trade as sent by a client, before validation.
// Amounts are pointers so a missing field can be told apart from zero.
type Submission struct {
	InvestorName string   `json:"investorName" validate:"required"`
	Date         string   `json:"date" validate:"required"`
	Time         string   `json:"time" validate:"required"`
	Investment   *float64 `json:"investment"`
	Side         string   `json:"side" validate:"required,oneof=Profit Loss"`
	ProfitLoss   *float64 `json:"profitLoss"`
	Brokerage    *float64 `json:"brokerage"`
	Category     string   `json:"category" validate:"required"`
	SubCategory  string   `json:"subCategory,omitempty"`

	// Percentage is accepted for compatibility with older clients and always discarded.
	Percentage *float64 `json:"percentage,omitempty"`
	// CreatedAt is optional RFC 3339.
	CreatedAt string `json:"createdAt,omitempty"`
}

// Policy controls how forgiving ingestion is.
type Policy struct {
	// LenientAmounts treats a missing investment, profitLoss or brokerage as 0.
	LenientAmounts bool
	// MaxClockSkew is how far past now a caller-supplied createdAt may be.
	MaxClockSkew time.Duration
}

// PolicyFromConfig builds a Policy from the journal config section.
func PolicyFromConfig(cfg config.Journal) Policy {
	return Policy{LenientAmounts: cfg.LenientAmounts, MaxClockSkew: cfg.MaxClockSkew}
}

// Normalizer turns a Submission into a canonical trade.
type Normalizer struct {
	validate *validator.Validate
	policy   Policy
	now      func() time.Time
}

// NewNormalizer creates a Normalizer. A nil now uses time.Now.
func NewNormalizer(policy Policy, now func() time.Time) *Normalizer {
	if now == nil {
		now = time.Now
	}

	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Normalizer{validate: v, policy: policy, now: now}
}

// Normalize validates sub and returns the trade to store, with Percentage computed and
// CreatedAt set. It performs no I/O.
func (n *Normalizer) Normalize(sub Submission) (*models.Trade, error) {
	sub.InvestorName = strings.TrimSpace(sub.InvestorName)
	sub.Date = strings.TrimSpace(sub.Date)
	sub.Time = strings.TrimSpace(sub.Time)
	sub.Category = strings.TrimSpace(sub.Category)
	sub.SubCategory = strings.TrimSpace(sub.SubCategory)

	if err := n.validate.Struct(sub); err != nil {
		return nil, fromValidator(err)
	}

	side, err := models.ParseSide(sub.Side)
	if err != nil {
		return nil, invalid("side", "must be Profit or Loss")
	}
	category, err := models.ParseCategory(sub.Category)
	if err != nil {
		return nil, invalid("category", "must be one of %s", categoryList())
	}
	if _, err := time.Parse(dateLayout, sub.Date); err != nil {
		return nil, invalid("date", "must be a calendar date in YYYY-MM-DD form")
	}
	if _, _, err := timeofday.Parse12(sub.Time); err != nil {
		return nil, invalid("time", "must be a 12-hour time like 9:05 AM")
	}

	investment, err := n.amount("investment", sub.Investment)
	if err != nil {
		return nil, err
	}
	if investment < 0 {
		return nil, invalid("investment", "must not be negative")
	}
	profitLoss, err := n.amount("profitLoss", sub.ProfitLoss)
	if err != nil {
		return nil, err
	}
	brokerage, err := n.amount("brokerage", sub.Brokerage)
	if err != nil {
		return nil, err
	}
	if brokerage < 0 {
		return nil, invalid("brokerage", "must not be negative")
	}

	createdAt, err := n.createdAt(sub.CreatedAt)
	if err != nil {
		return nil, err
	}

	// profitLoss is a magnitude; side carries the direction.
	profitLoss = math.Abs(profitLoss)

	return &models.Trade{
		InvestorName: sub.InvestorName,
		Date:         sub.Date,
		Time:         sub.Time,
		Investment:   investment,
		Side:         side,
		ProfitLoss:   profitLoss,
		Brokerage:    brokerage,
		Percentage:   Percentage(investment, profitLoss, brokerage, side),
		Category:     category,
		SubCategory:  sub.SubCategory,
		CreatedAt:    createdAt,
	}, nil
}

func (n *Normalizer) amount(field string, v *float64) (float64, error) {
	if v == nil {
		if n.policy.LenientAmounts {
			return 0, nil
		}
		return 0, invalid(field, "is required")
	}
	if math.IsNaN(*v) || math.IsInf(*v, 0) {
		return 0, invalid(field, "must be a finite number")
	}
	return *v, nil
}

func (n *Normalizer) createdAt(raw string) (time.Time, error) {
	now := n.now().UTC()
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return now, nil
	}

	ts, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, invalid("createdAt", "must be an RFC 3339 timestamp")
	}
	if ts.After(now.Add(n.policy.MaxClockSkew)) {
		return time.Time{}, invalid("createdAt", "must not be in the future")
	}
	return ts.UTC(), nil
}

// Percentage is the trade's return on investment after brokerage, rounded half away from
// zero to 2 places. Brokerage lowers a profit and deepens a loss. A non-positive
// investment yields 0.
func Percentage(investment, profitLoss, brokerage float64, side models.Side) float64 {
	if investment <= 0 {
		return 0
	}

	pl := decimal.NewFromFloat(profitLoss)
	fee := decimal.NewFromFloat(brokerage)

	var net decimal.Decimal
	if side == models.SideProfit {
		net = pl.Sub(fee)
	} else {
		net = pl.Add(fee)
	}

	return net.Mul(hundred).DivRound(decimal.NewFromFloat(investment), 2).InexactFloat64()
}

func fromValidator(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &ValidationError{Field: "", Message: err.Error()}
	}

	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return invalid(fe.Field(), "is required")
	case "oneof":
		return invalid(fe.Field(), "must be one of [%s]", fe.Param())
	default:
		return invalid(fe.Field(), "failed %s validation", fe.Tag())
	}
}

func categoryList() string {
	names := make([]string, len(models.Categories))
	for i, c := range models.Categories {
		names[i] = c.String()
	}
	return "[" + strings.Join(names, ", ") + "]"
}
