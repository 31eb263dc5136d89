package models

import (
	"fmt"
	"time"
)

// Trade represents one journaled trade outcome. Rows are written once and never updated.
type Trade struct {
	ID           string    `gorm:"primaryKey;size:26" json:"id"`
	InvestorName string    `gorm:"size:255;not null" json:"investorName"`
	Date         string    `gorm:"size:10;not null" json:"date"`
	Time         string    `gorm:"size:8;not null" json:"time"` // 12-hour clock, e.g. "9:05 AM"
	Investment   float64   `gorm:"not null" json:"investment"`
	Side         Side      `gorm:"size:8;not null" json:"side"`
	ProfitLoss   float64   `gorm:"not null" json:"profitLoss"`
	Brokerage    float64   `gorm:"not null" json:"brokerage"`
	Percentage   float64   `gorm:"not null" json:"percentage"`
	Category     Category  `gorm:"size:32;not null" json:"category"`
	SubCategory  string    `gorm:"size:255" json:"subCategory,omitempty"`
	CreatedAt    time.Time `gorm:"index;not null" json:"createdAt"`
}

// Side is whether a trade closed in profit or at a loss.
type Side string

const (
	SideProfit Side = "Profit"
	SideLoss   Side = "Loss"
)

// ParseSide maps the external text form to a Side. Matching is exact.
func ParseSide(s string) (Side, error) {
	switch Side(s) {
	case SideProfit, SideLoss:
		return Side(s), nil
	}
	return "", fmt.Errorf("unknown side %q", s)
}

func (s Side) String() string { return string(s) }

// Category is the setup a trade was taken on.
type Category string

const (
	CategoryAll         Category = "All"
	CategoryPriceAction Category = "Price Action"
	CategoryIndicator   Category = "Indicator"
	CategoryCandlestick Category = "Candlestick"
	CategoryPattern     Category = "Pattern"
)

// Categories lists every known category in display order.
var Categories = []Category{
	CategoryAll,
	CategoryPriceAction,
	CategoryIndicator,
	CategoryCandlestick,
	CategoryPattern,
}

// ParseCategory maps the external text form to a Category.
func ParseCategory(s string) (Category, error) {
	for _, c := range Categories {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q", s)
}

func (c Category) String() string { return string(c) }
