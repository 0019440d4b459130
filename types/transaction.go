package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is one executed trade. The log is append-only and kept in
// occurrence order; Amount is the cash value of the trade (spent on a buy,
// received on a sell).
type Transaction struct {
	Date       time.Time       `json:"date"`
	Instrument string          `json:"instrument"`
	Action     Action          `json:"action"`
	Shares     decimal.Decimal `json:"shares"`
	Price      decimal.Decimal `json:"price"`
	Amount     decimal.Decimal `json:"amount"`
	Confidence float64         `json:"confidence"`
}
