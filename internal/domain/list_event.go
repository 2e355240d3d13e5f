package domain

import "time"

// ListEvent is one Dragon-Tiger list disclosure: an instrument that
// appeared on the daily trading-anomaly list for one reason. The same
// instrument can appear several times on the same day under different
// reasons or analyses; those are distinct events and must stay
// distinct rows. Natural key: (code, listed_date, reasons, analysis).
// EventID is the deterministic hash of that key (see idhash).
// Corresponds to the list_events table in PostgreSQL.
type ListEvent struct {
	EventID    string // deterministic hash of the natural key
	Code       string // six-digit instrument code
	Name       string // instrument short name
	ListedDate string // YYYY-MM-DD
	Reasons    string // disclosed listing reason, original language
	Analysis   string // disclosed interpretation, original language

	ClosePrice        *float64
	ChangePercent     *float64
	TurnoverRate      *float64
	CirculatingMktCap *float64

	BuyAmount   *float64 // list-seat buy total
	SellAmount  *float64 // list-seat sell total
	NetAmount   *float64 // list-seat net buy
	TradeAmount *float64 // list-seat turnover
	MarketTotal *float64 // whole-market turnover that day

	NetRatio   *float64 // net buy / market total, percent
	TradeRatio *float64 // list turnover / market total, percent

	Source    Source
	CreatedAt time.Time
	UpdatedAt time.Time
}
