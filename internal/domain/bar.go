package domain

// DailyBar is one trading day of OHLCV data for one instrument.
// Keyed by (symbol, trade_date); stored in the daily_bars ClickHouse
// table where re-inserts for the same key replace the prior row.
type DailyBar struct {
	Symbol    string // suffixed canonical form, e.g. "002104.SZ"
	TradeDate string // YYYY-MM-DD
	Source    Source // provider the bar came from

	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64 // shares traded
	Amount float64 // turnover, CNY

	TurnoverRate *float64 // percent
	PctChange    *float64 // percent
	PreClose     *float64
}
