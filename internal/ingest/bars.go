package ingest

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yuniezzx/MarketSeer/internal/adapter"
	"github.com/yuniezzx/MarketSeer/internal/domain"
)

// convertBars maps provider-native daily rows onto domain bars.
// Malformed rows are logged and skipped; one bad row does not discard
// the rest of the history.
func (o *Orchestrator) convertBars(sym domain.Symbol, tables []*adapter.Table, col *collector) []*domain.DailyBar {
	var bars []*domain.DailyBar
	for _, t := range tables {
		for _, row := range t.Rows {
			b, ok := barFromRow(t.Source, sym, row)
			if !ok {
				col.addError(RunError{Symbol: sym.String(), Source: t.Source, Stage: StageReconcile, Message: "unparseable bar row"})
				o.logger.Printf("ingest bars %s: skipping unparseable row from %s/%s", sym, t.Source, t.Endpoint)
				continue
			}
			bars = append(bars, b)
		}
	}
	return bars
}

// barFromRow parses one daily row. Column names differ per provider:
// akshare and efinance emit the Chinese kline columns, tushare its
// columnar API names, yahoo the chart field names.
func barFromRow(source domain.Source, sym domain.Symbol, row adapter.Row) (*domain.DailyBar, bool) {
	switch source {
	case domain.SourceAkshare, domain.SourceEfinance:
		return barFromChineseRow(source, sym, row)
	case domain.SourceTushare:
		return barFromTushareRow(sym, row)
	case domain.SourceYfinance:
		return barFromYahooRow(sym, row)
	default:
		return nil, false
	}
}

func barFromChineseRow(source domain.Source, sym domain.Symbol, row adapter.Row) (*domain.DailyBar, bool) {
	date := normalizeBarDate(row.Str("日期"))
	open, okO := row.Float("开盘")
	closeP, okC := row.Float("收盘")
	high, okH := row.Float("最高")
	low, okL := row.Float("最低")
	if date == "" || !okO || !okC || !okH || !okL {
		return nil, false
	}

	b := &domain.DailyBar{
		Symbol:    sym.Suffixed(),
		TradeDate: date,
		Source:    source,
		Open:      open,
		High:      high,
		Low:       low,
		Close:     closeP,
	}
	b.Volume, _ = row.Float("成交量")
	b.Amount, _ = row.Float("成交额")
	if v, ok := row.Float("换手率"); ok {
		b.TurnoverRate = &v
	}
	if v, ok := row.Float("涨跌幅"); ok {
		b.PctChange = &v
	}
	return b, true
}

func barFromTushareRow(sym domain.Symbol, row adapter.Row) (*domain.DailyBar, bool) {
	date := normalizeBarDate(row.Str("trade_date"))
	open, okO := row.Float("open")
	closeP, okC := row.Float("close")
	high, okH := row.Float("high")
	low, okL := row.Float("low")
	if date == "" || !okO || !okC || !okH || !okL {
		return nil, false
	}

	b := &domain.DailyBar{
		Symbol:    sym.Suffixed(),
		TradeDate: date,
		Source:    domain.SourceTushare,
		Open:      open,
		High:      high,
		Low:       low,
		Close:     closeP,
	}
	// tushare reports volume in lots (100 shares) and amount in
	// thousands of CNY. Scaled in decimal space: binary-float
	// multiplication leaves residue on values like 2513.76 lots.
	if v, ok := row.Float("vol"); ok {
		b.Volume = decimal.NewFromFloat(v).Mul(decimal.New(1, 2)).InexactFloat64()
	}
	if v, ok := row.Float("amount"); ok {
		b.Amount = decimal.NewFromFloat(v).Mul(decimal.New(1, 3)).InexactFloat64()
	}
	if v, ok := row.Float("pct_chg"); ok {
		b.PctChange = &v
	}
	if v, ok := row.Float("pre_close"); ok {
		b.PreClose = &v
	}
	return b, true
}

func barFromYahooRow(sym domain.Symbol, row adapter.Row) (*domain.DailyBar, bool) {
	date := normalizeBarDate(row.Str("date"))
	open, okO := row.Float("open")
	closeP, okC := row.Float("close")
	high, okH := row.Float("high")
	low, okL := row.Float("low")
	if date == "" || !okO || !okC || !okH || !okL {
		return nil, false
	}

	b := &domain.DailyBar{
		Symbol:    sym.Suffixed(),
		TradeDate: date,
		Source:    domain.SourceYfinance,
		Open:      open,
		High:      high,
		Low:       low,
		Close:     closeP,
	}
	b.Volume, _ = row.Float("volume")
	return b, true
}

// normalizeBarDate renders the provider date shapes as YYYY-MM-DD.
func normalizeBarDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	for _, layout := range []string{"2006-01-02", "20060102", "2006/01/02", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return ""
}
