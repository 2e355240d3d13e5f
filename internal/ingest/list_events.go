package ingest

import (
	"strings"

	"github.com/yuniezzx/MarketSeer/internal/adapter"
	"github.com/yuniezzx/MarketSeer/internal/domain"
	"github.com/yuniezzx/MarketSeer/internal/idhash"
)

// convertListEvents maps provider rows onto domain list events. The
// event identity hash covers (code, date, reason, analysis): two
// disclosures for the same instrument on the same day stay distinct
// rows as long as any component differs.
func (o *Orchestrator) convertListEvents(source domain.Source, date string, tables []*adapter.Table, col *collector) []*domain.ListEvent {
	var events []*domain.ListEvent
	for _, t := range tables {
		for _, row := range t.Rows {
			e, ok := listEventFromRow(t.Source, date, row)
			if !ok {
				col.addError(RunError{Symbol: date, Source: source, Stage: StageReconcile, Message: "unparseable list event row"})
				o.logger.Printf("ingest list events %s: skipping unparseable row from %s/%s", date, t.Source, t.Endpoint)
				continue
			}
			events = append(events, e)
		}
	}
	return events
}

func listEventFromRow(source domain.Source, date string, row adapter.Row) (*domain.ListEvent, bool) {
	switch source {
	case domain.SourceAkshare:
		return listEventFromAkshareRow(date, row)
	case domain.SourceTushare:
		return listEventFromTushareRow(date, row)
	default:
		return nil, false
	}
}

// listEventFromAkshareRow parses a Dragon-Tiger detail row with the
// akshare column names.
func listEventFromAkshareRow(date string, row adapter.Row) (*domain.ListEvent, bool) {
	code := row.Str("代码")
	name := row.Str("名称")
	if code == "" || name == "" {
		return nil, false
	}
	if d := normalizeBarDate(row.Str("上榜日")); d != "" {
		date = d
	}
	reasons := row.Str("上榜原因")
	analysis := row.Str("解读")

	e := &domain.ListEvent{
		EventID:    idhash.ComputeListEventID(code, date, reasons, analysis),
		Code:       code,
		Name:       name,
		ListedDate: date,
		Reasons:    reasons,
		Analysis:   analysis,
		Source:     domain.SourceAkshare,
	}
	setFloat(&e.ClosePrice, row, "收盘价")
	setFloat(&e.ChangePercent, row, "涨跌幅")
	setFloat(&e.TurnoverRate, row, "换手率")
	setFloat(&e.CirculatingMktCap, row, "流通市值")
	setFloat(&e.BuyAmount, row, "龙虎榜买入额")
	setFloat(&e.SellAmount, row, "龙虎榜卖出额")
	setFloat(&e.NetAmount, row, "龙虎榜净买额")
	setFloat(&e.TradeAmount, row, "龙虎榜成交额")
	setFloat(&e.MarketTotal, row, "市场总成交额")
	setFloat(&e.NetRatio, row, "净买额占总成交比")
	setFloat(&e.TradeRatio, row, "成交额占总成交比")
	return e, true
}

// listEventFromTushareRow parses a top_list row. tushare has no
// analysis column; the reason alone distinguishes same-day events.
func listEventFromTushareRow(date string, row adapter.Row) (*domain.ListEvent, bool) {
	tsCode := row.Str("ts_code")
	name := row.Str("name")
	if tsCode == "" || name == "" {
		return nil, false
	}
	code := tsCode
	if i := strings.IndexByte(tsCode, '.'); i > 0 {
		code = tsCode[:i]
	}
	if d := normalizeBarDate(row.Str("trade_date")); d != "" {
		date = d
	}
	reasons := row.Str("reason")

	e := &domain.ListEvent{
		EventID:    idhash.ComputeListEventID(code, date, reasons, ""),
		Code:       code,
		Name:       name,
		ListedDate: date,
		Reasons:    reasons,
		Source:     domain.SourceTushare,
	}
	setFloat(&e.ClosePrice, row, "close")
	setFloat(&e.ChangePercent, row, "pct_change")
	setFloat(&e.TurnoverRate, row, "turnover_rate")
	setFloat(&e.CirculatingMktCap, row, "float_values")
	setFloat(&e.BuyAmount, row, "l_buy")
	setFloat(&e.SellAmount, row, "l_sell")
	setFloat(&e.NetAmount, row, "net_amount")
	setFloat(&e.TradeAmount, row, "l_amount")
	setFloat(&e.MarketTotal, row, "amount")
	return e, true
}

func setFloat(dst **float64, row adapter.Row, column string) {
	if v, ok := row.Float(column); ok {
		*dst = &v
	}
}
