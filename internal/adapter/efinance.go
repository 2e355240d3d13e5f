package adapter

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/yuniezzx/MarketSeer/internal/domain"
)

// Logical endpoint names matching the efinance library's call paths.
const (
	EndpointBaseInfo     = "stock.get_base_info"
	EndpointQuoteHistory = "stock.get_quote_history"
)

// Efinance is the fallback A-share provider. It reads the same
// eastmoney quote API as akshare's em endpoint but exposes the
// efinance library's column names, which differ (股票名称 instead of
// 股票简称, 所处行业 instead of 行业).
type Efinance struct {
	client *HTTPClient
}

// NewEfinance creates the efinance adapter.
func NewEfinance(client *HTTPClient) *Efinance {
	return &Efinance{client: client}
}

var _ Adapter = (*Efinance)(nil)

func (e *Efinance) Source() domain.Source {
	return domain.SourceEfinance
}

func (e *Efinance) Fetch(ctx context.Context, ref domain.Symbol, kind domain.EndpointKind, params Params) ([]*Table, error) {
	switch kind {
	case domain.EndpointMetadata:
		t, err := e.fetchBaseInfo(ctx, ref)
		return asTables(t), err
	case domain.EndpointDaily:
		t, err := e.fetchQuoteHistory(ctx, ref, params)
		return asTables(t), err
	default:
		return nil, unsupported(domain.SourceEfinance, kind)
	}
}

type efBaseInfoResponse struct {
	Data *struct {
		Code     string  `json:"f57"`
		Name     string  `json:"f58"`
		Industry string  `json:"f127"`
		TotalCap float64 `json:"f116"`
		FloatCap float64 `json:"f117"`
		PE       float64 `json:"f162"`
		PB       float64 `json:"f167"`
	} `json:"data"`
}

func (e *Efinance) fetchBaseInfo(ctx context.Context, ref domain.Symbol) (*Table, error) {
	query := url.Values{}
	query.Set("secid", emSecID(ref))
	query.Set("fields", "f57,f58,f116,f117,f127,f162,f167")

	var resp efBaseInfoResponse
	raw, err := e.client.GetJSON(ctx, domain.SourceEfinance, EndpointBaseInfo, emStockGetURL, query, &resp)
	if err != nil {
		return rawOnly(domain.SourceEfinance, EndpointBaseInfo, domain.EndpointMetadata, raw), err
	}

	table := &Table{
		Source:    domain.SourceEfinance,
		Endpoint:  EndpointBaseInfo,
		Kind:      domain.EndpointMetadata,
		Raw:       raw,
		FetchedAt: time.Now(),
	}
	if resp.Data == nil || resp.Data.Code == "" {
		return table, NewPermanent(domain.SourceEfinance, EndpointBaseInfo,
			fmt.Sprintf("no data for %s", ref.Plain()), nil)
	}

	table.Rows = []Row{{
		"股票代码":   resp.Data.Code,
		"股票名称":   resp.Data.Name,
		"所处行业":   resp.Data.Industry,
		"总市值":    resp.Data.TotalCap,
		"流通市值":   resp.Data.FloatCap,
		"市盈率(动)": resp.Data.PE,
		"市净率":    resp.Data.PB,
	}}
	return table, nil
}

func (e *Efinance) fetchQuoteHistory(ctx context.Context, ref domain.Symbol, params Params) (*Table, error) {
	query := url.Values{}
	query.Set("secid", emSecID(ref))
	query.Set("klt", "101")
	query.Set("fqt", "1")
	query.Set("fields1", "f1,f2,f3,f4,f5,f6")
	query.Set("fields2", "f51,f52,f53,f54,f55,f56,f57,f58,f59,f60,f61")
	query.Set("beg", compactDate(params[ParamStartDate], "19900101"))
	query.Set("end", compactDate(params[ParamEndDate], "20500101"))

	var resp emKlineResponse
	raw, err := e.client.GetJSON(ctx, domain.SourceEfinance, EndpointQuoteHistory, emKlineURL, query, &resp)
	if err != nil {
		return rawOnly(domain.SourceEfinance, EndpointQuoteHistory, domain.EndpointDaily, raw), err
	}

	table := &Table{
		Source:    domain.SourceEfinance,
		Endpoint:  EndpointQuoteHistory,
		Kind:      domain.EndpointDaily,
		Raw:       raw,
		FetchedAt: time.Now(),
	}
	if resp.Data == nil {
		return table, nil
	}

	for _, line := range resp.Data.Klines {
		parts := strings.Split(line, ",")
		if len(parts) < 11 {
			continue
		}
		table.Rows = append(table.Rows, Row{
			"日期":  parts[0],
			"开盘":  parts[1],
			"收盘":  parts[2],
			"最高":  parts[3],
			"最低":  parts[4],
			"成交量": parts[5],
			"成交额": parts[6],
			"振幅":  parts[7],
			"涨跌幅": parts[8],
			"涨跌额": parts[9],
			"换手率": parts[10],
		})
	}
	return table, nil
}
