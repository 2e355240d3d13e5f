package adapter

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/yuniezzx/MarketSeer/internal/domain"
)

// Logical endpoint names matching the Yahoo Finance API paths.
const (
	EndpointQuoteSummary = "quoteSummary"
	EndpointChart        = "chart"
)

const (
	yahooQuoteSummaryURL = "https://query1.finance.yahoo.com/v10/finance/quoteSummary/"
	yahooChartURL        = "https://query1.finance.yahoo.com/v8/finance/chart/"
)

// Yfinance covers the Yahoo Finance surface: company profile via
// quoteSummary and daily bars via chart. It has no Dragon-Tiger data;
// that capability is a permanent error. Symbols use the dotted
// suffix form Yahoo expects ("002104.SZ").
type Yfinance struct {
	client *HTTPClient
}

// NewYfinance creates the yfinance adapter.
func NewYfinance(client *HTTPClient) *Yfinance {
	return &Yfinance{client: client}
}

var _ Adapter = (*Yfinance)(nil)

func (y *Yfinance) Source() domain.Source {
	return domain.SourceYfinance
}

func (y *Yfinance) Fetch(ctx context.Context, ref domain.Symbol, kind domain.EndpointKind, params Params) ([]*Table, error) {
	switch kind {
	case domain.EndpointMetadata:
		t, err := y.fetchQuoteSummary(ctx, ref)
		return asTables(t), err
	case domain.EndpointDaily:
		t, err := y.fetchChart(ctx, ref, params)
		return asTables(t), err
	default:
		return nil, unsupported(domain.SourceYfinance, kind)
	}
}

type yahooRawValue struct {
	Raw float64 `json:"raw"`
}

type yahooQuoteSummaryResponse struct {
	QuoteSummary struct {
		Result []struct {
			AssetProfile *struct {
				Industry string `json:"industry"`
				Sector   string `json:"sector"`
			} `json:"assetProfile"`
			Price *struct {
				LongName  string         `json:"longName"`
				ShortName string         `json:"shortName"`
				Exchange  string         `json:"exchangeName"`
				MarketCap *yahooRawValue `json:"marketCap"`
			} `json:"price"`
			KeyStatistics *struct {
				SharesOutstanding *yahooRawValue `json:"sharesOutstanding"`
				FloatShares       *yahooRawValue `json:"floatShares"`
			} `json:"defaultKeyStatistics"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteSummary"`
}

func (y *Yfinance) fetchQuoteSummary(ctx context.Context, ref domain.Symbol) (*Table, error) {
	query := url.Values{}
	query.Set("modules", "assetProfile,price,defaultKeyStatistics")

	var resp yahooQuoteSummaryResponse
	raw, err := y.client.GetJSON(ctx, domain.SourceYfinance, EndpointQuoteSummary,
		yahooQuoteSummaryURL+ref.Suffixed(), query, &resp)
	if err != nil {
		return rawOnly(domain.SourceYfinance, EndpointQuoteSummary, domain.EndpointMetadata, raw), err
	}

	table := &Table{
		Source:    domain.SourceYfinance,
		Endpoint:  EndpointQuoteSummary,
		Kind:      domain.EndpointMetadata,
		Raw:       raw,
		FetchedAt: time.Now(),
	}
	if e := resp.QuoteSummary.Error; e != nil {
		return table, NewPermanent(domain.SourceYfinance, EndpointQuoteSummary,
			fmt.Sprintf("yahoo error %s: %s", e.Code, e.Description), nil)
	}
	if len(resp.QuoteSummary.Result) == 0 {
		return table, nil
	}

	result := resp.QuoteSummary.Result[0]
	row := Row{}
	if p := result.Price; p != nil {
		row["longName"] = p.LongName
		row["shortName"] = p.ShortName
		row["exchangeName"] = p.Exchange
		if p.MarketCap != nil {
			row["marketCap"] = p.MarketCap.Raw
		}
	}
	if a := result.AssetProfile; a != nil {
		row["industry"] = a.Industry
		row["sector"] = a.Sector
	}
	if k := result.KeyStatistics; k != nil {
		if k.SharesOutstanding != nil {
			row["sharesOutstanding"] = k.SharesOutstanding.Raw
		}
		if k.FloatShares != nil {
			row["floatShares"] = k.FloatShares.Raw
		}
	}
	table.Rows = []Row{row}
	return table, nil
}

type yahooChartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func (y *Yfinance) fetchChart(ctx context.Context, ref domain.Symbol, params Params) (*Table, error) {
	query := url.Values{}
	query.Set("interval", "1d")
	query.Set("period1", yahooPeriod(params[ParamStartDate], 0))
	query.Set("period2", yahooPeriod(params[ParamEndDate], time.Now().Unix()))

	var resp yahooChartResponse
	raw, err := y.client.GetJSON(ctx, domain.SourceYfinance, EndpointChart,
		yahooChartURL+ref.Suffixed(), query, &resp)
	if err != nil {
		return rawOnly(domain.SourceYfinance, EndpointChart, domain.EndpointDaily, raw), err
	}

	table := &Table{
		Source:    domain.SourceYfinance,
		Endpoint:  EndpointChart,
		Kind:      domain.EndpointDaily,
		Raw:       raw,
		FetchedAt: time.Now(),
	}
	if e := resp.Chart.Error; e != nil {
		return table, NewPermanent(domain.SourceYfinance, EndpointChart,
			fmt.Sprintf("yahoo error %s: %s", e.Code, e.Description), nil)
	}
	if len(resp.Chart.Result) == 0 {
		return table, nil
	}

	result := resp.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return table, nil
	}
	quote := result.Indicators.Quote[0]

	for i, ts := range result.Timestamp {
		row := Row{"date": time.Unix(ts, 0).UTC().Format("2006-01-02")}
		if v := at(quote.Open, i); v != nil {
			row["open"] = *v
		}
		if v := at(quote.High, i); v != nil {
			row["high"] = *v
		}
		if v := at(quote.Low, i); v != nil {
			row["low"] = *v
		}
		if v := at(quote.Close, i); v != nil {
			row["close"] = *v
		}
		if v := at(quote.Volume, i); v != nil {
			row["volume"] = *v
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

func at(s []*float64, i int) *float64 {
	if i < len(s) {
		return s[i]
	}
	return nil
}

// yahooPeriod converts YYYY-MM-DD to a unix timestamp string.
func yahooPeriod(d string, fallback int64) string {
	if d == "" {
		return strconv.FormatInt(fallback, 10)
	}
	t, err := time.Parse("2006-01-02", d)
	if err != nil {
		return strconv.FormatInt(fallback, 10)
	}
	return strconv.FormatInt(t.Unix(), 10)
}
