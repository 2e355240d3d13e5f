package adapter

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/yuniezzx/MarketSeer/internal/domain"
)

// Logical endpoint names matching the tushare pro api_name values.
const (
	EndpointStockBasic = "stock_basic"
	EndpointTushareDay = "daily"
	EndpointTopList    = "top_list"
)

const tushareAPIURL = "https://api.tushare.pro"

// Tushare speaks the tushare pro JSON API: a single POST endpoint
// where api_name selects the dataset and the response is a columnar
// (fields, items) pair. Requires an account token.
type Tushare struct {
	client *HTTPClient
	token  string
}

// NewTushare creates the tushare adapter with the given API token.
func NewTushare(client *HTTPClient, token string) *Tushare {
	return &Tushare{client: client, token: token}
}

var _ Adapter = (*Tushare)(nil)

func (t *Tushare) Source() domain.Source {
	return domain.SourceTushare
}

func (t *Tushare) Fetch(ctx context.Context, ref domain.Symbol, kind domain.EndpointKind, params Params) ([]*Table, error) {
	switch kind {
	case domain.EndpointMetadata:
		tbl, err := t.call(ctx, EndpointStockBasic, domain.EndpointMetadata,
			map[string]string{"ts_code": ref.Suffixed()},
			"ts_code,symbol,name,fullname,area,industry,market,exchange,list_status,list_date")
		return asTables(tbl), err

	case domain.EndpointDaily:
		p := map[string]string{"ts_code": ref.Suffixed()}
		if v := params[ParamStartDate]; v != "" {
			p["start_date"] = compactDate(v, "")
		}
		if v := params[ParamEndDate]; v != "" {
			p["end_date"] = compactDate(v, "")
		}
		tbl, err := t.call(ctx, EndpointTushareDay, domain.EndpointDaily, p,
			"ts_code,trade_date,open,high,low,close,pre_close,change,pct_chg,vol,amount")
		return asTables(tbl), err

	case domain.EndpointListEvent:
		date := params[ParamTradeDate]
		if date == "" {
			return nil, NewPermanent(domain.SourceTushare, EndpointTopList, "trade_date param required", nil)
		}
		tbl, err := t.call(ctx, EndpointTopList, domain.EndpointListEvent,
			map[string]string{"trade_date": compactDate(date, "")},
			"trade_date,ts_code,name,close,pct_change,turnover_rate,amount,l_buy,l_sell,l_amount,net_amount,net_rate,amount_rate,float_values,reason")
		return asTables(tbl), err

	default:
		return nil, unsupported(domain.SourceTushare, kind)
	}
}

type tushareRequest struct {
	APIName string            `json:"api_name"`
	Token   string            `json:"token"`
	Params  map[string]string `json:"params"`
	Fields  string            `json:"fields"`
}

type tushareResponse struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data *struct {
		Fields []string `json:"fields"`
		Items  [][]any  `json:"items"`
	} `json:"data"`
}

func (t *Tushare) call(ctx context.Context, apiName string, kind domain.EndpointKind, params map[string]string, fields string) (*Table, error) {
	if t.token == "" {
		return nil, NewPermanent(domain.SourceTushare, apiName, "missing api token", nil)
	}

	req := tushareRequest{APIName: apiName, Token: t.token, Params: params, Fields: fields}

	var resp tushareResponse
	raw, err := t.client.PostJSON(ctx, domain.SourceTushare, apiName, tushareAPIURL, req, &resp)
	if err != nil {
		return rawOnly(domain.SourceTushare, apiName, kind, raw), err
	}
	if resp.Code != 0 {
		errTable := rawOnly(domain.SourceTushare, apiName, kind, raw)
		// tushare signals rate limiting through its own code/msg pair,
		// not HTTP status
		if strings.Contains(resp.Msg, "每分钟") || strings.Contains(resp.Msg, "频率") {
			return errTable, NewTransient(domain.SourceTushare, apiName, fmt.Sprintf("rate limited: %s", resp.Msg), nil)
		}
		return errTable, NewPermanent(domain.SourceTushare, apiName, fmt.Sprintf("api error %d: %s", resp.Code, resp.Msg), nil)
	}

	table := &Table{
		Source:    domain.SourceTushare,
		Endpoint:  apiName,
		Kind:      kind,
		Raw:       raw,
		FetchedAt: time.Now(),
	}
	if resp.Data == nil {
		return table, nil
	}

	for _, item := range resp.Data.Items {
		row := Row{}
		for i, field := range resp.Data.Fields {
			if i < len(item) {
				row[field] = item[i]
			}
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}
