package adapter

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/yuniezzx/MarketSeer/internal/domain"
)

// Logical endpoint names, kept identical to the akshare function
// names so archived raw records line up with the provider's API
// surface.
const (
	EndpointIndividualInfoEM = "stock_individual_info_em"
	EndpointBasicInfoXQ      = "stock_individual_basic_info_xq"
	EndpointHistEM           = "stock_zh_a_hist"
	EndpointLhbDetailEM      = "stock_lhb_detail_em"
)

const (
	emStockGetURL    = "https://push2.eastmoney.com/api/qt/stock/get"
	emKlineURL       = "https://push2his.eastmoney.com/api/qt/stock/kline/get"
	emDataCenterURL  = "https://datacenter-web.eastmoney.com/api/data/v1/get"
	xqCompanyInfoURL = "https://stock.xueqiu.com/v5/stock/f10/cn/company.json"
)

// Akshare serves metadata from eastmoney and xueqiu, daily bars from
// the eastmoney kline API, and Dragon-Tiger disclosures from the
// eastmoney data center. Column names follow the akshare library's
// conventions so the reconcile schema reads naturally.
type Akshare struct {
	client *HTTPClient
}

// NewAkshare creates the akshare adapter.
func NewAkshare(client *HTTPClient) *Akshare {
	return &Akshare{client: client}
}

var _ Adapter = (*Akshare)(nil)

func (a *Akshare) Source() domain.Source {
	return domain.SourceAkshare
}

func (a *Akshare) Fetch(ctx context.Context, ref domain.Symbol, kind domain.EndpointKind, params Params) ([]*Table, error) {
	switch kind {
	case domain.EndpointMetadata:
		return a.fetchMetadata(ctx, ref)
	case domain.EndpointDaily:
		t, err := a.fetchDaily(ctx, ref, params)
		return asTables(t), err
	case domain.EndpointListEvent:
		t, err := a.fetchListEvents(ctx, params)
		return asTables(t), err
	default:
		return nil, unsupported(domain.SourceAkshare, kind)
	}
}

// fetchMetadata consults eastmoney first and xueqiu second. A failure
// of one endpoint does not discard the other's table; the first error
// is returned alongside whatever succeeded. Tables that arrive on an
// error branch (row-less, Raw only) are kept so the payload can still
// be archived.
func (a *Akshare) fetchMetadata(ctx context.Context, ref domain.Symbol) ([]*Table, error) {
	var tables []*Table
	var firstErr error

	em, err := a.fetchIndividualInfoEM(ctx, ref)
	if em != nil {
		tables = append(tables, em)
	}
	if err != nil {
		firstErr = err
	}

	xq, err := a.fetchBasicInfoXQ(ctx, ref)
	if xq != nil {
		tables = append(tables, xq)
	}
	if err != nil && firstErr == nil {
		firstErr = err
	}

	return tables, firstErr
}

// emSecID renders the eastmoney security id: market prefix 1 for
// Shanghai, 0 for everything else, then the plain code.
func emSecID(ref domain.Symbol) string {
	if ref.Exchange == domain.ExchangeShanghai {
		return "1." + ref.Plain()
	}
	return "0." + ref.Plain()
}

type emStockGetResponse struct {
	Data *struct {
		Code        string  `json:"f57"`
		Name        string  `json:"f58"`
		TotalShares float64 `json:"f84"`
		FloatShares float64 `json:"f85"`
		TotalCap    float64 `json:"f116"`
		FloatCap    float64 `json:"f117"`
		Industry    string  `json:"f127"`
		ListDate    int64   `json:"f189"` // YYYYMMDD as a number
	} `json:"data"`
}

func (a *Akshare) fetchIndividualInfoEM(ctx context.Context, ref domain.Symbol) (*Table, error) {
	query := url.Values{}
	query.Set("secid", emSecID(ref))
	query.Set("fields", "f57,f58,f84,f85,f116,f117,f127,f189")

	var resp emStockGetResponse
	raw, err := a.client.GetJSON(ctx, domain.SourceAkshare, EndpointIndividualInfoEM, emStockGetURL, query, &resp)
	if err != nil {
		return rawOnly(domain.SourceAkshare, EndpointIndividualInfoEM, domain.EndpointMetadata, raw), err
	}

	table := &Table{
		Source:    domain.SourceAkshare,
		Endpoint:  EndpointIndividualInfoEM,
		Kind:      domain.EndpointMetadata,
		Raw:       raw,
		FetchedAt: time.Now(),
	}
	if resp.Data == nil || resp.Data.Code == "" {
		// eastmoney answers 200 with empty data for unknown codes; the
		// payload is still returned for the archive
		return table, NewPermanent(domain.SourceAkshare, EndpointIndividualInfoEM,
			fmt.Sprintf("no data for %s", ref.Plain()), nil)
	}

	row := Row{
		"股票代码": resp.Data.Code,
		"股票简称": resp.Data.Name,
		"总股本":  resp.Data.TotalShares,
		"流通股":  resp.Data.FloatShares,
		"总市值":  resp.Data.TotalCap,
		"流通市值": resp.Data.FloatCap,
		"行业":   resp.Data.Industry,
	}
	if resp.Data.ListDate > 0 {
		row["上市时间"] = float64(resp.Data.ListDate)
	}
	table.Rows = []Row{row}
	return table, nil
}

type xqCompanyResponse struct {
	Data *struct {
		Company map[string]any `json:"company"`
	} `json:"data"`
	ErrorCode int    `json:"error_code"`
	ErrorDesc string `json:"error_description"`
}

func (a *Akshare) fetchBasicInfoXQ(ctx context.Context, ref domain.Symbol) (*Table, error) {
	query := url.Values{}
	query.Set("symbol", ref.Prefixed())

	var resp xqCompanyResponse
	raw, err := a.client.GetJSON(ctx, domain.SourceAkshare, EndpointBasicInfoXQ, xqCompanyInfoURL, query, &resp)
	if err != nil {
		return rawOnly(domain.SourceAkshare, EndpointBasicInfoXQ, domain.EndpointMetadata, raw), err
	}

	table := &Table{
		Source:    domain.SourceAkshare,
		Endpoint:  EndpointBasicInfoXQ,
		Kind:      domain.EndpointMetadata,
		Raw:       raw,
		FetchedAt: time.Now(),
	}
	if resp.ErrorCode != 0 {
		return table, NewPermanent(domain.SourceAkshare, EndpointBasicInfoXQ,
			fmt.Sprintf("xueqiu error %d: %s", resp.ErrorCode, resp.ErrorDesc), nil)
	}
	if resp.Data == nil || len(resp.Data.Company) == 0 {
		return table, nil // empty table: no data is not an error here
	}

	// Flatten the nested affiliate_industry object so the reconcile
	// schema can address its fields by plain column name.
	row := Row{}
	for k, v := range resp.Data.Company {
		if k == "affiliate_industry" {
			if ind, ok := v.(map[string]any); ok {
				row["affiliate_industry_ind_code"] = ind["ind_code"]
				row["affiliate_industry_ind_name"] = ind["ind_name"]
			}
			continue
		}
		row[k] = v
	}
	table.Rows = []Row{row}
	return table, nil
}

type emKlineResponse struct {
	Data *struct {
		Code   string   `json:"code"`
		Klines []string `json:"klines"`
	} `json:"data"`
}

// fetchDaily pulls forward-adjusted daily bars. Column names match
// akshare's stock_zh_a_hist output.
func (a *Akshare) fetchDaily(ctx context.Context, ref domain.Symbol, params Params) (*Table, error) {
	query := url.Values{}
	query.Set("secid", emSecID(ref))
	query.Set("klt", "101") // daily
	query.Set("fqt", "1")   // forward adjusted
	query.Set("fields1", "f1,f2,f3,f4,f5,f6")
	query.Set("fields2", "f51,f52,f53,f54,f55,f56,f57,f58,f59,f60,f61")
	query.Set("beg", compactDate(params[ParamStartDate], "19900101"))
	query.Set("end", compactDate(params[ParamEndDate], "20500101"))

	var resp emKlineResponse
	raw, err := a.client.GetJSON(ctx, domain.SourceAkshare, EndpointHistEM, emKlineURL, query, &resp)
	if err != nil {
		return rawOnly(domain.SourceAkshare, EndpointHistEM, domain.EndpointDaily, raw), err
	}

	table := &Table{
		Source:    domain.SourceAkshare,
		Endpoint:  EndpointHistEM,
		Kind:      domain.EndpointDaily,
		Raw:       raw,
		FetchedAt: time.Now(),
	}
	if resp.Data == nil {
		return table, nil
	}

	for _, line := range resp.Data.Klines {
		// date,open,close,high,low,volume,amount,amplitude,pct_chg,chg,turnover
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

type emDataCenterResponse struct {
	Result *struct {
		Data []map[string]any `json:"data"`
	} `json:"result"`
	Success bool `json:"success"`
}

// fetchListEvents pulls the Dragon-Tiger detail list for one trade
// date. Column names match akshare's stock_lhb_detail_em output.
func (a *Akshare) fetchListEvents(ctx context.Context, params Params) (*Table, error) {
	date := params[ParamTradeDate]
	if date == "" {
		return nil, NewPermanent(domain.SourceAkshare, EndpointLhbDetailEM, "trade_date param required", nil)
	}

	query := url.Values{}
	query.Set("reportName", "RPT_DAILYBILLBOARD_DETAILSNEW")
	query.Set("columns", "ALL")
	query.Set("source", "WEB")
	query.Set("sortColumns", "SECURITY_CODE,TRADE_DATE")
	query.Set("sortTypes", "1,-1")
	query.Set("pageSize", "500")
	query.Set("filter", fmt.Sprintf("(TRADE_DATE='%s')", date))

	var resp emDataCenterResponse
	raw, err := a.client.GetJSON(ctx, domain.SourceAkshare, EndpointLhbDetailEM, emDataCenterURL, query, &resp)
	if err != nil {
		return rawOnly(domain.SourceAkshare, EndpointLhbDetailEM, domain.EndpointListEvent, raw), err
	}

	table := &Table{
		Source:    domain.SourceAkshare,
		Endpoint:  EndpointLhbDetailEM,
		Kind:      domain.EndpointListEvent,
		Raw:       raw,
		FetchedAt: time.Now(),
	}
	if resp.Result == nil {
		return table, nil // no disclosures that day
	}

	for _, item := range resp.Result.Data {
		r := Row(item)
		table.Rows = append(table.Rows, Row{
			"代码":        r.Str("SECURITY_CODE"),
			"名称":        r.Str("SECURITY_NAME_ABBR"),
			"上榜日":       r.Str("TRADE_DATE"),
			"解读":        r.Str("EXPLANATION"),
			"上榜原因":      r.Str("EXPLAIN"),
			"收盘价":       item["CLOSE_PRICE"],
			"涨跌幅":       item["CHANGE_RATE"],
			"换手率":       item["TURNOVERRATE"],
			"流通市值":      item["FREE_MARKET_CAP"],
			"龙虎榜买入额":    item["BILLBOARD_BUY_AMT"],
			"龙虎榜卖出额":    item["BILLBOARD_SELL_AMT"],
			"龙虎榜净买额":    item["BILLBOARD_NET_AMT"],
			"龙虎榜成交额":    item["BILLBOARD_DEAL_AMT"],
			"市场总成交额":    item["ACCUM_AMOUNT"],
			"净买额占总成交比":  item["DEAL_NET_RATIO"],
			"成交额占总成交比":  item["DEAL_AMOUNT_RATIO"],
		})
	}
	return table, nil
}

// compactDate turns YYYY-MM-DD into YYYYMMDD, falling back when the
// parameter is absent.
func compactDate(d, fallback string) string {
	if d == "" {
		return fallback
	}
	return strings.ReplaceAll(d, "-", "")
}
