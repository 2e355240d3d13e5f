package reconcile

import (
	"fmt"
	"time"

	"github.com/yuniezzx/MarketSeer/internal/adapter"
	"github.com/yuniezzx/MarketSeer/internal/domain"
)

// source shorthands for the chain tables below.
const (
	ak = domain.SourceAkshare
	ef = domain.SourceEfinance
	ts = domain.SourceTushare
	yf = domain.SourceYfinance
)

// ProfileSchema returns the mapping for the stock basic profile.
// The precedence per field follows the original field-mapping
// tables: eastmoney is the richest and wins where it answers, xueqiu
// supplies the company-registry fields eastmoney lacks, efinance is
// the fallback, tushare and yahoo fill the remaining gaps.
func ProfileSchema() *Schema {
	return &Schema{Rules: []FieldRule{
		{
			Name:     "code",
			Required: true,
			Chain: []SourceField{
				{ak, adapter.EndpointIndividualInfoEM, "股票代码", asString},
				{ef, adapter.EndpointBaseInfo, "股票代码", asString},
				{ts, adapter.EndpointStockBasic, "symbol", asString},
			},
			Assign: func(p *domain.StockProfilePatch, v any) { p.Code = v.(string) },
			Validate: func(sym domain.Symbol, v any) error {
				if s, ok := v.(string); ok && s != sym.Code {
					return fmt.Errorf("code %q does not match requested symbol %q", s, sym.Code)
				}
				return nil
			},
		},
		{
			Name:     "name",
			Required: true,
			Chain: []SourceField{
				{ak, adapter.EndpointIndividualInfoEM, "股票简称", asString},
				{ak, adapter.EndpointBasicInfoXQ, "org_short_name_cn", asString},
				{ef, adapter.EndpointBaseInfo, "股票名称", asString},
				{ts, adapter.EndpointStockBasic, "name", asString},
				{yf, adapter.EndpointQuoteSummary, "shortName", asString},
			},
			Assign: func(p *domain.StockProfilePatch, v any) { p.Name = v.(string) },
		},
		{
			Name: "full_name",
			Chain: []SourceField{
				{ak, adapter.EndpointBasicInfoXQ, "org_name_cn", asString},
				{ts, adapter.EndpointStockBasic, "fullname", asString},
				{yf, adapter.EndpointQuoteSummary, "longName", asString},
			},
			Assign: func(p *domain.StockProfilePatch, v any) { s := v.(string); p.FullName = &s },
		},
		{
			Name: "market",
			Chain: []SourceField{
				{ts, adapter.EndpointStockBasic, "market", asString},
			},
			Assign: func(p *domain.StockProfilePatch, v any) { s := v.(string); p.Market = &s },
		},
		{
			Name: "industry_code",
			Chain: []SourceField{
				{ak, adapter.EndpointBasicInfoXQ, "affiliate_industry_ind_code", asString},
			},
			Assign: func(p *domain.StockProfilePatch, v any) { s := v.(string); p.IndustryCode = &s },
		},
		{
			Name: "industry",
			Chain: []SourceField{
				{ak, adapter.EndpointIndividualInfoEM, "行业", asString},
				{ak, adapter.EndpointBasicInfoXQ, "affiliate_industry_ind_name", asString},
				{ef, adapter.EndpointBaseInfo, "所处行业", asString},
				{ts, adapter.EndpointStockBasic, "industry", asString},
				{yf, adapter.EndpointQuoteSummary, "industry", asString},
			},
			Assign: func(p *domain.StockProfilePatch, v any) { s := v.(string); p.Industry = &s },
		},
		{
			Name: "list_date",
			Chain: []SourceField{
				{ak, adapter.EndpointIndividualInfoEM, "上市时间", asDate},
				{ak, adapter.EndpointBasicInfoXQ, "listed_date", asDate},
				{ts, adapter.EndpointStockBasic, "list_date", asDate},
			},
			Assign: func(p *domain.StockProfilePatch, v any) { t := v.(time.Time); p.ListDate = &t },
		},
		{
			Name: "establish_date",
			Chain: []SourceField{
				{ak, adapter.EndpointBasicInfoXQ, "established_date", asDate},
			},
			Assign: func(p *domain.StockProfilePatch, v any) { t := v.(time.Time); p.EstablishDate = &t },
		},
		{
			Name: "main_business",
			Chain: []SourceField{
				{ak, adapter.EndpointBasicInfoXQ, "main_operation_business", asString},
			},
			Assign: func(p *domain.StockProfilePatch, v any) { s := v.(string); p.MainBusiness = &s },
		},
		{
			Name: "operating_scope",
			Chain: []SourceField{
				{ak, adapter.EndpointBasicInfoXQ, "operating_scope", asString},
			},
			Assign: func(p *domain.StockProfilePatch, v any) { s := v.(string); p.Scope = &s },
		},
		{
			Name: "status",
			Chain: []SourceField{
				{ts, adapter.EndpointStockBasic, "list_status", asListStatus},
			},
			Assign: func(p *domain.StockProfilePatch, v any) { s := v.(string); p.Status = &s },
		},
		{
			Name: "total_shares",
			Chain: []SourceField{
				{ak, adapter.EndpointIndividualInfoEM, "总股本", asShares},
				{yf, adapter.EndpointQuoteSummary, "sharesOutstanding", asShares},
			},
			Assign: func(p *domain.StockProfilePatch, v any) { n := v.(int64); p.TotalShares = &n },
		},
		{
			Name: "float_shares",
			Chain: []SourceField{
				{ak, adapter.EndpointIndividualInfoEM, "流通股", asShares},
				{yf, adapter.EndpointQuoteSummary, "floatShares", asShares},
			},
			Assign: func(p *domain.StockProfilePatch, v any) { n := v.(int64); p.FloatShares = &n },
		},
		{
			Name: "total_market_cap",
			Chain: []SourceField{
				{ak, adapter.EndpointIndividualInfoEM, "总市值", asAmount},
				{ef, adapter.EndpointBaseInfo, "总市值", asAmount},
				{yf, adapter.EndpointQuoteSummary, "marketCap", asAmount},
			},
			Assign: func(p *domain.StockProfilePatch, v any) { f := v.(float64); p.TotalMarketCap = &f },
		},
		{
			Name: "float_market_cap",
			Chain: []SourceField{
				{ak, adapter.EndpointIndividualInfoEM, "流通市值", asAmount},
				{ef, adapter.EndpointBaseInfo, "流通市值", asAmount},
			},
			Assign: func(p *domain.StockProfilePatch, v any) { f := v.(float64); p.FloatMarketCap = &f },
		},
	}}
}
