package domain

// Source identifies an external market-data provider.
type Source string

const (
	SourceAkshare  Source = "akshare"
	SourceEfinance Source = "efinance"
	SourceTushare  Source = "tushare"
	SourceYfinance Source = "yfinance"
)

// String returns the string representation of Source.
func (s Source) String() string {
	return string(s)
}

// IsValid checks if the source is a known provider.
func (s Source) IsValid() bool {
	switch s {
	case SourceAkshare, SourceEfinance, SourceTushare, SourceYfinance:
		return true
	}
	return false
}

// AllSources lists every known provider in default consultation order.
func AllSources() []Source {
	return []Source{SourceAkshare, SourceEfinance, SourceTushare, SourceYfinance}
}

// EndpointKind is the logical capability requested from an adapter.
type EndpointKind string

const (
	// EndpointMetadata fetches the stock basic profile.
	EndpointMetadata EndpointKind = "metadata"
	// EndpointDaily fetches daily OHLCV bars.
	EndpointDaily EndpointKind = "daily"
	// EndpointListEvent fetches Dragon-Tiger list disclosures.
	EndpointListEvent EndpointKind = "list_event"
)

// IsValid checks if the endpoint kind is known.
func (k EndpointKind) IsValid() bool {
	return k == EndpointMetadata || k == EndpointDaily || k == EndpointListEvent
}
