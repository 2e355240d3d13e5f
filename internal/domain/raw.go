package domain

import "time"

// RawRecord is the immutable archival envelope for one provider
// response. The payload is stored verbatim, original characters and
// all; nothing downstream ever mutates it.
// Corresponds to the raw_records table in PostgreSQL.
type RawRecord struct {
	ID        int64        // assigned by the store
	Symbol    *string      // canonical symbol, nil when unknown at fetch time
	Source    Source       // provider that produced the payload
	Endpoint  string       // logical call name, e.g. "stock_individual_info_em"
	Payload   string       // opaque serialized response, no normalization
	FetchedAt time.Time    // when the fetch completed
	Kind      EndpointKind // capability the fetch served
}
