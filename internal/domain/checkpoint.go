package domain

import "time"

// IngestCheckpoint records the last successful fetch per endpoint so
// a later run can refetch incrementally. Advanced by the orchestrator
// only after at least one successful archive for the endpoint in a
// run; a fully failed run leaves the checkpoint where it was.
// Corresponds to the ingest_checkpoints table in PostgreSQL.
type IngestCheckpoint struct {
	Endpoint      string    // unique logical call name
	LastFetchedAt time.Time // fetch time of the newest archived payload
	Params        string    // opaque last-used query parameters (JSON)
	UpdatedAt     time.Time
}
