package migrations

import "embed"

// PostgresFS embeds the PostgreSQL schema files: the raw archive,
// reconciled profiles, list events and ingest checkpoints.
//
//go:embed postgres/*.sql
var PostgresFS embed.FS

// ClickhouseFS embeds the ClickHouse schema files for the daily-bar
// timeseries.
//
//go:embed clickhouse/*.sql
var ClickhouseFS embed.FS
