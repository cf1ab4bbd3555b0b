package store

import _ "embed"

// Schema creates the warranties table. It is idempotent.
//
//go:embed schema.sql
var Schema string

// Table is the relation holding warranty records.
const Table = "warranties"
