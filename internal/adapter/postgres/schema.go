package repo

import _ "embed"

// Schema creates the drivers and ride_requests tables. Every statement is idempotent.
//
//go:embed schema.sql
var Schema string
