package config

import (
	"time"
)

// ReportParallelQueries runs the export's per-sheet queries concurrently.
// The queries are read-only and independent, so ordering of the workbook is unaffected.
//
// Set via env:
// - REPORT_PARALLEL_QUERIES=true
func ReportParallelQueries() bool {
	return boolFromEnv("REPORT_PARALLEL_QUERIES")
}

// ReportSlowThreshold is the duration above which an export is logged as slow.
//
// Set via env:
// - REPORT_SLOW_MS (default 2000)
func ReportSlowThreshold() time.Duration {
	ms := intFromEnv("REPORT_SLOW_MS", 2000)
	if ms <= 0 {
		ms = 2000
	}
	return time.Duration(ms) * time.Millisecond
}

// SettingsCacheTTL bounds how long a cached settings row may be served.
// Writes always refresh the cache, the TTL only limits drift from out-of-band edits.
//
// Set via env:
// - SETTINGS_CACHE_TTL_SECONDS (default 3600, 0 disables expiry)
func SettingsCacheTTL() time.Duration {
	return time.Duration(intFromEnv("SETTINGS_CACHE_TTL_SECONDS", 3600)) * time.Second
}

// PhoneRegion is the default region used to parse local WhatsApp numbers.
//
// Set via env:
// - PHONE_REGION (default ID)
func PhoneRegion() string {
	if v := stringFromEnv("PHONE_REGION"); v != "" {
		return v
	}
	return "ID"
}
