package model

import "time"

// TimeFormat is the ISO-8601 UTC layout used for every timestamp written to
// disk. Lexicographic comparison of two such strings is equivalent to
// chronological comparison.
const TimeFormat = time.RFC3339Nano

// NowUTC returns the current wall-clock time formatted per TimeFormat.
// Heartbeat staleness is computed by parsing the persisted last_heartbeat
// string and comparing it with the current time, so it is wall-clock based
// as well; no monotonic reading survives the round-trip through this format.
func NowUTC() string {
	return time.Now().UTC().Format(TimeFormat)
}
