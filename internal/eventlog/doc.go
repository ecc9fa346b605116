// Package eventlog converts Presentation-style stimulus logs into BIDS
// events tables. A log is a tab-separated file with a scenario banner, a
// column header and one row per event; timestamps are in 0.1 ms units.
// Conversion anchors time zero at the scanner start (the first Pulse event,
// or the first event carrying the configured start code), keeps Picture and
// Response rows whose code matches one of the configured trial-type strings,
// and emits onset/duration/trial_type/item_description rows in seconds.
package eventlog
