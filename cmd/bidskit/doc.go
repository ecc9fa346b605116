// Command bidskit manages entity-named neuroimaging datasets: batch renames
// driven by filename entities, matched imports of events and physio
// recordings, JSON sidecar editing, gzip header scrubbing and stimulus-log
// conversion.
package main
