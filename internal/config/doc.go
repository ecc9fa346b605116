// Package config loads, normalizes, and validates bidskit configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files. The Config type centralizes every knob the
// CLI needs: dataset conventions (reference scan suffix, backup location),
// import thresholds, and log routing. Per-invocation switches such as dry-run
// and overwrite are deliberately NOT configuration; they are passed explicitly
// to each component so no ambient mutable state exists.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths and clear validation errors.
package config
