// Package cli implements the interactive Routine Calendary shell: a small
// read-eval-print loop over the credential service, the per-user document
// store, and the KPI aggregator. Commands prompt for their inputs rather
// than taking positional arguments, so the loop stays a thin dispatcher.
package cli
