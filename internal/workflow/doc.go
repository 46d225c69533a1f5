// Package workflow orchestrates channel runs end to end: discover recent
// clips, download the best candidates, analyze them, and gate the results
// for publication.
//
// Each run is isolated. A clip that fails inside a run is recorded as FAILED
// and skipped; only precondition and configuration errors abort the run
// itself. Runs for different channels execute concurrently while sharing the
// declared rate limit pools.
package workflow
