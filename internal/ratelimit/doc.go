// Package ratelimit provides named permit pools that bound how many calls
// the pipeline makes to an external API per interval. Each grant schedules
// its own replenishment, so a pool of N permits over interval T sustains at
// most N grants per T with permits returning one at a time.
package ratelimit
