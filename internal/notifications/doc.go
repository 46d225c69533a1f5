// Package notifications delivers pipeline progress events to an optional
// webhook endpoint.
package notifications
