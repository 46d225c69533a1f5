// Package clipsource discovers candidate clips from the upstream clips API.
package clipsource
