// Package vio ties the REST client, the snapshot cache and the Listener
// together.
//
// Client is blocking: every call takes a context and returns when the
// request completes. AsyncClient runs the same calls in goroutines, returning
// a channel that yields one Result, and owns the Listener for the live feed.
package vio
