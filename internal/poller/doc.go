// Package poller implements the Snapshot Poller component.
//
// The Snapshot Poller:
//   - Fetches the current market snapshot on start and on every tick
//   - Hands snapshots whose id changed to a handler (the subscriber dispatch)
//   - Serves as a fallback feed when the stream endpoint is unavailable
package poller
