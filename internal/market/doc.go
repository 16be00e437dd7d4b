// Package market caches MarketInstance snapshots.
//
// The cache is a set keyed by snapshot id plus a "latest" pointer. Both the
// REST client and the Listener write to it.
package market
