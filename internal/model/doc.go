// Package model defines the object graph rebuilt from Vio API responses.
//
// One MarketInstance is one snapshot ("scan") of the market:
//
//	MarketInstance ─┬─ ScanInfo (one per snapshot)
//	                └─ items: name → ItemInstance ─┬─ ScanInfo (shared pointer)
//	                                               ├─ ItemSummary
//	                                               └─ ItemListings ─ Listing → RobloxUser
//
// Conventions:
//   - Prices: decimal.Decimal (upstream sends plain JSON numbers)
//   - Summary volumes: decimal.Decimal (may be fractional)
//   - Listing amounts and ids: int64
//   - Times: time.Time in UTC
//
// Values are built once by the api package and treated as read-only afterwards.
package model
