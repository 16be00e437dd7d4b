// Package api provides the Vio REST client and turns its responses into the
// model object graph.
//
// REST endpoints (base http://adv.vi-o.tech/api):
//   - GET  /market           current snapshot
//   - GET  /market/{id}      historical snapshot
//   - GET  /market/history   ISO datetime → scan id
//   - GET  /items            item names
//   - GET  /item/{name}/all  every snapshot of one item
//   - POST /roblox           vendor ids → Roblox users
//
// Requests are not retried; transport failures wrap ErrTransport and bodies
// missing required fields wrap ErrMalformedResponse.
package api
