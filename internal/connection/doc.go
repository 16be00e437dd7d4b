// Package connection implements the live update feed.
//
// The Listener:
//   - Holds one WebSocket connection to the streaming endpoint
//   - Decodes {"Rtype", "DataType"} frames and builds a MarketInstance per Update
//   - Records each update in the snapshot cache
//   - Fans the update out to every registered subscriber and waits for all of
//     them before reading the next frame
//   - Reconnects with an injectable backoff; 401/403 on the handshake is fatal
package connection
