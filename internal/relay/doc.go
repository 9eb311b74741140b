// Package relay implements the reference relay server side of the pairing
// protocol.
//
// A device first registers over HTTP and receives a short-lived token. It
// then opens the duplex channel with that token and is attached to the
// [Hub], which routes application envelopes between a Master and its
// Slaves, emits relay heartbeats and tells the Master when a Slave attaches
// or detaches.
package relay
