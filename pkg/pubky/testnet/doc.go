// Package testnet runs an isolated pubky network in process: one
// homeserver and a pkarr relay backed by an in-memory packet store.
//
//	tn, err := testnet.Start()
//	if err != nil { ... }
//	defer tn.Close()
//	client, _ := tn.Client()
//
// Start with WithListenAddr("127.0.0.1:15411") to serve the relay at the
// address the production SDK expects for its test network.
package testnet
