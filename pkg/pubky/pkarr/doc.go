// Package pkarr resolves pubky identities to the homeserver that hosts them.
//
// Records travel as signed packets: an Ed25519 signature, a microsecond
// timestamp and a DNS message whose TXT answers carry the data. Packets are
// published to HTTP relays (Relay) or kept in process (Memory).
package pkarr
