// Package keys implements pubky identities: Ed25519 keypairs, their
// z-base32 public keys, and passphrase-protected recovery files.
//
// Secret material is copied on every accessor so callers can zeroize their
// copy without affecting the Keypair. Keypair.String never prints the seed.
package keys
