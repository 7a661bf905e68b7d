package pubky

import (
	"github.com/pubky/pubky-ffi-go/pkg/pubky/keys"
	"github.com/pubky/pubky-ffi-go/pkg/pubky/pkarr"
)

// Aliases so callers only need to import pubky.
type (
	PublicKey = keys.PublicKey
	Keypair   = keys.Keypair
	Record    = pkarr.Record
	Resolver  = pkarr.Resolver
)

var (
	RandomKeypair        = keys.RandomKeypair
	KeypairFromSecretKey = keys.KeypairFromSecretKey
	ParsePublicKey       = keys.ParsePublicKey
	CreateRecoveryFile   = keys.CreateRecoveryFile
	DecryptRecoveryFile  = keys.DecryptRecoveryFile
)
