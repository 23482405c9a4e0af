package pool

import (
	"crypto/sha256"

	"github.com/aman-zulfiqar/solana-swap-settlement/internal/constants"
	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
)

// DeriveAddress computes the deterministic address of the pool for a mint
// pair: sha256 over a fixed seed prefix and both mints, base58 encoded.
// Lookups validate the stored pool against this derivation so a reference
// can never be silently pointed at a different pair's state.
func DeriveAddress(tokenA, tokenB solana.PublicKey) string {
	h := sha256.New()
	h.Write([]byte(constants.PoolSeedPrefix))
	h.Write(tokenA.Bytes())
	h.Write(tokenB.Bytes())
	return base58.Encode(h.Sum(nil))
}

// VerifyAddress checks that a pool's stored address and mints are
// consistent with the derivation.
func VerifyAddress(p *SwapPool) error {
	if p.Address != DeriveAddress(p.TokenAMint, p.TokenBMint) {
		return ErrInvalidTokenMint
	}
	return nil
}

// Authority returns the ledger identity that custodies the pool's vaults.
// The derived address is a 32-byte hash, so it doubles as a public key.
func (p *SwapPool) Authority() solana.PublicKey {
	pk, err := solana.PublicKeyFromBase58(p.Address)
	if err != nil {
		return solana.PublicKey{}
	}
	return pk
}
