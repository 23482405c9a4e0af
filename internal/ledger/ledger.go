package ledger

import (
	"context"
	"errors"

	"github.com/gagliardetto/solana-go"
)

// ErrTransferFailed is the kind propagated for any failed transfer leg.
var ErrTransferFailed = errors.New("transfer failed")

// Ledger is the external token-transfer collaborator. A transfer must
// compute-and-deduct the per-asset fee atomically with the movement and
// fail without partial effect.
type Ledger interface {
	// TransferWithFee debits amount from the sender's balance of mint and
	// credits amount-fee to the recipient; the fee is withheld by the
	// ledger itself.
	TransferWithFee(ctx context.Context, from, to, mint solana.PublicKey, amount, fee uint64) error

	// Balance returns the available balance of mint held by owner.
	Balance(ctx context.Context, owner, mint solana.PublicKey) (uint64, error)
}
