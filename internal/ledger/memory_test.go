package ledger

import (
	"context"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLedger_TransferWithFee(t *testing.T) {
	l := NewMemoryLedger()
	ctx := context.Background()

	alice := solana.PublicKey{0x01}
	bob := solana.PublicKey{0x02}
	mint := solana.PublicKey{0x0a}

	l.Credit(alice, mint, 10_000)

	require.NoError(t, l.TransferWithFee(ctx, alice, bob, mint, 1_000, 10))

	aliceBal, err := l.Balance(ctx, alice, mint)
	require.NoError(t, err)
	assert.Equal(t, uint64(9_000), aliceBal)

	// The recipient receives the amount net of the withheld fee
	bobBal, err := l.Balance(ctx, bob, mint)
	require.NoError(t, err)
	assert.Equal(t, uint64(990), bobBal)

	assert.Equal(t, uint64(10), l.WithheldFees(mint))
}

func TestMemoryLedger_InsufficientBalance(t *testing.T) {
	l := NewMemoryLedger()
	ctx := context.Background()

	alice := solana.PublicKey{0x01}
	bob := solana.PublicKey{0x02}
	mint := solana.PublicKey{0x0a}

	l.Credit(alice, mint, 500)

	err := l.TransferWithFee(ctx, alice, bob, mint, 1_000, 0)
	assert.ErrorIs(t, err, ErrTransferFailed)

	// A failed transfer moves nothing
	aliceBal, _ := l.Balance(ctx, alice, mint)
	bobBal, _ := l.Balance(ctx, bob, mint)
	assert.Equal(t, uint64(500), aliceBal)
	assert.Zero(t, bobBal)
	assert.Zero(t, l.WithheldFees(mint))
}

func TestMemoryLedger_FeeExceedsAmount(t *testing.T) {
	l := NewMemoryLedger()

	alice := solana.PublicKey{0x01}
	bob := solana.PublicKey{0x02}
	mint := solana.PublicKey{0x0a}

	l.Credit(alice, mint, 10_000)

	err := l.TransferWithFee(context.Background(), alice, bob, mint, 100, 101)
	assert.ErrorIs(t, err, ErrTransferFailed)
}

func TestMemoryLedger_Seed(t *testing.T) {
	l := NewMemoryLedger()
	ctx := context.Background()

	alice := solana.PublicKey{0x01}
	mintA := solana.PublicKey{0x0a}
	mintB := solana.PublicKey{0x0b}

	entries := alice.String() + ":" + mintA.String() + ":1500, " +
		alice.String() + ":" + mintB.String() + ":200"
	require.NoError(t, l.Seed(entries))

	balA, err := l.Balance(ctx, alice, mintA)
	require.NoError(t, err)
	assert.Equal(t, uint64(1_500), balA)

	balB, err := l.Balance(ctx, alice, mintB)
	require.NoError(t, err)
	assert.Equal(t, uint64(200), balB)

	// Blank entries are tolerated, malformed ones are not
	assert.NoError(t, l.Seed(" , "))
	assert.Error(t, l.Seed("not-an-entry"))
	assert.Error(t, l.Seed(alice.String()+":"+mintA.String()+":abc"))
}

func TestMemoryLedger_BalancesArePerMint(t *testing.T) {
	l := NewMemoryLedger()
	ctx := context.Background()

	alice := solana.PublicKey{0x01}
	mintA := solana.PublicKey{0x0a}
	mintB := solana.PublicKey{0x0b}

	l.Credit(alice, mintA, 100)

	balA, err := l.Balance(ctx, alice, mintA)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), balA)

	balB, err := l.Balance(ctx, alice, mintB)
	require.NoError(t, err)
	assert.Zero(t, balB)
}
