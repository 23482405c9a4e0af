package ledger

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/gagliardetto/solana-go"
)

type balanceKey struct {
	owner solana.PublicKey
	mint  solana.PublicKey
}

// MemoryLedger is an in-process Ledger for local mode and tests. Each
// transfer is atomic under the ledger lock: it either fully applies or
// leaves every balance untouched.
type MemoryLedger struct {
	mu       sync.Mutex
	balances map[balanceKey]uint64
	withheld map[solana.PublicKey]uint64
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		balances: make(map[balanceKey]uint64),
		withheld: make(map[solana.PublicKey]uint64),
	}
}

// Credit seeds an account balance. Provisioning/test helper.
func (l *MemoryLedger) Credit(owner, mint solana.PublicKey, amount uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[balanceKey{owner, mint}] += amount
}

// Seed credits balances from a comma-separated list of owner:mint:amount
// entries. Local-mode bootstrap; blank entries are skipped.
func (l *MemoryLedger) Seed(entries string) error {
	for _, entry := range strings.Split(entries, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.Split(entry, ":")
		if len(parts) != 3 {
			return fmt.Errorf("malformed seed entry %q", entry)
		}
		owner, err := solana.PublicKeyFromBase58(strings.TrimSpace(parts[0]))
		if err != nil {
			return fmt.Errorf("seed entry %q: %w", entry, err)
		}
		mint, err := solana.PublicKeyFromBase58(strings.TrimSpace(parts[1]))
		if err != nil {
			return fmt.Errorf("seed entry %q: %w", entry, err)
		}
		amount, err := strconv.ParseUint(strings.TrimSpace(parts[2]), 10, 64)
		if err != nil {
			return fmt.Errorf("seed entry %q: %w", entry, err)
		}
		l.Credit(owner, mint, amount)
	}
	return nil
}

func (l *MemoryLedger) Balance(ctx context.Context, owner, mint solana.PublicKey) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[balanceKey{owner, mint}], nil
}

// WithheldFees returns the total fees the ledger has withheld for a mint.
func (l *MemoryLedger) WithheldFees(mint solana.PublicKey) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.withheld[mint]
}

func (l *MemoryLedger) TransferWithFee(ctx context.Context, from, to, mint solana.PublicKey, amount, fee uint64) error {
	if fee > amount {
		return fmt.Errorf("%w: fee %d exceeds amount %d", ErrTransferFailed, fee, amount)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	src := balanceKey{from, mint}
	if l.balances[src] < amount {
		return fmt.Errorf("%w: %s holds %d of %s, need %d",
			ErrTransferFailed, from, l.balances[src], mint, amount)
	}

	l.balances[src] -= amount
	l.balances[balanceKey{to, mint}] += amount - fee
	l.withheld[mint] += fee
	return nil
}
