package token

import (
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/aman-zulfiqar/solana-swap-settlement/internal/constants"
	"github.com/gagliardetto/solana-go"
)

var (
	// ErrFeeTooHigh rejects schedules above the global transfer fee cap.
	ErrFeeTooHigh = errors.New("transfer fee basis points exceed maximum")

	// ErrMathOverflow is a fatal calculation error: a fee that cannot be
	// represented is never silently clamped.
	ErrMathOverflow = errors.New("transfer fee overflow")
)

// TransferFee is one epoch-scoped fee setting for a mint.
type TransferFee struct {
	Epoch       uint64 `json:"epoch"` // first epoch the setting applies to
	BasisPoints uint16 `json:"basis_points"`
	MaximumFee  uint64 `json:"maximum_fee"`
}

// FeeSchedule holds the two-epoch fee schedule of a mint: updates are
// staged as Newer and take effect at Newer.Epoch, while Older applies
// until then.
type FeeSchedule struct {
	Older TransferFee `json:"older"`
	Newer TransferFee `json:"newer"`
}

// ForEpoch picks the setting active at the given epoch.
func (s FeeSchedule) ForEpoch(epoch uint64) TransferFee {
	if epoch >= s.Newer.Epoch {
		return s.Newer
	}
	return s.Older
}

// CalculateFee computes min(amount * bps / 10000, MaximumFee) in a
// widened domain with a checked narrow.
func (f TransferFee) CalculateFee(amount uint64) (uint64, error) {
	if f.BasisPoints == 0 {
		return 0, nil
	}

	fee := new(big.Int).SetUint64(amount)
	fee.Mul(fee, new(big.Int).SetUint64(uint64(f.BasisPoints)))
	fee.Div(fee, new(big.Int).SetUint64(constants.BasisPointDenominator))

	if !fee.IsUint64() {
		return 0, ErrMathOverflow
	}

	out := fee.Uint64()
	if out > f.MaximumFee {
		out = f.MaximumFee
	}
	return out, nil
}

// Registry maps mints to their transfer fee schedules. Mints without a
// schedule levy no transfer fee.
type Registry struct {
	mu        sync.RWMutex
	schedules map[solana.PublicKey]FeeSchedule
}

func NewRegistry() *Registry {
	return &Registry{schedules: make(map[solana.PublicKey]FeeSchedule)}
}

// Register installs a fee schedule for a mint. Both settings must respect
// the global cap.
func (r *Registry) Register(mint solana.PublicKey, schedule FeeSchedule) error {
	if schedule.Older.BasisPoints > constants.MaxTransferFeeBasisPoints ||
		schedule.Newer.BasisPoints > constants.MaxTransferFeeBasisPoints {
		return fmt.Errorf("%w: max %d bps", ErrFeeTooHigh, constants.MaxTransferFeeBasisPoints)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.schedules[mint] = schedule
	return nil
}

// CalculateTransferFee returns the fee the mint levies on a transfer of
// amount during epoch. Pure: no state is touched beyond the lookup.
func (r *Registry) CalculateTransferFee(mint solana.PublicKey, amount uint64, epoch uint64) (uint64, error) {
	r.mu.RLock()
	schedule, ok := r.schedules[mint]
	r.mu.RUnlock()

	if !ok {
		return 0, nil
	}
	return schedule.ForEpoch(epoch).CalculateFee(amount)
}

// EpochFromTime buckets wall time into fee epochs.
func EpochFromTime(t time.Time) uint64 {
	return uint64(t.Unix()) / uint64(constants.EpochDuration/time.Second)
}
