package processors

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrInvalidMethod is returned when the requested cost-basis method is not
// one of FIFO or LIFO. It is raised before any matching begins.
var ErrInvalidMethod = errors.New("cost basis method must be one of [\"FIFO\",\"LIFO\"]")

// InsufficientLotsError reports a disposal that cannot be fully resolved
// because the asset's ledger ran out of acquisition history. It is fatal for
// the asset being processed and carries enough context to diagnose the gap.
type InsufficientLotsError struct {
	ChainID      int64
	Vault        string
	Symbol       string
	DisposalHash string
	Remaining    decimal.Decimal
}

func (e *InsufficientLotsError) Error() string {
	return fmt.Sprintf("no unspent lots remain for %s (vault %s, chainid %d): disposal %s has %s unresolved",
		e.Symbol, e.Vault, e.ChainID, e.DisposalHash, e.Remaining.String())
}

// CausalityViolationError reports a selected lot whose acquisition postdates
// its disposal outside the documented fallback. This is an invariant break,
// not a recoverable condition.
type CausalityViolationError struct {
	Vault             string
	LotHash           string
	LotTimestamp      int64
	DisposalHash      string
	DisposalTimestamp int64
}

func (e *CausalityViolationError) Error() string {
	return fmt.Sprintf("lot %s (acquired %d) selected for earlier disposal %s (%d) on vault %s",
		e.LotHash, e.LotTimestamp, e.DisposalHash, e.DisposalTimestamp, e.Vault)
}
