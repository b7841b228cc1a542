package processors

import (
	"sort"

	"github.com/username/cryptogains/src/models"
)

// CostBasisMethod selects which lot a disposal consumes first.
type CostBasisMethod string

const (
	// MethodFIFO consumes the oldest-acquired lot first.
	MethodFIFO CostBasisMethod = "FIFO"
	// MethodLIFO consumes the newest-acquired lot first.
	MethodLIFO CostBasisMethod = "LIFO"
)

// ParseCostBasisMethod validates a method selector from a request. Invalid
// values are rejected before the engine runs.
func ParseCostBasisMethod(s string) (CostBasisMethod, error) {
	switch CostBasisMethod(s) {
	case MethodFIFO:
		return MethodFIFO, nil
	case MethodLIFO:
		return MethodLIFO, nil
	}
	return "", ErrInvalidMethod
}

// Ledger is the ordered set of unconsumed lots for one asset. Lots are held
// in method order: ascending acquisition block for FIFO, descending for
// LIFO. The ledger is owned exclusively by one matching run and mutated only
// through ActiveLot/Remove and in-place lot reduction.
type Ledger struct {
	method CostBasisMethod
	lots   []*models.Lot
}

// BuildLedger creates one lot per acquisition and orders them per the
// selected method. Acquisition order ties on block are kept stable so
// same-block lots resolve in store order.
func BuildLedger(acquisitions []models.TransferRecord, method CostBasisMethod) *Ledger {
	lots := make([]*models.Lot, 0, len(acquisitions))
	for _, t := range acquisitions {
		lots = append(lots, models.NewLot(t))
	}
	sort.SliceStable(lots, func(i, j int) bool {
		if method == MethodLIFO {
			return lots[i].Block > lots[j].Block
		}
		return lots[i].Block < lots[j].Block
	})
	return &Ledger{method: method, lots: lots}
}

func (l *Ledger) Empty() bool { return len(l.lots) == 0 }

// Lots returns the remaining lots in method order.
func (l *Ledger) Lots() []*models.Lot { return l.lots }

// ActiveLot selects the lot the given disposal should consume next: among
// lots acquired at or before the disposal's timestamp, the first in method
// order. If no lot is causality-eligible (every remaining lot postdates the
// disposal, which a causally consistent ledger never produces but nothing
// structurally prevents), it degrades to pure method order and reports
// fallback=true so the caller can log it. Returns nil on an empty ledger.
func (l *Ledger) ActiveLot(disposal models.TransferRecord) (lot *models.Lot, fallback bool) {
	if len(l.lots) == 0 {
		return nil, false
	}
	for _, candidate := range l.lots {
		if candidate.Timestamp <= disposal.Timestamp {
			return candidate, false
		}
	}
	return l.lots[0], true
}

// Remove drops a fully consumed lot from the ledger.
func (l *Ledger) Remove(lot *models.Lot) {
	for i, candidate := range l.lots {
		if candidate == lot {
			l.lots = append(l.lots[:i], l.lots[i+1:]...)
			return
		}
	}
}

// SortDisposals orders disposals for resolution: always oldest-first by
// block regardless of cost-basis method, because later disposals depend on
// the lot state left behind by earlier ones. Ties break on log index.
func SortDisposals(disposals []models.TransferRecord) {
	sort.SliceStable(disposals, func(i, j int) bool {
		if disposals[i].Block != disposals[j].Block {
			return disposals[i].Block < disposals[j].Block
		}
		return disposals[i].LogIndex < disposals[j].LogIndex
	})
}
