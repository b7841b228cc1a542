package processors

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/username/cryptogains/src/logger"
	"github.com/username/cryptogains/src/models"
)

// longPeriodCutoff separates short-term from long-term holdings.
const longPeriodCutoff = 365 * 24 * time.Hour

// ratioPrecision is the number of fractional digits kept when prorating gas
// costs across partial matches. Everything else in the matching path is
// multiply/subtract only and stays exact.
const ratioPrecision = 18

// weiExponent shifts native smallest-denomination gas figures to display
// units.
const weiExponent = -18

// gainsProcessorImpl resolves each asset's disposals against its lot ledger,
// emitting one taxable event per (lot portion, disposal portion) match.
type gainsProcessorImpl struct {
	method CostBasisMethod
}

func NewGainsProcessor(method CostBasisMethod) GainsProcessor {
	return &gainsProcessorImpl{method: method}
}

// Process runs the matching engine over every asset present in the
// classified transfers. Assets are independent and processed one at a time;
// disposals within an asset resolve strictly oldest-first because each one
// depends on the lot state left behind by its predecessors.
//
// On a per-asset failure the events and residual lots accumulated so far are
// returned alongside the error; nothing is rolled back.
func (p *gainsProcessorImpl) Process(ct ClassifiedTransfers) ([]models.TaxableEvent, []*models.Lot, error) {
	var events []models.TaxableEvent
	var residual []*models.Lot

	for _, vault := range ct.Vaults() {
		acquisitions, disposals := ct.Asset(vault)
		ledger := BuildLedger(acquisitions, p.method)
		SortDisposals(disposals)

		for _, disposal := range disposals {
			resolved, err := p.resolveDisposal(disposal, ledger)
			events = append(events, resolved...)
			if err != nil {
				return events, append(residual, ledger.Lots()...), err
			}
		}
		residual = append(residual, ledger.Lots()...)
	}
	return events, residual, nil
}

// resolveDisposal consumes lots until the disposal's remaining amount
// reaches exactly zero. The disposal record itself is never mutated; the
// remaining amount/value/gas are tracked locally and strictly decrease each
// iteration.
func (p *gainsProcessorImpl) resolveDisposal(disposal models.TransferRecord, ledger *Ledger) ([]models.TaxableEvent, error) {
	remaining := disposal.Amount
	remainingValue := disposal.ValueUSD
	remainingGas := disposal.GasUsed

	var events []models.TaxableEvent
	for {
		if ledger.Empty() {
			return events, &InsufficientLotsError{
				ChainID:      disposal.ChainID,
				Vault:        disposal.Vault,
				Symbol:       disposal.Symbol,
				DisposalHash: disposal.Hash,
				Remaining:    remaining,
			}
		}

		lot, fallback := ledger.ActiveLot(disposal)
		if fallback {
			logWarn("no causality-eligible lot remains, degrading to pure method order",
				"vault", disposal.Vault, "disposalHash", disposal.Hash, "lotHash", lot.Hash)
		} else if lot.Timestamp > disposal.Timestamp {
			err := &CausalityViolationError{
				Vault:             disposal.Vault,
				LotHash:           lot.Hash,
				LotTimestamp:      lot.Timestamp,
				DisposalHash:      disposal.Hash,
				DisposalTimestamp: disposal.Timestamp,
			}
			logError("causality invariant violated", "vault", err.Vault,
				"lotHash", err.LotHash, "lotTimestamp", err.LotTimestamp,
				"disposalHash", err.DisposalHash, "disposalTimestamp", err.DisposalTimestamp)
			return events, err
		}

		if remaining.GreaterThan(lot.Amount) {
			// The whole lot is consumed but the disposal is not yet
			// resolved. Exit gas is apportioned against what remains of the
			// disposal at this step, not its original total.
			proceeds := disposal.Price.Mul(lot.Amount)
			events = append(events, newTaxableEvent(lot, disposal, eventFields{
				amount:    lot.Amount,
				costBasis: lot.ValueUSD,
				proceeds:  proceeds,
				entryGas:  gasCost(lot.GasUsed, lot.GasPrice),
				exitGas:   gasCost(disposal.GasUsed, disposal.GasPrice).Mul(lot.Amount).DivRound(remaining, ratioPrecision),
			}))

			remaining = remaining.Sub(lot.Amount)
			remainingValue = remainingValue.Sub(proceeds)
			remainingGas = remainingGas.Sub(lot.GasUsed)
			ledger.Remove(lot)
			continue
		}

		// Terminal match: the active lot covers everything left.
		events = append(events, newTaxableEvent(lot, disposal, eventFields{
			amount:    remaining,
			costBasis: remaining.Mul(lot.Price),
			proceeds:  remainingValue,
			entryGas:  gasCost(lot.GasUsed, lot.GasPrice).Mul(remaining).DivRound(lot.Amount, ratioPrecision),
			exitGas:   gasCost(remainingGas, disposal.GasPrice),
		}))

		if remaining.Equal(lot.Amount) {
			ledger.Remove(lot)
		} else {
			lot.Amount = lot.Amount.Sub(remaining)
			lot.ValueUSD = lot.ValueUSD.Sub(remaining.Mul(lot.Price))
			lot.GasUsed = lot.GasUsed.Sub(remainingGas)
		}
		return events, nil
	}
}

type eventFields struct {
	amount    decimal.Decimal
	costBasis decimal.Decimal
	proceeds  decimal.Decimal
	entryGas  decimal.Decimal
	exitGas   decimal.Decimal
}

func newTaxableEvent(lot *models.Lot, disposal models.TransferRecord, f eventFields) models.TaxableEvent {
	duration, period := holdingPeriod(lot.Timestamp, disposal.Timestamp)
	return models.TaxableEvent{
		ChainID:        disposal.ChainID,
		Vault:          disposal.Vault,
		Symbol:         disposal.Symbol,
		EntryBlock:     lot.Block,
		EntryTimestamp: lot.Timestamp,
		EntryHash:      lot.Hash,
		EntryPrice:     lot.Price,
		ExitBlock:      disposal.Block,
		ExitTimestamp:  disposal.Timestamp,
		ExitHash:       disposal.Hash,
		ExitPrice:      disposal.Price,
		Amount:         f.amount,
		CostBasis:      f.costBasis,
		Proceeds:       f.proceeds,
		GainLoss:       f.proceeds.Sub(f.costBasis),
		Duration:       duration,
		Period:         period,
		EntryGasCost:   f.entryGas,
		ExitGasCost:    f.exitGas,
	}
}

func holdingPeriod(entryTimestamp, exitTimestamp int64) (time.Duration, string) {
	duration := time.Duration(exitTimestamp-entryTimestamp) * time.Second
	if duration > longPeriodCutoff {
		return duration, models.PeriodLong
	}
	return duration, models.PeriodShort
}

// gasCost converts a (gas used, gas price) pair from the chain's smallest
// denomination to display units.
func gasCost(gasUsed, gasPrice decimal.Decimal) decimal.Decimal {
	return gasUsed.Mul(gasPrice).Shift(weiExponent)
}

func logWarn(msg string, args ...any) {
	if logger.L != nil {
		logger.L.Warn(msg, args...)
	}
}

func logError(msg string, args ...any) {
	if logger.L != nil {
		logger.L.Error(msg, args...)
	}
}
