package processors

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/username/cryptogains/src/models"
)

// Display precision. USD amounts render to 2 decimals, prices and gas costs
// to 6, matched amounts to 8. Rounding happens here and only here so the
// matching loop never compounds rounding error.
const (
	usdDisplayPlaces    = 2
	priceDisplayPlaces  = 6
	gasDisplayPlaces    = 6
	amountDisplayPlaces = 8
)

// ReportFormatter projects engine output into the response's display shape.
// It performs no matching logic and holds no state, so formatting the same
// input twice yields identical records.
type ReportFormatter struct{}

func NewReportFormatter() *ReportFormatter {
	return &ReportFormatter{}
}

func (f *ReportFormatter) FormatTaxableEvents(events []models.TaxableEvent) []models.TaxableEventExport {
	exports := make([]models.TaxableEventExport, 0, len(events))
	for _, e := range events {
		exports = append(exports, models.TaxableEventExport{
			ChainID:        e.ChainID,
			Vault:          e.Vault,
			Symbol:         e.Symbol,
			EntryBlock:     e.EntryBlock,
			EntryTimestamp: formatTimestamp(e.EntryTimestamp),
			EntryHash:      e.EntryHash,
			EntryPrice:     formatPrice(e.EntryPrice),
			ExitBlock:      e.ExitBlock,
			ExitTimestamp:  formatTimestamp(e.ExitTimestamp),
			ExitHash:       e.ExitHash,
			ExitPrice:      formatPrice(e.ExitPrice),
			Duration:       formatDuration(e.Duration),
			Amount:         e.Amount.Round(amountDisplayPlaces),
			CostBasis:      formatUSD(e.CostBasis),
			Proceeds:       formatUSD(e.Proceeds),
			GainLoss:       formatUSD(e.GainLoss),
			Period:         e.Period,
			EntryGasCost:   e.EntryGasCost.Round(gasDisplayPlaces),
			ExitGasCost:    e.ExitGasCost.Round(gasDisplayPlaces),
		})
	}
	return exports
}

// FormatUnspentLots renders the residual ledger state. The raw
// gas_used/gas_price fields collapse into a derived gas cost.
func (f *ReportFormatter) FormatUnspentLots(lots []*models.Lot) []models.LotExport {
	exports := make([]models.LotExport, 0, len(lots))
	for _, lot := range lots {
		exports = append(exports, models.LotExport{
			EntryBlock:     lot.Block,
			EntryTimestamp: formatTimestamp(lot.Timestamp),
			EntryHash:      lot.Hash,
			Type:           lot.Type,
			ChainID:        lot.ChainID,
			FromAddress:    lot.FromAddress,
			ToAddress:      lot.ToAddress,
			Symbol:         lot.Symbol,
			Vault:          lot.Vault,
			Amount:         lot.Amount,
			Price:          lot.Price,
			ValueUSD:       lot.ValueUSD,
			GasCost:        gasCost(lot.GasUsed, lot.GasPrice).Round(gasDisplayPlaces),
		})
	}
	return exports
}

// FormatTransfers merges the inbound and outbound streams into one gas-cost
// annotated list ordered by block.
func (f *ReportFormatter) FormatTransfers(inbound, outbound []models.TransferRecord) []models.TransferExport {
	merged := make([]models.TransferRecord, 0, len(inbound)+len(outbound))
	merged = append(merged, inbound...)
	merged = append(merged, outbound...)
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Block < merged[j].Block
	})

	exports := make([]models.TransferExport, 0, len(merged))
	for _, t := range merged {
		exports = append(exports, models.TransferExport{
			Block:       t.Block,
			Timestamp:   formatTimestamp(t.Timestamp),
			Hash:        t.Hash,
			Type:        t.Type,
			ChainID:     t.ChainID,
			FromAddress: t.FromAddress,
			ToAddress:   t.ToAddress,
			Symbol:      t.Symbol,
			Vault:       t.Vault,
			Amount:      t.Amount,
			Price:       t.Price,
			ValueUSD:    t.ValueUSD,
			GasCost:     gasCost(t.GasUsed, t.GasPrice).Round(gasDisplayPlaces),
		})
	}
	return exports
}

func formatUSD(d decimal.Decimal) string {
	return "$" + d.StringFixed(usdDisplayPlaces)
}

func formatPrice(d decimal.Decimal) string {
	return "$" + d.StringFixed(priceDisplayPlaces)
}

func formatTimestamp(ts int64) string {
	return time.Unix(ts, 0).UTC().Format(time.RFC3339)
}

func formatDuration(d time.Duration) string {
	days := int64(d / (24 * time.Hour))
	rem := d % (24 * time.Hour)
	return fmt.Sprintf("%dd %02dh%02dm%02ds",
		days, int64(rem/time.Hour), int64(rem%time.Hour/time.Minute), int64(rem%time.Minute/time.Second))
}
