package processors

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/cryptogains/src/models"
)

func sampleEvent() models.TaxableEvent {
	return models.TaxableEvent{
		ChainID:        1,
		Vault:          yfiVault,
		Symbol:         "YFI",
		EntryBlock:     100,
		EntryTimestamp: genesisSeconds,
		EntryHash:      "0xentry",
		EntryPrice:     dec("1.2345678999"),
		ExitBlock:      200,
		ExitTimestamp:  genesisSeconds + 100*secondsPerDay,
		ExitHash:       "0xexit",
		ExitPrice:      dec("2"),
		Amount:         dec("1.234567894999"),
		CostBasis:      dec("1.005"),
		Proceeds:       dec("2.469135789998"),
		GainLoss:       dec("1.464135789998"),
		Duration:       100 * 24 * time.Hour,
		Period:         models.PeriodShort,
		EntryGasCost:   dec("0.1234567891"),
		ExitGasCost:    dec("0.2"),
	}
}

func TestFormatTaxableEventsRounding(t *testing.T) {
	formatter := NewReportFormatter()
	exports := formatter.FormatTaxableEvents([]models.TaxableEvent{sampleEvent()})
	require.Len(t, exports, 1)

	e := exports[0]
	assert.Equal(t, "$1.234568", e.EntryPrice)
	assert.Equal(t, "$2.000000", e.ExitPrice)
	assert.Equal(t, "$1.01", e.CostBasis)
	assert.Equal(t, "$2.47", e.Proceeds)
	assert.Equal(t, "$1.46", e.GainLoss)
	assert.Equal(t, "1.23456789", e.Amount.String())
	assert.Equal(t, "0.123457", e.EntryGasCost.String())
	assert.Equal(t, "100d 00h00m00s", e.Duration)
	assert.Equal(t, models.PeriodShort, e.Period)
}

func TestFormattingIsIdempotent(t *testing.T) {
	formatter := NewReportFormatter()
	events := []models.TaxableEvent{sampleEvent()}
	lots := []*models.Lot{models.NewLot(acquisition(100, "4", "1"))}

	first := formatter.FormatTaxableEvents(events)
	second := formatter.FormatTaxableEvents(events)
	assert.Equal(t, first, second)

	firstLots := formatter.FormatUnspentLots(lots)
	secondLots := formatter.FormatUnspentLots(lots)
	assert.Equal(t, firstLots, secondLots)
}

func TestFormatUnspentLotsDerivesGasCost(t *testing.T) {
	lot := models.NewLot(acquisition(100, "4", "1"))
	lot.GasUsed = dec("1000.0")
	lot.GasPrice = dec("2000000000000000.0")

	exports := NewReportFormatter().FormatUnspentLots([]*models.Lot{lot})
	require.Len(t, exports, 1)
	assert.Equal(t, "2", exports[0].GasCost.String())
	assert.True(t, exports[0].Amount.Equal(dec("4")))
}

func TestFormatEmptyCollections(t *testing.T) {
	formatter := NewReportFormatter()
	assert.Empty(t, formatter.FormatTaxableEvents(nil))
	assert.Empty(t, formatter.FormatUnspentLots(nil))
	assert.Empty(t, formatter.FormatTransfers(nil, nil))
	assert.NotNil(t, formatter.FormatTaxableEvents(nil))
	assert.NotNil(t, formatter.FormatUnspentLots(nil))
	assert.NotNil(t, formatter.FormatTransfers(nil, nil))
}

func TestFormatTransfersMergesByBlock(t *testing.T) {
	inbound := []models.TransferRecord{acquisition(300, "1", "1"), acquisition(100, "1", "1")}
	outbound := []models.TransferRecord{disposal(200, "1", "1")}

	exports := NewReportFormatter().FormatTransfers(inbound, outbound)
	require.Len(t, exports, 3)
	assert.Equal(t, int64(100), exports[0].Block)
	assert.Equal(t, int64(200), exports[1].Block)
	assert.Equal(t, int64(300), exports[2].Block)
}
