package services

import (
	"errors"
	"testing"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/cryptogains/src/logger"
	"github.com/username/cryptogains/src/models"
	"github.com/username/cryptogains/src/processors"
)

const (
	testWallet = "0x1111111111111111111111111111111111111111"
	testVault  = "0xdAC17F958D2ee523a2206206994597C13D831ec7"
)

func init() {
	logger.InitLogger("error", "json")
}

type stubTransferSource struct {
	inbound  []models.TransferRecord
	outbound []models.TransferRecord
	err      error
	calls    int
}

func (s *stubTransferSource) FetchTransfers(addresses []string) ([]models.TransferRecord, []models.TransferRecord, error) {
	s.calls++
	return s.inbound, s.outbound, s.err
}

func testTransfer(block int64, from, to, amount, price string) models.TransferRecord {
	a := decimal.RequireFromString(amount)
	p := decimal.RequireFromString(price)
	return models.TransferRecord{
		Timestamp:   1_600_000_000 + block,
		Block:       block,
		Hash:        "0xhash" + decimal.NewFromInt(block).String(),
		LogIndex:    1,
		ChainID:     1,
		Symbol:      "YFI",
		Vault:       testVault,
		Type:        "transfer",
		FromAddress: from,
		ToAddress:   to,
		Amount:      a,
		Price:       p,
		ValueUSD:    a.Mul(p),
		GasUsed:     decimal.RequireFromString("21000.0"),
		GasPrice:    decimal.RequireFromString("30000000000.0"),
	}
}

func TestGenerateReportEndToEnd(t *testing.T) {
	source := &stubTransferSource{
		inbound:  []models.TransferRecord{testTransfer(100, "0xaa", testWallet, "10", "1")},
		outbound: []models.TransferRecord{testTransfer(200, testWallet, "0xbb", "6", "2")},
	}
	service := NewReportService(source, cache.New(time.Minute, time.Minute))

	report, err := service.GenerateReport([]string{testWallet}, processors.MethodFIFO)
	require.NoError(t, err)
	require.Len(t, report.TaxableEvents, 1)
	assert.Equal(t, "$6.00", report.TaxableEvents[0].CostBasis)
	assert.Equal(t, "$12.00", report.TaxableEvents[0].Proceeds)
	assert.Equal(t, "$6.00", report.TaxableEvents[0].GainLoss)
	require.Len(t, report.UnspentLots, 1)
	assert.Equal(t, "4", report.UnspentLots[0].Amount.String())
	assert.Len(t, report.Transactions, 2)
	assert.NotNil(t, report.Failures)
}

func TestGenerateReportUsesCache(t *testing.T) {
	source := &stubTransferSource{
		inbound: []models.TransferRecord{testTransfer(100, "0xaa", testWallet, "10", "1")},
	}
	service := NewReportService(source, cache.New(time.Minute, time.Minute))

	first, err := service.GenerateReport([]string{testWallet}, processors.MethodFIFO)
	require.NoError(t, err)
	second, err := service.GenerateReport([]string{testWallet}, processors.MethodFIFO)
	require.NoError(t, err)

	assert.Same(t, first, second, "second call must be served from cache")
	assert.Equal(t, 1, source.calls)

	// A different method is a different cache entry.
	_, err = service.GenerateReport([]string{testWallet}, processors.MethodLIFO)
	require.NoError(t, err)
	assert.Equal(t, 2, source.calls)
}

func TestGenerateReportNoTransactions(t *testing.T) {
	service := NewReportService(&stubTransferSource{}, cache.New(time.Minute, time.Minute))

	_, err := service.GenerateReport([]string{testWallet}, processors.MethodFIFO)
	assert.ErrorIs(t, err, ErrNoTransactions)
}

func TestGenerateReportPropagatesSourceError(t *testing.T) {
	source := &stubTransferSource{err: errors.New("disk on fire")}
	service := NewReportService(source, cache.New(time.Minute, time.Minute))

	_, err := service.GenerateReport([]string{testWallet}, processors.MethodFIFO)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk on fire")
}

func TestGenerateReportSurfacesInsufficientLots(t *testing.T) {
	source := &stubTransferSource{
		outbound: []models.TransferRecord{testTransfer(200, testWallet, "0xbb", "6", "2")},
	}
	service := NewReportService(source, cache.New(time.Minute, time.Minute))

	_, err := service.GenerateReport([]string{testWallet}, processors.MethodFIFO)
	require.Error(t, err)

	var insufficient *processors.InsufficientLotsError
	require.True(t, errors.As(err, &insufficient))
	assert.Equal(t, testVault, insufficient.Vault)
	assert.Equal(t, "6", insufficient.Remaining.String())
}
