package services

import (
	"errors"

	"github.com/username/cryptogains/src/models"
	"github.com/username/cryptogains/src/processors"
)

// ErrNoTransactions is returned when the tracked-address set has no transfer
// history at all.
var ErrNoTransactions = errors.New("no transactions found for the provided addresses")

// TransferSource retrieves the already address-filtered transfer history for
// one request: inbound transfers (to a tracked address) and outbound
// transfers (from a tracked address), both ordered ascending by block.
type TransferSource interface {
	FetchTransfers(addresses []string) (inbound, outbound []models.TransferRecord, err error)
}

// ReportService defines the interface for the core report generation logic.
type ReportService interface {
	GenerateReport(addresses []string, method processors.CostBasisMethod) (*models.Report, error)
}
