package processors

import (
	"github.com/username/cryptogains/src/models"
)

// GainsProcessor defines the interface for the lot-matching engine.
type GainsProcessor interface {
	Process(ct ClassifiedTransfers) ([]models.TaxableEvent, []*models.Lot, error)
}
