package processors

import (
	"strings"

	"github.com/username/cryptogains/src/models"
)

// TransferClassifier splits a raw transfer stream into acquisitions and
// disposals for one tracked-address set. Address comparison is
// case-insensitive.
type TransferClassifier struct {
	tracked map[string]struct{}
}

func NewTransferClassifier(addresses []string) *TransferClassifier {
	tracked := make(map[string]struct{}, len(addresses))
	for _, a := range addresses {
		tracked[strings.ToLower(a)] = struct{}{}
	}
	return &TransferClassifier{tracked: tracked}
}

func (c *TransferClassifier) IsTracked(address string) bool {
	_, ok := c.tracked[strings.ToLower(address)]
	return ok
}

// ClassifiedTransfers holds the filtered acquisition and disposal streams
// plus the classifier that produced them, so per-asset preparation can keep
// applying the tracked-address filters.
type ClassifiedTransfers struct {
	Acquisitions []models.TransferRecord
	Disposals    []models.TransferRecord

	classifier *TransferClassifier
}

// Classify filters the inbound and outbound streams. Self-transfers and
// zero-amount transfers are not taxable events and are dropped from both
// sides. Users can be weird and send things to themselves; zero-amount
// transfers do exist on chain (see
// 0x05ba797ba30fc4416e1932ac490a89613c525e0b5da4b95b79e9a4e28926e94e).
func (c *TransferClassifier) Classify(inbound, outbound []models.TransferRecord) ClassifiedTransfers {
	ct := ClassifiedTransfers{classifier: c}
	for _, t := range inbound {
		if !c.keep(t) || !c.IsTracked(t.ToAddress) {
			continue
		}
		ct.Acquisitions = append(ct.Acquisitions, t)
	}
	for _, t := range outbound {
		if !c.keep(t) || !c.IsTracked(t.FromAddress) {
			continue
		}
		ct.Disposals = append(ct.Disposals, t)
	}
	return ct
}

func (c *TransferClassifier) keep(t models.TransferRecord) bool {
	if strings.EqualFold(t.FromAddress, t.ToAddress) {
		return false
	}
	return t.Amount.Sign() > 0
}

// Vaults returns the distinct vault addresses touched by the classified
// transfers, disposals first, in order of first appearance. The order is
// deterministic for a given input so report output is reproducible.
func (ct ClassifiedTransfers) Vaults() []string {
	seen := make(map[string]struct{})
	var vaults []string
	for _, t := range ct.Disposals {
		if _, ok := seen[t.Vault]; !ok {
			seen[t.Vault] = struct{}{}
			vaults = append(vaults, t.Vault)
		}
	}
	for _, t := range ct.Acquisitions {
		if _, ok := seen[t.Vault]; !ok {
			seen[t.Vault] = struct{}{}
			vaults = append(vaults, t.Vault)
		}
	}
	return vaults
}

// Asset narrows the classified transfers to one vault and drops transfers
// between two tracked addresses: moving funds between your own wallets is
// internal custody movement, not a change of beneficial ownership, so it
// must neither realize gain/loss nor consume cost basis.
func (ct ClassifiedTransfers) Asset(vault string) (acquisitions, disposals []models.TransferRecord) {
	for _, t := range ct.Acquisitions {
		if t.Vault != vault || ct.classifier.IsTracked(t.FromAddress) {
			continue
		}
		acquisitions = append(acquisitions, t)
	}
	for _, t := range ct.Disposals {
		if t.Vault != vault || ct.classifier.IsTracked(t.ToAddress) {
			continue
		}
		disposals = append(disposals, t)
	}
	return acquisitions, disposals
}
