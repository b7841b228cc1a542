// src/services/report_service.go
package services

import (
	"fmt"
	"sort"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/username/cryptogains/src/logger"
	"github.com/username/cryptogains/src/models"
	"github.com/username/cryptogains/src/processors"
	"github.com/username/cryptogains/src/utils"
)

const (
	// Cache of fully formatted reports keyed by (addresses, method).
	ckReport = "res_report_%s"

	DefaultCacheExpiration = 15 * time.Minute
	CacheCleanupInterval   = 30 * time.Minute
)

type reportServiceImpl struct {
	transferSource TransferSource
	formatter      *processors.ReportFormatter
	reportCache    *cache.Cache
}

func NewReportService(transferSource TransferSource, reportCache *cache.Cache) ReportService {
	return &reportServiceImpl{
		transferSource: transferSource,
		formatter:      processors.NewReportFormatter(),
		reportCache:    reportCache,
	}
}

// GenerateReport runs the full pipeline for one tracked-address set:
// retrieval, classification, lot matching per asset, and display formatting.
// All state is request-scoped; nothing is persisted.
func (s *reportServiceImpl) GenerateReport(addresses []string, method processors.CostBasisMethod) (*models.Report, error) {
	overallStartTime := time.Now()
	logger.L.Info("GenerateReport START", "addresses", len(addresses), "method", method)

	cacheKey, err := reportCacheKey(addresses, method)
	if err == nil {
		if cached, found := s.reportCache.Get(cacheKey); found {
			logger.L.Debug("Cache hit for report", "key", cacheKey)
			return cached.(*models.Report), nil
		}
	} else {
		logger.L.Warn("Failed to derive report cache key, skipping cache", "error", err)
	}

	inbound, outbound, err := s.transferSource.FetchTransfers(addresses)
	if err != nil {
		return nil, fmt.Errorf("fetching transfer history: %w", err)
	}
	if len(inbound) == 0 && len(outbound) == 0 {
		return nil, ErrNoTransactions
	}

	classifier := processors.NewTransferClassifier(addresses)
	classified := classifier.Classify(inbound, outbound)

	engine := processors.NewGainsProcessor(method)
	events, residualLots, err := engine.Process(classified)
	if err != nil {
		return nil, fmt.Errorf("matching lots: %w", err)
	}

	report := &models.Report{
		TaxableEvents: s.formatter.FormatTaxableEvents(events),
		UnspentLots:   s.formatter.FormatUnspentLots(residualLots),
		Transactions:  s.formatter.FormatTransfers(classified.Acquisitions, classified.Disposals),
		Failures:      []string{},
	}

	if cacheKey != "" {
		s.reportCache.Set(cacheKey, report, cache.DefaultExpiration)
	}

	logger.L.Info("GenerateReport END",
		"events", len(report.TaxableEvents),
		"unspentLots", len(report.UnspentLots),
		"duration", time.Since(overallStartTime))
	return report, nil
}

// reportCacheKey is stable under address reordering: the same set with the
// same method hits the same entry.
func reportCacheKey(addresses []string, method processors.CostBasisMethod) (string, error) {
	sorted := append([]string(nil), addresses...)
	sort.Strings(sorted)
	digest, err := utils.GenerateETag(struct {
		Addresses []string
		Method    processors.CostBasisMethod
	}{sorted, method})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(ckReport, digest), nil
}
