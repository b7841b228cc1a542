// src/handlers/report_handler.go
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/username/cryptogains/src/config"
	"github.com/username/cryptogains/src/logger"
	"github.com/username/cryptogains/src/processors"
	"github.com/username/cryptogains/src/security/validation"
	"github.com/username/cryptogains/src/services"
	"github.com/username/cryptogains/src/utils"
)

type ReportHandler struct {
	reportService services.ReportService
}

func NewReportHandler(service services.ReportService) *ReportHandler {
	return &ReportHandler{
		reportService: service,
	}
}

type reportRequest struct {
	Addresses []string `json:"addresses"`
	Type      string   `json:"type"` // cost-basis method: "FIFO" or "LIFO"
}

func (h *ReportHandler) HandleGenerateReport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, config.Cfg.MaxRequestBodyBytes)

	var req reportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.L.Warn("Failed to decode report request body", "error", err)
		utils.SendJSONError(w, "Invalid request body. Expected JSON with 'addresses' and 'type'.", http.StatusBadRequest)
		return
	}

	method, err := processors.ParseCostBasisMethod(req.Type)
	if err != nil {
		logger.L.Warn("Rejected report request with invalid method", "type", req.Type)
		utils.SendJSONError(w, fmt.Sprintf("Invalid cost basis method %q: %v", req.Type, err), http.StatusBadRequest)
		return
	}

	if len(req.Addresses) == 0 {
		utils.SendJSONError(w, "At least one address is required.", http.StatusBadRequest)
		return
	}

	goodAddresses, badAddresses := validation.CleanAddresses(req.Addresses)
	if len(goodAddresses) == 0 {
		logger.L.Warn("Report request contained no valid addresses", "failures", len(badAddresses))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error":    "No valid addresses provided.",
			"failures": badAddresses,
		})
		return
	}

	logger.L.Info("Processing report request",
		"validAddresses", len(goodAddresses), "invalidAddresses", len(badAddresses), "method", method)

	report, err := h.reportService.GenerateReport(goodAddresses, method)
	if err != nil {
		var insufficient *processors.InsufficientLotsError
		switch {
		case errors.Is(err, services.ErrNoTransactions):
			utils.SendJSONError(w, "No transactions found for the provided addresses.", http.StatusNotFound)
		case errors.As(err, &insufficient):
			logger.L.Warn("Report failed: disposal exceeds acquisition history",
				"vault", insufficient.Vault, "symbol", insufficient.Symbol,
				"disposalHash", insufficient.DisposalHash, "remaining", insufficient.Remaining)
			utils.SendJSONError(w, fmt.Sprintf("Incomplete acquisition history: %v", insufficient), http.StatusUnprocessableEntity)
		default:
			logger.L.Error("Internal error generating report", "error", err)
			utils.SendJSONError(w, "An internal error occurred while generating the report. Please try again later.", http.StatusInternalServerError)
		}
		return
	}

	if badAddresses == nil {
		badAddresses = []string{}
	}
	// Shallow copy before attaching failures: the service may hand back a
	// cached report shared with other requests.
	response := *report
	response.Failures = badAddresses

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		logger.L.Error("Error encoding JSON response for report", "error", err)
	}
}
