package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"bank-reconciliation-service/internal/matcher"
	"bank-reconciliation-service/internal/models"
	"bank-reconciliation-service/internal/reconciler"
	apperrors "bank-reconciliation-service/pkg/errors"
	"bank-reconciliation-service/pkg/logger"
)

type handler struct {
	log logger.Logger
}

// transactionPayload is the wire form of a single transaction. Amounts
// are strings to avoid float rounding on the way in.
type transactionPayload struct {
	Date      string `json:"date"`
	Amount    string `json:"amount"`
	Reference string `json:"reference,omitempty"`
	Check     string `json:"check,omitempty"`
}

type reconcileRequest struct {
	Bank              []transactionPayload `json:"bank"`
	Ledger            []transactionPayload `json:"ledger"`
	DateToleranceDays *int                 `json:"dateToleranceDays,omitempty"`
	AmountTolerance   string               `json:"amountTolerance,omitempty"`
}

type reconcileResponse struct {
	RunID string `json:"runId"`
	*reconciler.Result
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) reconcile(w http.ResponseWriter, r *http.Request) {
	runID := uuid.NewString()
	log := h.log.WithField("run_id", runID)

	var req reconcileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	config, err := h.matcherConfig(&req)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	bank, err := convertPayloads(req.Bank, models.SideBank)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}
	ledger, err := convertPayloads(req.Ledger, models.SideLedger)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	engine, err := reconciler.NewEngine(config)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	result, err := engine.Reconcile(bank, ledger)
	if err != nil {
		log.WithError(err).Error("reconciliation failed")
		status := http.StatusInternalServerError
		if apperrors.Is(err, apperrors.CategoryValidation) {
			status = http.StatusBadRequest
		}
		h.writeError(w, status, err)
		return
	}

	log.WithFields(logger.Fields{
		"bank_count":   len(bank),
		"ledger_count": len(ledger),
		"matched":      result.Summary.Matched,
	}).Info("reconciliation run completed")

	h.writeJSON(w, http.StatusOK, reconcileResponse{RunID: runID, Result: result})
}

func (h *handler) matcherConfig(req *reconcileRequest) (*matcher.Config, error) {
	config := matcher.DefaultConfig()
	if req.DateToleranceDays != nil {
		config.DateToleranceDays = *req.DateToleranceDays
	}
	if req.AmountTolerance != "" {
		tolerance, err := decimal.NewFromString(req.AmountTolerance)
		if err != nil {
			return nil, fmt.Errorf("invalid amountTolerance %q: %w", req.AmountTolerance, err)
		}
		config.AmountTolerance = tolerance
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// convertPayloads turns wire transactions into model transactions. An
// unparseable amount rejects the whole request; an unparseable date is
// kept with a zero date so the engine reports the record as invalid
// instead of silently dropping it.
func convertPayloads(payloads []transactionPayload, side models.Side) ([]*models.Transaction, error) {
	transactions := make([]*models.Transaction, 0, len(payloads))
	for i, p := range payloads {
		amount, err := models.ParseDecimal(p.Amount)
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: invalid amount %q: %w", strings.ToLower(string(side)), i, p.Amount, err)
		}
		date, _ := models.ParseDate(p.Date)
		transactions = append(transactions, &models.Transaction{
			Date:      date,
			Amount:    amount,
			Reference: p.Reference,
			Check:     p.Check,
			Side:      side,
		})
	}
	return transactions, nil
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.log.WithError(err).Error("failed to encode response")
	}
}

func (h *handler) writeError(w http.ResponseWriter, status int, err error) {
	h.writeJSON(w, status, errorResponse{Error: err.Error()})
}
