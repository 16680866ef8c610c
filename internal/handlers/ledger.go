package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/anhbaysgalan1/arena/internal/auth"
	"github.com/anhbaysgalan1/arena/internal/ledger"
	"github.com/anhbaysgalan1/arena/internal/models"
	"github.com/anhbaysgalan1/arena/internal/validation"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// LedgerService is the slice of the ledger the HTTP surface needs
type LedgerService interface {
	OpenTeamWallet(ctx context.Context, tournamentID, teamID uuid.UUID) (*models.TeamWallet, error)
	SubmitContribution(ctx context.Context, walletID, userID uuid.UUID, amount int64) (*models.TeamWallet, error)
	CloseTournamentLedger(ctx context.Context, tournamentID uuid.UUID) (*ledger.CloseResult, error)
	DistributePrize(ctx context.Context, prizeRecordID uuid.UUID) (*models.PrizeRecord, error)
	RetryDistribution(ctx context.Context, prizeRecordID uuid.UUID) (*models.PrizeRecord, error)
	CollectAdminProfit(ctx context.Context, tournamentID uuid.UUID) (*models.AdminProfitRecord, error)
	RefundAdminProfit(ctx context.Context, tournamentID uuid.UUID) (*models.AdminProfitRecord, error)
	RefundWallet(ctx context.Context, walletID uuid.UUID, reason string) (*models.TeamWallet, error)
	GetWallet(ctx context.Context, walletID uuid.UUID) (*models.TeamWallet, error)
	GetPrize(ctx context.Context, prizeRecordID uuid.UUID) (*models.PrizeRecord, error)
	GetLedgerSummary(ctx context.Context, tournamentID uuid.UUID) (*ledger.CloseResult, error)
	ListTournamentWallets(ctx context.Context, tournamentID uuid.UUID) ([]models.TeamWallet, error)
}

type LedgerHandler struct {
	service LedgerService
}

func NewLedgerHandler(service LedgerService) *LedgerHandler {
	return &LedgerHandler{service: service}
}

// Routes wires the player-facing surface; operator routes live in
// OperatorRoutes so the server can wrap them with role checks.
func (h *LedgerHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/wallets", h.OpenWallet)
	r.Get("/wallets/{walletID}", h.GetWallet)
	r.Post("/wallets/{walletID}/contributions", h.SubmitContribution)
	r.Get("/tournaments/{tournamentID}/wallets", h.ListWallets)
	r.Get("/tournaments/{tournamentID}/ledger", h.GetLedgerSummary)
	r.Get("/prizes/{prizeID}", h.GetPrize)

	return r
}

// OperatorRoutes wires the money-moving operations
func (h *LedgerHandler) OperatorRoutes() chi.Router {
	r := chi.NewRouter()

	r.Post("/tournaments/{tournamentID}/close", h.CloseTournament)
	r.Post("/tournaments/{tournamentID}/profit/collect", h.CollectProfit)
	r.Post("/tournaments/{tournamentID}/profit/refund", h.RefundProfit)
	r.Post("/prizes/{prizeID}/distribute", h.DistributePrize)
	r.Post("/prizes/{prizeID}/retry", h.RetryDistribution)
	r.Post("/wallets/{walletID}/refund", h.RefundWallet)

	return r
}

// OpenWalletRequest creates the escrow wallet for a team
type OpenWalletRequest struct {
	TournamentID uuid.UUID `json:"tournament_id" validate:"required"`
	TeamID       uuid.UUID `json:"team_id" validate:"required"`
}

func (h *LedgerHandler) OpenWallet(w http.ResponseWriter, r *http.Request) {
	var req OpenWalletRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "invalid_json", "Invalid JSON")
		return
	}
	if err := validation.Validate(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	wallet, err := h.service.OpenTeamWallet(r.Context(), req.TournamentID, req.TeamID)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusCreated, wallet)
}

// SubmitContributionRequest records one player's paid entry fee
type SubmitContributionRequest struct {
	Amount int64 `json:"amount" validate:"required,gt=0"`
}

func (h *LedgerHandler) SubmitContribution(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		writeErrorResponse(w, http.StatusUnauthorized, "unauthenticated", "User not authenticated")
		return
	}

	walletID, err := parseUUIDParam(r, "walletID")
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "invalid_id", "Invalid wallet ID")
		return
	}

	var req SubmitContributionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "invalid_json", "Invalid JSON")
		return
	}
	if err := validation.Validate(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	wallet, err := h.service.SubmitContribution(r.Context(), walletID, userID, req.Amount)
	if err != nil {
		writeLedgerError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"wallet_id":     wallet.ID,
		"wallet_status": wallet.Status,
		"balance":       wallet.Balance,
	})
}

func (h *LedgerHandler) GetWallet(w http.ResponseWriter, r *http.Request) {
	walletID, err := parseUUIDParam(r, "walletID")
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "invalid_id", "Invalid wallet ID")
		return
	}

	wallet, err := h.service.GetWallet(r.Context(), walletID)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, wallet)
}

func (h *LedgerHandler) ListWallets(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := parseUUIDParam(r, "tournamentID")
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "invalid_id", "Invalid tournament ID")
		return
	}

	wallets, err := h.service.ListTournamentWallets(r.Context(), tournamentID)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"wallets": wallets,
		"count":   len(wallets),
	})
}

func (h *LedgerHandler) GetLedgerSummary(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := parseUUIDParam(r, "tournamentID")
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "invalid_id", "Invalid tournament ID")
		return
	}

	summary, err := h.service.GetLedgerSummary(r.Context(), tournamentID)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, summary)
}

func (h *LedgerHandler) GetPrize(w http.ResponseWriter, r *http.Request) {
	prizeID, err := parseUUIDParam(r, "prizeID")
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "invalid_id", "Invalid prize ID")
		return
	}

	prize, err := h.service.GetPrize(r.Context(), prizeID)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, prize)
}

func (h *LedgerHandler) CloseTournament(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := parseUUIDParam(r, "tournamentID")
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "invalid_id", "Invalid tournament ID")
		return
	}

	result, err := h.service.CloseTournamentLedger(r.Context(), tournamentID)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, result)
}

func (h *LedgerHandler) DistributePrize(w http.ResponseWriter, r *http.Request) {
	prizeID, err := parseUUIDParam(r, "prizeID")
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "invalid_id", "Invalid prize ID")
		return
	}

	prize, err := h.service.DistributePrize(r.Context(), prizeID)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writePrizeOutcome(w, prize)
}

func (h *LedgerHandler) RetryDistribution(w http.ResponseWriter, r *http.Request) {
	prizeID, err := parseUUIDParam(r, "prizeID")
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "invalid_id", "Invalid prize ID")
		return
	}

	prize, err := h.service.RetryDistribution(r.Context(), prizeID)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writePrizeOutcome(w, prize)
}

func (h *LedgerHandler) CollectProfit(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := parseUUIDParam(r, "tournamentID")
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "invalid_id", "Invalid tournament ID")
		return
	}

	profit, err := h.service.CollectAdminProfit(r.Context(), tournamentID)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, profit)
}

func (h *LedgerHandler) RefundProfit(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := parseUUIDParam(r, "tournamentID")
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "invalid_id", "Invalid tournament ID")
		return
	}

	profit, err := h.service.RefundAdminProfit(r.Context(), tournamentID)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, profit)
}

// RefundWalletRequest reverses a wallet's collected funds
type RefundWalletRequest struct {
	Reason string `json:"reason" validate:"required,min=3,max=255"`
}

func (h *LedgerHandler) RefundWallet(w http.ResponseWriter, r *http.Request) {
	walletID, err := parseUUIDParam(r, "walletID")
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "invalid_id", "Invalid wallet ID")
		return
	}

	var req RefundWalletRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "invalid_json", "Invalid JSON")
		return
	}
	if err := validation.Validate(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	wallet, err := h.service.RefundWallet(r.Context(), walletID, req.Reason)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, wallet)
}

// writePrizeOutcome maps a payout attempt's terminal status. A failed
// transfer is not a hard error: funds may or may not have moved, so the
// record awaits operator verification and retry.
func writePrizeOutcome(w http.ResponseWriter, prize *models.PrizeRecord) {
	if prize.Status == models.PrizeStatusFailed {
		writeJSONResponse(w, http.StatusBadGateway, map[string]interface{}{
			"prize":   prize,
			"status":  prize.Status,
			"message": "Transfer failed, pending verification",
		})
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"prize":  prize,
		"status": prize.Status,
	})
}

// Helper functions
func parseUUIDParam(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	if err := validation.ValidateUUID(raw); err != nil {
		return uuid.Nil, err
	}
	return uuid.Parse(raw)
}

func writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func writeErrorResponse(w http.ResponseWriter, statusCode int, code, message string) {
	writeJSONResponse(w, statusCode, map[string]string{
		"code":  code,
		"error": message,
	})
}

// writeLedgerError maps ledger sentinel errors onto reason codes
func writeLedgerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ledger.ErrWalletNotFound),
		errors.Is(err, ledger.ErrPrizeNotFound),
		errors.Is(err, ledger.ErrLedgerNotFound),
		errors.Is(err, ledger.ErrProfitRecordNotFound):
		writeErrorResponse(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, ledger.ErrAmountMismatch):
		writeErrorResponse(w, http.StatusBadRequest, "amount_mismatch", err.Error())
	case errors.Is(err, ledger.ErrDuplicateContribution):
		writeErrorResponse(w, http.StatusConflict, "duplicate_contribution", err.Error())
	case errors.Is(err, ledger.ErrWalletNotAcceptingFunds):
		writeErrorResponse(w, http.StatusConflict, "wallet_not_accepting_funds", err.Error())
	case errors.Is(err, ledger.ErrLedgerAlreadyClosed):
		writeErrorResponse(w, http.StatusConflict, "ledger_already_closed", err.Error())
	case errors.Is(err, ledger.ErrRegistrationClosed):
		writeErrorResponse(w, http.StatusConflict, "registration_closed", err.Error())
	case errors.Is(err, ledger.ErrProfitAlreadyCollected):
		writeErrorResponse(w, http.StatusConflict, "profit_already_collected", err.Error())
	case errors.Is(err, ledger.ErrProfitNotPending):
		writeErrorResponse(w, http.StatusConflict, "profit_not_pending", err.Error())
	case errors.Is(err, ledger.ErrPrizeNotPending):
		writeErrorResponse(w, http.StatusConflict, "prize_not_pending", err.Error())
	case errors.Is(err, ledger.ErrPrizeNotRetryable):
		writeErrorResponse(w, http.StatusConflict, "prize_not_retryable", err.Error())
	case errors.Is(err, ledger.ErrWalletNotRefundable):
		writeErrorResponse(w, http.StatusConflict, "wallet_not_refundable", err.Error())
	case errors.Is(err, ledger.ErrIncompleteResults):
		writeErrorResponse(w, http.StatusConflict, "incomplete_results", err.Error())
	case errors.Is(err, ledger.ErrInvariantViolation):
		writeErrorResponse(w, http.StatusInternalServerError, "invariant_violation", err.Error())
	default:
		writeErrorResponse(w, http.StatusBadGateway, "operation_failed", "Operation failed, pending verification")
	}
}
