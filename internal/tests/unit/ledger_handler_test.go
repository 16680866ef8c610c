package unit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anhbaysgalan1/arena/internal/auth"
	"github.com/anhbaysgalan1/arena/internal/handlers"
	"github.com/anhbaysgalan1/arena/internal/ledger"
	"github.com/anhbaysgalan1/arena/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockLedgerService simulates the ledger core for handler testing
type MockLedgerService struct {
	wallets map[uuid.UUID]*models.TeamWallet
	prizes  map[uuid.UUID]*models.PrizeRecord
	profits map[uuid.UUID]*models.AdminProfitRecord

	failWith error
}

func NewMockLedgerService() *MockLedgerService {
	return &MockLedgerService{
		wallets: make(map[uuid.UUID]*models.TeamWallet),
		prizes:  make(map[uuid.UUID]*models.PrizeRecord),
		profits: make(map[uuid.UUID]*models.AdminProfitRecord),
	}
}

func (m *MockLedgerService) SetFailure(err error) {
	m.failWith = err
}

func (m *MockLedgerService) AddWallet(wallet *models.TeamWallet) {
	m.wallets[wallet.ID] = wallet
}

func (m *MockLedgerService) AddPrize(prize *models.PrizeRecord) {
	m.prizes[prize.ID] = prize
}

func (m *MockLedgerService) OpenTeamWallet(ctx context.Context, tournamentID, teamID uuid.UUID) (*models.TeamWallet, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	wallet := &models.TeamWallet{
		ID:           uuid.New(),
		TournamentID: tournamentID,
		TeamID:       teamID,
		Status:       models.WalletStatusPending,
	}
	m.wallets[wallet.ID] = wallet
	return wallet, nil
}

func (m *MockLedgerService) SubmitContribution(ctx context.Context, walletID, userID uuid.UUID, amount int64) (*models.TeamWallet, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	wallet, ok := m.wallets[walletID]
	if !ok {
		return nil, ledger.ErrWalletNotFound
	}
	wallet.Balance += amount
	return wallet, nil
}

func (m *MockLedgerService) CloseTournamentLedger(ctx context.Context, tournamentID uuid.UUID) (*ledger.CloseResult, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	return &ledger.CloseResult{}, nil
}

func (m *MockLedgerService) DistributePrize(ctx context.Context, prizeRecordID uuid.UUID) (*models.PrizeRecord, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	prize, ok := m.prizes[prizeRecordID]
	if !ok {
		return nil, ledger.ErrPrizeNotFound
	}
	return prize, nil
}

func (m *MockLedgerService) RetryDistribution(ctx context.Context, prizeRecordID uuid.UUID) (*models.PrizeRecord, error) {
	return m.DistributePrize(ctx, prizeRecordID)
}

func (m *MockLedgerService) CollectAdminProfit(ctx context.Context, tournamentID uuid.UUID) (*models.AdminProfitRecord, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	return &models.AdminProfitRecord{TournamentID: tournamentID, Status: models.ProfitStatusCollected}, nil
}

func (m *MockLedgerService) RefundAdminProfit(ctx context.Context, tournamentID uuid.UUID) (*models.AdminProfitRecord, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	return &models.AdminProfitRecord{TournamentID: tournamentID, Status: models.ProfitStatusRefunded}, nil
}

func (m *MockLedgerService) RefundWallet(ctx context.Context, walletID uuid.UUID, reason string) (*models.TeamWallet, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	wallet, ok := m.wallets[walletID]
	if !ok {
		return nil, ledger.ErrWalletNotFound
	}
	wallet.Status = models.WalletStatusRefunded
	wallet.RefundReason = &reason
	return wallet, nil
}

func (m *MockLedgerService) GetWallet(ctx context.Context, walletID uuid.UUID) (*models.TeamWallet, error) {
	wallet, ok := m.wallets[walletID]
	if !ok {
		return nil, ledger.ErrWalletNotFound
	}
	return wallet, nil
}

func (m *MockLedgerService) GetPrize(ctx context.Context, prizeRecordID uuid.UUID) (*models.PrizeRecord, error) {
	prize, ok := m.prizes[prizeRecordID]
	if !ok {
		return nil, ledger.ErrPrizeNotFound
	}
	return prize, nil
}

func (m *MockLedgerService) GetLedgerSummary(ctx context.Context, tournamentID uuid.UUID) (*ledger.CloseResult, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	return &ledger.CloseResult{}, nil
}

func (m *MockLedgerService) ListTournamentWallets(ctx context.Context, tournamentID uuid.UUID) ([]models.TeamWallet, error) {
	var out []models.TeamWallet
	for _, w := range m.wallets {
		if w.TournamentID == tournamentID {
			out = append(out, *w)
		}
	}
	return out, nil
}

// withUser injects an authenticated caller the way the auth middleware does
func withUser(req *http.Request, userID uuid.UUID) *http.Request {
	ctx := context.WithValue(req.Context(), auth.UserIDKey, userID)
	return req.WithContext(ctx)
}

func TestOpenWallet_Success(t *testing.T) {
	mock := NewMockLedgerService()
	handler := handlers.NewLedgerHandler(mock)
	router := handler.Routes()

	body, _ := json.Marshal(map[string]string{
		"tournament_id": uuid.New().String(),
		"team_id":       uuid.New().String(),
	})
	req := httptest.NewRequest(http.MethodPost, "/wallets", bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	var wallet models.TeamWallet
	require.NoError(t, json.NewDecoder(w.Body).Decode(&wallet))
	assert.Equal(t, models.WalletStatusPending, wallet.Status)
	assert.NotEqual(t, uuid.Nil, wallet.ID)
}

func TestOpenWallet_MissingFields(t *testing.T) {
	mock := NewMockLedgerService()
	handler := handlers.NewLedgerHandler(mock)
	router := handler.Routes()

	req := httptest.NewRequest(http.MethodPost, "/wallets", bytes.NewReader([]byte(`{}`)))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "validation_failed")
}

func TestOpenWallet_RegistrationClosed(t *testing.T) {
	mock := NewMockLedgerService()
	mock.SetFailure(ledger.ErrRegistrationClosed)
	handler := handlers.NewLedgerHandler(mock)
	router := handler.Routes()

	body, _ := json.Marshal(map[string]string{
		"tournament_id": uuid.New().String(),
		"team_id":       uuid.New().String(),
	})
	req := httptest.NewRequest(http.MethodPost, "/wallets", bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "registration_closed")
}

func TestSubmitContribution_Success(t *testing.T) {
	mock := NewMockLedgerService()
	wallet := &models.TeamWallet{
		ID:           uuid.New(),
		TournamentID: uuid.New(),
		TeamID:       uuid.New(),
		Status:       models.WalletStatusPending,
	}
	mock.AddWallet(wallet)

	handler := handlers.NewLedgerHandler(mock)
	router := handler.Routes()

	body, _ := json.Marshal(map[string]int64{"amount": 25000})
	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/wallets/%s/contributions", wallet.ID), bytes.NewReader(body))
	req = withUser(req, uuid.New())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, float64(25000), resp["balance"])
}

func TestSubmitContribution_Unauthenticated(t *testing.T) {
	mock := NewMockLedgerService()
	handler := handlers.NewLedgerHandler(mock)
	router := handler.Routes()

	body, _ := json.Marshal(map[string]int64{"amount": 25000})
	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/wallets/%s/contributions", uuid.New()), bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSubmitContribution_ErrorMapping(t *testing.T) {
	tests := []struct {
		name           string
		serviceErr     error
		expectedStatus int
		expectedCode   string
	}{
		{
			name:           "Amount mismatch",
			serviceErr:     ledger.ErrAmountMismatch,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "amount_mismatch",
		},
		{
			name:           "Duplicate contribution",
			serviceErr:     ledger.ErrDuplicateContribution,
			expectedStatus: http.StatusConflict,
			expectedCode:   "duplicate_contribution",
		},
		{
			name:           "Wallet not accepting funds",
			serviceErr:     ledger.ErrWalletNotAcceptingFunds,
			expectedStatus: http.StatusConflict,
			expectedCode:   "wallet_not_accepting_funds",
		},
		{
			name:           "Registration closed",
			serviceErr:     ledger.ErrRegistrationClosed,
			expectedStatus: http.StatusConflict,
			expectedCode:   "registration_closed",
		},
		{
			name:           "Wallet not found",
			serviceErr:     ledger.ErrWalletNotFound,
			expectedStatus: http.StatusNotFound,
			expectedCode:   "not_found",
		},
		{
			name:           "Invariant violation",
			serviceErr:     ledger.ErrInvariantViolation,
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   "invariant_violation",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := NewMockLedgerService()
			mock.SetFailure(tt.serviceErr)
			handler := handlers.NewLedgerHandler(mock)
			router := handler.Routes()

			body, _ := json.Marshal(map[string]int64{"amount": 25000})
			req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/wallets/%s/contributions", uuid.New()), bytes.NewReader(body))
			req = withUser(req, uuid.New())
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedCode)
		})
	}
}

func TestDistributePrize_FailedTransferReturns502(t *testing.T) {
	mock := NewMockLedgerService()
	reason := "transfer timed out"
	prize := &models.PrizeRecord{
		ID:            uuid.New(),
		TournamentID:  uuid.New(),
		Rank:          1,
		PrizeAmount:   90000,
		Status:        models.PrizeStatusFailed,
		FailureReason: &reason,
	}
	mock.AddPrize(prize)

	handler := handlers.NewLedgerHandler(mock)
	router := handler.OperatorRoutes()

	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/prizes/%s/distribute", prize.ID), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "pending verification")
}

func TestDistributePrize_Distributed(t *testing.T) {
	mock := NewMockLedgerService()
	prize := &models.PrizeRecord{
		ID:           uuid.New(),
		TournamentID: uuid.New(),
		Rank:         1,
		PrizeAmount:  90000,
		Status:       models.PrizeStatusDistributed,
	}
	mock.AddPrize(prize)

	handler := handlers.NewLedgerHandler(mock)
	router := handler.OperatorRoutes()

	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/prizes/%s/distribute", prize.ID), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, string(models.PrizeStatusDistributed), resp["status"])
}

func TestRetryDistribution_NotRetryable(t *testing.T) {
	mock := NewMockLedgerService()
	mock.SetFailure(ledger.ErrPrizeNotRetryable)

	handler := handlers.NewLedgerHandler(mock)
	router := handler.OperatorRoutes()

	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/prizes/%s/retry", uuid.New()), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "prize_not_retryable")
}

func TestCloseTournament_AlreadyClosed(t *testing.T) {
	mock := NewMockLedgerService()
	mock.SetFailure(ledger.ErrLedgerAlreadyClosed)

	handler := handlers.NewLedgerHandler(mock)
	router := handler.OperatorRoutes()

	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/tournaments/%s/close", uuid.New()), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "ledger_already_closed")
}

func TestCollectProfit_AlreadyCollectedIsConflict(t *testing.T) {
	mock := NewMockLedgerService()
	mock.SetFailure(ledger.ErrProfitAlreadyCollected)

	handler := handlers.NewLedgerHandler(mock)
	router := handler.OperatorRoutes()

	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/tournaments/%s/profit/collect", uuid.New()), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "profit_already_collected")
}

func TestRefundWallet_Success(t *testing.T) {
	mock := NewMockLedgerService()
	wallet := &models.TeamWallet{
		ID:           uuid.New(),
		TournamentID: uuid.New(),
		TeamID:       uuid.New(),
		Balance:      100000,
		Status:       models.WalletStatusConfirmed,
	}
	mock.AddWallet(wallet)

	handler := handlers.NewLedgerHandler(mock)
	router := handler.OperatorRoutes()

	body, _ := json.Marshal(map[string]string{"reason": "tournament cancelled"})
	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/wallets/%s/refund", wallet.ID), bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var refunded models.TeamWallet
	require.NoError(t, json.NewDecoder(w.Body).Decode(&refunded))
	assert.Equal(t, models.WalletStatusRefunded, refunded.Status)
	require.NotNil(t, refunded.RefundReason)
	assert.Equal(t, "tournament cancelled", *refunded.RefundReason)
}

func TestRefundWallet_ReasonRequired(t *testing.T) {
	mock := NewMockLedgerService()
	handler := handlers.NewLedgerHandler(mock)
	router := handler.OperatorRoutes()

	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/wallets/%s/refund", uuid.New()), bytes.NewReader([]byte(`{}`)))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "validation_failed")
}

func TestGetWallet_InvalidID(t *testing.T) {
	mock := NewMockLedgerService()
	handler := handlers.NewLedgerHandler(mock)
	router := handler.Routes()

	req := httptest.NewRequest(http.MethodGet, "/wallets/not-a-uuid", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid_id")
}

func TestListWallets_ByTournament(t *testing.T) {
	mock := NewMockLedgerService()
	tournamentID := uuid.New()
	mock.AddWallet(&models.TeamWallet{ID: uuid.New(), TournamentID: tournamentID, TeamID: uuid.New()})
	mock.AddWallet(&models.TeamWallet{ID: uuid.New(), TournamentID: tournamentID, TeamID: uuid.New()})
	mock.AddWallet(&models.TeamWallet{ID: uuid.New(), TournamentID: uuid.New(), TeamID: uuid.New()})

	handler := handlers.NewLedgerHandler(mock)
	router := handler.Routes()

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/tournaments/%s/wallets", tournamentID), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Wallets []models.TeamWallet `json:"wallets"`
		Count   int                 `json:"count"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, 2, resp.Count)
}
