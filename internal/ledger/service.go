package ledger

import (
	"context"
	"time"

	"github.com/anhbaysgalan1/arena/internal/database"
	"github.com/anhbaysgalan1/arena/internal/models"
	"github.com/google/uuid"
)

// FundsClient credits free-standing wallets held by the platform wallet
// service. Implementations must honor context deadlines; a timed-out call
// is reported as an error, never as success.
type FundsClient interface {
	CreditUserWallet(ctx context.Context, userID uuid.UUID, amount int64, metadata map[string]string) (string, error)
	CreditTeamWallet(ctx context.Context, teamID uuid.UUID, amount int64, metadata map[string]string) (string, error)
	CreditOperatingAccount(ctx context.Context, amount int64, metadata map[string]string) (string, error)
}

// ConfigProvider fetches the financial slice of a tournament's configuration
type ConfigProvider interface {
	GetFinanceConfig(ctx context.Context, tournamentID uuid.UUID) (*models.FinanceConfig, error)
}

// ResultsProvider fetches a tournament's final rank-to-winner standing
type ResultsProvider interface {
	GetResults(ctx context.Context, tournamentID uuid.UUID) ([]models.TournamentResult, error)
}

// Dispatcher publishes ledger outcomes for downstream consumers. Delivery is
// best effort; dispatch failures never roll back ledger state.
type Dispatcher interface {
	WalletConfirmed(ctx context.Context, wallet *models.TeamWallet)
	WalletRefunded(ctx context.Context, wallet *models.TeamWallet, reason string)
	PrizeDistributed(ctx context.Context, prize *models.PrizeRecord)
	PrizeFailed(ctx context.Context, prize *models.PrizeRecord)
	ProfitCollected(ctx context.Context, profit *models.AdminProfitRecord)
}

// Service owns every state transition on wallets, contributions, profit and
// prize records. All mutating operations run inside a single database
// transaction with row-level locks; no balance is cached across requests.
type Service struct {
	db            *database.DB
	funds         FundsClient
	configs       ConfigProvider
	results       ResultsProvider
	notify        Dispatcher
	payoutTimeout time.Duration
}

// NewService creates a ledger service. notify may be nil.
func NewService(db *database.DB, funds FundsClient, configs ConfigProvider, results ResultsProvider, notify Dispatcher, payoutTimeout time.Duration) *Service {
	if payoutTimeout <= 0 {
		payoutTimeout = 10 * time.Second
	}
	return &Service{
		db:            db,
		funds:         funds,
		configs:       configs,
		results:       results,
		notify:        notify,
		payoutTimeout: payoutTimeout,
	}
}

func (s *Service) payoutContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.payoutTimeout)
}
