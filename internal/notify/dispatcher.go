package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/anhbaysgalan1/arena/internal/models"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

const (
	// Channel prefixes
	walletChannelPrefix = "ledger:wallet:"
	prizeChannelPrefix  = "ledger:prize:"
	profitChannel       = "ledger:profit"

	// Event types
	EventWalletConfirmed  = "wallet_confirmed"
	EventWalletRefunded   = "wallet_refunded"
	EventPrizeDistributed = "prize_distributed"
	EventPrizeFailed      = "prize_failed"
	EventProfitCollected  = "profit_collected"
)

// Event is the wire shape published for every ledger outcome
type Event struct {
	Type         string    `json:"type"`
	TournamentID uuid.UUID `json:"tournament_id"`
	SubjectID    uuid.UUID `json:"subject_id"` // wallet, prize, or profit record ID
	Amount       int64     `json:"amount"`
	Reason       string    `json:"reason,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// Dispatcher publishes ledger outcomes over Redis pub/sub. Delivery is best
// effort: failures are logged, never propagated into ledger state.
type Dispatcher struct {
	client *redis.Client
}

func NewDispatcher(client *redis.Client) *Dispatcher {
	return &Dispatcher{client: client}
}

// NewRedisClient builds a client from a redis URL
func NewRedisClient(redisURL, password string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	if password != "" {
		opts.Password = password
	}
	return redis.NewClient(opts), nil
}

func (d *Dispatcher) publish(ctx context.Context, channel string, event Event) {
	event.OccurredAt = time.Now().UTC()

	data, err := json.Marshal(event)
	if err != nil {
		slog.Warn("Failed to marshal ledger event", "type", event.Type, "error", err)
		return
	}
	if err := d.client.Publish(ctx, channel, data).Err(); err != nil {
		slog.Warn("Failed to publish ledger event", "type", event.Type, "channel", channel, "error", err)
	}
}

func (d *Dispatcher) WalletConfirmed(ctx context.Context, wallet *models.TeamWallet) {
	d.publish(ctx, walletChannelPrefix+wallet.TournamentID.String(), Event{
		Type:         EventWalletConfirmed,
		TournamentID: wallet.TournamentID,
		SubjectID:    wallet.ID,
		Amount:       wallet.Balance,
	})
}

func (d *Dispatcher) WalletRefunded(ctx context.Context, wallet *models.TeamWallet, reason string) {
	d.publish(ctx, walletChannelPrefix+wallet.TournamentID.String(), Event{
		Type:         EventWalletRefunded,
		TournamentID: wallet.TournamentID,
		SubjectID:    wallet.ID,
		Amount:       wallet.Balance,
		Reason:       reason,
	})
}

func (d *Dispatcher) PrizeDistributed(ctx context.Context, prize *models.PrizeRecord) {
	d.publish(ctx, prizeChannelPrefix+prize.TournamentID.String(), Event{
		Type:         EventPrizeDistributed,
		TournamentID: prize.TournamentID,
		SubjectID:    prize.ID,
		Amount:       prize.PrizeAmount,
	})
}

func (d *Dispatcher) PrizeFailed(ctx context.Context, prize *models.PrizeRecord) {
	reason := ""
	if prize.FailureReason != nil {
		reason = *prize.FailureReason
	}
	d.publish(ctx, prizeChannelPrefix+prize.TournamentID.String(), Event{
		Type:         EventPrizeFailed,
		TournamentID: prize.TournamentID,
		SubjectID:    prize.ID,
		Amount:       prize.PrizeAmount,
		Reason:       reason,
	})
}

func (d *Dispatcher) ProfitCollected(ctx context.Context, profit *models.AdminProfitRecord) {
	d.publish(ctx, profitChannel, Event{
		Type:         EventProfitCollected,
		TournamentID: profit.TournamentID,
		SubjectID:    profit.ID,
		Amount:       profit.ProfitAmount,
	})
}
