package funds

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/anhbaysgalan1/arena/internal/config"
	"github.com/anhbaysgalan1/arena/internal/validation"
	"github.com/google/uuid"
)

// Service implements the ledger's funds collaborator contract on top of
// the platform wallet service
type Service struct {
	client *Client
}

func NewService(cfg *config.Config) *Service {
	return &Service{
		client: NewClient(cfg),
	}
}

// CreditUserWallet moves amount into a user's free-standing wallet
func (s *Service) CreditUserWallet(ctx context.Context, userID uuid.UUID, amount int64, metadata map[string]string) (string, error) {
	if err := validation.ValidatePositiveAmount(amount, "amount"); err != nil {
		return "", err
	}
	if userID == uuid.Nil {
		return "", fmt.Errorf("user ID cannot be nil")
	}

	transferID, err := s.client.CreateTransfer(ctx, UserWalletAccount(userID), amount, metadata)
	if err != nil {
		return "", fmt.Errorf("failed to credit user wallet: %w", err)
	}

	slog.Info("Credited user wallet", "user_id", userID, "amount", amount, "transfer_id", transferID)
	return transferID, nil
}

// CreditTeamWallet moves amount into a team's free-standing wallet
func (s *Service) CreditTeamWallet(ctx context.Context, teamID uuid.UUID, amount int64, metadata map[string]string) (string, error) {
	if err := validation.ValidatePositiveAmount(amount, "amount"); err != nil {
		return "", err
	}
	if teamID == uuid.Nil {
		return "", fmt.Errorf("team ID cannot be nil")
	}

	transferID, err := s.client.CreateTransfer(ctx, TeamWalletAccount(teamID), amount, metadata)
	if err != nil {
		return "", fmt.Errorf("failed to credit team wallet: %w", err)
	}

	slog.Info("Credited team wallet", "team_id", teamID, "amount", amount, "transfer_id", transferID)
	return transferID, nil
}

// CreditOperatingAccount moves amount into the platform operating account
func (s *Service) CreditOperatingAccount(ctx context.Context, amount int64, metadata map[string]string) (string, error) {
	if err := validation.ValidatePositiveAmount(amount, "amount"); err != nil {
		return "", err
	}

	transferID, err := s.client.CreateTransfer(ctx, OperatingAccount, amount, metadata)
	if err != nil {
		return "", fmt.Errorf("failed to credit operating account: %w", err)
	}

	slog.Info("Credited operating account", "amount", amount, "transfer_id", transferID)
	return transferID, nil
}
