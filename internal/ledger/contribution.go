package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/anhbaysgalan1/arena/internal/database"
	"github.com/anhbaysgalan1/arena/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OpenTeamWallet creates the escrow wallet for a (tournament, team) pair,
// sized from the tournament's finance config. Opening is idempotent: if the
// wallet already exists it is returned unchanged.
func (s *Service) OpenTeamWallet(ctx context.Context, tournamentID, teamID uuid.UUID) (*models.TeamWallet, error) {
	cfg, err := s.configs.GetFinanceConfig(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tournament config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid tournament finance config: %w", err)
	}

	wallet := &models.TeamWallet{
		TournamentID:   tournamentID,
		TeamID:         teamID,
		Balance:        0,
		RequiredAmount: cfg.RequiredWalletAmount(),
		PerPlayerFee:   cfg.PerPlayerFee,
		Status:         models.WalletStatusPending,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ledgerRow := models.TournamentLedger{TournamentID: tournamentID, Status: models.LedgerStatusOpen}
		if err := tx.Where("tournament_id = ?", tournamentID).FirstOrCreate(&ledgerRow).Error; err != nil {
			return fmt.Errorf("failed to open tournament ledger: %w", err)
		}
		// Re-read under a share lock: a concurrent close holds the row
		// FOR UPDATE, so this blocks until close commits and then sees
		// the closed status instead of a stale open snapshot.
		if err := tx.Clauses(clause.Locking{Strength: "SHARE"}).
			First(&ledgerRow, "tournament_id = ?", tournamentID).Error; err != nil {
			return fmt.Errorf("failed to lock tournament ledger: %w", err)
		}
		if ledgerRow.Status == models.LedgerStatusClosed {
			return ErrRegistrationClosed
		}
		return tx.Create(wallet).Error
	})
	if err != nil {
		if database.IsUniqueConstraintError(err) {
			var existing models.TeamWallet
			if findErr := s.db.WithContext(ctx).
				First(&existing, "tournament_id = ? AND team_id = ?", tournamentID, teamID).Error; findErr == nil {
				return &existing, nil
			}
		}
		return nil, err
	}

	slog.Info("Opened team wallet",
		"wallet_id", wallet.ID,
		"tournament_id", tournamentID,
		"team_id", teamID,
		"required_amount", wallet.RequiredAmount)
	return wallet, nil
}

// SubmitContribution records one player's paid entry fee against a team
// wallet. Payment capture is verified upstream; this is the ledger-side
// confirmation. It is the only write path on a wallet's balance and
// serializes concurrent submissions per wallet with a row lock, so exactly
// one submission crosses the confirmation threshold.
func (s *Service) SubmitContribution(ctx context.Context, walletID, userID uuid.UUID, amount int64) (*models.TeamWallet, error) {
	var wallet models.TeamWallet
	confirmed := false

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Unlocked read to learn the tournament; tournament_id never
		// changes after creation.
		if err := tx.First(&wallet, "id = ?", walletID).Error; err != nil {
			if database.IsNotFoundError(err) {
				return ErrWalletNotFound
			}
			return fmt.Errorf("failed to load wallet: %w", err)
		}

		// Lock the ledger row before the wallet, in the same order
		// close takes its locks. A share lock blocks against close's
		// FOR UPDATE while still letting contributions to different
		// wallets of the same tournament proceed in parallel.
		var ledgerRow models.TournamentLedger
		if err := tx.Clauses(clause.Locking{Strength: "SHARE"}).
			First(&ledgerRow, "tournament_id = ?", wallet.TournamentID).Error; err != nil {
			if database.IsNotFoundError(err) {
				return ErrLedgerNotFound
			}
			return fmt.Errorf("failed to lock tournament ledger: %w", err)
		}
		if ledgerRow.Status == models.LedgerStatusClosed {
			return ErrRegistrationClosed
		}

		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&wallet, "id = ?", walletID).Error; err != nil {
			return fmt.Errorf("failed to lock wallet: %w", err)
		}

		if !wallet.AcceptsFunds() {
			return ErrWalletNotAcceptingFunds
		}
		if amount != wallet.PerPlayerFee {
			return ErrAmountMismatch
		}

		var existing int64
		if err := tx.Model(&models.Contribution{}).
			Where("wallet_id = ? AND user_id = ?", walletID, userID).
			Count(&existing).Error; err != nil {
			return fmt.Errorf("failed to check prior contribution: %w", err)
		}
		if existing > 0 {
			return ErrDuplicateContribution
		}

		if err := verifyWalletBalance(tx, &wallet); err != nil {
			return err
		}

		now := time.Now().UTC()
		contribution := models.Contribution{
			WalletID: walletID,
			UserID:   userID,
			Amount:   amount,
			Status:   models.ContributionStatusPaid,
			PaidAt:   &now,
		}
		if err := tx.Create(&contribution).Error; err != nil {
			if database.IsUniqueConstraintError(err) {
				return ErrDuplicateContribution
			}
			return fmt.Errorf("failed to create contribution: %w", err)
		}

		wallet.Balance += amount
		updates := map[string]interface{}{
			"balance": wallet.Balance,
		}
		if wallet.Balance >= wallet.RequiredAmount {
			wallet.Status = models.WalletStatusConfirmed
			wallet.ConfirmedAt = &now
			updates["status"] = models.WalletStatusConfirmed
			updates["confirmed_at"] = now
			confirmed = true
		}

		if err := tx.Model(&models.TeamWallet{}).Where("id = ?", walletID).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update wallet balance: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Recorded contribution",
		"wallet_id", walletID,
		"user_id", userID,
		"amount", amount,
		"balance", wallet.Balance,
		"status", wallet.Status)

	if confirmed && s.notify != nil {
		s.notify.WalletConfirmed(ctx, &wallet)
	}
	return &wallet, nil
}

// verifyWalletBalance cross-checks the stored balance against the sum of
// paid contributions. A mismatch aborts the transaction.
func verifyWalletBalance(tx *gorm.DB, wallet *models.TeamWallet) error {
	var paidSum int64
	if err := tx.Model(&models.Contribution{}).
		Where("wallet_id = ? AND status = ?", wallet.ID, models.ContributionStatusPaid).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&paidSum).Error; err != nil {
		return fmt.Errorf("failed to sum paid contributions: %w", err)
	}
	if paidSum != wallet.Balance {
		slog.Error("Wallet balance invariant violated",
			"wallet_id", wallet.ID,
			"balance", wallet.Balance,
			"paid_sum", paidSum)
		return ErrInvariantViolation
	}
	return nil
}

// GetWallet returns a wallet with its contributions
func (s *Service) GetWallet(ctx context.Context, walletID uuid.UUID) (*models.TeamWallet, error) {
	var wallet models.TeamWallet
	if err := s.db.WithContext(ctx).
		Preload("Contributions").
		First(&wallet, "id = ?", walletID).Error; err != nil {
		if database.IsNotFoundError(err) {
			return nil, ErrWalletNotFound
		}
		return nil, fmt.Errorf("failed to load wallet: %w", err)
	}
	return &wallet, nil
}

// ListTournamentWallets returns all wallets for a tournament
func (s *Service) ListTournamentWallets(ctx context.Context, tournamentID uuid.UUID) ([]models.TeamWallet, error) {
	var wallets []models.TeamWallet
	if err := s.db.WithContext(ctx).
		Where("tournament_id = ?", tournamentID).
		Order("created_at ASC").
		Find(&wallets).Error; err != nil {
		return nil, fmt.Errorf("failed to list wallets: %w", err)
	}
	return wallets, nil
}
