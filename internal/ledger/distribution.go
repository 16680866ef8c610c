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

// DistributePrize transfers a pending prize into the recipient's free
// wallet. A collaborator failure or timeout marks the record FAILED for
// operator retry; it is never optimistically marked distributed. The
// returned record carries the terminal status of this attempt.
func (s *Service) DistributePrize(ctx context.Context, prizeRecordID uuid.UUID) (*models.PrizeRecord, error) {
	var prize models.PrizeRecord

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&prize, "id = ?", prizeRecordID).Error; err != nil {
			if database.IsNotFoundError(err) {
				return ErrPrizeNotFound
			}
			return fmt.Errorf("failed to load prize record: %w", err)
		}
		if prize.Status != models.PrizeStatusPending {
			return ErrPrizeNotPending
		}

		metadata := map[string]string{
			"type":          "tournament_prize",
			"tournament_id": prize.TournamentID.String(),
			"prize_id":      prize.ID.String(),
			"rank":          fmt.Sprintf("%d", prize.Rank),
		}

		payoutCtx, cancel := s.payoutContext(ctx)
		defer cancel()

		var transferID string
		var transferErr error
		switch prize.RecipientKind {
		case models.RecipientKindTeam:
			transferID, transferErr = s.funds.CreditTeamWallet(payoutCtx, prize.RecipientID, prize.PrizeAmount, metadata)
		default:
			transferID, transferErr = s.funds.CreditUserWallet(payoutCtx, prize.RecipientID, prize.PrizeAmount, metadata)
		}

		now := time.Now().UTC()
		if transferErr != nil {
			reason := transferErr.Error()
			prize.Status = models.PrizeStatusFailed
			prize.FailureReason = &reason
			slog.Warn("Prize transfer failed",
				"prize_id", prize.ID,
				"tournament_id", prize.TournamentID,
				"recipient_id", prize.RecipientID,
				"amount", prize.PrizeAmount,
				"error", transferErr)
			return tx.Model(&models.PrizeRecord{}).Where("id = ?", prize.ID).Updates(map[string]interface{}{
				"status":         models.PrizeStatusFailed,
				"failure_reason": reason,
			}).Error
		}

		prize.Status = models.PrizeStatusDistributed
		prize.TransferID = &transferID
		prize.DistributedAt = &now
		prize.FailureReason = nil
		return tx.Model(&models.PrizeRecord{}).Where("id = ?", prize.ID).Updates(map[string]interface{}{
			"status":         models.PrizeStatusDistributed,
			"transfer_id":    transferID,
			"distributed_at": now,
			"failure_reason": nil,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	if prize.Status == models.PrizeStatusDistributed {
		slog.Info("Distributed prize",
			"prize_id", prize.ID,
			"tournament_id", prize.TournamentID,
			"rank", prize.Rank,
			"amount", prize.PrizeAmount,
			"transfer_id", *prize.TransferID)
		if s.notify != nil {
			s.notify.PrizeDistributed(ctx, &prize)
		}
	} else if s.notify != nil {
		s.notify.PrizeFailed(ctx, &prize)
	}
	return &prize, nil
}

// RetryDistribution re-enters a failed prize record into PENDING and
// re-runs the transfer. Retries are operator-triggered only; there is no
// automatic loop, to avoid duplicate payouts on transient ambiguity.
func (s *Service) RetryDistribution(ctx context.Context, prizeRecordID uuid.UUID) (*models.PrizeRecord, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var prize models.PrizeRecord
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&prize, "id = ?", prizeRecordID).Error; err != nil {
			if database.IsNotFoundError(err) {
				return ErrPrizeNotFound
			}
			return fmt.Errorf("failed to load prize record: %w", err)
		}
		if prize.Status != models.PrizeStatusFailed {
			return ErrPrizeNotRetryable
		}
		return tx.Model(&models.PrizeRecord{}).Where("id = ?", prize.ID).Updates(map[string]interface{}{
			"status":         models.PrizeStatusPending,
			"failure_reason": nil,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Reset failed prize for retry", "prize_id", prizeRecordID)
	return s.DistributePrize(ctx, prizeRecordID)
}

// CollectAdminProfit transfers the organizer's cut to the platform
// operating account. Collection is idempotent: an already collected record
// is returned as-is. Collection is the point of no return for the
// tournament's funds; refunds are rejected afterwards.
func (s *Service) CollectAdminProfit(ctx context.Context, tournamentID uuid.UUID) (*models.AdminProfitRecord, error) {
	var profit models.AdminProfitRecord
	collected := false

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&profit, "tournament_id = ?", tournamentID).Error; err != nil {
			if database.IsNotFoundError(err) {
				return ErrProfitRecordNotFound
			}
			return fmt.Errorf("failed to load profit record: %w", err)
		}

		switch profit.Status {
		case models.ProfitStatusCollected:
			// Idempotent: second collection is a no-op.
			return nil
		case models.ProfitStatusRefunded:
			return ErrProfitNotPending
		}

		now := time.Now().UTC()
		updates := map[string]interface{}{
			"status":       models.ProfitStatusCollected,
			"collected_at": now,
		}

		if profit.ProfitAmount > 0 {
			payoutCtx, cancel := s.payoutContext(ctx)
			defer cancel()

			transferID, err := s.funds.CreditOperatingAccount(payoutCtx, profit.ProfitAmount, map[string]string{
				"type":          "admin_profit",
				"tournament_id": tournamentID.String(),
				"profit_type":   string(profit.ProfitType),
			})
			if err != nil {
				// Record stays pending; the caller surfaces this as
				// awaiting verification rather than a silent success.
				return fmt.Errorf("profit transfer failed: %w", err)
			}
			profit.TransferID = &transferID
			updates["transfer_id"] = transferID
		}

		profit.Status = models.ProfitStatusCollected
		profit.CollectedAt = &now
		collected = true
		return tx.Model(&models.AdminProfitRecord{}).Where("id = ?", profit.ID).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}

	if collected {
		slog.Info("Collected admin profit",
			"tournament_id", tournamentID,
			"amount", profit.ProfitAmount,
			"profit_type", profit.ProfitType)
		if s.notify != nil {
			s.notify.ProfitCollected(ctx, &profit)
		}
	}
	return &profit, nil
}

// RefundAdminProfit marks an uncollected profit record refunded when a
// tournament is cancelled. Collected profit cannot be refunded.
func (s *Service) RefundAdminProfit(ctx context.Context, tournamentID uuid.UUID) (*models.AdminProfitRecord, error) {
	var profit models.AdminProfitRecord

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&profit, "tournament_id = ?", tournamentID).Error; err != nil {
			if database.IsNotFoundError(err) {
				return ErrProfitRecordNotFound
			}
			return fmt.Errorf("failed to load profit record: %w", err)
		}
		switch profit.Status {
		case models.ProfitStatusCollected:
			return ErrProfitAlreadyCollected
		case models.ProfitStatusRefunded:
			return nil
		}
		profit.Status = models.ProfitStatusRefunded
		return tx.Model(&models.AdminProfitRecord{}).Where("id = ?", profit.ID).
			Update("status", models.ProfitStatusRefunded).Error
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Refunded admin profit record", "tournament_id", tournamentID)
	return &profit, nil
}

// RefundWallet reverses a wallet's collected funds. Each paid contribution
// is credited back to its user and marked refunded in its own transaction,
// so a collaborator failure mid-way never double-credits on a re-run: rows
// already refunded are skipped. The wallet itself turns REFUNDED only after
// every contribution has. The recorded balance is kept as audit trail.
func (s *Service) RefundWallet(ctx context.Context, walletID uuid.UUID, reason string) (*models.TeamWallet, error) {
	var wallet models.TeamWallet

	// Precondition pass: refundable state, profit not yet collected.
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&wallet, "id = ?", walletID).Error; err != nil {
			if database.IsNotFoundError(err) {
				return ErrWalletNotFound
			}
			return fmt.Errorf("failed to load wallet: %w", err)
		}
		if wallet.Status == models.WalletStatusRefunded {
			return nil
		}
		if wallet.Status != models.WalletStatusPending && wallet.Status != models.WalletStatusConfirmed {
			return ErrWalletNotRefundable
		}

		var profit models.AdminProfitRecord
		err := tx.First(&profit, "tournament_id = ?", wallet.TournamentID).Error
		if err == nil && profit.Status == models.ProfitStatusCollected {
			return ErrProfitAlreadyCollected
		}
		if err != nil && !database.IsNotFoundError(err) {
			return fmt.Errorf("failed to check profit record: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if wallet.Status == models.WalletStatusRefunded {
		return &wallet, nil
	}

	var pending []models.Contribution
	if err := s.db.WithContext(ctx).
		Where("wallet_id = ? AND status = ?", walletID, models.ContributionStatusPaid).
		Order("created_at ASC").
		Find(&pending).Error; err != nil {
		return nil, fmt.Errorf("failed to list paid contributions: %w", err)
	}

	for _, contribution := range pending {
		if err := s.refundContribution(ctx, &wallet, contribution.ID, reason); err != nil {
			return nil, err
		}
	}

	// Terminal pass: the wallet only flips once nothing is left paid.
	now := time.Now().UTC()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&wallet, "id = ?", walletID).Error; err != nil {
			return fmt.Errorf("failed to reload wallet: %w", err)
		}

		var remaining int64
		if err := tx.Model(&models.Contribution{}).
			Where("wallet_id = ? AND status = ?", walletID, models.ContributionStatusPaid).
			Count(&remaining).Error; err != nil {
			return fmt.Errorf("failed to count remaining contributions: %w", err)
		}
		if remaining > 0 {
			return fmt.Errorf("wallet %s still has %d paid contributions after refund pass", walletID, remaining)
		}

		wallet.Status = models.WalletStatusRefunded
		wallet.RefundReason = &reason
		wallet.RefundedAt = &now
		return tx.Model(&models.TeamWallet{}).Where("id = ?", walletID).Updates(map[string]interface{}{
			"status":        models.WalletStatusRefunded,
			"refund_reason": reason,
			"refunded_at":   now,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Refunded team wallet",
		"wallet_id", walletID,
		"tournament_id", wallet.TournamentID,
		"contributions", len(pending),
		"reason", reason)
	if s.notify != nil {
		s.notify.WalletRefunded(ctx, &wallet, reason)
	}
	return &wallet, nil
}

// refundContribution credits one user and marks the row refunded, locking
// the row so a concurrent refund pass cannot credit the same user twice.
func (s *Service) refundContribution(ctx context.Context, wallet *models.TeamWallet, contributionID uuid.UUID, reason string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var contribution models.Contribution
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&contribution, "id = ?", contributionID).Error; err != nil {
			return fmt.Errorf("failed to load contribution: %w", err)
		}
		if contribution.Status != models.ContributionStatusPaid {
			// Already handled by a prior pass.
			return nil
		}

		payoutCtx, cancel := s.payoutContext(ctx)
		defer cancel()

		transferID, err := s.funds.CreditUserWallet(payoutCtx, contribution.UserID, contribution.Amount, map[string]string{
			"type":          "contribution_refund",
			"tournament_id": wallet.TournamentID.String(),
			"wallet_id":     wallet.ID.String(),
			"reason":        reason,
		})
		if err != nil {
			slog.Warn("Contribution refund transfer failed",
				"contribution_id", contribution.ID,
				"user_id", contribution.UserID,
				"amount", contribution.Amount,
				"error", err)
			return fmt.Errorf("refund transfer failed for contribution %s: %w", contribution.ID, err)
		}

		now := time.Now().UTC()
		return tx.Model(&models.Contribution{}).Where("id = ?", contribution.ID).Updates(map[string]interface{}{
			"status":             models.ContributionStatusRefunded,
			"refunded_at":        now,
			"refund_transfer_id": transferID,
		}).Error
	})
}

// GetPrize returns one prize record
func (s *Service) GetPrize(ctx context.Context, prizeRecordID uuid.UUID) (*models.PrizeRecord, error) {
	var prize models.PrizeRecord
	if err := s.db.WithContext(ctx).First(&prize, "id = ?", prizeRecordID).Error; err != nil {
		if database.IsNotFoundError(err) {
			return nil, ErrPrizeNotFound
		}
		return nil, fmt.Errorf("failed to load prize record: %w", err)
	}
	return &prize, nil
}
