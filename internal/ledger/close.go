package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/anhbaysgalan1/arena/internal/database"
	"github.com/anhbaysgalan1/arena/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CloseResult is the outcome of closing a tournament's ledger
type CloseResult struct {
	Profit *models.AdminProfitRecord `json:"profit"`
	Prizes []models.PrizeRecord      `json:"prizes"`
}

// CloseTournamentLedger computes the organizer profit and expands the prize
// table across this tournament's confirmed wallets. It runs exactly once:
// the ledger row is locked and flipped to closed before any wallet is read,
// which also fences off late contributions. Wallets still pending at close
// are left untouched for the refund path.
func (s *Service) CloseTournamentLedger(ctx context.Context, tournamentID uuid.UUID) (*CloseResult, error) {
	cfg, err := s.configs.GetFinanceConfig(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tournament config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid tournament finance config: %w", err)
	}

	standings, err := s.results.GetResults(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tournament results: %w", err)
	}
	winnerByRank := make(map[int]uuid.UUID, len(standings))
	for _, row := range standings {
		winnerByRank[row.Rank] = row.RecipientID
	}

	recipientKind := models.RecipientKindTeam
	if cfg.TournamentType == models.TournamentTypeSolo {
		recipientKind = models.RecipientKindUser
	}

	var result CloseResult
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ledgerRow models.TournamentLedger
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&ledgerRow, "tournament_id = ?", tournamentID).Error; err != nil {
			if database.IsNotFoundError(err) {
				return ErrLedgerNotFound
			}
			return fmt.Errorf("failed to load tournament ledger: %w", err)
		}
		if ledgerRow.Status == models.LedgerStatusClosed {
			return ErrLedgerAlreadyClosed
		}

		now := time.Now().UTC()
		if err := tx.Model(&models.TournamentLedger{}).
			Where("id = ?", ledgerRow.ID).
			Updates(map[string]interface{}{
				"status":    models.LedgerStatusClosed,
				"closed_at": now,
			}).Error; err != nil {
			return fmt.Errorf("failed to close tournament ledger: %w", err)
		}

		// In-flight contributions hold a share lock on the ledger row,
		// so the exclusive lock above waits them out and later ones see
		// the closed status. The wallet locks below pin the balances
		// the pool is computed from.
		var wallets []models.TeamWallet
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("tournament_id = ? AND status = ?", tournamentID, models.WalletStatusConfirmed).
			Find(&wallets).Error; err != nil {
			return fmt.Errorf("failed to load confirmed wallets: %w", err)
		}

		var totalCollected int64
		walletIDs := make([]uuid.UUID, 0, len(wallets))
		for i := range wallets {
			if err := verifyWalletBalance(tx, &wallets[i]); err != nil {
				return err
			}
			totalCollected += wallets[i].Balance
			walletIDs = append(walletIDs, wallets[i].ID)
		}

		var paidContributions int64
		if len(walletIDs) > 0 {
			if err := tx.Model(&models.Contribution{}).
				Where("wallet_id IN ? AND status = ?", walletIDs, models.ContributionStatusPaid).
				Count(&paidContributions).Error; err != nil {
				return fmt.Errorf("failed to count paid contributions: %w", err)
			}
		}

		profit := ComputeAdminProfit(cfg, totalCollected, len(wallets), int(paidContributions))

		prizePool := totalCollected - profit
		if !cfg.AutoCalculatePrize {
			// Pool is fixed externally; profit is still recorded for accounting.
			prizePool = cfg.FixedPrizePool
		}

		portions := ExpandPrizeTable(prizePool, cfg.PrizeDistribution)
		for _, portion := range portions {
			if _, ok := winnerByRank[portion.Rank]; !ok {
				return ErrIncompleteResults
			}
		}

		tableSnapshot, err := json.Marshal(cfg.PrizeDistribution)
		if err != nil {
			return fmt.Errorf("failed to snapshot prize table: %w", err)
		}

		profitRecord := models.AdminProfitRecord{
			TournamentID:   tournamentID,
			ProfitAmount:   profit,
			ProfitType:     cfg.AdminProfitType,
			TotalCollected: totalCollected,
			PrizePool:      prizePool,
			AutoCalculated: cfg.AutoCalculatePrize,
			PrizeTable:     tableSnapshot,
			Status:         models.ProfitStatusPending,
		}
		if err := tx.Create(&profitRecord).Error; err != nil {
			if database.IsUniqueConstraintError(err) {
				return ErrLedgerAlreadyClosed
			}
			return fmt.Errorf("failed to create profit record: %w", err)
		}

		prizes := make([]models.PrizeRecord, 0, len(portions))
		for _, portion := range portions {
			prizes = append(prizes, models.PrizeRecord{
				TournamentID:  tournamentID,
				Rank:          portion.Rank,
				RecipientID:   winnerByRank[portion.Rank],
				RecipientKind: recipientKind,
				PrizeAmount:   portion.Amount,
				Status:        models.PrizeStatusPending,
			})
		}
		if len(prizes) > 0 {
			if err := tx.Create(&prizes).Error; err != nil {
				return fmt.Errorf("failed to create prize records: %w", err)
			}
		}

		result.Profit = &profitRecord
		result.Prizes = prizes
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Closed tournament ledger",
		"tournament_id", tournamentID,
		"total_collected", result.Profit.TotalCollected,
		"profit", result.Profit.ProfitAmount,
		"prize_pool", result.Profit.PrizePool,
		"prize_records", len(result.Prizes))
	return &result, nil
}

// GetLedgerSummary returns the close-time records for a tournament
func (s *Service) GetLedgerSummary(ctx context.Context, tournamentID uuid.UUID) (*CloseResult, error) {
	var profitRecord models.AdminProfitRecord
	if err := s.db.WithContext(ctx).
		First(&profitRecord, "tournament_id = ?", tournamentID).Error; err != nil {
		if database.IsNotFoundError(err) {
			return nil, ErrProfitRecordNotFound
		}
		return nil, fmt.Errorf("failed to load profit record: %w", err)
	}

	var prizes []models.PrizeRecord
	if err := s.db.WithContext(ctx).
		Where("tournament_id = ?", tournamentID).
		Order("rank ASC").
		Find(&prizes).Error; err != nil {
		return nil, fmt.Errorf("failed to load prize records: %w", err)
	}

	return &CloseResult{Profit: &profitRecord, Prizes: prizes}, nil
}
