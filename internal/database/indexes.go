package database

import (
	"log/slog"
)

// SetupIndexes creates additional indexes that GORM can't handle automatically
func (db *DB) SetupIndexes() error {
	slog.Info("Setting up additional database indexes")

	// One wallet per (tournament, team)
	if err := db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_team_wallets_unique
		ON team_wallets(tournament_id, team_id)
		WHERE deleted_at IS NULL
	`).Error; err != nil {
		return err
	}

	// At most one contribution per (wallet, user)
	if err := db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_contributions_unique
		ON contributions(wallet_id, user_id)
		WHERE deleted_at IS NULL
	`).Error; err != nil {
		return err
	}

	// One prize record per (tournament, rank)
	if err := db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_prize_records_unique
		ON prize_records(tournament_id, rank)
		WHERE deleted_at IS NULL
	`).Error; err != nil {
		return err
	}

	// Performance indexes for close-time wallet scans
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_team_wallets_tournament_status
		ON team_wallets(tournament_id, status)
		WHERE deleted_at IS NULL
	`).Error; err != nil {
		return err
	}

	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_contributions_wallet_status
		ON contributions(wallet_id, status)
		WHERE deleted_at IS NULL
	`).Error; err != nil {
		return err
	}

	slog.Info("Database indexes setup completed")
	return nil
}
