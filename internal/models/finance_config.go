package models

import (
	"fmt"
)

// TournamentType determines how many contributors fill a wallet
type TournamentType string

const (
	TournamentTypeSolo  TournamentType = "solo"
	TournamentTypeSquad TournamentType = "squad"
)

// AdminProfitType selects the organizer-cut formula
type AdminProfitType string

const (
	// ProfitTypePercentage takes a percentage of total collected funds
	ProfitTypePercentage AdminProfitType = "percentage"
	// ProfitTypeFixedPerTeam takes a fixed amount per confirmed wallet
	ProfitTypeFixedPerTeam AdminProfitType = "fixed_per_team"
	// ProfitTypePlatformFee takes a flat fee per paid contribution
	ProfitTypePlatformFee AdminProfitType = "platform_fee"
)

// PrizeShare is one row of a tournament's prize distribution table
type PrizeShare struct {
	Rank       int     `json:"rank" validate:"required,gte=1"`
	Percentage float64 `json:"percentage" validate:"required,gt=0,lte=100"`
}

// FinanceConfig is the financial slice of a tournament's configuration,
// consumed read-only from the tournament service. Validated once at load;
// the ledger never mutates it.
type FinanceConfig struct {
	TournamentType     TournamentType  `json:"tournament_type"`
	TeamSize           int             `json:"team_size"`
	PerPlayerFee       int64           `json:"per_player_fee"` // minor units
	AdminProfitType    AdminProfitType `json:"admin_profit_type"`
	AdminProfitValue   int64           `json:"admin_profit_value"` // percentage points or minor units, per profit type
	PrizeDistribution  []PrizeShare    `json:"prize_distribution"`
	AutoCalculatePrize bool            `json:"auto_calculate_prize"`
	FixedPrizePool     int64           `json:"fixed_prize_pool"` // used when auto_calculate_prize is false
}

// RequiredWalletAmount is the full escrow target for one team
func (c *FinanceConfig) RequiredWalletAmount() int64 {
	return c.PerPlayerFee * int64(c.TeamSize)
}

// Validate checks the structural invariants of a loaded finance config:
// team size, fee sign, known enums, unique ranks, percentage sum <= 100.
func (c *FinanceConfig) Validate() error {
	switch c.TournamentType {
	case TournamentTypeSolo:
		if c.TeamSize != 1 {
			return fmt.Errorf("solo tournaments must have team_size 1, got %d", c.TeamSize)
		}
	case TournamentTypeSquad:
		if c.TeamSize < 1 {
			return fmt.Errorf("team_size must be >= 1, got %d", c.TeamSize)
		}
	default:
		return fmt.Errorf("unknown tournament_type: %q", c.TournamentType)
	}

	if c.PerPlayerFee < 0 {
		return fmt.Errorf("per_player_fee must be >= 0, got %d", c.PerPlayerFee)
	}

	switch c.AdminProfitType {
	case ProfitTypePercentage:
		if c.AdminProfitValue < 0 || c.AdminProfitValue > 100 {
			return fmt.Errorf("percentage profit value must be in [0,100], got %d", c.AdminProfitValue)
		}
	case ProfitTypeFixedPerTeam, ProfitTypePlatformFee:
		if c.AdminProfitValue < 0 {
			return fmt.Errorf("profit value must be >= 0, got %d", c.AdminProfitValue)
		}
	default:
		return fmt.Errorf("unknown admin_profit_type: %q", c.AdminProfitType)
	}

	if len(c.PrizeDistribution) == 0 {
		return fmt.Errorf("prize_distribution must not be empty")
	}

	seen := make(map[int]bool, len(c.PrizeDistribution))
	total := 0.0
	for _, share := range c.PrizeDistribution {
		if share.Rank < 1 {
			return fmt.Errorf("prize rank must be >= 1, got %d", share.Rank)
		}
		if seen[share.Rank] {
			return fmt.Errorf("duplicate prize rank %d", share.Rank)
		}
		seen[share.Rank] = true

		if share.Percentage <= 0 {
			return fmt.Errorf("prize percentage for rank %d must be > 0, got %v", share.Rank, share.Percentage)
		}
		total += share.Percentage
	}
	if total > 100.0+1e-9 {
		return fmt.Errorf("prize percentages sum to %v, must be <= 100", total)
	}

	if !c.AutoCalculatePrize && c.FixedPrizePool < 0 {
		return fmt.Errorf("fixed_prize_pool must be >= 0, got %d", c.FixedPrizePool)
	}

	return nil
}
