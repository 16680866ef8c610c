package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WalletStatus tracks the escrow lifecycle of a team wallet
type WalletStatus string

const (
	WalletStatusPending   WalletStatus = "pending"
	WalletStatusConfirmed WalletStatus = "confirmed"
	WalletStatusRefunded  WalletStatus = "refunded"
)

// TeamWallet escrows one team's entry-fee contributions for one tournament.
// For solo tournaments it degenerates to a single-contributor wallet where
// team_id carries the user ID. Uniqueness of (tournament_id, team_id) is
// enforced by a partial index, see database.SetupIndexes.
type TeamWallet struct {
	ID             uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TournamentID   uuid.UUID      `json:"tournament_id" gorm:"type:uuid;not null;index"`
	TeamID         uuid.UUID      `json:"team_id" gorm:"type:uuid;not null"`
	Balance        int64          `json:"balance" gorm:"not null;default:0"`         // minor units
	RequiredAmount int64          `json:"required_amount" gorm:"not null"`           // per_player_fee * team_size, fixed at creation
	PerPlayerFee   int64          `json:"per_player_fee" gorm:"not null"`            // expected contribution amount, fixed at creation
	Status         WalletStatus   `json:"status" gorm:"type:varchar(20);not null;default:pending;index"`
	RefundReason   *string        `json:"refund_reason,omitempty" gorm:"size:255"`
	ConfirmedAt    *time.Time     `json:"confirmed_at,omitempty"`
	RefundedAt     *time.Time     `json:"refunded_at,omitempty"`
	Contributions  []Contribution `json:"contributions,omitempty" gorm:"foreignKey:WalletID"`
	CreatedAt      time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt      time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt      gorm.DeletedAt `json:"-" gorm:"index"`
}

func (TeamWallet) TableName() string {
	return "team_wallets"
}

// AcceptsFunds reports whether the wallet is still collecting contributions
func (w *TeamWallet) AcceptsFunds() bool {
	return w.Status == WalletStatusPending
}

// ContributionStatus tracks a single player's entry-fee payment
type ContributionStatus string

const (
	ContributionStatusPending  ContributionStatus = "pending"
	ContributionStatusPaid     ContributionStatus = "paid"
	ContributionStatusRefunded ContributionStatus = "refunded"
)

// Contribution is one player's entry-fee payment toward a team wallet.
// Payment capture happens upstream; a contribution is created already PAID
// as the ledger-side confirmation. At most one per (wallet_id, user_id),
// enforced by a partial index, see database.SetupIndexes.
type Contribution struct {
	ID               uuid.UUID          `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	WalletID         uuid.UUID          `json:"wallet_id" gorm:"type:uuid;not null;index"`
	Wallet           TeamWallet         `json:"-" gorm:"foreignKey:WalletID;constraint:OnDelete:RESTRICT"`
	UserID           uuid.UUID          `json:"user_id" gorm:"type:uuid;not null;index"`
	Amount           int64              `json:"amount" gorm:"not null"` // minor units, fixed at creation
	Status           ContributionStatus `json:"status" gorm:"type:varchar(20);not null;default:pending;index"`
	PaidAt           *time.Time         `json:"paid_at,omitempty"`
	RefundedAt       *time.Time         `json:"refunded_at,omitempty"`
	RefundTransferID *string            `json:"refund_transfer_id,omitempty" gorm:"size:255"`
	CreatedAt        time.Time          `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt        time.Time          `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt        gorm.DeletedAt     `json:"-" gorm:"index"`
}

func (Contribution) TableName() string {
	return "contributions"
}

// LedgerStatus gates late contributions once a tournament closes
type LedgerStatus string

const (
	LedgerStatusOpen   LedgerStatus = "open"
	LedgerStatusClosed LedgerStatus = "closed"
)

// TournamentLedger is the per-tournament registration gate. It is created
// when the first wallet opens and flipped to closed exactly once at
// tournament close, before confirmed wallets are read.
type TournamentLedger struct {
	ID           uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TournamentID uuid.UUID      `json:"tournament_id" gorm:"type:uuid;not null;uniqueIndex"`
	Status       LedgerStatus   `json:"status" gorm:"type:varchar(20);not null;default:open"`
	ClosedAt     *time.Time     `json:"closed_at,omitempty"`
	CreatedAt    time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`
}

func (TournamentLedger) TableName() string {
	return "tournament_ledgers"
}
