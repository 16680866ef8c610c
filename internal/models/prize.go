package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PrizeStatus tracks the payout lifecycle of a single rank's prize
type PrizeStatus string

const (
	PrizeStatusPending     PrizeStatus = "pending"
	PrizeStatusDistributed PrizeStatus = "distributed"
	PrizeStatusFailed      PrizeStatus = "failed"
)

// RecipientKind distinguishes team payouts (squad) from user payouts (solo)
type RecipientKind string

const (
	RecipientKindTeam RecipientKind = "team"
	RecipientKindUser RecipientKind = "user"
)

// PrizeRecord is a computed, rank-scoped payout obligation. Created PENDING
// at tournament close; only the Distribution engine moves its status. FAILED
// records re-enter PENDING through an operator-triggered retry. One record
// per (tournament_id, rank), enforced by a partial index, see
// database.SetupIndexes.
type PrizeRecord struct {
	ID            uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TournamentID  uuid.UUID      `json:"tournament_id" gorm:"type:uuid;not null;index"`
	Rank          int            `json:"rank" gorm:"not null"`
	RecipientID   uuid.UUID      `json:"recipient_id" gorm:"type:uuid;not null;index"`
	RecipientKind RecipientKind  `json:"recipient_kind" gorm:"type:varchar(10);not null"`
	PrizeAmount   int64          `json:"prize_amount" gorm:"not null"` // minor units
	Status        PrizeStatus    `json:"status" gorm:"type:varchar(20);not null;default:pending;index"`
	TransferID    *string        `json:"transfer_id,omitempty" gorm:"size:255"`
	FailureReason *string        `json:"failure_reason,omitempty" gorm:"size:500"`
	DistributedAt *time.Time     `json:"distributed_at,omitempty"`
	CreatedAt     time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt     time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt     gorm.DeletedAt `json:"-" gorm:"index"`
}

func (PrizeRecord) TableName() string {
	return "prize_records"
}
