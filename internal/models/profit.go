package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ProfitStatus tracks collection of the organizer's cut
type ProfitStatus string

const (
	ProfitStatusPending   ProfitStatus = "pending"
	ProfitStatusCollected ProfitStatus = "collected"
	ProfitStatusRefunded  ProfitStatus = "refunded"
)

// AdminProfitRecord is the organizer's cut for one tournament, computed
// exactly once at close. The profit amount and the config snapshot are
// immutable after computation; only the Distribution engine moves status.
type AdminProfitRecord struct {
	ID             uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TournamentID   uuid.UUID       `json:"tournament_id" gorm:"type:uuid;not null;uniqueIndex"`
	ProfitAmount   int64           `json:"profit_amount" gorm:"not null"`   // minor units
	ProfitType     AdminProfitType `json:"profit_type" gorm:"type:varchar(20);not null"`
	TotalCollected int64           `json:"total_collected" gorm:"not null"` // sum of confirmed wallet balances at close
	PrizePool      int64           `json:"prize_pool" gorm:"not null"`
	AutoCalculated bool            `json:"auto_calculated" gorm:"not null;default:true"`
	PrizeTable     datatypes.JSON  `json:"prize_table" gorm:"type:jsonb"` // snapshot of the rank/percentage table at close
	Status         ProfitStatus    `json:"status" gorm:"type:varchar(20);not null;default:pending;index"`
	TransferID     *string         `json:"transfer_id,omitempty" gorm:"size:255"`
	CollectedAt    *time.Time      `json:"collected_at,omitempty"`
	CreatedAt      time.Time       `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt      time.Time       `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt      gorm.DeletedAt  `json:"-" gorm:"index"`
}

func (AdminProfitRecord) TableName() string {
	return "admin_profit_records"
}
