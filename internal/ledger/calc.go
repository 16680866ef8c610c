package ledger

import (
	"math"
	"sort"

	"github.com/anhbaysgalan1/arena/internal/models"
)

// PrizePortion is one rank's computed payout amount
type PrizePortion struct {
	Rank   int   `json:"rank"`
	Amount int64 `json:"amount"` // minor units
}

// ComputeAdminProfit applies the configured organizer-cut formula. The
// result is clamped to [0, totalCollected]: the organizer never takes more
// than was collected and never owes into the pool.
func ComputeAdminProfit(cfg *models.FinanceConfig, totalCollected int64, confirmedWallets, paidContributions int) int64 {
	var profit int64

	switch cfg.AdminProfitType {
	case models.ProfitTypePercentage:
		profit = int64(math.Round(float64(totalCollected) * float64(cfg.AdminProfitValue) / 100.0))
	case models.ProfitTypeFixedPerTeam:
		profit = cfg.AdminProfitValue * int64(confirmedWallets)
	case models.ProfitTypePlatformFee:
		// Flat fee earmarked per contribution at contribution time; the
		// pool reduction is count-based, not collected-amount-based.
		profit = cfg.AdminProfitValue * int64(paidContributions)
	}

	if profit < 0 {
		profit = 0
	}
	if profit > totalCollected {
		profit = totalCollected
	}
	return profit
}

// ExpandPrizeTable turns a rank/percentage table into concrete amounts.
// Each share rounds to whole minor units; the remainder between the pool
// and the rounded sum lands on the first rank so the pool is allocated
// exactly once.
func ExpandPrizeTable(prizePool int64, table []models.PrizeShare) []PrizePortion {
	if len(table) == 0 {
		return nil
	}

	shares := make([]models.PrizeShare, len(table))
	copy(shares, table)
	sort.Slice(shares, func(i, j int) bool { return shares[i].Rank < shares[j].Rank })

	portions := make([]PrizePortion, len(shares))
	var allocated int64
	for i, share := range shares {
		amount := int64(math.Round(float64(prizePool) * share.Percentage / 100.0))
		portions[i] = PrizePortion{Rank: share.Rank, Amount: amount}
		allocated += amount
	}

	portions[0].Amount += prizePool - allocated
	return portions
}
