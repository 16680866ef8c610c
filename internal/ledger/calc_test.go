package ledger

import (
	"testing"

	"github.com/anhbaysgalan1/arena/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeAdminProfit_Percentage(t *testing.T) {
	cfg := &models.FinanceConfig{
		AdminProfitType:  models.ProfitTypePercentage,
		AdminProfitValue: 10,
	}

	profit := ComputeAdminProfit(cfg, 200000, 4, 8)
	assert.Equal(t, int64(20000), profit)
}

func TestComputeAdminProfit_PercentageRounding(t *testing.T) {
	cfg := &models.FinanceConfig{
		AdminProfitType:  models.ProfitTypePercentage,
		AdminProfitValue: 33,
	}

	// 33% of 101 = 33.33, rounds to 33
	profit := ComputeAdminProfit(cfg, 101, 1, 1)
	assert.Equal(t, int64(33), profit)

	// 33% of 105 = 34.65, rounds to 35
	profit = ComputeAdminProfit(cfg, 105, 1, 1)
	assert.Equal(t, int64(35), profit)
}

func TestComputeAdminProfit_FixedPerTeam(t *testing.T) {
	cfg := &models.FinanceConfig{
		AdminProfitType:  models.ProfitTypeFixedPerTeam,
		AdminProfitValue: 5000,
	}

	profit := ComputeAdminProfit(cfg, 200000, 4, 16)
	assert.Equal(t, int64(20000), profit)
}

func TestComputeAdminProfit_PlatformFee(t *testing.T) {
	cfg := &models.FinanceConfig{
		AdminProfitType:  models.ProfitTypePlatformFee,
		AdminProfitValue: 250,
	}

	// Fee applies per paid contribution, not per wallet
	profit := ComputeAdminProfit(cfg, 200000, 4, 16)
	assert.Equal(t, int64(4000), profit)
}

func TestComputeAdminProfit_ClampedToCollected(t *testing.T) {
	cfg := &models.FinanceConfig{
		AdminProfitType:  models.ProfitTypeFixedPerTeam,
		AdminProfitValue: 100000,
	}

	// 10 wallets x 100000 fee would exceed the 50000 collected
	profit := ComputeAdminProfit(cfg, 50000, 10, 10)
	assert.Equal(t, int64(50000), profit)
}

func TestComputeAdminProfit_ZeroCollected(t *testing.T) {
	cfg := &models.FinanceConfig{
		AdminProfitType:  models.ProfitTypePercentage,
		AdminProfitValue: 10,
	}

	profit := ComputeAdminProfit(cfg, 0, 0, 0)
	assert.Equal(t, int64(0), profit)
}

func TestExpandPrizeTable_ExactSplit(t *testing.T) {
	table := []models.PrizeShare{
		{Rank: 1, Percentage: 50},
		{Rank: 2, Percentage: 30},
		{Rank: 3, Percentage: 20},
	}

	portions := ExpandPrizeTable(180000, table)
	require.Len(t, portions, 3)

	assert.Equal(t, PrizePortion{Rank: 1, Amount: 90000}, portions[0])
	assert.Equal(t, PrizePortion{Rank: 2, Amount: 54000}, portions[1])
	assert.Equal(t, PrizePortion{Rank: 3, Amount: 36000}, portions[2])
}

func TestExpandPrizeTable_RemainderToFirstRank(t *testing.T) {
	table := []models.PrizeShare{
		{Rank: 1, Percentage: 33.33},
		{Rank: 2, Percentage: 33.33},
		{Rank: 3, Percentage: 33.34},
	}

	portions := ExpandPrizeTable(100, table)
	require.Len(t, portions, 3)

	var total int64
	for _, p := range portions {
		total += p.Amount
	}
	assert.Equal(t, int64(100), total, "pool must be allocated exactly")
	assert.Equal(t, 1, portions[0].Rank)
}

func TestExpandPrizeTable_PartialTableRemainder(t *testing.T) {
	// Percentages sum below 100: the unallocated remainder still lands
	// on rank 1 so nothing is stranded in escrow.
	table := []models.PrizeShare{
		{Rank: 1, Percentage: 40},
		{Rank: 2, Percentage: 30},
	}

	portions := ExpandPrizeTable(100000, table)
	require.Len(t, portions, 2)

	assert.Equal(t, int64(70000), portions[0].Amount)
	assert.Equal(t, int64(30000), portions[1].Amount)
}

func TestExpandPrizeTable_UnsortedInput(t *testing.T) {
	table := []models.PrizeShare{
		{Rank: 3, Percentage: 20},
		{Rank: 1, Percentage: 50},
		{Rank: 2, Percentage: 30},
	}

	portions := ExpandPrizeTable(1000, table)
	require.Len(t, portions, 3)

	assert.Equal(t, 1, portions[0].Rank)
	assert.Equal(t, 2, portions[1].Rank)
	assert.Equal(t, 3, portions[2].Rank)
	assert.Equal(t, int64(500), portions[0].Amount)
}

func TestExpandPrizeTable_Empty(t *testing.T) {
	assert.Nil(t, ExpandPrizeTable(1000, nil))
	assert.Nil(t, ExpandPrizeTable(1000, []models.PrizeShare{}))
}

func TestExpandPrizeTable_DoesNotMutateInput(t *testing.T) {
	table := []models.PrizeShare{
		{Rank: 2, Percentage: 30},
		{Rank: 1, Percentage: 70},
	}

	ExpandPrizeTable(1000, table)

	assert.Equal(t, 2, table[0].Rank)
	assert.Equal(t, 1, table[1].Rank)
}
