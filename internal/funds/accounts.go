package funds

import (
	"fmt"

	"github.com/google/uuid"
)

// Account naming constants and utility functions to ensure consistency
// across every transfer this service issues

const (
	// Account prefixes
	UserAccountPrefix = "user"
	TeamAccountPrefix = "team"
	EscrowPrefix      = "escrow"

	// Platform accounts
	OperatingAccount = "platform:operating"

	// Account suffixes
	WalletSuffix = "wallet"
)

// UserWalletAccount returns the free-standing wallet account name for a user
func UserWalletAccount(userID uuid.UUID) string {
	return fmt.Sprintf("%s:%s:%s", UserAccountPrefix, userID.String(), WalletSuffix)
}

// TeamWalletAccount returns the free-standing wallet account name for a team
func TeamWalletAccount(teamID uuid.UUID) string {
	return fmt.Sprintf("%s:%s:%s", TeamAccountPrefix, teamID.String(), WalletSuffix)
}

// TournamentEscrowAccount returns the escrow account name backing a
// tournament's collected entry fees
func TournamentEscrowAccount(tournamentID uuid.UUID) string {
	return fmt.Sprintf("%s:tournament:%s", EscrowPrefix, tournamentID.String())
}
