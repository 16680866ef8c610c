package models

import "github.com/google/uuid"

// TournamentResult is one row of a tournament's final standing, as reported
// by the tournament service. RecipientID is a team ID for squad tournaments
// and a user ID for solo ones.
type TournamentResult struct {
	Rank        int       `json:"rank"`
	RecipientID uuid.UUID `json:"recipient_id"`
}
