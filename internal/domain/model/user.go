package model

import "time"

// User is a participant identity with a cumulative point score.
// Score is mutated only by settlement, via atomic increments.
type User struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Score    int       `json:"score"`
	JoinedAt time.Time `json:"joinedAt"`
}
