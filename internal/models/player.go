package models

import "time"

// Player is one row of the players table.
type Player struct {
	ID                int       `json:"id"`
	Name              string    `json:"name"`
	Team              string    `json:"team"`
	Position          string    `json:"position"` // Goalkeeper, Defender, Midfielder, Forward
	Price             float64   `json:"price"`    // GBP millions
	TotalPoints       int       `json:"total_points"`
	Form              float64   `json:"form"`
	SelectedByPercent float64   `json:"selected_by_percent"`
	Minutes           int       `json:"minutes"`
	GoalsScored       int       `json:"goals_scored"`
	Assists           int       `json:"assists"`
	CleanSheets       int       `json:"clean_sheets"`
	GoalsConceded     int       `json:"goals_conceded"`
	YellowCards       int       `json:"yellow_cards"`
	RedCards          int       `json:"red_cards"`
	LastUpdated       time.Time `json:"last_updated"`
}
