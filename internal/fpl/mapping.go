package fpl

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aman-zulfiqar/fpl-advisor/internal/models"
)

// ToPlayers maps upstream elements to player records:
//
//	name     = first_name + " " + second_name
//	team     = teams[id == team].name
//	position = element_types[id == element_type].singular_name
//	price    = now_cost / 10
//
// Any element that cannot be mapped fails the whole conversion.
func ToPlayers(b *Bootstrap) ([]models.Player, error) {
	teams := make(map[int]string, len(b.Teams))
	for _, t := range b.Teams {
		teams[t.ID] = t.Name
	}
	positions := make(map[int]string, len(b.ElementTypes))
	for _, et := range b.ElementTypes {
		positions[et.ID] = et.SingularName
	}

	out := make([]models.Player, 0, len(b.Elements))
	for _, e := range b.Elements {
		team, ok := teams[e.Team]
		if !ok {
			return nil, fmt.Errorf("player %d: unknown team %d", e.ID, e.Team)
		}
		position, ok := positions[e.ElementType]
		if !ok {
			return nil, fmt.Errorf("player %d: unknown element type %d", e.ID, e.ElementType)
		}
		form, err := parseDecimal(e.Form)
		if err != nil {
			return nil, fmt.Errorf("player %d: invalid form: %w", e.ID, err)
		}
		selected, err := parseDecimal(e.SelectedByPercent)
		if err != nil {
			return nil, fmt.Errorf("player %d: invalid selected_by_percent: %w", e.ID, err)
		}

		out = append(out, models.Player{
			ID:                e.ID,
			Name:              strings.TrimSpace(e.FirstName + " " + e.SecondName),
			Team:              team,
			Position:          position,
			Price:             float64(e.NowCost) / 10,
			TotalPoints:       e.TotalPoints,
			Form:              form,
			SelectedByPercent: selected,
			Minutes:           e.Minutes,
			GoalsScored:       e.GoalsScored,
			Assists:           e.Assists,
			CleanSheets:       e.CleanSheets,
			GoalsConceded:     e.GoalsConceded,
			YellowCards:       e.YellowCards,
			RedCards:          e.RedCards,
		})
	}
	return out, nil
}

// parseDecimal treats an empty string as zero.
func parseDecimal(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}
