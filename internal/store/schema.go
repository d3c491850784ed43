package store

import (
	"fmt"
	"strings"
)

// Column is one column of the players table as reported by the store.
type Column struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Note string `json:"note,omitempty"`
}

// Schema describes the players table. It is built from the live table so the
// prompt given to the query synthesizer cannot drift from the real columns.
type Schema struct {
	Table   string   `json:"table"`
	Columns []Column `json:"columns"`
}

// columnNotes carries the meaning of each column, which introspection cannot supply.
var columnNotes = map[string]string{
	"id":                  "unique FPL player id, stable across refreshes",
	"name":                "full player name, e.g. 'Cole Palmer'",
	"team":                "Premier League club name, e.g. 'Arsenal'",
	"position":            "one of 'Goalkeeper', 'Defender', 'Midfielder', 'Forward'",
	"price":               "current price in GBP millions, e.g. 7.5",
	"total_points":        "FPL points scored this season",
	"form":                "average points per match over the last 30 days",
	"selected_by_percent": "percentage of FPL managers owning the player",
	"minutes":             "minutes played this season",
	"goals_scored":        "goals this season",
	"assists":             "assists this season",
	"clean_sheets":        "clean sheets this season",
	"goals_conceded":      "goals conceded while on the pitch",
	"yellow_cards":        "yellow cards this season",
	"red_cards":           "red cards this season",
	"last_updated":        "time of the last data refresh (UTC)",
}

func newSchema(cols []Column) *Schema {
	for i := range cols {
		cols[i].Note = columnNotes[cols[i].Name]
	}
	return &Schema{Table: TableName, Columns: cols}
}

// ColumnNames returns the column names in table order.
func (s *Schema) ColumnNames() []string {
	out := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		out[i] = c.Name
	}
	return out
}

// Prompt renders the schema as plain text for inclusion in an LLM prompt.
func (s *Schema) Prompt() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Table: %s\n\nColumns:\n", s.Table)
	for _, c := range s.Columns {
		if c.Note != "" {
			fmt.Fprintf(&b, "  - %s (%s) -- %s\n", c.Name, c.Type, c.Note)
		} else {
			fmt.Fprintf(&b, "  - %s (%s)\n", c.Name, c.Type)
		}
	}
	b.WriteString("\nNotes:\n")
	b.WriteString("  - There is exactly one row per player.\n")
	b.WriteString("  - Value for money is usually total_points / price.\n")
	b.WriteString("  - Differentials are players with a low selected_by_percent.\n")
	return b.String()
}
