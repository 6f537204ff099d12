// Package refdata serves the static team and athlete lookup tables used
// by preference pickers. The tables are embedded in the binary, parsed
// once at startup, and treated as immutable afterwards.
package refdata

import (
	_ "embed"
	"encoding/json"
	"fmt"
)

//go:embed teams.json
var teamsJSON []byte

//go:embed athletes.json
var athletesJSON []byte

// Team is one selectable team.
type Team struct {
	Name   string `json:"name"`
	League string `json:"league"`
}

// Athlete is one selectable athlete.
type Athlete struct {
	Name  string `json:"name"`
	Sport string `json:"sport"`
	Team  string `json:"team,omitempty"`
}

// Catalog holds the loaded reference tables.
type Catalog struct {
	Teams    []Team
	Athletes []Athlete
}

// Load parses the embedded tables. Call it once at process start and pass
// the catalog by reference.
func Load() (*Catalog, error) {
	var c Catalog
	if err := json.Unmarshal(teamsJSON, &c.Teams); err != nil {
		return nil, fmt.Errorf("failed to parse teams data: %w", err)
	}
	if err := json.Unmarshal(athletesJSON, &c.Athletes); err != nil {
		return nil, fmt.Errorf("failed to parse athletes data: %w", err)
	}
	return &c, nil
}
