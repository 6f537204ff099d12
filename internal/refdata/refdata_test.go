package refdata

import "testing"

func TestLoad(t *testing.T) {
	catalog, err := Load()
	if err != nil {
		t.Fatalf("Failed to load reference data: %v", err)
	}

	if len(catalog.Teams) == 0 {
		t.Fatal("Expected embedded teams data")
	}
	if len(catalog.Athletes) == 0 {
		t.Fatal("Expected embedded athletes data")
	}

	for _, team := range catalog.Teams {
		if team.Name == "" || team.League == "" {
			t.Errorf("Expected every team to have name and league, got %+v", team)
		}
	}
	for _, athlete := range catalog.Athletes {
		if athlete.Name == "" || athlete.Sport == "" {
			t.Errorf("Expected every athlete to have name and sport, got %+v", athlete)
		}
	}
}
