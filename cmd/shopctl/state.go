package main

import (
	"os"
	"path/filepath"
	"strings"
)

// The selected camping location lives under its own file in the state dir,
// separate from the cart, so a cleared cart never forgets where the user
// has deliveries sent.
const selectedLocationFile = "selected_location"

func loadSelectedLocation(dir string) string {
	b, err := os.ReadFile(filepath.Join(dir, selectedLocationFile))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(b))
}

func saveSelectedLocation(dir, locationID string) error {
	return os.WriteFile(filepath.Join(dir, selectedLocationFile), []byte(locationID), 0o600)
}
