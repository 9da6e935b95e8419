package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectedLocationRoundTrip(t *testing.T) {
	dir := t.TempDir()

	assert.Equal(t, "", loadSelectedLocation(dir), "no stored choice yet")

	require.NoError(t, saveSelectedLocation(dir, "loc-42"))
	assert.Equal(t, "loc-42", loadSelectedLocation(dir))

	// A new choice replaces the old one.
	require.NoError(t, saveSelectedLocation(dir, "loc-7"))
	assert.Equal(t, "loc-7", loadSelectedLocation(dir))
}

func TestSelectedLocationKeptApartFromCart(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, saveSelectedLocation(dir, "loc-1"))

	// Wiping the cart file must not touch the stored location.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "escapetable_cart.json"), []byte("[]"), 0o600))
	require.NoError(t, os.Remove(filepath.Join(dir, "escapetable_cart.json")))

	assert.Equal(t, "loc-1", loadSelectedLocation(dir))
}
