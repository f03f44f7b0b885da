package prefs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestGetDefaultsToBTC(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")
	store := NewStore(path, zap.NewNop())

	assert.Equal(t, CurrencyBTC, store.Get())
}

func TestSetThenGet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")
	store := NewStore(path, zap.NewNop())

	store.Set(CurrencyUSD)
	assert.Equal(t, CurrencyUSD, store.Get())

	store.Set(CurrencyBTC)
	assert.Equal(t, CurrencyBTC, store.Get())
}

func TestPreferenceSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")

	store := NewStore(path, zap.NewNop())
	store.Set(CurrencyUSD)

	reopened := NewStore(path, zap.NewNop())
	assert.Equal(t, CurrencyUSD, reopened.Get())
}

func TestInvalidValueIgnored(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")
	store := NewStore(path, zap.NewNop())

	store.Set(Currency("eur"))
	assert.Equal(t, CurrencyBTC, store.Get())
}

func TestCorruptFileDegradesToDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	store := NewStore(path, zap.NewNop())
	assert.Equal(t, CurrencyBTC, store.Get())

	// Sets still work for the current session.
	store.Set(CurrencyUSD)
	assert.Equal(t, CurrencyUSD, store.Get())
}

func TestUnwritableLocationKeepsValueInMemory(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("directory permissions are not enforced for root")
	}

	dir := t.TempDir()
	require.NoError(t, os.Chmod(dir, 0o500))
	t.Cleanup(func() { _ = os.Chmod(dir, 0o755) })

	store := NewStore(filepath.Join(dir, "sub", "prefs.json"), zap.NewNop())
	store.Set(CurrencyUSD)

	// The write failed silently; the session value is still honored.
	assert.Equal(t, CurrencyUSD, store.Get())
}

func TestRemoveRestoresDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")
	store := NewStore(path, zap.NewNop())

	store.Set(CurrencyUSD)
	store.Remove()
	assert.Equal(t, CurrencyBTC, store.Get())
}
