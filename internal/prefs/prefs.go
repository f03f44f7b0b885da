// internal/prefs/prefs.go
package prefs

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Currency is the user's display currency for monetary values.
type Currency string

const (
	CurrencyBTC Currency = "btc"
	CurrencyUSD Currency = "usd"
)

// DefaultCurrency is used when no preference has been persisted or the
// backing storage is unavailable.
const DefaultCurrency = CurrencyBTC

// PreferenceKey is the persisted key holding the display currency.
const PreferenceKey = "ovt-currency-preference"

// Valid reports whether c is a known currency.
func (c Currency) Valid() bool {
	return c == CurrencyBTC || c == CurrencyUSD
}

// Store persists the currency preference across sessions. It is backed by a
// small viper-managed file; when the file cannot be read or written the
// store degrades to an in-memory value and never surfaces the failure to
// callers.
type Store struct {
	mu       sync.Mutex
	v        *viper.Viper
	filePath string
	memOnly  bool
	memValue Currency
	logger   *zap.Logger
}

// NewStore opens (or prepares to create) the preference file at filePath.
func NewStore(filePath string, logger *zap.Logger) *Store {
	s := &Store{
		filePath: filePath,
		logger:   logger.Named("prefs"),
	}

	v := viper.New()
	v.SetConfigFile(filePath)
	v.SetConfigType("json")
	v.SetDefault(PreferenceKey, string(DefaultCurrency))

	if err := v.ReadInConfig(); err != nil {
		if _, statErr := os.Stat(filePath); statErr == nil {
			// File exists but is unreadable or corrupt. Degrade silently.
			s.logger.Warn("Preference storage unavailable, using in-memory default",
				zap.String("path", filePath),
				zap.Error(err))
			s.memOnly = true
			s.memValue = DefaultCurrency
		}
		// A missing file is the normal first-run case.
	}

	s.v = v
	return s
}

// Get returns the persisted currency, or DefaultCurrency when unset,
// invalid, or storage is unavailable.
func (s *Store) Get() Currency {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.memOnly {
		if s.memValue.Valid() {
			return s.memValue
		}
		return DefaultCurrency
	}

	cur := Currency(s.v.GetString(PreferenceKey))
	if !cur.Valid() {
		return DefaultCurrency
	}
	return cur
}

// Set persists the currency. Write failures downgrade the store to
// in-memory operation; the value set in this session is still honored.
func (s *Store) Set(cur Currency) {
	if !cur.Valid() {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.memValue = cur
	if s.memOnly {
		return
	}

	s.v.Set(PreferenceKey, string(cur))
	if err := s.writeFile(); err != nil {
		s.logger.Warn("Failed to persist currency preference, keeping value in memory",
			zap.String("currency", string(cur)),
			zap.Error(err))
		s.memOnly = true
	}
}

// Remove clears the persisted preference so the default applies again.
func (s *Store) Remove() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.memValue = ""
	if s.memOnly {
		return
	}

	s.v.Set(PreferenceKey, string(DefaultCurrency))
	if err := s.writeFile(); err != nil {
		s.memOnly = true
	}
}

func (s *Store) writeFile() error {
	if err := os.MkdirAll(filepath.Dir(s.filePath), 0o755); err != nil {
		return err
	}
	return s.v.WriteConfigAs(s.filePath)
}
