package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const distributionJSON = `{
	"totalSupply": 2100000,
	"treasuryHeld": 1680000,
	"lpHeld": 210000,
	"distributed": 210000,
	"percentDistributed": 10,
	"percentInLP": 10,
	"treasuryAddresses": ["treasury-address"],
	"lpAddresses": ["lp-address"],
	"distributionEvents": []
}`

const runeInfoJSON = `{
	"id": "240000:1",
	"symbol": "OVT",
	"supply": {
		"total": 2100000,
		"distributed": 210000,
		"treasury": 1680000,
		"percentDistributed": 10
	},
	"events": []
}`

func newRuneTestClient(t *testing.T, baseURL string) *RuneClient {
	t.Helper()
	client, err := NewRuneClient(&RuneClientConfig{
		BaseURL:    baseURL,
		RuneID:     "240000:1",
		MaxTries:   3,
		RetryDelay: time.Millisecond,
		Logger:     zap.NewNop(),
	})
	require.NoError(t, err)
	return client
}

func TestRuneClientGetDistributionStats(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rune/240000:1/distribution", r.URL.Path)
		w.Write([]byte(distributionJSON))
	}))
	defer srv.Close()

	stats, err := newRuneTestClient(t, srv.URL).GetDistributionStats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(2100000), stats.TotalSupply)
	assert.Equal(t, int64(210000), stats.Distributed)
	assert.Equal(t, int64(210000), stats.LPHeld)
	assert.Equal(t, int64(1680000), stats.TreasuryHeld)
	assert.Equal(t, []string{"treasury-address"}, stats.TreasuryAddresses)

	// LP holdings stay a separate category.
	assert.LessOrEqual(t, stats.Distributed+stats.TreasuryHeld+stats.LPHeld, stats.TotalSupply)
}

func TestRuneClientGetRuneInfo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rune/240000:1", r.URL.Path)
		w.Write([]byte(runeInfoJSON))
	}))
	defer srv.Close()

	info, err := newRuneTestClient(t, srv.URL).GetRuneInfo(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "240000:1", info.ID)
	assert.Equal(t, "OVT", info.Symbol)
	assert.Equal(t, int64(2100000), info.Supply.Total)
}

func TestRuneClientRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(distributionJSON))
	}))
	defer srv.Close()

	stats, err := newRuneTestClient(t, srv.URL).GetDistributionStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2100000), stats.TotalSupply)
	assert.Equal(t, int32(3), calls.Load())
}

func TestRuneClientDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := newRuneTestClient(t, srv.URL).GetDistributionStats(context.Background())
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestArchClientGetCurrentNAV(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/nav", r.URL.Path)
		w.Write([]byte(`{
			"value": 5000000,
			"portfolioItems": [
				{
					"name": "Bitcoin Mining Co",
					"value": 3000000,
					"change": 4.2,
					"description": "ASIC fleet operator",
					"tokenAmount": 300,
					"pricePerToken": 10000,
					"address": "bc1p-mining"
				},
				{
					"name": "Lightning Infra",
					"value": 2000000,
					"change": -1.5,
					"description": "Routing node operator",
					"tokenAmount": 200,
					"pricePerToken": 10000,
					"address": "bc1p-lightning"
				}
			]
		}`))
	}))
	defer srv.Close()

	client, err := NewArchClient(&ArchClientConfig{
		BaseURL:    srv.URL,
		MaxTries:   2,
		RetryDelay: time.Millisecond,
		Logger:     zap.NewNop(),
	})
	require.NoError(t, err)

	nav, err := client.GetCurrentNAV(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(5000000), nav.Value)
	require.Len(t, nav.PortfolioItems, 2)
	assert.Equal(t, "Bitcoin Mining Co", nav.PortfolioItems[0].Name)
	assert.Equal(t, int64(3000000), nav.PortfolioItems[0].Value)
}

func TestPriceFeedReportsFallbackWhileLoading(t *testing.T) {
	feed := NewPriceFeed(&PriceFeedConfig{
		URL:           "http://127.0.0.1:1", // never started
		FallbackPrice: 50000,
		Logger:        zap.NewNop(),
	})

	reading := feed.Price()
	assert.Equal(t, 50000.0, reading.Price)
	assert.True(t, reading.IsLoading)
}

func TestPriceFeedRefreshes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"price": 61234.5}`))
	}))
	defer srv.Close()

	feed := NewPriceFeed(&PriceFeedConfig{
		URL:           srv.URL,
		Interval:      time.Hour,
		FallbackPrice: 50000,
		MaxTries:      1,
		RetryDelay:    time.Millisecond,
		Logger:        zap.NewNop(),
	})
	feed.Start()
	defer feed.Stop()

	require.Eventually(t, func() bool {
		return !feed.Price().IsLoading
	}, 2*time.Second, 10*time.Millisecond)

	reading := feed.Price()
	assert.Equal(t, 61234.5, reading.Price)
	assert.NoError(t, reading.Err)
}

func TestStaticPrice(t *testing.T) {
	reading := StaticPrice(50000).Price()
	assert.Equal(t, 50000.0, reading.Price)
	assert.False(t, reading.IsLoading)
}
