// internal/nav/format.go
package nav

import (
	"fmt"
	"math"

	"github.com/otori-vision/ovt-client/internal/prefs"
)

// SatsPerBTC is the number of satoshis in one bitcoin.
const SatsPerBTC = 100_000_000

// FormatValue renders a satoshi amount as a human string under the given
// display currency. Pure: the output depends only on the arguments, so a
// rate change is reflected on the very next call.
//
// BTC mode: amounts of at least 1 BTC render as "₿1.00"; amounts of at
// least 1,000 sats compress to "1.5k sats"; smaller amounts render the raw
// integer, e.g. "999 sats".
//
// USD mode: the amount is converted through btcPriceUSD, then values of at
// least $1,000 compress to "$50.0k" and smaller values render as whole
// dollars, e.g. "$500".
func FormatValue(sats int64, currency prefs.Currency, btcPriceUSD float64) string {
	if currency == prefs.CurrencyUSD {
		usd := float64(sats) / SatsPerBTC * btcPriceUSD
		if usd >= 1000 {
			return fmt.Sprintf("$%.1fk", usd/1000)
		}
		return fmt.Sprintf("$%d", int64(math.Round(usd)))
	}

	if sats >= SatsPerBTC {
		return fmt.Sprintf("₿%.2f", float64(sats)/SatsPerBTC)
	}
	if sats >= 1000 {
		return fmt.Sprintf("%.1fk sats", float64(sats)/1000)
	}
	return fmt.Sprintf("%d sats", sats)
}
