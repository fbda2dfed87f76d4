package rates

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// LatestResponse is the wire format of GET /latest/{base}.
type LatestResponse struct {
	Result             string                 `json:"result"`
	ErrorType          string                 `json:"error-type,omitempty"`
	Provider           string                 `json:"provider,omitempty"`
	BaseCode           string                 `json:"base_code"`
	TimeLastUpdateUnix int64                  `json:"time_last_update_unix"`
	Rates              map[string]json.Number `json:"rates"`
}

// Snapshot is a parsed rate table.
type Snapshot struct {
	Base      string
	Source    string
	UpdatedAt time.Time
	FetchedAt time.Time
	// Rates maps currency codes to units per 1 Base.
	Rates map[string]decimal.Decimal
}

// PerUSD rebases the table on USD. It returns nil when the table has no
// usable USD rate.
func (s *Snapshot) PerUSD() map[string]decimal.Decimal {
	if s.Base == "USD" {
		return s.Rates
	}
	usd, ok := s.Rates["USD"]
	if !ok || !usd.IsPositive() {
		return nil
	}
	out := make(map[string]decimal.Decimal, len(s.Rates))
	for code, r := range s.Rates {
		out[code] = r.Div(usd)
	}
	out["USD"] = decimal.NewFromInt(1)
	return out
}
