package entities

import "time"

// ForecastEntry is the service-computed stock runway for one product.
// Status and RestockRecommended mirror what the service sent; the client
// re-derives both and never acts on them directly.
type ForecastEntry struct {
	ProductID          ProductID
	ProductName        string
	CurrentStock       float64
	BurnRate           float64
	DaysLeft           float64
	LeadTimeDays       *int
	IncomingStock      *float64
	NextDeliveryDate   *time.Time
	ServerStatus       string
	RestockRecommended bool
}

// SeverityTier grades how urgently a product needs replenishment
type SeverityTier int

const (
	TierSafe SeverityTier = iota
	TierWarning
	TierCritical
)

// String method for SeverityTier enum
func (t SeverityTier) String() string {
	switch t {
	case TierSafe:
		return "safe"
	case TierWarning:
		return "warning"
	case TierCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// MarshalText lets tiers serialize by name
func (t SeverityTier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// Replenishment is the buy/no-buy decision derived from a forecast entry
type Replenishment struct {
	BufferDays         float64
	LeadTimeDays       int
	Tier               SeverityTier
	RestockRecommended bool
}

// ClassifiedForecast pairs a forecast entry with the client's decision
type ClassifiedForecast struct {
	Entry    ForecastEntry
	Decision Replenishment
}
