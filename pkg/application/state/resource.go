package state

import "fmt"

// Resource names one independently fetched collection of remote state.
type Resource string

const (
	ResourceClock        Resource = "clock"
	ResourceClockEvents  Resource = "clock_events"
	ResourceProducts     Resource = "products"
	ResourceOrders       Resource = "orders"
	ResourceDashboard    Resource = "dashboard"
	ResourceHistory      Resource = "history"
	ResourceForecast     Resource = "forecast"
	ResourceScenario     Resource = "scenario"
	ResourceAlternatives Resource = "alternatives"
)

var allResources = []Resource{
	ResourceClock,
	ResourceClockEvents,
	ResourceProducts,
	ResourceOrders,
	ResourceDashboard,
	ResourceHistory,
	ResourceForecast,
	ResourceScenario,
	ResourceAlternatives,
}

// AllResources returns every resource in a stable order
func AllResources() []Resource {
	return append([]Resource(nil), allResources...)
}

func (r Resource) String() string {
	return string(r)
}

func (r Resource) Valid() bool {
	for _, known := range allResources {
		if r == known {
			return true
		}
	}
	return false
}

// ParseResource parses a resource name
func ParseResource(s string) (Resource, error) {
	r := Resource(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown resource: %q", s)
	}
	return r, nil
}
