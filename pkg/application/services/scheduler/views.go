package scheduler

import (
	"fmt"
	"sort"

	"github.com/vsinha/procurement/pkg/application/state"
)

// View is a screen of the dashboard
type View string

const (
	ViewMarket    View = "market"
	ViewInventory View = "inventory"
	ViewContracts View = "contracts"
	ViewOrders    View = "orders"
	ViewAnalytics View = "analytics"
	ViewForecast  View = "forecast"
	ViewScenario  View = "scenario"
)

// ViewResources lists what each view shows. The table is the only place
// that decides which resources are kept fresh.
var ViewResources = map[View][]state.Resource{
	ViewMarket:    {state.ResourceProducts},
	ViewInventory: {state.ResourceProducts},
	ViewContracts: {},
	ViewOrders:    {state.ResourceOrders},
	ViewAnalytics: {state.ResourceDashboard, state.ResourceHistory},
	ViewForecast:  {state.ResourceForecast, state.ResourceProducts},
	ViewScenario:  {state.ResourceScenario},
}

// Always lists the resources refreshed on every tick regardless of view.
var Always = []state.Resource{state.ResourceClock, state.ResourceClockEvents}

// Views returns every known view, sorted by name
func Views() []View {
	views := make([]View, 0, len(ViewResources))
	for v := range ViewResources {
		views = append(views, v)
	}
	sort.Slice(views, func(i, j int) bool { return views[i] < views[j] })
	return views
}

// ParseView parses a view name
func ParseView(s string) (View, error) {
	v := View(s)
	if _, ok := ViewResources[v]; !ok {
		return "", fmt.Errorf("unknown view: %q", s)
	}
	return v, nil
}

// Needed returns the resources to refresh on a tick while view is active
func Needed(view View) []state.Resource {
	return union(Always, ViewResources[view])
}

// Diff returns the resources next shows that prev did not, and the ones
// prev showed that next does not.
func Diff(prev, next View) (added, removed []state.Resource) {
	before := toSet(ViewResources[prev])
	after := toSet(ViewResources[next])

	for _, r := range ViewResources[next] {
		if !before[r] {
			added = append(added, r)
		}
	}
	for _, r := range ViewResources[prev] {
		if !after[r] {
			removed = append(removed, r)
		}
	}
	return added, removed
}

func union(sets ...[]state.Resource) []state.Resource {
	seen := make(map[state.Resource]bool)
	var out []state.Resource
	for _, set := range sets {
		for _, r := range set {
			if !seen[r] {
				seen[r] = true
				out = append(out, r)
			}
		}
	}
	return out
}

func toSet(resources []state.Resource) map[state.Resource]bool {
	set := make(map[state.Resource]bool, len(resources))
	for _, r := range resources {
		set[r] = true
	}
	return set
}

func names(resources []state.Resource) []string {
	out := make([]string, len(resources))
	for i, r := range resources {
		out[i] = string(r)
	}
	return out
}
