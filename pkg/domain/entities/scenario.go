package entities

import "fmt"

// ScenarioParameters are the what-if knobs sent to the simulation endpoint.
// Two values are the same scenario exactly when they compare equal.
type ScenarioParameters struct {
	DelayDays      int
	DemandSpikePct int
}

// NewScenarioParameters creates validated ScenarioParameters
func NewScenarioParameters(delayDays, demandSpikePct int) (ScenarioParameters, error) {
	p := ScenarioParameters{DelayDays: delayDays, DemandSpikePct: demandSpikePct}
	if err := p.Validate(); err != nil {
		return ScenarioParameters{}, err
	}
	return p, nil
}

// Validate checks that both knobs are non-negative
func (p ScenarioParameters) Validate() error {
	if p.DelayDays < 0 {
		return fmt.Errorf("delay days cannot be negative, got %d", p.DelayDays)
	}
	if p.DemandSpikePct < 0 {
		return fmt.Errorf("demand spike cannot be negative, got %d", p.DemandSpikePct)
	}
	return nil
}

// RequestKey is the canonical signature of the remote what-if request
func (p ScenarioParameters) RequestKey() string {
	return fmt.Sprintf("delay_days=%d&demand_spike_pct=%d", p.DelayDays, p.DemandSpikePct)
}

// ScenarioProjection is the service's projected runway under a scenario
type ScenarioProjection struct {
	Parameters ScenarioParameters
	Entries    []ForecastEntry
}
