package services

import (
	"github.com/vsinha/procurement/pkg/domain/entities"
)

// Buffer thresholds, in days. All comparisons are strict.
const (
	criticalBelowDays = 0
	warningBelowDays  = 2
	restockBelowDays  = 3
)

// ReplenishmentInput carries the forecast figures for one product.
// LeadTimeDays is nil when the lead time is unknown.
type ReplenishmentInput struct {
	CurrentStock float64
	BurnRate     float64
	DaysLeft     float64
	LeadTimeDays *int
}

// ClassifyReplenishment turns a forecast into a buy/no-buy decision.
// The result depends only on DaysLeft and the lead time; boundary values
// fall into the calmer tier.
func ClassifyReplenishment(in ReplenishmentInput) entities.Replenishment {
	leadTime := entities.DefaultLeadTimeDays
	if in.LeadTimeDays != nil {
		leadTime = *in.LeadTimeDays
	}

	buffer := in.DaysLeft - float64(leadTime)

	tier := entities.TierSafe
	switch {
	case buffer < criticalBelowDays:
		tier = entities.TierCritical
	case buffer < warningBelowDays:
		tier = entities.TierWarning
	}

	return entities.Replenishment{
		BufferDays:         buffer,
		LeadTimeDays:       leadTime,
		Tier:               tier,
		RestockRecommended: buffer < restockBelowDays,
	}
}

// LeadTimeLookup returns the known lead time of a product
type LeadTimeLookup func(id entities.ProductID) (int, bool)

// ClassifyForecast classifies every entry. The lead time comes from the
// entry itself, then from lookup, then the default.
func ClassifyForecast(entries []entities.ForecastEntry, lookup LeadTimeLookup) []entities.ClassifiedForecast {
	classified := make([]entities.ClassifiedForecast, 0, len(entries))
	for _, entry := range entries {
		leadTime := entry.LeadTimeDays
		if leadTime == nil && lookup != nil {
			if days, ok := lookup(entry.ProductID); ok {
				leadTime = &days
			}
		}

		classified = append(classified, entities.ClassifiedForecast{
			Entry: entry,
			Decision: ClassifyReplenishment(ReplenishmentInput{
				CurrentStock: entry.CurrentStock,
				BurnRate:     entry.BurnRate,
				DaysLeft:     entry.DaysLeft,
				LeadTimeDays: leadTime,
			}),
		})
	}
	return classified
}
