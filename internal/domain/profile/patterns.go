package profile

import (
	"sort"

	"github.com/spotnest/matchd/internal/domain/model"
)

// Pattern confidence ramps: confidence reaches 1.0 after this many
// bookings.
const (
	priceConfidenceRamp  = 10
	timingConfidenceRamp = 5
	peakHourCount        = 3
)

// DerivePatterns recomputes the behavioral patterns for a booking
// history. It is deterministic and keeps no incremental state; zero
// bookings yield no patterns.
func DerivePatterns(bookings []model.Booking) []model.BehaviorPattern {
	if len(bookings) == 0 {
		return nil
	}

	return []model.BehaviorPattern{
		priceSensitivity(bookings),
		bookingTiming(bookings),
	}
}

// priceSensitivity captures the mean and variance of historical
// booking prices.
func priceSensitivity(bookings []model.Booking) model.BehaviorPattern {
	n := float64(len(bookings))

	var sum float64
	for _, b := range bookings {
		sum += b.Price
	}
	mean := sum / n

	var variance float64
	for _, b := range bookings {
		d := b.Price - mean
		variance += d * d
	}
	variance /= n

	return model.BehaviorPattern{
		Type:          model.PatternPriceSensitivity,
		Confidence:    rampConfidence(len(bookings), priceConfidenceRamp),
		AveragePrice:  mean,
		PriceVariance: variance,
	}
}

// bookingTiming keeps the top-3 most frequent booking hours of day,
// ties broken by the earlier hour.
func bookingTiming(bookings []model.Booking) model.BehaviorPattern {
	var counts [24]int
	for _, b := range bookings {
		counts[b.Date.Hour()]++
	}

	var hours []int
	for h := range counts {
		if counts[h] > 0 {
			hours = append(hours, h)
		}
	}
	sort.Slice(hours, func(i, j int) bool {
		if counts[hours[i]] != counts[hours[j]] {
			return counts[hours[i]] > counts[hours[j]]
		}
		return hours[i] < hours[j]
	})
	if len(hours) > peakHourCount {
		hours = hours[:peakHourCount]
	}

	return model.BehaviorPattern{
		Type:       model.PatternBookingTiming,
		Confidence: rampConfidence(len(bookings), timingConfidenceRamp),
		PeakHours:  hours,
	}
}

// rampConfidence is min(count/ramp, 1).
func rampConfidence(count, ramp int) float64 {
	c := float64(count) / float64(ramp)
	if c > 1 {
		return 1
	}
	return c
}
