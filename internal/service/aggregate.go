package service

import (
	"math"

	"github.com/prepdash/backend/internal/models"
)

const (
	MinReadiness   = 70
	MaxReadiness   = 95
	MinBedCapacity = 20
	MaxBedCapacity = 250
)

type facilityBucket struct {
	facility models.Facility
	staff    []models.PersonRecord
}

// Aggregate groups person records into facilities keyed by location, city
// and state, then derives the synthetic hazard and capacity metrics.
//
// Draw order per facility is fixed: hazard (FL and TX only), readiness
// jitter, capacity jitter, staffing ratio.
func Aggregate(records []models.PersonRecord, rng RandomSource) []models.Facility {
	if len(records) == 0 {
		return []models.Facility{}
	}
	if rng == nil {
		rng = NewRandomSource(0)
	}

	var order []string
	buckets := map[string]*facilityBucket{}
	for _, p := range records {
		if p.Location == "" {
			continue
		}
		key := p.Location + "_" + p.City + "_" + p.State
		b, ok := buckets[key]
		if !ok {
			b = &facilityBucket{facility: models.Facility{
				Name:      p.Location,
				State:     p.State,
				City:      p.City,
				ZipCode:   p.ZipCode,
				Latitude:  p.Latitude,
				Longitude: p.Longitude,
			}}
			buckets[key] = b
			order = append(order, key)
		}
		b.staff = append(b.staff, p)
	}

	out := make([]models.Facility, 0, len(order))
	for _, key := range order {
		out = append(out, deriveFacility(buckets[key], rng))
	}
	return out
}

func deriveFacility(b *facilityBucket, rng RandomSource) models.Facility {
	f := b.facility
	medical := 0
	for _, p := range b.staff {
		if p.Medical() {
			medical++
		}
	}

	hazard := hazardForState(f.State, rng)

	base := 75 + float64(medical)/10
	jitter := rng.Float64()*20 - 10
	readiness := clampFloat(MinReadiness, MaxReadiness, base+jitter+stateBonus(f.State)+hazardBonus(hazard))

	staffCount := len(b.staff)
	baseCapacity := clampFloat(MinBedCapacity, MaxBedCapacity,
		float64(roundHalfUp(30+float64(staffCount)*1.5+(rng.Float64()*50-25))))
	beds := roundHalfUp(clampFloat(MinBedCapacity, MaxBedCapacity, baseCapacity*hazardFactor(hazard)))

	staffRatio := 1.5 + rng.Float64()*1.5
	emergency := roundHalfUp(float64(beds) * staffRatio * 0.35)
	if medical > 0 {
		upper := roundHalfUp(float64(beds) * 1.5)
		lower := roundHalfUp(float64(beds) * 0.2)
		emergency = int(math.Max(math.Min(float64(medical), float64(upper)), float64(lower)))
	}

	if f.Name == "" {
		f.Name = "Unknown Facility"
	}
	if f.State == "" {
		f.State = "Unknown"
	}
	if f.City == "" {
		f.City = "Unknown"
	}
	f.Staff = b.staff
	f.HazardLevel = hazard
	f.ReadinessScore = roundHalfUp(readiness)
	f.BedCapacity = beds
	f.EmergencyStaff = emergency
	f.TotalStaff = staffCount
	return f
}

func hazardForState(state string, rng RandomSource) models.HazardLevel {
	switch state {
	case "FL":
		if rng.Float64() > 0.5 {
			return models.HazardHigh
		}
		return models.HazardVeryHigh
	case "TX":
		if rng.Float64() > 0.7 {
			return models.HazardVeryHigh
		}
		return models.HazardHigh
	case "LA":
		return models.HazardExtreme
	case "GA":
		return models.HazardModerate
	default:
		return models.HazardLow
	}
}

func stateBonus(state string) float64 {
	switch state {
	case "FL", "TX":
		return 3
	case "LA":
		return 4
	case "GA":
		return 2
	default:
		return 0
	}
}

func hazardBonus(h models.HazardLevel) float64 {
	switch h {
	case models.HazardExtreme:
		return 5
	case models.HazardVeryHigh:
		return 3
	case models.HazardHigh:
		return 1
	case models.HazardModerate:
		return -1
	default:
		return -3
	}
}

func hazardFactor(h models.HazardLevel) float64 {
	switch h {
	case models.HazardExtreme, models.HazardVeryHigh:
		return 1.2
	case models.HazardHigh:
		return 1.1
	case models.HazardModerate:
		return 1.0
	default:
		return 0.9
	}
}
