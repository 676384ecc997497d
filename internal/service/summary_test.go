package service

import (
	"math"
	"reflect"
	"testing"

	"github.com/prepdash/backend/internal/models"
)

func TestStateDistributionSortedWithoutFolding(t *testing.T) {
	facilities := []models.Facility{
		facility("A", "Tampa", "FL", models.HazardHigh, 80),
		facility("B", "Houston", "TX", models.HazardHigh, 80),
		facility("C", "Miami", "FL", models.HazardHigh, 80),
	}
	got := StateDistribution(facilities)
	want := []models.DistributionBucket{{Name: "Florida", Value: 2}, {Name: "Texas", Value: 1}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestStateDistributionFoldsLongTail(t *testing.T) {
	var facilities []models.Facility
	for i := 0; i < 30; i++ {
		facilities = append(facilities, facility("fl", "c", "FL", models.HazardHigh, 80))
	}
	facilities = append(facilities, facility("oh", "c", "OH", models.HazardLow, 80))
	facilities = append(facilities, facility("ny", "c", "NY", models.HazardLow, 80))
	got := StateDistribution(facilities)
	want := []models.DistributionBucket{{Name: "Florida", Value: 30}, {Name: OtherStatesBucket, Value: 2}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestStateDistributionUnknownCodePassesThrough(t *testing.T) {
	got := StateDistribution([]models.Facility{facility("x", "y", "PR", models.HazardLow, 80)})
	if len(got) != 1 || got[0].Name != "PR" {
		t.Fatalf("expected PR bucket, got %v", got)
	}
}

func TestHazardDistributionKeepsPreviousWhenEmpty(t *testing.T) {
	prev := DefaultHazardDistribution()
	got := HazardDistribution([]models.Facility{{Name: "x"}}, prev)
	if !reflect.DeepEqual(got, prev) {
		t.Fatalf("expected previous distribution, got %v", got)
	}
}

func TestHazardDistributionFixedOrder(t *testing.T) {
	got := HazardDistribution(sampleFacilities(), nil)
	want := []models.DistributionBucket{
		{Name: "Extreme", Value: 1},
		{Name: "Very High", Value: 1},
		{Name: "High", Value: 1},
		{Name: "Moderate", Value: 1},
		{Name: "Low", Value: 1},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestResourceDistributionSumsToTotal(t *testing.T) {
	for _, beds := range []int{0, 1, 3, 99, 100, 1000, 1234, 5861, 99999} {
		buckets := ResourceDistribution(beds)
		sum := buckets[0].Value + buckets[1].Value
		if math.Abs(float64(sum-beds)) > 1 {
			t.Fatalf("beds %d: buckets sum to %d", beds, sum)
		}
		if buckets[0].Name != BedsAvailableBucket || buckets[1].Name != BedsOccupiedBucket {
			t.Fatalf("unexpected bucket names %v", buckets)
		}
	}
}

func TestSummarizeFloors(t *testing.T) {
	facilities := []models.Facility{{Name: "x", State: "FL", BedCapacity: 50, EmergencyStaff: 10, HazardLevel: models.HazardHigh}}
	nationwide := Summarize(facilities, NationwideFloor)
	if nationwide.TotalBeds != 1000 {
		t.Fatalf("expected nationwide floor 1000, got %d", nationwide.TotalBeds)
	}
	filtered := Summarize(facilities, FilteredFloor)
	if filtered.TotalBeds != 100 {
		t.Fatalf("expected filtered floor 100, got %d", filtered.TotalBeds)
	}
	if nationwide.TotalStaff != 300 || filtered.TotalStaff != 300 {
		t.Fatalf("expected staff floor 300, got %d / %d", nationwide.TotalStaff, filtered.TotalStaff)
	}
	if nationwide.ResourceDistribution[0].Value != 740 || nationwide.ResourceDistribution[1].Value != 260 {
		t.Fatalf("unexpected resource split %v", nationwide.ResourceDistribution)
	}
}

func TestSummarizeAboveFloor(t *testing.T) {
	var facilities []models.Facility
	for i := 0; i < 10; i++ {
		facilities = append(facilities, models.Facility{Name: "x", State: "TX", BedCapacity: 200, EmergencyStaff: 40, HazardLevel: models.HazardHigh})
	}
	s := Summarize(facilities, NationwideFloor)
	if s.TotalBeds != 2000 || s.TotalStaff != 400 {
		t.Fatalf("unexpected totals beds=%d staff=%d", s.TotalBeds, s.TotalStaff)
	}
}

func TestProcessDataEmptyUsesDefaults(t *testing.T) {
	res := ProcessData(nil, nil)
	if res.Summary.TotalBeds != 5861 || res.Summary.TotalStaff != 1250 {
		t.Fatalf("unexpected defaults %+v", res.Summary)
	}
	if len(res.Summary.StateDistribution) == 0 {
		t.Fatalf("expected default state distribution")
	}
	if len(res.Facilities) != 0 {
		t.Fatalf("expected no facilities")
	}
}

func TestProcessDataOnlyUnlocatedRecordsUsesFloors(t *testing.T) {
	res := ProcessData([]models.PersonRecord{{City: "Tampa", State: "FL"}}, NewRandomSource(1))
	if res.Summary.TotalBeds != 1000 || res.Summary.TotalStaff != 300 {
		t.Fatalf("expected floors, got %+v", res.Summary)
	}
	if !reflect.DeepEqual(res.Summary.StateDistribution, DefaultStateDistribution()) {
		t.Fatalf("expected default state distribution, got %v", res.Summary.StateDistribution)
	}
}

func TestProcessDataEndToEnd(t *testing.T) {
	records := []models.PersonRecord{
		person("Tampa General", "Tampa", "FL", true),
		person("Tampa General", "Tampa", "FL", true),
		person("Memorial Hermann", "Houston", "TX", true),
		person("Ochsner", "New Orleans", "LA", false),
	}
	res := ProcessData(records, NewRandomSource(99))
	if len(res.Facilities) != 3 {
		t.Fatalf("expected 3 facilities, got %d", len(res.Facilities))
	}
	if res.Summary.TotalBeds < 1000 {
		t.Fatalf("nationwide floor violated: %d", res.Summary.TotalBeds)
	}
	total := 0
	for _, b := range res.Summary.StateDistribution {
		total += b.Value
	}
	if total != 3 {
		t.Fatalf("state distribution should cover 3 facilities, got %d", total)
	}
}
