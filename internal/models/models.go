package models

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

type HazardLevel string

const (
	HazardExtreme  HazardLevel = "Extreme"
	HazardVeryHigh HazardLevel = "Very High"
	HazardHigh     HazardLevel = "High"
	HazardModerate HazardLevel = "Moderate"
	HazardLow      HazardLevel = "Low"
)

// HazardLevels is the fixed display order, most severe first.
var HazardLevels = []HazardLevel{HazardExtreme, HazardVeryHigh, HazardHigh, HazardModerate, HazardLow}

const MedicalCategory = "Medical"

// Coordinate accepts a JSON string or number. Empty or unparsable values
// decode as absent.
type Coordinate struct {
	Value float64
	Valid bool
}

func NewCoordinate(v float64) Coordinate {
	return Coordinate{Value: v, Valid: true}
}

func ParseCoordinate(s string) Coordinate {
	s = strings.TrimSpace(s)
	if s == "" {
		return Coordinate{}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Coordinate{}
	}
	return NewCoordinate(f)
}

func (c Coordinate) MarshalJSON() ([]byte, error) {
	if !c.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(strconv.FormatFloat(c.Value, 'f', -1, 64))
}

func (c *Coordinate) UnmarshalJSON(b []byte) error {
	*c = Coordinate{}
	if len(b) == 0 || string(b) == "null" {
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*c = ParseCoordinate(s)
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return nil
	}
	*c = NewCoordinate(f)
	return nil
}

// String renders the coordinate for storage; absent values become "".
func (c Coordinate) String() string {
	if !c.Valid {
		return ""
	}
	return strconv.FormatFloat(c.Value, 'f', -1, 64)
}

type PersonRecord struct {
	ID         int64      `json:"id,omitempty"`
	FirstName  string     `json:"first_name"`
	LastName   string     `json:"last_name"`
	Location   string     `json:"location"`
	City       string     `json:"city"`
	State      string     `json:"state"`
	Department string     `json:"department"`
	Position   string     `json:"position"`
	ZipCode    string     `json:"zip_code"`
	Latitude   Coordinate `json:"latitude"`
	Longitude  Coordinate `json:"longitude"`
	IsMedical  string     `json:"is_medical"`
	Email      string     `json:"email"`
}

func (p PersonRecord) Medical() bool {
	return p.IsMedical == MedicalCategory
}

type Facility struct {
	Name           string         `json:"name"`
	State          string         `json:"state"`
	City           string         `json:"city"`
	ZipCode        string         `json:"zip_code"`
	Latitude       Coordinate     `json:"latitude"`
	Longitude      Coordinate     `json:"longitude"`
	Staff          []PersonRecord `json:"staff,omitempty"`
	HazardLevel    HazardLevel    `json:"hazardLevel"`
	ReadinessScore int            `json:"readinessScore"`
	BedCapacity    int            `json:"bedCapacity"`
	EmergencyStaff int            `json:"emergencyStaff"`
	TotalStaff     int            `json:"totalStaff"`
}

// Key is the canonical composite identity used for deduplication.
func (f Facility) Key() string {
	return f.Name + "-" + f.State + "-" + f.City
}

type DistributionBucket struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

type Summary struct {
	TotalBeds            int                  `json:"totalBeds"`
	TotalStaff           int                  `json:"totalStaff"`
	StateDistribution    []DistributionBucket `json:"stateDistribution"`
	HazardDistribution   []DistributionBucket `json:"hazardDistribution"`
	ResourceDistribution []DistributionBucket `json:"resourceDistribution"`
}

type DataResponse struct {
	Local  []PersonRecord `json:"local"`
	Nearby []PersonRecord `json:"nearby"`
}

// All returns local followed by nearby, the order the dashboard processes them in.
func (d DataResponse) All() []PersonRecord {
	out := make([]PersonRecord, 0, len(d.Local)+len(d.Nearby))
	out = append(out, d.Local...)
	return append(out, d.Nearby...)
}

// Snapshot is the last-known-good payload kept for offline use.
type Snapshot struct {
	Local     []PersonRecord `json:"local"`
	Nearby    []PersonRecord `json:"nearby"`
	Timestamp time.Time      `json:"timestamp"`
}

type LayoutItem struct {
	I string `json:"i"`
	X int    `json:"x"`
	Y int    `json:"y"`
	W int    `json:"w"`
	H int    `json:"h"`
}

// Layouts maps a breakpoint name to its widget grid.
type Layouts map[string][]LayoutItem

type EmailRequest struct {
	Subject   string `json:"subject" validate:"required"`
	Message   string `json:"message" validate:"required"`
	Recipient string `json:"recipient" validate:"required,email"`
}
