package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/prepdash/backend/internal/models"
)

// ParsePersonsCSV reads the staff roster export. Headers are matched case
// insensitively and both the HR export names (EmpFirstName, facility_city,
// PositionCategory...) and the snake_case API names are accepted. Rows
// that fail to parse are reported and skipped.
func ParsePersonsCSV(r io.Reader) ([]models.PersonRecord, []string) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	headers, err := reader.Read()
	if err != nil {
		return nil, []string{"failed to read header"}
	}
	index := headerIndex(headers)
	if _, ok := lookupAny(index, "emplocationdesc", "location"); !ok {
		return nil, []string{"missing location column (EmpLocationDesc)"}
	}

	var errs []string
	out := []models.PersonRecord{}
	line := 1
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			errs = append(errs, fmt.Sprintf("line %d: %v", line, err))
			continue
		}
		if blank(rec) {
			continue
		}

		p := models.PersonRecord{
			FirstName:  getFieldAny(rec, index, "EmpFirstName", "first_name"),
			LastName:   getFieldAny(rec, index, "EmpLastName", "last_name"),
			Location:   getFieldAny(rec, index, "EmpLocationDesc", "location"),
			City:       getFieldAny(rec, index, "facility_city", "city"),
			State:      strings.ToUpper(getFieldAny(rec, index, "facility_state", "state")),
			Department: getFieldAny(rec, index, "EmpDepartmentName", "department"),
			Position:   getFieldAny(rec, index, "EmpPositionDesc", "position"),
			ZipCode:    normalizeZip(getFieldAny(rec, index, "facility_zip", "zip_code", "zip")),
			Latitude:   models.ParseCoordinate(getFieldAny(rec, index, "latitude", "lat")),
			Longitude:  models.ParseCoordinate(getFieldAny(rec, index, "longitude", "lon", "lng")),
			IsMedical:  getFieldAny(rec, index, "PositionCategory", "is_medical"),
			Email:      getFieldAny(rec, index, "EmpEmail", "email"),
		}
		out = append(out, p)
	}
	return out, errs
}

// normalizeZip restores leading zeros lost by spreadsheet round trips and
// drops the +4 extension.
func normalizeZip(v string) string {
	v = strings.TrimSpace(v)
	if i := strings.IndexByte(v, '-'); i >= 0 {
		v = v[:i]
	}
	if v != "" && len(v) < 5 && isDigits(v) {
		v = strings.Repeat("0", 5-len(v)) + v
	}
	return v
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func blank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func headerIndex(headers []string) map[string]int {
	idx := map[string]int{}
	for i, h := range headers {
		idx[normalizeHeader(h)] = i
	}
	return idx
}

func lookupAny(idx map[string]int, names ...string) (int, bool) {
	for _, name := range names {
		if pos, ok := idx[normalizeHeader(name)]; ok {
			return pos, true
		}
	}
	return 0, false
}

func getField(rec []string, idx map[string]int, name string) string {
	pos, ok := idx[name]
	if !ok || pos >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[pos])
}

func getFieldAny(rec []string, idx map[string]int, names ...string) string {
	for _, name := range names {
		if v := getField(rec, idx, normalizeHeader(name)); v != "" {
			return v
		}
	}
	return ""
}

func normalizeHeader(h string) string {
	h = strings.ReplaceAll(h, "\ufeff", "")
	return strings.ToLower(strings.TrimSpace(h))
}
