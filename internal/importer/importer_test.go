package importer

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/prepdash/backend/internal/models"
)

const rosterCSV = "\ufeffEmpFirstName,EmpLastName,EmpLocationDesc,facility_city,facility_state,EmpDepartmentName,EmpPositionDesc,facility_zip,latitude,longitude,PositionCategory,EmpEmail\n" +
	"Ana,Lopez,Tampa General,Tampa,fl,ER,Nurse,33612,28.0587,-82.4139,Medical,ana@example.com\n" +
	"Bo,Chen,Tampa General,Tampa,FL,Facilities,Engineer,33612,,,Non-Medical,bo@example.com\n" +
	",,,,,,,,,,,\n" +
	"Cy,Ray,Mass General,Boston,MA,ICU,Physician,2114-1234,,,Medical,cy@example.com\n"

func TestParsePersonsCSV(t *testing.T) {
	persons, errs := ParsePersonsCSV(strings.NewReader(rosterCSV))
	if len(errs) > 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}
	if len(persons) != 3 {
		t.Fatalf("expected 3 persons, got %d", len(persons))
	}
	first := persons[0]
	if first.Location != "Tampa General" || first.State != "FL" || !first.Medical() {
		t.Fatalf("unexpected first person %+v", first)
	}
	if !first.Latitude.Valid || first.Latitude.Value != 28.0587 {
		t.Fatalf("expected latitude 28.0587, got %+v", first.Latitude)
	}
	if persons[1].Latitude.Valid {
		t.Fatalf("blank latitude should be absent")
	}
	if persons[2].ZipCode != "02114" {
		t.Fatalf("expected zip 02114, got %q", persons[2].ZipCode)
	}
}

func TestParsePersonsCSVSnakeCaseHeaders(t *testing.T) {
	content := "first_name,location,city,state,zip_code,is_medical\nDee,Grady,Atlanta,GA,30303,Medical\n"
	persons, errs := ParsePersonsCSV(strings.NewReader(content))
	if len(errs) > 0 || len(persons) != 1 {
		t.Fatalf("expected 1 person and no errors, got %d / %v", len(persons), errs)
	}
	if persons[0].City != "Atlanta" || persons[0].ZipCode != "30303" {
		t.Fatalf("unexpected person %+v", persons[0])
	}
}

func TestParsePersonsCSVRequiresLocation(t *testing.T) {
	_, errs := ParsePersonsCSV(strings.NewReader("first_name,city\nA,B\n"))
	if len(errs) != 1 {
		t.Fatalf("expected a missing column error, got %v", errs)
	}
}

type fakeSink struct {
	persons  []models.PersonRecord
	statuses []string
	summary  []byte
	fail     error
	replaced int
}

func (f *fakeSink) ReplacePersons(ctx context.Context, persons []models.PersonRecord) (int64, error) {
	if f.fail != nil {
		return 0, f.fail
	}
	f.replaced++
	f.persons = persons
	return int64(len(persons)), nil
}

func (f *fakeSink) InsertPersons(ctx context.Context, persons []models.PersonRecord) (int64, error) {
	if f.fail != nil {
		return 0, f.fail
	}
	f.persons = append(f.persons, persons...)
	return int64(len(persons)), nil
}

func (f *fakeSink) CreateRun(ctx context.Context, status string) (int64, error) {
	f.statuses = append(f.statuses, status)
	return 7, nil
}

func (f *fakeSink) FinishRun(ctx context.Context, runID int64, status string, summary []byte) error {
	f.statuses = append(f.statuses, status)
	f.summary = summary
	return nil
}

type countingGeocoder struct {
	calls int
}

func (g *countingGeocoder) Geocode(ctx context.Context, query string) (float64, float64, string, float64, error) {
	g.calls++
	return 1.5, -2.5, query, 1, nil
}

func TestImporterReplacesAndGeocodes(t *testing.T) {
	sink := &fakeSink{}
	geo := &countingGeocoder{}
	im := &Importer{Sink: sink, Geocoder: geo, Country: "USA", Logger: zerolog.Nop()}

	summary, err := im.Import(context.Background(), strings.NewReader(rosterCSV), Options{Geocode: true})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if summary.Parsed != 3 || summary.Inserted != 3 || summary.Medical != 2 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	// Tampa row 2 and the Boston row lack coordinates and sit at different facilities.
	if summary.Geocoded != 2 || geo.calls != 2 {
		t.Fatalf("expected 2 geocoded rows over 2 calls, got %d / %d", summary.Geocoded, geo.calls)
	}
	if sink.persons[0].Latitude.Value != 28.0587 {
		t.Fatalf("existing coordinates must be kept without force")
	}
	if len(sink.statuses) != 2 || sink.statuses[0] != RunRunning || sink.statuses[1] != RunSuccess {
		t.Fatalf("unexpected run statuses %v", sink.statuses)
	}
	var recorded Summary
	if err := json.Unmarshal(sink.summary, &recorded); err != nil || recorded.Inserted != 3 {
		t.Fatalf("unexpected recorded summary %s (%v)", sink.summary, err)
	}
}

func TestImporterAppendKeepsExistingRows(t *testing.T) {
	existing := models.PersonRecord{FirstName: "Ada", Location: "Ochsner", City: "New Orleans", State: "LA"}
	sink := &fakeSink{persons: []models.PersonRecord{existing}}
	im := &Importer{Sink: sink, Logger: zerolog.Nop()}

	summary, err := im.Import(context.Background(), strings.NewReader(rosterCSV), Options{Append: true})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if summary.Inserted != 3 {
		t.Fatalf("expected 3 inserted, got %+v", summary)
	}
	if sink.replaced != 0 {
		t.Fatalf("append must not replace the directory")
	}
	if len(sink.persons) != 4 || sink.persons[0].FirstName != "Ada" {
		t.Fatalf("expected existing row plus 3 new ones, got %d", len(sink.persons))
	}
}

func TestImporterRejectsInvalidCSV(t *testing.T) {
	sink := &fakeSink{}
	im := &Importer{Sink: sink, Logger: zerolog.Nop()}
	_, err := im.Import(context.Background(), strings.NewReader("first_name\nA\n"), Options{})
	if !errors.Is(err, ErrInvalidCSV) {
		t.Fatalf("expected ErrInvalidCSV, got %v", err)
	}
	if sink.persons != nil {
		t.Fatalf("directory must not be touched on parse errors")
	}
	if sink.statuses[len(sink.statuses)-1] != RunFailed {
		t.Fatalf("expected failed run, got %v", sink.statuses)
	}
}

func TestImporterPropagatesStoreErrors(t *testing.T) {
	sink := &fakeSink{fail: errors.New("copy failed")}
	im := &Importer{Sink: sink, Logger: zerolog.Nop()}
	if _, err := im.Import(context.Background(), strings.NewReader(rosterCSV), Options{}); err == nil {
		t.Fatalf("expected store error")
	}
	if sink.statuses[len(sink.statuses)-1] != RunFailed {
		t.Fatalf("expected failed run, got %v", sink.statuses)
	}
}
