package db

import (
	"context"
	_ "embed"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/prepdash/backend/internal/models"
)

//go:embed schema.sql
var schema string

const personColumns = `id, first_name, last_name, location, city, state, department, position, zip_code, latitude, longitude, is_medical, email`

type Store struct {
	Pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Store{Pool: pool}, nil
}

func (s *Store) Close() {
	s.Pool.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.Pool.Ping(ctx)
}

// Migrate applies the embedded schema. It is safe to run repeatedly.
func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.Pool.Exec(ctx, schema)
	return err
}

func (s *Store) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// InsertPersons appends persons to the directory.
func (s *Store) InsertPersons(ctx context.Context, persons []models.PersonRecord) (int64, error) {
	var copied int64
	err := s.WithTx(ctx, func(tx pgx.Tx) error {
		n, err := copyPersons(ctx, tx, persons)
		copied = n
		return err
	})
	return copied, err
}

// ReplacePersons swaps the whole directory for persons in one transaction.
func (s *Store) ReplacePersons(ctx context.Context, persons []models.PersonRecord) (int64, error) {
	var copied int64
	err := s.WithTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `TRUNCATE persons RESTART IDENTITY`); err != nil {
			return err
		}
		n, err := copyPersons(ctx, tx, persons)
		copied = n
		return err
	})
	return copied, err
}

func copyPersons(ctx context.Context, tx pgx.Tx, persons []models.PersonRecord) (int64, error) {
	rows := make([][]any, 0, len(persons))
	for _, p := range persons {
		rows = append(rows, []any{
			p.FirstName, p.LastName, p.Location, p.City, p.State, p.Department, p.Position,
			p.ZipCode, p.Latitude.String(), p.Longitude.String(), p.IsMedical, p.Email,
		})
	}
	return tx.CopyFrom(ctx, pgx.Identifier{"persons"},
		[]string{"first_name", "last_name", "location", "city", "state", "department", "position", "zip_code", "latitude", "longitude", "is_medical", "email"},
		pgx.CopyFromRows(rows))
}

func (s *Store) CountPersons(ctx context.Context) (int64, error) {
	var n int64
	err := s.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM persons`).Scan(&n)
	return n, err
}

// ListPersons returns every person, or only those in states when given,
// in insertion order.
func (s *Store) ListPersons(ctx context.Context, states []string) ([]models.PersonRecord, error) {
	if len(states) == 0 {
		return s.queryPersons(ctx, `SELECT `+personColumns+` FROM persons ORDER BY id`)
	}
	return s.queryPersons(ctx, `SELECT `+personColumns+` FROM persons WHERE state = ANY($1) ORDER BY id`, states)
}

func (s *Store) ListPersonsByZip(ctx context.Context, zip string) ([]models.PersonRecord, error) {
	return s.queryPersons(ctx, `SELECT `+personColumns+` FROM persons WHERE zip_code = $1 ORDER BY id`, zip)
}

func (s *Store) ListMedicalOutsideZip(ctx context.Context, zip string) ([]models.PersonRecord, error) {
	return s.queryPersons(ctx, `SELECT `+personColumns+` FROM persons WHERE zip_code <> $1 AND is_medical = $2 ORDER BY id`, zip, models.MedicalCategory)
}

func (s *Store) queryPersons(ctx context.Context, query string, args ...any) ([]models.PersonRecord, error) {
	rows, err := s.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.PersonRecord{}
	for rows.Next() {
		var (
			p        models.PersonRecord
			lat, lon string
		)
		if err := rows.Scan(&p.ID, &p.FirstName, &p.LastName, &p.Location, &p.City, &p.State, &p.Department,
			&p.Position, &p.ZipCode, &lat, &lon, &p.IsMedical, &p.Email); err != nil {
			return nil, err
		}
		p.Latitude = models.ParseCoordinate(lat)
		p.Longitude = models.ParseCoordinate(lon)
		out = append(out, p)
	}
	return out, rows.Err()
}

type ImportRun struct {
	ID         int64           `json:"id"`
	Status     string          `json:"status"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt *time.Time      `json:"finished_at,omitempty"`
	Summary    json.RawMessage `json:"summary,omitempty" swaggertype:"object"`
}

func (s *Store) CreateRun(ctx context.Context, status string) (int64, error) {
	var id int64
	err := s.Pool.QueryRow(ctx, `INSERT INTO import_runs (status, started_at) VALUES ($1, NOW()) RETURNING id`, status).Scan(&id)
	return id, err
}

func (s *Store) FinishRun(ctx context.Context, runID int64, status string, summary []byte) error {
	_, err := s.Pool.Exec(ctx, `UPDATE import_runs SET status = $1, summary = $2, finished_at = NOW() WHERE id = $3`, status, summary, runID)
	return err
}

func (s *Store) GetLatestRun(ctx context.Context) (ImportRun, error) {
	var (
		run     ImportRun
		summary []byte
	)
	err := s.Pool.QueryRow(ctx, `SELECT id, status, started_at, finished_at, summary FROM import_runs ORDER BY started_at DESC, id DESC LIMIT 1`).
		Scan(&run.ID, &run.Status, &run.StartedAt, &run.FinishedAt, &summary)
	run.Summary = summary
	return run, err
}
