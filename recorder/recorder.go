package recorder

import (
	"context"
	"database/sql"
	"embed"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"github.com/sheikhrachel/go-gol3d/utils"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Run describes one simulation run
type Run struct {
	ID           string
	StartedAt    time.Time
	FinishedAt   time.Time
	Width        int
	Height       int
	Depth        int
	RuleSet      string
	Neighborhood string
	SeedPolicy   string
	Seed         uint64
	Generations  int
}

// Generation is the per-tick summary stored for a run
type Generation struct {
	Generation  int
	Alive       int
	Fingerprint string
	Regenerated bool
}

// Recorder persists runs and generation summaries to SQLite
type Recorder struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and applies migrations.
// Use ":memory:" for a throwaway database.
func Open(path string) (*Recorder, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrapf(err, "[Open] failed to open database: %+v", path)
	}
	// A single connection keeps ":memory:" databases from splitting per connection
	db.SetMaxOpenConns(1)

	if _, err = db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "[Open] failed to enable foreign keys")
	}

	r := &Recorder{db: db}
	if err = r.migrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	return r, nil
}

func (r *Recorder) migrateUp() error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return errors.Wrap(err, "[migrateUp] failed to load embedded migrations")
	}
	driver, err := migratesqlite.WithInstance(r.db, &migratesqlite.Config{})
	if err != nil {
		return errors.Wrap(err, "[migrateUp] failed to create sqlite driver")
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return errors.Wrap(err, "[migrateUp] failed to create migrate instance")
	}
	m.Log = migrateLogger{}

	// m is not closed, closing it would close the shared database handle
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return errors.Wrap(err, "[migrateUp] migration up failed")
	}
	return nil
}

// migrateLogger implements migrate.Logger on top of utils.Logf
type migrateLogger struct{}

func (migrateLogger) Printf(format string, v ...interface{}) {
	utils.Logf("[migrate] "+format, v...)
}

func (migrateLogger) Verbose() bool { return false }

// Close closes the database
func (r *Recorder) Close() error {
	return r.db.Close()
}

// StartRun stores a new run and returns it with a fresh ID
func (r *Recorder) StartRun(ctx context.Context, run Run) (Run, error) {
	run.ID = uuid.New().String()
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, width, height, depth, rule_set, neighborhood, seed_policy, seed)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.StartedAt.UnixNano(), run.Width, run.Height, run.Depth,
		run.RuleSet, run.Neighborhood, run.SeedPolicy, int64(run.Seed),
	)
	if err != nil {
		return run, errors.Wrap(err, "[StartRun] failed to insert run")
	}
	return run, nil
}

// RecordGeneration stores one generation summary for a run
func (r *Recorder) RecordGeneration(ctx context.Context, runID string, g Generation) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO generations (run_id, generation, alive, fingerprint, regenerated) VALUES (?, ?, ?, ?, ?)`,
		runID, g.Generation, g.Alive, g.Fingerprint, g.Regenerated,
	)
	if err != nil {
		return errors.Wrapf(err, "[RecordGeneration] run %s generation %d", runID, g.Generation)
	}
	return nil
}

// FinishRun stamps the end time and generation count of a run
func (r *Recorder) FinishRun(ctx context.Context, runID string, generations int) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, generations = ? WHERE id = ?`,
		time.Now().UnixNano(), generations, runID,
	)
	if err != nil {
		return errors.Wrapf(err, "[FinishRun] run %s", runID)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.Errorf("[FinishRun] unknown run %s", runID)
	}
	return nil
}

// Runs lists all runs, newest first
func (r *Recorder) Runs(ctx context.Context) ([]Run, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, started_at, finished_at, width, height, depth, rule_set, neighborhood, seed_policy, seed, generations
		 FROM runs ORDER BY started_at DESC`)
	if err != nil {
		return nil, errors.Wrap(err, "[Runs] query failed")
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run      Run
			started  int64
			finished sql.NullInt64
			seed     int64
		)
		if err := rows.Scan(&run.ID, &started, &finished, &run.Width, &run.Height, &run.Depth,
			&run.RuleSet, &run.Neighborhood, &run.SeedPolicy, &seed, &run.Generations); err != nil {
			return nil, errors.Wrap(err, "[Runs] scan failed")
		}
		run.StartedAt = time.Unix(0, started)
		if finished.Valid {
			run.FinishedAt = time.Unix(0, finished.Int64)
		}
		run.Seed = uint64(seed)
		runs = append(runs, run)
	}
	return runs, errors.Wrap(rows.Err(), "[Runs] iteration failed")
}

// Generations returns the stored summaries of a run in generation order
func (r *Recorder) Generations(ctx context.Context, runID string) ([]Generation, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT generation, alive, fingerprint, regenerated FROM generations WHERE run_id = ? ORDER BY generation`,
		runID)
	if err != nil {
		return nil, errors.Wrapf(err, "[Generations] run %s", runID)
	}
	defer rows.Close()

	var out []Generation
	for rows.Next() {
		var g Generation
		if err := rows.Scan(&g.Generation, &g.Alive, &g.Fingerprint, &g.Regenerated); err != nil {
			return nil, errors.Wrap(err, "[Generations] scan failed")
		}
		out = append(out, g)
	}
	return out, errors.Wrap(rows.Err(), "[Generations] iteration failed")
}
