package recording

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"
	"sync"

	"github.com/fatih/structs"
	"github.com/miretskiy/mm1ksim/simulator"
	"github.com/rs/xid"
	"github.com/sirupsen/logrus"
	"github.com/tebeka/atexit"

	// Need to use SQLite connections.
	_ "github.com/mattn/go-sqlite3"
)

// RunRow is one simulated run
type RunRow struct {
	RunID         string
	ArrivalRate   float64
	ServiceRate   float64
	Capacity      int
	StartTime     float64
	FinishTime    float64
	Seed          int64
	DrainPolicy   string
	MeanCount     float64
	MeanSojourn   float64
	LossRate      float64
	Elements      int
	Served        int
	Rejected      int
	Drained       int
	TheoryCount   float64
	TheorySojourn float64
	TheoryLoss    float64
	Events        int
}

// ElementRow is one terminal element of a run
type ElementRow struct {
	RunID       string
	Seq         int
	EnqueueTime float64
	SojournTime float64
	State       string
}

// EventRow is one processed event of a traced run
type EventRow struct {
	RunID    string
	Step     int
	Time     float64
	Kind     string
	Element  int
	Busy     bool
	Waiting  int
	Recorded int
}

const (
	runsTable     = "runs"
	elementsTable = "elements"
	eventsTable   = "events"
)

type table struct {
	sample  any
	entries []any
}

// SQLiteRecorder buffers runs, elements and traced events and writes them to a
// SQLite database in batches. Buffered rows are also flushed at process exit.
type SQLiteRecorder struct {
	*sql.DB

	dbName     string
	tables     map[string]*table
	order      []string
	batchSize  int
	entryCount int
	mu         sync.Mutex
}

// NewSQLiteRecorder creates <path>.sqlite3 with the runs, elements and events
// tables. An empty path picks a unique name. The file must not exist yet.
func NewSQLiteRecorder(path string) (*SQLiteRecorder, error) {
	if path == "" {
		path = "mm1k_recording_" + xid.New().String()
	}

	filename := path + ".sqlite3"
	if _, err := os.Stat(filename); err == nil {
		return nil, fmt.Errorf("file %s already exists", filename)
	}

	db, err := sql.Open("sqlite3", filename)
	if err != nil {
		return nil, err
	}

	r := &SQLiteRecorder{
		DB:        db,
		dbName:    filename,
		tables:    make(map[string]*table),
		batchSize: 100000,
	}

	for _, t := range []struct {
		name   string
		sample any
	}{
		{runsTable, RunRow{}},
		{elementsTable, ElementRow{}},
		{eventsTable, EventRow{}},
	} {
		if err := r.createTable(t.name, t.sample); err != nil {
			db.Close()
			return nil, err
		}
	}

	logrus.WithField("file", filename).Info("database created for recording")

	atexit.Register(func() {
		if err := r.Flush(); err != nil {
			logrus.WithError(err).Error("flush at exit failed")
		}
	})

	return r, nil
}

// Name returns the database file name
func (r *SQLiteRecorder) Name() string {
	return r.dbName
}

// NewRunID returns a fresh, globally unique run identifier
func NewRunID() string {
	return xid.New().String()
}

// Write records result under a new run ID
func (r *SQLiteRecorder) Write(result simulator.RunResult) error {
	return r.RecordRun(NewRunID(), result)
}

// RecordRun buffers one run row
func (r *SQLiteRecorder) RecordRun(runID string, result simulator.RunResult) error {
	return r.insert(runsTable, RunRow{
		RunID:         runID,
		ArrivalRate:   result.Config.ArrivalRate,
		ServiceRate:   result.Config.ServiceRate,
		Capacity:      result.Config.Capacity,
		StartTime:     result.Config.StartTime,
		FinishTime:    result.Config.FinishTime,
		Seed:          result.Seed,
		DrainPolicy:   result.Config.DrainPolicy.String(),
		MeanCount:     result.Empirical.MeanCount,
		MeanSojourn:   result.Empirical.MeanSojourn,
		LossRate:      result.Empirical.LossRate,
		Elements:      result.Empirical.Elements,
		Served:        result.Empirical.Served,
		Rejected:      result.Empirical.Rejected,
		Drained:       result.Empirical.Drained,
		TheoryCount:   result.Theory.MeanCount,
		TheorySojourn: result.Theory.MeanSojourn,
		TheoryLoss:    result.Theory.LossProbability,
		Events:        result.Events,
	})
}

// RecordElements buffers the terminal elements of a run
func (r *SQLiteRecorder) RecordElements(runID string, records []simulator.ElementRecord) error {
	for _, e := range records {
		err := r.insert(elementsTable, ElementRow{
			RunID:       runID,
			Seq:         e.Seq,
			EnqueueTime: e.EnqueueTime,
			SojournTime: e.SojournTime,
			State:       e.State.String(),
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// ListTables returns the table names in creation order
func (r *SQLiteRecorder) ListTables() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Flush writes all buffered rows in one transaction
func (r *SQLiteRecorder) Flush() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.flushLocked()
}

// Close flushes and closes the database
func (r *SQLiteRecorder) Close() error {
	if err := r.Flush(); err != nil {
		return err
	}
	return r.DB.Close()
}

func (r *SQLiteRecorder) createTable(name string, sample any) error {
	columns := structs.Names(sample)
	createTableSQL := `CREATE TABLE ` + name +
		` (` + "\n\t" + strings.Join(columns, ", \n\t") + "\n" + `);`
	if _, err := r.Exec(createTableSQL); err != nil {
		return fmt.Errorf("create table %s: %w", name, err)
	}

	r.tables[name] = &table{sample: sample}
	r.order = append(r.order, name)
	return nil
}

func (r *SQLiteRecorder) insert(name string, entry any) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, exists := r.tables[name]
	if !exists {
		return fmt.Errorf("table %s does not exist", name)
	}
	t.entries = append(t.entries, entry)

	r.entryCount++
	if r.entryCount >= r.batchSize {
		return r.flushLocked()
	}
	return nil
}

// flushLocked writes every buffered entry in one transaction. Buffers are
// cleared only once the commit succeeds, so a failed flush can be retried.
func (r *SQLiteRecorder) flushLocked() error {
	if r.entryCount == 0 {
		return nil
	}

	tx, err := r.Begin()
	if err != nil {
		return err
	}
	if err := r.writeBuffered(tx); err != nil {
		return errors.Join(err, tx.Rollback())
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	for _, t := range r.tables {
		t.entries = nil
	}
	r.entryCount = 0
	return nil
}

func (r *SQLiteRecorder) writeBuffered(tx *sql.Tx) error {
	for _, name := range r.order {
		t := r.tables[name]
		if len(t.entries) == 0 {
			continue
		}

		stmt, err := tx.Prepare(insertStatement(name, t.sample))
		if err != nil {
			return err
		}
		for _, entry := range t.entries {
			if _, err := stmt.Exec(fieldValues(entry)...); err != nil {
				stmt.Close()
				return fmt.Errorf("insert into %s: %w", name, err)
			}
		}
		stmt.Close()
	}
	return nil
}

func insertStatement(name string, sample any) string {
	n := structs.Names(sample)
	for i := range n {
		n[i] = "?"
	}
	return "INSERT INTO " + name + " VALUES (" + strings.Join(n, ", ") + ")"
}

func fieldValues(entry any) []any {
	v := reflect.ValueOf(entry)
	values := make([]any, 0, v.NumField())
	for i := 0; i < v.NumField(); i++ {
		values = append(values, v.Field(i).Interface())
	}
	return values
}
