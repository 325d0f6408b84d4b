// Package store persists solved schedules to the local file system (sqlite)
// so past runs can be listed and replayed.
package store

import (
	"errors"
	"fmt"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/kilianp07/bessopt/core/model"
)

// ErrNotFound is returned when no run exists for the requested identifier.
var ErrNotFound = errors.New("run not found")

// Store keeps the run history in a SQLite database.
type Store struct {
	db *gorm.DB
}

func New(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// Migrate the schema
	err = db.AutoMigrate(&StoredRun{}, &StoredPoint{})
	if err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	return &Store{
		db: db,
	}, nil
}

// SaveRun persists the schedule summary and its points in one transaction.
func (s *Store) SaveRun(sched *model.Schedule) error {
	if sched == nil {
		return fmt.Errorf("nil schedule")
	}
	if sched.RunID == "" {
		return fmt.Errorf("schedule has no run id")
	}
	run := newStoredRun(sched)
	points := newStoredPoints(sched)
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&run).Error; err != nil {
			return err
		}
		if len(points) == 0 {
			return nil
		}
		return tx.Create(&points).Error
	})
}

// ListRuns returns up to limit run summaries, newest first.
func (s *Store) ListRuns(limit int) ([]StoredRun, error) {
	var runs []StoredRun
	query := s.db.Order("solved_at desc")
	if limit > 0 {
		query = query.Limit(limit)
	}
	result := query.Find(&runs)
	if result.Error != nil {
		return nil, result.Error
	}
	return runs, nil
}

// GetRun reassembles the full schedule for the given run identifier.
func (s *Store) GetRun(runID string) (*model.Schedule, error) {
	var run StoredRun
	if err := s.db.First(&run, "run_id = ?", runID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, runID)
		}
		return nil, err
	}
	var points []StoredPoint
	if err := s.db.Where("run_id = ?", runID).Order("step asc").Find(&points).Error; err != nil {
		return nil, err
	}
	return run.schedule(points), nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	db, err := s.db.DB()
	if err != nil {
		return err
	}
	return db.Close()
}
