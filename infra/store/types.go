package store

import (
	"time"

	"github.com/kilianp07/bessopt/core/model"
)

// StoredRun represents a run summary that is persisted to the SQLite database.
type StoredRun struct {
	RunID        string `gorm:"primaryKey"`
	SolvedAt     time.Time
	ElapsedNS    int64
	Steps        int
	PeakKW       float64
	EnergyCost   float64
	DemandCharge float64
	TotalCost    float64
}

// StoredPoint represents one schedule step of a persisted run.
type StoredPoint struct {
	ID          uint   `gorm:"primaryKey;autoIncrement"`
	RunID       string `gorm:"index"`
	Step        int
	ChargeKW    float64
	DischargeKW float64
	SocKWh      float64
	NetGridKW   float64
	EnergyCost  float64
}

func newStoredRun(s *model.Schedule) StoredRun {
	return StoredRun{
		RunID:        s.RunID,
		SolvedAt:     s.SolvedAt,
		ElapsedNS:    int64(s.Elapsed),
		Steps:        s.Steps(),
		PeakKW:       s.PeakKW,
		EnergyCost:   s.EnergyCost,
		DemandCharge: s.DemandCharge,
		TotalCost:    s.TotalCost,
	}
}

func newStoredPoints(s *model.Schedule) []StoredPoint {
	points := make([]StoredPoint, len(s.Points))
	for i, p := range s.Points {
		points[i] = StoredPoint{
			RunID:       s.RunID,
			Step:        p.Step,
			ChargeKW:    p.ChargeKW,
			DischargeKW: p.DischargeKW,
			SocKWh:      p.SocKWh,
			NetGridKW:   p.NetGridKW,
			EnergyCost:  p.EnergyCost,
		}
	}
	return points
}

func (r StoredRun) schedule(points []StoredPoint) *model.Schedule {
	s := &model.Schedule{
		RunID:        r.RunID,
		SolvedAt:     r.SolvedAt,
		Elapsed:      time.Duration(r.ElapsedNS),
		PeakKW:       r.PeakKW,
		EnergyCost:   r.EnergyCost,
		DemandCharge: r.DemandCharge,
		TotalCost:    r.TotalCost,
		Points:       make([]model.SchedulePoint, len(points)),
	}
	for i, p := range points {
		s.Points[i] = model.SchedulePoint{
			Step:        p.Step,
			ChargeKW:    p.ChargeKW,
			DischargeKW: p.DischargeKW,
			SocKWh:      p.SocKWh,
			NetGridKW:   p.NetGridKW,
			EnergyCost:  p.EnergyCost,
		}
	}
	return s
}
