package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/kilianp07/bessopt/core/model"
)

// WriteJSON writes the schedule to w in JSON format.
func WriteJSON(w io.Writer, s *model.Schedule) error {
	if s == nil {
		return fmt.Errorf("nil schedule")
	}
	enc := json.NewEncoder(w)
	return enc.Encode(s)
}

// WriteCSV writes the schedule points to w in CSV format.
func WriteCSV(w io.Writer, s *model.Schedule) error {
	if s == nil {
		return fmt.Errorf("nil schedule")
	}
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"step", "charge_kw", "discharge_kw", "soc_kwh", "net_grid_kw", "energy_cost"}); err != nil {
		return err
	}
	for _, p := range s.Points {
		rec := []string{
			strconv.Itoa(p.Step),
			strconv.FormatFloat(p.ChargeKW, 'f', -1, 64),
			strconv.FormatFloat(p.DischargeKW, 'f', -1, 64),
			strconv.FormatFloat(p.SocKWh, 'f', -1, 64),
			strconv.FormatFloat(p.NetGridKW, 'f', -1, 64),
			strconv.FormatFloat(p.EnergyCost, 'f', -1, 64),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
