// Package timeseries loads demand and price series from CSV files.
package timeseries

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/kilianp07/bessopt/core/model"
)

// Load reads the horizon series from the CSV file at path. Columns are
// located by header name so extra columns, such as timestamps, are ignored.
func Load(path, demandColumn, priceColumn string) (model.Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return model.Series{}, fmt.Errorf("open series: %w", err)
	}
	defer f.Close()
	return Read(f, demandColumn, priceColumn)
}

// Read parses CSV data from r using the named demand and price columns.
func Read(r io.Reader, demandColumn, priceColumn string) (model.Series, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return model.Series{}, fmt.Errorf("empty series file")
	}
	if err != nil {
		return model.Series{}, fmt.Errorf("read header: %w", err)
	}
	demandIdx, priceIdx := -1, -1
	for i, name := range header {
		switch strings.TrimSpace(name) {
		case demandColumn:
			demandIdx = i
		case priceColumn:
			priceIdx = i
		}
	}
	if demandIdx < 0 {
		return model.Series{}, fmt.Errorf("column %q not found in header", demandColumn)
	}
	if priceIdx < 0 {
		return model.Series{}, fmt.Errorf("column %q not found in header", priceColumn)
	}

	var series model.Series
	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return model.Series{}, fmt.Errorf("line %d: %w", line, err)
		}
		demand, err := strconv.ParseFloat(strings.TrimSpace(record[demandIdx]), 64)
		if err != nil {
			return model.Series{}, fmt.Errorf("line %d: invalid demand %q", line, record[demandIdx])
		}
		price, err := strconv.ParseFloat(strings.TrimSpace(record[priceIdx]), 64)
		if err != nil {
			return model.Series{}, fmt.Errorf("line %d: invalid price %q", line, record[priceIdx])
		}
		series.Demand = append(series.Demand, demand)
		series.Price = append(series.Price, price)
	}
	if err := series.Validate(); err != nil {
		return model.Series{}, err
	}
	return series, nil
}
