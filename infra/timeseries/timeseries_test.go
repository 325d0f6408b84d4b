package timeseries

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "series.csv")
	data := `timestamp,demand_kw,price
2026-03-14T00:00:00Z,10.5,0.30
2026-03-14T01:00:00Z,6,0.10
2026-03-14T02:00:00Z,8.25,0.40
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	series, err := Load(path, "demand_kw", "price")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(series.Demand, []float64{10.5, 6, 8.25}) {
		t.Errorf("unexpected demand: %v", series.Demand)
	}
	if !reflect.DeepEqual(series.Price, []float64{0.30, 0.10, 0.40}) {
		t.Errorf("unexpected price: %v", series.Price)
	}
}

func TestReadMissingColumn(t *testing.T) {
	data := "timestamp,load\n2026-03-14T00:00:00Z,10\n"
	_, err := Read(strings.NewReader(data), "demand_kw", "price")
	if err == nil || !strings.Contains(err.Error(), "demand_kw") {
		t.Fatalf("expected missing column error, got %v", err)
	}
}

func TestReadInvalidNumber(t *testing.T) {
	data := "demand_kw,price\n10,0.3\nnot-a-number,0.1\n"
	_, err := Read(strings.NewReader(data), "demand_kw", "price")
	if err == nil || !strings.Contains(err.Error(), "line 3") {
		t.Fatalf("expected line error, got %v", err)
	}
}

func TestReadEmptyFile(t *testing.T) {
	if _, err := Read(strings.NewReader(""), "demand_kw", "price"); err == nil {
		t.Fatal("expected error for empty file")
	}
}

func TestReadHeaderOnly(t *testing.T) {
	if _, err := Read(strings.NewReader("demand_kw,price\n"), "demand_kw", "price"); err == nil {
		t.Fatal("expected error for header-only file")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.csv"), "demand_kw", "price"); err == nil {
		t.Fatal("expected error for missing file")
	}
}
