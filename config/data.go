package config

import "fmt"

// DataConfig locates the demand and price series on disk.
type DataConfig struct {
	// Path is the CSV file holding the horizon series. Optional when every
	// request carries its own series.
	Path string `json:"path"`
	// DemandColumn names the CSV column with the site demand in kW.
	DemandColumn string `json:"demand_column"`
	// PriceColumn names the CSV column with the energy price per kWh.
	PriceColumn string `json:"price_column"`
}

// SetDefaults applies sane defaults.
func (c *DataConfig) SetDefaults() {
	if c.DemandColumn == "" {
		c.DemandColumn = "demand_kw"
	}
	if c.PriceColumn == "" {
		c.PriceColumn = "price"
	}
}

// Validate checks mandatory fields.
func (c DataConfig) Validate() error {
	if c.DemandColumn == "" {
		return fmt.Errorf("demand_column is required")
	}
	if c.PriceColumn == "" {
		return fmt.Errorf("price_column is required")
	}
	return nil
}
