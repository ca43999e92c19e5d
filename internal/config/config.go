package config

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// maxFetchBytes bounds a remote preset document.
const maxFetchBytes = 1 << 20

// #region decode
// Decode parses a JSON dashboard config document. Unknown keys are ignored;
// missing keys stay zero, since a document replaces the config wholesale.
func Decode(data []byte) (DashboardConfig, error) {
	var cfg DashboardConfig
	if err := json.Unmarshal(bytes.TrimSpace(data), &cfg); err != nil {
		return DashboardConfig{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// LoadFile reads a preset from disk. Files ending in .yaml or .yml are
// parsed as YAML, everything else as JSON.
func LoadFile(path string) (DashboardConfig, error) {
	// #nosec G304 -- path is an operator-provided preset file.
	data, err := os.ReadFile(path)
	if err != nil {
		return DashboardConfig{}, fmt.Errorf("read config %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var cfg DashboardConfig
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return DashboardConfig{}, fmt.Errorf("parse config %s: %w", path, err)
		}
		return cfg, nil
	default:
		cfg, err := Decode(data)
		if err != nil {
			return DashboardConfig{}, fmt.Errorf("parse config %s: %w", path, err)
		}
		return cfg, nil
	}
}

// #endregion decode

// #region fetch
// Fetch downloads a JSON preset from url. Any transport error, non-2xx status
// or undecodable body is an error; callers decide whether to ignore it.
func Fetch(ctx context.Context, client *http.Client, url string) (DashboardConfig, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return DashboardConfig{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return DashboardConfig{}, fmt.Errorf("fetch config: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return DashboardConfig{}, fmt.Errorf("fetch config: status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes))
	if err != nil {
		return DashboardConfig{}, fmt.Errorf("read config body: %w", err)
	}
	return Decode(body)
}

// #endregion fetch

// #region field-edit
// Fields lists the dotted paths accepted by Set, in display order.
var Fields = []string{
	"nsm.blockRateMax",
	"nsm.worstSliceGapMax",
	"gates.A.blockRateMin",
	"gates.A.latencyP95Max",
	"gates.A.worstSliceGapMax",
	"gates.B.overRefusalMax",
	"gates.B.appealsUpheldMin",
	"gates.C.avgCostMax",
	"gates.C.minVolume",
	"bands.high",
	"bands.medium",
	"sliceDim",
	"presetName",
}

// Set returns a copy of c with one field changed. Numeric fields take any
// value strconv.ParseFloat accepts; sliceDim must be language or slice.
func (c DashboardConfig) Set(path, value string) (DashboardConfig, error) {
	switch path {
	case "sliceDim":
		d := SliceDim(value)
		if d != SliceDimLanguage && d != SliceDimSlice {
			return c, fmt.Errorf("sliceDim must be %q or %q", SliceDimLanguage, SliceDimSlice)
		}
		c.SliceDim = d
		return c, nil
	case "presetName":
		c.PresetName = value
		return c, nil
	}

	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return c, fmt.Errorf("%s: %w", path, err)
	}
	switch path {
	case "nsm.blockRateMax":
		c.NorthStar.BlockRateMax = f
	case "nsm.worstSliceGapMax":
		c.NorthStar.WorstSliceGapMax = f
	case "gates.A.blockRateMin":
		c.Gates.A.BlockRateMin = f
	case "gates.A.latencyP95Max":
		c.Gates.A.LatencyP95Max = f
	case "gates.A.worstSliceGapMax":
		c.Gates.A.WorstSliceGapMax = f
	case "gates.B.overRefusalMax":
		c.Gates.B.OverRefusalMax = f
	case "gates.B.appealsUpheldMin":
		c.Gates.B.AppealsUpheldMin = f
	case "gates.C.avgCostMax":
		c.Gates.C.AvgCostMax = f
	case "gates.C.minVolume":
		c.Gates.C.MinVolume = f
	case "bands.high":
		c.Bands.High = f
	case "bands.medium":
		c.Bands.Medium = f
	default:
		return c, fmt.Errorf("unknown config field %q", path)
	}
	return c, nil
}

// #endregion field-edit

// #region bands-text
// Describe renders the automation tiers as three lines, highest first.
func (b Bands) Describe() []string {
	return []string{
		fmt.Sprintf("High risk: conf >= %.2f -> block", b.High),
		fmt.Sprintf("Medium: %.2f <= conf < %.2f -> suggest", b.Medium, b.High),
		fmt.Sprintf("Low: conf < %.2f -> allow", b.Medium),
	}
}

// #endregion bands-text
