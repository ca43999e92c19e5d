package ingest

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/danielpatrickdp/policy-dash/internal/records"
)

// ErrUnsupportedFormat is returned for files that are neither .json nor .csv.
var ErrUnsupportedFormat = errors.New("unsupported record format")

// #region columns
// Columns is the fixed CSV column order, also the JSON key set.
var Columns = []string{
	"id",
	"ts",
	"policy_category",
	"confidence",
	"decision",
	"rationale",
	"slice",
	"language",
	"latencyMs",
	"costCents",
	"user_response",
	"appeal_outcome",
}

// #endregion columns

// #region parse
// Parse decodes a record file, choosing the format from name's extension.
// The result is all-or-nothing: any invalid row fails the whole parse.
func Parse(name string, data []byte) ([]records.Record, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		return ParseJSON(data)
	case ".csv":
		return ParseCSV(bytes.NewReader(data))
	default:
		return nil, fmt.Errorf("%s: %w", name, ErrUnsupportedFormat)
	}
}

// ParseJSON decodes a JSON array of records.
func ParseJSON(data []byte) ([]records.Record, error) {
	var rows []records.Record
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	for i, r := range rows {
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
	}
	if rows == nil {
		rows = []records.Record{}
	}
	return rows, nil
}

// ParseCSV decodes CSV whose header names the record fields, in any order.
// A leading byte-order mark is dropped. A missing id becomes the 1-based row
// index, missing user_response / appeal_outcome become "none", and numbers
// that fail to parse become 0.
func ParseCSV(r io.Reader) ([]records.Record, error) {
	cr := csv.NewReader(transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder())))
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return []records.Record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.TrimSpace(h)] = i
	}

	out := []records.Record{}
	for row := 1; ; row++ {
		cells, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row %d: %w", row, err)
		}
		get := func(name string) string {
			i, ok := col[name]
			if !ok || i >= len(cells) {
				return ""
			}
			return cells[i]
		}

		rec, err := fromCells(row, get)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

func fromCells(row int, get func(string) string) (records.Record, error) {
	id := get("id")
	if id == "" {
		id = strconv.Itoa(row)
	}
	ts, err := records.ParseTimestamp(strings.TrimSpace(get("ts")))
	if err != nil {
		return records.Record{}, err
	}

	rec := records.Record{
		ID:             records.RecordID(id),
		Timestamp:      ts,
		PolicyCategory: get("policy_category"),
		Confidence:     parseFloatOrZero(get("confidence")),
		Decision:       records.Decision(get("decision")),
		Rationale:      get("rationale"),
		Slice:          get("slice"),
		Language:       get("language"),
		LatencyMs:      parseIntOrZero(get("latencyMs")),
		CostCents:      parseIntOrZero(get("costCents")),
		UserResponse:   records.UserResponse(orNone(get("user_response"))),
		AppealOutcome:  records.AppealOutcome(orNone(get("appeal_outcome"))),
	}
	return rec, rec.Validate()
}

// #endregion parse

// #region write
// WriteCSV encodes rows in the fixed column order. Text containing commas,
// quotes or newlines is quoted, so ParseCSV reads it back unchanged.
func WriteCSV(w io.Writer, rows []records.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range rows {
		if err := cw.Write(toCells(r)); err != nil {
			return fmt.Errorf("write csv row %s: %w", r.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportFileName is the default download name for an export taken at now.
func ExportFileName(now time.Time) string {
	return fmt.Sprintf("enforcement_export_%d.csv", now.UnixMilli())
}

func toCells(r records.Record) []string {
	return []string{
		r.ID.String(),
		records.FormatTimestamp(r.Timestamp),
		r.PolicyCategory,
		strconv.FormatFloat(r.Confidence, 'f', -1, 64),
		string(r.Decision),
		r.Rationale,
		r.Slice,
		r.Language,
		strconv.Itoa(r.LatencyMs),
		strconv.Itoa(r.CostCents),
		string(r.UserResponse),
		string(r.AppealOutcome),
	}
}

// #endregion write

// #region helpers
func parseFloatOrZero(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return f
}

// parseIntOrZero truncates decimals the way a lenient integer parse would.
func parseIntOrZero(s string) int {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int(f)
	}
	return 0
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "none"
	}
	return s
}

// #endregion helpers
