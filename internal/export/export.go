// Package export writes checkpointed records as a tidy spreadsheet, one
// row per call.
package export

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ppiankov/casefile/internal/model"
	"github.com/ppiankov/casefile/internal/sanitize"
)

// NA is written for every null cell
const NA = "NA"

// Columns in sheet order
var Columns = []string{
	"instance", "season", "episode", "episode_title", "release_date", "call_start_time",
	"caller_name", "country", "state_or_region", "city", "us_census_region",
	"call_type", "call_type_secondary", "description", "date_of_event",
	"time_of_event", "setting", "involves_other_witnesses",
	"caller_emotional_tone", "sentiment_compound", "sentiment_pos",
	"sentiment_neg", "sentiment_neu", "derek_commentary", "verified",
}

var columnWidths = []float64{
	10, 8, 8, 40, 12, 14, 16, 10, 18,
	16, 14, 24, 24, 60, 14, 12, 28, 12,
	16, 12, 10, 10, 10, 50, 10,
}

var versionSuffixRe = regexp.MustCompile(`_v\d+$`)

// Options controls the sheet
type Options struct {
	Sheet           string
	DomesticCountry string // country value that enables the census region column
}

// DefaultOptions matches the default config
func DefaultOptions() Options {
	return Options{Sheet: "Calls", DomesticCountry: "USA"}
}

// Row renders one record as cell values, nil for null
func Row(r *model.Record, domestic string) []any {
	var census any
	if r.Country != nil && *r.Country == domestic && r.StateOrRegion != nil {
		if region, ok := sanitize.CensusRegion(*r.StateOrRegion); ok {
			census = region
		}
	}
	return []any{
		r.Instance,
		intCell(r.Season),
		intCell(r.Episode),
		r.EpisodeTitle,
		r.ReleaseDate,
		strCell(r.CallStartTime),
		strCell(r.CallerName),
		strCell(r.Country),
		strCell(r.StateOrRegion),
		strCell(r.City),
		census,
		r.CallType,
		strCell(r.CallTypeSecondary),
		r.Description,
		strCell(r.DateOfEvent),
		strCell(r.TimeOfEvent),
		strCell(r.Setting),
		r.InvolvesOtherWitnesses,
		r.CallerEmotionalTone,
		floatCell(r.SentimentCompound),
		floatCell(r.SentimentPos),
		floatCell(r.SentimentNeg),
		floatCell(r.SentimentNeu),
		strCell(r.HostCommentary),
		r.Verified,
	}
}

func intCell(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}

func strCell(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func floatCell(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}

// Write saves records to a new spreadsheet at path, or at the next free
// _vN variant of it, and returns the path actually written.
func Write(path string, records []model.Record, opts Options) (string, error) {
	if opts.Sheet == "" {
		opts.Sheet = DefaultOptions().Sheet
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	out, err := VersionedPath(path)
	if err != nil {
		return "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), opts.Sheet); err != nil {
		return "", fmt.Errorf("name sheet: %w", err)
	}
	if err := writeSheet(f, opts, records); err != nil {
		return "", err
	}
	if err := f.SaveAs(out); err != nil {
		return "", fmt.Errorf("save %s: %w", out, err)
	}
	return out, nil
}

func writeSheet(f *excelize.File, opts Options, records []model.Record) error {
	sheet := opts.Sheet
	header, body, err := styles(f)
	if err != nil {
		return err
	}

	for i, name := range Columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, name); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}
	last, _ := excelize.ColumnNumberToName(len(Columns))
	if err := f.SetCellStyle(sheet, "A1", last+"1", header); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	for i := range records {
		row := i + 2
		cell, _ := excelize.CoordinatesToCellName(1, row)
		values := Row(&records[i], opts.DomesticCountry)
		for j, v := range values {
			if v == nil {
				values[j] = NA
			}
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", row, err)
		}
	}
	if len(records) > 0 {
		if err := f.SetCellStyle(sheet, "A2", fmt.Sprintf("%s%d", last, len(records)+1), body); err != nil {
			return fmt.Errorf("style rows: %w", err)
		}
	}

	for i, w := range columnWidths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(sheet, col, col, w); err != nil {
			return fmt.Errorf("set width %s: %w", col, err)
		}
	}

	if err := f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freeze header: %w", err)
	}
	ref := fmt.Sprintf("A1:%s%d", last, len(records)+1)
	if err := f.AutoFilter(sheet, ref, nil); err != nil {
		return fmt.Errorf("auto filter: %w", err)
	}
	return nil
}

func styles(f *excelize.File) (header, body int, err error) {
	border := []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
	}
	header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF", Size: 11, Family: "Arial"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"2F5496"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
		Border:    border,
	})
	if err != nil {
		return 0, 0, fmt.Errorf("header style: %w", err)
	}
	body, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Size: 10, Family: "Arial"},
		Alignment: &excelize.Alignment{Vertical: "top", WrapText: true},
	})
	if err != nil {
		return 0, 0, fmt.Errorf("body style: %w", err)
	}
	return header, body, nil
}

// VersionedPath returns path if it is free, otherwise the first free
// <base>_vN<ext> with N starting at 2. An existing _vN suffix is replaced.
func VersionedPath(path string) (string, error) {
	exists, err := fileExists(path)
	if err != nil || !exists {
		return path, err
	}
	ext := filepath.Ext(path)
	base := versionSuffixRe.ReplaceAllString(strings.TrimSuffix(path, ext), "")
	for v := 2; ; v++ {
		candidate := fmt.Sprintf("%s_v%d%s", base, v, ext)
		exists, err := fileExists(candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
	}
}

func fileExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("stat %s: %w", path, err)
}
