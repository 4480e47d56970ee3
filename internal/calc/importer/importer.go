package importer

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"Motorsize/internal/calc/bom"
	"Motorsize/internal/calc/lca"
	"Motorsize/internal/calc/motor"
	"Motorsize/internal/calc/sizing"

	"github.com/xuri/excelize/v2"
)

// Columns of the input sheet, after one header row.
var InputColumns = []string{
	"name", "topology", "dl_ratio", "average_shear_stress_kpa",
	"max_rotor_speed_rpm", "max_torque_nm", "base_speed_rpm", "airgap_flux_density_t",
}

type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

func (e RowError) Error() string { return fmt.Sprintf("row %d: %s", e.Row, e.Message) }

// Record is a parsed input together with its 1-based sheet row.
type Record struct {
	Row   int
	Input motor.Input
}

// ReadInputs parses motor requirements from the first sheet. Rows that
// cannot be parsed are reported and skipped; blank rows are ignored.
func ReadInputs(r io.Reader) ([]Record, []RowError, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, nil, fmt.Errorf("read sheet: %w", err)
	}
	if len(rows) < 2 {
		return nil, nil, fmt.Errorf("empty sheet")
	}

	var records []Record
	var rowErrs []RowError
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		if blank(row) {
			continue
		}
		in, err := parseRow(row)
		if err != nil {
			rowErrs = append(rowErrs, RowError{Row: i + 1, Message: err.Error()})
			continue
		}
		records = append(records, Record{Row: i + 1, Input: in})
	}
	return records, rowErrs, nil
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func parseRow(row []string) (motor.Input, error) {
	// expected: name, topology, dl_ratio(optional), shear, max speed, torque, base speed, flux(optional)
	if len(row) < 7 {
		return motor.Input{}, fmt.Errorf("expected at least 7 columns, got %d", len(row))
	}
	top, err := sizing.ParseTopology(row[1])
	if err != nil {
		return motor.Input{}, err
	}
	in := motor.Input{Name: strings.TrimSpace(row[0]), Topology: top}

	fields := []struct {
		col      int
		dst      *float64
		optional bool
	}{
		{2, &in.DLRatio, true},
		{3, &in.AverageShearStress, false},
		{4, &in.MaxRotorSpeed, false},
		{5, &in.MaxTorque, false},
		{6, &in.BaseSpeed, false},
		{7, &in.AirgapFluxDensity, true},
	}
	for _, fd := range fields {
		cell := ""
		if fd.col < len(row) {
			cell = strings.TrimSpace(row[fd.col])
		}
		if cell == "" {
			if fd.optional {
				continue
			}
			return motor.Input{}, fmt.Errorf("column %s is required", InputColumns[fd.col])
		}
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return motor.Input{}, fmt.Errorf("column %s: %q is not a number", InputColumns[fd.col], cell)
		}
		*fd.dst = v
	}
	return in, nil
}

// WriteInputs writes a template workbook holding the given inputs.
func WriteInputs(w io.Writer, inputs []motor.Input) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Inputs"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}
	rows := [][]any{toAny(InputColumns)}
	for _, in := range inputs {
		rows = append(rows, []any{
			in.Name, in.Topology.String(), in.DLRatio, in.AverageShearStress,
			in.MaxRotorSpeed, in.MaxTorque, in.BaseSpeed, in.AirgapFluxDensity,
		})
	}
	if err := writeRows(f, sheet, rows); err != nil {
		return err
	}
	return f.Write(w)
}

// WriteResults writes one row per motor to the Geometry, BOM and Impact sheets.
func WriteResults(w io.Writer, results []motor.Result) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", "Geometry"); err != nil {
		return err
	}
	for _, s := range []string{"BOM", "Impact"} {
		if _, err := f.NewSheet(s); err != nil {
			return err
		}
	}

	geometry := [][]any{{
		"name", "topology", "rotor_od_m", "rotor_id_m", "shaft_m", "stack_m", "dl_ratio",
		"stator_od_m", "split_ratio", "tip_speed_m_s", "power_kw",
		"tip_speed_exceeded", "shear_out_of_range", "stacking_exceeded",
	}}
	bomRows := [][]any{{"name"}}
	for _, c := range bom.Categories() {
		bomRows[0] = append(bomRows[0], c.String()+" [kg]")
	}
	bomRows[0] = append(bomRows[0], "Total [kg]")
	impact := [][]any{{"name"}}
	for c := lca.Category(0); c < lca.NumCategories; c++ {
		impact[0] = append(impact[0], fmt.Sprintf("%s [%s]", c, c.Unit()))
	}

	for _, res := range results {
		g := res.Geometry
		geometry = append(geometry, []any{
			res.Name, res.Topology.String(), g.RotorOuterDiameterM, g.RotorInnerDiameterM,
			g.ShaftDiameterM, g.StackLengthM, g.DLRatio, g.StatorOuterDiameterM, g.SplitRatio,
			res.Derived.TipSpeed, res.Derived.Power / 1000,
			res.Diagnostics.TipSpeedExceeded, res.Diagnostics.ShearStressOutOfRange,
			res.Diagnostics.StackingLimitExceeded,
		})

		row := []any{res.Name}
		for _, v := range res.BOM.Vector() {
			row = append(row, v)
		}
		bomRows = append(bomRows, append(row, res.TotalMassKG))

		row = []any{res.Name}
		for _, v := range res.Impact.Values {
			row = append(row, v)
		}
		impact = append(impact, row)
	}

	for sheet, rows := range map[string][][]any{"Geometry": geometry, "BOM": bomRows, "Impact": impact} {
		if err := writeRows(f, sheet, rows); err != nil {
			return err
		}
	}
	return f.Write(w)
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
