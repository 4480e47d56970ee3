package importer

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"Motorsize/internal/calc/motor"
	"Motorsize/internal/calc/sizing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func workbook(t *testing.T, rows ...[]any) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	all := append([][]any{toAny(InputColumns)}, rows...)
	require.NoError(t, writeRows(f, "Sheet1", all))
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return &buf
}

func TestReadInputsRoundTrip(t *testing.T) {
	ipm := motor.DefaultInput()
	im := motor.DefaultInput()
	im.Name = "pump"
	im.Topology = sizing.IM
	im.MaxTorque = 50

	var buf bytes.Buffer
	require.NoError(t, WriteInputs(&buf, []motor.Input{ipm, im}))

	records, rowErrs, err := ReadInputs(&buf)
	require.NoError(t, err)
	assert.Empty(t, rowErrs)
	require.Len(t, records, 2)
	assert.Equal(t, 2, records[0].Row)
	assert.Equal(t, ipm, records[0].Input)
	assert.Equal(t, 3, records[1].Row)
	assert.Equal(t, im, records[1].Input)
}

func TestReadInputsReportsBadRows(t *testing.T) {
	buf := workbook(t,
		[]any{"ok", "x-motor", "", 80, 12000, 200, 3000},
		[]any{"short", "IPM", "", 80},
		[]any{},
		[]any{"bad topology", "SRM", "", 80, 12000, 200, 3000},
		[]any{"bad number", "IPM", "", "eighty", 12000, 200, 3000},
		[]any{"missing torque", "IM", "", 80, 12000, "", 3000},
	)
	records, rowErrs, err := ReadInputs(buf)
	require.NoError(t, err)

	require.Len(t, records, 1)
	assert.Equal(t, sizing.XMotor, records[0].Input.Topology)
	assert.Zero(t, records[0].Input.DLRatio)
	assert.Zero(t, records[0].Input.AirgapFluxDensity)

	rows := make([]int, 0, len(rowErrs))
	for _, e := range rowErrs {
		rows = append(rows, e.Row)
	}
	assert.Equal(t, []int{3, 5, 6, 7}, rows)
	assert.Contains(t, rowErrs[2].Message, "average_shear_stress_kpa")
	assert.Contains(t, rowErrs[3].Message, "max_torque_nm is required")
}

func TestReadInputsRejectsGarbage(t *testing.T) {
	_, _, err := ReadInputs(bytes.NewBufferString("not a workbook"))
	assert.Error(t, err)

	_, _, err = ReadInputs(workbook(t))
	assert.Error(t, err)
}

func TestWriteResultsSheets(t *testing.T) {
	res, err := motor.Calculate(motor.DefaultInput())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteResults(&buf, []motor.Result{res}))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Geometry", "BOM", "Impact"}, f.GetSheetList())

	bomRows, err := f.GetRows("BOM")
	require.NoError(t, err)
	require.Len(t, bomRows, 2)
	assert.Len(t, bomRows[0], 12)
	assert.Equal(t, "Electrical steel [kg]", bomRows[0][1])

	impact, err := f.GetRows("Impact")
	require.NoError(t, err)
	require.Len(t, impact, 2)
	assert.Equal(t, "Climate change [kg CO2]", impact[0][1])
}

func upload(t *testing.T, target string, body *bytes.Buffer) *http.Request {
	t.Helper()
	var form bytes.Buffer
	mw := multipart.NewWriter(&form)
	part, err := mw.CreateFormFile("file", "motors.xlsx")
	require.NoError(t, err)
	_, err = part.Write(body.Bytes())
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &form)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestHandlerImport(t *testing.T) {
	buf := workbook(t,
		[]any{"traction", "IPM", 0.5, 80, 12000, 200, 3000, 1},
		[]any{"broken", "IM", 0.05, 400, 12000, 200, 3000},
		[]any{"short", "IPM"},
	)
	rec := httptest.NewRecorder()
	(&Handler{}).Import(rec, upload(t, "/api/tools/motor/import", buf))

	require.Equal(t, http.StatusOK, rec.Code)
	var out ImportResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, 1, out.Count)
	require.Len(t, out.Results, 1)
	assert.Equal(t, "traction", out.Results[0].Name)
	require.Len(t, out.Errors, 2)
	assert.Equal(t, 3, out.Errors[0].Row)
	assert.Equal(t, 4, out.Errors[1].Row)
}

func TestHandlerImportXLSX(t *testing.T) {
	buf := workbook(t, []any{"traction", "PMaSynREL", "", 60, 12000, 150, 4000})
	rec := httptest.NewRecorder()
	(&Handler{}).Import(rec, upload(t, "/api/tools/motor/import?format=xlsx", buf))

	require.Equal(t, http.StatusOK, rec.Code)
	f, err := excelize.OpenReader(rec.Body)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Geometry")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "PMaSynREL", rows[1][1])
}

func TestHandlerImportRequiresFile(t *testing.T) {
	rec := httptest.NewRecorder()
	(&Handler{}).Import(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
