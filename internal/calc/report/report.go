package report

import (
	"fmt"
	"io"
	"time"

	"Motorsize/internal/calc/bom"
	"Motorsize/internal/calc/motor"

	"github.com/phpdave11/gofpdf"
)

type Meta struct {
	Project string `json:"project"`
	Author  string `json:"author"`
	Title   string `json:"title"`
	Notes   string `json:"notes"`
}

// Render writes a single-page A4 summary of a sized motor.
func Render(w io.Writer, meta Meta, res motor.Result) error {
	if meta.Title == "" {
		meta.Title = "Motor Sizing Report"
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(meta.Title, true)
	pdf.SetAuthor(meta.Author, true)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, tr(meta.Title))
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, tr(fmt.Sprintf("Project: %s", meta.Project)))
	pdf.Ln(6)
	pdf.Cell(0, 6, tr(fmt.Sprintf("Author: %s", meta.Author)))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Date: %s", time.Now().Format("2006-01-02")))
	pdf.Ln(10)

	g := res.Geometry
	section(pdf, fmt.Sprintf("%s (%s)", tr(res.Name), res.Topology))
	table(pdf, [][2]string{
		{"Rotor outer diameter", mm(g.RotorOuterDiameterM)},
		{"Rotor inner diameter", mm(g.RotorInnerDiameterM)},
		{"Shaft diameter", mm(g.ShaftDiameterM)},
		{"Stack length", mm(g.StackLengthM)},
		{"D/L ratio", fmt.Sprintf("%.3f", g.DLRatio)},
		{"Stator outer diameter", mm(g.StatorOuterDiameterM)},
		{"Split ratio", fmt.Sprintf("%.4f", g.SplitRatio)},
		{"Rotor tip speed", fmt.Sprintf("%.1f m/s", res.Derived.TipSpeed)},
		{"Power at base speed", fmt.Sprintf("%.1f kW", res.Derived.Power/1000)},
	})

	section(pdf, "Bill of materials")
	rows := make([][2]string, 0, bom.NumCategories+1)
	for _, c := range bom.Categories() {
		rows = append(rows, [2]string{c.String(), fmt.Sprintf("%.3f kg", res.BOM.Get(c))})
	}
	rows = append(rows, [2]string{"Total", fmt.Sprintf("%.3f kg", res.TotalMassKG)})
	table(pdf, rows)

	section(pdf, "Production impact")
	rows = rows[:0]
	for _, r := range res.Impact.Rows {
		rows = append(rows, [2]string{r.Category, fmt.Sprintf("%.4g %s", r.Value, r.Unit)})
	}
	table(pdf, rows)

	if len(res.Notes) > 0 || meta.Notes != "" {
		section(pdf, "Notes")
		pdf.SetFont("Helvetica", "", 10)
		for _, n := range res.Notes {
			pdf.MultiCell(0, 5, tr("- "+n), "", "L", false)
		}
		if meta.Notes != "" {
			pdf.MultiCell(0, 5, tr(meta.Notes), "", "L", false)
		}
	}

	if err := pdf.Error(); err != nil {
		return err
	}
	return pdf.Output(w)
}

func section(pdf *gofpdf.Fpdf, title string) {
	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, title)
	pdf.Ln(8)
}

func table(pdf *gofpdf.Fpdf, rows [][2]string) {
	pdf.SetFont("Helvetica", "", 10)
	for _, r := range rows {
		pdf.CellFormat(80, 5.5, r[0], "B", 0, "L", false, 0, "")
		pdf.CellFormat(60, 5.5, r[1], "B", 1, "R", false, 0, "")
	}
}

func mm(m float64) string { return fmt.Sprintf("%.1f mm", m*1000) }
