package interfaces

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	"monitoring-console/internal/charts"
	reports "monitoring-console/internal/reports/domain"
)

// Section is one widget flattened into a table for export.
type Section struct {
	Title  string
	Header []string
	Rows   [][]string
}

// BuildSections flattens derived widget models in layout order.
func BuildSections(results []charts.Result) []Section {
	out := make([]Section, 0, len(results))
	for i, res := range results {
		section := Section{Title: fmt.Sprintf("%d. %s", i+1, res.Widget)}
		if res.NoData {
			section.Header = []string{"Status"}
			section.Rows = [][]string{{"No data"}}
			out = append(out, section)
			continue
		}
		switch model := res.Model.(type) {
		case charts.Chart:
			section.Header = []string{"Series", "Points", "Min", "Max", "Last"}
			for _, s := range model.Series {
				row := []string{s.Name, strconv.Itoa(len(s.Data)), "", "", ""}
				minIdx, maxIdx := charts.Extremes(s.Data)
				if minIdx >= 0 {
					row[2] = formatFloat(s.Data[minIdx].Y)
					row[3] = formatFloat(s.Data[maxIdx].Y)
					row[4] = formatFloat(s.Data[len(s.Data)-1].Y)
				}
				section.Rows = append(section.Rows, row)
			}
		case charts.ValueCard:
			section.Header = []string{"Figure", "Value"}
			for _, f := range model.Figures {
				section.Rows = append(section.Rows, []string{f.Label, f.Formatted})
			}
		case charts.Table[charts.SensorRow]:
			section.Header = []string{"Sensor", "Value", "Timestamp"}
			for _, row := range model.Rows {
				section.Rows = append(section.Rows, []string{string(row.SensorID), formatFloat(row.Value), row.Timestamp})
			}
		case charts.Table[charts.FlatAlarmRow]:
			section.Header = []string{"Alarm", "Sensor", "Status", "Name"}
			for _, row := range model.Rows {
				section.Rows = append(section.Rows, []string{
					strconv.FormatInt(row.AlarmID, 10), string(row.SensorID), row.Status, row.AlarmName,
				})
			}
		default:
			section.Header = []string{"Status"}
			section.Rows = [][]string{{"Unsupported widget"}}
		}
		out = append(out, section)
	}
	return out
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// BuildReportPDF renders an automated report with one table per widget.
func BuildReportPDF(detail *reports.Detail, sections []Section) ([]byte, error) {
	if detail == nil {
		return nil, reports.ErrNotFound
	}
	if len(sections) == 0 {
		return nil, reports.ErrNoWidgets
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Automated Report")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Report: %d", detail.ReportID))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Type: %s", detail.ReportType))
	pdf.Ln(5)
	if detail.Frequency != "" {
		pdf.Cell(0, 6, fmt.Sprintf("Frequency: %s", detail.Frequency))
		pdf.Ln(5)
	}
	if detail.GeneratedDateTime != "" {
		pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", detail.GeneratedDateTime))
		pdf.Ln(5)
	}
	pdf.Cell(0, 6, fmt.Sprintf("Layout: %s", detail.Layout.LayoutName))
	pdf.Ln(8)

	const tableWidth = 180.0
	for _, section := range sections {
		pdf.SetFont("Arial", "B", 11)
		pdf.Cell(0, 7, section.Title)
		pdf.Ln(8)

		width := tableWidth / float64(len(section.Header))
		pdf.SetFont("Arial", "B", 9)
		for _, h := range section.Header {
			pdf.CellFormat(width, 6, h, "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 9)
		for _, row := range section.Rows {
			for _, cell := range row {
				pdf.CellFormat(width, 6, cell, "1", 0, "L", false, 0, "")
			}
			pdf.Ln(-1)
		}
		pdf.Ln(4)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildReportXLSX renders an automated report with a summary sheet and one
// sheet per widget.
func BuildReportXLSX(detail *reports.Detail, sections []Section) ([]byte, error) {
	if detail == nil {
		return nil, reports.ErrNotFound
	}
	if len(sections) == 0 {
		return nil, reports.ErrNoWidgets
	}
	f := excelize.NewFile()
	summarySheet := "summary"
	f.SetSheetName("Sheet1", summarySheet)

	_ = f.SetCellValue(summarySheet, "A1", "Automated Report")
	_ = f.SetCellValue(summarySheet, "A3", "Report")
	_ = f.SetCellValue(summarySheet, "B3", detail.ReportID)
	_ = f.SetCellValue(summarySheet, "A4", "Type")
	_ = f.SetCellValue(summarySheet, "B4", detail.ReportType)
	_ = f.SetCellValue(summarySheet, "A5", "Frequency")
	_ = f.SetCellValue(summarySheet, "B5", detail.Frequency)
	_ = f.SetCellValue(summarySheet, "A6", "Generated")
	_ = f.SetCellValue(summarySheet, "B6", detail.GeneratedDateTime)
	_ = f.SetCellValue(summarySheet, "A7", "Layout")
	_ = f.SetCellValue(summarySheet, "B7", detail.Layout.LayoutName)

	for i, section := range sections {
		sheet := fmt.Sprintf("widget_%d", i+1)
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
		_ = f.SetCellValue(sheet, "A1", section.Title)
		for col, h := range section.Header {
			cell, _ := excelize.CoordinatesToCellName(col+1, 3)
			_ = f.SetCellValue(sheet, cell, h)
		}
		for r, row := range section.Rows {
			for col, value := range row {
				cell, _ := excelize.CoordinatesToCellName(col+1, r+4)
				_ = f.SetCellValue(sheet, cell, value)
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
