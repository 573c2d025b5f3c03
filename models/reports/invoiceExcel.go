package reports

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"bitbucket.org/mmdatafocus/invoiceflow_backend/models"
)

// WriteInvoiceExcel renders one configuration as an xlsx workbook: one
// sheet per section (or per table for the dual-table template) plus a
// summary sheet with the totals.
func WriteInvoiceExcel(config *models.Configuration, w io.Writer) error {
	f := excelize.NewFile()

	if config.TemplateData != nil {
		schema, _ := models.GetSectionSchema(models.SectionStandardHours)
		if err := writeRowsSheet(f, "Main Table", schema, config.TemplateData.MainTable.Data); err != nil {
			return err
		}
		if err := writeRowsSheet(f, "Production Support", schema, config.TemplateData.ProductionSupport.Data); err != nil {
			return err
		}
	} else {
		for i := range config.Sections {
			section := &config.Sections[i]
			if !section.Enabled {
				continue
			}
			schema, ok := models.GetSectionSchema(section.Type)
			if !ok {
				continue
			}
			if err := writeRowsSheet(f, section.Name, schema, section.Data); err != nil {
				return err
			}
		}
	}

	if err := writeSummarySheet(f, config); err != nil {
		return err
	}

	// Drop the default sheet.
	f.DeleteSheet("Sheet1")

	return f.Write(w)
}

func writeRowsSheet(f *excelize.File, sheetName string, schema *models.SectionSchema, rows []models.Row) error {
	if _, err := f.NewSheet(sheetName); err != nil {
		return err
	}

	// Add headers
	col := 'A'
	for _, h := range schema.Headers {
		f.SetCellValue(sheetName, string(col)+"1", h)
		col++
	}

	// Add data
	for i, row := range rows {
		rowNo := fmt.Sprint(i + 2)
		col = 'A'
		for _, key := range schema.FieldKeys {
			f.SetCellValue(sheetName, string(col)+rowNo, cellValue(row, key))
			col++
		}
	}

	total := models.CalculateSectionTotal(schema, rows)
	totalRow := fmt.Sprint(len(rows) + 3)
	f.SetCellValue(sheetName, "A"+totalRow, "Total")
	f.SetCellValue(sheetName, "B"+totalRow, total.String())

	return nil
}

func cellValue(row models.Row, key string) interface{} {
	switch key {
	case "serialNumber":
		return row.SerialNumber
	case "name":
		return row.Name
	case "description":
		return row.Description
	case "licenseName":
		return row.LicenseName
	case "rate":
		return row.Rate.String()
	case "hoursWorked":
		return row.HoursWorked.String()
	case "quantity":
		return row.Quantity.String()
	case "amount":
		return row.Amount.String()
	case "cost":
		return row.Cost.String()
	}
	return ""
}

func writeSummarySheet(f *excelize.File, config *models.Configuration) error {
	sheetName := "Summary"
	if _, err := f.NewSheet(sheetName); err != nil {
		return err
	}

	f.SetCellValue(sheetName, "A1", "Invoice Number")
	f.SetCellValue(sheetName, "B1", config.CommonData.InvoiceNumber)
	f.SetCellValue(sheetName, "A2", "Bill To")
	f.SetCellValue(sheetName, "B2", config.CommonData.BillTo)
	f.SetCellValue(sheetName, "A3", "Billing Period")
	f.SetCellValue(sheetName, "B3", config.CommonData.BillingPeriod)
	f.SetCellValue(sheetName, "A4", "Status")
	f.SetCellValue(sheetName, "B4", string(config.Status))

	rowNo := 6
	if config.Totals.TableSpecificTotals != nil {
		f.SetCellValue(sheetName, "A"+fmt.Sprint(rowNo), "Main Table")
		f.SetCellValue(sheetName, "B"+fmt.Sprint(rowNo), config.Totals.TableSpecificTotals.MainTable.String())
		rowNo++
		f.SetCellValue(sheetName, "A"+fmt.Sprint(rowNo), "Production Support")
		f.SetCellValue(sheetName, "B"+fmt.Sprint(rowNo), config.Totals.TableSpecificTotals.ProductionSupport.String())
		rowNo++
	}
	f.SetCellValue(sheetName, "A"+fmt.Sprint(rowNo), "Subtotal")
	f.SetCellValue(sheetName, "B"+fmt.Sprint(rowNo), config.Totals.Subtotal.String())
	rowNo++
	f.SetCellValue(sheetName, "A"+fmt.Sprint(rowNo), "Tax (10%)")
	f.SetCellValue(sheetName, "B"+fmt.Sprint(rowNo), config.Totals.Tax.String())
	rowNo++
	f.SetCellValue(sheetName, "A"+fmt.Sprint(rowNo), "Total")
	f.SetCellValue(sheetName, "B"+fmt.Sprint(rowNo), config.Totals.Total.String())

	for key, value := range config.AdditionalFields {
		rowNo++
		f.SetCellValue(sheetName, "A"+fmt.Sprint(rowNo), key)
		f.SetCellValue(sheetName, "B"+fmt.Sprint(rowNo), value.String())
	}

	return nil
}
