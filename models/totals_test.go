package models

import (
	"testing"

	"github.com/shopspring/decimal"
)

func hoursRow(serial int, name string, rate string, hours string) Row {
	row := NewEmptyRow()
	row.SerialNumber = serial
	row.Name = name
	row.Rate = decimal.RequireFromString(rate)
	row.HoursWorked = decimal.RequireFromString(hours)
	row.Amount = row.Rate.Mul(row.HoursWorked)
	return row
}

func costRow(serial int, description string, cost string) Row {
	row := NewEmptyRow()
	row.SerialNumber = serial
	row.Description = description
	row.Cost = decimal.RequireFromString(cost)
	return row
}

func TestCalculateTotals_HoursSectionsWithTenPercentTax(t *testing.T) {
	template, ok := GetTemplate(Template1)
	if !ok {
		t.Fatalf("template1 not found")
	}
	config := NewConfiguration(template, nil, 6, 2025, "tester")
	idx := -1
	for i := range config.Sections {
		if config.Sections[i].Type == SectionStandardHours {
			idx = i
			break
		}
	}
	if idx < 0 {
		t.Fatalf("standardHours section missing from template1 configuration")
	}
	config.Sections[idx].Data = []Row{
		hoursRow(1, "Alice", "85", "160"),
		hoursRow(2, "Bob", "95", "160"),
	}

	totals := CalculateTotals(config)

	if totals.Subtotal.String() != "28800" {
		t.Fatalf("subtotal expected 28800, got %s", totals.Subtotal.String())
	}
	if totals.Tax.String() != "2880" {
		t.Fatalf("tax expected 2880, got %s", totals.Tax.String())
	}
	if totals.Total.String() != "31680" {
		t.Fatalf("total expected 31680, got %s", totals.Total.String())
	}
	if totals.TableSpecificTotals != nil {
		t.Fatalf("single-table template should not carry table-specific totals")
	}
}

func TestCalculateTotals_DisabledSectionExcluded(t *testing.T) {
	template, _ := GetTemplate(Template1)
	config := NewConfiguration(template, nil, 6, 2025, "tester")
	for i := range config.Sections {
		switch config.Sections[i].Type {
		case SectionStandardHours:
			config.Sections[i].Data = []Row{hoursRow(1, "Alice", "100", "10")}
		case SectionOvertimeHours:
			config.Sections[i].Data = []Row{hoursRow(1, "Alice", "150", "4")}
			config.Sections[i].Enabled = false
		}
	}

	totals := CalculateTotals(config)
	if totals.Subtotal.String() != "1000" {
		t.Fatalf("disabled section leaked into subtotal: expected 1000, got %s", totals.Subtotal.String())
	}
}

func TestCalculateTotals_DualTable(t *testing.T) {
	template, ok := GetTemplate(Template7)
	if !ok {
		t.Fatalf("template7 not found")
	}
	config := NewConfiguration(template, nil, 6, 2025, "tester")
	if config.TemplateData == nil {
		t.Fatalf("dual-table template must initialize template data")
	}
	config.TemplateData.MainTable.Data = []Row{
		hoursRow(1, "Alice", "100", "20"),
		hoursRow(2, "Bob", "50", "4"),
	}
	config.TemplateData.ProductionSupport.Data = []Row{
		hoursRow(1, "Carol", "75", "4"),
	}

	totals := CalculateTotals(config)

	if totals.TableSpecificTotals == nil {
		t.Fatalf("dual-table totals must include per-table breakdown")
	}
	if totals.TableSpecificTotals.MainTable.String() != "2200" {
		t.Fatalf("main table expected 2200, got %s", totals.TableSpecificTotals.MainTable.String())
	}
	if totals.TableSpecificTotals.ProductionSupport.String() != "300" {
		t.Fatalf("production support expected 300, got %s", totals.TableSpecificTotals.ProductionSupport.String())
	}
	if totals.Subtotal.String() != "2500" {
		t.Fatalf("subtotal expected 2500, got %s", totals.Subtotal.String())
	}
	if totals.Tax.String() != "250" {
		t.Fatalf("tax expected 250, got %s", totals.Tax.String())
	}
	if totals.Total.String() != "2750" {
		t.Fatalf("total expected 2750, got %s", totals.Total.String())
	}
}

func TestCalculateSectionTotal_CostSchema(t *testing.T) {
	schema, ok := GetSectionSchema(SectionServices)
	if !ok {
		t.Fatalf("services schema not found")
	}
	rows := []Row{
		costRow(1, "Setup", "1200.50"),
		costRow(2, "Support", "799.50"),
	}
	total := CalculateSectionTotal(schema, rows)
	if total.String() != "2000" {
		t.Fatalf("section total expected 2000, got %s", total.String())
	}
}
