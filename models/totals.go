package models

import "github.com/shopspring/decimal"

// Invoice tax is a fixed 10% of subtotal.
var taxRate = decimal.New(1, -1)

// Totals is always derived through CalculateTotals, never hand-assembled.
type Totals struct {
	Subtotal            decimal.Decimal      `json:"subtotal"`
	Tax                 decimal.Decimal      `json:"tax"`
	Total               decimal.Decimal      `json:"total"`
	TableSpecificTotals *TableSpecificTotals `json:"tableSpecificTotals,omitempty"`
}

type TableSpecificTotals struct {
	MainTable         decimal.Decimal `json:"mainTable"`
	ProductionSupport decimal.Decimal `json:"productionSupport"`
}

// CalculateSectionTotal sums the amount field when the schema exposes it,
// else cost, else zero. Exact decimal arithmetic, no rounding.
func CalculateSectionTotal(schema *SectionSchema, rows []Row) decimal.Decimal {
	total := decimal.Zero
	for _, row := range rows {
		total = total.Add(row.AmountOrCost(schema))
	}
	return total
}

// CalculateTotals recomputes subtotal, tax and total for the configuration.
// Dual-table templates fill TableSpecificTotals from each table and sum
// them into the subtotal. This is the single source of totals truth:
// every mutator re-invokes it after changing row or section data.
func CalculateTotals(config *Configuration) Totals {
	template, ok := GetTemplate(config.Template)
	if ok && template.HasMultipleTables && config.TemplateData != nil {
		schema, _ := GetSectionSchema(SectionStandardHours)
		main := CalculateSectionTotal(schema, config.TemplateData.MainTable.Data)
		support := CalculateSectionTotal(schema, config.TemplateData.ProductionSupport.Data)
		subtotal := main.Add(support)
		tax := subtotal.Mul(taxRate)
		return Totals{
			Subtotal: subtotal,
			Tax:      tax,
			Total:    subtotal.Add(tax),
			TableSpecificTotals: &TableSpecificTotals{
				MainTable:         main,
				ProductionSupport: support,
			},
		}
	}

	subtotal := decimal.Zero
	for i := range config.Sections {
		section := &config.Sections[i]
		if !section.Enabled {
			continue
		}
		schema, ok := GetSectionSchema(section.Type)
		if !ok {
			continue
		}
		subtotal = subtotal.Add(CalculateSectionTotal(schema, section.Data))
	}
	tax := subtotal.Mul(taxRate)
	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal.Add(tax),
	}
}
