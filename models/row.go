package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"bitbucket.org/mmdatafocus/invoiceflow_backend/utils"
)

// Row is one line item within a section or table. It carries the union of
// fields across all section schemas; the schema controls which fields are
// live for a given section type.
type Row struct {
	ID           string          `json:"id"`
	SerialNumber int             `json:"serialNumber"`
	Name         string          `json:"name,omitempty"`
	Description  string          `json:"description,omitempty"`
	LicenseName  string          `json:"licenseName,omitempty"`
	Rate         decimal.Decimal `json:"rate"`
	HoursWorked  decimal.Decimal `json:"hoursWorked"`
	Quantity     decimal.Decimal `json:"quantity"`
	Amount       decimal.Decimal `json:"amount"`
	Cost         decimal.Decimal `json:"cost"`
}

// NewEmptyRow returns a row with a fresh id, serial unset, and all declared
// fields zeroed. The caller assigns the serial number.
func NewEmptyRow() Row {
	return Row{
		ID:          uuid.NewString(),
		Rate:        decimal.Zero,
		HoursWorked: decimal.Zero,
		Quantity:    decimal.Zero,
		Amount:      decimal.Zero,
		Cost:        decimal.Zero,
	}
}

// AmountOrCost is the value the totals engine sums for this row: the
// derived amount for hours schemas, the cost otherwise.
func (r Row) AmountOrCost(schema *SectionSchema) decimal.Decimal {
	switch schema.AmountKey() {
	case "amount":
		return r.Amount
	case "cost":
		return r.Cost
	}
	return decimal.Zero
}

// UpdateRowField sets one editable field from raw user input and returns
// the updated row. Numeric fields parse permissively (invalid or empty
// input becomes 0). When the changed field feeds the derivation rule the
// derived amount is recomputed in the same call with the post-change
// operands, so the edit and the derivation are atomic to the caller.
// Unknown or non-editable keys return ErrorRecordNotFound.
func UpdateRowField(schema *SectionSchema, row Row, fieldKey string, rawValue string) (Row, error) {
	if !schema.IsEditable(fieldKey) {
		return row, utils.ErrorRecordNotFound
	}

	switch fieldKey {
	case "name":
		row.Name = rawValue
	case "description":
		row.Description = rawValue
	case "licenseName":
		row.LicenseName = rawValue
	case "rate":
		row.Rate = utils.ParseAmount(rawValue)
	case "hoursWorked":
		row.HoursWorked = utils.ParseAmount(rawValue)
	case "quantity":
		row.Quantity = utils.ParseAmount(rawValue)
	case "cost":
		row.Cost = utils.ParseAmount(rawValue)
	default:
		return row, utils.ErrorRecordNotFound
	}

	if schema.DerivedFieldKey == "amount" && (fieldKey == "rate" || fieldKey == "hoursWorked") {
		// Exact multiply, no rounding.
		row.Amount = row.Rate.Mul(row.HoursWorked)
	}

	return row, nil
}

// RenumberRows assigns dense 1-based serial numbers in the rows' existing
// order. Enforced on every deletion, not just at render time.
func RenumberRows(rows []Row) []Row {
	for i := range rows {
		rows[i].SerialNumber = i + 1
	}
	return rows
}

// DeleteRowByID removes the row and densely renumbers the remainder.
// Unknown ids return ErrorRecordNotFound.
func DeleteRowByID(rows []Row, rowID string) ([]Row, error) {
	idx := -1
	for i := range rows {
		if rows[i].ID == rowID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return rows, utils.ErrorRecordNotFound
	}

	out := make([]Row, 0, len(rows)-1)
	out = append(out, rows[:idx]...)
	out = append(out, rows[idx+1:]...)
	return RenumberRows(out), nil
}
