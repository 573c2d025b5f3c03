package models

import (
	"testing"

	"bitbucket.org/mmdatafocus/invoiceflow_backend/utils"
)

func TestDeleteRowByID_RenumbersDensely(t *testing.T) {
	rows := []Row{
		hoursRow(1, "Alice", "85", "160"),
		hoursRow(2, "Bob", "95", "160"),
		hoursRow(3, "Carol", "75", "160"),
	}
	out, err := DeleteRowByID(rows, rows[0].ID)
	if err != nil {
		t.Fatalf("DeleteRowByID error: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 rows after delete, got %d", len(out))
	}
	if out[0].SerialNumber != 1 || out[1].SerialNumber != 2 {
		t.Fatalf("serial numbers not dense: got %d, %d", out[0].SerialNumber, out[1].SerialNumber)
	}
	if out[0].Name != "Bob" || out[1].Name != "Carol" {
		t.Fatalf("row order changed: got %s, %s", out[0].Name, out[1].Name)
	}
}

func TestDeleteRowByID_UnknownID(t *testing.T) {
	rows := []Row{hoursRow(1, "Alice", "85", "160")}
	if _, err := DeleteRowByID(rows, "no-such-row"); err != utils.ErrorRecordNotFound {
		t.Fatalf("expected ErrorRecordNotFound, got %v", err)
	}
}

func TestUpdateRowField_DerivesAmountAtomically(t *testing.T) {
	schema, ok := GetSectionSchema(SectionStandardHours)
	if !ok {
		t.Fatalf("standardHours schema not found")
	}
	row := hoursRow(1, "Alice", "85", "160")

	row, err := UpdateRowField(schema, row, "rate", "100")
	if err != nil {
		t.Fatalf("UpdateRowField(rate) error: %v", err)
	}
	if row.Amount.String() != "16000" {
		t.Fatalf("amount after rate edit expected 16000, got %s", row.Amount.String())
	}

	row, err = UpdateRowField(schema, row, "hoursWorked", "120")
	if err != nil {
		t.Fatalf("UpdateRowField(hoursWorked) error: %v", err)
	}
	if row.Amount.String() != "12000" {
		t.Fatalf("amount after hours edit expected 12000, got %s", row.Amount.String())
	}
}

func TestUpdateRowField_InvalidNumericInputIsZero(t *testing.T) {
	schema, _ := GetSectionSchema(SectionStandardHours)
	row := hoursRow(1, "Alice", "85", "160")

	row, err := UpdateRowField(schema, row, "hoursWorked", "not a number")
	if err != nil {
		t.Fatalf("UpdateRowField error: %v", err)
	}
	if !row.HoursWorked.IsZero() {
		t.Fatalf("invalid input should parse as 0, got %s", row.HoursWorked.String())
	}
	if !row.Amount.IsZero() {
		t.Fatalf("derived amount should follow to 0, got %s", row.Amount.String())
	}
}

func TestUpdateRowField_RejectsNonEditableFields(t *testing.T) {
	schema, _ := GetSectionSchema(SectionStandardHours)
	row := hoursRow(1, "Alice", "85", "160")

	cases := []string{"serialNumber", "amount", "unknownField"}
	for _, key := range cases {
		if _, err := UpdateRowField(schema, row, key, "5"); err != utils.ErrorRecordNotFound {
			t.Fatalf("UpdateRowField(%q) expected ErrorRecordNotFound, got %v", key, err)
		}
	}
}

func TestUpdateRowField_CostSchemaHasNoDerivation(t *testing.T) {
	schema, _ := GetSectionSchema(SectionServices)
	row := costRow(1, "Setup", "1000")

	row, err := UpdateRowField(schema, row, "cost", "2,500")
	if err != nil {
		t.Fatalf("UpdateRowField(cost) error: %v", err)
	}
	if row.Cost.String() != "2500" {
		t.Fatalf("cost expected 2500, got %s", row.Cost.String())
	}
	if !row.Amount.IsZero() {
		t.Fatalf("services rows never derive an amount, got %s", row.Amount.String())
	}
}
