package models

import (
	"testing"

	"bitbucket.org/mmdatafocus/invoiceflow_backend/utils"
)

func draftConfiguration(t *testing.T, id TemplateID) *Configuration {
	t.Helper()
	template, ok := GetTemplate(id)
	if !ok {
		t.Fatalf("template %s not found", id)
	}
	return NewConfiguration(template, nil, 6, 2025, "creator")
}

func TestNewConfiguration_PrepopulatesFromProjectResources(t *testing.T) {
	template, _ := GetTemplate(Template1)
	project := &ProjectInvoiceData{
		ProjectID:   "proj-1",
		ProjectName: "Phoenix",
		AccountID:   "acct-1",
		AccountName: "Acme Corp",
		Period:      "June 2025",
		Resources: []ProjectResource{
			{Name: "Alice", Rate: utils.ParseAmount("85")},
			{Name: "Bob", Rate: utils.ParseAmount("95")},
		},
	}

	config := NewConfiguration(template, project, 6, 2025, "creator")

	if config.Status != InvoiceStatusDraft {
		t.Fatalf("new configuration expected Draft, got %s", config.Status)
	}
	if config.Version != 1 {
		t.Fatalf("new configuration expected version 1, got %d", config.Version)
	}
	if config.CommonData.BillTo != "Acme Corp" {
		t.Fatalf("billTo expected Acme Corp, got %q", config.CommonData.BillTo)
	}

	idx := -1
	for i := range config.Sections {
		if config.Sections[i].Type == SectionStandardHours {
			idx = i
			break
		}
	}
	if idx < 0 {
		t.Fatalf("standardHours section missing")
	}
	rows := config.Sections[idx].Data
	if len(rows) != 2 {
		t.Fatalf("expected 2 prepopulated rows, got %d", len(rows))
	}
	if rows[0].SerialNumber != 1 || rows[1].SerialNumber != 2 {
		t.Fatalf("prepopulated rows not densely numbered: %d, %d", rows[0].SerialNumber, rows[1].SerialNumber)
	}
	if rows[0].HoursWorked.String() != "160" {
		t.Fatalf("default hours expected 160, got %s", rows[0].HoursWorked.String())
	}
	if rows[0].Amount.String() != "13600" {
		t.Fatalf("prepopulated amount expected 13600, got %s", rows[0].Amount.String())
	}
	if config.Totals.Subtotal.String() != "28800" {
		t.Fatalf("subtotal expected 28800, got %s", config.Totals.Subtotal.String())
	}
}

func TestNewConfiguration_AdditionalFieldsZeroed(t *testing.T) {
	config := draftConfiguration(t, Template6)
	for _, key := range []string{"futureAccountCredit", "previousBalance", "adjustment"} {
		value, ok := config.AdditionalFields[key]
		if !ok {
			t.Fatalf("additional field %q missing", key)
		}
		if !value.IsZero() {
			t.Fatalf("additional field %q expected 0, got %s", key, value.String())
		}
	}
}

func TestUpdateCommonField_DoesNotMutateOriginal(t *testing.T) {
	config := draftConfiguration(t, Template1)
	before := config.CommonData.BillTo
	modifiedAt := config.Metadata.LastModifiedAt

	out, err := UpdateCommonField(config, "billTo", "New Client LLC", "editor")
	if err != nil {
		t.Fatalf("UpdateCommonField error: %v", err)
	}
	if config.CommonData.BillTo != before {
		t.Fatalf("original aggregate mutated: %q", config.CommonData.BillTo)
	}
	if out.CommonData.BillTo != "New Client LLC" {
		t.Fatalf("updated copy missing change: %q", out.CommonData.BillTo)
	}
	if out.Metadata.LastModifiedBy != "editor" {
		t.Fatalf("lastModifiedBy expected editor, got %q", out.Metadata.LastModifiedBy)
	}
	if !out.Metadata.LastModifiedAt.After(modifiedAt) && !out.Metadata.LastModifiedAt.Equal(modifiedAt) {
		t.Fatalf("lastModifiedAt went backwards")
	}
}

func TestUpdateCommonField_UnknownField(t *testing.T) {
	config := draftConfiguration(t, Template1)
	if _, err := UpdateCommonField(config, "nope", "x", "editor"); err != utils.ErrorRecordNotFound {
		t.Fatalf("expected ErrorRecordNotFound, got %v", err)
	}
}

func TestUpdateSectionData_RecomputesTotalsWithoutAliasing(t *testing.T) {
	config := draftConfiguration(t, Template1)
	sectionID := ""
	for i := range config.Sections {
		if config.Sections[i].Type == SectionStandardHours {
			sectionID = config.Sections[i].ID
		}
	}

	rows := []Row{hoursRow(9, "Alice", "100", "10")}
	out, err := UpdateSectionData(config, sectionID, rows, "editor")
	if err != nil {
		t.Fatalf("UpdateSectionData error: %v", err)
	}

	idx := out.FindSection(sectionID)
	if out.Sections[idx].Data[0].SerialNumber != 1 {
		t.Fatalf("rows not renumbered on write: got %d", out.Sections[idx].Data[0].SerialNumber)
	}
	if out.Totals.Subtotal.String() != "1000" {
		t.Fatalf("subtotal expected 1000, got %s", out.Totals.Subtotal.String())
	}

	origIdx := config.FindSection(sectionID)
	if len(config.Sections[origIdx].Data) != 0 {
		t.Fatalf("original section data mutated")
	}

	// The copy must not alias the caller's slice either.
	rows[0].Name = "changed"
	if out.Sections[idx].Data[0].Name != "Alice" {
		t.Fatalf("updated copy aliases caller slice")
	}
}

func TestRemoveSection_RequiredSectionIsProtected(t *testing.T) {
	config := draftConfiguration(t, Template1)
	var requiredID, optionalID string
	for i := range config.Sections {
		switch config.Sections[i].Type {
		case SectionStandardHours:
			requiredID = config.Sections[i].ID
		case SectionOvertimeHours:
			optionalID = config.Sections[i].ID
		}
	}

	if CanRemoveSection(config, requiredID) {
		t.Fatalf("required section reported removable")
	}
	if _, err := RemoveSection(config, requiredID, "editor"); err == nil {
		t.Fatalf("removing required section should fail")
	}

	if !CanRemoveSection(config, optionalID) {
		t.Fatalf("optional section reported non-removable")
	}
	out, err := RemoveSection(config, optionalID, "editor")
	if err != nil {
		t.Fatalf("RemoveSection error: %v", err)
	}
	if len(out.Sections) != len(config.Sections)-1 {
		t.Fatalf("section count expected %d, got %d", len(config.Sections)-1, len(out.Sections))
	}
	for i := range out.Sections {
		if out.Sections[i].Order != i+1 {
			t.Fatalf("section order not dense after removal: got %d at index %d", out.Sections[i].Order, i)
		}
	}
}

func TestAddSection_DualTableTemplateHasNoSections(t *testing.T) {
	config := draftConfiguration(t, Template7)
	if _, err := AddSection(config, SectionServices, "editor"); err == nil {
		t.Fatalf("dual-table template should reject AddSection")
	}
}

func TestUpdateAdditionalTemplateField_OnlyDeclaredKeys(t *testing.T) {
	config := draftConfiguration(t, Template6)

	out, err := UpdateAdditionalTemplateField(config, "previousBalance", "$ 1,250.75", "editor")
	if err != nil {
		t.Fatalf("UpdateAdditionalTemplateField error: %v", err)
	}
	if out.AdditionalFields["previousBalance"].String() != "1250.75" {
		t.Fatalf("previousBalance expected 1250.75, got %s", out.AdditionalFields["previousBalance"].String())
	}
	if !config.AdditionalFields["previousBalance"].IsZero() {
		t.Fatalf("original additional fields mutated")
	}

	if _, err := UpdateAdditionalTemplateField(config, "nonexistent", "1", "editor"); err != utils.ErrorRecordNotFound {
		t.Fatalf("undeclared key expected ErrorRecordNotFound, got %v", err)
	}
}

func TestMutators_RejectDispatchedConfiguration(t *testing.T) {
	config := draftConfiguration(t, Template1)
	config.Status = InvoiceStatusDispatched
	sectionID := config.Sections[0].ID

	if _, err := UpdateCommonField(config, "billTo", "x", "editor"); err != utils.ErrorDispatched {
		t.Fatalf("UpdateCommonField expected ErrorDispatched, got %v", err)
	}
	if _, err := UpdateSectionData(config, sectionID, nil, "editor"); err != utils.ErrorDispatched {
		t.Fatalf("UpdateSectionData expected ErrorDispatched, got %v", err)
	}
	if _, err := AddSection(config, SectionServices, "editor"); err != utils.ErrorDispatched {
		t.Fatalf("AddSection expected ErrorDispatched, got %v", err)
	}
	if _, err := RemoveSection(config, sectionID, "editor"); err != utils.ErrorDispatched {
		t.Fatalf("RemoveSection expected ErrorDispatched, got %v", err)
	}
	if _, err := AddComment(config, NewComment("q", "rev", 1, CommentTypeQuestion), "rev"); err != utils.ErrorDispatched {
		t.Fatalf("AddComment expected ErrorDispatched, got %v", err)
	}
}

func TestCommentLifecycle(t *testing.T) {
	config := draftConfiguration(t, Template1)
	if config.HasPendingComments() {
		t.Fatalf("fresh configuration should have no pending comments")
	}

	comment := NewComment("check rates", "reviewer", 7, CommentTypeCorrection)
	out, err := AddComment(config, comment, "reviewer")
	if err != nil {
		t.Fatalf("AddComment error: %v", err)
	}
	if !out.HasPendingComments() {
		t.Fatalf("pending comment not reported")
	}
	if out.LegacyStatus() != "pending-approval" {
		t.Fatalf("draft with pending comment expected pending-approval, got %q", out.LegacyStatus())
	}

	resolved, err := ResolveComment(out, comment.ID, "pmo")
	if err != nil {
		t.Fatalf("ResolveComment error: %v", err)
	}
	if resolved.HasPendingComments() {
		t.Fatalf("resolved comment still reported pending")
	}
	if out.Comments[0].Status != CommentStatusPending {
		t.Fatalf("ResolveComment mutated its input")
	}

	if _, err := ResolveComment(out, "no-such-comment", "pmo"); err != utils.ErrorRecordNotFound {
		t.Fatalf("unknown comment expected ErrorRecordNotFound, got %v", err)
	}
}

func TestConfiguration_JSONRoundTrip(t *testing.T) {
	template, _ := GetTemplate(Template6)
	project := &ProjectInvoiceData{
		ProjectID:   "proj-1",
		AccountID:   "acct-1",
		AccountName: "Acme Corp",
		Period:      "June 2025",
	}
	config := NewConfiguration(template, project, 6, 2025, "creator")
	config.Comments = append(config.Comments, NewComment("q", "rev", 1, CommentTypeQuestion))

	blob, err := utils.MarshalToJSON(config)
	if err != nil {
		t.Fatalf("marshal error: %v", err)
	}
	var restored Configuration
	if err := utils.UnmarshalFromJSON([]byte(blob), &restored); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}

	if restored.ID != config.ID || restored.Template != config.Template {
		t.Fatalf("identity fields lost in round trip")
	}
	if !restored.Totals.Subtotal.Equal(config.Totals.Subtotal) {
		t.Fatalf("totals lost in round trip")
	}
	if len(restored.AdditionalFields) != len(config.AdditionalFields) {
		t.Fatalf("additional fields lost in round trip")
	}
	for key, value := range config.AdditionalFields {
		if !restored.AdditionalFields[key].Equal(value) {
			t.Fatalf("additional field %q changed in round trip", key)
		}
	}
	if len(restored.Comments) != 1 || restored.Comments[0].Type != CommentTypeQuestion {
		t.Fatalf("comments lost in round trip")
	}
}
