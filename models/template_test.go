package models

import "testing"

func TestListTemplates_CatalogOrder(t *testing.T) {
	templates := ListTemplates()
	if len(templates) != 7 {
		t.Fatalf("expected 7 templates, got %d", len(templates))
	}
	expected := []TemplateID{Template1, Template2, Template3, Template4, Template5, Template6, Template7}
	for i, id := range expected {
		if templates[i].ID != id {
			t.Fatalf("catalog position %d expected %s, got %s", i, id, templates[i].ID)
		}
	}
}

func TestGetTemplate_UnknownID(t *testing.T) {
	if _, ok := GetTemplate(TemplateID("template99")); ok {
		t.Fatalf("unknown template id should not be found")
	}
}

func TestGetTemplate_ReturnsCopy(t *testing.T) {
	first, _ := GetTemplate(Template1)
	first.DisplayName = "mutated"

	second, _ := GetTemplate(Template1)
	if second.DisplayName != "Time & Material" {
		t.Fatalf("catalog mutated through GetTemplate result: %q", second.DisplayName)
	}
}

func TestTemplateCapabilities(t *testing.T) {
	t6, _ := GetTemplate(Template6)
	if !t6.HasAdditionalFields {
		t.Fatalf("template6 must declare additional fields")
	}
	if !t6.HasAdditionalField("previousBalance") {
		t.Fatalf("template6 missing previousBalance")
	}
	if t6.HasAdditionalField("unknown") {
		t.Fatalf("template6 accepted undeclared key")
	}

	t7, _ := GetTemplate(Template7)
	if !t7.HasMultipleTables {
		t.Fatalf("template7 must be dual-table")
	}
	if len(t7.RequiredSections) != 0 {
		t.Fatalf("dual-table template has no required sections")
	}

	t1, _ := GetTemplate(Template1)
	if !t1.RequiresSection(SectionStandardHours) {
		t.Fatalf("template1 requires standardHours")
	}
	if t1.RequiresSection(SectionOvertimeHours) {
		t.Fatalf("template1 must not require overtimeHours")
	}
}

func TestParseTemplateID(t *testing.T) {
	if _, err := ParseTemplateID("template3"); err != nil {
		t.Fatalf("ParseTemplateID(template3) error: %v", err)
	}
	if _, err := ParseTemplateID("template8"); err == nil {
		t.Fatalf("ParseTemplateID(template8) expected error")
	}
}
