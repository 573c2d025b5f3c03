package models

// TemplateConfig is immutable reference data describing one invoice layout:
// which sections it requires, which it starts with, and whether it splits
// its line items across two tables.
type TemplateConfig struct {
	ID                  TemplateID    `json:"id"`
	DisplayName         string        `json:"displayName"`
	RequiredSections    []SectionType `json:"requiredSections"`
	DefaultSections     []SectionType `json:"defaultSections"`
	HasMultipleTables   bool          `json:"hasMultipleTables"`
	Headers             []string      `json:"headers,omitempty"`
	HasAdditionalFields bool          `json:"hasAdditionalFields"`
	AdditionalFieldKeys []string      `json:"additionalFieldKeys,omitempty"`
}

var templateCatalog = []TemplateConfig{
	{
		ID:               Template1,
		DisplayName:      "Time & Material",
		RequiredSections: []SectionType{SectionStandardHours},
		DefaultSections:  []SectionType{SectionStandardHours, SectionOvertimeHours},
	},
	{
		ID:               Template2,
		DisplayName:      "Time & Material Plus",
		RequiredSections: []SectionType{SectionStandardHours, SectionOvertimeHours},
		DefaultSections:  []SectionType{SectionStandardHours, SectionOvertimeHours},
	},
	{
		ID:               Template3,
		DisplayName:      "Professional Services",
		RequiredSections: []SectionType{SectionServices},
		DefaultSections:  []SectionType{SectionServices},
	},
	{
		ID:               Template4,
		DisplayName:      "Licenses & Services",
		RequiredSections: []SectionType{SectionLicenses},
		DefaultSections:  []SectionType{SectionLicenses, SectionServices},
	},
	{
		ID:               Template5,
		DisplayName:      "Consolidated",
		RequiredSections: []SectionType{SectionStandardHours, SectionServices},
		DefaultSections:  []SectionType{SectionStandardHours, SectionOvertimeHours, SectionServices, SectionLicenses},
	},
	{
		ID:                  Template6,
		DisplayName:         "Milestone & Credits",
		RequiredSections:    []SectionType{SectionServices},
		DefaultSections:     []SectionType{SectionServices},
		HasAdditionalFields: true,
		AdditionalFieldKeys: []string{"futureAccountCredit", "previousBalance", "adjustment"},
	},
	{
		ID:                Template7,
		DisplayName:       "Dual Table",
		HasMultipleTables: true,
		// One shared header schema applied to both tables.
		Headers: []string{"S.No", "Name", "Rate", "Hours Worked", "Amount"},
	},
}

// ListTemplates returns the catalog in display order.
func ListTemplates() []TemplateConfig {
	out := make([]TemplateConfig, len(templateCatalog))
	copy(out, templateCatalog)
	return out
}

// GetTemplate looks up a template by id. Unknown ids return not-found,
// never panic.
func GetTemplate(id TemplateID) (*TemplateConfig, bool) {
	for i := range templateCatalog {
		if templateCatalog[i].ID == id {
			t := templateCatalog[i]
			return &t, true
		}
	}
	return nil, false
}

// HasAdditionalField reports whether the template declares the given
// side-channel numeric field.
func (t *TemplateConfig) HasAdditionalField(key string) bool {
	if !t.HasAdditionalFields {
		return false
	}
	for _, k := range t.AdditionalFieldKeys {
		if k == key {
			return true
		}
	}
	return false
}

// RequiresSection reports whether the template lists the section type as
// required.
func (t *TemplateConfig) RequiresSection(sectionType SectionType) bool {
	for _, s := range t.RequiredSections {
		if s == sectionType {
			return true
		}
	}
	return false
}
