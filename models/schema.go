package models

// SectionSchema maps a section type to its header labels, field keys,
// which fields the user may edit, and which field is derived. One per
// section type; immutable.
type SectionSchema struct {
	SectionType       SectionType `json:"sectionType"`
	DisplayName       string      `json:"displayName"`
	Headers           []string    `json:"headers"`
	FieldKeys         []string    `json:"fieldKeys"`
	EditableFieldKeys []string    `json:"editableFieldKeys"`
	DerivedFieldKey   string      `json:"derivedFieldKey,omitempty"`
}

var sectionSchemas = []SectionSchema{
	{
		SectionType:       SectionStandardHours,
		DisplayName:       "Standard Hours",
		Headers:           []string{"S.No", "Name", "Rate", "Hours Worked", "Amount"},
		FieldKeys:         []string{"serialNumber", "name", "rate", "hoursWorked", "amount"},
		EditableFieldKeys: []string{"name", "rate", "hoursWorked"},
		DerivedFieldKey:   "amount",
	},
	{
		SectionType:       SectionOvertimeHours,
		DisplayName:       "Overtime Hours",
		Headers:           []string{"S.No", "Name", "Rate", "Hours Worked", "Amount"},
		FieldKeys:         []string{"serialNumber", "name", "rate", "hoursWorked", "amount"},
		EditableFieldKeys: []string{"name", "rate", "hoursWorked"},
		DerivedFieldKey:   "amount",
	},
	{
		SectionType:       SectionServices,
		DisplayName:       "Services",
		Headers:           []string{"S.No", "Description", "Cost"},
		FieldKeys:         []string{"serialNumber", "description", "cost"},
		EditableFieldKeys: []string{"description", "cost"},
	},
	{
		SectionType:       SectionLicenses,
		DisplayName:       "Licenses",
		Headers:           []string{"S.No", "License Name", "Quantity", "Cost"},
		FieldKeys:         []string{"serialNumber", "licenseName", "quantity", "cost"},
		EditableFieldKeys: []string{"licenseName", "quantity", "cost"},
	},
}

// GetSectionSchema looks up the schema for a section type.
func GetSectionSchema(sectionType SectionType) (*SectionSchema, bool) {
	for i := range sectionSchemas {
		if sectionSchemas[i].SectionType == sectionType {
			s := sectionSchemas[i]
			return &s, true
		}
	}
	return nil, false
}

// HasField reports whether the schema declares the field key at all.
func (s *SectionSchema) HasField(key string) bool {
	for _, k := range s.FieldKeys {
		if k == key {
			return true
		}
	}
	return false
}

// IsEditable reports whether the field key may be written by a caller.
// The derived field and serialNumber are never directly editable.
func (s *SectionSchema) IsEditable(key string) bool {
	for _, k := range s.EditableFieldKeys {
		if k == key {
			return true
		}
	}
	return false
}

// AmountKey returns the field summed by the totals engine: the amount
// field when the schema exposes one, else cost, else empty.
func (s *SectionSchema) AmountKey() string {
	if s.HasField("amount") {
		return "amount"
	}
	if s.HasField("cost") {
		return "cost"
	}
	return ""
}
