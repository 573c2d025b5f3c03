package models

import "fmt"

type ValidationIssue struct {
	Field    string   `json:"field"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

type ValidationResult struct {
	IsValid bool              `json:"isValid"`
	Errors  []ValidationIssue `json:"errors"`
}

// Validate checks the configuration against the active template's rules.
// It is the sole gate before generation: callers abort with the issue
// list when IsValid is false. Warnings never block.
func Validate(config *Configuration) ValidationResult {
	var issues []ValidationIssue

	template, ok := GetTemplate(config.Template)
	if !ok {
		issues = append(issues, ValidationIssue{
			Field:    "template",
			Message:  fmt.Sprintf("unknown template %q", config.Template),
			Severity: SeverityError,
		})
		return ValidationResult{IsValid: false, Errors: issues}
	}

	if template.HasMultipleTables {
		issues = append(issues, validateTables(config)...)
	} else {
		issues = append(issues, validateSections(config, template)...)
	}

	isValid := true
	for _, issue := range issues {
		if issue.Severity == SeverityError {
			isValid = false
			break
		}
	}
	return ValidationResult{IsValid: isValid, Errors: issues}
}

func validateSections(config *Configuration, template *TemplateConfig) []ValidationIssue {
	var issues []ValidationIssue

	// Every required section type must exist and be enabled.
	for _, required := range template.RequiredSections {
		found := false
		for i := range config.Sections {
			if config.Sections[i].Type == required && config.Sections[i].Enabled {
				found = true
				break
			}
		}
		if !found {
			issues = append(issues, ValidationIssue{
				Field:    fmt.Sprintf("sections.%s", required),
				Message:  fmt.Sprintf("required section %s is missing or disabled", required),
				Severity: SeverityError,
			})
		}
	}

	for i := range config.Sections {
		section := &config.Sections[i]
		if !section.Enabled {
			continue
		}
		if len(section.Data) == 0 {
			issues = append(issues, ValidationIssue{
				Field:    fmt.Sprintf("sections.%s", section.Type),
				Message:  fmt.Sprintf("section %s has no rows", section.Type),
				Severity: SeverityWarning,
			})
			continue
		}
		if section.Type == SectionStandardHours || section.Type == SectionOvertimeHours {
			issues = append(issues, validateHoursRows(fmt.Sprintf("sections.%s", section.Type), section.Data)...)
		}
	}

	return issues
}

func validateTables(config *Configuration) []ValidationIssue {
	var issues []ValidationIssue
	if config.TemplateData == nil {
		issues = append(issues, ValidationIssue{
			Field:    "templateData",
			Message:  "dual-table template has no table data",
			Severity: SeverityError,
		})
		return issues
	}
	if len(config.TemplateData.MainTable.Data) == 0 {
		issues = append(issues, ValidationIssue{
			Field:    "templateData.mainTable",
			Message:  "main table has no rows",
			Severity: SeverityWarning,
		})
	}
	issues = append(issues, validateHoursRows("templateData.mainTable", config.TemplateData.MainTable.Data)...)
	issues = append(issues, validateHoursRows("templateData.productionSupport", config.TemplateData.ProductionSupport.Data)...)
	return issues
}

func validateHoursRows(fieldPrefix string, rows []Row) []ValidationIssue {
	var issues []ValidationIssue
	for _, row := range rows {
		if !row.Rate.IsPositive() {
			issues = append(issues, ValidationIssue{
				Field:    fmt.Sprintf("%s.rows[%d].rate", fieldPrefix, row.SerialNumber),
				Message:  "rate must be greater than 0",
				Severity: SeverityError,
			})
		}
		if !row.HoursWorked.IsPositive() {
			issues = append(issues, ValidationIssue{
				Field:    fmt.Sprintf("%s.rows[%d].hoursWorked", fieldPrefix, row.SerialNumber),
				Message:  "hours worked must be greater than 0",
				Severity: SeverityError,
			})
		}
	}
	return issues
}
