package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"bitbucket.org/mmdatafocus/invoiceflow_backend/utils"
)

// DefaultBillableHours is the monthly hours prefilled for each project
// resource when a configuration is created.
var DefaultBillableHours = decimal.NewFromInt(160)

type CommonData struct {
	CompanyName    string `json:"companyName"`
	CompanyAddress string `json:"companyAddress"`
	BillTo         string `json:"billTo"`
	InvoiceNumber  string `json:"invoiceNumber"`
	InvoiceDate    string `json:"invoiceDate"`
	PaymentTerms   string `json:"paymentTerms"`
	PhoneNumber    string `json:"phoneNumber"`
	BillingPeriod  string `json:"billingPeriod"`
}

type Metadata struct {
	CreatedBy       string     `json:"createdBy"`
	CreatedAt       time.Time  `json:"createdAt"`
	LastModifiedBy  string     `json:"lastModifiedBy"`
	LastModifiedAt  time.Time  `json:"lastModifiedAt"`
	AutoSaveEnabled bool       `json:"autoSaveEnabled"`
	LastAutoSave    *time.Time `json:"lastAutoSave,omitempty"`
}

// Section is a typed block of line-item rows in a single-table template.
// Total is always recomputed through the totals engine, never assigned
// independently.
type Section struct {
	ID       string          `json:"id"`
	Type     SectionType     `json:"type"`
	Name     string          `json:"name"`
	Enabled  bool            `json:"enabled"`
	Required bool            `json:"required"`
	Order    int             `json:"order"`
	Headers  []string        `json:"headers"`
	Data     []Row           `json:"data"`
	Total    decimal.Decimal `json:"total"`
	Editable bool            `json:"editable"`
}

// Table is one of the two row collections in the dual-table template.
type Table struct {
	Name  TableName       `json:"name"`
	Data  []Row           `json:"data"`
	Total decimal.Decimal `json:"total"`
}

type TemplateData struct {
	MainTable         Table `json:"mainTable"`
	ProductionSupport Table `json:"productionSupport"`
}

// Configuration is the aggregate root: template + data + totals + comments
// + status. All mutators are copy-on-write; a Dispatched configuration is
// immutable.
type Configuration struct {
	ID               string                     `json:"id"`
	ProjectID        string                     `json:"projectId"`
	AccountID        string                     `json:"accountId"`
	Template         TemplateID                 `json:"template"`
	Month            int                        `json:"month"`
	Year             int                        `json:"year"`
	Sections         []Section                  `json:"sections,omitempty"`
	TemplateData     *TemplateData              `json:"templateData,omitempty"`
	CommonData       CommonData                 `json:"commonData"`
	AdditionalFields map[string]decimal.Decimal `json:"additionalFields,omitempty"`
	Totals           Totals                     `json:"totals"`
	Comments         []Comment                  `json:"comments"`
	Status           InvoiceStatus              `json:"status"`
	Metadata         Metadata                   `json:"metadata"`
	Version          int                        `json:"version"`
}

// Clone deep-copies the aggregate so mutators never alias the caller's
// slices or maps.
func (c *Configuration) Clone() *Configuration {
	out := *c

	if c.Sections != nil {
		out.Sections = make([]Section, len(c.Sections))
		for i, s := range c.Sections {
			cs := s
			cs.Headers = append([]string(nil), s.Headers...)
			cs.Data = append([]Row(nil), s.Data...)
			out.Sections[i] = cs
		}
	}

	if c.TemplateData != nil {
		td := *c.TemplateData
		td.MainTable.Data = append([]Row(nil), c.TemplateData.MainTable.Data...)
		td.ProductionSupport.Data = append([]Row(nil), c.TemplateData.ProductionSupport.Data...)
		out.TemplateData = &td
	}

	if c.AdditionalFields != nil {
		out.AdditionalFields = make(map[string]decimal.Decimal, len(c.AdditionalFields))
		for k, v := range c.AdditionalFields {
			out.AdditionalFields[k] = v
		}
	}

	out.Comments = append([]Comment(nil), c.Comments...)

	if c.Totals.TableSpecificTotals != nil {
		t := *c.Totals.TableSpecificTotals
		out.Totals.TableSpecificTotals = &t
	}

	if c.Metadata.LastAutoSave != nil {
		t := *c.Metadata.LastAutoSave
		out.Metadata.LastAutoSave = &t
	}

	return &out
}

func (c *Configuration) touch(user string) {
	c.Metadata.LastModifiedBy = user
	c.Metadata.LastModifiedAt = time.Now().UTC()
}

// HasPendingComments reports whether any comment is still unresolved.
// Pending comments block generation and dispatch.
func (c *Configuration) HasPendingComments() bool {
	for _, comment := range c.Comments {
		if comment.Status == CommentStatusPending {
			return true
		}
	}
	return false
}

// LegacyStatus is the coarse four-state vocabulary older clients read.
func (c *Configuration) LegacyStatus() string {
	return c.Status.Legacy(c.HasPendingComments())
}

// FindSection returns the index of the section with the given id, or -1.
func (c *Configuration) FindSection(sectionID string) int {
	for i := range c.Sections {
		if c.Sections[i].ID == sectionID {
			return i
		}
	}
	return -1
}

func newSection(sectionType SectionType, order int, required bool) (Section, bool) {
	schema, ok := GetSectionSchema(sectionType)
	if !ok {
		return Section{}, false
	}
	return Section{
		ID:       uuid.NewString(),
		Type:     sectionType,
		Name:     schema.DisplayName,
		Enabled:  true,
		Required: required,
		Order:    order,
		Headers:  append([]string(nil), schema.Headers...),
		Data:     []Row{},
		Total:    decimal.Zero,
		Editable: true,
	}, true
}

func prepopulatedHoursRows(resources []ProjectResource) []Row {
	rows := make([]Row, 0, len(resources))
	for _, res := range resources {
		row := NewEmptyRow()
		row.Name = res.Name
		row.Rate = res.Rate
		row.HoursWorked = DefaultBillableHours
		row.Amount = res.Rate.Mul(DefaultBillableHours)
		rows = append(rows, row)
	}
	return RenumberRows(rows)
}

// NewConfiguration builds a Draft aggregate for the chosen template,
// prepopulating hours sections from the project's resources at the
// default 160 billable hours each.
func NewConfiguration(template *TemplateConfig, project *ProjectInvoiceData, month int, year int, user string) *Configuration {
	now := time.Now().UTC()
	config := &Configuration{
		ID:       uuid.NewString(),
		Template: template.ID,
		Month:    month,
		Year:     year,
		Comments: []Comment{},
		Status:   InvoiceStatusDraft,
		Metadata: Metadata{
			CreatedBy:       user,
			CreatedAt:       now,
			LastModifiedBy:  user,
			LastModifiedAt:  now,
			AutoSaveEnabled: true,
		},
		Version: 1,
	}

	if project != nil {
		config.ProjectID = project.ProjectID
		config.AccountID = project.AccountID
		config.CommonData.BillTo = project.AccountName
		config.CommonData.BillingPeriod = project.Period
	}

	if template.HasAdditionalFields {
		config.AdditionalFields = make(map[string]decimal.Decimal, len(template.AdditionalFieldKeys))
		for _, key := range template.AdditionalFieldKeys {
			config.AdditionalFields[key] = decimal.Zero
		}
	}

	if template.HasMultipleTables {
		config.TemplateData = &TemplateData{
			MainTable:         Table{Name: TableMain, Data: []Row{}, Total: decimal.Zero},
			ProductionSupport: Table{Name: TableProductionSupport, Data: []Row{}, Total: decimal.Zero},
		}
		if project != nil {
			config.TemplateData.MainTable.Data = prepopulatedHoursRows(project.Resources)
		}
	} else {
		for i, sectionType := range template.DefaultSections {
			section, ok := newSection(sectionType, i+1, template.RequiresSection(sectionType))
			if !ok {
				continue
			}
			if project != nil && sectionType == SectionStandardHours {
				section.Data = prepopulatedHoursRows(project.Resources)
			}
			config.Sections = append(config.Sections, section)
		}
	}

	recomputeTotals(config)
	return config
}

// recomputeTotals refreshes every derived total on the aggregate through
// the totals engine.
func recomputeTotals(c *Configuration) {
	if c.TemplateData != nil {
		schema, _ := GetSectionSchema(SectionStandardHours)
		c.TemplateData.MainTable.Total = CalculateSectionTotal(schema, c.TemplateData.MainTable.Data)
		c.TemplateData.ProductionSupport.Total = CalculateSectionTotal(schema, c.TemplateData.ProductionSupport.Data)
	}
	for i := range c.Sections {
		schema, ok := GetSectionSchema(c.Sections[i].Type)
		if !ok {
			continue
		}
		c.Sections[i].Total = CalculateSectionTotal(schema, c.Sections[i].Data)
	}
	c.Totals = CalculateTotals(c)
}

func (c *Configuration) rejectIfDispatched() error {
	if c.Status.IsTerminal() {
		return utils.ErrorDispatched
	}
	return nil
}

// UpdateCommonField replaces one common-data field and bumps metadata.
func UpdateCommonField(config *Configuration, field string, value string, user string) (*Configuration, error) {
	if err := config.rejectIfDispatched(); err != nil {
		return nil, err
	}

	out := config.Clone()
	switch field {
	case "companyName":
		out.CommonData.CompanyName = value
	case "companyAddress":
		out.CommonData.CompanyAddress = value
	case "billTo":
		out.CommonData.BillTo = value
	case "invoiceNumber":
		out.CommonData.InvoiceNumber = value
	case "invoiceDate":
		out.CommonData.InvoiceDate = value
	case "paymentTerms":
		out.CommonData.PaymentTerms = value
	case "phoneNumber":
		out.CommonData.PhoneNumber = value
	case "billingPeriod":
		out.CommonData.BillingPeriod = value
	default:
		return nil, utils.ErrorRecordNotFound
	}
	out.touch(user)
	return out, nil
}

// UpdateSectionData replaces one section's or table's row set, renumbers
// the rows, and recomputes all totals.
func UpdateSectionData(config *Configuration, sectionIDOrTable string, rows []Row, user string) (*Configuration, error) {
	if err := config.rejectIfDispatched(); err != nil {
		return nil, err
	}

	out := config.Clone()
	rows = RenumberRows(append([]Row(nil), rows...))

	if out.TemplateData != nil {
		switch TableName(sectionIDOrTable) {
		case TableMain:
			out.TemplateData.MainTable.Data = rows
		case TableProductionSupport:
			out.TemplateData.ProductionSupport.Data = rows
		default:
			return nil, utils.ErrorRecordNotFound
		}
	} else {
		idx := out.FindSection(sectionIDOrTable)
		if idx < 0 {
			return nil, utils.ErrorRecordNotFound
		}
		out.Sections[idx].Data = rows
	}

	recomputeTotals(out)
	out.touch(user)
	return out, nil
}

// AddSection appends an enabled section of the given type.
func AddSection(config *Configuration, sectionType SectionType, user string) (*Configuration, error) {
	if err := config.rejectIfDispatched(); err != nil {
		return nil, err
	}
	if config.TemplateData != nil {
		return nil, fmt.Errorf("dual-table template has no sections")
	}

	template, ok := GetTemplate(config.Template)
	if !ok {
		return nil, utils.ErrorRecordNotFound
	}

	out := config.Clone()
	section, ok := newSection(sectionType, len(out.Sections)+1, template.RequiresSection(sectionType))
	if !ok {
		return nil, utils.ErrorRecordNotFound
	}
	out.Sections = append(out.Sections, section)
	recomputeTotals(out)
	out.touch(user)
	return out, nil
}

// CanRemoveSection is the removal precondition: required sections may not
// be removed.
func CanRemoveSection(config *Configuration, sectionID string) bool {
	idx := config.FindSection(sectionID)
	if idx < 0 {
		return false
	}
	return !config.Sections[idx].Required
}

// RemoveSection drops a non-required section and recomputes totals.
func RemoveSection(config *Configuration, sectionID string, user string) (*Configuration, error) {
	if err := config.rejectIfDispatched(); err != nil {
		return nil, err
	}

	idx := config.FindSection(sectionID)
	if idx < 0 {
		return nil, utils.ErrorRecordNotFound
	}
	if config.Sections[idx].Required {
		return nil, fmt.Errorf("section %s is required by the template", config.Sections[idx].Type)
	}

	out := config.Clone()
	out.Sections = append(out.Sections[:idx], out.Sections[idx+1:]...)
	for i := range out.Sections {
		out.Sections[i].Order = i + 1
	}
	recomputeTotals(out)
	out.touch(user)
	return out, nil
}

// UpdateAdditionalTemplateField sets one side-channel numeric field
// (template6 style). The bag is independent of row/section totals.
func UpdateAdditionalTemplateField(config *Configuration, fieldKey string, rawValue string, user string) (*Configuration, error) {
	if err := config.rejectIfDispatched(); err != nil {
		return nil, err
	}

	template, ok := GetTemplate(config.Template)
	if !ok || !template.HasAdditionalField(fieldKey) {
		return nil, utils.ErrorRecordNotFound
	}

	out := config.Clone()
	if out.AdditionalFields == nil {
		out.AdditionalFields = make(map[string]decimal.Decimal)
	}
	out.AdditionalFields[fieldKey] = utils.ParseAmount(rawValue)
	out.touch(user)
	return out, nil
}

// AddComment appends a pending comment. Generation stays blocked until the
// comment is resolved.
func AddComment(config *Configuration, comment Comment, user string) (*Configuration, error) {
	if err := config.rejectIfDispatched(); err != nil {
		return nil, err
	}

	out := config.Clone()
	out.Comments = append(out.Comments, comment)
	out.touch(user)
	return out, nil
}

// ResolveComment marks a comment resolved. PMO action.
func ResolveComment(config *Configuration, commentID string, user string) (*Configuration, error) {
	if err := config.rejectIfDispatched(); err != nil {
		return nil, err
	}

	out := config.Clone()
	for i := range out.Comments {
		if out.Comments[i].ID == commentID {
			out.Comments[i].Status = CommentStatusResolved
			out.touch(user)
			return out, nil
		}
	}
	return nil, utils.ErrorRecordNotFound
}
