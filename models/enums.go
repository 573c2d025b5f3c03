package models

import "errors"

type TemplateID string

const (
	Template1 TemplateID = "template1"
	Template2 TemplateID = "template2"
	Template3 TemplateID = "template3"
	Template4 TemplateID = "template4"
	Template5 TemplateID = "template5"
	Template6 TemplateID = "template6"
	Template7 TemplateID = "template7"
)

func ParseTemplateID(str string) (TemplateID, error) {
	templateIDs := map[string]TemplateID{
		"template1": Template1,
		"template2": Template2,
		"template3": Template3,
		"template4": Template4,
		"template5": Template5,
		"template6": Template6,
		"template7": Template7,
	}

	id, ok := templateIDs[str]
	if !ok {
		return "", errors.New("invalid template id")
	}
	return id, nil
}

type SectionType string

const (
	SectionStandardHours SectionType = "standardHours"
	SectionOvertimeHours SectionType = "overtimeHours"
	SectionServices      SectionType = "services"
	SectionLicenses      SectionType = "licenses"
)

func ParseSectionType(str string) (SectionType, error) {
	sectionTypes := map[string]SectionType{
		"standardHours": SectionStandardHours,
		"overtimeHours": SectionOvertimeHours,
		"services":      SectionServices,
		"licenses":      SectionLicenses,
	}

	s, ok := sectionTypes[str]
	if !ok {
		return "", errors.New("invalid section type")
	}
	return s, nil
}

type TableName string

const (
	TableMain              TableName = "mainTable"
	TableProductionSupport TableName = "productionSupport"
)

func ParseTableName(str string) (TableName, error) {
	switch str {
	case "mainTable":
		return TableMain, nil
	case "productionSupport":
		return TableProductionSupport, nil
	default:
		return "", errors.New("invalid table name")
	}
}

// InvoiceStatus tracks the invoice through the approval chain. The chain
// moves L1 -> L2 -> L3 -> Approved; L1 may escalate to the PMO before
// forwarding. Dispatched is terminal.
type InvoiceStatus string

const (
	InvoiceStatusDraft      InvoiceStatus = "Draft"
	InvoiceStatusL1Pending  InvoiceStatus = "L1 Pending"
	InvoiceStatusL2Pending  InvoiceStatus = "L2 Pending"
	InvoiceStatusL3Pending  InvoiceStatus = "L3 Pending"
	InvoiceStatusPMPending  InvoiceStatus = "PM Pending"
	InvoiceStatusApproved   InvoiceStatus = "Approved"
	InvoiceStatusRejected   InvoiceStatus = "Rejected"
	InvoiceStatusDispatched InvoiceStatus = "Dispatched"
)

func ParseInvoiceStatus(str string) (InvoiceStatus, error) {
	invoiceStatus := map[string]InvoiceStatus{
		"Draft":      InvoiceStatusDraft,
		"L1 Pending": InvoiceStatusL1Pending,
		"L2 Pending": InvoiceStatusL2Pending,
		"L3 Pending": InvoiceStatusL3Pending,
		"PM Pending": InvoiceStatusPMPending,
		"Approved":   InvoiceStatusApproved,
		"Rejected":   InvoiceStatusRejected,
		"Dispatched": InvoiceStatusDispatched,
	}

	s, ok := invoiceStatus[str]
	if !ok {
		return "", errors.New("invalid invoice status")
	}
	return s, nil
}

// IsPending reports whether the status sits somewhere in the approval chain.
func (s InvoiceStatus) IsPending() bool {
	switch s {
	case InvoiceStatusL1Pending, InvoiceStatusL2Pending, InvoiceStatusL3Pending, InvoiceStatusPMPending:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is allowed.
func (s InvoiceStatus) IsTerminal() bool {
	return s == InvoiceStatusDispatched
}

// Legacy maps the unified status onto the coarse four-state vocabulary
// older clients still read: draft, pending-approval, approved, generated.
// An invoice with unresolved comments reads as pending-approval, whether it
// is still a draft or the chain has already signed off.
func (s InvoiceStatus) Legacy(hasPendingComments bool) string {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusRejected:
		if hasPendingComments {
			return "pending-approval"
		}
		return "draft"
	case InvoiceStatusL1Pending, InvoiceStatusL2Pending, InvoiceStatusL3Pending, InvoiceStatusPMPending:
		return "pending-approval"
	case InvoiceStatusApproved:
		if hasPendingComments {
			return "pending-approval"
		}
		return "approved"
	case InvoiceStatusDispatched:
		return "generated"
	}
	return "draft"
}

// ApproverRole identifies who may act on an invoice at each stage.
type ApproverRole string

const (
	RoleL1    ApproverRole = "L1"
	RoleL2    ApproverRole = "L2"
	RoleL3    ApproverRole = "L3"
	RolePMO   ApproverRole = "PMO"
	RoleAdmin ApproverRole = "Admin"
)

func ParseApproverRole(str string) (ApproverRole, error) {
	approverRoles := map[string]ApproverRole{
		"L1":    RoleL1,
		"L2":    RoleL2,
		"L3":    RoleL3,
		"PMO":   RolePMO,
		"Admin": RoleAdmin,
	}

	r, ok := approverRoles[str]
	if !ok {
		return "", errors.New("invalid approver role")
	}
	return r, nil
}

type CommentStatus string

const (
	CommentStatusPending  CommentStatus = "pending"
	CommentStatusResolved CommentStatus = "resolved"
)

func ParseCommentStatus(str string) (CommentStatus, error) {
	switch str {
	case "pending":
		return CommentStatusPending, nil
	case "resolved":
		return CommentStatusResolved, nil
	default:
		return "", errors.New("invalid comment status")
	}
}

type CommentType string

const (
	CommentTypeQuestion      CommentType = "question"
	CommentTypeClarification CommentType = "clarification"
	CommentTypeCorrection    CommentType = "correction"
)

func ParseCommentType(str string) (CommentType, error) {
	commentTypes := map[string]CommentType{
		"question":      CommentTypeQuestion,
		"clarification": CommentTypeClarification,
		"correction":    CommentTypeCorrection,
	}

	t, ok := commentTypes[str]
	if !ok {
		return "", errors.New("invalid comment type")
	}
	return t, nil
}

type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)
