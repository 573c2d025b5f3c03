package models

import (
	"errors"
	"fmt"
)

// ApprovalAction is one of the role-gated moves on the approval chain.
type ApprovalAction string

const (
	ActionSubmit    ApprovalAction = "Submit"
	ActionApprove   ApprovalAction = "Approve"
	ActionReject    ApprovalAction = "Reject"
	ActionPMRequest ApprovalAction = "PMRequest"
	ActionPMResolve ApprovalAction = "PMResolve"
	ActionDispatch  ApprovalAction = "Dispatch"
)

var ErrorRoleNotAllowed = errors.New("acting role may not perform this action at the current stage")
var ErrorInvalidTransition = errors.New("invalid status transition")
var ErrorPendingComments = errors.New("unresolved comments block this action")

// requiredRole maps each pending stage to the role that owns it.
func requiredRole(status InvoiceStatus) (ApproverRole, bool) {
	switch status {
	case InvoiceStatusL1Pending:
		return RoleL1, true
	case InvoiceStatusL2Pending:
		return RoleL2, true
	case InvoiceStatusL3Pending:
		return RoleL3, true
	case InvoiceStatusPMPending:
		return RolePMO, true
	}
	return "", false
}

// NextStatus computes the transition for an action from the current
// status without role checks. No backward moves except Reject.
func NextStatus(current InvoiceStatus, action ApprovalAction) (InvoiceStatus, error) {
	switch action {
	case ActionSubmit:
		if current == InvoiceStatusDraft || current == InvoiceStatusRejected {
			return InvoiceStatusL1Pending, nil
		}
	case ActionApprove:
		switch current {
		case InvoiceStatusL1Pending:
			return InvoiceStatusL2Pending, nil
		case InvoiceStatusL2Pending:
			return InvoiceStatusL3Pending, nil
		case InvoiceStatusL3Pending:
			return InvoiceStatusApproved, nil
		}
	case ActionReject:
		if current.IsPending() {
			return InvoiceStatusRejected, nil
		}
	case ActionPMRequest:
		if current == InvoiceStatusL1Pending {
			return InvoiceStatusPMPending, nil
		}
	case ActionPMResolve:
		if current == InvoiceStatusPMPending {
			return InvoiceStatusL1Pending, nil
		}
	case ActionDispatch:
		if current == InvoiceStatusApproved {
			return InvoiceStatusDispatched, nil
		}
	}
	return current, fmt.Errorf("%w: %s from %s", ErrorInvalidTransition, action, current)
}

// allowedRole checks whether the acting role may perform the action at the
// current stage. Admin may act anywhere.
func allowedRole(current InvoiceStatus, action ApprovalAction, actingRole ApproverRole) bool {
	if actingRole == RoleAdmin {
		return true
	}
	switch action {
	case ActionSubmit:
		// The L1 role owns the invoice and submits it into the chain.
		return actingRole == RoleL1
	case ActionApprove, ActionReject, ActionPMRequest:
		required, ok := requiredRole(current)
		return ok && actingRole == required
	case ActionPMResolve:
		return actingRole == RolePMO
	case ActionDispatch:
		return actingRole == RoleL1
	}
	return false
}

// ApplyApproval runs one role-gated action against the aggregate and
// returns the updated copy. Dispatch additionally requires all comments
// resolved.
func ApplyApproval(config *Configuration, action ApprovalAction, actingRole ApproverRole, user string) (*Configuration, error) {
	if config.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: %s from %s", ErrorInvalidTransition, action, config.Status)
	}
	if !allowedRole(config.Status, action, actingRole) {
		return nil, ErrorRoleNotAllowed
	}

	next, err := NextStatus(config.Status, action)
	if err != nil {
		return nil, err
	}

	if action == ActionDispatch && config.HasPendingComments() {
		return nil, ErrorPendingComments
	}

	out := config.Clone()
	out.Status = next
	out.touch(user)
	return out, nil
}
