package models

import (
	"errors"
	"testing"
)

func TestNextStatus_FullChain(t *testing.T) {
	cases := []struct {
		current InvoiceStatus
		action  ApprovalAction
		next    InvoiceStatus
	}{
		{InvoiceStatusDraft, ActionSubmit, InvoiceStatusL1Pending},
		{InvoiceStatusL1Pending, ActionApprove, InvoiceStatusL2Pending},
		{InvoiceStatusL2Pending, ActionApprove, InvoiceStatusL3Pending},
		{InvoiceStatusL3Pending, ActionApprove, InvoiceStatusApproved},
		{InvoiceStatusApproved, ActionDispatch, InvoiceStatusDispatched},
		{InvoiceStatusRejected, ActionSubmit, InvoiceStatusL1Pending},
		{InvoiceStatusL1Pending, ActionPMRequest, InvoiceStatusPMPending},
		{InvoiceStatusPMPending, ActionPMResolve, InvoiceStatusL1Pending},
		{InvoiceStatusL1Pending, ActionReject, InvoiceStatusRejected},
		{InvoiceStatusL2Pending, ActionReject, InvoiceStatusRejected},
		{InvoiceStatusL3Pending, ActionReject, InvoiceStatusRejected},
		{InvoiceStatusPMPending, ActionReject, InvoiceStatusRejected},
	}
	for _, tc := range cases {
		next, err := NextStatus(tc.current, tc.action)
		if err != nil {
			t.Fatalf("NextStatus(%s, %s) error: %v", tc.current, tc.action, err)
		}
		if next != tc.next {
			t.Fatalf("NextStatus(%s, %s) expected %s, got %s", tc.current, tc.action, tc.next, next)
		}
	}
}

func TestNextStatus_InvalidTransitions(t *testing.T) {
	cases := []struct {
		current InvoiceStatus
		action  ApprovalAction
	}{
		{InvoiceStatusDraft, ActionApprove},
		{InvoiceStatusDraft, ActionDispatch},
		{InvoiceStatusApproved, ActionApprove},
		{InvoiceStatusApproved, ActionSubmit},
		{InvoiceStatusL2Pending, ActionPMRequest},
		{InvoiceStatusL1Pending, ActionPMResolve},
		{InvoiceStatusL2Pending, ActionDispatch},
	}
	for _, tc := range cases {
		if _, err := NextStatus(tc.current, tc.action); !errors.Is(err, ErrorInvalidTransition) {
			t.Fatalf("NextStatus(%s, %s) expected ErrorInvalidTransition, got %v", tc.current, tc.action, err)
		}
	}
}

func TestApplyApproval_RoleGates(t *testing.T) {
	cases := []struct {
		status  InvoiceStatus
		action  ApprovalAction
		role    ApproverRole
		allowed bool
	}{
		{InvoiceStatusDraft, ActionSubmit, RoleL1, true},
		{InvoiceStatusDraft, ActionSubmit, RoleL2, false},
		{InvoiceStatusL1Pending, ActionApprove, RoleL1, true},
		{InvoiceStatusL1Pending, ActionApprove, RoleL2, false},
		{InvoiceStatusL2Pending, ActionApprove, RoleL2, true},
		{InvoiceStatusL2Pending, ActionApprove, RoleL1, false},
		{InvoiceStatusL3Pending, ActionApprove, RoleL3, true},
		{InvoiceStatusL3Pending, ActionReject, RoleL3, true},
		{InvoiceStatusL3Pending, ActionReject, RoleL2, false},
		{InvoiceStatusL1Pending, ActionPMRequest, RoleL1, true},
		{InvoiceStatusL1Pending, ActionPMRequest, RolePMO, false},
		{InvoiceStatusPMPending, ActionPMResolve, RolePMO, true},
		{InvoiceStatusPMPending, ActionPMResolve, RoleL1, false},
		{InvoiceStatusApproved, ActionDispatch, RoleL1, true},
		{InvoiceStatusApproved, ActionDispatch, RoleL3, false},
		{InvoiceStatusL2Pending, ActionApprove, RoleAdmin, true},
		{InvoiceStatusApproved, ActionDispatch, RoleAdmin, true},
	}
	for _, tc := range cases {
		config := draftConfiguration(t, Template1)
		config.Status = tc.status

		out, err := ApplyApproval(config, tc.action, tc.role, "actor")
		if tc.allowed {
			if err != nil {
				t.Fatalf("ApplyApproval(%s, %s, %s) error: %v", tc.status, tc.action, tc.role, err)
			}
			if out.Status == tc.status && tc.action != ActionReject {
				t.Fatalf("ApplyApproval(%s, %s, %s) did not advance status", tc.status, tc.action, tc.role)
			}
		} else {
			if err != ErrorRoleNotAllowed {
				t.Fatalf("ApplyApproval(%s, %s, %s) expected ErrorRoleNotAllowed, got %v", tc.status, tc.action, tc.role, err)
			}
		}
	}
}

func TestApplyApproval_FullChainToDispatch(t *testing.T) {
	config := draftConfiguration(t, Template1)

	steps := []struct {
		action ApprovalAction
		role   ApproverRole
		next   InvoiceStatus
	}{
		{ActionSubmit, RoleL1, InvoiceStatusL1Pending},
		{ActionApprove, RoleL1, InvoiceStatusL2Pending},
		{ActionApprove, RoleL2, InvoiceStatusL3Pending},
		{ActionApprove, RoleL3, InvoiceStatusApproved},
		{ActionDispatch, RoleL1, InvoiceStatusDispatched},
	}
	for _, step := range steps {
		out, err := ApplyApproval(config, step.action, step.role, "actor")
		if err != nil {
			t.Fatalf("%s by %s error: %v", step.action, step.role, err)
		}
		if out.Status != step.next {
			t.Fatalf("%s by %s expected %s, got %s", step.action, step.role, step.next, out.Status)
		}
		config = out
	}

	// Terminal: nothing moves a dispatched invoice.
	if _, err := ApplyApproval(config, ActionReject, RoleAdmin, "actor"); !errors.Is(err, ErrorInvalidTransition) {
		t.Fatalf("action on dispatched invoice expected ErrorInvalidTransition, got %v", err)
	}
}

func TestApplyApproval_DispatchBlockedByPendingComments(t *testing.T) {
	config := draftConfiguration(t, Template1)
	config.Status = InvoiceStatusApproved
	config.Comments = append(config.Comments, NewComment("fix rates", "reviewer", 3, CommentTypeCorrection))

	if _, err := ApplyApproval(config, ActionDispatch, RoleL1, "actor"); err != ErrorPendingComments {
		t.Fatalf("dispatch with pending comment expected ErrorPendingComments, got %v", err)
	}

	config.Comments[0].Status = CommentStatusResolved
	out, err := ApplyApproval(config, ActionDispatch, RoleL1, "actor")
	if err != nil {
		t.Fatalf("dispatch after resolve error: %v", err)
	}
	if out.Status != InvoiceStatusDispatched {
		t.Fatalf("expected Dispatched, got %s", out.Status)
	}
}

func TestApplyApproval_DoesNotMutateInput(t *testing.T) {
	config := draftConfiguration(t, Template1)
	out, err := ApplyApproval(config, ActionSubmit, RoleL1, "actor")
	if err != nil {
		t.Fatalf("ApplyApproval error: %v", err)
	}
	if config.Status != InvoiceStatusDraft {
		t.Fatalf("input aggregate mutated: %s", config.Status)
	}
	if out.Status != InvoiceStatusL1Pending {
		t.Fatalf("expected L1 Pending, got %s", out.Status)
	}
}
