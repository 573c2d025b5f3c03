package workflow

import (
	"context"
	"time"

	"github.com/google/uuid"

	"bitbucket.org/mmdatafocus/invoiceflow_backend/config"
	"bitbucket.org/mmdatafocus/invoiceflow_backend/models"
)

// ApplyApprovalAction loads the configuration, runs one role-gated state
// machine action, and saves, all under the per-id write lock. Returns the
// new status.
func ApplyApprovalAction(ctx context.Context, repo models.ConfigurationRepository, configId string, action models.ApprovalAction, actingRole models.ApproverRole, user string) (models.InvoiceStatus, error) {
	var status models.InvoiceStatus

	err := WithConfigurationLock(ctx, configId, func() error {
		cfg, err := repo.Load(ctx, configId)
		if err != nil {
			return err
		}

		next, err := models.ApplyApproval(cfg, action, actingRole, user)
		if err != nil {
			return err
		}

		saved, err := repo.Save(ctx, next)
		if err != nil {
			return err
		}
		status = saved.Status
		return nil
	})
	if err != nil {
		return "", err
	}

	publishStatusEvent(ctx, repo, configId, action, actingRole, user, status)
	return status, nil
}

// publishStatusEvent emits dispatch/reject events to Pub/Sub. Best effort:
// the state change already committed.
func publishStatusEvent(ctx context.Context, repo models.ConfigurationRepository, configId string, action models.ApprovalAction, actingRole models.ApproverRole, user string, status models.InvoiceStatus) {
	var event string
	switch action {
	case models.ActionDispatch:
		event = config.InvoiceEventDispatched
	case models.ActionReject:
		event = config.InvoiceEventRejected
	default:
		return
	}

	cfg, err := repo.Load(ctx, configId)
	if err != nil {
		return
	}

	message := config.InvoiceEventMessage{
		ID:         uuid.NewString(),
		InvoiceID:  configId,
		ProjectID:  cfg.ProjectID,
		AccountID:  cfg.AccountID,
		Event:      event,
		Status:     string(status),
		ActorID:    user,
		ActorRole:  string(actingRole),
		OccurredAt: time.Now().UTC(),
	}
	if _, err := config.PublishInvoiceEvent(ctx, message); err != nil {
		logger := config.GetLogger()
		config.LogError(logger, "workflow", "publishStatusEvent", configId, message, err)
	}
}

// SaveConfiguration persists a mutated aggregate under the per-id lock.
// User-triggered saves go through here; the auto-saver uses the same lock.
func SaveConfiguration(ctx context.Context, repo models.ConfigurationRepository, cfg *models.Configuration) (*models.Configuration, error) {
	var saved *models.Configuration
	err := WithConfigurationLock(ctx, cfg.ID, func() error {
		var serr error
		saved, serr = repo.Save(ctx, cfg)
		return serr
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}
