package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"bitbucket.org/mmdatafocus/invoiceflow_backend/config"
	"bitbucket.org/mmdatafocus/invoiceflow_backend/models"
	"bitbucket.org/mmdatafocus/invoiceflow_backend/pdfservice"
	"bitbucket.org/mmdatafocus/invoiceflow_backend/utils"
)

// GenerateResult is what the handler returns to the client: either the
// rendered document's locations or the reason generation was refused.
type GenerateResult struct {
	Success     bool                     `json:"success"`
	InvoiceID   string                   `json:"invoiceId,omitempty"`
	DownloadURL string                   `json:"downloadUrl,omitempty"`
	PreviewURL  string                   `json:"previewUrl,omitempty"`
	FilePath    string                   `json:"filePath,omitempty"`
	Error       string                   `json:"error,omitempty"`
	Validation  *models.ValidationResult `json:"validation,omitempty"`
}

// GenerateInvoice runs the full generation gate for one configuration:
// in-flight lock, validation, pending comments, duplicate period check,
// then the external render call. External failures come back as
// {success:false,error} rather than an error.
func GenerateInvoice(ctx context.Context, repo models.ConfigurationRepository, configId string) (*GenerateResult, error) {
	if err := TryBeginGeneration(configId); err != nil {
		return nil, err
	}
	defer EndGeneration(configId)

	cfg, err := repo.Load(ctx, configId)
	if err != nil {
		return nil, err
	}

	// Validation is the sole gate before the external render call.
	validation := models.Validate(cfg)
	if !validation.IsValid {
		return &GenerateResult{
			Success:    false,
			Error:      "configuration failed validation",
			Validation: &validation,
		}, nil
	}

	if cfg.HasPendingComments() {
		return &GenerateResult{
			Success: false,
			Error:   "unresolved comments block generation",
		}, nil
	}

	// Refuse a duplicate invoice for the same project and period.
	exists, err := repo.Exists(ctx, cfg.ProjectID, cfg.Month, cfg.Year)
	if err != nil {
		return nil, err
	}
	if exists.Exists && exists.InvoiceId != cfg.ID {
		return &GenerateResult{
			Success: false,
			Error:   fmt.Sprintf("invoice %s already exists for this project and period", exists.InvoiceId),
		}, nil
	}

	client, err := pdfservice.NewClient()
	if err != nil {
		return &GenerateResult{Success: false, Error: err.Error()}, nil
	}

	rendered := client.Render(ctx, cfg)
	if !rendered.Success {
		return &GenerateResult{Success: false, Error: rendered.Error}, nil
	}

	mirrorRenderedPDF(ctx, client, cfg, rendered)

	if err := recordRenderResult(ctx, cfg.ID, rendered); err != nil {
		return nil, err
	}

	publishGeneratedEvent(ctx, cfg)

	return &GenerateResult{
		Success:     true,
		InvoiceID:   rendered.InvoiceID,
		DownloadURL: rendered.DownloadURL,
		PreviewURL:  rendered.PreviewURL,
		FilePath:    rendered.FilePath,
	}, nil
}

// mirrorRenderedPDF copies the rendered document into our own bucket.
// Best effort: a mirror failure never fails the generation.
func mirrorRenderedPDF(ctx context.Context, client *pdfservice.Client, cfg *models.Configuration, rendered pdfservice.Result) {
	if rendered.DownloadURL == "" {
		return
	}
	logger := config.GetLogger()
	data, err := client.FetchBytes(ctx, rendered.DownloadURL)
	if err != nil {
		config.LogWarn(logger, "workflow", "mirrorRenderedPDF", cfg.ID, "could not fetch rendered pdf: "+err.Error())
		return
	}
	objectName := fmt.Sprintf("invoices/%s/%d-%02d.pdf", cfg.ProjectID, cfg.Year, cfg.Month)
	if err := utils.UploadBytesToGCS(ctx, objectName, data, "application/pdf"); err != nil {
		config.LogWarn(logger, "workflow", "mirrorRenderedPDF", cfg.ID, "could not mirror pdf to gcs: "+err.Error())
	}
}

// publishGeneratedEvent emits invoice.generated to Pub/Sub. Best effort.
func publishGeneratedEvent(ctx context.Context, cfg *models.Configuration) {
	message := config.InvoiceEventMessage{
		ID:         uuid.NewString(),
		InvoiceID:  cfg.ID,
		ProjectID:  cfg.ProjectID,
		AccountID:  cfg.AccountID,
		Event:      config.InvoiceEventGenerated,
		Status:     string(cfg.Status),
		OccurredAt: time.Now().UTC(),
	}
	if _, err := config.PublishInvoiceEvent(ctx, message); err != nil {
		logger := config.GetLogger()
		config.LogError(logger, "workflow", "publishGeneratedEvent", cfg.ID, message, err)
	}
}

// recordRenderResult stores the document locations on the record row.
func recordRenderResult(ctx context.Context, configId string, rendered pdfservice.Result) error {
	db := config.GetDB()
	return db.WithContext(ctx).Model(&models.InvoiceRecord{}).
		Where("id = ?", configId).
		Updates(map[string]interface{}{
			"download_url": rendered.DownloadURL,
			"file_path":    rendered.FilePath,
		}).Error
}
