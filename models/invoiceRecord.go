package models

import (
	"context"
	"time"

	"gorm.io/gorm"

	"bitbucket.org/mmdatafocus/invoiceflow_backend/config"
	"bitbucket.org/mmdatafocus/invoiceflow_backend/utils"
)

// InvoiceRecord persists one configuration aggregate as a JSON blob.
//
// ConfigJson is stored as JSON text to avoid requiring MySQL JSON column
// support; the aggregate round-trips exactly through it. Version backs
// optimistic concurrency on save.
type InvoiceRecord struct {
	ID        string `gorm:"primary_key;size:36" json:"id"`
	ProjectId string `gorm:"not null;index:idx_ir_proj_period,priority:1" json:"project_id"`
	AccountId string `gorm:"index" json:"account_id"`

	Month int `gorm:"not null;index:idx_ir_proj_period,priority:2" json:"month"`
	Year  int `gorm:"not null;index:idx_ir_proj_period,priority:3" json:"year"`

	Template string        `gorm:"size:50;not null" json:"template"`
	Status   InvoiceStatus `gorm:"size:20;not null" json:"status"`

	ConfigJson string `gorm:"type:longtext" json:"config_json"`

	Version int `gorm:"not null;default:1" json:"version"`

	DownloadUrl string `json:"download_url"`
	FilePath    string `json:"file_path"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// ConfigurationRepository is the persistence boundary for the aggregate.
// Mutators stay pure; callers load, mutate, save.
type ConfigurationRepository interface {
	Save(ctx context.Context, config *Configuration) (*Configuration, error)
	Load(ctx context.Context, id string) (*Configuration, error)
	Exists(ctx context.Context, projectId string, month int, year int) (*ExistsResult, error)
}

type ExistsResult struct {
	Exists    bool          `json:"exists"`
	InvoiceId string        `json:"invoiceId,omitempty"`
	Status    InvoiceStatus `json:"status,omitempty"`
}

type gormConfigurationRepository struct {
	db *gorm.DB
}

// NewConfigurationRepository returns the gorm-backed repository. A nil db
// falls back to the shared connection at call time, so the repository can
// be constructed before the database is ready.
func NewConfigurationRepository(db *gorm.DB) ConfigurationRepository {
	return &gormConfigurationRepository{db: db}
}

func (r *gormConfigurationRepository) database() *gorm.DB {
	if r.db != nil {
		return r.db
	}
	return config.GetDB()
}

// Save writes the aggregate. New records insert at version 1; existing
// records only update when the caller's version matches the persisted one,
// otherwise ErrorStaleWrite. Dispatched records never accept writes.
func (r *gormConfigurationRepository) Save(ctx context.Context, cfg *Configuration) (*Configuration, error) {
	var existing InvoiceRecord
	err := r.database().WithContext(ctx).Where("id = ?", cfg.ID).Take(&existing).Error
	if err != nil && err != gorm.ErrRecordNotFound {
		return nil, err
	}

	out := cfg.Clone()

	if err == gorm.ErrRecordNotFound {
		blob, merr := utils.MarshalToJSON(out)
		if merr != nil {
			return nil, merr
		}
		record := InvoiceRecord{
			ID:         out.ID,
			ProjectId:  out.ProjectID,
			AccountId:  out.AccountID,
			Month:      out.Month,
			Year:       out.Year,
			Template:   string(out.Template),
			Status:     out.Status,
			ConfigJson: blob,
			Version:    out.Version,
		}
		if cerr := r.database().WithContext(ctx).Create(&record).Error; cerr != nil {
			return nil, cerr
		}
		return out, nil
	}

	if existing.Status.IsTerminal() && config.StrictDispatchImmutability() {
		return nil, utils.ErrorDispatched
	}
	if existing.Version != out.Version {
		return nil, utils.ErrorStaleWrite
	}

	out.Version++
	blob, merr := utils.MarshalToJSON(out)
	if merr != nil {
		return nil, merr
	}

	result := r.database().WithContext(ctx).Model(&InvoiceRecord{}).
		Where("id = ? AND version = ?", out.ID, existing.Version).
		Updates(map[string]interface{}{
			"config_json": blob,
			"status":      out.Status,
			"version":     out.Version,
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, utils.ErrorStaleWrite
	}
	return out, nil
}

func (r *gormConfigurationRepository) Load(ctx context.Context, id string) (*Configuration, error) {
	var record InvoiceRecord
	err := r.database().WithContext(ctx).Where("id = ?", id).Take(&record).Error
	if err == gorm.ErrRecordNotFound {
		return nil, utils.ErrorRecordNotFound
	}
	if err != nil {
		return nil, err
	}

	var config Configuration
	if err := utils.UnmarshalFromJSON([]byte(record.ConfigJson), &config); err != nil {
		return nil, err
	}
	// The record's version column is authoritative.
	config.Version = record.Version
	return &config, nil
}

// Exists reports whether an invoice already covers the project/period.
// Duplicate generation for the same period must be refused.
func (r *gormConfigurationRepository) Exists(ctx context.Context, projectId string, month int, year int) (*ExistsResult, error) {
	var record InvoiceRecord
	err := r.database().WithContext(ctx).
		Where("project_id = ? AND month = ? AND year = ?", projectId, month, year).
		Take(&record).Error
	if err == gorm.ErrRecordNotFound {
		return &ExistsResult{Exists: false}, nil
	}
	if err != nil {
		return nil, err
	}
	return &ExistsResult{Exists: true, InvoiceId: record.ID, Status: record.Status}, nil
}

// CheckInvoiceExists is the package-level convenience over the default DB.
func CheckInvoiceExists(ctx context.Context, projectId string, month int, year int) (*ExistsResult, error) {
	repo := NewConfigurationRepository(config.GetDB())
	return repo.Exists(ctx, projectId, month, year)
}

// ListInvoiceRecords returns lightweight records, newest first, optionally
// filtered by status.
func ListInvoiceRecords(ctx context.Context, status string) ([]InvoiceRecord, error) {
	db := config.GetDB()
	var records []InvoiceRecord

	query := db.WithContext(ctx).Model(&InvoiceRecord{}).
		Select("id, project_id, account_id, month, year, template, status, version, download_url, file_path, created_at, updated_at").
		Order("updated_at DESC")
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
