package models

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"bitbucket.org/mmdatafocus/invoiceflow_backend/config"
	"bitbucket.org/mmdatafocus/invoiceflow_backend/utils"
)

type Project struct {
	ID          string `gorm:"primary_key;size:36" json:"id"`
	Name        string `gorm:"size:150;not null" json:"name"`
	AccountId   string `gorm:"index;size:36" json:"account_id"`
	AccountName string `gorm:"size:150" json:"account_name"`
	Period      string `gorm:"size:50" json:"period"`
	IsActive    *bool  `gorm:"not null;default:true" json:"is_active"`

	Resources []ProjectResource `gorm:"foreignKey:ProjectId" json:"resources"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type ProjectResource struct {
	ID        int    `gorm:"primary_key" json:"id"`
	ProjectId string `gorm:"index;size:36;not null" json:"project_id"`
	Name      string `gorm:"size:100;not null" json:"name"`
	Role      string `gorm:"size:100" json:"role"`

	Rate        decimal.Decimal `gorm:"type:decimal(20,6);not null" json:"rate"`
	WeekendRate decimal.Decimal `gorm:"type:decimal(20,6)" json:"weekend_rate"`
	OtRate      decimal.Decimal `gorm:"type:decimal(20,6)" json:"ot_rate"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// ProjectInvoiceData is the slice of project data the configuration
// builder consumes: resource rates prepopulate hours rows.
type ProjectInvoiceData struct {
	ProjectID   string            `json:"projectId"`
	ProjectName string            `json:"projectName"`
	AccountID   string            `json:"accountId"`
	AccountName string            `json:"accountName"`
	Period      string            `json:"period"`
	Resources   []ProjectResource `json:"resources"`
}

/*
caches:
	ProjectInvoiceData:$projectId
*/

// GetProjectInvoiceData loads the project with its resources, redis-cached.
func GetProjectInvoiceData(ctx context.Context, projectId string) (*ProjectInvoiceData, error) {
	var result ProjectInvoiceData

	exists, err := config.GetRedisObject("ProjectInvoiceData:"+projectId, &result)
	if err != nil {
		return nil, err
	}
	if exists {
		return &result, nil
	}

	db := config.GetDB()
	var project Project
	err = db.WithContext(ctx).Preload("Resources").Where("id = ?", projectId).Take(&project).Error
	if err == gorm.ErrRecordNotFound {
		return nil, utils.ErrorRecordNotFound
	}
	if err != nil {
		return nil, err
	}

	result = ProjectInvoiceData{
		ProjectID:   project.ID,
		ProjectName: project.Name,
		AccountID:   project.AccountId,
		AccountName: project.AccountName,
		Period:      project.Period,
		Resources:   project.Resources,
	}

	if err := config.SetRedisObject("ProjectInvoiceData:"+projectId, &result, time.Hour); err != nil {
		return nil, err
	}

	return &result, nil
}

func (project Project) RemoveInstanceRedis() error {
	return config.RemoveRedisKey("ProjectInvoiceData:" + project.ID)
}
