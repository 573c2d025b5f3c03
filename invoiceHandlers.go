package main

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"bitbucket.org/mmdatafocus/invoiceflow_backend/middlewares"
	"bitbucket.org/mmdatafocus/invoiceflow_backend/models"
	"bitbucket.org/mmdatafocus/invoiceflow_backend/models/reports"
	"bitbucket.org/mmdatafocus/invoiceflow_backend/utils"
	"bitbucket.org/mmdatafocus/invoiceflow_backend/workflow"
)

// InvoiceHandler carries the handler dependencies. Instantiated once at
// process start; no hidden globals.
type InvoiceHandler struct {
	repo      models.ConfigurationRepository
	autoSaver *workflow.AutoSaver
}

func NewInvoiceHandler(repo models.ConfigurationRepository, autoSaver *workflow.AutoSaver) *InvoiceHandler {
	return &InvoiceHandler{repo: repo, autoSaver: autoSaver}
}

func actingUser(c *gin.Context) (userName string, role models.ApproverRole, ok bool) {
	claim := middlewares.CtxValue(c.Request.Context())
	if claim == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return "", "", false
	}
	parsedRole, err := models.ParseApproverRole(claim.Role)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return "", "", false
	}
	return strconv.Itoa(claim.ID), parsedRole, true
}

func writeMutationError(c *gin.Context, err error) {
	switch err {
	case utils.ErrorRecordNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case utils.ErrorStaleWrite:
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case utils.ErrorDispatched:
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case utils.ErrorAlreadyGenerating:
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case models.ErrorRoleNotAllowed, models.ErrorPendingComments:
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}

func listTemplatesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"templates": models.ListTemplates()})
	}
}

func getTemplateHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := models.ParseTemplateID(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown template id"})
			return
		}
		template, ok := models.GetTemplate(id)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown template id"})
			return
		}
		c.JSON(http.StatusOK, template)
	}
}

type createInvoiceRequest struct {
	Template  string `json:"template" binding:"required"`
	ProjectId string `json:"project_id" binding:"required"`
	Month     int    `json:"month" binding:"required,min=1,max=12"`
	Year      int    `json:"year" binding:"required"`
}

func (h *InvoiceHandler) createInvoiceHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, _, ok := actingUser(c)
		if !ok {
			return
		}

		var req createInvoiceRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}

		templateId, err := models.ParseTemplateID(req.Template)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown template id"})
			return
		}
		template, tok := models.GetTemplate(templateId)
		if !tok {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown template id"})
			return
		}

		exists, err := h.repo.Exists(c.Request.Context(), req.ProjectId, req.Month, req.Year)
		if err != nil {
			writeMutationError(c, err)
			return
		}
		if exists.Exists {
			c.JSON(http.StatusConflict, gin.H{
				"error":      "invoice already exists for this project and period",
				"invoice_id": exists.InvoiceId,
				"status":     exists.Status,
			})
			return
		}

		project, err := models.GetProjectInvoiceData(c.Request.Context(), req.ProjectId)
		if err != nil {
			writeMutationError(c, err)
			return
		}

		cfg := models.NewConfiguration(template, project, req.Month, req.Year, user)
		saved, err := workflow.SaveConfiguration(c.Request.Context(), h.repo, cfg)
		if err != nil {
			writeMutationError(c, err)
			return
		}
		c.JSON(http.StatusCreated, saved)
	}
}

func (h *InvoiceHandler) getInvoiceHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		cfg, err := h.repo.Load(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeMutationError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"configuration": cfg,
			"legacy_status": cfg.LegacyStatus(),
			"validation":    models.Validate(cfg),
		})
	}
}

func (h *InvoiceHandler) listInvoicesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		records, err := models.ListInvoiceRecords(c.Request.Context(), c.Query("status"))
		if err != nil {
			writeMutationError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"invoices": records})
	}
}

func (h *InvoiceHandler) invoiceExistsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		month, err := strconv.Atoi(c.Query("month"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "month is required"})
			return
		}
		year, err := strconv.Atoi(c.Query("year"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "year is required"})
			return
		}
		projectId := c.Query("project_id")
		if projectId == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "project_id is required"})
			return
		}

		result, err := h.repo.Exists(c.Request.Context(), projectId, month, year)
		if err != nil {
			writeMutationError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

// mutate loads the aggregate, applies fn, saves under the per-id lock and
// queues the result for auto-save.
func (h *InvoiceHandler) mutate(c *gin.Context, fn func(cfg *models.Configuration) (*models.Configuration, error)) {
	cfg, err := h.repo.Load(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeMutationError(c, err)
		return
	}

	next, err := fn(cfg)
	if err != nil {
		writeMutationError(c, err)
		return
	}

	saved, err := workflow.SaveConfiguration(c.Request.Context(), h.repo, next)
	if err != nil {
		writeMutationError(c, err)
		return
	}
	h.autoSaver.Queue(saved)
	c.JSON(http.StatusOK, saved)
}

type updateCommonFieldRequest struct {
	Field string `json:"field" binding:"required"`
	Value string `json:"value"`
}

func (h *InvoiceHandler) updateCommonFieldHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, _, ok := actingUser(c)
		if !ok {
			return
		}
		var req updateCommonFieldRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
		if req.Field == "phoneNumber" && req.Value != "" {
			if err := utils.ValidatePhoneNumber(req.Value, utils.CountryCode); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid phone number"})
				return
			}
		}
		h.mutate(c, func(cfg *models.Configuration) (*models.Configuration, error) {
			return models.UpdateCommonField(cfg, req.Field, req.Value, user)
		})
	}
}

type updateSectionDataRequest struct {
	Rows []models.Row `json:"rows"`
}

func (h *InvoiceHandler) updateSectionDataHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, _, ok := actingUser(c)
		if !ok {
			return
		}
		var req updateSectionDataRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
		h.mutate(c, func(cfg *models.Configuration) (*models.Configuration, error) {
			return models.UpdateSectionData(cfg, c.Param("sectionId"), req.Rows, user)
		})
	}
}

type addSectionRequest struct {
	SectionType string `json:"section_type" binding:"required"`
}

func (h *InvoiceHandler) addSectionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, _, ok := actingUser(c)
		if !ok {
			return
		}
		var req addSectionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
		sectionType, err := models.ParseSectionType(req.SectionType)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.mutate(c, func(cfg *models.Configuration) (*models.Configuration, error) {
			return models.AddSection(cfg, sectionType, user)
		})
	}
}

func (h *InvoiceHandler) removeSectionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, _, ok := actingUser(c)
		if !ok {
			return
		}
		h.mutate(c, func(cfg *models.Configuration) (*models.Configuration, error) {
			return models.RemoveSection(cfg, c.Param("sectionId"), user)
		})
	}
}

type updateAdditionalFieldRequest struct {
	FieldKey string `json:"field_key" binding:"required"`
	Value    string `json:"value"`
}

func (h *InvoiceHandler) updateAdditionalFieldHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, _, ok := actingUser(c)
		if !ok {
			return
		}
		var req updateAdditionalFieldRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
		h.mutate(c, func(cfg *models.Configuration) (*models.Configuration, error) {
			return models.UpdateAdditionalTemplateField(cfg, req.FieldKey, req.Value, user)
		})
	}
}

type addCommentRequest struct {
	Text   string `json:"text" binding:"required"`
	Author string `json:"author" binding:"required"`
	Type   string `json:"type" binding:"required"`
}

func (h *InvoiceHandler) addCommentHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, _, ok := actingUser(c)
		if !ok {
			return
		}
		var req addCommentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
		commentType, err := models.ParseCommentType(req.Type)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		claim := middlewares.CtxValue(c.Request.Context())
		comment := models.NewComment(req.Text, req.Author, claim.ID, commentType)
		h.mutate(c, func(cfg *models.Configuration) (*models.Configuration, error) {
			return models.AddComment(cfg, comment, user)
		})
	}
}

func (h *InvoiceHandler) listCommentsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		cfg, err := h.repo.Load(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeMutationError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"comments": cfg.Comments})
	}
}

func (h *InvoiceHandler) resolveCommentHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, role, ok := actingUser(c)
		if !ok {
			return
		}
		if role != models.RolePMO && role != models.RoleAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "only PMO may resolve comments"})
			return
		}
		h.mutate(c, func(cfg *models.Configuration) (*models.Configuration, error) {
			return models.ResolveComment(cfg, c.Param("commentId"), user)
		})
	}
}

func (h *InvoiceHandler) approvalActionHandler(action models.ApprovalAction) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, role, ok := actingUser(c)
		if !ok {
			return
		}
		status, err := workflow.ApplyApprovalAction(c.Request.Context(), h.repo, c.Param("id"), action, role, user)
		if err != nil {
			writeMutationError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": string(status)})
	}
}

func (h *InvoiceHandler) generateInvoiceHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, _, ok := actingUser(c); !ok {
			return
		}
		result, err := workflow.GenerateInvoice(c.Request.Context(), h.repo, c.Param("id"))
		if err != nil {
			writeMutationError(c, err)
			return
		}
		if !result.Success {
			c.JSON(http.StatusUnprocessableEntity, result)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func (h *InvoiceHandler) validateInvoiceHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		cfg, err := h.repo.Load(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeMutationError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.Validate(cfg))
	}
}

func (h *InvoiceHandler) exportInvoiceHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		cfg, err := h.repo.Load(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeMutationError(c, err)
			return
		}
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Disposition", "attachment; filename=invoice-"+cfg.ID+".xlsx")
		if err := reports.WriteInvoiceExcel(cfg, c.Writer); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to write file"})
		}
	}
}
