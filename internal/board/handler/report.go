package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmerrifield20/threadboard/internal/board/model"
	"github.com/jmerrifield20/threadboard/internal/board/service"
	"github.com/jmerrifield20/threadboard/internal/identity"
	"go.uber.org/zap"
)

// ReportHandler handles content reports filed by members and closed by staff.
type ReportHandler struct {
	mod    *service.ModerationService
	tokens *identity.TokenIssuer
	logger *zap.Logger
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(mod *service.ModerationService, tokens *identity.TokenIssuer, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{mod: mod, tokens: tokens, logger: logger}
}

// Register mounts the report routes on the given router group.
func (h *ReportHandler) Register(rg *gin.RouterGroup) {
	reports := rg.Group("/reports", identity.RequireUser(h.tokens))
	{
		reports.POST("", h.CreateReport)
		reports.GET("", h.ListReports)
		reports.GET("/:id", h.GetReport)
		reports.PUT("/:id", h.ResolveReport)
	}
}

// CreateReport handles POST /reports.
func (h *ReportHandler) CreateReport(c *gin.Context) {
	var req model.CreateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	report, err := h.mod.CreateReport(c.Request.Context(), identity.PrincipalFromCtx(c), &req)
	if err != nil {
		writeError(c, h.logger, "create report", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"report": report})
}

// ListReports handles GET /reports?status=&reporter_id=.
func (h *ReportHandler) ListReports(c *gin.Context) {
	f := model.ReportFilter{Status: model.ReportStatus(c.Query("status"))}
	if f.Status != "" && f.Status != model.ReportPending && !f.Status.Terminal() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status must be pending, resolved or rejected"})
		return
	}
	var err error
	if f.ReporterID, err = queryUUID(c, "reporter_id"); err != nil {
		writeError(c, h.logger, "list reports", err)
		return
	}
	req, err := pageRequest(c, model.ReportSortColumns)
	if err != nil {
		writeError(c, h.logger, "list reports", err)
		return
	}

	page, err := h.mod.ListReports(c.Request.Context(), identity.PrincipalFromCtx(c), f, req)
	if err != nil {
		writeError(c, h.logger, "list reports", err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// GetReport handles GET /reports/:id.
func (h *ReportHandler) GetReport(c *gin.Context) {
	id, err := pathUUID(c, "id")
	if err != nil {
		writeError(c, h.logger, "get report", err)
		return
	}
	report, err := h.mod.GetReport(c.Request.Context(), identity.PrincipalFromCtx(c), id)
	if err != nil {
		writeError(c, h.logger, "get report", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"report": report})
}

// ResolveReport handles PUT /reports/:id. The body may carry an action to
// enforce against the reported content.
func (h *ReportHandler) ResolveReport(c *gin.Context) {
	id, err := pathUUID(c, "id")
	if err != nil {
		writeError(c, h.logger, "resolve report", err)
		return
	}
	var req model.ResolveReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report, action, err := h.mod.ResolveReport(c.Request.Context(), identity.PrincipalFromCtx(c), id, &req)
	if err != nil {
		writeError(c, h.logger, "resolve report", err)
		return
	}
	resp := gin.H{"report": report}
	if action != nil {
		resp["action"] = action
	}
	c.JSON(http.StatusOK, resp)
}
