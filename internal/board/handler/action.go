package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmerrifield20/threadboard/internal/board/model"
	"github.com/jmerrifield20/threadboard/internal/board/service"
	"github.com/jmerrifield20/threadboard/internal/identity"
	"go.uber.org/zap"
)

// ActionHandler exposes the moderation action audit trail.
type ActionHandler struct {
	mod    *service.ModerationService
	tokens *identity.TokenIssuer
	logger *zap.Logger
}

// NewActionHandler creates a new ActionHandler.
func NewActionHandler(mod *service.ModerationService, tokens *identity.TokenIssuer, logger *zap.Logger) *ActionHandler {
	return &ActionHandler{mod: mod, tokens: tokens, logger: logger}
}

// Register mounts the moderation action routes on the given router group.
func (h *ActionHandler) Register(rg *gin.RouterGroup) {
	actions := rg.Group("/moderationActions", identity.RequireUser(h.tokens))
	{
		actions.POST("", h.CreateAction)
		actions.GET("", h.ListActions)
		actions.GET("/:id", h.GetAction)
		actions.DELETE("/:id", h.RetireAction)
	}
}

// CreateAction handles POST /moderationActions.
func (h *ActionHandler) CreateAction(c *gin.Context) {
	var req model.CreateModerationActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	action, err := h.mod.ApplyModerationAction(c.Request.Context(), identity.PrincipalFromCtx(c), &req)
	if err != nil {
		writeError(c, h.logger, "apply moderation action", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"action": action})
}

// ListActions handles GET /moderationActions. Retired actions are hidden
// unless include_retired=true.
func (h *ActionHandler) ListActions(c *gin.Context) {
	var (
		f   model.ActionFilter
		err error
	)
	if f.ReportID, err = queryUUID(c, "report_id"); err != nil {
		writeError(c, h.logger, "list moderation actions", err)
		return
	}
	if f.TargetPostID, err = queryUUID(c, "target_post_id"); err != nil {
		writeError(c, h.logger, "list moderation actions", err)
		return
	}
	if f.TargetCommentID, err = queryUUID(c, "target_comment_id"); err != nil {
		writeError(c, h.logger, "list moderation actions", err)
		return
	}
	if f.IncludeRetired, err = queryBool(c, "include_retired"); err != nil {
		writeError(c, h.logger, "list moderation actions", err)
		return
	}
	if t := model.ActionType(c.Query("action_type")); t != "" {
		if !t.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown action_type"})
			return
		}
		f.ActionType = t
	}
	req, err := pageRequest(c, model.ActionSortColumns)
	if err != nil {
		writeError(c, h.logger, "list moderation actions", err)
		return
	}

	page, err := h.mod.ListModerationActions(c.Request.Context(), identity.PrincipalFromCtx(c), f, req)
	if err != nil {
		writeError(c, h.logger, "list moderation actions", err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// GetAction handles GET /moderationActions/:id. Retired actions remain
// readable by staff.
func (h *ActionHandler) GetAction(c *gin.Context) {
	id, err := pathUUID(c, "id")
	if err != nil {
		writeError(c, h.logger, "get moderation action", err)
		return
	}
	action, err := h.mod.GetModerationAction(c.Request.Context(), identity.PrincipalFromCtx(c), id)
	if err != nil {
		writeError(c, h.logger, "get moderation action", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"action": action})
}

// RetireAction handles DELETE /moderationActions/:id. The row is kept with a
// retirement marker; the moderated content is not restored.
func (h *ActionHandler) RetireAction(c *gin.Context) {
	id, err := pathUUID(c, "id")
	if err != nil {
		writeError(c, h.logger, "retire moderation action", err)
		return
	}
	action, err := h.mod.RetireModerationAction(c.Request.Context(), identity.PrincipalFromCtx(c), id)
	if err != nil {
		writeError(c, h.logger, "retire moderation action", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"action": action})
}
