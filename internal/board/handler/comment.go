package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jmerrifield20/threadboard/internal/board/model"
	"github.com/jmerrifield20/threadboard/internal/board/service"
	"github.com/jmerrifield20/threadboard/internal/identity"
	"go.uber.org/zap"
)

// CommentHandler handles HTTP requests for threaded comments.
type CommentHandler struct {
	threads *service.ThreadService
	tokens  *identity.TokenIssuer
	logger  *zap.Logger
}

// NewCommentHandler creates a new CommentHandler.
func NewCommentHandler(threads *service.ThreadService, tokens *identity.TokenIssuer, logger *zap.Logger) *CommentHandler {
	return &CommentHandler{threads: threads, tokens: tokens, logger: logger}
}

// Register mounts the comment routes on the given router group.
func (h *CommentHandler) Register(rg *gin.RouterGroup) {
	comments := rg.Group("/comments", identity.RequireUser(h.tokens))
	{
		comments.POST("", h.CreateComment)
		comments.GET("", h.ListComments)
		comments.GET("/:id", h.GetComment)
		comments.PUT("/:id", h.EditComment)
		comments.DELETE("/:id", h.DeleteComment)
		comments.GET("/:id/replies", h.ListReplies)
		comments.POST("/:id/replies", h.CreateReply)
	}
}

// CreateComment handles POST /comments and starts a new thread on a post.
func (h *CommentHandler) CreateComment(c *gin.Context) {
	var req model.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	postID, err := uuid.Parse(req.PostID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "post_id must be a UUID"})
		return
	}

	comment, err := h.threads.CreateRootComment(c.Request.Context(), identity.PrincipalFromCtx(c), postID, req.Body)
	if err != nil {
		writeError(c, h.logger, "create comment", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"comment": comment})
}

// CreateReply handles POST /comments/:id/replies.
func (h *CommentHandler) CreateReply(c *gin.Context) {
	parentID, err := pathUUID(c, "id")
	if err != nil {
		writeError(c, h.logger, "create reply", err)
		return
	}
	var req model.CreateReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	comment, err := h.threads.CreateReply(c.Request.Context(), identity.PrincipalFromCtx(c), parentID, req.Body)
	if err != nil {
		writeError(c, h.logger, "create reply", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"comment": comment})
}

// GetComment handles GET /comments/:id.
func (h *CommentHandler) GetComment(c *gin.Context) {
	id, err := pathUUID(c, "id")
	if err != nil {
		writeError(c, h.logger, "get comment", err)
		return
	}
	comment, err := h.threads.GetComment(c.Request.Context(), identity.PrincipalFromCtx(c), id)
	if err != nil {
		writeError(c, h.logger, "get comment", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"comment": comment})
}

// ListComments handles GET /comments. Filters: post_id, parent_id,
// author_id, roots_only and include_deleted (staff only).
func (h *CommentHandler) ListComments(c *gin.Context) {
	f, err := commentFilter(c)
	if err != nil {
		writeError(c, h.logger, "list comments", err)
		return
	}
	req, err := pageRequest(c, model.CommentSortColumns)
	if err != nil {
		writeError(c, h.logger, "list comments", err)
		return
	}

	page, err := h.threads.ListComments(c.Request.Context(), identity.PrincipalFromCtx(c), f, req)
	if err != nil {
		writeError(c, h.logger, "list comments", err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func commentFilter(c *gin.Context) (model.CommentFilter, error) {
	var f model.CommentFilter
	var err error
	if f.PostID, err = queryUUID(c, "post_id"); err != nil {
		return f, err
	}
	if f.ParentID, err = queryUUID(c, "parent_id"); err != nil {
		return f, err
	}
	if f.AuthorID, err = queryUUID(c, "author_id"); err != nil {
		return f, err
	}
	if f.RootsOnly, err = queryBool(c, "roots_only"); err != nil {
		return f, err
	}
	f.IncludeDeleted, err = queryBool(c, "include_deleted")
	return f, err
}

// ListReplies handles GET /comments/:id/replies.
func (h *CommentHandler) ListReplies(c *gin.Context) {
	id, err := pathUUID(c, "id")
	if err != nil {
		writeError(c, h.logger, "list replies", err)
		return
	}
	req, err := pageRequest(c, model.CommentSortColumns)
	if err != nil {
		writeError(c, h.logger, "list replies", err)
		return
	}

	page, err := h.threads.ListReplies(c.Request.Context(), identity.PrincipalFromCtx(c), id, req)
	if err != nil {
		writeError(c, h.logger, "list replies", err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// EditComment handles PUT /comments/:id.
func (h *CommentHandler) EditComment(c *gin.Context) {
	id, err := pathUUID(c, "id")
	if err != nil {
		writeError(c, h.logger, "edit comment", err)
		return
	}
	var req model.EditCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	comment, err := h.threads.EditComment(c.Request.Context(), identity.PrincipalFromCtx(c), id, req.Body)
	if err != nil {
		writeError(c, h.logger, "edit comment", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"comment": comment})
}

// DeleteComment handles DELETE /comments/:id. Replies are left in place.
func (h *CommentHandler) DeleteComment(c *gin.Context) {
	id, err := pathUUID(c, "id")
	if err != nil {
		writeError(c, h.logger, "delete comment", err)
		return
	}
	if err := h.threads.SoftDeleteComment(c.Request.Context(), identity.PrincipalFromCtx(c), id); err != nil {
		writeError(c, h.logger, "delete comment", err)
		return
	}
	c.Status(http.StatusNoContent)
}
