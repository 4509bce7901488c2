package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jmerrifield20/threadboard/internal/auditlog"
	"github.com/jmerrifield20/threadboard/internal/board/policy"
	"github.com/jmerrifield20/threadboard/internal/identity"
	"go.uber.org/zap"
)

// AuditHandler exposes read-only endpoints for the moderation hash chain.
type AuditHandler struct {
	chain  auditlog.Chain
	tokens *identity.TokenIssuer
	logger *zap.Logger
}

// NewAuditHandler creates a new AuditHandler.
func NewAuditHandler(chain auditlog.Chain, tokens *identity.TokenIssuer, logger *zap.Logger) *AuditHandler {
	return &AuditHandler{chain: chain, tokens: tokens, logger: logger}
}

// Register mounts the audit routes on the given router group. All routes
// are staff only.
func (h *AuditHandler) Register(rg *gin.RouterGroup) {
	a := rg.Group("/audit", identity.RequireUser(h.tokens), h.requireStaff)
	{
		a.GET("", h.Overview)
		a.GET("/verify", h.Verify)
		a.GET("/entries/:idx", h.GetEntry)
	}
}

func (h *AuditHandler) requireStaff(c *gin.Context) {
	if err := policy.CanPerform(identity.PrincipalFromCtx(c), policy.OpActionView, policy.Subject{}); err != nil {
		writeError(c, h.logger, "audit", err)
		c.Abort()
		return
	}
	c.Next()
}

// Overview handles GET /audit and returns the chain length and head hash.
func (h *AuditHandler) Overview(c *gin.Context) {
	ctx := c.Request.Context()

	count, err := h.chain.Len(ctx)
	if err != nil {
		h.logger.Error("audit Len", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to query audit chain"})
		return
	}
	head, err := h.chain.Head(ctx)
	if err != nil {
		h.logger.Error("audit Head", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to query audit head"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"entries": count,
		"head":    head,
	})
}

// Verify handles GET /audit/verify and walks the full chain.
func (h *AuditHandler) Verify(c *gin.Context) {
	if err := h.chain.Verify(c.Request.Context()); err != nil {
		h.logger.Warn("audit chain integrity check failed", zap.Error(err))
		c.JSON(http.StatusOK, gin.H{
			"valid": false,
			"error": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"valid": true})
}

// GetEntry handles GET /audit/entries/:idx.
func (h *AuditHandler) GetEntry(c *gin.Context) {
	idx, err := strconv.Atoi(c.Param("idx"))
	if err != nil || idx < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "idx must be a non-negative integer"})
		return
	}

	entry, err := h.chain.Get(c.Request.Context(), idx)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "entry not found"})
		return
	}
	c.JSON(http.StatusOK, entry)
}
