package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jmerrifield20/threadboard/internal/board/model"
)

func pageRequest(c *gin.Context, allowed []string) (model.PageRequest, error) {
	return model.ParsePageRequest(c.Query("page"), c.Query("limit"), c.Query("sort"), allowed)
}

// queryUUID returns nil when name is absent.
func queryUUID(c *gin.Context, name string) (*uuid.UUID, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, model.Invalid(name + " must be a UUID")
	}
	return &id, nil
}

func queryBool(c *gin.Context, name string) (bool, error) {
	raw := c.Query(name)
	if raw == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, model.Invalid(name + " must be a boolean")
	}
	return b, nil
}

func pathUUID(c *gin.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, model.Invalid("invalid " + name)
	}
	return id, nil
}
