package handler

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/jmerrifield20/threadboard/internal/board/model"
)

var (
	registerOnce sync.Once
	registerErr  error
)

// enumTags are the board's custom binding tags.
var enumTags = map[string]validator.Func{
	"actiontype": func(fl validator.FieldLevel) bool {
		return model.ActionType(fl.Field().String()).Valid()
	},
	"contenttype": func(fl validator.FieldLevel) bool {
		return model.ContentType(fl.Field().String()).Valid()
	},
}

// RegisterValidators installs the board's enum tags on gin's binding engine.
// It must succeed before any handler binds a request. Later calls return the
// first call's result.
func RegisterValidators() error {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			registerErr = errors.New("gin binding engine is not go-playground/validator")
			return
		}
		registerErr = registerTags(v, enumTags)
	})
	return registerErr
}

func registerTags(v *validator.Validate, tags map[string]validator.Func) error {
	for tag, fn := range tags {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("register %s validator: %w", tag, err)
		}
	}
	return nil
}
