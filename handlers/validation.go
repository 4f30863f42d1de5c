package handlers

import (
	"studio/models"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterValidators adds the custom binding tags used by the request structs
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return v.RegisterValidation("watermark_position", func(fl validator.FieldLevel) bool {
		return models.WatermarkPosition(fl.Field().String()).Valid()
	})
}
