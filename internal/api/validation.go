package api

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/d60-Lab/im-delivery/internal/conversation"
)

// registerValidators 注册 ident：用户/条目 id 语法
func registerValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return v.RegisterValidation("ident", func(fl validator.FieldLevel) bool {
		return conversation.ValidID(fl.Field().String())
	})
}
