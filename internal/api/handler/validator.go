package handler

import (
	"fmt"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/HuzaifaAbdulRehman/fast-timetable-attendance-sub001/internal/model"
	"github.com/HuzaifaAbdulRehman/fast-timetable-attendance-sub001/internal/service"
)

// RegisterValidations 向 gin 的校验器注册自定义 binding 标签
//   - isodate: YYYY-MM-DD 且为真实日期
//   - hhmm:    24 小时制 HH:MM
func RegisterValidations() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("gin 校验引擎不是 validator.Validate")
	}
	if err := v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		return model.IsISODate(fl.Field().String())
	}); err != nil {
		return fmt.Errorf("注册 isodate 校验失败: %w", err)
	}
	if err := v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		return service.IsHHMM(fl.Field().String())
	}); err != nil {
		return fmt.Errorf("注册 hhmm 校验失败: %w", err)
	}
	return nil
}
