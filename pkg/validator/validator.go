// Package validator gin 请求参数校验器与自定义规则
package validator

import (
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var _ binding.StructValidator = (*CustomValidator)(nil)

// CustomValidator implements binding.StructValidator with lazy initialization
// CustomValidator 实现 gin 的 binding.StructValidator，首次使用时初始化
type CustomValidator struct {
	once     sync.Once
	validate *validator.Validate
}

// NewCustomValidator creates the validator
// NewCustomValidator 创建校验器
func NewCustomValidator() *CustomValidator {
	return &CustomValidator{}
}

// ValidateStruct validates structs and pointers to structs, ignores other kinds
// ValidateStruct 校验结构体或结构体指针，其他类型直接放行
func (v *CustomValidator) ValidateStruct(obj any) error {
	if obj == nil {
		return nil
	}
	t := reflect.TypeOf(obj)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}
	v.lazyinit()
	return v.validate.Struct(obj)
}

// Engine returns the underlying *validator.Validate
// Engine 返回底层校验引擎
func (v *CustomValidator) Engine() any {
	v.lazyinit()
	return v.validate
}

func (v *CustomValidator) lazyinit() {
	v.once.Do(func() {
		v.validate = validator.New()
		v.validate.SetTagName("binding")
		registerRules(v.validate)
	})
}

func registerRules(validate *validator.Validate) {
	// date 字段必须是 YYYY-MM-DD，出现但为空串也不合法，未设置请用 null 或省略
	_ = validate.RegisterValidation("date", func(fl validator.FieldLevel) bool {
		_, err := time.Parse("2006-01-02", fl.Field().String())
		return err == nil
	})
	// notblank 去掉空白后不能为空
	_ = validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
}
