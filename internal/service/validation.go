package service

import (
	"examhub_backend/internal/model"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	validate   *validator.Validate
	translator ut.Translator
)

const (
	notBlankTag   = "notblank"
	afterStartTag = "afterstart"
	poolTag       = "pool"
)

func init() {
	validate = validator.New()

	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// 错误信息使用 json 字段名
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation(notBlankTag, func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	validate.RegisterStructValidation(examInputStructLevel, ExamInput{})

	registerTranslation(notBlankTag, "{0} is required")
	registerTranslation(afterStartTag, "{0} must be after the start date")
	registerTranslation(poolTag, "{0} must list at least one subject with a positive count")
}

func registerTranslation(tag, text string) {
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, true) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

func examInputStructLevel(sl validator.StructLevel) {
	in := sl.Current().Interface().(ExamInput)

	if in.StartDate != nil && in.EndDate != nil && !in.EndDate.After(*in.StartDate) {
		sl.ReportError(in.EndDate, "endDate", "EndDate", afterStartTag, "")
	}

	if in.UseQuestionPool && !validPool(in.QuestionPool) {
		sl.ReportError(in.QuestionPool, "questionPool", "QuestionPool", poolTag, "")
	}
}

func validPool(p *model.QuestionPool) bool {
	if p == nil || len(p.Subjects) == 0 {
		return false
	}
	for _, s := range p.Subjects {
		if strings.TrimSpace(s.SubjectID) == "" || s.Count <= 0 {
			return false
		}
	}
	return p.TotalQuestions == nil || *p.TotalQuestions >= 0
}

// validateInput 校验失败时返回 *ValidationError
func validateInput(v interface{}) error {
	if err := validate.Struct(v); err != nil {
		return newValidationError(err)
	}
	return nil
}
