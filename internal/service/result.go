package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeWarning Outcome = "warning"
	OutcomeFailure Outcome = "failure"
)

// Result 生命周期操作的三态结果，Message 可直接展示给用户
type Result struct {
	Outcome Outcome `json:"outcome"`
	Message string  `json:"message"`
	Err     error   `json:"-"`
}

func OK(message string) Result {
	return Result{Outcome: OutcomeSuccess, Message: message}
}

func Warn(message string, err error) Result {
	return Result{Outcome: OutcomeWarning, Message: message, Err: err}
}

func Fail(message string, err error) Result {
	if err == nil {
		err = errors.New(message)
	}
	return Result{Outcome: OutcomeFailure, Message: message, Err: err}
}

// Succeeded 成功或部分成功都视为操作已生效
func (r Result) Succeeded() bool {
	return r.Outcome != OutcomeFailure
}

var ErrNotFound = errors.New("record not found")

// ValidationError 输入校验失败，Fields 为字段名到提示信息的映射
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, k := range sortedKeys(e.Fields) {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func newValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fe.Translate(translator)
	}
	return &ValidationError{Fields: fields}
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
