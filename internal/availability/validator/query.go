package validator

import (
	"fmt"
	"reservo/pkg/logger"
	"reservo/pkg/model"
	"strings"

	"github.com/go-playground/validator/v10"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

type SlotQueryValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewSlotQueryValidator(log *logger.Logger) *SlotQueryValidator {
	return &SlotQueryValidator{
		validate: validator.New(),
		logger:   log,
	}
}

func (v *SlotQueryValidator) Validate(q *model.SlotQuery) error {
	err := v.validate.Struct(q)
	if err == nil {
		return nil
	}

	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	var errs ValidationErrors
	for _, fe := range fieldErrs {
		errs = append(errs, ValidationError{
			Field:   fe.Field(),
			Message: fmt.Sprintf("failed on '%s' rule", fe.Tag()),
		})
	}
	return errs
}
