package domain

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

var (
	quizValidator   = newQuizValidator()
	questionFieldRe = regexp.MustCompile(`^Quiz\.Questions\[(\d+)\]\.(\w+?)(?:\[(\d+)\]\.Text)?$`)
)

func newQuizValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	_ = v.RegisterValidation("hascorrect", func(fl validator.FieldLevel) bool {
		options, ok := fl.Field().Interface().([]Option)
		if !ok {
			return false
		}
		for _, opt := range options {
			if opt.IsCorrect {
				return true
			}
		}
		return false
	})
	return v
}

// ValidateQuiz checks a quiz draft against the authoring rules and returns a
// *ValidationError describing every failing field.
func ValidateQuiz(quiz Quiz) error {
	err := quizValidator.Struct(quiz)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	out := &ValidationError{Fields: make(map[string]string, len(fieldErrs))}
	for _, fe := range fieldErrs {
		key, msg := describe(fe)
		if _, exists := out.Fields[key]; !exists {
			out.Fields[key] = msg
		}
	}
	return out
}

func describe(fe validator.FieldError) (string, string) {
	switch fe.Namespace() {
	case "Quiz.Title":
		return "title", "Title is required"
	case "Quiz.Description":
		return "description", "Description is required"
	case "Quiz.TimeLimit":
		if fe.Tag() == "max" {
			return "timeLimit", "Time limit must be at most " + fe.Param() + " minutes"
		}
		return "timeLimit", "Time limit must be at least 1 minute"
	case "Quiz.Questions":
		return "general", "Add at least one question"
	}

	m := questionFieldRe.FindStringSubmatch(fe.Namespace())
	if m == nil {
		return fe.Field(), fmt.Sprintf("failed %s validation", fe.Tag())
	}
	q := m[1]
	switch {
	case m[2] == "Options" && m[3] != "":
		return fmt.Sprintf("q%s_option%s", q, m[3]), "Option text required"
	case m[2] == "Options" && fe.Tag() == "hascorrect":
		return "q" + q + "_options", "Select at least one correct option"
	case m[2] == "Options":
		return "q" + q + "_options", "At least 2 options required"
	case m[2] == "QuestionText":
		return "q" + q + "_questionText", "Question text is required"
	case m[2] == "Type":
		return "q" + q + "_type", "Type must be single or multiple"
	}
	return "q" + q + "_" + m[2], fmt.Sprintf("failed %s validation", fe.Tag())
}
