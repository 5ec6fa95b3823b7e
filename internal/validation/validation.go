// Package validation wires request rules into gin's validator engine and turns
// binding failures into ordered field violations.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/huangang/framewise/backend/pkg/response"
)

var (
	once  sync.Once
	trans ut.Translator
)

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

var isoDate validator.Func = func(fl validator.FieldLevel) bool {
	s, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	_, err := ParseDate(s)
	return err == nil
}

var notBlank validator.Func = func(fl validator.FieldLevel) bool {
	s, ok := fl.Field().Interface().(string)
	return ok && strings.TrimSpace(s) != ""
}

var customMessages = map[string]string{
	"isodate":  "{0} must be a valid ISO-8601 date",
	"notblank": "{0} cannot be blank",
}

// Register installs the custom rules, JSON field naming and English messages
// on gin's validator. Safe to call more than once.
func Register() {
	once.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			panic("validation: gin validator engine is not go-playground/validator")
		}

		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			for _, tag := range []string{"json", "form", "uri"} {
				name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
				if name == "-" {
					return ""
				}
				if name != "" {
					return name
				}
			}
			return fld.Name
		})

		v.RegisterValidation("isodate", isoDate)
		v.RegisterValidation("notblank", notBlank)

		english := en.New()
		trans, _ = ut.New(english, english).GetTranslator("en")
		if err := en_translations.RegisterDefaultTranslations(v, trans); err != nil {
			panic(fmt.Sprintf("validation: register translations: %v", err))
		}
		for tag, msg := range customMessages {
			tag, msg := tag, msg
			v.RegisterTranslation(tag, trans, func(t ut.Translator) error {
				return t.Add(tag, msg, true)
			}, func(t ut.Translator, fe validator.FieldError) string {
				s, _ := t.T(tag, fe.Field())
				return s
			})
		}
	})
}

// ParseDate accepts a calendar date or an ISO-8601 date-time.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid ISO-8601 date %q", s)
}

// NormalizeDate reduces a valid ISO-8601 value to YYYY-MM-DD.
func NormalizeDate(s string) (string, error) {
	t, err := ParseDate(s)
	if err != nil {
		return "", err
	}
	return t.Format("2006-01-02"), nil
}

// BindJSON decodes and validates the body. Failures come back as a
// ValidationError AppError listing every violated field.
func BindJSON(c *gin.Context, obj interface{}) error {
	return bind(c, obj, binding.JSON)
}

func BindQuery(c *gin.Context, obj interface{}) error {
	return bind(c, obj, binding.Query)
}

func BindMultipart(c *gin.Context, obj interface{}) error {
	return bind(c, obj, binding.FormMultipart)
}

func bind(c *gin.Context, obj interface{}, b binding.Binding) error {
	Register()
	if err := c.ShouldBindWith(obj, b); err != nil {
		violations := Violations(err)
		if violations == nil {
			return err
		}
		return response.NewValidation(violations...)
	}
	return nil
}

// Violations maps a binding error onto ordered field violations. It returns nil
// for errors that are not caused by the request content.
func Violations(err error) []response.FieldError {
	Register()

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make([]response.FieldError, 0, len(verrs))
		for _, fe := range verrs {
			out = append(out, response.FieldError{Field: fe.Field(), Message: fe.Translate(trans)})
		}
		return out
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		field := typeErr.Field
		if field == "" {
			field = "body"
		}
		return []response.FieldError{{Field: field, Message: fmt.Sprintf("%s must be of type %s", field, typeErr.Type)}}
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return []response.FieldError{{Field: "body", Message: "request body must be valid JSON"}}
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return []response.FieldError{{Field: "body", Message: "request body is required"}}
	}

	var invalid *validator.InvalidValidationError
	if errors.As(err, &invalid) {
		return nil
	}

	// multipart and form decoding errors
	return []response.FieldError{{Field: "body", Message: err.Error()}}
}
