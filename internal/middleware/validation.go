package middleware

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	apierrors "carpulse/internal/errors"
	"carpulse/internal/infrastructure"
)

// minModelYear is the oldest model year accepted in requests
const minModelYear = 1950

// Validator decodes JSON request bodies and validates them against their
// `validate` struct tags
type Validator struct {
	validate *validator.Validate
	logger   *slog.Logger
	now      func() time.Time
}

// NewValidator creates a validator that reports fields by their JSON names
func NewValidator(logger *slog.Logger) *Validator {
	v := &Validator{
		validate: validator.New(),
		logger:   infrastructure.WithComponent(logger, "validation"),
		now:      time.Now,
	}

	_ = v.validate.RegisterValidation("modelyear", v.isModelYear)

	v.validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return v
}

// DecodeJSON reads the request body into dst and validates it. The returned
// error is ready for ErrorHandler.HandleError.
func (v *Validator) DecodeJSON(r *http.Request, dst interface{}) error {
	if err := render.DecodeJSON(r.Body, dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return maxBytesErr
		}
		if errors.Is(err, io.EOF) {
			return apierrors.New(http.StatusBadRequest, apierrors.CodeInvalidRequest, "Request body is empty")
		}
		v.logger.DebugContext(r.Context(), "request body rejected", slog.String("error", err.Error()))
		return apierrors.InvalidRequestWithError(err)
	}
	return v.ValidateStruct(dst)
}

// ValidateStruct validates a struct and returns validation errors
func (v *Validator) ValidateStruct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apierrors.InvalidRequestWithError(err)
	}

	validationErrors := make([]apierrors.ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		validationErrors = append(validationErrors, apierrors.ValidationError{
			Field:   fieldPath(fe),
			Tag:     fe.Tag(),
			Message: formatValidationError(fe),
		})
	}
	return apierrors.NewValidationErrors(validationErrors)
}

// isModelYear accepts years between minModelYear and next year
func (v *Validator) isModelYear(fl validator.FieldLevel) bool {
	year := fl.Field().Int()
	return year >= minModelYear && year <= int64(v.now().Year()+1)
}

// fieldPath drops the top-level struct name from the namespace, so nested
// fields read "vehicle.model_year"
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

// formatValidationError formats validation error messages
func formatValidationError(fe validator.FieldError) string {
	field := fe.Field()
	param := fe.Param()

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, param)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(param, " ", ", "))
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, param)
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", field, param)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, param)
	case "modelyear":
		return fmt.Sprintf("%s must be a model year between %d and next year", field, minModelYear)
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}

// MaxBodySize caps request bodies at limit bytes. Reads past the limit fail
// with *http.MaxBytesError, which ErrorHandler renders as 413.
func MaxBodySize(limit int64) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, limit)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ContentTypeValidator ensures requests with a body declare an allowed content type
func ContentTypeValidator(errorHandler *apierrors.ErrorHandler, contentTypes ...string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodOptions || r.Method == http.MethodDelete {
				next.ServeHTTP(w, r)
				return
			}

			contentType := r.Header.Get("Content-Type")
			for _, allowed := range contentTypes {
				if strings.HasPrefix(strings.ToLower(contentType), allowed) {
					next.ServeHTTP(w, r)
					return
				}
			}

			errorHandler.HandleError(w, r, apierrors.ErrUnsupportedMediaType.WithDetails(map[string]interface{}{
				"content_type": contentType,
				"allowed":      contentTypes,
			}))
		})
	}
}
