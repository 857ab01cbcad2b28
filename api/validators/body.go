package validators

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	pkgerrors "github.com/angelmondragon/its27-backend/pkg/errors"
	"github.com/go-playground/validator/v10"
)

// MaxBodyBytes caps JSON request bodies; uploads go through multipart instead.
const MaxBodyBytes = 1 << 20

var (
	validate = validator.New(validator.WithRequiredStructEnabled())

	// tag -> message; %s receives the tag parameter
	tagMessages = map[string]string{
		"required": "is required",
		"email":    "must be a valid email",
		"min":      "must be at least %s",
		"gte":      "must be at least %s",
		"max":      "must be at most %s",
		"lte":      "must be at most %s",
		"gt":       "must be greater than %s",
		"oneof":    "must be one of: %s",
		"url":      "must be a valid URL",
	}
)

func init() {
	validate.RegisterTagNameFunc(jsonFieldName)
}

func jsonFieldName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	switch name {
	case "-":
		return ""
	case "":
		return f.Name
	}
	return name
}

// DecodeJSONBody reads exactly one JSON value into dest, rejecting unknown
// fields and trailing data, then applies the validate tags. Every failure is a
// CodeValidation error; tag failures carry per-field details.
func DecodeJSONBody(r *http.Request, dest any) error {
	body := io.LimitReader(r.Body, MaxBodyBytes+1)
	defer io.Copy(io.Discard, body) //nolint:errcheck

	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dest); err != nil {
		return badBody(err)
	}
	if dec.More() {
		return badBody(errors.New("body must contain a single JSON object"))
	}
	if dec.InputOffset() > MaxBodyBytes {
		return badBody(fmt.Errorf("body exceeds %d bytes", MaxBodyBytes))
	}

	err := validate.Struct(dest)
	var fieldErrs validator.ValidationErrors
	switch {
	case err == nil:
		return nil
	case errors.As(err, &fieldErrs):
		details := make(pkgerrors.FieldErrors, len(fieldErrs))
		for _, fe := range fieldErrs {
			details[fe.Field()] = tagMessage(fe)
		}
		return pkgerrors.Validation("validation failed", details)
	default:
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "validation failed")
	}
}

func badBody(err error) error {
	return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid request body").
		WithDetails(map[string]any{"error": err.Error()})
}

func tagMessage(fe validator.FieldError) string {
	msg, ok := tagMessages[fe.Tag()]
	if !ok {
		return "is invalid"
	}
	if strings.Contains(msg, "%s") {
		return fmt.Sprintf(msg, fe.Param())
	}
	return msg
}
