// This file holds the request models of the API and turns malformed or
// invalid input into a validation error before any handler logic runs.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"ledger/internal/core"
)

const maxBodyBytes = 1 << 20


// createTransactionRequest is the body of POST /transactions. Amount is a
// pointer so that 0 is accepted while a missing field is not.
type createTransactionRequest struct {
	Title  string      `json:"title" validate:"required"`
	Amount *jsonAmount `json:"amount" validate:"required"`
	Type   string      `json:"type" validate:"required,oneof=credit debit"`
}

func (r createTransactionRequest) toDomain() core.NewTransaction {
	return core.NewTransaction{
		Title:  r.Title,
		Amount: r.Amount.value,
		Type:   core.TransactionType(r.Type),
	}
}

func (r createTransactionRequest) typeIssues() []core.Issue {
	if r.Amount != nil && r.Amount.kind != "" {
		return []core.Issue{{Field: "amount", Message: "must be a number"}}
	}
	return nil
}

// jsonAmount decodes a JSON number straight into a decimal, keeping every
// digit the client sent. Any other JSON kind is recorded rather than
// failing the decode, so the remaining fields are still read.
type jsonAmount struct {
	value decimal.Decimal
	kind  string
}

func (a *jsonAmount) UnmarshalJSON(b []byte) error {
	switch b[0] {
	case '"':
		a.kind = "string"
	case 't', 'f':
		a.kind = "boolean"
	case '{':
		a.kind = "object"
	case '[':
		a.kind = "array"
	default:
		d, err := decimal.NewFromString(string(b))
		if err != nil {
			return fmt.Errorf("parse amount: %w", err)
		}
		a.value = d
	}
	return nil
}

// typeChecker is implemented by models whose fields record JSON kind
// mismatches while decoding.
type typeChecker interface {
	typeIssues() []core.Issue
}

type transactionParams struct {
	TransactionID string `json:"transactionId" validate:"required,uuid"`
}

// newTransactionParams lowercases the id since the uuid rule only accepts
// the canonical lowercase form.
func newTransactionParams(id string) transactionParams {
	return transactionParams{TransactionID: strings.ToLower(id)}
}

// RequestValidator validates request models and reports issues by JSON name.
type RequestValidator struct {
	validate *validator.Validate
}

func NewRequestValidator() *RequestValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &RequestValidator{validate: v}
}

// Struct validates dst and converts failures into a validation error.
func (rv *RequestValidator) Struct(dst any) error {
	issues := rv.issues(dst, nil)
	if len(issues) > 0 {
		return core.NewValidationError(issues...)
	}
	return nil
}

// DecodeJSON reads a JSON object from the request body into dst and
// validates it. Type mismatches and rule failures are reported together.
func (rv *RequestValidator) DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)

	var reported map[string]bool
	var issues []core.Issue

	if err := dec.Decode(dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &typeErr) && typeErr.Field != "":
			// decoding continued past the mismatch, so the rest of dst is usable
			issues = append(issues, core.Issue{
				Field:   typeErr.Field,
				Message: "must be a " + jsonKind(typeErr.Type),
			})
			reported = map[string]bool{typeErr.Field: true}
		case errors.As(err, &maxErr):
			return core.NewValidationError(core.Issue{
				Field:   "body",
				Message: fmt.Sprintf("must not exceed %d bytes", maxErr.Limit),
			})
		case errors.Is(err, io.EOF):
			return core.NewValidationError(core.Issue{Field: "body", Message: "is required"})
		default:
			return core.NewValidationError(core.Issue{Field: "body", Message: "must be a valid JSON object"})
		}
	}

	if !errors.Is(dec.Decode(&struct{}{}), io.EOF) {
		return core.NewValidationError(core.Issue{Field: "body", Message: "must contain a single JSON object"})
	}

	if tc, ok := dst.(typeChecker); ok {
		for _, is := range tc.typeIssues() {
			if reported[is.Field] {
				continue
			}
			issues = append(issues, is)
			if reported == nil {
				reported = map[string]bool{}
			}
			reported[is.Field] = true
		}
	}

	issues = append(issues, rv.issues(dst, reported)...)
	if len(issues) > 0 {
		return core.NewValidationError(issues...)
	}
	return nil
}

func (rv *RequestValidator) issues(dst any, skip map[string]bool) []core.Issue {
	err := rv.validate.Struct(dst)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []core.Issue{{Field: "body", Message: err.Error()}}
	}

	issues := make([]core.Issue, 0, len(verrs))
	for _, fe := range verrs {
		if skip[fe.Field()] {
			continue
		}
		issues = append(issues, core.Issue{Field: fe.Field(), Message: ruleMessage(fe)})
	}
	return issues
}

func ruleMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "uuid":
		return "must be a valid UUID"
	default:
		return fmt.Sprintf("failed the %q rule", fe.Tag())
	}
}

func jsonKind(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Float32, reflect.Float64,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "number"
	case reflect.Bool:
		return "boolean"
	case reflect.Slice, reflect.Array:
		return "array"
	default:
		return "object"
	}
}
