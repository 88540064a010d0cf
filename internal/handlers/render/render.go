package render

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// Error codes of the API envelope
const (
	CodeValidation   = "VALIDATION_ERROR"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeRateLimited  = "RATE_LIMITED"
	CodeServerError  = "SERVER_ERROR"
	CodeDBError      = "DB_ERROR"

	CodeUserExists   = "USER_EXISTS"
	CodeUserNotFound = "USER_NOT_FOUND"

	CodeBillExists     = "BILL_EXISTS"
	CodeBillNotFound   = "BILL_NOT_FOUND"
	CodeAlreadyPaid    = "ALREADY_PAID"
	CodePaymentInvalid = "PAYMENT_INVALID"
)

var validate = newValidator()

type Struct any

type ErrorBody struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// Envelope every response is wrapped in:
// {"success": true, "data": ...} or {"success": false, "error": {...}}
type envelope struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorBody `json:"error,omitempty"`
}

func JSON(w http.ResponseWriter, data any) {
	JSONWithStatus(w, data, http.StatusOK)
}

func JSONWithStatus(w http.ResponseWriter, data any, code int) {
	writeEnvelope(w, envelope{Success: true, Data: data}, code)
}

// Error renders a failed envelope with the given code
func Error(w http.ResponseWriter, code string, message string, status int) {
	writeEnvelope(w, envelope{Success: false, Error: &ErrorBody{Code: code, Message: message}}, status)
}

// Render json decode errors as VALIDATION_ERROR
func DecodeError(w http.ResponseWriter, err error) {
	message := fmt.Sprintf("Failed to parse JSON: %s", err.Error())

	// Try to provide more specific error message based on error type
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		message = fmt.Sprintf("Invalid data type for field '%s'", typeErr.Field)
	}

	Error(w, CodeValidation, message, http.StatusBadRequest)
}

// Render ValidationErrors with per-field messages
func ValidationErrors(w http.ResponseWriter, errs validator.ValidationErrors) {
	body := &ErrorBody{
		Code:    CodeValidation,
		Message: "Request validation failed",
		Fields:  make(map[string]string, len(errs)),
	}

	// Create user-friendly error messages based on validation tag
	for _, fieldError := range errs {
		var message string
		switch fieldError.Tag() {
		case "required":
			message = "This field is required"
		case "min":
			message = fmt.Sprintf("Value is too short (minimum %s)", fieldError.Param())
		case "max":
			message = fmt.Sprintf("Value is too long (maximum %s)", fieldError.Param())
		default:
			message = "Invalid value"
		}

		body.Fields[fieldError.Field()] = message
	}

	writeEnvelope(w, envelope{Success: false, Error: body}, http.StatusBadRequest)
}

// BindAndValidate decodes JSON request body into type T and validates it using struct tags.
// Returns the decoded value and writes appropriate error responses for decoding or validation failures.
func BindAndValidate[T Struct](w http.ResponseWriter, r *http.Request) (T, error) {
	var value T

	err := json.NewDecoder(r.Body).Decode(&value)
	if err != nil {
		DecodeError(w, err)
		return value, err
	}

	err = validate.Struct(value)
	if err != nil {
		// pretty sure cast will be ok cause expecting T is valid struct
		errs := err.(validator.ValidationErrors)
		ValidationErrors(w, errs)
		return value, err
	}

	return value, nil
}

// writeEnvelope sends the envelope as json and enforces status code
func writeEnvelope(w http.ResponseWriter, e envelope, code int) {
	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)

	if err := enc.Encode(e); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write(buf.Bytes())
}
