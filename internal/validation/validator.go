package validation

import (
	"strings"

	validatorv10 "github.com/go-playground/validator/v10"
)

// MinInvoiceNumberLength is the exclusive lower bound on a trimmed invoice number.
const MinInvoiceNumberLength = 5

// New returns a configured validator with the custom rules registered.
func New() *validatorv10.Validate {
	v := validatorv10.New()

	// invoice_number: trimmed value must be longer than MinInvoiceNumberLength characters.
	_ = v.RegisterValidation("invoice_number", invoiceNumberValidation)

	v.RegisterStructValidation(controlMessageStructValidation, ControlMessage{})

	return v
}

func invoiceNumberValidation(fl validatorv10.FieldLevel) bool {
	return ValidInvoiceNumber(fl.Field().String())
}

// ValidInvoiceNumber reports whether n is an acceptable invoice number.
func ValidInvoiceNumber(n string) bool {
	return len(strings.TrimSpace(n)) > MinInvoiceNumberLength
}

// controlMessageStructValidation requires a transaction id for cancellations.
func controlMessageStructValidation(sl validatorv10.StructLevel) {
	msg := sl.Current().Interface().(ControlMessage)
	if msg.Action == ActionCancelImport && strings.TrimSpace(msg.TransactionID) == "" {
		sl.ReportError(msg.TransactionID, "transactionId", "TransactionID", "required_for_cancel", "")
	}
}
