package invoices

import (
	"encoding/json"
	"errors"
	"fmt"

	validatorv10 "github.com/go-playground/validator/v10"

	"github.com/imrishuroy/go-invoice-importflow/internal/validation"
)

var (
	// ErrMalformedInvoice is returned when the uploaded document is not an invoice.
	ErrMalformedInvoice = errors.New("malformed invoice document")
	// ErrInvalidInvoiceNumber is returned when the invoice number fails validation.
	ErrInvalidInvoiceNumber = errors.New("invoice number invalid")
)

// Parser decodes and validates uploaded invoice documents.
type Parser struct {
	v *validatorv10.Validate
}

func NewParser(v *validatorv10.Validate) *Parser {
	if v == nil {
		v = validation.New()
	}
	return &Parser{v: v}
}

// Parse decodes body. Both returned errors wrap ErrMalformedInvoice or ErrInvalidInvoiceNumber.
func (p *Parser) Parse(body []byte) (*validation.InvoiceFile, error) {
	var f validation.InvoiceFile
	if err := json.Unmarshal(body, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedInvoice, err)
	}
	if err := p.v.Struct(f); err != nil {
		return &f, fmt.Errorf("%w: %q", ErrInvalidInvoiceNumber, f.InvoiceNumber)
	}
	return &f, nil
}

// FromFile builds the invoice committed for transactionID.
func FromFile(f *validation.InvoiceFile, transactionID string, createdAt int64) Invoice {
	return Invoice{
		PK:            CustomerKey(f.CustomerName),
		InvoiceNumber: f.InvoiceNumber,
		TotalValue:    f.TotalValue,
		ProductID:     f.ProductID,
		Quantity:      f.Quantity,
		TransactionID: transactionID,
		CreatedAt:     createdAt,
	}
}
