package validation

// Control-channel actions (WebSocket route keys).
const (
	ActionGetImportURL = "getImportUrl"
	ActionCancelImport = "cancelImport"
)

// ControlMessage is the body a client sends over the WebSocket control channel.
type ControlMessage struct {
	Action        string `json:"action" validate:"required,oneof=getImportUrl cancelImport"`
	TransactionID string `json:"transactionId,omitempty"`
}

// InvoiceFile is the JSON document a client uploads to the write target.
type InvoiceFile struct {
	CustomerName  string  `json:"customerName"`
	InvoiceNumber string  `json:"invoiceNumber" validate:"invoice_number"`
	TotalValue    float64 `json:"totalValue"`
	ProductID     string  `json:"productId"`
	Quantity      int     `json:"quantity"`
}

// TransactionURI binds the status API path parameter.
type TransactionURI struct {
	TransactionID string `uri:"transaction_id" validate:"required,uuid"`
}
