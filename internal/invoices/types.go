package invoices

// PartitionPrefix starts the partition key of every invoice item.
const PartitionPrefix = "#invoice_"

// Invoice is a committed invoice, keyed by (customer, invoice number).
type Invoice struct {
	PK            string  `dynamodbav:"pk"` // #invoice_<customerName>
	InvoiceNumber string  `dynamodbav:"sk"`
	TotalValue    float64 `dynamodbav:"total_value"`
	ProductID     string  `dynamodbav:"product_id"`
	Quantity      int     `dynamodbav:"quantity"`
	TransactionID string  `dynamodbav:"transaction_id"`
	CreatedAt     int64   `dynamodbav:"created_at"` // epoch millis
	TTL           int64   `dynamodbav:"ttl"`        // 0: never expires
}

// CustomerKey builds the partition key for a customer's invoices.
func CustomerKey(customerName string) string {
	return PartitionPrefix + customerName
}

// Customer returns the customer part of the partition key.
func (i Invoice) Customer() string {
	if len(i.PK) < len(PartitionPrefix) {
		return ""
	}
	return i.PK[len(PartitionPrefix):]
}
