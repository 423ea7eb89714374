package payments

const (
	TopicPaymentInitiated         = "payment.initiated"
	TopicPaymentConfirmed         = "payment.confirmed"
	TopicPaymentSignatureRejected = "payment.signature_rejected"
)

// Partition key = order_payment_id, supaya semua event 1 order maintain urutan.
func PartitionKey(orderPaymentID string) []byte { return []byte(orderPaymentID) }
