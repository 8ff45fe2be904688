package events

// Topic constants for domain events emitted by the service.
const (
	TopicBillAllocated  = "bill.allocated"
	TopicBillSaved      = "bill.saved"
	TopicBillSaveFailed = "bill.save_failed"
	TopicExportRendered = "bill.export_rendered"
)
