package command

import (
	"context"

	"github.com/wareline/warehouse-receiving/kafka"
)

// AuditPublisher is the audit log sink. Publishing happens after the
// transaction commits and a failure is logged, never propagated: the audit
// stream must not abort the main operation.
type AuditPublisher interface {
	PublishItemReceived(ctx context.Context, event kafka.ItemReceivedEvent) error
	PublishQCDecision(ctx context.Context, event kafka.QCDecisionEvent) error
	PublishProductMapped(ctx context.Context, event kafka.ProductMappedEvent) error
}
