package notification

import (
	"context"

	appcollections "github.com/arcollect/backend/internal/application/collections"
	"github.com/arcollect/backend/internal/domain/approval"
	"github.com/arcollect/backend/internal/domain/collections"
	"go.uber.org/zap"
)

// LogNotifier implements Notifier by writing structured log entries. It stands
// in for a mail or messaging integration; downstream delivery tails the log.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a new LogNotifier
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.Named("notifier")}
}

// PaymentPendingApproval notifies approvers that a payment awaits review
func (n *LogNotifier) PaymentPendingApproval(_ context.Context, collection *collections.Collection, payment *collections.Payment) {
	n.logger.Info("payment pending approval",
		zap.String("collection_id", collection.ID.String()),
		zap.String("invoice_number", collection.InvoiceNumber),
		zap.String("payment_id", payment.ID.String()),
		zap.Int64("amount", payment.Amount),
		zap.String("recorded_by", payment.RecordedBy.String()),
	)
}

// PaymentApproved notifies the recorder that their payment was approved
func (n *LogNotifier) PaymentApproved(_ context.Context, collection *collections.Collection, payment *collections.Payment) {
	n.logger.Info("payment approved",
		zap.String("collection_id", collection.ID.String()),
		zap.String("invoice_number", collection.InvoiceNumber),
		zap.String("payment_id", payment.ID.String()),
		zap.Int64("amount", payment.Amount),
		zap.Int64("outstanding_amount", collection.OutstandingAmount),
	)
}

// PaymentRejected notifies the recorder that their payment was rejected
func (n *LogNotifier) PaymentRejected(_ context.Context, collection *collections.Collection, payment *collections.Payment) {
	n.logger.Info("payment rejected",
		zap.String("collection_id", collection.ID.String()),
		zap.String("invoice_number", collection.InvoiceNumber),
		zap.String("payment_id", payment.ID.String()),
		zap.Int64("amount", payment.Amount),
		zap.String("reason", payment.RejectionReason),
	)
}

// ChangeRequestPending notifies approvers that a change request awaits review
func (n *LogNotifier) ChangeRequestPending(_ context.Context, request *approval.ChangeRequest) {
	n.logger.Info("change request pending",
		zap.String("request_id", request.ID.String()),
		zap.String("kind", request.Kind.String()),
		zap.String("target_id", request.TargetID.String()),
		zap.String("requested_by", request.RequestedBy.String()),
		zap.Time("auto_approve_at", request.AutoApproveAt),
	)
}

// ChangeRequestResolved notifies the requester of the outcome
func (n *LogNotifier) ChangeRequestResolved(_ context.Context, request *approval.ChangeRequest) {
	n.logger.Info("change request resolved",
		zap.String("request_id", request.ID.String()),
		zap.String("kind", request.Kind.String()),
		zap.String("target_id", request.TargetID.String()),
		zap.String("status", string(request.Status)),
	)
}

// CollectionOverdue reminds the assigned agent about an overdue collection
func (n *LogNotifier) CollectionOverdue(_ context.Context, collection *collections.Collection) {
	fields := []zap.Field{
		zap.String("collection_id", collection.ID.String()),
		zap.String("invoice_number", collection.InvoiceNumber),
		zap.Int("aging_days", collection.AgingDays),
		zap.Int64("outstanding_amount", collection.OutstandingAmount),
	}
	if collection.AssignedTo != nil {
		fields = append(fields, zap.String("assigned_to", collection.AssignedTo.String()))
	}
	n.logger.Info("collection overdue", fields...)
}

// Ensure LogNotifier implements Notifier
var _ appcollections.Notifier = (*LogNotifier)(nil)
