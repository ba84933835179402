package collections

import (
	"context"
	"testing"
	"time"

	"github.com/arcollect/backend/internal/domain/approval"
	"github.com/arcollect/backend/internal/domain/collections"
	"github.com/arcollect/backend/internal/domain/identity"
	"github.com/arcollect/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const approvalWindow = 30 * time.Minute

func newChangeRequestFixture(t *testing.T) (*ChangeRequestService, *memStore, *recordingNotifier, *recordingAudit) {
	t.Helper()
	store := newMemStore()
	notifier := &recordingNotifier{}
	audit := &recordingAudit{}
	svc := NewChangeRequestService(store.scope(), notifier, audit, approvalWindow, zap.NewNop())
	return svc, store, notifier, audit
}

// seedApprovedPayment stores a payment already applied to its collection
func seedApprovedPayment(t *testing.T, store *memStore, c *collections.Collection, amount int64) *collections.Payment {
	t.Helper()
	p, err := collections.NewApprovedPayment(c.ID, amount, collections.PaymentModeCash, time.Now(), "", uuid.New())
	require.NoError(t, err)
	require.NoError(t, c.ApplyPayment(amount))
	store.putPayment(p)
	store.putCollection(c)
	return p
}

func seedCommunicationLog(t *testing.T, store *memStore, collectionID uuid.UUID) *collections.CommunicationLog {
	t.Helper()
	l, err := collections.NewCommunicationLog(
		collectionID, collections.ChannelCall, "called customer", collections.OutcomeNoResponse, uuid.New(), time.Now())
	require.NoError(t, err)
	store.putLog(l)
	return l
}

func int64Ptr(v int64) *int64 { return &v }

func TestChangeRequestService_RequestPaymentEdit(t *testing.T) {
	ctx := context.Background()

	t.Run("snapshots exactly the changed fields", func(t *testing.T) {
		svc, store, notifier, _ := newChangeRequestFixture(t)
		c := seedCollection(t, store, 150000)
		p := seedApprovedPayment(t, store, c, 50000)

		request, err := svc.RequestPaymentEdit(ctx, p.ID, PaymentEdit{Amount: int64Ptr(30000)}, "typo in amount", agentActor)

		require.NoError(t, err)
		assert.Equal(t, approval.RequestStatusPending, request.Status)
		assert.Equal(t, approval.KindPaymentEdit, request.Kind)

		original, ok := request.Original.Int64("amount")
		require.True(t, ok)
		assert.Equal(t, int64(50000), original)
		proposed, ok := request.Proposed.Int64("amount")
		require.True(t, ok)
		assert.Equal(t, int64(30000), proposed)
		assert.False(t, request.Original.Has("mode"), "unchanged fields are not snapshotted")

		assert.Equal(t, 1, notifier.pendingRequests)
	})

	t.Run("second pending request for the same target is refused", func(t *testing.T) {
		svc, store, _, _ := newChangeRequestFixture(t)
		c := seedCollection(t, store, 150000)
		p := seedApprovedPayment(t, store, c, 50000)

		_, err := svc.RequestPaymentEdit(ctx, p.ID, PaymentEdit{Amount: int64Ptr(30000)}, "typo", agentActor)
		require.NoError(t, err)

		_, err = svc.RequestPaymentEdit(ctx, p.ID, PaymentEdit{Amount: int64Ptr(40000)}, "typo again", agentActor)

		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "DUPLICATE_REQUEST", domainErr.Code)
	})

	t.Run("non-positive proposed amount refused upfront", func(t *testing.T) {
		svc, store, _, _ := newChangeRequestFixture(t)
		c := seedCollection(t, store, 150000)
		p := seedApprovedPayment(t, store, c, 50000)

		_, err := svc.RequestPaymentEdit(ctx, p.ID, PaymentEdit{Amount: int64Ptr(0)}, "zero it", agentActor)

		require.Error(t, err)
	})

	t.Run("rejected payments cannot be edited", func(t *testing.T) {
		svc, store, _, _ := newChangeRequestFixture(t)
		c := seedCollection(t, store, 150000)
		p, err := collections.NewPendingPayment(c.ID, 50000, collections.PaymentModeCash, time.Now(), "", uuid.New())
		require.NoError(t, err)
		require.NoError(t, p.Reject(uuid.New(), "bounced"))
		store.putPayment(p)

		_, err = svc.RequestPaymentEdit(ctx, p.ID, PaymentEdit{Amount: int64Ptr(30000)}, "typo", agentActor)

		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_STATE", domainErr.Code)
	})
}

func TestChangeRequestService_ApprovePaymentEdit(t *testing.T) {
	ctx := context.Background()

	t.Run("amount decrease reverses the ledger delta", func(t *testing.T) {
		svc, store, _, _ := newChangeRequestFixture(t)
		c := seedCollection(t, store, 150000)
		p := seedApprovedPayment(t, store, c, 50000)
		request, err := svc.RequestPaymentEdit(ctx, p.ID, PaymentEdit{Amount: int64Ptr(30000)}, "typo", agentActor)
		require.NoError(t, err)

		resolved, err := svc.Approve(ctx, request.ID, adminActor)

		require.NoError(t, err)
		assert.Equal(t, approval.RequestStatusApproved, resolved.Status)

		payment := store.payment(p.ID)
		assert.Equal(t, int64(30000), payment.Amount)

		collection := store.collection(c.ID)
		assert.Equal(t, int64(120000), collection.OutstandingAmount)
		assert.Equal(t, int64(30000), collection.PaidAmount)
		assert.Equal(t, collection.OriginalAmount, collection.OutstandingAmount+collection.PaidAmount)
	})

	t.Run("amount increase applies the ledger delta", func(t *testing.T) {
		svc, store, _, _ := newChangeRequestFixture(t)
		c := seedCollection(t, store, 150000)
		p := seedApprovedPayment(t, store, c, 50000)
		request, err := svc.RequestPaymentEdit(ctx, p.ID, PaymentEdit{Amount: int64Ptr(120000)}, "underreported", agentActor)
		require.NoError(t, err)

		_, err = svc.Approve(ctx, request.ID, adminActor)

		require.NoError(t, err)
		collection := store.collection(c.ID)
		assert.Equal(t, int64(30000), collection.OutstandingAmount)
		assert.Equal(t, int64(120000), collection.PaidAmount)
	})

	t.Run("overdrawing delta fails the approval", func(t *testing.T) {
		svc, store, _, _ := newChangeRequestFixture(t)
		c := seedCollection(t, store, 150000)
		p := seedApprovedPayment(t, store, c, 50000)
		request, err := svc.RequestPaymentEdit(ctx, p.ID, PaymentEdit{Amount: int64Ptr(250000)}, "fat finger", agentActor)
		require.NoError(t, err)

		_, err = svc.Approve(ctx, request.ID, adminActor)

		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "OVERPAYMENT", domainErr.Code)

		payment := store.payment(p.ID)
		assert.Equal(t, int64(50000), payment.Amount, "payment untouched")
		collection := store.collection(c.ID)
		assert.Equal(t, int64(100000), collection.OutstandingAmount, "ledger untouched")
	})

	t.Run("editing a pending payment never touches the ledger", func(t *testing.T) {
		svc, store, _, _ := newChangeRequestFixture(t)
		c := seedCollection(t, store, 150000)
		p := seedPendingPayment(t, store, c.ID, 50000)
		request, err := svc.RequestPaymentEdit(ctx, p.ID, PaymentEdit{Amount: int64Ptr(70000)}, "typo", agentActor)
		require.NoError(t, err)

		_, err = svc.Approve(ctx, request.ID, adminActor)

		require.NoError(t, err)
		payment := store.payment(p.ID)
		assert.Equal(t, int64(70000), payment.Amount)
		assert.True(t, payment.IsPending())
		collection := store.collection(c.ID)
		assert.Equal(t, int64(150000), collection.OutstandingAmount)
	})

	t.Run("requester cannot approve own request", func(t *testing.T) {
		svc, store, _, _ := newChangeRequestFixture(t)
		c := seedCollection(t, store, 150000)
		p := seedApprovedPayment(t, store, c, 50000)
		manager := identity.Actor{ID: uuid.New(), Role: identity.RoleManager}
		request, err := svc.RequestPaymentEdit(ctx, p.ID, PaymentEdit{Amount: int64Ptr(30000)}, "typo", manager)
		require.NoError(t, err)

		_, err = svc.Approve(ctx, request.ID, manager)

		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "FORBIDDEN", domainErr.Code)
	})

	t.Run("second resolution loses the race", func(t *testing.T) {
		svc, store, _, _ := newChangeRequestFixture(t)
		c := seedCollection(t, store, 150000)
		p := seedApprovedPayment(t, store, c, 50000)
		request, err := svc.RequestPaymentEdit(ctx, p.ID, PaymentEdit{Amount: int64Ptr(30000)}, "typo", agentActor)
		require.NoError(t, err)

		_, err = svc.Approve(ctx, request.ID, adminActor)
		require.NoError(t, err)

		_, err = svc.Reject(ctx, request.ID, adminActor, "no")
		assert.ErrorIs(t, err, shared.ErrAlreadyResolved)

		_, err = svc.Approve(ctx, request.ID, identity.Actor{ID: uuid.New(), Role: identity.RoleManager})
		assert.ErrorIs(t, err, shared.ErrAlreadyResolved)

		collection := store.collection(c.ID)
		assert.Equal(t, int64(120000), collection.OutstandingAmount, "delta applied exactly once")
	})
}

func TestChangeRequestService_Reject(t *testing.T) {
	ctx := context.Background()

	t.Run("rejection leaves the target untouched", func(t *testing.T) {
		svc, store, notifier, _ := newChangeRequestFixture(t)
		c := seedCollection(t, store, 150000)
		p := seedApprovedPayment(t, store, c, 50000)
		request, err := svc.RequestPaymentEdit(ctx, p.ID, PaymentEdit{Amount: int64Ptr(30000)}, "typo", agentActor)
		require.NoError(t, err)

		resolved, err := svc.Reject(ctx, request.ID, adminActor, "original was correct")

		require.NoError(t, err)
		assert.Equal(t, approval.RequestStatusRejected, resolved.Status)
		assert.Equal(t, "original was correct", resolved.RejectionReason)

		payment := store.payment(p.ID)
		assert.Equal(t, int64(50000), payment.Amount)
		assert.Equal(t, 1, notifier.resolvedRequests)
	})
}

func TestChangeRequestService_CommunicationEdit(t *testing.T) {
	ctx := context.Background()

	svc, store, _, _ := newChangeRequestFixture(t)
	c := seedCollection(t, store, 150000)
	l := seedCommunicationLog(t, store, c.ID)

	outcome := collections.OutcomePromiseToPay
	summary := "customer promised to clear dues"
	request, err := svc.RequestCommunicationEdit(ctx, l.ID, CommunicationEdit{
		Summary:        &summary,
		Outcome:        &outcome,
		PromisedAmount: int64Ptr(75000),
	}, "outcome logged wrong", agentActor)
	require.NoError(t, err)

	_, err = svc.Approve(ctx, request.ID, adminActor)
	require.NoError(t, err)

	stored := store.logs[l.ID]
	assert.Equal(t, summary, stored.Summary)
	assert.Equal(t, collections.OutcomePromiseToPay, stored.Outcome)
	require.NotNil(t, stored.PromisedAmount)
	assert.Equal(t, int64(75000), *stored.PromisedAmount)
}

func TestChangeRequestService_Deletions(t *testing.T) {
	ctx := context.Background()

	t.Run("approved deletion request reverses the ledger", func(t *testing.T) {
		svc, store, _, _ := newChangeRequestFixture(t)
		c := seedCollection(t, store, 150000)
		p := seedApprovedPayment(t, store, c, 50000)

		request, err := svc.RequestPaymentDeletion(ctx, p.ID, "duplicate entry", agentActor)
		require.NoError(t, err)
		assert.True(t, request.Kind.IsDelete())

		_, err = svc.Approve(ctx, request.ID, adminActor)
		require.NoError(t, err)

		_, exists := store.payments[p.ID]
		assert.False(t, exists, "payment removed")

		collection := store.collection(c.ID)
		assert.Equal(t, int64(150000), collection.OutstandingAmount)
		assert.Equal(t, int64(0), collection.PaidAmount)
		assert.Equal(t, collections.CollectionStatusPending, collection.Status)
	})

	t.Run("privileged actor deletes directly", func(t *testing.T) {
		svc, store, _, audit := newChangeRequestFixture(t)
		c := seedCollection(t, store, 150000)
		p := seedApprovedPayment(t, store, c, 50000)

		err := svc.DeletePayment(ctx, p.ID, adminActor)

		require.NoError(t, err)
		_, exists := store.payments[p.ID]
		assert.False(t, exists)

		collection := store.collection(c.ID)
		assert.Equal(t, int64(150000), collection.OutstandingAmount)
		assert.Contains(t, audit.actions(), "payment.deleted")
	})

	t.Run("non-privileged direct delete is refused", func(t *testing.T) {
		svc, store, _, _ := newChangeRequestFixture(t)
		c := seedCollection(t, store, 150000)
		p := seedApprovedPayment(t, store, c, 50000)

		err := svc.DeletePayment(ctx, p.ID, agentActor)

		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "FORBIDDEN", domainErr.Code)
		_, exists := store.payments[p.ID]
		assert.True(t, exists)
	})

	t.Run("communication deletion request removes the log", func(t *testing.T) {
		svc, store, _, _ := newChangeRequestFixture(t)
		c := seedCollection(t, store, 150000)
		l := seedCommunicationLog(t, store, c.ID)

		request, err := svc.RequestCommunicationDeletion(ctx, l.ID, "logged on wrong account", agentActor)
		require.NoError(t, err)

		_, err = svc.Approve(ctx, request.ID, adminActor)
		require.NoError(t, err)

		_, exists := store.logs[l.ID]
		assert.False(t, exists)
	})
}

func TestChangeRequestService_ProcessAutoApprovals(t *testing.T) {
	ctx := context.Background()

	t.Run("due requests are applied after the window", func(t *testing.T) {
		svc, store, _, _ := newChangeRequestFixture(t)
		c := seedCollection(t, store, 150000)
		p := seedApprovedPayment(t, store, c, 50000)
		request, err := svc.RequestPaymentEdit(ctx, p.ID, PaymentEdit{Amount: int64Ptr(30000)}, "typo", agentActor)
		require.NoError(t, err)

		after := request.AutoApproveAt.Add(time.Minute)
		processed, err := svc.ProcessAutoApprovals(ctx, after)

		require.NoError(t, err)
		assert.Equal(t, 1, processed)

		stored := store.request(request.ID)
		assert.Equal(t, approval.RequestStatusAutoApproved, stored.Status)
		assert.Nil(t, stored.ResolvedBy, "nobody approved it")

		payment := store.payment(p.ID)
		assert.Equal(t, int64(30000), payment.Amount)
		collection := store.collection(c.ID)
		assert.Equal(t, int64(120000), collection.OutstandingAmount)
	})

	t.Run("not yet due requests are untouched", func(t *testing.T) {
		svc, store, _, _ := newChangeRequestFixture(t)
		c := seedCollection(t, store, 150000)
		p := seedApprovedPayment(t, store, c, 50000)
		request, err := svc.RequestPaymentEdit(ctx, p.ID, PaymentEdit{Amount: int64Ptr(30000)}, "typo", agentActor)
		require.NoError(t, err)

		processed, err := svc.ProcessAutoApprovals(ctx, request.AutoApproveAt.Add(-time.Minute))

		require.NoError(t, err)
		assert.Equal(t, 0, processed)
		assert.Equal(t, approval.RequestStatusPending, store.request(request.ID).Status)
	})

	t.Run("human resolution beats the sweep", func(t *testing.T) {
		svc, store, _, _ := newChangeRequestFixture(t)
		c := seedCollection(t, store, 150000)
		p := seedApprovedPayment(t, store, c, 50000)
		request, err := svc.RequestPaymentEdit(ctx, p.ID, PaymentEdit{Amount: int64Ptr(30000)}, "typo", agentActor)
		require.NoError(t, err)

		_, err = svc.Reject(ctx, request.ID, adminActor, "original was correct")
		require.NoError(t, err)

		processed, err := svc.ProcessAutoApprovals(ctx, request.AutoApproveAt.Add(time.Minute))

		require.NoError(t, err)
		assert.Equal(t, 0, processed)
		assert.Equal(t, approval.RequestStatusRejected, store.request(request.ID).Status)
		assert.Equal(t, int64(50000), store.payment(p.ID).Amount)
	})

	t.Run("sweep is idempotent", func(t *testing.T) {
		svc, store, _, _ := newChangeRequestFixture(t)
		c := seedCollection(t, store, 150000)
		p := seedApprovedPayment(t, store, c, 50000)
		request, err := svc.RequestPaymentEdit(ctx, p.ID, PaymentEdit{Amount: int64Ptr(30000)}, "typo", agentActor)
		require.NoError(t, err)

		after := request.AutoApproveAt.Add(time.Minute)
		processed, err := svc.ProcessAutoApprovals(ctx, after)
		require.NoError(t, err)
		require.Equal(t, 1, processed)

		processed, err = svc.ProcessAutoApprovals(ctx, after)
		require.NoError(t, err)
		assert.Equal(t, 0, processed)

		collection := store.collection(c.ID)
		assert.Equal(t, int64(120000), collection.OutstandingAmount, "delta applied exactly once")
	})

	t.Run("one failing request does not stall the sweep", func(t *testing.T) {
		svc, store, _, _ := newChangeRequestFixture(t)
		c := seedCollection(t, store, 150000)
		p1 := seedApprovedPayment(t, store, c, 30000)
		p2 := seedApprovedPayment(t, store, c, 50000)

		r1, err := svc.RequestPaymentEdit(ctx, p1.ID, PaymentEdit{Amount: int64Ptr(20000)}, "typo", agentActor)
		require.NoError(t, err)
		r2, err := svc.RequestPaymentEdit(ctx, p2.ID, PaymentEdit{Amount: int64Ptr(40000)}, "typo", agentActor)
		require.NoError(t, err)

		// Make the first request unprocessable.
		delete(store.payments, p1.ID)

		after := r1.AutoApproveAt.Add(time.Hour)
		if r2.AutoApproveAt.After(r1.AutoApproveAt) {
			after = r2.AutoApproveAt.Add(time.Hour)
		}
		processed, err := svc.ProcessAutoApprovals(ctx, after)

		require.NoError(t, err)
		assert.Equal(t, 1, processed)
		assert.Equal(t, int64(40000), store.payment(p2.ID).Amount)
	})
}
