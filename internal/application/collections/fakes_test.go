package collections

import (
	"context"
	"sync"
	"time"

	"github.com/arcollect/backend/internal/domain/approval"
	"github.com/arcollect/backend/internal/domain/collections"
	"github.com/arcollect/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// =============================================================================
// In-memory repositories
//
// Aggregates are stored by value so a caller mutating a loaded aggregate does
// not mutate the store: the conditional-resolution and optimistic-lock
// semantics behave like the real repositories.
// =============================================================================

type memStore struct {
	mu          sync.Mutex
	collections map[uuid.UUID]collections.Collection
	payments    map[uuid.UUID]collections.Payment
	logs        map[uuid.UUID]collections.CommunicationLog
	requests    map[uuid.UUID]approval.ChangeRequest
}

func newMemStore() *memStore {
	return &memStore{
		collections: make(map[uuid.UUID]collections.Collection),
		payments:    make(map[uuid.UUID]collections.Payment),
		logs:        make(map[uuid.UUID]collections.CommunicationLog),
		requests:    make(map[uuid.UUID]approval.ChangeRequest),
	}
}

func (s *memStore) scope() *NoOpTransactionScope {
	return NewNoOpTransactionScope(
		&memCollectionRepo{s},
		&memPaymentRepo{s},
		&memCommunicationRepo{s},
		&memChangeRequestRepo{s},
	)
}

func (s *memStore) putCollection(c *collections.Collection) { s.collections[c.ID] = *c }
func (s *memStore) putPayment(p *collections.Payment)       { s.payments[p.ID] = *p }
func (s *memStore) putLog(l *collections.CommunicationLog)  { s.logs[l.ID] = *l }
func (s *memStore) putRequest(r *approval.ChangeRequest)    { s.requests[r.ID] = *r }

func (s *memStore) collection(id uuid.UUID) collections.Collection { return s.collections[id] }
func (s *memStore) payment(id uuid.UUID) collections.Payment       { return s.payments[id] }
func (s *memStore) request(id uuid.UUID) approval.ChangeRequest    { return s.requests[id] }

type memCollectionRepo struct{ s *memStore }

func (r *memCollectionRepo) FindByID(_ context.Context, id uuid.UUID) (*collections.Collection, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.collections[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r *memCollectionRepo) FindByInvoiceNumber(_ context.Context, invoiceNumber string) (*collections.Collection, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.collections {
		if c.InvoiceNumber == invoiceNumber {
			found := c
			return &found, nil
		}
	}
	return nil, nil
}

func (r *memCollectionRepo) FindAll(_ context.Context, filter collections.CollectionFilter) ([]collections.Collection, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []collections.Collection
	for _, c := range r.s.collections {
		if filter.Status != nil && c.Status != *filter.Status {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (r *memCollectionRepo) FindOpen(_ context.Context) ([]collections.Collection, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []collections.Collection
	for _, c := range r.s.collections {
		if !c.Status.IsTerminal() && c.Status != collections.CollectionStatusPaid {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *memCollectionRepo) Save(_ context.Context, collection *collections.Collection) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.collections[collection.ID] = *collection
	return nil
}

func (r *memCollectionRepo) SaveWithLock(_ context.Context, collection *collections.Collection) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.collections[collection.ID]
	if !ok || stored.Version != collection.Version-1 {
		return shared.ErrConcurrencyConflict
	}
	r.s.collections[collection.ID] = *collection
	return nil
}

func (r *memCollectionRepo) Count(_ context.Context, filter collections.CollectionFilter) (int64, error) {
	items, _ := r.FindAll(context.Background(), filter)
	return int64(len(items)), nil
}

func (r *memCollectionRepo) SumOutstanding(_ context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var total int64
	for _, c := range r.s.collections {
		if !c.Status.IsTerminal() {
			total += c.OutstandingAmount
		}
	}
	return total, nil
}

type memPaymentRepo struct{ s *memStore }

func (r *memPaymentRepo) FindByID(_ context.Context, id uuid.UUID) (*collections.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.payments[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *memPaymentRepo) FindByCollection(_ context.Context, collectionID uuid.UUID) ([]collections.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []collections.Payment
	for _, p := range r.s.payments {
		if p.CollectionID == collectionID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memPaymentRepo) FindAll(_ context.Context, filter collections.PaymentFilter) ([]collections.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []collections.Payment
	for _, p := range r.s.payments {
		if filter.Status != nil && p.Status != *filter.Status {
			continue
		}
		if filter.CollectionID != nil && p.CollectionID != *filter.CollectionID {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *memPaymentRepo) Save(_ context.Context, payment *collections.Payment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.payments[payment.ID] = *payment
	return nil
}

func (r *memPaymentRepo) SaveResolution(_ context.Context, payment *collections.Payment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.payments[payment.ID]
	if !ok {
		return shared.ErrNotFound
	}
	if stored.Status != collections.PaymentStatusPendingApproval {
		return shared.ErrAlreadyResolved
	}
	r.s.payments[payment.ID] = *payment
	return nil
}

func (r *memPaymentRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.payments, id)
	return nil
}

type memCommunicationRepo struct{ s *memStore }

func (r *memCommunicationRepo) FindByID(_ context.Context, id uuid.UUID) (*collections.CommunicationLog, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.logs[id]
	if !ok {
		return nil, nil
	}
	return &l, nil
}

func (r *memCommunicationRepo) FindByCollection(_ context.Context, collectionID uuid.UUID) ([]collections.CommunicationLog, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []collections.CommunicationLog
	for _, l := range r.s.logs {
		if l.CollectionID == collectionID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *memCommunicationRepo) Save(_ context.Context, log *collections.CommunicationLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.logs[log.ID] = *log
	return nil
}

func (r *memCommunicationRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.logs, id)
	return nil
}

type memChangeRequestRepo struct{ s *memStore }

func (r *memChangeRequestRepo) FindByID(_ context.Context, id uuid.UUID) (*approval.ChangeRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cr, ok := r.s.requests[id]
	if !ok {
		return nil, nil
	}
	return &cr, nil
}

func (r *memChangeRequestRepo) FindAll(_ context.Context, filter approval.ChangeRequestFilter) ([]approval.ChangeRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []approval.ChangeRequest
	for _, cr := range r.s.requests {
		if filter.Status != nil && cr.Status != *filter.Status {
			continue
		}
		if filter.Kind != nil && cr.Kind != *filter.Kind {
			continue
		}
		out = append(out, cr)
	}
	return out, nil
}

func (r *memChangeRequestRepo) FindPendingByTarget(_ context.Context, targetID uuid.UUID) ([]approval.ChangeRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []approval.ChangeRequest
	for _, cr := range r.s.requests {
		if cr.TargetID == targetID && cr.Status == approval.RequestStatusPending {
			out = append(out, cr)
		}
	}
	return out, nil
}

func (r *memChangeRequestRepo) FindDue(_ context.Context, now time.Time) ([]approval.ChangeRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []approval.ChangeRequest
	for _, cr := range r.s.requests {
		if cr.Status == approval.RequestStatusPending && !now.Before(cr.AutoApproveAt) {
			out = append(out, cr)
		}
	}
	return out, nil
}

func (r *memChangeRequestRepo) Save(_ context.Context, request *approval.ChangeRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.requests[request.ID] = *request
	return nil
}

func (r *memChangeRequestRepo) SaveResolution(_ context.Context, request *approval.ChangeRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.requests[request.ID]
	if !ok {
		return shared.ErrNotFound
	}
	if stored.Status != approval.RequestStatusPending {
		return shared.ErrAlreadyResolved
	}
	r.s.requests[request.ID] = *request
	return nil
}

func (r *memChangeRequestRepo) Count(_ context.Context, filter approval.ChangeRequestFilter) (int64, error) {
	items, _ := r.FindAll(context.Background(), filter)
	return int64(len(items)), nil
}

// =============================================================================
// Recording collaborators
// =============================================================================

type recordingNotifier struct {
	mu                sync.Mutex
	pendingPayments   int
	approvedPayments  int
	rejectedPayments  int
	pendingRequests   int
	resolvedRequests  int
	overdueReminders  int
	lastOverdueTarget uuid.UUID
}

func (n *recordingNotifier) PaymentPendingApproval(_ context.Context, _ *collections.Collection, _ *collections.Payment) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.pendingPayments++
}

func (n *recordingNotifier) PaymentApproved(_ context.Context, _ *collections.Collection, _ *collections.Payment) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.approvedPayments++
}

func (n *recordingNotifier) PaymentRejected(_ context.Context, _ *collections.Collection, _ *collections.Payment) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.rejectedPayments++
}

func (n *recordingNotifier) ChangeRequestPending(_ context.Context, _ *approval.ChangeRequest) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.pendingRequests++
}

func (n *recordingNotifier) ChangeRequestResolved(_ context.Context, _ *approval.ChangeRequest) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.resolvedRequests++
}

func (n *recordingNotifier) CollectionOverdue(_ context.Context, c *collections.Collection) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.overdueReminders++
	n.lastOverdueTarget = c.ID
}

type recordingAudit struct {
	mu      sync.Mutex
	entries []AuditEntry
}

func (a *recordingAudit) Record(_ context.Context, entry AuditEntry) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, entry)
}

func (a *recordingAudit) actions() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, 0, len(a.entries))
	for _, e := range a.entries {
		out = append(out, e.Action)
	}
	return out
}

type stubThrottle struct {
	allow bool
	calls int
}

func (t *stubThrottle) Allow(_ context.Context, _ string, _ time.Duration) (bool, error) {
	t.calls++
	return t.allow, nil
}
