package collections

import (
	"context"
	"testing"

	"github.com/arcollect/backend/internal/domain/collections"
	"github.com/arcollect/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newDisputeFixture(t *testing.T) (*DisputeService, *memStore, *recordingAudit) {
	t.Helper()
	store := newMemStore()
	audit := &recordingAudit{}
	svc := NewDisputeService(store.scope(), audit, zap.NewNop())
	return svc, store, audit
}

func TestDisputeService_RaiseDispute(t *testing.T) {
	ctx := context.Background()

	t.Run("sets disputed status", func(t *testing.T) {
		svc, store, audit := newDisputeFixture(t)
		c := seedCollection(t, store, 150000)

		err := svc.RaiseDispute(ctx, c.ID, "goods never delivered", agentActor)

		require.NoError(t, err)
		stored := store.collection(c.ID)
		assert.Equal(t, collections.CollectionStatusDisputed, stored.Status)
		assert.Equal(t, "goods never delivered", stored.DisputeReason)
		assert.Contains(t, audit.actions(), "dispute.raised")
	})

	t.Run("empty reason refused", func(t *testing.T) {
		svc, store, _ := newDisputeFixture(t)
		c := seedCollection(t, store, 150000)

		err := svc.RaiseDispute(ctx, c.ID, "  ", agentActor)

		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "VALIDATION_ERROR", domainErr.Code)
	})

	t.Run("unknown collection", func(t *testing.T) {
		svc, _, _ := newDisputeFixture(t)

		err := svc.RaiseDispute(ctx, uuid.New(), "contested", agentActor)

		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestDisputeService_ResolveDispute(t *testing.T) {
	ctx := context.Background()

	t.Run("restores the status implied by the ledger", func(t *testing.T) {
		svc, store, _ := newDisputeFixture(t)
		c := seedCollection(t, store, 150000)
		require.NoError(t, c.ApplyPayment(50000))
		require.NoError(t, c.RaiseDispute("amount contested", uuid.New()))
		store.putCollection(c)

		err := svc.ResolveDispute(ctx, c.ID, adminActor)

		require.NoError(t, err)
		stored := store.collection(c.ID)
		assert.Equal(t, collections.CollectionStatusPartial, stored.Status)
	})

	t.Run("agents may not resolve", func(t *testing.T) {
		svc, store, _ := newDisputeFixture(t)
		c := seedCollection(t, store, 150000)
		require.NoError(t, c.RaiseDispute("contested", uuid.New()))
		store.putCollection(c)

		err := svc.ResolveDispute(ctx, c.ID, agentActor)

		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "FORBIDDEN", domainErr.Code)
	})

	t.Run("undisputed collection", func(t *testing.T) {
		svc, store, _ := newDisputeFixture(t)
		c := seedCollection(t, store, 150000)

		err := svc.ResolveDispute(ctx, c.ID, adminActor)

		require.Error(t, err)
	})
}
