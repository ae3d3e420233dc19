package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"github.com/transnet/rms/internal/resourceledger/domain"
	"github.com/transnet/rms/internal/resourceledger/repository"
	sodomain "github.com/transnet/rms/internal/serviceorder/domain"
	sorepository "github.com/transnet/rms/internal/serviceorder/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ledgerTestEnv struct {
	db   *gorm.DB
	node *snowflake.Node
	svc  domain.Service
}

func newLedgerTestEnv(t *testing.T) ledgerTestEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&sodomain.ServiceOrder{},
		&domain.ResourceLedger{},
	))

	node, err := snowflake.NewNode(3)
	require.NoError(t, err)

	svc := New(Params{
		DB:        db,
		Log:       zap.NewNop(),
		GenID:     node,
		Repo:      repository.Provide(),
		OrderRepo: sorepository.Provide(),
	})

	return ledgerTestEnv{db: db, node: node, svc: svc}
}

func (e ledgerTestEnv) seedOrder(t *testing.T, orderNo string) *sodomain.ServiceOrder {
	t.Helper()
	order := &sodomain.ServiceOrder{
		ID:        e.node.Generate(),
		OrderNo:   orderNo,
		TenantID:  e.node.Generate(),
		CheckData: []byte(`{}`),
	}
	require.NoError(t, e.db.Create(order).Error)
	return order
}

func TestCreateLedgerDuplicateResource(t *testing.T) {
	env := newLedgerTestEnv(t)
	first := env.seedOrder(t, "SO-2024-700")
	second := env.seedOrder(t, "SO-2024-701")

	_, err := env.svc.Create(context.Background(), domain.CreateLedgerRequest{
		ServiceOrderID: first.ID.String(),
		ResourceType:   domain.ResourceTypeCircuit,
		ResourceID:     "C100",
	})
	require.NoError(t, err)

	_, err = env.svc.Create(context.Background(), domain.CreateLedgerRequest{
		ServiceOrderID: second.ID.String(),
		ResourceType:   domain.ResourceTypeCircuit,
		ResourceID:     "C100",
	})
	require.ErrorIs(t, err, domain.ErrDuplicateResource)

	// Same identifier under a different resource type is a new asset.
	_, err = env.svc.Create(context.Background(), domain.CreateLedgerRequest{
		ServiceOrderID: second.ID.String(),
		ResourceType:   domain.ResourceTypeCable,
		ResourceID:     "C100",
	})
	require.NoError(t, err)
}

func TestCreateLedgerValidation(t *testing.T) {
	env := newLedgerTestEnv(t)
	order := env.seedOrder(t, "SO-2024-710")

	_, err := env.svc.Create(context.Background(), domain.CreateLedgerRequest{
		ServiceOrderID: order.ID.String(),
		ResourceType:   "switch",
		ResourceID:     "SW-1",
	})
	require.ErrorIs(t, err, domain.ErrInvalidResourceType)

	_, err = env.svc.Create(context.Background(), domain.CreateLedgerRequest{
		ServiceOrderID: order.ID.String(),
		ResourceType:   domain.ResourceTypeCircuit,
		ResourceID:     "  ",
	})
	require.ErrorIs(t, err, domain.ErrInvalidResourceID)

	_, err = env.svc.Create(context.Background(), domain.CreateLedgerRequest{
		ServiceOrderID: env.node.Generate().String(),
		ResourceType:   domain.ResourceTypeCircuit,
		ResourceID:     "C-1",
	})
	require.ErrorIs(t, err, domain.ErrInvalidOrder)
}

func TestCreateLedgerSnapshot(t *testing.T) {
	env := newLedgerTestEnv(t)
	order := env.seedOrder(t, "SO-2024-720")

	_, err := env.svc.Create(context.Background(), domain.CreateLedgerRequest{
		ServiceOrderID: order.ID.String(),
		ResourceType:   domain.ResourceTypeHostingDevice,
		ResourceID:     "DEV-1",
		Snapshot:       `{"model":"NE8000"`,
	})
	require.ErrorIs(t, err, domain.ErrInvalidSnapshot)

	ledger, err := env.svc.Create(context.Background(), domain.CreateLedgerRequest{
		ServiceOrderID: order.ID.String(),
		ResourceType:   domain.ResourceTypeHostingDevice,
		ResourceID:     "DEV-2",
		Snapshot:       `{"model":"NE8000","ports":48}`,
	})
	require.NoError(t, err)
	require.JSONEq(t, `{"model":"NE8000","ports":48}`, string(ledger.Snapshot))

	empty, err := env.svc.Create(context.Background(), domain.CreateLedgerRequest{
		ServiceOrderID: order.ID.String(),
		ResourceType:   domain.ResourceTypeHostingDevice,
		ResourceID:     "DEV-3",
	})
	require.NoError(t, err)
	require.JSONEq(t, `{}`, string(empty.Snapshot))
}

func TestTerminateByOrderOnlyTouchesActiveRows(t *testing.T) {
	env := newLedgerTestEnv(t)
	order := env.seedOrder(t, "SO-2024-730")
	other := env.seedOrder(t, "SO-2024-731")

	seed := func(orderID snowflake.ID, resourceID, status string) {
		require.NoError(t, env.db.Create(&domain.ResourceLedger{
			ID:              env.node.Generate(),
			ServiceOrderID:  orderID,
			ResourceType:    domain.ResourceTypeCircuit,
			ResourceID:      resourceID,
			LifecycleStatus: status,
			Snapshot:        []byte(`{}`),
		}).Error)
	}
	seed(order.ID, "C-1", domain.LifecycleStatusActive)
	seed(order.ID, "C-2", domain.LifecycleStatusTerminated)
	seed(other.ID, "C-3", domain.LifecycleStatusActive)

	count, err := repository.Provide().TerminateByOrder(context.Background(), env.db, order.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, count)

	var untouched domain.ResourceLedger
	require.NoError(t, env.db.First(&untouched, "resource_id = ?", "C-3").Error)
	require.Equal(t, domain.LifecycleStatusActive, untouched.LifecycleStatus)
}
