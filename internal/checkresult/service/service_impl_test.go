package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"github.com/transnet/rms/internal/checkresult/domain"
	"github.com/transnet/rms/internal/checkresult/repository"
	sodomain "github.com/transnet/rms/internal/serviceorder/domain"
	sorepository "github.com/transnet/rms/internal/serviceorder/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type checkResultTestEnv struct {
	db   *gorm.DB
	node *snowflake.Node
	svc  domain.Service
}

func newCheckResultTestEnv(t *testing.T) checkResultTestEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&sodomain.ServiceOrder{},
		&domain.ResourceCheckResult{},
	))

	node, err := snowflake.NewNode(4)
	require.NoError(t, err)

	svc := New(Params{
		DB:        db,
		Log:       zap.NewNop(),
		GenID:     node,
		Repo:      repository.Provide(),
		OrderRepo: sorepository.Provide(),
	})

	return checkResultTestEnv{db: db, node: node, svc: svc}
}

func (e checkResultTestEnv) seedOrder(t *testing.T, orderNo string, checkType sodomain.CheckType) *sodomain.ServiceOrder {
	t.Helper()
	order := &sodomain.ServiceOrder{
		ID:        e.node.Generate(),
		OrderNo:   orderNo,
		TenantID:  e.node.Generate(),
		CheckType: checkType,
		CheckData: []byte(`{}`),
	}
	require.NoError(t, e.db.Create(order).Error)
	return order
}

func TestPutCheckResultUpsert(t *testing.T) {
	env := newCheckResultTestEnv(t)
	order := env.seedOrder(t, "SO-2024-800", sodomain.CheckTypeTransmission)

	first, err := env.svc.Put(context.Background(), domain.PutCheckResultRequest{
		ServiceOrderID:     order.ID.String(),
		CheckResult:        domain.ResultUnavailable,
		UnavailableReasons: []string{"wavelength", "module"},
		Description:        "no spare wavelengths on the ring",
	})
	require.NoError(t, err)
	require.Equal(t, domain.ResultUnavailable, first.CheckResult)

	second, err := env.svc.Put(context.Background(), domain.PutCheckResultRequest{
		ServiceOrderID: order.ID.String(),
		CheckResult:    domain.ResultNeedModule,
	})
	require.NoError(t, err)
	require.Equal(t, domain.ResultNeedModule, second.CheckResult)
	require.Empty(t, second.UnavailableReasons)

	var count int64
	require.NoError(t, env.db.Model(&domain.ResourceCheckResult{}).
		Where("service_order_id = ?", order.ID).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestPutCheckResultVocabularyPerCategory(t *testing.T) {
	env := newCheckResultTestEnv(t)

	fiber := env.seedOrder(t, "SO-2024-810", sodomain.CheckTypeFiber)
	_, err := env.svc.Put(context.Background(), domain.PutCheckResultRequest{
		ServiceOrderID: fiber.ID.String(),
		CheckResult:    domain.ResultNeedModule,
	})
	require.ErrorIs(t, err, domain.ErrInvalidResult)

	_, err = env.svc.Put(context.Background(), domain.PutCheckResultRequest{
		ServiceOrderID:     fiber.ID.String(),
		CheckResult:        domain.ResultUnavailable,
		UnavailableReasons: []string{"cabinet"},
	})
	require.ErrorIs(t, err, domain.ErrInvalidReason)

	colocation := env.seedOrder(t, "SO-2024-811", sodomain.CheckTypeColocation)
	result, err := env.svc.Put(context.Background(), domain.PutCheckResultRequest{
		ServiceOrderID:     colocation.ID.String(),
		CheckResult:        domain.ResultUnavailable,
		UnavailableReasons: []string{"cabinet", "power"},
	})
	require.NoError(t, err)
	require.Equal(t, []string{"cabinet", "power"}, []string(result.UnavailableReasons))
}

func TestPutCheckResultRequiresCategory(t *testing.T) {
	env := newCheckResultTestEnv(t)
	order := env.seedOrder(t, "SO-2024-820", "")

	_, err := env.svc.Put(context.Background(), domain.PutCheckResultRequest{
		ServiceOrderID: order.ID.String(),
		CheckResult:    domain.ResultAvailable,
	})
	require.ErrorIs(t, err, domain.ErrInvalidCheckType)
}

func TestGetCheckResultNotFound(t *testing.T) {
	env := newCheckResultTestEnv(t)
	order := env.seedOrder(t, "SO-2024-830", sodomain.CheckTypeFiber)

	_, err := env.svc.Get(context.Background(), domain.GetCheckResultRequest{
		ServiceOrderID: order.ID.String(),
	})
	require.ErrorIs(t, err, domain.ErrNotFound)
}
