package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	crdomain "github.com/transnet/rms/internal/checkresult/domain"
	"github.com/transnet/rms/internal/document"
	refdomain "github.com/transnet/rms/internal/reference/domain"
	refrepository "github.com/transnet/rms/internal/reference/repository"
	rldomain "github.com/transnet/rms/internal/resourceledger/domain"
	"github.com/transnet/rms/internal/serviceorder/domain"
	"github.com/transnet/rms/internal/serviceorder/repository"
	tddomain "github.com/transnet/rms/internal/taskdetail/domain"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type siteTableResolver struct {
	db *gorm.DB
}

func (r siteTableResolver) ResolveSite(ctx context.Context, id snowflake.ID) (*document.SiteRef, error) {
	var site refdomain.Site
	if err := r.db.WithContext(ctx).Limit(1).Find(&site, "id = ?", id).Error; err != nil {
		return nil, err
	}
	if site.ID == 0 {
		return nil, nil
	}
	return &document.SiteRef{ID: site.ID, Name: site.Name}, nil
}

type orderTestEnv struct {
	db   *gorm.DB
	node *snowflake.Node
	svc  domain.Service
}

func newOrderTestEnv(t *testing.T) orderTestEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&refdomain.Tenant{},
		&refdomain.Site{},
		&domain.ServiceOrder{},
		&tddomain.TaskDetail{},
		&rldomain.ResourceLedger{},
		&crdomain.ResourceCheckResult{},
	))

	node, err := snowflake.NewNode(2)
	require.NoError(t, err)

	svc := New(Params{
		DB:      db,
		Log:     zap.NewNop(),
		GenID:   node,
		Repo:    repository.Provide(),
		RefRepo: refrepository.Provide(),
		Sites:   siteTableResolver{db: db},
	})

	return orderTestEnv{db: db, node: node, svc: svc}
}

func (e orderTestEnv) seedTenant(t *testing.T, name string) *refdomain.Tenant {
	t.Helper()
	tenant := &refdomain.Tenant{
		ID:   e.node.Generate(),
		Name: name,
		Slug: name,
	}
	require.NoError(t, e.db.Create(tenant).Error)
	return tenant
}

func (e orderTestEnv) seedSite(t *testing.T, name string) *refdomain.Site {
	t.Helper()
	site := &refdomain.Site{
		ID:   e.node.Generate(),
		Name: name,
		Slug: name,
	}
	require.NoError(t, e.db.Create(site).Error)
	return site
}

func TestCreateOrderDuplicateOrderNo(t *testing.T) {
	env := newOrderTestEnv(t)
	tenant := env.seedTenant(t, "acme")

	req := domain.CreateOrderRequest{
		OrderNo:  "SO-2024-500",
		TenantID: tenant.ID.String(),
	}

	_, err := env.svc.Create(context.Background(), req)
	require.NoError(t, err)

	_, err = env.svc.Create(context.Background(), req)
	require.ErrorIs(t, err, domain.ErrDuplicateOrderNo)
}

func TestCreateOrderUnknownTenant(t *testing.T) {
	env := newOrderTestEnv(t)

	_, err := env.svc.Create(context.Background(), domain.CreateOrderRequest{
		OrderNo:  "SO-2024-510",
		TenantID: env.node.Generate().String(),
	})
	require.ErrorIs(t, err, domain.ErrInvalidTenant)
}

func TestCreateOrderUnknownCheckType(t *testing.T) {
	env := newOrderTestEnv(t)
	tenant := env.seedTenant(t, "globex")

	_, err := env.svc.Create(context.Background(), domain.CreateOrderRequest{
		OrderNo:   "SO-2024-520",
		TenantID:  tenant.ID.String(),
		CheckType: "satellite",
	})
	require.ErrorIs(t, err, domain.ErrInvalidCheckType)
}

func TestCreateOrderBadDate(t *testing.T) {
	env := newOrderTestEnv(t)
	tenant := env.seedTenant(t, "initech")

	_, err := env.svc.Create(context.Background(), domain.CreateOrderRequest{
		OrderNo:   "SO-2024-530",
		TenantID:  tenant.ID.String(),
		ApplyDate: "03/15/2024",
	})
	require.ErrorIs(t, err, domain.ErrInvalidDate)
}

func TestCreateOrderParentMustExist(t *testing.T) {
	env := newOrderTestEnv(t)
	tenant := env.seedTenant(t, "umbrella")

	_, err := env.svc.Create(context.Background(), domain.CreateOrderRequest{
		OrderNo:       "SO-2024-540",
		TenantID:      tenant.ID.String(),
		ParentOrderID: env.node.Generate().String(),
	})
	require.ErrorIs(t, err, domain.ErrInvalidParentOrder)
}

func TestGetFormRoundTripsCheckDocument(t *testing.T) {
	env := newOrderTestEnv(t)
	tenant := env.seedTenant(t, "wayne")
	siteA := env.seedSite(t, "Hangzhou-DC1")
	siteZ := env.seedSite(t, "Nanchang-DC2")

	created, err := env.svc.Create(context.Background(), domain.CreateOrderRequest{
		OrderNo:   "SO-2024-550",
		TenantID:  tenant.ID.String(),
		ApplyDate: "2024-03-15",
		CheckType: string(domain.CheckTypeTransmission),
		Check: domain.CheckInput{
			Bandwidth:     "10G",
			Quantity:      "2",
			Protection:    "yes",
			InterfaceType: domain.InterfaceTypeOptical,
			SiteA:         siteA.ID.String(),
			SiteZ:         siteZ.ID.String(),
		},
	})
	require.NoError(t, err)

	form, err := env.svc.GetForm(context.Background(), domain.GetOrderRequest{ID: created.ID.String()})
	require.NoError(t, err)
	require.Equal(t, "SO-2024-550", form.OrderNo)
	require.Equal(t, "2024-03-15", form.ApplyDate)
	require.Equal(t, "10G", form.Check.Bandwidth)
	require.Equal(t, "2", form.Check.Quantity)
	require.Equal(t, "true", form.Check.Protection)
	require.Equal(t, siteA.ID.String(), form.Check.SiteA)
	require.Equal(t, siteZ.ID.String(), form.Check.SiteZ)
}

func TestDeleteOrderProtectedByLedger(t *testing.T) {
	env := newOrderTestEnv(t)
	tenant := env.seedTenant(t, "stark")

	created, err := env.svc.Create(context.Background(), domain.CreateOrderRequest{
		OrderNo:  "SO-2024-560",
		TenantID: tenant.ID.String(),
	})
	require.NoError(t, err)

	require.NoError(t, env.db.Create(&rldomain.ResourceLedger{
		ID:              env.node.Generate(),
		ServiceOrderID:  created.ID,
		ResourceType:    rldomain.ResourceTypeCircuit,
		ResourceID:      "C-100",
		LifecycleStatus: rldomain.LifecycleStatusActive,
		Snapshot:        []byte(`{}`),
	}).Error)

	err = env.svc.Delete(context.Background(), domain.DeleteOrderRequest{ID: created.ID.String()})
	require.ErrorIs(t, err, domain.ErrOrderReferenced)

	var count int64
	require.NoError(t, env.db.Model(&domain.ServiceOrder{}).Where("id = ?", created.ID).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestDeleteOrderCascadesTasksAndCheckResult(t *testing.T) {
	env := newOrderTestEnv(t)
	tenant := env.seedTenant(t, "oscorp")

	created, err := env.svc.Create(context.Background(), domain.CreateOrderRequest{
		OrderNo:  "SO-2024-570",
		TenantID: tenant.ID.String(),
	})
	require.NoError(t, err)

	require.NoError(t, env.db.Create(&tddomain.TaskDetail{
		ID:              env.node.Generate(),
		ServiceOrderID:  created.ID,
		TaskType:        tddomain.TaskTypeActivation,
		ExecutionStatus: tddomain.ExecutionStatusPending,
		LifecycleStatus: tddomain.LifecycleStatusActive,
		FeedbackData:    []byte(`{}`),
	}).Error)
	require.NoError(t, env.db.Create(&crdomain.ResourceCheckResult{
		ID:             env.node.Generate(),
		ServiceOrderID: created.ID,
		CheckResult:    "available",
	}).Error)

	require.NoError(t, env.svc.Delete(context.Background(), domain.DeleteOrderRequest{ID: created.ID.String()}))

	var orders, tasks, results int64
	require.NoError(t, env.db.Model(&domain.ServiceOrder{}).Where("id = ?", created.ID).Count(&orders).Error)
	require.NoError(t, env.db.Model(&tddomain.TaskDetail{}).Where("service_order_id = ?", created.ID).Count(&tasks).Error)
	require.NoError(t, env.db.Model(&crdomain.ResourceCheckResult{}).Where("service_order_id = ?", created.ID).Count(&results).Error)
	require.Zero(t, orders)
	require.Zero(t, tasks)
	require.Zero(t, results)
}

func TestBulkDeleteReportsPerItemFailures(t *testing.T) {
	env := newOrderTestEnv(t)
	tenant := env.seedTenant(t, "hooli")

	keep, err := env.svc.Create(context.Background(), domain.CreateOrderRequest{
		OrderNo:  "SO-2024-580",
		TenantID: tenant.ID.String(),
	})
	require.NoError(t, err)
	require.NoError(t, env.db.Create(&rldomain.ResourceLedger{
		ID:              env.node.Generate(),
		ServiceOrderID:  keep.ID,
		ResourceType:    rldomain.ResourceTypeCircuit,
		ResourceID:      "C-200",
		LifecycleStatus: rldomain.LifecycleStatusActive,
		Snapshot:        []byte(`{}`),
	}).Error)

	gone, err := env.svc.Create(context.Background(), domain.CreateOrderRequest{
		OrderNo:  "SO-2024-581",
		TenantID: tenant.ID.String(),
	})
	require.NoError(t, err)

	result, err := env.svc.BulkDelete(context.Background(), domain.BulkDeleteOrderRequest{
		IDs: []string{keep.ID.String(), gone.ID.String()},
	})
	require.NoError(t, err)
	require.Equal(t, []string{gone.ID.String()}, result.Deleted)
	require.Contains(t, result.Failed, keep.ID.String())
}

func TestListOrdersFiltersAndTenantNames(t *testing.T) {
	env := newOrderTestEnv(t)
	tenantA := env.seedTenant(t, "tenant-a")
	tenantB := env.seedTenant(t, "tenant-b")

	_, err := env.svc.Create(context.Background(), domain.CreateOrderRequest{
		OrderNo:   "SO-2024-590",
		TenantID:  tenantA.ID.String(),
		CheckType: string(domain.CheckTypeFiber),
	})
	require.NoError(t, err)
	_, err = env.svc.Create(context.Background(), domain.CreateOrderRequest{
		OrderNo:  "SO-2024-591",
		TenantID: tenantB.ID.String(),
	})
	require.NoError(t, err)

	resp, err := env.svc.List(context.Background(), domain.ListOrderRequest{
		CheckTypes: []string{string(domain.CheckTypeFiber)},
	})
	require.NoError(t, err)
	require.Len(t, resp.Orders, 1)
	require.Equal(t, "SO-2024-590", resp.Orders[0].OrderNo)
	require.Equal(t, "tenant-a", resp.Orders[0].TenantName)
	require.False(t, resp.HasMore)
}

func TestListOrdersPagination(t *testing.T) {
	env := newOrderTestEnv(t)
	tenant := env.seedTenant(t, "pied-piper")

	for i := 0; i < 3; i++ {
		_, err := env.svc.Create(context.Background(), domain.CreateOrderRequest{
			OrderNo:  fmt.Sprintf("SO-2024-60%d", i),
			TenantID: tenant.ID.String(),
		})
		require.NoError(t, err)
		time.Sleep(time.Millisecond)
	}

	first, err := env.svc.List(context.Background(), domain.ListOrderRequest{PageSize: 2})
	require.NoError(t, err)
	require.Len(t, first.Orders, 2)
	require.True(t, first.HasMore)
	require.NotEmpty(t, first.NextPageToken)

	second, err := env.svc.List(context.Background(), domain.ListOrderRequest{
		PageSize:  2,
		PageToken: first.NextPageToken,
	})
	require.NoError(t, err)
	require.Len(t, second.Orders, 1)
	require.False(t, second.HasMore)
}

func TestDeleteOrderDetachesChildOrders(t *testing.T) {
	env := newOrderTestEnv(t)
	tenant := env.seedTenant(t, "initech")

	parent, err := env.svc.Create(context.Background(), domain.CreateOrderRequest{
		OrderNo:  "SO-2024-800",
		TenantID: tenant.ID.String(),
	})
	require.NoError(t, err)

	child, err := env.svc.Create(context.Background(), domain.CreateOrderRequest{
		OrderNo:       "SO-2024-801",
		TenantID:      tenant.ID.String(),
		ParentOrderID: parent.ID.String(),
	})
	require.NoError(t, err)
	require.NotNil(t, child.ParentOrderID)

	require.NoError(t, env.svc.Delete(context.Background(), domain.DeleteOrderRequest{ID: parent.ID.String()}))

	reloaded, err := env.svc.GetByID(context.Background(), domain.GetOrderRequest{ID: child.ID.String()})
	require.NoError(t, err)
	require.Nil(t, reloaded.ParentOrderID)
}

func TestUpdateOrderRejectsSelfParent(t *testing.T) {
	env := newOrderTestEnv(t)
	tenant := env.seedTenant(t, "umbrella")

	order, err := env.svc.Create(context.Background(), domain.CreateOrderRequest{
		OrderNo:  "SO-2024-810",
		TenantID: tenant.ID.String(),
	})
	require.NoError(t, err)

	_, err = env.svc.Update(context.Background(), domain.UpdateOrderRequest{
		ID: order.ID.String(),
		CreateOrderRequest: domain.CreateOrderRequest{
			OrderNo:       order.OrderNo,
			TenantID:      tenant.ID.String(),
			ParentOrderID: order.ID.String(),
		},
	})
	require.ErrorIs(t, err, domain.ErrInvalidParentOrder)
}
