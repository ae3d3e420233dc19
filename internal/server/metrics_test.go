package server

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	crdomain "github.com/transnet/rms/internal/checkresult/domain"
	"github.com/transnet/rms/internal/document"
	obsmetrics "github.com/transnet/rms/internal/observability/metrics"
	refdomain "github.com/transnet/rms/internal/reference/domain"
	refrepository "github.com/transnet/rms/internal/reference/repository"
	rldomain "github.com/transnet/rms/internal/resourceledger/domain"
	sodomain "github.com/transnet/rms/internal/serviceorder/domain"
	sorepository "github.com/transnet/rms/internal/serviceorder/repository"
	soservice "github.com/transnet/rms/internal/serviceorder/service"
	tddomain "github.com/transnet/rms/internal/taskdetail/domain"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type staticSiteResolver struct{}

func (staticSiteResolver) ResolveSite(ctx context.Context, id snowflake.ID) (*document.SiteRef, error) {
	_ = ctx
	_ = id
	return nil, nil
}

// The save counter is owned by the service layer; a write through the HTTP
// handler must increment it exactly once.
func TestCreateServiceOrderCountsSaveOnce(t *testing.T) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(
		&refdomain.Tenant{},
		&refdomain.Site{},
		&sodomain.ServiceOrder{},
		&tddomain.TaskDetail{},
		&rldomain.ResourceLedger{},
		&crdomain.ResourceCheckResult{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	node, err := snowflake.NewNode(5)
	if err != nil {
		t.Fatalf("snowflake: %v", err)
	}

	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m, err := obsmetrics.New(obsmetrics.Config{ServiceName: "rms-test"}, provider)
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}

	orderSvc := soservice.New(soservice.Params{
		DB:      db,
		Log:     zap.NewNop(),
		GenID:   node,
		Repo:    sorepository.Provide(),
		RefRepo: refrepository.Provide(),
		Sites:   staticSiteResolver{},
		Metrics: m,
	})

	tenant := &refdomain.Tenant{ID: node.Generate(), Name: "acme", Slug: "acme"}
	if err := db.Create(tenant).Error; err != nil {
		t.Fatalf("seed tenant: %v", err)
	}

	srv := &Server{orderSvc: orderSvc, auditSvc: &fakeAuditService{}, obsMetrics: m}
	router := newTestRouter()
	router.POST("/service-orders", srv.CreateServiceOrder)

	body := bytes.NewBufferString(fmt.Sprintf(`{"order_no":"SO-9001","tenant_id":"%s"}`, tenant.ID.String()))
	req := httptest.NewRequest(http.MethodPost, "/service-orders", body)
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("collect: %v", err)
	}

	var total int64
	for _, scope := range rm.ScopeMetrics {
		for _, met := range scope.Metrics {
			if met.Name != "rms_service_orders_saved_total" {
				continue
			}
			sum, ok := met.Data.(metricdata.Sum[int64])
			if !ok {
				t.Fatalf("unexpected data type %T", met.Data)
			}
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
		}
	}
	if total != 1 {
		t.Fatalf("expected the save counter to increment once, got %d", total)
	}
}
