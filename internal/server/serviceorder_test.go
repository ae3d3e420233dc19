package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	auditdomain "github.com/transnet/rms/internal/audit/domain"
	sodomain "github.com/transnet/rms/internal/serviceorder/domain"
)

type fakeOrderService struct {
	createCalls int
	createErr   error
	getErr      error
	order       sodomain.ServiceOrder
}

func (f *fakeOrderService) Create(ctx context.Context, req sodomain.CreateOrderRequest) (sodomain.ServiceOrder, error) {
	f.createCalls++
	_ = ctx
	if f.createErr != nil {
		return sodomain.ServiceOrder{}, f.createErr
	}
	order := f.order
	order.OrderNo = req.OrderNo
	return order, nil
}

func (f *fakeOrderService) Update(ctx context.Context, req sodomain.UpdateOrderRequest) (sodomain.ServiceOrder, error) {
	_ = ctx
	_ = req
	return f.order, nil
}

func (f *fakeOrderService) GetByID(ctx context.Context, req sodomain.GetOrderRequest) (sodomain.ServiceOrder, error) {
	_ = ctx
	_ = req
	if f.getErr != nil {
		return sodomain.ServiceOrder{}, f.getErr
	}
	return f.order, nil
}

func (f *fakeOrderService) GetForm(ctx context.Context, req sodomain.GetOrderRequest) (sodomain.CreateOrderRequest, error) {
	_ = ctx
	_ = req
	return sodomain.CreateOrderRequest{}, nil
}

func (f *fakeOrderService) List(ctx context.Context, req sodomain.ListOrderRequest) (sodomain.ListOrderResponse, error) {
	_ = ctx
	_ = req
	return sodomain.ListOrderResponse{Orders: []sodomain.ServiceOrder{f.order}}, nil
}

func (f *fakeOrderService) Delete(ctx context.Context, req sodomain.DeleteOrderRequest) error {
	_ = ctx
	_ = req
	return nil
}

func (f *fakeOrderService) BulkDelete(ctx context.Context, req sodomain.BulkDeleteOrderRequest) (sodomain.BulkDeleteOrderResult, error) {
	_ = ctx
	_ = req
	return sodomain.BulkDeleteOrderResult{Deleted: req.IDs}, nil
}

type fakeAuditService struct {
	actions []string
}

func (f *fakeAuditService) Record(ctx context.Context, action, targetType string, targetID *string, metadata map[string]any) error {
	f.actions = append(f.actions, action)
	_ = ctx
	_ = targetType
	_ = targetID
	_ = metadata
	return nil
}

func (f *fakeAuditService) List(ctx context.Context, req auditdomain.ListAuditLogRequest) (auditdomain.ListAuditLogResponse, error) {
	_ = ctx
	_ = req
	return auditdomain.ListAuditLogResponse{}, nil
}

type fakeAuthzService struct {
	denied bool
}

func (f *fakeAuthzService) Authorize(ctx context.Context, actor, object, action string) error {
	_ = ctx
	_ = actor
	_ = object
	_ = action
	if f.denied {
		return ErrForbidden
	}
	return nil
}

func (f *fakeAuthzService) Grant(ctx context.Context, actor, role string) error {
	_ = ctx
	_ = actor
	_ = role
	return nil
}

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(ErrorHandlingMiddleware())
	return router
}

func TestCreateServiceOrderHandlerRecordsAudit(t *testing.T) {
	orderSvc := &fakeOrderService{order: sodomain.ServiceOrder{ID: snowflake.ID(42)}}
	auditSvc := &fakeAuditService{}
	srv := &Server{orderSvc: orderSvc, auditSvc: auditSvc}

	router := newTestRouter()
	router.POST("/service-orders", srv.CreateServiceOrder)

	body := bytes.NewBufferString(`{"order_no":"SO-1001","tenant_id":"7"}`)
	req := httptest.NewRequest(http.MethodPost, "/service-orders", body)
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if orderSvc.createCalls != 1 {
		t.Fatalf("expected create to be called once, got %d", orderSvc.createCalls)
	}
	if len(auditSvc.actions) != 1 || auditSvc.actions[0] != "service_order.created" {
		t.Fatalf("expected a service_order.created audit entry, got %v", auditSvc.actions)
	}
}

func TestCreateServiceOrderHandlerMapsValidationError(t *testing.T) {
	orderSvc := &fakeOrderService{createErr: sodomain.ErrInvalidTenant}
	srv := &Server{orderSvc: orderSvc, auditSvc: &fakeAuditService{}}

	router := newTestRouter()
	router.POST("/service-orders", srv.CreateServiceOrder)

	body := bytes.NewBufferString(`{"order_no":"SO-1001","tenant_id":"nope"}`)
	req := httptest.NewRequest(http.MethodPost, "/service-orders", body)
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d: %s", resp.Code, resp.Body.String())
	}

	var payload errorResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if payload.Error.Type != "validation_error" {
		t.Fatalf("expected validation_error, got %q", payload.Error.Type)
	}
	if len(payload.Error.Errors) != 1 || payload.Error.Errors[0].Field != "tenant" {
		t.Fatalf("expected tenant field error, got %+v", payload.Error.Errors)
	}
}

func TestCreateServiceOrderHandlerMapsConflict(t *testing.T) {
	orderSvc := &fakeOrderService{createErr: sodomain.ErrDuplicateOrderNo}
	srv := &Server{orderSvc: orderSvc, auditSvc: &fakeAuditService{}}

	router := newTestRouter()
	router.POST("/service-orders", srv.CreateServiceOrder)

	body := bytes.NewBufferString(`{"order_no":"SO-1001","tenant_id":"7"}`)
	req := httptest.NewRequest(http.MethodPost, "/service-orders", body)
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestGetServiceOrderHandlerMapsNotFound(t *testing.T) {
	orderSvc := &fakeOrderService{getErr: sodomain.ErrNotFound}
	srv := &Server{orderSvc: orderSvc, auditSvc: &fakeAuditService{}}

	router := newTestRouter()
	router.GET("/service-orders/:id", srv.GetServiceOrderByID)

	req := httptest.NewRequest(http.MethodGet, "/service-orders/99", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestRequireActionRejectsMissingActor(t *testing.T) {
	srv := &Server{authzSvc: &fakeAuthzService{}}

	router := newTestRouter()
	router.GET("/secure", srv.requireAction("service_order", "view"), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"data": "ok"})
	})

	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestRequireActionMapsForbidden(t *testing.T) {
	srv := &Server{authzSvc: &fakeAuthzService{denied: true}}

	router := newTestRouter()
	router.GET("/secure", srv.requireAction("service_order", "view"), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"data": "ok"})
	})

	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	req.Header.Set("X-Actor", "alice")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d: %s", resp.Code, resp.Body.String())
	}
}
