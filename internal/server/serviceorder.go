package server

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/transnet/rms/internal/providers/pdf"
	sodomain "github.com/transnet/rms/internal/serviceorder/domain"
	tddomain "github.com/transnet/rms/internal/taskdetail/domain"
	"github.com/transnet/rms/pkg/db/pagination"
	"gorm.io/datatypes"
)

type listServiceOrderParams struct {
	pagination.Pagination

	OrderNo            string `form:"order_no"`
	SalesContact       string `form:"sales_contact"`
	TenantID           string `form:"tenant_id"`
	CheckType          string `form:"check_type"`
	ConfirmationStatus string `form:"confirmation_status"`
	HasParent          string `form:"has_parent"`
	ApplyDateAfter     string `form:"apply_date_after"`
	ApplyDateBefore    string `form:"apply_date_before"`
	Query              string `form:"q"`
}

func (s *Server) ListServiceOrders(c *gin.Context) {
	var params listServiceOrderParams
	if err := c.ShouldBindQuery(&params); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.orderSvc.List(c.Request.Context(), sodomain.ListOrderRequest{
		PageToken:            params.PageToken,
		PageSize:             int32(params.PageSize),
		OrderNo:              params.OrderNo,
		SalesContact:         params.SalesContact,
		TenantID:             params.TenantID,
		CheckTypes:           splitCSV(params.CheckType),
		ConfirmationStatuses: splitCSV(params.ConfirmationStatus),
		HasParent:            parseOptionalBool(params.HasParent),
		ApplyDateAfter:       params.ApplyDateAfter,
		ApplyDateBefore:      params.ApplyDateBefore,
		Query:                params.Query,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CreateServiceOrder(c *gin.Context) {
	var req sodomain.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	order, err := s.orderSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	id := order.ID.String()
	_ = s.auditSvc.Record(c.Request.Context(), "service_order.created", "service_order", &id, map[string]any{
		"order_no":   order.OrderNo,
		"check_type": string(order.CheckType),
	})

	c.JSON(http.StatusOK, gin.H{"data": order})
}

func (s *Server) UpdateServiceOrder(c *gin.Context) {
	var req sodomain.UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ID = c.Param("id")

	order, err := s.orderSvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	id := order.ID.String()
	_ = s.auditSvc.Record(c.Request.Context(), "service_order.updated", "service_order", &id, map[string]any{
		"order_no": order.OrderNo,
	})

	c.JSON(http.StatusOK, gin.H{"data": order})
}

func (s *Server) GetServiceOrderByID(c *gin.Context) {
	order, err := s.orderSvc.GetByID(c.Request.Context(), sodomain.GetOrderRequest{ID: c.Param("id")})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": order})
}

func (s *Server) GetServiceOrderForm(c *gin.Context) {
	form, err := s.orderSvc.GetForm(c.Request.Context(), sodomain.GetOrderRequest{ID: c.Param("id")})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": form})
}

func (s *Server) DeleteServiceOrder(c *gin.Context) {
	id := c.Param("id")
	if err := s.orderSvc.Delete(c.Request.Context(), sodomain.DeleteOrderRequest{ID: id}); err != nil {
		AbortWithError(c, err)
		return
	}

	_ = s.auditSvc.Record(c.Request.Context(), "service_order.deleted", "service_order", &id, nil)

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"id": id}})
}

func (s *Server) BulkDeleteServiceOrders(c *gin.Context) {
	var req sodomain.BulkDeleteOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	result, err := s.orderSvc.BulkDelete(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	_ = s.auditSvc.Record(c.Request.Context(), "service_order.bulk_deleted", "service_order", nil, map[string]any{
		"deleted": result.Deleted,
		"failed":  result.Failed,
	})

	c.JSON(http.StatusOK, gin.H{"data": result})
}

func (s *Server) PrintServiceOrder(c *gin.Context) {
	ctx := c.Request.Context()

	order, err := s.orderSvc.GetByID(ctx, sodomain.GetOrderRequest{ID: c.Param("id")})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	tasks, err := s.taskSvc.List(ctx, tddomain.ListTaskRequest{
		ServiceOrderID: order.ID.String(),
		PageSize:       250,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	data := pdf.WorkOrderData{
		OrderNo:            order.OrderNo,
		TenantName:         order.TenantName,
		CheckType:          string(order.CheckType),
		ConfirmationStatus: order.ConfirmationStatus,
		ApplyDate:          formatDate(order.ApplyDate),
		DeadlineDate:       formatDate(order.DeadlineDate),
		SalesContact:       order.SalesContact,
		BusinessManager:    order.BusinessManager,
		SpecialNotes:       order.SpecialNotes,
	}
	for _, task := range tasks.Tasks {
		data.Tasks = append(data.Tasks, pdf.WorkOrderTask{
			TaskType:        task.TaskType,
			ExecutionStatus: task.ExecutionStatus,
			Assignee:        task.Assignee,
			SiteA:           task.SiteA,
			SiteZ:           task.SiteZ,
			Bandwidth:       task.Bandwidth,
			CircuitID:       task.CircuitID,
		})
	}

	reader, err := s.pdfProvider.GenerateWorkOrder(ctx, data)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	doc, err := io.ReadAll(reader)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="work-order-`+order.OrderNo+`.pdf"`)
	c.Data(http.StatusOK, "application/pdf", doc)
}

func formatDate(d *datatypes.Date) string {
	if d == nil {
		return ""
	}
	return time.Time(*d).Format("2006-01-02")
}
