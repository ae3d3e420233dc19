package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	rldomain "github.com/transnet/rms/internal/resourceledger/domain"
	"github.com/transnet/rms/pkg/db/pagination"
)

type listResourceLedgerParams struct {
	pagination.Pagination

	ServiceOrderID  string `form:"service_order_id"`
	ResourceType    string `form:"resource_type"`
	LifecycleStatus string `form:"lifecycle_status"`
	ResourceID      string `form:"resource_id"`
	Query           string `form:"q"`
}

func (s *Server) ListResourceLedgers(c *gin.Context) {
	var params listResourceLedgerParams
	if err := c.ShouldBindQuery(&params); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.ledgerSvc.List(c.Request.Context(), rldomain.ListLedgerRequest{
		PageToken:         params.PageToken,
		PageSize:          int32(params.PageSize),
		ServiceOrderID:    params.ServiceOrderID,
		ResourceTypes:     splitCSV(params.ResourceType),
		LifecycleStatuses: splitCSV(params.LifecycleStatus),
		ResourceID:        params.ResourceID,
		Query:             params.Query,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CreateResourceLedger(c *gin.Context) {
	var req rldomain.CreateLedgerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	ledger, err := s.ledgerSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	id := ledger.ID.String()
	_ = s.auditSvc.Record(c.Request.Context(), "resource_ledger.created", "resource_ledger", &id, map[string]any{
		"resource_type": ledger.ResourceType,
		"resource_id":   ledger.ResourceID,
	})

	c.JSON(http.StatusOK, gin.H{"data": ledger})
}

func (s *Server) UpdateResourceLedger(c *gin.Context) {
	var req rldomain.UpdateLedgerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ID = c.Param("id")

	ledger, err := s.ledgerSvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	id := ledger.ID.String()
	_ = s.auditSvc.Record(c.Request.Context(), "resource_ledger.updated", "resource_ledger", &id, map[string]any{
		"lifecycle_status": ledger.LifecycleStatus,
	})

	c.JSON(http.StatusOK, gin.H{"data": ledger})
}

func (s *Server) GetResourceLedgerByID(c *gin.Context) {
	ledger, err := s.ledgerSvc.GetByID(c.Request.Context(), rldomain.GetLedgerRequest{ID: c.Param("id")})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": ledger})
}

func (s *Server) DeleteResourceLedger(c *gin.Context) {
	id := c.Param("id")
	if err := s.ledgerSvc.Delete(c.Request.Context(), rldomain.DeleteLedgerRequest{ID: id}); err != nil {
		AbortWithError(c, err)
		return
	}

	_ = s.auditSvc.Record(c.Request.Context(), "resource_ledger.deleted", "resource_ledger", &id, nil)

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"id": id}})
}

func (s *Server) BulkDeleteResourceLedgers(c *gin.Context) {
	var req rldomain.BulkDeleteLedgerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	result, err := s.ledgerSvc.BulkDelete(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	_ = s.auditSvc.Record(c.Request.Context(), "resource_ledger.bulk_deleted", "resource_ledger", nil, map[string]any{
		"deleted": result.Deleted,
		"failed":  result.Failed,
	})

	c.JSON(http.StatusOK, gin.H{"data": result})
}
