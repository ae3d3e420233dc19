package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	crdomain "github.com/transnet/rms/internal/checkresult/domain"
)

func (s *Server) GetCheckResult(c *gin.Context) {
	result, err := s.checkSvc.Get(c.Request.Context(), crdomain.GetCheckResultRequest{
		ServiceOrderID: c.Param("id"),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}

func (s *Server) PutCheckResult(c *gin.Context) {
	var req crdomain.PutCheckResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ServiceOrderID = c.Param("id")

	result, err := s.checkSvc.Put(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	orderID := result.ServiceOrderID.String()
	_ = s.auditSvc.Record(c.Request.Context(), "resource_check.recorded", "service_order", &orderID, map[string]any{
		"check_result": result.CheckResult,
	})

	c.JSON(http.StatusOK, gin.H{"data": result})
}
