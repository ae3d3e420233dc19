package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	auditdomain "github.com/transnet/rms/internal/audit/domain"
	"github.com/transnet/rms/pkg/db/pagination"
)

type listAuditLogParams struct {
	pagination.Pagination

	Action     string `form:"action"`
	TargetType string `form:"target_type"`
	TargetID   string `form:"target_id"`
	ActorType  string `form:"actor_type"`
	StartAt    string `form:"start_at"`
	EndAt      string `form:"end_at"`
}

func (s *Server) ListAuditLogs(c *gin.Context) {
	var params listAuditLogParams
	if err := c.ShouldBindQuery(&params); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.auditSvc.List(c.Request.Context(), auditdomain.ListAuditLogRequest{
		Pagination: params.Pagination,
		Action:     params.Action,
		TargetType: params.TargetType,
		TargetID:   params.TargetID,
		ActorType:  params.ActorType,
		StartAt:    parseOptionalTime(params.StartAt, false),
		EndAt:      parseOptionalTime(params.EndAt, true),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
