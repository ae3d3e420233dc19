package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	tddomain "github.com/transnet/rms/internal/taskdetail/domain"
	"github.com/transnet/rms/pkg/db/pagination"
)

type listTaskDetailParams struct {
	pagination.Pagination

	ServiceOrderID      string `form:"service_order_id"`
	TaskType            string `form:"task_type"`
	ExecutionStatus     string `form:"execution_status"`
	LifecycleStatus     string `form:"lifecycle_status"`
	ExecutionDepartment string `form:"execution_department"`
	SiteA               string `form:"site_a"`
	SiteZ               string `form:"site_z"`
	CircuitID           string `form:"circuit_id"`
	Query               string `form:"q"`
}

func (s *Server) ListTaskDetails(c *gin.Context) {
	var params listTaskDetailParams
	if err := c.ShouldBindQuery(&params); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.taskSvc.List(c.Request.Context(), tddomain.ListTaskRequest{
		PageToken:         params.PageToken,
		PageSize:          int32(params.PageSize),
		ServiceOrderID:    params.ServiceOrderID,
		TaskTypes:         splitCSV(params.TaskType),
		ExecutionStatuses: splitCSV(params.ExecutionStatus),
		LifecycleStatuses: splitCSV(params.LifecycleStatus),
		Departments:       splitCSV(params.ExecutionDepartment),
		SiteA:             params.SiteA,
		SiteZ:             params.SiteZ,
		CircuitID:         params.CircuitID,
		Query:             params.Query,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CreateTaskDetail(c *gin.Context) {
	var req tddomain.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	task, err := s.taskSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	id := task.ID.String()
	_ = s.auditSvc.Record(c.Request.Context(), "task_detail.created", "task_detail", &id, map[string]any{
		"service_order_id": task.ServiceOrderID.String(),
		"task_type":        task.TaskType,
	})

	c.JSON(http.StatusOK, gin.H{"data": task})
}

func (s *Server) UpdateTaskDetail(c *gin.Context) {
	var req tddomain.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ID = c.Param("id")

	task, err := s.taskSvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	id := task.ID.String()
	_ = s.auditSvc.Record(c.Request.Context(), "task_detail.updated", "task_detail", &id, map[string]any{
		"task_type":        task.TaskType,
		"execution_status": task.ExecutionStatus,
		"lifecycle_status": task.LifecycleStatus,
	})

	c.JSON(http.StatusOK, gin.H{"data": task})
}

func (s *Server) GetTaskDetailByID(c *gin.Context) {
	task, err := s.taskSvc.GetByID(c.Request.Context(), tddomain.GetTaskRequest{ID: c.Param("id")})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": task})
}

func (s *Server) GetTaskDetailForm(c *gin.Context) {
	form, err := s.taskSvc.GetForm(c.Request.Context(), tddomain.GetTaskRequest{ID: c.Param("id")})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": form})
}

func (s *Server) DeleteTaskDetail(c *gin.Context) {
	id := c.Param("id")
	if err := s.taskSvc.Delete(c.Request.Context(), tddomain.DeleteTaskRequest{ID: id}); err != nil {
		AbortWithError(c, err)
		return
	}

	_ = s.auditSvc.Record(c.Request.Context(), "task_detail.deleted", "task_detail", &id, nil)

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"id": id}})
}

func (s *Server) BulkDeleteTaskDetails(c *gin.Context) {
	var req tddomain.BulkDeleteTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	result, err := s.taskSvc.BulkDelete(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	_ = s.auditSvc.Record(c.Request.Context(), "task_detail.bulk_deleted", "task_detail", nil, map[string]any{
		"deleted": result.Deleted,
		"failed":  result.Failed,
	})

	c.JSON(http.StatusOK, gin.H{"data": result})
}
