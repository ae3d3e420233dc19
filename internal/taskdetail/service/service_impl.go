package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/transnet/rms/internal/config"
	"github.com/transnet/rms/internal/document"
	"github.com/transnet/rms/internal/observability/metrics"
	rldomain "github.com/transnet/rms/internal/resourceledger/domain"
	sodomain "github.com/transnet/rms/internal/serviceorder/domain"
	"github.com/transnet/rms/internal/taskdetail/domain"
	"github.com/transnet/rms/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Repo       domain.Repository
	OrderRepo  sodomain.Repository
	LedgerRepo rldomain.Repository
	Sites      document.SiteResolver
	Plugin     *config.PluginConfigHolder
	Metrics    *metrics.Metrics `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	repo       domain.Repository
	orderRepo  sodomain.Repository
	ledgerRepo rldomain.Repository
	sites      document.SiteResolver
	plugin     *config.PluginConfigHolder
	metrics    *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("taskdetail.service"),
		genID:      p.GenID,
		repo:       p.Repo,
		orderRepo:  p.OrderRepo,
		ledgerRepo: p.LedgerRepo,
		sites:      p.Sites,
		plugin:     p.Plugin,
		metrics:    p.Metrics,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateTaskRequest) (domain.TaskDetail, error) {
	order, err := s.resolveOrder(ctx, req.ServiceOrderID)
	if err != nil {
		return domain.TaskDetail{}, err
	}

	task, err := s.buildTask(ctx, req, order, nil)
	if err != nil {
		return domain.TaskDetail{}, err
	}

	if err := s.validate(task, order); err != nil {
		return domain.TaskDetail{}, err
	}

	if err := s.repo.Insert(ctx, s.db, task); err != nil {
		return domain.TaskDetail{}, err
	}

	s.metrics.RecordTaskSaved(ctx, task.TaskType)
	s.propagate(ctx, task, order, true)
	return *task, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateTaskRequest) (domain.TaskDetail, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.TaskDetail{}, err
	}
	existing, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.TaskDetail{}, err
	}
	if existing == nil {
		return domain.TaskDetail{}, domain.ErrNotFound
	}

	order, err := s.resolveOrder(ctx, req.ServiceOrderID)
	if err != nil {
		return domain.TaskDetail{}, err
	}

	task, err := s.buildTask(ctx, req.CreateTaskRequest, order, existing)
	if err != nil {
		return domain.TaskDetail{}, err
	}

	if err := s.validate(task, order); err != nil {
		return domain.TaskDetail{}, err
	}

	if err := s.repo.Update(ctx, s.db, task); err != nil {
		return domain.TaskDetail{}, err
	}

	s.metrics.RecordTaskSaved(ctx, task.TaskType)
	s.propagate(ctx, task, order, false)
	return *task, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetTaskRequest) (domain.TaskDetail, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.TaskDetail{}, err
	}
	task, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.TaskDetail{}, err
	}
	if task == nil {
		return domain.TaskDetail{}, domain.ErrNotFound
	}
	return *task, nil
}

func (s *Service) GetForm(ctx context.Context, req domain.GetTaskRequest) (domain.CreateTaskRequest, error) {
	task, err := s.GetByID(ctx, req)
	if err != nil {
		return domain.CreateTaskRequest{}, err
	}

	var checkType sodomain.CheckType
	if order, err := s.orderRepo.FindByID(ctx, s.db, task.ServiceOrderID); err == nil && order != nil {
		checkType = order.CheckType
	}

	return domain.CreateTaskRequest{
		ServiceOrderID:      task.ServiceOrderID.String(),
		TaskType:            task.TaskType,
		ExecutionStatus:     task.ExecutionStatus,
		LifecycleStatus:     task.LifecycleStatus,
		ExecutionDepartment: task.ExecutionDepartment,
		Assignee:            task.Assignee,
		SiteA:               task.SiteA,
		SiteZ:               task.SiteZ,
		Bandwidth:           task.Bandwidth,
		CircuitID:           task.CircuitID,
		ExtResource:         task.ExtResource,
		ExtContract:         task.ExtContract,
		ExtHandle:           task.ExtHandle,
		ChangeTypes:         task.ChangeTypes,
		OldValue:            task.OldValue,
		NewValue:            task.NewValue,
		Feedback:            domain.DecodeFeedbackDocument(checkType, task.FeedbackData).Input(),
		Comments:            task.Comments,
	}, nil
}

func (s *Service) List(ctx context.Context, req domain.ListTaskRequest) (domain.ListTaskResponse, error) {
	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	filter := domain.ListTaskFilter{
		TaskTypes:         req.TaskTypes,
		ExecutionStatuses: req.ExecutionStatuses,
		LifecycleStatuses: req.LifecycleStatuses,
		Departments:       req.Departments,
		SiteA:             strings.TrimSpace(req.SiteA),
		SiteZ:             strings.TrimSpace(req.SiteZ),
		CircuitID:         strings.TrimSpace(req.CircuitID),
		Query:             strings.TrimSpace(req.Query),
	}
	if rawID := strings.TrimSpace(req.ServiceOrderID); rawID != "" {
		parsed, err := snowflake.ParseString(rawID)
		if err != nil {
			return domain.ListTaskResponse{}, domain.ErrInvalidOrder
		}
		filter.ServiceOrderID = parsed
	}

	items, err := s.repo.List(ctx, s.db, filter, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  int(pageSize),
	})
	if err != nil {
		return domain.ListTaskResponse{}, err
	}

	items, pageInfo := pagination.BuildCursorPageInfo(items, int(pageSize), func(task *domain.TaskDetail) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        task.ID.String(),
			CreatedAt: task.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})

	tasks := make([]domain.TaskDetail, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		tasks = append(tasks, *item)
	}

	resp := domain.ListTaskResponse{Tasks: tasks}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func (s *Service) Delete(ctx context.Context, req domain.DeleteTaskRequest) error {
	id, err := s.parseID(req.ID)
	if err != nil {
		return err
	}
	task, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return err
	}
	if task == nil {
		return domain.ErrNotFound
	}
	return s.repo.Delete(ctx, s.db, id)
}

func (s *Service) BulkDelete(ctx context.Context, req domain.BulkDeleteTaskRequest) (domain.BulkDeleteTaskResult, error) {
	result := domain.BulkDeleteTaskResult{
		Deleted: []string{},
		Failed:  map[string]string{},
	}
	for _, rawID := range req.IDs {
		if err := s.Delete(ctx, domain.DeleteTaskRequest{ID: rawID}); err != nil {
			result.Failed[rawID] = err.Error()
			continue
		}
		result.Deleted = append(result.Deleted, rawID)
	}
	if len(result.Failed) == 0 {
		result.Failed = nil
	}
	return result, nil
}

func (s *Service) buildTask(ctx context.Context, req domain.CreateTaskRequest, order *sodomain.ServiceOrder, existing *domain.TaskDetail) (*domain.TaskDetail, error) {
	taskType := strings.TrimSpace(req.TaskType)
	if taskType == "" {
		taskType = domain.TaskTypeActivation
	}
	switch taskType {
	case domain.TaskTypeActivation, domain.TaskTypeChange, domain.TaskTypeDeactivation:
	default:
		return nil, domain.ErrInvalidTaskType
	}

	executionStatus := strings.TrimSpace(req.ExecutionStatus)
	if executionStatus == "" {
		executionStatus = domain.ExecutionStatusPending
	}
	switch executionStatus {
	case domain.ExecutionStatusPending, domain.ExecutionStatusPatched,
		domain.ExecutionStatusConfigured, domain.ExecutionStatusConnected:
	default:
		return nil, domain.ErrInvalidExecutionStatus
	}

	lifecycleStatus := strings.TrimSpace(req.LifecycleStatus)
	if lifecycleStatus == "" {
		lifecycleStatus = domain.LifecycleStatusActive
	}
	switch lifecycleStatus {
	case domain.LifecycleStatusActive, domain.LifecycleStatusTerminated:
	default:
		return nil, domain.ErrInvalidLifecycleStatus
	}

	feedbackData, err := domain.BuildFeedbackDocument(ctx, order.CheckType, req.Feedback, s.sites).Encode()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	task := &domain.TaskDetail{
		ID:                  s.genID.Generate(),
		ServiceOrderID:      order.ID,
		TaskType:            taskType,
		ExecutionStatus:     executionStatus,
		LifecycleStatus:     lifecycleStatus,
		ExecutionDepartment: strings.TrimSpace(req.ExecutionDepartment),
		Assignee:            strings.TrimSpace(req.Assignee),
		SiteA:               strings.TrimSpace(req.SiteA),
		SiteZ:               strings.TrimSpace(req.SiteZ),
		Bandwidth:           strings.TrimSpace(req.Bandwidth),
		CircuitID:           strings.TrimSpace(req.CircuitID),
		ExtResource:         req.ExtResource,
		ExtContract:         strings.TrimSpace(req.ExtContract),
		ExtHandle:           strings.TrimSpace(req.ExtHandle),
		ChangeTypes:         datatypes.NewJSONSlice(req.ChangeTypes),
		OldValue:            req.OldValue,
		NewValue:            req.NewValue,
		FeedbackData:        feedbackData,
		Comments:            req.Comments,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if existing != nil {
		task.ID = existing.ID
		task.PreviousValues = existing.PreviousValues
		task.CreatedAt = existing.CreatedAt
	}
	return task, nil
}

// validate applies the cross-field rules before any write.
func (s *Service) validate(task *domain.TaskDetail, order *sodomain.ServiceOrder) error {
	if task.TaskType == domain.TaskTypeChange && order.ParentOrderID == nil {
		return domain.ErrMissingParentOrder
	}
	if s.plugin.Current().EnableExternalResourceValidation {
		if task.ExtResource && task.ExtContract == "" {
			return domain.ErrMissingExternalContract
		}
	}
	return nil
}

func (s *Service) resolveOrder(ctx context.Context, rawID string) (*sodomain.ServiceOrder, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(rawID))
	if err != nil || id == 0 {
		return nil, domain.ErrInvalidOrder
	}
	order, err := s.orderRepo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrInvalidOrder
	}
	return order, nil
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
