package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/transnet/rms/internal/checkresult/domain"
	"github.com/transnet/rms/internal/observability/metrics"
	sodomain "github.com/transnet/rms/internal/serviceorder/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Repo      domain.Repository
	OrderRepo sodomain.Repository
	Metrics   *metrics.Metrics `optional:"true"`
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	repo      domain.Repository
	orderRepo sodomain.Repository
	metrics   *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("checkresult.service"),
		genID:     p.GenID,
		repo:      p.Repo,
		orderRepo: p.OrderRepo,
		metrics:   p.Metrics,
	}
}

func (s *Service) Get(ctx context.Context, req domain.GetCheckResultRequest) (domain.ResourceCheckResult, error) {
	order, err := s.resolveOrder(ctx, req.ServiceOrderID)
	if err != nil {
		return domain.ResourceCheckResult{}, err
	}

	result, err := s.repo.FindByOrder(ctx, s.db, order.ID)
	if err != nil {
		return domain.ResourceCheckResult{}, err
	}
	if result == nil {
		return domain.ResourceCheckResult{}, domain.ErrNotFound
	}
	return *result, nil
}

func (s *Service) Put(ctx context.Context, req domain.PutCheckResultRequest) (domain.ResourceCheckResult, error) {
	order, err := s.resolveOrder(ctx, req.ServiceOrderID)
	if err != nil {
		return domain.ResourceCheckResult{}, err
	}
	if order.CheckType == "" {
		return domain.ResourceCheckResult{}, domain.ErrInvalidCheckType
	}

	checkResult := strings.TrimSpace(req.CheckResult)
	if !domain.ValidResult(order.CheckType, checkResult) {
		return domain.ResourceCheckResult{}, domain.ErrInvalidResult
	}
	for _, reason := range req.UnavailableReasons {
		if !domain.ValidReason(order.CheckType, reason) {
			return domain.ResourceCheckResult{}, domain.ErrInvalidReason
		}
	}

	now := time.Now().UTC()
	result := domain.ResourceCheckResult{
		ID:                 s.genID.Generate(),
		ServiceOrderID:     order.ID,
		CheckResult:        checkResult,
		UnavailableReasons: datatypes.NewJSONSlice(req.UnavailableReasons),
		Description:        req.Description,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := s.repo.Upsert(ctx, s.db, &result); err != nil {
		return domain.ResourceCheckResult{}, err
	}

	stored, err := s.repo.FindByOrder(ctx, s.db, order.ID)
	if err != nil {
		return domain.ResourceCheckResult{}, err
	}
	if stored == nil {
		return result, nil
	}

	s.metrics.RecordCheckResult(ctx, string(order.CheckType))
	return *stored, nil
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
