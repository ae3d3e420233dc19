package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/transnet/rms/internal/resourceledger/domain"
	sodomain "github.com/transnet/rms/internal/serviceorder/domain"
	"github.com/transnet/rms/pkg/db"
	"github.com/transnet/rms/pkg/db/pagination"
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
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	repo      domain.Repository
	orderRepo sodomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("resourceledger.service"),
		genID:     p.GenID,
		repo:      p.Repo,
		orderRepo: p.OrderRepo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateLedgerRequest) (domain.ResourceLedger, error) {
	orderID, err := s.resolveOrder(ctx, req.ServiceOrderID)
	if err != nil {
		return domain.ResourceLedger{}, err
	}

	resourceType := strings.TrimSpace(req.ResourceType)
	if !domain.ValidResourceType(resourceType) {
		return domain.ResourceLedger{}, domain.ErrInvalidResourceType
	}
	resourceID := strings.TrimSpace(req.ResourceID)
	if resourceID == "" {
		return domain.ResourceLedger{}, domain.ErrInvalidResourceID
	}

	snapshot, err := parseSnapshot(req.Snapshot)
	if err != nil {
		return domain.ResourceLedger{}, err
	}

	lifecycleStatus := strings.TrimSpace(req.LifecycleStatus)
	if lifecycleStatus == "" {
		lifecycleStatus = domain.LifecycleStatusActive
	}

	now := time.Now().UTC()
	ledger := domain.ResourceLedger{
		ID:              s.genID.Generate(),
		ServiceOrderID:  orderID,
		ResourceType:    resourceType,
		ResourceID:      resourceID,
		ResourceName:    strings.TrimSpace(req.ResourceName),
		LifecycleStatus: lifecycleStatus,
		Snapshot:        snapshot,
		Comments:        req.Comments,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.repo.Insert(ctx, s.db, &ledger); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.ResourceLedger{}, domain.ErrDuplicateResource
		}
		return domain.ResourceLedger{}, err
	}
	return ledger, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateLedgerRequest) (domain.ResourceLedger, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.ResourceLedger{}, err
	}
	existing, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.ResourceLedger{}, err
	}
	if existing == nil {
		return domain.ResourceLedger{}, domain.ErrNotFound
	}

	orderID, err := s.resolveOrder(ctx, req.ServiceOrderID)
	if err != nil {
		return domain.ResourceLedger{}, err
	}

	resourceType := strings.TrimSpace(req.ResourceType)
	if !domain.ValidResourceType(resourceType) {
		return domain.ResourceLedger{}, domain.ErrInvalidResourceType
	}
	resourceID := strings.TrimSpace(req.ResourceID)
	if resourceID == "" {
		return domain.ResourceLedger{}, domain.ErrInvalidResourceID
	}

	snapshot, err := parseSnapshot(req.Snapshot)
	if err != nil {
		return domain.ResourceLedger{}, err
	}

	lifecycleStatus := strings.TrimSpace(req.LifecycleStatus)
	if lifecycleStatus == "" {
		lifecycleStatus = existing.LifecycleStatus
	}

	existing.ServiceOrderID = orderID
	existing.ResourceType = resourceType
	existing.ResourceID = resourceID
	existing.ResourceName = strings.TrimSpace(req.ResourceName)
	existing.LifecycleStatus = lifecycleStatus
	existing.Snapshot = snapshot
	existing.Comments = req.Comments
	existing.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, existing); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.ResourceLedger{}, domain.ErrDuplicateResource
		}
		return domain.ResourceLedger{}, err
	}
	return *existing, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetLedgerRequest) (domain.ResourceLedger, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.ResourceLedger{}, err
	}
	ledger, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.ResourceLedger{}, err
	}
	if ledger == nil {
		return domain.ResourceLedger{}, domain.ErrNotFound
	}
	return *ledger, nil
}

func (s *Service) List(ctx context.Context, req domain.ListLedgerRequest) (domain.ListLedgerResponse, error) {
	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	filter := domain.ListLedgerFilter{
		ResourceTypes:     req.ResourceTypes,
		LifecycleStatuses: req.LifecycleStatuses,
		ResourceID:        strings.TrimSpace(req.ResourceID),
		Query:             strings.TrimSpace(req.Query),
	}
	if rawID := strings.TrimSpace(req.ServiceOrderID); rawID != "" {
		parsed, err := snowflake.ParseString(rawID)
		if err != nil {
			return domain.ListLedgerResponse{}, domain.ErrInvalidOrder
		}
		filter.ServiceOrderID = parsed
	}

	items, err := s.repo.List(ctx, s.db, filter, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  int(pageSize),
	})
	if err != nil {
		return domain.ListLedgerResponse{}, err
	}

	items, pageInfo := pagination.BuildCursorPageInfo(items, int(pageSize), func(ledger *domain.ResourceLedger) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        ledger.ID.String(),
			CreatedAt: ledger.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})

	ledgers := make([]domain.ResourceLedger, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		ledgers = append(ledgers, *item)
	}

	resp := domain.ListLedgerResponse{Ledgers: ledgers}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func (s *Service) Delete(ctx context.Context, req domain.DeleteLedgerRequest) error {
	id, err := s.parseID(req.ID)
	if err != nil {
		return err
	}
	ledger, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return err
	}
	if ledger == nil {
		return domain.ErrNotFound
	}
	return s.repo.Delete(ctx, s.db, id)
}

func (s *Service) BulkDelete(ctx context.Context, req domain.BulkDeleteLedgerRequest) (domain.BulkDeleteLedgerResult, error) {
	result := domain.BulkDeleteLedgerResult{
		Deleted: []string{},
		Failed:  map[string]string{},
	}
	for _, rawID := range req.IDs {
		if err := s.Delete(ctx, domain.DeleteLedgerRequest{ID: rawID}); err != nil {
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

func (s *Service) resolveOrder(ctx context.Context, rawID string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(rawID))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidOrder
	}
	order, err := s.orderRepo.FindByID(ctx, s.db, id)
	if err != nil {
		return 0, err
	}
	if order == nil {
		return 0, domain.ErrInvalidOrder
	}
	return id, nil
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}

func parseSnapshot(raw string) (datatypes.JSON, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return datatypes.JSON([]byte(`{}`)), nil
	}
	if !json.Valid([]byte(raw)) {
		return nil, domain.ErrInvalidSnapshot
	}
	return datatypes.JSON([]byte(raw)), nil
}
