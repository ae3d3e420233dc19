package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/transnet/rms/internal/document"
	"github.com/transnet/rms/internal/observability/metrics"
	refdomain "github.com/transnet/rms/internal/reference/domain"
	"github.com/transnet/rms/internal/serviceorder/domain"
	"github.com/transnet/rms/pkg/db"
	"github.com/transnet/rms/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Repo    domain.Repository
	RefRepo refdomain.Repository
	Sites   document.SiteResolver
	Metrics *metrics.Metrics `optional:"true"`
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	repo    domain.Repository
	refRepo refdomain.Repository
	sites   document.SiteResolver
	metrics *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("serviceorder.service"),
		genID:   p.GenID,
		repo:    p.Repo,
		refRepo: p.RefRepo,
		sites:   p.Sites,
		metrics: p.Metrics,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateOrderRequest) (domain.ServiceOrder, error) {
	orderNo := strings.TrimSpace(req.OrderNo)
	if orderNo == "" {
		return domain.ServiceOrder{}, domain.ErrInvalidOrderNo
	}

	tenant, err := s.resolveTenant(ctx, req.TenantID)
	if err != nil {
		return domain.ServiceOrder{}, err
	}

	checkType := domain.CheckType(strings.TrimSpace(req.CheckType))
	if !domain.ValidCheckType(checkType) {
		return domain.ServiceOrder{}, domain.ErrInvalidCheckType
	}

	parentID, err := s.resolveParent(ctx, req.ParentOrderID, 0)
	if err != nil {
		return domain.ServiceOrder{}, err
	}

	applyDate, err := parseDate(req.ApplyDate)
	if err != nil {
		return domain.ServiceOrder{}, err
	}
	deadlineDate, err := parseDate(req.DeadlineDate)
	if err != nil {
		return domain.ServiceOrder{}, err
	}
	billingStartDate, err := parseDate(req.BillingStartDate)
	if err != nil {
		return domain.ServiceOrder{}, err
	}

	checkData, err := domain.BuildCheckDocument(ctx, checkType, req.Check, s.sites).Encode()
	if err != nil {
		return domain.ServiceOrder{}, err
	}

	now := time.Now().UTC()
	order := domain.ServiceOrder{
		ID:                  s.genID.Generate(),
		OrderNo:             orderNo,
		TenantID:            tenant.ID,
		TenantName:          tenant.Name,
		ProjectReportCode:   strings.TrimSpace(req.ProjectReportCode),
		ApprovalCode:        strings.TrimSpace(req.ApprovalCode),
		ContractCode:        strings.TrimSpace(req.ContractCode),
		SalesContact:        strings.TrimSpace(req.SalesContact),
		BusinessManager:     strings.TrimSpace(req.BusinessManager),
		InternalParticipant: strings.TrimSpace(req.InternalParticipant),
		ApplyDate:           applyDate,
		DeadlineDate:        deadlineDate,
		BillingStartDate:    billingStartDate,
		ConfirmationStatus:  strings.TrimSpace(req.ConfirmationStatus),
		SpecialNotes:        req.SpecialNotes,
		ParentOrderID:       parentID,
		CheckType:           checkType,
		CheckData:           checkData,
		Comments:            req.Comments,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	if err := s.repo.Insert(ctx, s.db, &order); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.ServiceOrder{}, domain.ErrDuplicateOrderNo
		}
		return domain.ServiceOrder{}, err
	}

	s.metrics.RecordOrderSaved(ctx, string(checkType))
	return order, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateOrderRequest) (domain.ServiceOrder, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.ServiceOrder{}, err
	}

	existing, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.ServiceOrder{}, err
	}
	if existing == nil {
		return domain.ServiceOrder{}, domain.ErrNotFound
	}

	orderNo := strings.TrimSpace(req.OrderNo)
	if orderNo == "" {
		return domain.ServiceOrder{}, domain.ErrInvalidOrderNo
	}

	tenant, err := s.resolveTenant(ctx, req.TenantID)
	if err != nil {
		return domain.ServiceOrder{}, err
	}

	checkType := domain.CheckType(strings.TrimSpace(req.CheckType))
	if !domain.ValidCheckType(checkType) {
		return domain.ServiceOrder{}, domain.ErrInvalidCheckType
	}

	parentID, err := s.resolveParent(ctx, req.ParentOrderID, existing.ID)
	if err != nil {
		return domain.ServiceOrder{}, err
	}

	applyDate, err := parseDate(req.ApplyDate)
	if err != nil {
		return domain.ServiceOrder{}, err
	}
	deadlineDate, err := parseDate(req.DeadlineDate)
	if err != nil {
		return domain.ServiceOrder{}, err
	}
	billingStartDate, err := parseDate(req.BillingStartDate)
	if err != nil {
		return domain.ServiceOrder{}, err
	}

	checkData, err := domain.BuildCheckDocument(ctx, checkType, req.Check, s.sites).Encode()
	if err != nil {
		return domain.ServiceOrder{}, err
	}

	existing.OrderNo = orderNo
	existing.TenantID = tenant.ID
	existing.TenantName = tenant.Name
	existing.ProjectReportCode = strings.TrimSpace(req.ProjectReportCode)
	existing.ApprovalCode = strings.TrimSpace(req.ApprovalCode)
	existing.ContractCode = strings.TrimSpace(req.ContractCode)
	existing.SalesContact = strings.TrimSpace(req.SalesContact)
	existing.BusinessManager = strings.TrimSpace(req.BusinessManager)
	existing.InternalParticipant = strings.TrimSpace(req.InternalParticipant)
	existing.ApplyDate = applyDate
	existing.DeadlineDate = deadlineDate
	existing.BillingStartDate = billingStartDate
	existing.ConfirmationStatus = strings.TrimSpace(req.ConfirmationStatus)
	existing.SpecialNotes = req.SpecialNotes
	existing.ParentOrderID = parentID
	existing.CheckType = checkType
	existing.CheckData = checkData
	existing.Comments = req.Comments
	existing.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, existing); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.ServiceOrder{}, domain.ErrDuplicateOrderNo
		}
		return domain.ServiceOrder{}, err
	}

	s.metrics.RecordOrderSaved(ctx, string(checkType))
	return *existing, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetOrderRequest) (domain.ServiceOrder, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.ServiceOrder{}, err
	}

	order, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.ServiceOrder{}, err
	}
	if order == nil {
		return domain.ServiceOrder{}, domain.ErrNotFound
	}

	s.fillTenantNames(ctx, []*domain.ServiceOrder{order})
	return *order, nil
}

func (s *Service) GetForm(ctx context.Context, req domain.GetOrderRequest) (domain.CreateOrderRequest, error) {
	order, err := s.GetByID(ctx, req)
	if err != nil {
		return domain.CreateOrderRequest{}, err
	}

	form := domain.CreateOrderRequest{
		OrderNo:             order.OrderNo,
		TenantID:            order.TenantID.String(),
		ProjectReportCode:   order.ProjectReportCode,
		ApprovalCode:        order.ApprovalCode,
		ContractCode:        order.ContractCode,
		SalesContact:        order.SalesContact,
		BusinessManager:     order.BusinessManager,
		InternalParticipant: order.InternalParticipant,
		ApplyDate:           formatDate(order.ApplyDate),
		DeadlineDate:        formatDate(order.DeadlineDate),
		BillingStartDate:    formatDate(order.BillingStartDate),
		ConfirmationStatus:  order.ConfirmationStatus,
		SpecialNotes:        order.SpecialNotes,
		CheckType:           string(order.CheckType),
		Check:               domain.DecodeCheckDocument(order.CheckType, order.CheckData).Input(),
		Comments:            order.Comments,
	}
	if order.ParentOrderID != nil {
		form.ParentOrderID = order.ParentOrderID.String()
	}
	return form, nil
}

func (s *Service) List(ctx context.Context, req domain.ListOrderRequest) (domain.ListOrderResponse, error) {
	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	filter := domain.ListOrderFilter{
		OrderNo:              strings.TrimSpace(req.OrderNo),
		SalesContact:         strings.TrimSpace(req.SalesContact),
		CheckTypes:           req.CheckTypes,
		ConfirmationStatuses: req.ConfirmationStatuses,
		HasParent:            req.HasParent,
		Query:                strings.TrimSpace(req.Query),
	}
	if tenantID := strings.TrimSpace(req.TenantID); tenantID != "" {
		parsed, err := snowflake.ParseString(tenantID)
		if err != nil {
			return domain.ListOrderResponse{}, domain.ErrInvalidTenant
		}
		filter.TenantID = parsed
	}
	if after, err := parseDate(req.ApplyDateAfter); err != nil {
		return domain.ListOrderResponse{}, err
	} else if after != nil {
		t := time.Time(*after)
		filter.ApplyDateAfter = &t
	}
	if before, err := parseDate(req.ApplyDateBefore); err != nil {
		return domain.ListOrderResponse{}, err
	} else if before != nil {
		t := time.Time(*before)
		filter.ApplyDateBefore = &t
	}

	items, err := s.repo.List(ctx, s.db, filter, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  int(pageSize),
	})
	if err != nil {
		return domain.ListOrderResponse{}, err
	}

	items, pageInfo := pagination.BuildCursorPageInfo(items, int(pageSize), func(order *domain.ServiceOrder) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        order.ID.String(),
			CreatedAt: order.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})

	s.fillTenantNames(ctx, items)

	orders := make([]domain.ServiceOrder, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		orders = append(orders, *item)
	}

	resp := domain.ListOrderResponse{Orders: orders}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func (s *Service) Delete(ctx context.Context, req domain.DeleteOrderRequest) error {
	id, err := s.parseID(req.ID)
	if err != nil {
		return err
	}

	order, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return err
	}
	if order == nil {
		return domain.ErrNotFound
	}

	refs, err := s.repo.CountLedgerRefs(ctx, s.db, id)
	if err != nil {
		return err
	}
	if refs > 0 {
		return domain.ErrOrderReferenced
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		return s.repo.DeleteCascade(ctx, tx, id)
	})
	if err != nil {
		if db.IsForeignKeyErr(err) {
			return domain.ErrOrderReferenced
		}
		return err
	}
	return nil
}

func (s *Service) BulkDelete(ctx context.Context, req domain.BulkDeleteOrderRequest) (domain.BulkDeleteOrderResult, error) {
	result := domain.BulkDeleteOrderResult{
		Deleted: []string{},
		Failed:  map[string]string{},
	}
	for _, rawID := range req.IDs {
		if err := s.Delete(ctx, domain.DeleteOrderRequest{ID: rawID}); err != nil {
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

func (s *Service) resolveTenant(ctx context.Context, rawID string) (*refdomain.Tenant, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(rawID))
	if err != nil || id == 0 {
		return nil, domain.ErrInvalidTenant
	}
	tenant, err := s.refRepo.FindTenantByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, domain.ErrInvalidTenant
	}
	return tenant, nil
}

func (s *Service) resolveParent(ctx context.Context, rawID string, selfID snowflake.ID) (*snowflake.ID, error) {
	rawID = strings.TrimSpace(rawID)
	if rawID == "" {
		return nil, nil
	}
	id, err := snowflake.ParseString(rawID)
	if err != nil || id == 0 {
		return nil, domain.ErrInvalidParentOrder
	}
	// An order cannot be its own parent.
	if selfID != 0 && id == selfID {
		return nil, domain.ErrInvalidParentOrder
	}
	parent, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if parent == nil {
		return nil, domain.ErrInvalidParentOrder
	}
	return &id, nil
}

func (s *Service) fillTenantNames(ctx context.Context, orders []*domain.ServiceOrder) {
	names := map[snowflake.ID]string{}
	for _, order := range orders {
		if order == nil || order.TenantID == 0 {
			continue
		}
		name, ok := names[order.TenantID]
		if !ok {
			tenant, err := s.refRepo.FindTenantByID(ctx, s.db, order.TenantID)
			if err != nil || tenant == nil {
				names[order.TenantID] = ""
				continue
			}
			name = tenant.Name
			names[order.TenantID] = name
		}
		order.TenantName = name
	}
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}

func parseDate(value string) (*datatypes.Date, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, domain.ErrInvalidDate
	}
	date := datatypes.Date(t)
	return &date, nil
}

func formatDate(date *datatypes.Date) string {
	if date == nil {
		return ""
	}
	return time.Time(*date).Format("2006-01-02")
}
