package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/transnet/rms/internal/document"
	"github.com/transnet/rms/internal/reference/domain"
	"github.com/transnet/rms/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("reference.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) CreateTenant(ctx context.Context, req domain.CreateTenantRequest) (domain.Tenant, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Tenant{}, domain.ErrInvalidName
	}

	now := time.Now().UTC()
	tenant := domain.Tenant{
		ID:          s.genID.Generate(),
		Name:        name,
		Slug:        slug.Make(name),
		Description: strings.TrimSpace(req.Description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.InsertTenant(ctx, s.db, &tenant); err != nil {
		return domain.Tenant{}, err
	}
	return tenant, nil
}

func (s *Service) ListTenants(ctx context.Context, req domain.ListTenantRequest) (domain.ListTenantResponse, error) {
	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	items, err := s.repo.ListTenants(ctx, s.db, domain.ListTenantFilter{
		Name: strings.TrimSpace(req.Name),
		Slug: strings.TrimSpace(req.Slug),
	}, pagination.Pagination{PageToken: req.PageToken, PageSize: int(pageSize)})
	if err != nil {
		return domain.ListTenantResponse{}, err
	}

	items, pageInfo := pagination.BuildCursorPageInfo(items, int(pageSize), func(tenant *domain.Tenant) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        tenant.ID.String(),
			CreatedAt: tenant.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})

	tenants := make([]domain.Tenant, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		tenants = append(tenants, *item)
	}

	resp := domain.ListTenantResponse{Tenants: tenants}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func (s *Service) GetTenant(ctx context.Context, req domain.GetRequest) (domain.Tenant, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.Tenant{}, err
	}
	tenant, err := s.repo.FindTenantByID(ctx, s.db, id)
	if err != nil {
		return domain.Tenant{}, err
	}
	if tenant == nil {
		return domain.Tenant{}, domain.ErrNotFound
	}
	return *tenant, nil
}

func (s *Service) CreateSite(ctx context.Context, req domain.CreateSiteRequest) (domain.Site, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Site{}, domain.ErrInvalidName
	}

	now := time.Now().UTC()
	site := domain.Site{
		ID:          s.genID.Generate(),
		Name:        name,
		Slug:        slug.Make(name),
		Region:      strings.TrimSpace(req.Region),
		Description: strings.TrimSpace(req.Description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.InsertSite(ctx, s.db, &site); err != nil {
		return domain.Site{}, err
	}
	return site, nil
}

func (s *Service) ListSites(ctx context.Context, req domain.ListSiteRequest) (domain.ListSiteResponse, error) {
	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	items, err := s.repo.ListSites(ctx, s.db, domain.ListSiteFilter{
		Name:   strings.TrimSpace(req.Name),
		Slug:   strings.TrimSpace(req.Slug),
		Region: strings.TrimSpace(req.Region),
	}, pagination.Pagination{PageToken: req.PageToken, PageSize: int(pageSize)})
	if err != nil {
		return domain.ListSiteResponse{}, err
	}

	items, pageInfo := pagination.BuildCursorPageInfo(items, int(pageSize), func(site *domain.Site) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        site.ID.String(),
			CreatedAt: site.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})

	sites := make([]domain.Site, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		sites = append(sites, *item)
	}

	resp := domain.ListSiteResponse{Sites: sites}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func (s *Service) GetSite(ctx context.Context, req domain.GetRequest) (domain.Site, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.Site{}, err
	}
	site, err := s.repo.FindSiteByID(ctx, s.db, id)
	if err != nil {
		return domain.Site{}, err
	}
	if site == nil {
		return domain.Site{}, domain.ErrNotFound
	}
	return *site, nil
}

// ResolveSite implements document.SiteResolver. A missing site returns
// (nil, nil) so document builders drop the reference silently.
func (s *Service) ResolveSite(ctx context.Context, id snowflake.ID) (*document.SiteRef, error) {
	site, err := s.repo.FindSiteByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if site == nil {
		return nil, nil
	}
	return &document.SiteRef{ID: site.ID, Name: site.Name}, nil
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}

var _ document.SiteResolver = (*Service)(nil)
