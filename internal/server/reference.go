package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	refdomain "github.com/transnet/rms/internal/reference/domain"
	"github.com/transnet/rms/pkg/db/pagination"
)

type listTenantParams struct {
	pagination.Pagination

	Name string `form:"name"`
	Slug string `form:"slug"`
}

type listSiteParams struct {
	pagination.Pagination

	Name   string `form:"name"`
	Slug   string `form:"slug"`
	Region string `form:"region"`
}

func (s *Server) ListTenants(c *gin.Context) {
	var params listTenantParams
	if err := c.ShouldBindQuery(&params); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.refSvc.ListTenants(c.Request.Context(), refdomain.ListTenantRequest{
		PageToken: params.PageToken,
		PageSize:  int32(params.PageSize),
		Name:      params.Name,
		Slug:      params.Slug,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CreateTenant(c *gin.Context) {
	var req refdomain.CreateTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	tenant, err := s.refSvc.CreateTenant(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	id := tenant.ID.String()
	_ = s.auditSvc.Record(c.Request.Context(), "tenant.created", "tenant", &id, map[string]any{
		"name": tenant.Name,
	})

	c.JSON(http.StatusOK, gin.H{"data": tenant})
}

func (s *Server) GetTenantByID(c *gin.Context) {
	tenant, err := s.refSvc.GetTenant(c.Request.Context(), refdomain.GetRequest{ID: c.Param("id")})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": tenant})
}

func (s *Server) ListSites(c *gin.Context) {
	var params listSiteParams
	if err := c.ShouldBindQuery(&params); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.refSvc.ListSites(c.Request.Context(), refdomain.ListSiteRequest{
		PageToken: params.PageToken,
		PageSize:  int32(params.PageSize),
		Name:      params.Name,
		Slug:      params.Slug,
		Region:    params.Region,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CreateSite(c *gin.Context) {
	var req refdomain.CreateSiteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	site, err := s.refSvc.CreateSite(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	id := site.ID.String()
	_ = s.auditSvc.Record(c.Request.Context(), "site.created", "site", &id, map[string]any{
		"name": site.Name,
	})

	c.JSON(http.StatusOK, gin.H{"data": site})
}

func (s *Server) GetSiteByID(c *gin.Context) {
	site, err := s.refSvc.GetSite(c.Request.Context(), refdomain.GetRequest{ID: c.Param("id")})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": site})
}
