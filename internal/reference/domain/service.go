package domain

import (
	"context"
	"errors"

	"github.com/transnet/rms/pkg/db/pagination"
)

type CreateTenantRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type CreateSiteRequest struct {
	Name        string `json:"name"`
	Region      string `json:"region,omitempty"`
	Description string `json:"description,omitempty"`
}

type ListTenantRequest struct {
	PageToken string
	PageSize  int32
	Name      string
	Slug      string
}

type ListTenantFilter struct {
	Name string
	Slug string
}

type ListTenantResponse struct {
	pagination.PageInfo
	Tenants []Tenant `json:"tenants"`
}

type ListSiteRequest struct {
	PageToken string
	PageSize  int32
	Name      string
	Slug      string
	Region    string
}

type ListSiteFilter struct {
	Name   string
	Slug   string
	Region string
}

type ListSiteResponse struct {
	pagination.PageInfo
	Sites []Site `json:"sites"`
}

type GetRequest struct {
	ID string
}

type Service interface {
	CreateTenant(context.Context, CreateTenantRequest) (Tenant, error)
	ListTenants(context.Context, ListTenantRequest) (ListTenantResponse, error)
	GetTenant(context.Context, GetRequest) (Tenant, error)

	CreateSite(context.Context, CreateSiteRequest) (Site, error)
	ListSites(context.Context, ListSiteRequest) (ListSiteResponse, error)
	GetSite(context.Context, GetRequest) (Site, error)
}

var (
	ErrInvalidName = errors.New("invalid_name")
	ErrInvalidID   = errors.New("invalid_id")
	ErrNotFound    = errors.New("not_found")
)
