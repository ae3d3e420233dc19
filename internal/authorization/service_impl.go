package authorization

import (
	"context"
	_ "embed"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	auditdomain "github.com/transnet/rms/internal/audit/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed model.conf
var modelText string

const (
	ObjectServiceOrder   = "service_order"
	ObjectTaskDetail     = "task_detail"
	ObjectResourceLedger = "resource_ledger"
	ObjectResourceCheck  = "resource_check"
	ObjectTenant         = "tenant"
	ObjectSite           = "site"
	ObjectAuditLog       = "audit_log"
)

const (
	ActionView   = "view"
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"

	ActionResourceCheckPut = "resource_check.put"
	ActionOrderPrint       = "service_order.print"
)

const (
	RoleViewer   = "role:viewer"
	RoleOperator = "role:operator"
	RoleAdmin    = "role:admin"
)

type Params struct {
	fx.In

	Log      *zap.Logger
	Enforcer *casbin.SyncedEnforcer
	AuditSvc auditdomain.Service `optional:"true"`
}

type ServiceImpl struct {
	log      *zap.Logger
	enforcer *casbin.SyncedEnforcer
	auditSvc auditdomain.Service
}

func NewEnforcer(db *gorm.DB) (*casbin.SyncedEnforcer, error) {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, err
	}
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}
	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, err
	}
	enforcer.EnableAutoSave(true)
	enforcer.EnableAutoBuildRoleLinks(true)
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, err
	}
	if err := seedPolicies(enforcer); err != nil {
		return nil, err
	}
	enforcer.BuildRoleLinks()
	return enforcer, nil
}

func NewService(p Params) Service {
	return &ServiceImpl{
		log:      p.Log.Named("authorization.service"),
		enforcer: p.Enforcer,
		auditSvc: p.AuditSvc,
	}
}

func (s *ServiceImpl) Authorize(ctx context.Context, actor, object, action string) error {
	actor = strings.TrimSpace(actor)
	if actor == "" {
		return ErrInvalidActor
	}
	object = strings.TrimSpace(object)
	if object == "" {
		return ErrInvalidObject
	}
	action = strings.TrimSpace(action)
	if action == "" {
		return ErrInvalidAction
	}

	subject := subjectFor(actor)
	allowed, err := s.enforcer.Enforce(subject, object, action)
	if err != nil {
		return err
	}
	if !allowed {
		s.auditDenied(ctx, subject, object, action)
		return ErrForbidden
	}
	return nil
}

func (s *ServiceImpl) Grant(ctx context.Context, actor, role string) error {
	actor = strings.TrimSpace(actor)
	if actor == "" {
		return ErrInvalidActor
	}
	switch role {
	case RoleViewer, RoleOperator, RoleAdmin:
	default:
		return ErrInvalidRole
	}

	subject := subjectFor(actor)
	if _, err := s.enforcer.AddGroupingPolicy(subject, role); err != nil {
		return err
	}

	if s.auditSvc != nil {
		targetID := subject
		_ = s.auditSvc.Record(ctx, "authorization.granted", "authorization", &targetID, map[string]any{
			"subject": subject,
			"role":    role,
		})
	}
	return nil
}

func (s *ServiceImpl) auditDenied(ctx context.Context, subject, object, action string) {
	if s.auditSvc == nil {
		return
	}
	targetID := subject
	_ = s.auditSvc.Record(ctx, "authorization.denied", "authorization", &targetID, map[string]any{
		"subject": subject,
		"object":  object,
		"action":  action,
	})
}

func subjectFor(actor string) string {
	if actor == "system" || strings.HasPrefix(actor, "user:") {
		return actor
	}
	return "user:" + actor
}

func seedPolicies(enforcer *casbin.SyncedEnforcer) error {
	viewObjects := []string{
		ObjectServiceOrder,
		ObjectTaskDetail,
		ObjectResourceLedger,
		ObjectResourceCheck,
		ObjectTenant,
		ObjectSite,
	}

	policies := [][]string{}
	for _, object := range viewObjects {
		policies = append(policies, []string{RoleViewer, object, ActionView})
	}

	// Operators create and update records and file check results.
	for _, object := range viewObjects {
		policies = append(policies,
			[]string{RoleOperator, object, ActionCreate},
			[]string{RoleOperator, object, ActionUpdate},
		)
	}
	policies = append(policies,
		[]string{RoleOperator, ObjectResourceCheck, ActionResourceCheckPut},
		[]string{RoleOperator, ObjectServiceOrder, ActionOrderPrint},
	)

	// Admins additionally delete and read the audit trail.
	for _, object := range viewObjects {
		policies = append(policies, []string{RoleAdmin, object, ActionDelete})
	}
	policies = append(policies, []string{RoleAdmin, ObjectAuditLog, ActionView})

	for _, policy := range policies {
		if _, err := enforcer.AddPolicy(policy); err != nil {
			return err
		}
	}

	groupings := [][]string{
		{RoleOperator, RoleViewer},
		{RoleAdmin, RoleOperator},
		{"system", RoleAdmin},
	}
	for _, grouping := range groupings {
		if _, err := enforcer.AddGroupingPolicy(grouping); err != nil {
			return err
		}
	}
	return nil
}
