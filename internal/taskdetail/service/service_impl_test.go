package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	cfg "github.com/transnet/rms/internal/config"
	"github.com/transnet/rms/internal/document"
	rldomain "github.com/transnet/rms/internal/resourceledger/domain"
	rlrepository "github.com/transnet/rms/internal/resourceledger/repository"
	sodomain "github.com/transnet/rms/internal/serviceorder/domain"
	sorepository "github.com/transnet/rms/internal/serviceorder/repository"
	"github.com/transnet/rms/internal/taskdetail/domain"
	"github.com/transnet/rms/internal/taskdetail/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type nilResolver struct{}

func (nilResolver) ResolveSite(context.Context, snowflake.ID) (*document.SiteRef, error) {
	return nil, nil
}

type testEnv struct {
	db   *gorm.DB
	node *snowflake.Node
	svc  domain.Service
}

func newTestEnv(t *testing.T, plugin cfg.PluginConfig) testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&sodomain.ServiceOrder{},
		&domain.TaskDetail{},
		&rldomain.ResourceLedger{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		DB:         db,
		Log:        zap.NewNop(),
		GenID:      node,
		Repo:       repository.Provide(),
		OrderRepo:  sorepository.Provide(),
		LedgerRepo: rlrepository.Provide(),
		Sites:      nilResolver{},
		Plugin:     cfg.NewStaticPluginConfigHolder(plugin),
	})

	return testEnv{db: db, node: node, svc: svc}
}

func (e testEnv) seedOrder(t *testing.T, orderNo string, parentID *snowflake.ID) *sodomain.ServiceOrder {
	t.Helper()
	now := time.Now().UTC()
	order := &sodomain.ServiceOrder{
		ID:            e.node.Generate(),
		OrderNo:       orderNo,
		TenantID:      e.node.Generate(),
		ParentOrderID: parentID,
		CheckData:     []byte(`{}`),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	require.NoError(t, e.db.Create(order).Error)
	return order
}

func TestCreateChangeTaskRequiresParentOrder(t *testing.T) {
	env := newTestEnv(t, cfg.DefaultPluginConfig())
	order := env.seedOrder(t, "SO-2024-001", nil)

	_, err := env.svc.Create(context.Background(), domain.CreateTaskRequest{
		ServiceOrderID: order.ID.String(),
		TaskType:       domain.TaskTypeChange,
		ChangeTypes:    []string{domain.ChangeTypeBandwidth},
	})
	require.ErrorIs(t, err, domain.ErrMissingParentOrder)
}

func TestCreateChangeTaskAutoFillsFromParent(t *testing.T) {
	env := newTestEnv(t, cfg.DefaultPluginConfig())

	parent := env.seedOrder(t, "SO-2024-010", nil)
	parentTask := &domain.TaskDetail{
		ID:              env.node.Generate(),
		ServiceOrderID:  parent.ID,
		TaskType:        domain.TaskTypeActivation,
		ExecutionStatus: domain.ExecutionStatusConnected,
		LifecycleStatus: domain.LifecycleStatusActive,
		SiteA:           "X",
		SiteZ:           "Y",
		Bandwidth:       "10G",
		CircuitID:       "C-0042",
		FeedbackData:    []byte(`{}`),
	}
	require.NoError(t, env.db.Create(parentTask).Error)

	child := env.seedOrder(t, "SO-2024-011", &parent.ID)

	task, err := env.svc.Create(context.Background(), domain.CreateTaskRequest{
		ServiceOrderID: child.ID.String(),
		TaskType:       domain.TaskTypeChange,
		ChangeTypes:    []string{domain.ChangeTypeBandwidth},
		OldValue:       "10G",
		NewValue:       "100G",
	})
	require.NoError(t, err)
	require.Equal(t, "X", task.SiteA)
	require.Equal(t, "Y", task.SiteZ)
	require.Equal(t, "10G", task.Bandwidth)
	require.Equal(t, "C-0042", task.CircuitID)
	require.Equal(t, "site_a: X\nsite_z: Y\nbandwidth: 10G\ncircuit_id: C-0042", task.PreviousValues)

	var stored domain.TaskDetail
	require.NoError(t, env.db.First(&stored, "id = ?", task.ID).Error)
	require.Equal(t, "X", stored.SiteA)
	require.Equal(t, task.PreviousValues, stored.PreviousValues)
}

func TestCreateChangeTaskAutoFillDisabled(t *testing.T) {
	env := newTestEnv(t, cfg.PluginConfig{
		EnableExternalResourceValidation: true,
		AutoFillChangeOrder:              false,
	})

	parent := env.seedOrder(t, "SO-2024-020", nil)
	require.NoError(t, env.db.Create(&domain.TaskDetail{
		ID:              env.node.Generate(),
		ServiceOrderID:  parent.ID,
		TaskType:        domain.TaskTypeActivation,
		ExecutionStatus: domain.ExecutionStatusConnected,
		LifecycleStatus: domain.LifecycleStatusActive,
		SiteA:           "X",
		FeedbackData:    []byte(`{}`),
	}).Error)

	child := env.seedOrder(t, "SO-2024-021", &parent.ID)

	task, err := env.svc.Create(context.Background(), domain.CreateTaskRequest{
		ServiceOrderID: child.ID.String(),
		TaskType:       domain.TaskTypeChange,
		ChangeTypes:    []string{domain.ChangeTypeBandwidth},
	})
	require.NoError(t, err)
	require.Empty(t, task.SiteA)
	require.Empty(t, task.PreviousValues)
}

func TestAutoFillDoesNotOverwriteProvidedValues(t *testing.T) {
	env := newTestEnv(t, cfg.DefaultPluginConfig())

	parent := env.seedOrder(t, "SO-2024-030", nil)
	require.NoError(t, env.db.Create(&domain.TaskDetail{
		ID:              env.node.Generate(),
		ServiceOrderID:  parent.ID,
		TaskType:        domain.TaskTypeActivation,
		ExecutionStatus: domain.ExecutionStatusConnected,
		LifecycleStatus: domain.LifecycleStatusActive,
		SiteA:           "X",
		Bandwidth:       "10G",
		FeedbackData:    []byte(`{}`),
	}).Error)

	child := env.seedOrder(t, "SO-2024-031", &parent.ID)

	task, err := env.svc.Create(context.Background(), domain.CreateTaskRequest{
		ServiceOrderID: child.ID.String(),
		TaskType:       domain.TaskTypeChange,
		ChangeTypes:    []string{domain.ChangeTypeBandwidth},
		SiteA:          "Z",
	})
	require.NoError(t, err)
	require.Equal(t, "Z", task.SiteA)
	require.Equal(t, "10G", task.Bandwidth)
}

func TestExternalResourceRequiresContract(t *testing.T) {
	env := newTestEnv(t, cfg.DefaultPluginConfig())
	order := env.seedOrder(t, "SO-2024-040", nil)

	_, err := env.svc.Create(context.Background(), domain.CreateTaskRequest{
		ServiceOrderID: order.ID.String(),
		TaskType:       domain.TaskTypeActivation,
		ExtResource:    true,
	})
	require.ErrorIs(t, err, domain.ErrMissingExternalContract)

	task, err := env.svc.Create(context.Background(), domain.CreateTaskRequest{
		ServiceOrderID: order.ID.String(),
		TaskType:       domain.TaskTypeActivation,
		ExtResource:    true,
		ExtContract:    "EXT-77",
	})
	require.NoError(t, err)
	require.Equal(t, "EXT-77", task.ExtContract)
}

func TestExternalResourceValidationDisabled(t *testing.T) {
	env := newTestEnv(t, cfg.PluginConfig{
		EnableExternalResourceValidation: false,
		AutoFillChangeOrder:              true,
	})
	order := env.seedOrder(t, "SO-2024-050", nil)

	_, err := env.svc.Create(context.Background(), domain.CreateTaskRequest{
		ServiceOrderID: order.ID.String(),
		TaskType:       domain.TaskTypeActivation,
		ExtResource:    true,
	})
	require.NoError(t, err)
}

func TestCancellationTaskTerminatesLedgers(t *testing.T) {
	env := newTestEnv(t, cfg.DefaultPluginConfig())

	parent := env.seedOrder(t, "SO-2024-060", nil)
	order := env.seedOrder(t, "SO-2024-061", &parent.ID)

	for _, resourceID := range []string{"C-100", "C-101"} {
		require.NoError(t, env.db.Create(&rldomain.ResourceLedger{
			ID:              env.node.Generate(),
			ServiceOrderID:  order.ID,
			ResourceType:    rldomain.ResourceTypeCircuit,
			ResourceID:      resourceID,
			LifecycleStatus: rldomain.LifecycleStatusActive,
			Snapshot:        []byte(`{}`),
		}).Error)
	}

	_, err := env.svc.Create(context.Background(), domain.CreateTaskRequest{
		ServiceOrderID:  order.ID.String(),
		TaskType:        domain.TaskTypeChange,
		LifecycleStatus: domain.LifecycleStatusTerminated,
		ChangeTypes:     []string{domain.ChangeTypeToggle},
		NewValue:        "客户申请终止业务",
	})
	require.NoError(t, err)

	var ledgers []rldomain.ResourceLedger
	require.NoError(t, env.db.Find(&ledgers, "service_order_id = ?", order.ID).Error)
	require.Len(t, ledgers, 2)
	for _, ledger := range ledgers {
		require.Equal(t, rldomain.LifecycleStatusTerminated, ledger.LifecycleStatus)
	}
}

func TestCancellationSkippedWhenTaskStillActive(t *testing.T) {
	env := newTestEnv(t, cfg.DefaultPluginConfig())

	parent := env.seedOrder(t, "SO-2024-070", nil)
	order := env.seedOrder(t, "SO-2024-071", &parent.ID)

	require.NoError(t, env.db.Create(&rldomain.ResourceLedger{
		ID:              env.node.Generate(),
		ServiceOrderID:  order.ID,
		ResourceType:    rldomain.ResourceTypeCircuit,
		ResourceID:      "C-200",
		LifecycleStatus: rldomain.LifecycleStatusActive,
		Snapshot:        []byte(`{}`),
	}).Error)

	_, err := env.svc.Create(context.Background(), domain.CreateTaskRequest{
		ServiceOrderID:  order.ID.String(),
		TaskType:        domain.TaskTypeChange,
		LifecycleStatus: domain.LifecycleStatusActive,
		ChangeTypes:     []string{domain.ChangeTypeToggle},
		NewValue:        "取消原有开通",
	})
	require.NoError(t, err)

	var ledger rldomain.ResourceLedger
	require.NoError(t, env.db.First(&ledger, "resource_id = ?", "C-200").Error)
	require.Equal(t, rldomain.LifecycleStatusActive, ledger.LifecycleStatus)
}

func TestCancellationRequiresKeyword(t *testing.T) {
	env := newTestEnv(t, cfg.DefaultPluginConfig())

	parent := env.seedOrder(t, "SO-2024-080", nil)
	order := env.seedOrder(t, "SO-2024-081", &parent.ID)

	require.NoError(t, env.db.Create(&rldomain.ResourceLedger{
		ID:              env.node.Generate(),
		ServiceOrderID:  order.ID,
		ResourceType:    rldomain.ResourceTypeCircuit,
		ResourceID:      "C-300",
		LifecycleStatus: rldomain.LifecycleStatusActive,
		Snapshot:        []byte(`{}`),
	}).Error)

	_, err := env.svc.Create(context.Background(), domain.CreateTaskRequest{
		ServiceOrderID:  order.ID.String(),
		TaskType:        domain.TaskTypeChange,
		LifecycleStatus: domain.LifecycleStatusTerminated,
		ChangeTypes:     []string{domain.ChangeTypeToggle},
		NewValue:        "speed downgrade only",
	})
	require.NoError(t, err)

	var ledger rldomain.ResourceLedger
	require.NoError(t, env.db.First(&ledger, "resource_id = ?", "C-300").Error)
	require.Equal(t, rldomain.LifecycleStatusActive, ledger.LifecycleStatus)
}

func TestCreateTaskDefaults(t *testing.T) {
	env := newTestEnv(t, cfg.DefaultPluginConfig())
	order := env.seedOrder(t, "SO-2024-090", nil)

	task, err := env.svc.Create(context.Background(), domain.CreateTaskRequest{
		ServiceOrderID: order.ID.String(),
	})
	require.NoError(t, err)
	require.Equal(t, domain.TaskTypeActivation, task.TaskType)
	require.Equal(t, domain.ExecutionStatusPending, task.ExecutionStatus)
	require.Equal(t, domain.LifecycleStatusActive, task.LifecycleStatus)
}

func TestCreateTaskRejectsUnknownVocabulary(t *testing.T) {
	env := newTestEnv(t, cfg.DefaultPluginConfig())
	order := env.seedOrder(t, "SO-2024-100", nil)

	_, err := env.svc.Create(context.Background(), domain.CreateTaskRequest{
		ServiceOrderID: order.ID.String(),
		TaskType:       "decommission",
	})
	require.ErrorIs(t, err, domain.ErrInvalidTaskType)

	_, err = env.svc.Create(context.Background(), domain.CreateTaskRequest{
		ServiceOrderID:  order.ID.String(),
		ExecutionStatus: "done",
	})
	require.ErrorIs(t, err, domain.ErrInvalidExecutionStatus)
}

func TestUpdatePreservesPreviousValues(t *testing.T) {
	env := newTestEnv(t, cfg.DefaultPluginConfig())

	parent := env.seedOrder(t, "SO-2024-110", nil)
	require.NoError(t, env.db.Create(&domain.TaskDetail{
		ID:              env.node.Generate(),
		ServiceOrderID:  parent.ID,
		TaskType:        domain.TaskTypeActivation,
		ExecutionStatus: domain.ExecutionStatusConnected,
		LifecycleStatus: domain.LifecycleStatusActive,
		SiteA:           "X",
		FeedbackData:    []byte(`{}`),
	}).Error)

	child := env.seedOrder(t, "SO-2024-111", &parent.ID)

	created, err := env.svc.Create(context.Background(), domain.CreateTaskRequest{
		ServiceOrderID: child.ID.String(),
		TaskType:       domain.TaskTypeChange,
		ChangeTypes:    []string{domain.ChangeTypeBandwidth},
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.PreviousValues)

	updated, err := env.svc.Update(context.Background(), domain.UpdateTaskRequest{
		ID: created.ID.String(),
		CreateTaskRequest: domain.CreateTaskRequest{
			ServiceOrderID: child.ID.String(),
			TaskType:       domain.TaskTypeChange,
			ChangeTypes:    []string{domain.ChangeTypeBandwidth},
			NewValue:       "100G",
		},
	})
	require.NoError(t, err)
	require.Equal(t, created.ID, updated.ID)
	require.Equal(t, created.PreviousValues, updated.PreviousValues)
}
