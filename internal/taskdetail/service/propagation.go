package service

import (
	"context"
	"strings"

	sodomain "github.com/transnet/rms/internal/serviceorder/domain"
	"github.com/transnet/rms/internal/taskdetail/domain"
	"go.uber.org/zap"
)

// Cancellation keywords matched against a change task's new_value.
var cancellationKeywords = []string{"取消", "撤销", "拆机", "终止", "关闭"}

// Fields Rule A copies from the parent order's first task.
var autoFillFields = []string{"site_a", "site_z", "bandwidth", "circuit_id"}

// propagate runs the post-commit hooks. Both rules are best-effort; errors
// are logged and never surface to the caller.
func (s *Service) propagate(ctx context.Context, task *domain.TaskDetail, order *sodomain.ServiceOrder, isNew bool) {
	s.autoFillFromParent(ctx, task, order, isNew)
	s.cascadeTermination(ctx, task)
}

// autoFillFromParent implements Rule A: a new change task under an order
// with a parent inherits site_a, site_z, bandwidth and circuit_id from the
// first task of the parent order, where empty, and records the parent's
// values as a previous-values block.
func (s *Service) autoFillFromParent(ctx context.Context, task *domain.TaskDetail, order *sodomain.ServiceOrder, isNew bool) {
	if !isNew || task.TaskType != domain.TaskTypeChange || order.ParentOrderID == nil {
		return
	}
	if !s.plugin.Current().AutoFillChangeOrder {
		s.metrics.RecordPropagationRun(ctx, "auto_fill", "disabled")
		return
	}

	parentTask, err := s.repo.FirstByOrder(ctx, s.db, *order.ParentOrderID)
	if err != nil {
		s.log.Warn("auto-fill lookup failed",
			zap.Int64("task_id", int64(task.ID)),
			zap.Error(err),
		)
		s.metrics.RecordPropagationRun(ctx, "auto_fill", "error")
		return
	}
	if parentTask == nil {
		s.metrics.RecordPropagationRun(ctx, "auto_fill", "skipped")
		return
	}

	changed := false
	if task.SiteA == "" && parentTask.SiteA != "" {
		task.SiteA = parentTask.SiteA
		changed = true
	}
	if task.SiteZ == "" && parentTask.SiteZ != "" {
		task.SiteZ = parentTask.SiteZ
		changed = true
	}
	if task.Bandwidth == "" && parentTask.Bandwidth != "" {
		task.Bandwidth = parentTask.Bandwidth
		changed = true
	}
	if task.CircuitID == "" && parentTask.CircuitID != "" {
		task.CircuitID = parentTask.CircuitID
		changed = true
	}

	if block := previousValuesBlock(parentTask); block != "" && block != task.PreviousValues {
		task.PreviousValues = block
		changed = true
	}

	if !changed {
		s.metrics.RecordPropagationRun(ctx, "auto_fill", "skipped")
		return
	}

	if err := s.repo.Update(ctx, s.db, task); err != nil {
		s.log.Warn("auto-fill write failed",
			zap.Int64("task_id", int64(task.ID)),
			zap.Error(err),
		)
		s.metrics.RecordPropagationRun(ctx, "auto_fill", "error")
		return
	}
	s.metrics.RecordPropagationRun(ctx, "auto_fill", "applied")
}

// cascadeTermination implements Rule B: a change task with the toggle change
// type whose new_value carries a cancellation keyword, and whose own
// lifecycle status is already terminated, terminates every ledger row under
// the same order.
func (s *Service) cascadeTermination(ctx context.Context, task *domain.TaskDetail) {
	if task.TaskType != domain.TaskTypeChange || !task.HasChangeType(domain.ChangeTypeToggle) {
		return
	}
	if !containsCancellationKeyword(task.NewValue) {
		return
	}
	if task.LifecycleStatus != domain.LifecycleStatusTerminated {
		s.metrics.RecordPropagationRun(ctx, "cascade_termination", "skipped")
		return
	}

	count, err := s.ledgerRepo.TerminateByOrder(ctx, s.db, task.ServiceOrderID)
	if err != nil {
		s.log.Warn("cascade termination failed",
			zap.Int64("task_id", int64(task.ID)),
			zap.Int64("service_order_id", int64(task.ServiceOrderID)),
			zap.Error(err),
		)
		s.metrics.RecordPropagationRun(ctx, "cascade_termination", "error")
		return
	}

	s.log.Info("cascade termination applied",
		zap.Int64("service_order_id", int64(task.ServiceOrderID)),
		zap.Int64("ledgers_terminated", count),
	)
	s.metrics.RecordPropagationRun(ctx, "cascade_termination", "applied")
}

func containsCancellationKeyword(value string) bool {
	for _, keyword := range cancellationKeywords {
		if strings.Contains(value, keyword) {
			return true
		}
	}
	return false
}

func previousValuesBlock(parentTask *domain.TaskDetail) string {
	values := map[string]string{
		"site_a":     parentTask.SiteA,
		"site_z":     parentTask.SiteZ,
		"bandwidth":  parentTask.Bandwidth,
		"circuit_id": parentTask.CircuitID,
	}
	lines := make([]string, 0, len(autoFillFields))
	for _, field := range autoFillFields {
		if value := values[field]; value != "" {
			lines = append(lines, field+": "+value)
		}
	}
	return strings.Join(lines, "\n")
}
