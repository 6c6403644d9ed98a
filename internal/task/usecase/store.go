package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/fekuna/omnipos-fulfillment-service/internal/apperror"
	"github.com/fekuna/omnipos-fulfillment-service/internal/ledger"
	"github.com/fekuna/omnipos-fulfillment-service/internal/model"
	"github.com/fekuna/omnipos-fulfillment-service/internal/task"
)

type taskStore struct {
	repo task.Repository
}

func NewTaskStore(repo task.Repository) task.Store {
	return &taskStore{repo: repo}
}

func (s *taskStore) Get(ctx context.Context, variantID string) (*model.Task, error) {
	t, err := s.repo.FindByVariant(ctx, variantID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, apperror.NotFound("task", variantID)
	}
	return t, nil
}

func (s *taskStore) UpsertTask(ctx context.Context, in *model.Task) (*model.Task, error) {
	if in.VariantID == "" {
		return nil, apperror.InvalidArgument("variant_id")
	}
	if in.TotalQuantity < 0 {
		return nil, apperror.InvalidQuantity(in.TotalQuantity)
	}

	now := time.Now().UTC()
	row := *in
	row.MadeQuantity = 0
	row.Status = model.TaskStatusPending
	row.CreatedAt = now
	row.UpdatedAt = now
	if err := s.repo.Upsert(ctx, &row); err != nil {
		return nil, fmt.Errorf("upsert task %s: %w", in.VariantID, err)
	}

	t, err := s.Get(ctx, in.VariantID)
	if err != nil {
		return nil, err
	}
	if derived := ledger.DeriveTaskStatus(t.MadeQuantity, t.TotalQuantity); derived != t.Status {
		t.Status = derived
		if err := s.save(ctx, t); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func (s *taskStore) RecordProduced(ctx context.Context, variantID string, qty int) (*model.Task, error) {
	if qty <= 0 {
		return nil, apperror.InvalidQuantity(qty)
	}

	t, err := s.Get(ctx, variantID)
	if err != nil {
		return nil, err
	}
	if ledger.WouldExceed(t.MadeQuantity, qty, t.TotalQuantity) {
		return nil, apperror.ExceedsCapacity(variantID, t.MadeQuantity, qty, t.TotalQuantity)
	}

	t.MadeQuantity += qty
	if err := s.save(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *taskStore) MarkComplete(ctx context.Context, variantID string) (*model.Task, int, error) {
	t, err := s.Get(ctx, variantID)
	if err != nil {
		return nil, 0, err
	}

	added := ledger.SubFloor(t.TotalQuantity, t.MadeQuantity)
	t.MadeQuantity = t.TotalQuantity
	if err := s.save(ctx, t); err != nil {
		return nil, 0, err
	}
	return t, added, nil
}

func (s *taskStore) Reset(ctx context.Context, variantID string) (*model.Task, int, error) {
	t, err := s.Get(ctx, variantID)
	if err != nil {
		return nil, 0, err
	}

	removed := t.MadeQuantity
	t.MadeQuantity = 0
	if err := s.save(ctx, t); err != nil {
		return nil, 0, err
	}
	return t, removed, nil
}

func (s *taskStore) Release(ctx context.Context, li model.OrderLineItem) error {
	t, err := s.repo.FindByVariant(ctx, li.VariantID)
	if err != nil {
		return err
	}
	if t == nil {
		return nil
	}

	t.TotalQuantity = ledger.SubFloor(t.TotalQuantity, li.Quantity)
	t.MadeQuantity = ledger.Clamp(ledger.SubFloor(t.MadeQuantity, li.FulfilledQuantity), t.TotalQuantity)
	return s.save(ctx, t)
}

func (s *taskStore) Restore(ctx context.Context, li model.OrderLineItem) error {
	t, err := s.repo.FindByVariant(ctx, li.VariantID)
	if err != nil {
		return err
	}

	if t == nil {
		now := time.Now().UTC()
		fresh := &model.Task{
			VariantID:     li.VariantID,
			ProductTitle:  li.ProductTitle,
			VariantTitle:  li.VariantTitle,
			SKU:           li.SKU,
			ImageURL:      li.ImageURL,
			TotalQuantity: li.Quantity,
			MadeQuantity:  ledger.Clamp(li.FulfilledQuantity, li.Quantity),
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		fresh.Status = ledger.DeriveTaskStatus(fresh.MadeQuantity, fresh.TotalQuantity)
		if err := s.repo.Upsert(ctx, fresh); err != nil {
			return fmt.Errorf("create task %s: %w", li.VariantID, err)
		}
		return nil
	}

	t.TotalQuantity += li.Quantity
	t.MadeQuantity = ledger.Clamp(t.MadeQuantity+li.FulfilledQuantity, t.TotalQuantity)
	return s.save(ctx, t)
}

func (s *taskStore) ApplyTotals(ctx context.Context, totals []model.VariantTotal) (int, error) {
	existing, err := s.repo.FindAll(ctx, nil)
	if err != nil {
		return 0, err
	}

	byVariant := make(map[string]model.VariantTotal, len(totals))
	for _, vt := range totals {
		byVariant[vt.VariantID] = vt
	}

	updated := 0
	seen := make(map[string]bool, len(existing))
	for i := range existing {
		t := &existing[i]
		seen[t.VariantID] = true

		vt := byVariant[t.VariantID]
		total := vt.TotalQuantity
		made := ledger.Clamp(vt.MadeQuantity, total)
		status := ledger.DeriveTaskStatus(made, total)
		if t.TotalQuantity == total && t.MadeQuantity == made && t.Status == status {
			continue
		}

		t.TotalQuantity = total
		t.MadeQuantity = made
		if err := s.save(ctx, t); err != nil {
			return updated, err
		}
		updated++
	}

	now := time.Now().UTC()
	for _, vt := range totals {
		if seen[vt.VariantID] || vt.TotalQuantity <= 0 {
			continue
		}
		made := ledger.Clamp(vt.MadeQuantity, vt.TotalQuantity)
		t := &model.Task{
			VariantID:     vt.VariantID,
			ProductTitle:  vt.ProductTitle,
			VariantTitle:  vt.VariantTitle,
			SKU:           vt.SKU,
			ImageURL:      vt.ImageURL,
			TotalQuantity: vt.TotalQuantity,
			MadeQuantity:  made,
			Status:        ledger.DeriveTaskStatus(made, vt.TotalQuantity),
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := s.repo.Upsert(ctx, t); err != nil {
			return updated, fmt.Errorf("create task %s: %w", vt.VariantID, err)
		}
		updated++
	}

	if _, err := s.repo.DeleteZeroTotal(ctx); err != nil {
		return updated, err
	}
	return updated, nil
}

func (s *taskStore) DeleteZeroTotal(ctx context.Context) (int64, error) {
	return s.repo.DeleteZeroTotal(ctx)
}

// save re-derives status from the quantities and persists them.
func (s *taskStore) save(ctx context.Context, t *model.Task) error {
	t.Status = ledger.DeriveTaskStatus(t.MadeQuantity, t.TotalQuantity)
	t.UpdatedAt = time.Now().UTC()
	if err := s.repo.UpdateProgress(ctx, t); err != nil {
		return fmt.Errorf("update task %s: %w", t.VariantID, err)
	}
	return nil
}
