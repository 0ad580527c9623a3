package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/alexanderramin/canteiro/internal/apperr"
	"github.com/alexanderramin/canteiro/internal/domain"
	"github.com/alexanderramin/canteiro/internal/listing"
	"github.com/alexanderramin/canteiro/internal/repository"
	"github.com/alexanderramin/canteiro/internal/rollup"
	"github.com/alexanderramin/canteiro/internal/storage"
)

// Event field keys read by the metrics observer.
const (
	FieldEntity      = "entity"
	FieldRowsWritten = "rows_written"
)

// lookupErr maps a repository read failure for resource id onto the error
// taxonomy.
func lookupErr(resource, id string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound(resource, id)
	}
	return apperr.External("loading "+resource, err)
}

func requireName(field, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apperr.Validation(field, "must not be empty")
	}
	return name, nil
}

// purgeInstances deletes the photos, logs and rows of the given instances
// through repos and returns the object keys of the removed photos. Callers
// run it inside a transaction and remove the objects after commit.
func purgeInstances(ctx context.Context, repos repository.Repos, instanceIDs []string) ([]string, error) {
	var keys []string
	for _, id := range instanceIDs {
		photos, err := repos.Photos.ListByUnitStage(ctx, id)
		if err != nil {
			return nil, err
		}
		for _, p := range photos {
			keys = append(keys, p.Path)
		}
		if _, err := repos.Photos.DeleteByUnitStage(ctx, id); err != nil {
			return nil, err
		}
		if _, err := repos.Logs.DeleteByUnitStage(ctx, id); err != nil {
			return nil, err
		}
		if err := repos.UnitStages.Delete(ctx, id); err != nil {
			return nil, err
		}
	}
	return keys, nil
}

// removeObjects deletes every key from bucket, continuing past failures.
func removeObjects(ctx context.Context, store storage.ObjectStore, bucket string, keys []string) error {
	var errs []error
	for _, key := range keys {
		if err := store.Delete(ctx, bucket, key); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return apperr.External("deleting photo objects", errors.Join(errs...))
	}
	return nil
}

// syncUnit recomputes a unit's stored progress and status from its
// instances. It returns the unit as persisted.
func syncUnit(ctx context.Context, repos repository.Repos, unitID string, now time.Time) (*domain.Unit, error) {
	u, err := repos.Units.GetByID(ctx, unitID)
	if err != nil {
		return nil, err
	}
	instances, err := repos.UnitStages.ListByUnit(ctx, unitID)
	if err != nil {
		return nil, err
	}
	progress := rollup.UnitProgress(instances)
	status := rollup.UnitStatus(instances)
	if u.Progress == progress && u.Status == status {
		return u, nil
	}
	u.Progress = progress
	u.Status = status
	u.UpdatedAt = now
	if err := repos.Units.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// computedUnits returns copies of units with Progress and Status derived
// from their current instances, plus those instances grouped by unit.
func computedUnits(ctx context.Context, repos repository.Repos, units []*domain.Unit) ([]*domain.Unit, map[string][]*domain.UnitStage, error) {
	ids := make([]string, len(units))
	for i, u := range units {
		ids[i] = u.ID
	}
	instances, err := repos.UnitStages.ListByUnits(ctx, ids)
	if err != nil {
		return nil, nil, apperr.External("loading unit stages", err)
	}
	byUnit := rollup.GroupByUnit(instances)
	return rollup.WithComputedProgress(units, byUnit), byUnit, nil
}

// appendLog records an audit entry for an instance.
func appendLog(ctx context.Context, logs repository.StageLogRepo, unitStageID string, user *domain.User, action domain.LogAction, oldValue, newValue any, now time.Time) error {
	oldJSON, err := snapshotJSON(oldValue)
	if err != nil {
		return err
	}
	newJSON, err := snapshotJSON(newValue)
	if err != nil {
		return err
	}
	return logs.Create(ctx, &domain.StageLog{
		ID:          uuid.New().String(),
		UnitStageID: unitStageID,
		UserID:      user.ID,
		Action:      action,
		OldValue:    oldJSON,
		NewValue:    newJSON,
		CreatedAt:   now,
	})
}

func snapshotJSON(v any) (string, error) {
	if v == nil {
		return "", nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encoding log snapshot: %w", err)
	}
	return string(data), nil
}

// reorder computes the order indices after moving entry pos one step in
// dir, for entries already in canonical order. Tied or non-increasing
// indices are first renumbered 1..n, so the move only ever exchanges the
// entry with its immediate neighbour. ok is false at either boundary.
func reorder(order []int, pos int, dir domain.Direction) (next []int, ok bool) {
	n := pos - 1
	if dir == domain.DirectionDown {
		n = pos + 1
	}
	if n < 0 || n >= len(order) {
		return nil, false
	}
	next = append([]int(nil), order...)
	for i := range next {
		if next[i] <= 0 || (i > 0 && next[i] <= next[i-1]) {
			for j := range next {
				next[j] = j + 1
			}
			break
		}
	}
	next[pos], next[n] = next[n], next[pos]
	return next, true
}

// sortedInstances orders a unit's instances by instance order, then by the
// name each is displayed under.
func sortedInstances(instances []*domain.UnitStage, templateNames map[string]string) []*domain.UnitStage {
	items := make([]listing.Instance, len(instances))
	for i, us := range instances {
		items[i] = listing.Instance{UnitStage: us, Name: us.DisplayName(templateNames[us.StageID])}
	}
	sorted := listing.SortInstances(items)
	out := make([]*domain.UnitStage, len(sorted))
	for i, it := range sorted {
		out[i] = it.UnitStage
	}
	return out
}

func dedupIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func nowUTC() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}
