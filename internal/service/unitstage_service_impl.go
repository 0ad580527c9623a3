package service

import (
	"context"
	"fmt"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/alexanderramin/canteiro/internal/apperr"
	"github.com/alexanderramin/canteiro/internal/auth"
	"github.com/alexanderramin/canteiro/internal/db"
	"github.com/alexanderramin/canteiro/internal/domain"
	"github.com/alexanderramin/canteiro/internal/repository"
	"github.com/alexanderramin/canteiro/internal/storage"
)

type unitStageService struct {
	repos     repository.Repos
	uow       db.UnitOfWork
	store     storage.ObjectStore
	bucket    string
	signedTTL time.Duration
	observer  UseCaseObserver
}

func NewUnitStageService(
	repos repository.Repos,
	uow db.UnitOfWork,
	store storage.ObjectStore,
	bucket string,
	signedTTL time.Duration,
	observers ...UseCaseObserver,
) UnitStageService {
	if signedTTL <= 0 {
		signedTTL = time.Hour
	}
	return &unitStageService{
		repos:     repos,
		uow:       uow,
		store:     store,
		bucket:    bucket,
		signedTTL: signedTTL,
		observer:  useCaseObserverOrNoop(observers),
	}
}

func (s *unitStageService) Get(ctx context.Context, id string) (*domain.UnitStage, error) {
	us, err := s.repos.UnitStages.GetByID(ctx, id)
	if err != nil {
		return nil, lookupErr("unit stage", id, err)
	}
	return us, nil
}

// SetStatus moves an instance to status, stamping the first start and
// finish, records the change and re-syncs the unit. Setting the current
// status is a no-op.
func (s *unitStageService) SetStatus(ctx context.Context, id string, status domain.Status) (updated *domain.UnitStage, err error) {
	startedAt := time.Now()
	fields := map[string]any{"unit_stage_id": id, "status": string(status)}
	defer func() { observeUseCase(ctx, s.observer, "unit-stage-status", startedAt, fields, err) }()

	user, err := auth.RequireUser(ctx)
	if err != nil {
		return nil, err
	}
	target := domain.Status(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(string(status))), "-", "_"))
	if !target.Valid() {
		return nil, apperr.Validation("status", "must be pending, in_progress or done, got %q", status)
	}

	var changed bool
	updated, changed, err = s.mutate(ctx, id, func(ctx context.Context, repos repository.Repos, us *domain.UnitStage, now time.Time) (bool, error) {
		before := us.Snapshot()
		if !us.Transition(target, now) {
			return false, nil
		}
		if err := repos.UnitStages.Update(ctx, us); err != nil {
			return false, err
		}
		if err := appendLog(ctx, repos.Logs, us.ID, user, domain.ActionStatusChanged, before, us.Snapshot(), now); err != nil {
			return false, err
		}
		_, err := syncUnit(ctx, repos, us.UnitID, now)
		return true, err
	})
	fields["changed"] = changed
	return updated, err
}

// SetNotes replaces the instance notes and records the change.
func (s *unitStageService) SetNotes(ctx context.Context, id, notes string) (updated *domain.UnitStage, err error) {
	startedAt := time.Now()
	fields := map[string]any{"unit_stage_id": id}
	defer func() { observeUseCase(ctx, s.observer, "unit-stage-notes", startedAt, fields, err) }()

	user, err := auth.RequireUser(ctx)
	if err != nil {
		return nil, err
	}
	notes = strings.TrimSpace(notes)

	var changed bool
	updated, changed, err = s.mutate(ctx, id, func(ctx context.Context, repos repository.Repos, us *domain.UnitStage, now time.Time) (bool, error) {
		if us.Notes == notes {
			return false, nil
		}
		before := us.Snapshot()
		us.Notes = notes
		us.UpdatedAt = now
		if err := repos.UnitStages.Update(ctx, us); err != nil {
			return false, err
		}
		return true, appendLog(ctx, repos.Logs, us.ID, user, domain.ActionNotesUpdated, before, us.Snapshot(), now)
	})
	fields["changed"] = changed
	return updated, err
}

type instanceMutation func(ctx context.Context, repos repository.Repos, us *domain.UnitStage, now time.Time) (bool, error)

// mutate loads the instance and applies fn to it inside one transaction,
// reporting whether fn changed anything.
func (s *unitStageService) mutate(ctx context.Context, id string, fn instanceMutation) (*domain.UnitStage, bool, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, false, err
	}
	var (
		out     *domain.UnitStage
		changed bool
	)
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txRepos := repository.NewSQLiteRepos(tx)
		us, err := txRepos.UnitStages.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if changed, err = fn(ctx, txRepos, us, nowUTC()); err != nil {
			return err
		}
		out = us
		return nil
	})
	if err != nil {
		return nil, false, apperr.External("updating unit stage", err)
	}
	return out, changed, nil
}

// AddPhoto stores the upload under <unit_stage_id>/<uuid><ext> and records
// it. If the row cannot be written the stored object is removed again.
func (s *unitStageService) AddPhoto(ctx context.Context, id string, upload PhotoUpload) (photo *domain.Photo, err error) {
	startedAt := time.Now()
	fields := map[string]any{"unit_stage_id": id, FieldEntity: "photo"}
	defer func() { observeUseCase(ctx, s.observer, "photo-add", startedAt, fields, err) }()

	user, err := auth.RequireUser(ctx)
	if err != nil {
		return nil, err
	}
	if upload.Body == nil {
		return nil, apperr.Validation("file", "photo content is required")
	}
	ext := strings.ToLower(filepath.Ext(upload.Filename))
	contentType := strings.TrimSpace(upload.ContentType)
	if contentType == "" {
		contentType = mime.TypeByExtension(ext)
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, apperr.Validation("file", "only images can be attached, got %q", contentType)
	}
	if _, err = s.Get(ctx, id); err != nil {
		return nil, err
	}

	photoID := uuid.New().String()
	key := fmt.Sprintf("%s/%s%s", id, photoID, ext)
	size, err := s.store.Put(ctx, s.bucket, key, upload.Body, contentType)
	if err != nil {
		return nil, apperr.External("uploading photo", err)
	}

	now := nowUTC()
	photo = &domain.Photo{
		ID:          photoID,
		UnitStageID: id,
		Path:        key,
		Caption:     strings.TrimSpace(upload.Caption),
		Kind:        domain.CoalesceStr(strings.TrimSpace(upload.Kind), domain.PhotoKindGeneral),
		ContentType: contentType,
		Size:        size,
		UploadedBy:  user.ID,
		CreatedAt:   now,
	}
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txRepos := repository.NewSQLiteRepos(tx)
		if err := txRepos.Photos.Create(ctx, photo); err != nil {
			return err
		}
		return appendLog(ctx, txRepos.Logs, id, user, domain.ActionPhotoAdded, nil, photoSnapshot(photo), now)
	})
	if err != nil {
		if delErr := s.store.Delete(ctx, s.bucket, key); delErr != nil {
			fields["orphaned_object"] = key
		}
		return nil, apperr.External("recording photo", err)
	}
	fields[FieldRowsWritten] = 1
	fields["size"] = size
	return photo, nil
}

// DeletePhoto removes the photo row, records the deletion, then removes the
// stored object.
func (s *unitStageService) DeletePhoto(ctx context.Context, photoID string) (err error) {
	startedAt := time.Now()
	fields := map[string]any{"photo_id": photoID}
	defer func() { observeUseCase(ctx, s.observer, "photo-delete", startedAt, fields, err) }()

	user, err := auth.RequireUser(ctx)
	if err != nil {
		return err
	}
	photo, err := s.repos.Photos.GetByID(ctx, photoID)
	if err != nil {
		return lookupErr("photo", photoID, err)
	}
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txRepos := repository.NewSQLiteRepos(tx)
		if err := txRepos.Photos.Delete(ctx, photoID); err != nil {
			return err
		}
		return appendLog(ctx, txRepos.Logs, photo.UnitStageID, user, domain.ActionPhotoDeleted, photoSnapshot(photo), nil, nowUTC())
	})
	if err != nil {
		return apperr.External("deleting photo", err)
	}
	return removeObjects(ctx, s.store, s.bucket, []string{photo.Path})
}

func photoSnapshot(p *domain.Photo) map[string]any {
	return map[string]any{
		"photo_id": p.ID,
		"path":     p.Path,
		"caption":  p.Caption,
	}
}

// ListPhotos returns the instance's photos with signed URLs.
func (s *unitStageService) ListPhotos(ctx context.Context, id string) ([]PhotoView, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	photos, err := s.repos.Photos.ListByUnitStage(ctx, id)
	if err != nil {
		return nil, apperr.External("listing photos", err)
	}
	views := make([]PhotoView, 0, len(photos))
	for _, p := range photos {
		url, err := s.store.SignedURL(ctx, s.bucket, p.Path, s.signedTTL)
		if err != nil {
			return nil, apperr.External("signing photo url", err)
		}
		views = append(views, PhotoView{Photo: p, URL: url})
	}
	return views, nil
}

// ListLogs returns the instance's audit trail, newest first.
func (s *unitStageService) ListLogs(ctx context.Context, id string) ([]*domain.StageLog, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	logs, err := s.repos.Logs.ListByUnitStage(ctx, id)
	if err != nil {
		return nil, apperr.External("listing stage logs", err)
	}
	return logs, nil
}
