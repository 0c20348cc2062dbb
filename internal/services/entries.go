package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/arzan03/PalavraDoDia/internal/models"
	"github.com/arzan03/PalavraDoDia/internal/storage"
	"github.com/arzan03/PalavraDoDia/internal/utils"
	"github.com/dustin/go-humanize"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type EntryRepository interface {
	Create(ctx context.Context, entry *models.Entry) error
	FindByID(ctx context.Context, id string) (*models.Entry, error)
	List(ctx context.Context, f models.EntryFilter, p models.Pagination) ([]models.Entry, int64, error)
	Update(ctx context.Context, id string, patch models.EntryPatch) (*models.Entry, error)
	Delete(ctx context.Context, id string) (*models.Entry, error)
}

// ImageStore persists uploaded images and returns their public URLs.
type ImageStore interface {
	Put(ctx context.Context, objectName string, r io.Reader, size int64, contentType string) (string, error)
	Remove(ctx context.Context, url string) error
}

// ImageUpload is an image received from a client.
type ImageUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// ListResult is one page of entries plus the full match count.
type ListResult struct {
	Items      []models.Entry
	Total      int64
	Page       int
	Limit      int
	TotalPages int64
}

type EntryService struct {
	entries      EntryRepository
	images       ImageStore
	maxImageSize int64
	log          *slog.Logger
	now          func() time.Time
}

func NewEntryService(entries EntryRepository, images ImageStore, maxImageSize int64, log *slog.Logger) *EntryService {
	return &EntryService{
		entries:      entries,
		images:       images,
		maxImageSize: maxImageSize,
		log:          log,
		now:          time.Now,
	}
}

// timestamp is truncated to what BSON dates can hold.
func (s *EntryService) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

func (s *EntryService) Create(ctx context.Context, in models.EntryInput, actingID primitive.ObjectID) (*models.Entry, error) {
	entry := models.NewEntry(in, actingID, s.timestamp())
	if err := entry.Validate(); err != nil {
		return nil, err
	}
	if err := s.entries.Create(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *EntryService) List(ctx context.Context, f models.EntryFilter, p models.Pagination) (*ListResult, error) {
	p = p.Normalize()
	items, total, err := s.entries.List(ctx, f, p)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.Entry{}
	}
	return &ListResult{
		Items:      items,
		Total:      total,
		Page:       p.Page,
		Limit:      p.Limit,
		TotalPages: p.TotalPages(total),
	}, nil
}

func (s *EntryService) Get(ctx context.Context, id string) (*models.Entry, error) {
	return s.entries.FindByID(ctx, id)
}

// Update replaces the fields present in patch and stamps the audit fields.
func (s *EntryService) Update(ctx context.Context, id string, patch models.EntryPatch, actingID primitive.ObjectID) (*models.Entry, error) {
	patch.Normalize()
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	patch.UpdatedBy = actingID
	patch.UpdatedAt = s.timestamp()
	return s.entries.Update(ctx, id, patch)
}

// Delete removes the entry, then its stored images. Image cleanup failures
// are logged and do not fail the delete.
func (s *EntryService) Delete(ctx context.Context, id string) error {
	entry, err := s.entries.Delete(ctx, id)
	if err != nil {
		return err
	}
	s.removeImages(ctx, entry.Images.Word, entry.Images.Reflection)
	return nil
}

func (s *EntryService) removeImages(ctx context.Context, urls ...string) {
	if s.images == nil {
		return
	}
	var tasks []utils.Task
	for _, url := range urls {
		if url == "" {
			continue
		}
		url := url
		tasks = append(tasks, func(ctx context.Context) error {
			return s.images.Remove(ctx, url)
		})
	}
	for _, err := range utils.RunParallel(ctx, tasks) {
		if err != nil {
			s.log.WarnContext(ctx, "image cleanup failed", slog.Any("error", err))
		}
	}
}

// SetImage stores an uploaded image for the given slot of the entry and
// replaces the previous one.
func (s *EntryService) SetImage(ctx context.Context, id, kind string, upload ImageUpload, actingID primitive.ObjectID) (*models.Entry, error) {
	if err := s.validateUpload(kind, upload); err != nil {
		return nil, err
	}
	if s.images == nil {
		return nil, errors.New("image storage is not configured")
	}

	existing, err := s.entries.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	name := storage.ImageObjectName(existing.ID.Hex(), kind, upload.Filename)
	url, err := s.images.Put(ctx, name, upload.Body, upload.Size, upload.ContentType)
	if err != nil {
		return nil, fmt.Errorf("store image: %w", err)
	}

	updated, err := s.entries.Update(ctx, id, models.EntryPatch{
		Image:     &models.ImageSlot{Kind: kind, URL: url},
		UpdatedBy: actingID,
		UpdatedAt: s.timestamp(),
	})
	if err != nil {
		s.removeImages(ctx, url)
		return nil, err
	}

	if old := existing.Images.Get(kind); old != "" && old != url {
		s.removeImages(ctx, old)
	}
	return updated, nil
}

func (s *EntryService) validateUpload(kind string, upload ImageUpload) error {
	var errs []models.FieldError
	if !models.ValidImageKind(kind) {
		errs = append(errs, models.FieldError{Field: "kind", Message: "deve ser word ou reflection"})
	}
	if !strings.HasPrefix(upload.ContentType, "image/") {
		errs = append(errs, models.FieldError{Field: "image", Message: "o arquivo deve ser uma imagem"})
	}
	if upload.Size <= 0 {
		errs = append(errs, models.FieldError{Field: "image", Message: "arquivo vazio"})
	} else if s.maxImageSize > 0 && upload.Size > s.maxImageSize {
		errs = append(errs, models.FieldError{
			Field:   "image",
			Message: "a imagem excede o limite de " + humanize.Bytes(uint64(s.maxImageSize)),
		})
	}
	return models.NewValidationError("Imagem inválida", errs)
}
