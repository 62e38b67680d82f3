package service

import (
	"context"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"anoa.com/pocmarket/internal/entity"
	"anoa.com/pocmarket/internal/modules/attachment/repository"
	"anoa.com/pocmarket/pkg/apperror"
	"anoa.com/pocmarket/pkg/storage"
	"github.com/google/uuid"
)

// Uploads not attached to a message within this window get reaped.
const orphanTTL = 12 * time.Hour

const maxUploadSize = 10 << 20 // 10 MiB

var allowedExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".webp": true, ".gif": true,
	".pdf": true, ".zip": true, ".txt": true, ".md": true,
}

type AttachmentService interface {
	Upload(ctx context.Context, uploaderID uuid.UUID, header *multipart.FileHeader) (*entity.Attachment, error)
	CleanupOrphans(ctx context.Context) (int, error)
}

type attachmentService struct {
	repo    repository.AttachmentRepository
	storage storage.FileStorage
	folder  string
}

// NewAttachmentService stores uploads under baseFolder/attachments in blob
// storage. An empty baseFolder keeps them at the storage root.
func NewAttachmentService(repo repository.AttachmentRepository, fileStorage storage.FileStorage, baseFolder string) AttachmentService {
	folder := "attachments"
	if baseFolder != "" {
		folder = baseFolder + "/attachments"
	}
	return &attachmentService{repo: repo, storage: fileStorage, folder: folder}
}

func (s *attachmentService) Upload(ctx context.Context, uploaderID uuid.UUID, header *multipart.FileHeader) (*entity.Attachment, error) {
	if header.Size > maxUploadSize {
		return nil, fmt.Errorf("%w: file exceeds 10MB", apperror.ErrBadRequest)
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedExtensions[ext] {
		return nil, fmt.Errorf("%w: file type %s is not allowed", apperror.ErrBadRequest, ext)
	}

	if s.storage == nil {
		return nil, fmt.Errorf("%w: file storage is not configured", apperror.ErrInternal)
	}

	file, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()

	url, err := s.storage.UploadFile(ctx, io.Reader(file), s.folder, header.Filename)
	if err != nil {
		return nil, err
	}

	attachment := &entity.Attachment{
		UploaderID: uploaderID,
		FileURL:    url,
		FileType:   strings.TrimPrefix(ext, "."),
	}
	if err := s.repo.Create(ctx, attachment); err != nil {
		// Best effort rollback of the blob, the row is gone either way.
		_ = s.storage.DeleteFile(ctx, url)
		return nil, err
	}

	return attachment, nil
}

// CleanupOrphans deletes uploads that were never attached to a message. Meant
// to run periodically from the server.
func (s *attachmentService) CleanupOrphans(ctx context.Context) (int, error) {
	orphans, err := s.repo.FindOrphansBefore(ctx, time.Now().Add(-orphanTTL))
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, orphan := range orphans {
		if s.storage != nil {
			if err := s.storage.DeleteFile(ctx, orphan.FileURL); err != nil {
				log.Printf("Failed to delete orphan file %s: %v", orphan.FileURL, err)
				continue
			}
		}
		if err := s.repo.Delete(ctx, orphan.ID); err != nil {
			log.Printf("Failed to delete orphan attachment %d: %v", orphan.ID, err)
			continue
		}
		removed++
	}

	return removed, nil
}
