package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/dmitrijs2005/scribblenest/internal/common"
	"github.com/dmitrijs2005/scribblenest/internal/logging"
	"github.com/dmitrijs2005/scribblenest/internal/server/config"
	"github.com/dmitrijs2005/scribblenest/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/scribblenest/internal/server/storage"
)

// sniffLen is how many leading bytes content detection looks at.
const sniffLen = 512

var imageExtensions = map[string]string{
	"image/png":                ".png",
	"image/jpeg":               ".jpg",
	"image/gif":                ".gif",
	"image/webp":               ".webp",
	"image/bmp":                ".bmp",
	"image/x-icon":             ".ico",
	"image/vnd.microsoft.icon": ".ico",
}

// Upload is one file taken from a multipart form.
type Upload struct {
	Filename string
	Size     int64
	Body     io.Reader
}

// UploadService stores profile pictures.
type UploadService struct {
	repomanager  repomanager.RepositoryManager
	images       storage.ImageStore
	logger       logging.Logger
	maxSize      int64
	storeTimeout time.Duration
	now          func() time.Time
}

func NewUploadService(m repomanager.RepositoryManager, images storage.ImageStore, cfg *config.Config, logger logging.Logger) *UploadService {
	return &UploadService{
		repomanager:  m,
		images:       images,
		logger:       logger.With("module", "uploads"),
		maxSize:      cfg.MaxUploadSize,
		storeTimeout: cfg.StoreTimeout,
		now:          time.Now,
	}
}

// ImageFileName builds "<unix-millis>-<random hex><ext>".
func ImageFileName(now time.Time, ext string) (string, error) {
	suffix, err := common.MakeRandHexString(8)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d-%s%s", now.UnixMilli(), suffix, ext), nil
}

// extension keeps the client's extension when it is a plain one and falls
// back to the detected type otherwise.
func extension(filename, contentType string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if len(ext) > 1 && len(ext) <= 6 && !strings.ContainsAny(ext[1:], `./\`) {
		return ext
	}
	return imageExtensions[contentType]
}

// UploadProfileImage stores the image under a generated name and records
// it on the user. The previous picture, if any, is removed afterwards.
func (s *UploadService) UploadProfileImage(ctx context.Context, userID string, up *Upload) (string, error) {
	if up == nil || up.Body == nil || up.Size == 0 {
		return "", common.ErrNoFileProvided
	}
	if s.maxSize > 0 && up.Size > s.maxSize {
		return "", common.ErrFileTooLarge
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(up.Body, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("error reading upload: %w", err)
	}
	head = head[:n]
	if n == 0 {
		return "", common.ErrNoFileProvided
	}

	contentType := http.DetectContentType(head)
	if !strings.HasPrefix(contentType, "image/") {
		return "", fmt.Errorf("%w: %s", common.ErrUnsupportedMedia, contentType)
	}

	ctx, cancel := withStoreTimeout(ctx, s.storeTimeout)
	defer cancel()

	user, err := s.repomanager.Users().GetByID(ctx, userID)
	if err != nil {
		return "", err
	}

	name, err := ImageFileName(s.now(), extension(up.Filename, contentType))
	if err != nil {
		return "", err
	}

	body, err := s.seekableBody(up.Body, head)
	if err != nil {
		return "", fmt.Errorf("error reading upload: %w", err)
	}
	if err := s.images.Save(ctx, name, body, up.Size, contentType); err != nil {
		return "", fmt.Errorf("error saving image: %w", err)
	}

	if err := s.repomanager.Users().SetProfilePicture(ctx, user.ID, name); err != nil {
		if derr := s.images.Delete(ctx, name); derr != nil {
			s.logger.Warn(ctx, "orphaned image", "name", name, "error", derr)
		}
		return "", err
	}

	if old := user.ProfilePicture; old != "" && old != name {
		if err := s.images.Delete(ctx, old); err != nil {
			s.logger.Warn(ctx, "old profile picture not removed", "name", old, "error", err)
		}
	}

	s.logger.Info(ctx, "profile picture updated", "user_id", user.ID, "name", name)
	return name, nil
}

// seekableBody returns the whole upload, sniffed bytes included, positioned
// at the start. Object stores seek the body to checksum it, so bodies that
// cannot rewind are buffered, bounded by the upload size limit.
func (s *UploadService) seekableBody(r io.Reader, head []byte) (io.ReadSeeker, error) {
	if rs, ok := r.(io.ReadSeeker); ok {
		if _, err := rs.Seek(0, io.SeekStart); err == nil {
			return rs, nil
		}
	}

	if s.maxSize > 0 {
		r = io.LimitReader(r, s.maxSize-int64(len(head))+1)
	}
	rest, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, 0, len(head)+len(rest))
	buf = append(append(buf, head...), rest...)
	if s.maxSize > 0 && int64(len(buf)) > s.maxSize {
		return nil, common.ErrFileTooLarge
	}
	return bytes.NewReader(buf), nil
}
