package media

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/angelmondragon/its27-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/its27-backend/pkg/errors"
	"github.com/angelmondragon/its27-backend/pkg/logger"
	"github.com/angelmondragon/its27-backend/pkg/metrics"
	"github.com/angelmondragon/its27-backend/pkg/storage/gcs"
	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/multierr"
)

var allowedImageTypes = []string{"image/jpeg", "image/png", "image/webp", "image/gif"}

// File is one uploaded file awaiting storage.
type File struct {
	Name string
	Size int64
	Open func() (io.ReadCloser, error)
}

// FileFromBytes wraps in-memory content as a File.
func FileFromBytes(name string, data []byte) File {
	return File{
		Name: name,
		Size: int64(len(data)),
		Open: func() (io.ReadCloser, error) { return io.NopCloser(bytes.NewReader(data)), nil },
	}
}

// FailedFile describes a file skipped during a batch upload.
type FailedFile struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// BatchResult lists the public URLs stored, in input order, and the files that
// were skipped. Err combines every per-file error.
type BatchResult struct {
	URLs   []string     `json:"urls"`
	Failed []FailedFile `json:"failed"`
	Err    error        `json:"-"`
}

// Service stores images in object storage.
type Service struct {
	storage  gcs.Uploader
	maxBytes int64
	maxFiles int
	metrics  *metrics.MediaMetrics
	logg     *logger.Logger
	now      func() time.Time
}

func NewService(storage gcs.Uploader, cfg config.MediaConfig, mediaMetrics *metrics.MediaMetrics, logg *logger.Logger) (*Service, error) {
	if storage == nil {
		return nil, fmt.Errorf("object storage required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	maxFiles := cfg.MaxBatchFiles
	if maxFiles <= 0 {
		maxFiles = 10
	}
	return &Service{
		storage:  storage,
		maxBytes: cfg.MaxUploadBytes(),
		maxFiles: maxFiles,
		metrics:  mediaMetrics,
		logg:     logg,
		now:      time.Now,
	}, nil
}

// MaxBatchFiles is the most files UploadBatch accepts.
func (s *Service) MaxBatchFiles() int { return s.maxFiles }

// UploadBatch stores each file independently under prefix. A failing file is
// skipped and logged; the other files are still stored.
func (s *Service) UploadBatch(ctx context.Context, prefix string, files []File) (BatchResult, error) {
	if len(files) == 0 {
		return BatchResult{}, pkgerrors.New(pkgerrors.CodeValidation, "at least one file is required")
	}
	if len(files) > s.maxFiles {
		return BatchResult{}, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("at most %d files per upload", s.maxFiles))
	}

	res := BatchResult{URLs: []string{}, Failed: []FailedFile{}}
	for _, file := range files {
		url, err := s.Upload(ctx, prefix, file)
		if err != nil {
			res.Failed = append(res.Failed, FailedFile{Name: file.Name, Reason: reason(err)})
			res.Err = multierr.Append(res.Err, fmt.Errorf("%s: %w", file.Name, err))
			s.logg.Warn(s.logg.WithFields(ctx, map[string]any{"file": file.Name, "error": err.Error()}), "media.upload_skipped")
			continue
		}
		res.URLs = append(res.URLs, url)
	}
	return res, nil
}

// Upload validates and stores one file, returning its public URL.
func (s *Service) Upload(ctx context.Context, prefix string, file File) (string, error) {
	if file.Open == nil {
		s.metrics.IncUpload(metrics.UploadResultRejected)
		return "", pkgerrors.New(pkgerrors.CodeValidation, "file is empty")
	}
	if s.maxBytes > 0 && file.Size > s.maxBytes {
		s.metrics.IncUpload(metrics.UploadResultRejected)
		return "", tooLarge(s.maxBytes)
	}

	rc, err := file.Open()
	if err != nil {
		s.metrics.IncUpload(metrics.UploadResultFailed)
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "file could not be read")
	}
	defer rc.Close()

	var reader io.Reader = rc
	if s.maxBytes > 0 {
		reader = io.LimitReader(rc, s.maxBytes+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		s.metrics.IncUpload(metrics.UploadResultFailed)
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "file could not be read")
	}
	if len(data) == 0 {
		s.metrics.IncUpload(metrics.UploadResultRejected)
		return "", pkgerrors.New(pkgerrors.CodeValidation, "file is empty")
	}
	if s.maxBytes > 0 && int64(len(data)) > s.maxBytes {
		s.metrics.IncUpload(metrics.UploadResultRejected)
		return "", tooLarge(s.maxBytes)
	}

	mt := mimetype.Detect(data)
	if !mimetype.EqualsAny(mt.String(), allowedImageTypes...) {
		s.metrics.IncUpload(metrics.UploadResultRejected)
		return "", pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unsupported file type %s; allowed: %s", mt.String(), strings.Join(allowedImageTypes, ", ")))
	}

	object := path.Join(strings.Trim(prefix, "/"), ObjectKey(s.now(), file.Name))
	url, err := s.storage.Upload(ctx, s.storage.DefaultBucket(), object, mt.String(), bytes.NewReader(data))
	if err != nil {
		s.metrics.IncUpload(metrics.UploadResultFailed)
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "file could not be stored")
	}
	s.metrics.IncUpload(metrics.UploadResultStored)
	return url, nil
}

// Remove deletes the object behind a public URL. URLs outside the bucket,
// such as placeholder images, are ignored.
func (s *Service) Remove(ctx context.Context, publicURL string) error {
	object, ok := s.storage.ObjectFromURL(publicURL)
	if !ok {
		return nil
	}
	if err := s.storage.Delete(ctx, s.storage.DefaultBucket(), object); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "file could not be deleted")
	}
	return nil
}

func tooLarge(limit int64) error {
	return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("file exceeds %d MB", limit>>20))
}

func reason(err error) string {
	if typed := pkgerrors.As(err); typed != nil {
		return typed.Message()
	}
	return err.Error()
}
