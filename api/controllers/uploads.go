package controllers

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/angelmondragon/its27-backend/internal/media"
	pkgerrors "github.com/angelmondragon/its27-backend/pkg/errors"
)

const (
	multipartMemory   = 8 << 20
	multipartOverhead = 1 << 20
)

// readUploads parses a multipart body and returns the files sent under
// field. The caller must invoke the returned cleanup once the files have
// been consumed.
func readUploads(w http.ResponseWriter, r *http.Request, field string, maxFiles int, maxBytes int64) ([]media.File, func(), error) {
	noop := func() {}
	if maxFiles < 1 {
		maxFiles = 1
	}
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxFiles)*maxBytes+multipartOverhead)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, noop, pkgerrors.New(pkgerrors.CodeValidation, "upload too large")
		}
		return nil, noop, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart body")
	}
	cleanup := func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}

	headers := r.MultipartForm.File[field]
	if len(headers) == 0 {
		cleanup()
		return nil, noop, pkgerrors.Validation("no files uploaded", pkgerrors.FieldErrors{field: "is required"})
	}

	files := make([]media.File, 0, len(headers))
	for _, fh := range headers {
		files = append(files, fileFromHeader(fh))
	}
	return files, cleanup, nil
}

func fileFromHeader(fh *multipart.FileHeader) media.File {
	return media.File{
		Name: fh.Filename,
		Size: fh.Size,
		Open: func() (io.ReadCloser, error) { return fh.Open() },
	}
}
