package controllers

import (
	"context"
	"io"
	"net/http"

	"github.com/tablemate-app/tablemate-backend/api/responses"
	pkgerrors "github.com/tablemate-app/tablemate-backend/pkg/errors"
	"github.com/tablemate-app/tablemate-backend/pkg/logger"
	"github.com/tablemate-app/tablemate-backend/pkg/storage/cloudinary"
)

const maxUploadBytes = 10 << 20 // 10 MiB

type blobUploader interface {
	Upload(ctx context.Context, filename string, content io.Reader) (*cloudinary.UploadResult, error)
}

// MediaUpload accepts a multipart image and stores it in the blob store. The
// returned URL goes into owner, customer, or restaurant image_url fields.
func MediaUpload(blobs blobUploader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if blobs == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "blob store unavailable"))
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart body"))
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "file field is required"))
			return
		}
		defer file.Close()

		result, err := blobs.Upload(r.Context(), header.Filename, file)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}
