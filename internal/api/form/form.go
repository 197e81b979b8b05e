// Package form holds the pieces shared by every entity form handler:
// extracting the optional image file from a multipart submission and
// rendering upsert outcomes as HTTP responses.
package form

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/ginext"
	"github.com/wb-go/wbf/zlog"

	"github.com/craftspace/catalog/internal/api/respond"
	"github.com/craftspace/catalog/internal/model"
	"github.com/craftspace/catalog/internal/repository/record"
	"github.com/craftspace/catalog/internal/service/upsert"
)

// preparer normalizes an upload before storage.
type preparer interface {
	Prepare(up *model.PendingUpload) (*model.PendingUpload, error)
}

// Image extracts the optional "image" file from the multipart form,
// validates it against the size cap and MIME allowlist, and runs it
// through the preparer. A form without a file yields (nil, true).
// On failure a 400 response has already been written.
func Image(c *ginext.Context, entity model.EntityType, prep preparer) (*model.PendingUpload, bool) {
	file, header, err := c.Request.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, true
		}

		respond.Fail(c, http.StatusBadRequest, fmt.Errorf("failed to read image file: %v", err))
		return nil, false
	}
	defer file.Close()

	// Browsers submit an empty part when no file was picked.
	if header.Filename == "" && header.Size == 0 {
		return nil, true
	}

	if header.Size > model.MaxUploadBytes {
		respond.Fail(c, http.StatusBadRequest, model.ErrUploadTooLarge)
		return nil, false
	}

	data, err := io.ReadAll(file)
	if err != nil {
		respond.Fail(c, http.StatusBadRequest, fmt.Errorf("failed to read image file: %v", err))
		return nil, false
	}

	up, err := model.NewPendingUpload(data, header.Header.Get("Content-Type"), header.Filename, entity)
	if err != nil {
		respond.Fail(c, http.StatusBadRequest, err)
		return nil, false
	}

	prepared, err := prep.Prepare(up)
	if err != nil {
		zlog.Logger.Err(err).Str("filename", header.Filename).Msg("failed to prepare upload")
		respond.Fail(c, http.StatusBadRequest, fmt.Errorf("image could not be processed"))
		return nil, false
	}

	return prepared, true
}

// ID parses the record ID path parameter. On failure a 400 response has
// already been written.
func ID(c *ginext.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respond.Fail(c, http.StatusBadRequest, fmt.Errorf("invalid id: %v", err))
		return uuid.Nil, false
	}
	return id, true
}

// WriteOutcome renders an upsert outcome. Failures keep the entity
// display name in front of the root-cause message so the form can show
// it inline without navigating away.
func WriteOutcome(c *ginext.Context, created bool, out upsert.Outcome) {
	if out.Committed() {
		if created {
			respond.Created(c, out.Record)
		} else {
			respond.OK(c, out.Record)
		}
		return
	}

	respond.Fail(c, statusFor(out.Err), fmt.Errorf("%s: %v", out.Entity, out.Err))
}

// WriteError renders a record layer error from a read or delete path.
func WriteError(c *ginext.Context, err error) {
	respond.Fail(c, statusFor(err), err)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, record.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, record.ErrNotFound):
		return http.StatusNotFound
	default:
		// StorageUnavailable and ServiceUnavailable both read as
		// "try again" to the user.
		return http.StatusServiceUnavailable
	}
}
