package event_test

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/wb-go/wbf/ginext"
	"github.com/wb-go/wbf/zlog"

	"github.com/craftspace/catalog/internal/api/handlers/event"
	"github.com/craftspace/catalog/internal/model"
	"github.com/craftspace/catalog/internal/repository/record"
	"github.com/craftspace/catalog/internal/service/upsert"
)

func TestMain(m *testing.M) {
	zlog.Init()
	m.Run()
}

type mockUpserter struct {
	mock.Mock
}

func (m *mockUpserter) Upsert(ctx context.Context, req upsert.Request) upsert.Outcome {
	args := m.Called(ctx, req)
	return args.Get(0).(upsert.Outcome)
}

type mockRecordStore struct {
	mock.Mock
}

func (m *mockRecordStore) Get(ctx context.Context, entity model.EntityType, id uuid.UUID) (model.Record, error) {
	args := m.Called(ctx, entity, id)
	return args.Get(0).(model.Record), args.Error(1)
}

func (m *mockRecordStore) List(ctx context.Context, entity model.EntityType) ([]model.Record, error) {
	args := m.Called(ctx, entity)
	return args.Get(0).([]model.Record), args.Error(1)
}

func (m *mockRecordStore) Delete(ctx context.Context, entity model.EntityType, id uuid.UUID) error {
	args := m.Called(ctx, entity, id)
	return args.Error(0)
}

type nopPreparer struct{}

func (nopPreparer) Prepare(up *model.PendingUpload) (*model.PendingUpload, error) {
	return up, nil
}

type mockAuditor struct {
	mock.Mock
}

func (m *mockAuditor) RecordDeleted(ctx context.Context, rec model.Record) {
	m.Called(ctx, rec)
}

func newRouter(u *mockUpserter, r *mockRecordStore, a *mockAuditor) *ginext.Engine {
	h := event.NewHandler(u, r, nopPreparer{}, a)

	engine := ginext.New()
	engine.POST("/events", h.Create)
	engine.PUT("/events/:id", h.Update)
	engine.DELETE("/events/:id", h.Delete)
	return engine
}

type filePart struct {
	name        string
	contentType string
	data        []byte
}

func multipartBody(t *testing.T, fields map[string]string, file *filePart) (*bytes.Buffer, string) {
	t.Helper()

	body := new(bytes.Buffer)
	w := multipart.NewWriter(body)

	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}

	if file != nil {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", `form-data; name="image"; filename="`+file.name+`"`)
		header.Set("Content-Type", file.contentType)

		part, err := w.CreatePart(header)
		require.NoError(t, err)
		_, err = part.Write(file.data)
		require.NoError(t, err)
	}

	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}

func futureDate() string {
	return time.Now().Add(72 * time.Hour).Format(time.RFC3339)
}

func TestCreate_MissingTitleFailsBeforeOrchestration(t *testing.T) {
	u := &mockUpserter{}
	r := newRouter(u, &mockRecordStore{}, &mockAuditor{})

	body, contentType := multipartBody(t, map[string]string{"date": futureDate()}, nil)
	req := httptest.NewRequest(http.MethodPost, "/events", body)
	req.Header.Set("Content-Type", contentType)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "title is required")
	u.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestCreate_WithImage(t *testing.T) {
	u := &mockUpserter{}
	r := newRouter(u, &mockRecordStore{}, &mockAuditor{})

	stored := model.Record{ID: uuid.New(), Entity: model.EntityEvent, Image: "/images/events/abc.jpg"}
	u.On("Upsert", mock.Anything, mock.MatchedBy(func(req upsert.Request) bool {
		return req.Entity == model.EntityEvent &&
			req.RecordID == uuid.Nil &&
			req.Upload != nil &&
			req.Upload.ContentType == "image/jpeg" &&
			req.Fields["title"] == "Raku firing night"
	})).Return(upsert.Outcome{Record: stored, Entity: "Event"})

	body, contentType := multipartBody(t,
		map[string]string{"title": "Raku firing night", "date": futureDate()},
		&filePart{name: "poster.jpg", contentType: "image/jpeg", data: []byte("jpeg bytes")},
	)
	req := httptest.NewRequest(http.MethodPost, "/events", body)
	req.Header.Set("Content-Type", contentType)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	u.AssertExpectations(t)
}

func TestCreate_UnsupportedFileType(t *testing.T) {
	u := &mockUpserter{}
	r := newRouter(u, &mockRecordStore{}, &mockAuditor{})

	body, contentType := multipartBody(t,
		map[string]string{"title": "Raku firing night", "date": futureDate()},
		&filePart{name: "poster.pdf", contentType: "application/pdf", data: []byte("%PDF")},
	)
	req := httptest.NewRequest(http.MethodPost, "/events", body)
	req.Header.Set("Content-Type", contentType)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	u.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestUpdate_PassesCurrentImageToOrchestrator(t *testing.T) {
	u := &mockUpserter{}
	records := &mockRecordStore{}
	r := newRouter(u, records, &mockAuditor{})

	id := uuid.New()
	existing := model.Record{ID: id, Entity: model.EntityEvent, Image: "/images/events/old.jpg"}
	records.On("Get", mock.Anything, model.EntityEvent, id).Return(existing, nil)

	updated := existing
	u.On("Upsert", mock.Anything, mock.MatchedBy(func(req upsert.Request) bool {
		return req.RecordID == id && req.CurrentImage == "/images/events/old.jpg" && req.Upload == nil
	})).Return(upsert.Outcome{Record: updated, Entity: "Event"})

	body, contentType := multipartBody(t, map[string]string{"title": "Raku firing night", "date": futureDate()}, nil)
	req := httptest.NewRequest(http.MethodPut, "/events/"+id.String(), body)
	req.Header.Set("Content-Type", contentType)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	u.AssertExpectations(t)
}

func TestUpdate_TargetVanished(t *testing.T) {
	u := &mockUpserter{}
	records := &mockRecordStore{}
	r := newRouter(u, records, &mockAuditor{})

	id := uuid.New()
	records.On("Get", mock.Anything, model.EntityEvent, id).Return(model.Record{}, record.ErrNotFound)

	body, contentType := multipartBody(t, map[string]string{"title": "Raku firing night", "date": futureDate()}, nil)
	req := httptest.NewRequest(http.MethodPut, "/events/"+id.String(), body)
	req.Header.Set("Content-Type", contentType)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	u.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestDelete_RecordOnlyImageRetained(t *testing.T) {
	u := &mockUpserter{}
	records := &mockRecordStore{}
	audit := &mockAuditor{}
	r := newRouter(u, records, audit)

	id := uuid.New()
	existing := model.Record{ID: id, Entity: model.EntityEvent, Image: "/images/events/keep.jpg"}
	records.On("Get", mock.Anything, model.EntityEvent, id).Return(existing, nil)
	records.On("Delete", mock.Anything, model.EntityEvent, id).Return(nil)
	audit.On("RecordDeleted", mock.Anything, existing).Return()

	req := httptest.NewRequest(http.MethodDelete, "/events/"+id.String(), nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	audit.AssertExpectations(t)
}
