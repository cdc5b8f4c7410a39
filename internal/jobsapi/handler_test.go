package jobsapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaye773/summarizer-core/internal/queue"
	"github.com/jaye773/summarizer-core/internal/statestore"
)

func newHandler(t *testing.T) *Handler {
	t.Helper()
	q := queue.New(queue.Config{})
	store := statestore.New(statestore.Config{})
	require.NoError(t, store.Start(t.Context()))
	t.Cleanup(func() { _ = store.Stop(t.Context()) })
	return New(q, store, nil)
}

func TestHandler_Submit_Accepted(t *testing.T) {
	h := newHandler(t)
	e := echo.New()

	body := `{"kind":"video","priority":1,"client_id":"c1","payload":{"url":"https://example.com/v1"}}`
	req := httptest.NewRequest(http.MethodPost, "/jobs", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.submit(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusAccepted, rec.Code)

	var resp submitResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.JobID)

	// the submitted job is immediately visible in the state store
	stored := h.store.Get(resp.JobID)
	require.NotNil(t, stored)
	assert.Equal(t, "c1", stored.ClientID)
}

func TestHandler_Submit_InvalidPayload(t *testing.T) {
	h := newHandler(t)
	e := echo.New()

	body := `{"kind":"video","client_id":""}`
	req := httptest.NewRequest(http.MethodPost, "/jobs", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.submit(c)
	require.Error(t, err)
	var rejected *queue.RejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, queue.ReasonInvalid, rejected.Reason)
}

func TestHandler_Get_NotFound(t *testing.T) {
	h := newHandler(t)
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/jobs/does-not-exist", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("does-not-exist")

	err := h.get(c)
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusNotFound, httpErr.Code)
}

func TestHandler_Get_Found(t *testing.T) {
	h := newHandler(t)
	e := echo.New()

	body := `{"kind":"video","priority":2,"client_id":"c1","payload":{"url":"https://example.com/v1"}}`
	submitReq := httptest.NewRequest(http.MethodPost, "/jobs", strings.NewReader(body))
	submitReq.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	submitRec := httptest.NewRecorder()
	submitCtx := e.NewContext(submitReq, submitRec)
	require.NoError(t, h.submit(submitCtx))

	var submitted submitResponse
	require.NoError(t, json.Unmarshal(submitRec.Body.Bytes(), &submitted))

	req := httptest.NewRequest(http.MethodGet, "/jobs/"+submitted.JobID, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(submitted.JobID)

	require.NoError(t, h.get(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var view jobView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, submitted.JobID, view.ID)
	assert.Equal(t, "pending", string(view.Status))
}

func TestHandler_RegisterRoutes(t *testing.T) {
	h := newHandler(t)
	e := echo.New()

	h.RegisterRoutes(e)

	routes := e.Routes()
	paths := make([]string, len(routes))
	for i, r := range routes {
		paths[i] = r.Path
	}
	assert.Contains(t, paths, "/jobs")
	assert.Contains(t, paths, "/jobs/:id")
}
