package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internal_errors "github.com/ginclub-dev/ginclub/shared/errors"
)

func newWidgetsHandler(widgets *MockWidgets) *Handler {
	cfg := testConfig()
	return New(&MockGate{}, &MockAllowlist{}, widgets, &MockPinger{}, cfg, nil)
}

func widgetRequest(t *testing.T, method, name string, body []byte) *http.Request {
	t.Helper()
	req := createRequest(t, method, "/v1/widgets/"+name, body)
	return mux.SetURLVars(req, map[string]string{"widget": name})
}

func TestGetWidget(t *testing.T) {
	widgets := &MockWidgets{
		GetFunc: func(name string) (json.RawMessage, error) {
			assert.Equal(t, "kanban", name)
			return json.RawMessage(`{"cards":[]}`), nil
		},
	}
	h := newWidgetsHandler(widgets)
	rr := httptest.NewRecorder()

	h.GetWidget(rr, widgetRequest(t, "GET", "kanban", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"cards":[]}`, rr.Body.String())
}

func TestGetWidget_NotFound(t *testing.T) {
	widgets := &MockWidgets{
		GetFunc: func(name string) (json.RawMessage, error) {
			return nil, internal_errors.NotFound("Widget not saved yet")
		},
	}
	h := newWidgetsHandler(widgets)
	rr := httptest.NewRecorder()

	h.GetWidget(rr, widgetRequest(t, "GET", "polls", nil))

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestPutWidget(t *testing.T) {
	var saved json.RawMessage
	widgets := &MockWidgets{
		PutFunc: func(name string, doc json.RawMessage) error {
			assert.Equal(t, "checklist", name)
			saved = doc
			return nil
		},
	}
	h := newWidgetsHandler(widgets)
	rr := httptest.NewRecorder()

	h.PutWidget(rr, widgetRequest(t, "PUT", "checklist", []byte(`{"items":["buy snacks"]}`)))

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.JSONEq(t, `{"items":["buy snacks"]}`, string(saved))
}

func TestPutWidget_ServiceError(t *testing.T) {
	widgets := &MockWidgets{
		PutFunc: func(name string, doc json.RawMessage) error {
			return &internal_errors.ErrorWithStatusCode{Message: "Widget document is not valid json", StatusCode: http.StatusBadRequest}
		},
	}
	h := newWidgetsHandler(widgets)
	rr := httptest.NewRecorder()

	h.PutWidget(rr, widgetRequest(t, "PUT", "checklist", []byte(`{broken`)))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestPreviewNotes(t *testing.T) {
	widgets := &MockWidgets{
		RenderNotesFunc: func(markdown string) (string, error) {
			assert.Equal(t, "**bold**", markdown)
			return "<p><strong>bold</strong></p>", nil
		},
	}
	h := newWidgetsHandler(widgets)
	rr := httptest.NewRecorder()

	h.PreviewNotes(rr, createRequest(t, "POST", "/v1/widgets/notes/preview", []byte(`{"markdown": "**bold**"}`)))

	require.Equal(t, http.StatusOK, rr.Code)
	var resp previewNotesResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "<p><strong>bold</strong></p>", resp.HTML)
}

func TestPreviewNotes_RequiresMarkdown(t *testing.T) {
	h := newWidgetsHandler(&MockWidgets{})
	rr := httptest.NewRecorder()

	h.PreviewNotes(rr, createRequest(t, "POST", "/v1/widgets/notes/preview", []byte(`{}`)))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
