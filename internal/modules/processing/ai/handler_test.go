package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/notevault/core/internal/middleware"
	"github.com/stretchr/testify/require"
)

// fakeNotes serves note text from a map.
type fakeNotes map[string]string

func (f fakeNotes) GetText(ctx context.Context, noteID, userID string) (string, error) {
	text, ok := f[noteID]
	if !ok {
		return "", ErrNoteNotFound
	}
	return text, nil
}

func newTestRouter(svc *Service, notes NoteSource) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	api := r.Group("/api/v2")
	authMW := func(c *gin.Context) {
		c.Set(middleware.ContextKeyUserID, "u1")
		c.Next()
	}
	NewHandler(svc, nil, nil, notes, 2).RegisterRoutes(api, authMW)
	return r
}

func postJSON(t *testing.T, r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, path, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestBatchEndpointReportsResolveErrors(t *testing.T) {
	svc := newTestService(&fakeUpstream{}, 20)
	r := newTestRouter(svc, fakeNotes{"n1": "note one text"})

	w := postJSON(t, r, "/api/v2/ai/summaries/batch", `{
		"requests": [
			{"content": "a perfectly fine note"},
			{"content": "whatever", "style": "haiku"},
			{"noteId": "missing"},
			{"noteId": "n1"}
		]
	}`)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data []batchItemResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Data, 4)

	require.NotNil(t, body.Data[0].Result)
	require.Empty(t, body.Data[0].Error)

	require.Nil(t, body.Data[1].Result)
	require.Equal(t, "unknown summary style", body.Data[1].Error)
	require.Equal(t, string(KindValidation), body.Data[1].ErrKind)

	require.Nil(t, body.Data[2].Result)
	require.Equal(t, "note not found", body.Data[2].Error)
	require.Equal(t, string(KindValidation), body.Data[2].ErrKind)

	require.NotNil(t, body.Data[3].Result)
	require.Equal(t, "n1", body.Data[3].NoteID)
}

func TestGenerateEndpointQuotaMapping(t *testing.T) {
	svc := newTestService(&fakeUpstream{}, 1)
	r := newTestRouter(svc, fakeNotes{})

	w := postJSON(t, r, "/api/v2/ai/summaries/generate", `{"content": "first note"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = postJSON(t, r, "/api/v2/ai/summaries/generate", `{"content": "second note"}`)
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	require.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestGenerateEndpointUpstreamMapping(t *testing.T) {
	cases := []struct {
		kind   ErrKind
		status int
	}{
		{KindUpstreamTransient, http.StatusServiceUnavailable},
		{KindUpstreamPermanent, http.StatusBadGateway},
	}
	for _, tc := range cases {
		svc := newTestService(&fakeUpstream{failKind: tc.kind}, 20)
		r := newTestRouter(svc, fakeNotes{})

		w := postJSON(t, r, "/api/v2/ai/summaries/generate", `{"content": "a note"}`)
		require.Equal(t, tc.status, w.Code, "kind %s", tc.kind)
	}
}
