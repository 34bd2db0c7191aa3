package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	nethttp "net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	apihttp "github.com/artem13815/shortlist/api/http"
	"github.com/artem13815/shortlist/api/http/handlers"
	"github.com/artem13815/shortlist/api/http/presenter"
	"github.com/artem13815/shortlist/pkg/health"
	"github.com/artem13815/shortlist/pkg/job"
	"github.com/artem13815/shortlist/pkg/repository/memory"
	"github.com/artem13815/shortlist/pkg/security/jwt"
)

const (
	secret = "test-secret"
	issuer = "shortlist"
)

type recordingDispatcher struct {
	mu    sync.Mutex
	tasks []job.Task
}

func (d *recordingDispatcher) Dispatch(_ context.Context, t job.Task) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.tasks = append(d.tasks, t)
	return nil
}

type env struct {
	app        *fiber.App
	store      *memory.Store
	dispatcher *recordingDispatcher
	user       uuid.UUID
	token      string
	uploadDir  string
}

func newEnv(t *testing.T) *env {
	t.Helper()
	e := &env{
		store:      memory.New(3),
		dispatcher: &recordingDispatcher{},
		user:       uuid.New(),
		uploadDir:  t.TempDir(),
	}
	_, err := e.store.Accounts().Ensure(context.Background(), e.user)
	require.NoError(t, err)
	e.token, err = jwt.NewGenerator(secret, issuer, time.Hour).Generate(e.user)
	require.NoError(t, err)

	log := zaptest.NewLogger(t)
	uc := job.NewService(e.store, e.store.Accounts(), e.dispatcher, log)
	e.app = fiber.New()
	apihttp.Register(e.app,
		handlers.NewHealthHandler(health.NewService()),
		handlers.NewJobsHandler(uc, handlers.UploadLimits{Dir: e.uploadDir, MaxFileBytes: 1 << 10, MaxFiles: 5}, log),
		jwt.NewAuthMiddleware(secret, issuer),
	)
	return e
}

func (e *env) do(t *testing.T, req *nethttp.Request) (*nethttp.Response, []byte) {
	t.Helper()
	req.Header.Set("Authorization", "Bearer "+e.token)
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func multipartRequest(t *testing.T, fields map[string]string, files map[string][]byte) *nethttp.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for name, data := range files {
		fw, err := w.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = fw.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	req := httptest.NewRequest(nethttp.MethodPost, "/api/v1/jobs", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func uploadedFiles(t *testing.T, dir string) []os.DirEntry {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	return entries
}

func TestHealthIsPublic(t *testing.T) {
	e := newEnv(t)
	resp, err := e.app.Test(httptest.NewRequest(nethttp.MethodGet, "/api/v1/health", nil))
	require.NoError(t, err)
	assert.Equal(t, nethttp.StatusOK, resp.StatusCode)

	resp, err = e.app.Test(httptest.NewRequest(nethttp.MethodGet, "/api/v1/ready", nil))
	require.NoError(t, err)
	assert.Equal(t, nethttp.StatusOK, resp.StatusCode)
}

type downChecker struct{}

func (downChecker) Name() string                { return "redis" }
func (downChecker) Check(context.Context) error { return errors.New("dial tcp: connection refused") }

func TestReadyReportsFailingComponent(t *testing.T) {
	app := fiber.New()
	apihttp.Register(app,
		handlers.NewHealthHandler(health.NewService(downChecker{})),
		nil,
		jwt.NewAuthMiddleware(secret, issuer),
	)

	resp, err := app.Test(httptest.NewRequest(nethttp.MethodGet, "/api/v1/ready", nil))
	require.NoError(t, err)
	assert.Equal(t, nethttp.StatusServiceUnavailable, resp.StatusCode)

	var body struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "not_ready", body.Status)
	assert.Contains(t, body.Checks["redis"], "connection refused")
}

func TestJobsRequireAuth(t *testing.T) {
	e := newEnv(t)
	resp, err := e.app.Test(httptest.NewRequest(nethttp.MethodGet, "/api/v1/jobs", nil))
	require.NoError(t, err)
	assert.Equal(t, nethttp.StatusUnauthorized, resp.StatusCode)
}

func TestSubmitJob(t *testing.T) {
	e := newEnv(t)
	req := multipartRequest(t,
		map[string]string{"title": "Go developer", "job_description": "Go, PostgreSQL"},
		map[string][]byte{"jane.txt": []byte("Jane Doe\nGo developer"), "john.docx": []byte("PK")},
	)

	resp, body := e.do(t, req)
	require.Equal(t, nethttp.StatusAccepted, resp.StatusCode, string(body))

	var j job.Job
	require.NoError(t, json.Unmarshal(body, &j))
	assert.Equal(t, job.StatusQueued, j.Status)
	assert.Equal(t, 2, j.Documents)

	require.Len(t, e.dispatcher.tasks, 1)
	assert.Equal(t, j.ID, e.dispatcher.tasks[0].JobID)
	assert.Len(t, uploadedFiles(t, e.uploadDir), 2)

	resp, body = e.do(t, httptest.NewRequest(nethttp.MethodGet, "/api/v1/jobs/"+j.ID.String(), nil))
	assert.Equal(t, nethttp.StatusOK, resp.StatusCode, string(body))

	resp, body = e.do(t, httptest.NewRequest(nethttp.MethodGet, "/api/v1/jobs/"+j.ID.String()+"/candidates", nil))
	require.Equal(t, nethttp.StatusOK, resp.StatusCode, string(body))
	var withCands struct {
		Job        job.Job                `json:"job"`
		Candidates []job.CandidateSummary `json:"candidates"`
	}
	require.NoError(t, json.Unmarshal(body, &withCands))
	assert.Empty(t, withCands.Candidates)

	resp, body = e.do(t, httptest.NewRequest(nethttp.MethodGet, "/api/v1/jobs?limit=5", nil))
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	var list presenter.Page[job.Job]
	require.NoError(t, json.Unmarshal(body, &list))
	assert.Len(t, list.Items, 1)
	assert.Equal(t, 5, list.Limit)

	resp, _ = e.do(t, httptest.NewRequest(nethttp.MethodGet, "/api/v1/jobs?limit=abc", nil))
	assert.Equal(t, nethttp.StatusBadRequest, resp.StatusCode)
}

func TestSubmitJobValidation(t *testing.T) {
	cases := []struct {
		name   string
		fields map[string]string
		files  map[string][]byte
		status int
	}{
		{"missing description", map[string]string{"title": "t"}, map[string][]byte{"a.txt": []byte("a")}, nethttp.StatusBadRequest},
		{"no files", map[string]string{"title": "t", "job_description": "d"}, nil, nethttp.StatusBadRequest},
		{"bad format", map[string]string{"title": "t", "job_description": "d"}, map[string][]byte{"a.exe": []byte("MZ")}, nethttp.StatusBadRequest},
		{"too large", map[string]string{"title": "t", "job_description": "d"}, map[string][]byte{"a.txt": bytes.Repeat([]byte("a"), 2<<10)}, nethttp.StatusBadRequest},
		{"not enough credits", map[string]string{"title": "t", "job_description": "d"}, map[string][]byte{
			"a.txt": []byte("a"), "b.txt": []byte("b"), "c.txt": []byte("c"), "d.txt": []byte("d"),
		}, nethttp.StatusPaymentRequired},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := newEnv(t)
			resp, body := e.do(t, multipartRequest(t, tc.fields, tc.files))
			assert.Equal(t, tc.status, resp.StatusCode, string(body))
			assert.Empty(t, e.dispatcher.tasks)
			assert.Empty(t, uploadedFiles(t, e.uploadDir))
		})
	}
}

func TestGetJobNotFound(t *testing.T) {
	e := newEnv(t)
	resp, _ := e.do(t, httptest.NewRequest(nethttp.MethodGet, "/api/v1/jobs/"+uuid.NewString(), nil))
	assert.Equal(t, nethttp.StatusNotFound, resp.StatusCode)

	resp, _ = e.do(t, httptest.NewRequest(nethttp.MethodGet, "/api/v1/jobs/not-a-uuid", nil))
	assert.Equal(t, nethttp.StatusBadRequest, resp.StatusCode)
}

func TestUsage(t *testing.T) {
	e := newEnv(t)
	resp, body := e.do(t, httptest.NewRequest(nethttp.MethodGet, "/api/v1/usage", nil))
	require.Equal(t, nethttp.StatusOK, resp.StatusCode, string(body))

	var rep job.UsageReport
	require.NoError(t, json.Unmarshal(body, &rep))
	assert.Equal(t, 3, rep.RemainingBalance)
	assert.Zero(t, rep.Stats.TotalJobs)
}
