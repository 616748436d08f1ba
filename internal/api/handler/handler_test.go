package handler

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pitapat/internal/adapter/notification"
	"pitapat/internal/api/middleware"
	"pitapat/internal/dto"
	"pitapat/pkg/constants"
	pkgErrors "pitapat/pkg/errors"
	"pitapat/pkg/responses"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubAuth struct {
	userID int64
}

func (s stubAuth) Authorize(_ context.Context, token string) (int64, error) {
	if token != "good" {
		return 0, pkgErrors.ErrInvalidToken
	}
	return s.userID, nil
}

type stubLogin struct {
	resp *dto.LoginResponse
	err  error
}

func (s stubLogin) Login(context.Context, *dto.LoginRequest) (*dto.LoginResponse, error) {
	return s.resp, s.err
}

type stubProjects struct {
	checkErr error
}

func (s stubProjects) List(context.Context, string) ([]*dto.ProjectItem, error) {
	return []*dto.ProjectItem{{ID: 1, Name: "demo"}}, nil
}

func (s stubProjects) Detail(context.Context, int64, string) (*dto.ProjectDetail, error) {
	return nil, pkgErrors.ErrProjectNotFound
}

func (s stubProjects) Create(context.Context, string, *dto.CreateProjectRequest) (*dto.CreatedResponse, error) {
	return &dto.CreatedResponse{ProjectID: 7}, nil
}

func (s stubProjects) CheckSubdomain(context.Context, string) error { return s.checkErr }

func (s stubProjects) Delete(context.Context, int64, string) error { return nil }

type stubBuilds struct {
	calls    int
	eventErr error
	token    string
}

func (s *stubBuilds) Build(context.Context, int64, string) error {
	return pkgErrors.ErrBuildExists
}

func (s *stubBuilds) OnBuildEvent(_ context.Context, _ *dto.BuildEventRequest, token string) error {
	s.calls++
	s.token = token
	return s.eventErr
}

type stubDeploys struct {
	eventErr error
}

func (s stubDeploys) Deploy(context.Context, int64, string) error { return nil }

func (s stubDeploys) Status(_ context.Context, buildID int64, _ string) (*dto.DeployStatusResponse, error) {
	return &dto.DeployStatusResponse{BuildID: buildID, Health: "Healthy", Applied: true, Status: constants.ProjectStatusDeploySucceeded}, nil
}

func (s stubDeploys) OnDeployEvent(context.Context, *dto.DeployEventRequest) error { return s.eventErr }

func decodeError(t *testing.T, w *httptest.ResponseRecorder) responses.ErrorBody {
	t.Helper()
	var body responses.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Error
}

func TestLoginSetsAuthorizationHeader(t *testing.T) {
	h := NewAuthHandler(stubLogin{resp: &dto.LoginResponse{ID: 1, Login: "octocat", AccessToken: "gho_x"}})
	r := gin.New()
	r.POST("/user/login", h.Login)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/user/login", strings.NewReader(`{"code":"abc"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Bearer gho_x", w.Header().Get(constants.HeaderAuthorization))
	assert.NotContains(t, w.Body.String(), "gho_x")
	assert.Contains(t, w.Body.String(), `"login":"octocat"`)
}

func TestLoginMissingCode(t *testing.T) {
	h := NewAuthHandler(stubLogin{})
	r := gin.New()
	r.POST("/user/login", h.Login)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/user/login", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, http.StatusBadRequest, decodeError(t, w).Status)
}

func TestBuildEventAlwaysOK(t *testing.T) {
	builds := &stubBuilds{eventErr: pkgErrors.ErrProjectNotFound}
	h := NewWebhookHandler(builds, stubDeploys{}, zap.NewNop())
	r := gin.New()
	r.POST("/project/build/event", h.BuildEvent)

	tests := []struct {
		name  string
		body  string
		calls int
	}{
		{"参数错误", `{"status":"success"}`, 0},
		{"处理失败", `{"projectId":9,"status":"success","imageTag":"abc"}`, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			builds.calls = 0
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/project/build/event", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set(constants.HeaderCallbackToken, "cb")
			r.ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.calls, builds.calls)
		})
	}
	assert.Equal(t, "cb", builds.token)
}

func TestDeployEventStatusCodes(t *testing.T) {
	tests := []struct {
		name string
		body string
		err  error
		code int
	}{
		{"缺少 buildId", `{"status":"Healthy"}`, nil, http.StatusBadRequest},
		{"构建不存在", `{"buildId":3,"status":"Healthy"}`, pkgErrors.ErrBuildNotFound, http.StatusNotFound},
		{"非法状态", `{"buildId":3,"status":"Unknown"}`, pkgErrors.ErrBadRequest, http.StatusBadRequest},
		{"成功", `{"buildId":3,"status":"Healthy"}`, nil, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewWebhookHandler(&stubBuilds{}, stubDeploys{eventErr: tt.err}, zap.NewNop())
			r := gin.New()
			r.POST("/project/deploy/event", h.DeployEvent)

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/project/deploy/event", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.code, w.Code)
		})
	}
}

func TestProjectHandlerErrors(t *testing.T) {
	h := NewProjectHandler(stubProjects{checkErr: pkgErrors.ErrSubdomainExists}, &stubBuilds{}, stubDeploys{})
	r := gin.New()
	r.GET("/project/subdomain/check", h.CheckSubdomain)
	r.POST("/project/build", h.Build)
	r.GET("/project/:id", h.Detail)
	r.GET("/project/deploy/status", h.DeployStatus)

	t.Run("子域名已存在", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/project/subdomain/check?name=demo", nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, pkgErrors.CodeSubdomainExists, decodeError(t, w).Status)
	})

	t.Run("构建已存在", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/project/build", strings.NewReader(`{"id":1}`))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, pkgErrors.CodeResourceExists, decodeError(t, w).Status)
	})

	t.Run("非法 id", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/project/abc", nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("项目不存在", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/project/5", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("发布状态", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/project/deploy/status?buildId=4", nil))
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"buildId":4,"health":"Healthy","applied":true,"status":4}`, w.Body.String())
	})
}

func TestStreamRejectsInvalidToken(t *testing.T) {
	h := NewStreamHandler(stubAuth{userID: 1}, notification.NewHub(), time.Second, zap.NewNop())
	r := gin.New()
	r.GET("/stream", middleware.TokenMiddleware(true), h.Stream)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/stream?token=bad", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestStreamDeliversMessages(t *testing.T) {
	hub := notification.NewHub()
	h := NewStreamHandler(stubAuth{userID: 42}, hub, time.Minute, zap.NewNop())
	r := gin.New()
	r.GET("/stream", middleware.TokenMiddleware(true), h.Stream)

	srv := httptest.NewServer(r)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/stream?token=good", nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/event-stream")

	require.Eventually(t, func() bool { return hub.Subscribers(42) == 1 }, 2*time.Second, 10*time.Millisecond)

	buildID := int64(3)
	require.NoError(t, hub.Publish(ctx, 42, &notification.Message{
		ProjectID:      1,
		Status:         constants.ProjectStatusDeploying,
		CurrentBuildID: &buildID,
	}))

	scanner := bufio.NewScanner(resp.Body)
	var event, data string
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "event:") {
			event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		}
		if strings.HasPrefix(line, "data:") {
			data = strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			break
		}
	}
	assert.Equal(t, "message", event)
	assert.JSONEq(t, `{"projectId":1,"status":3,"currentBuildId":3,"currentDeployId":null}`, data)

	cancel()
	require.Eventually(t, func() bool { return hub.Subscribers(42) == 0 }, 2*time.Second, 10*time.Millisecond)
}
