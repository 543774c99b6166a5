package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	assessmentapi "github.com/futig/mitr-backend/internal/api/assessment"
	authapi "github.com/futig/mitr-backend/internal/api/auth"
	chatapi "github.com/futig/mitr-backend/internal/api/chat"
	resourcesapi "github.com/futig/mitr-backend/internal/api/resources"
	"github.com/futig/mitr-backend/internal/entity"
	"github.com/futig/mitr-backend/internal/integration/chatbot"
	"github.com/futig/mitr-backend/internal/integration/screener"
	"github.com/futig/mitr-backend/internal/pkg/metrics"
	"github.com/futig/mitr-backend/internal/pkg/response"
	"github.com/futig/mitr-backend/internal/pkg/validator"
	"github.com/futig/mitr-backend/internal/repository"
	assessmentuc "github.com/futig/mitr-backend/internal/usecase/assessment"
	authuc "github.com/futig/mitr-backend/internal/usecase/auth"
	chatuc "github.com/futig/mitr-backend/internal/usecase/chat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type discardNotifier struct{}

func (discardNotifier) Send(context.Context, *entity.ResultsNotification) error { return nil }

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	logger := zap.NewNop()
	registry := metrics.NewRegistry()
	m, err := metrics.New(registry)
	require.NoError(t, err)

	screenerMock := screener.NewMockConnector(logger)
	chatMock := chatbot.NewMockConnector(logger)
	v := validator.NewValidator(200)

	assessments := assessmentuc.NewUsecase(repository.NewSessionStore(time.Hour), screenerMock, discardNotifier{}, screenerMock, logger,
		assessmentuc.WithMetrics(m))
	chats := chatuc.NewUsecase(repository.NewWorkspaceStore(time.Hour), chatMock, chatMock, logger, chatuc.WithMetrics(m))
	auth := authuc.NewUsecase(nil, nil, nil)

	router := SetupRouter(Handlers{
		Assessment: assessmentapi.NewHandler(assessments, v),
		Chat:       chatapi.NewHandler(chats, v),
		Resources:  resourcesapi.NewHandler(v),
		Auth:       authapi.NewHandler(auth, v),
	}, RouterConfig{
		AllowedOrigin: "https://mitr.example",
		Users:         auth,
		Gatherer:      registry,
	}, logger)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func call(t *testing.T, srv *httptest.Server, method, path string, body any, out any) *http.Response {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, srv.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func TestHealthAndMetrics(t *testing.T) {
	srv := newTestServer(t)

	var health map[string]string
	resp := call(t, srv, http.MethodGet, "/health", nil, &health)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "healthy", health["status"])

	resp = call(t, srv, http.MethodGet, "/metrics", nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(t)

	resp := call(t, srv, http.MethodOptions, "/api/v1/assessment-sessions/", nil, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "https://mitr.example", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestAssessmentSessionFlow(t *testing.T) {
	srv := newTestServer(t)

	var session entity.SessionDTO
	resp := call(t, srv, http.MethodPost, "/api/v1/assessment-sessions/", nil, &session)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.Equal(t, entity.StageProfile, session.Stage)
	id := session.ID

	resp = call(t, srv, http.MethodPost, "/api/v1/assessment-sessions/"+id+"/profile", entity.SubmitProfileRequest{
		Name:   "Ann",
		Reason: "I feel anxious and worried",
	}, &session)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, entity.StageTestSelection, session.Stage)
	assert.Equal(t, entity.AssessmentGAD7, session.Recommended)

	resp = call(t, srv, http.MethodPost, "/api/v1/assessment-sessions/"+id+"/assessment", entity.SelectAssessmentRequest{
		AssessmentID: entity.AssessmentGAD7,
	}, &session)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, entity.StageQuestionnaire, session.Stage)
	require.NotNil(t, session.Question)
	assert.Equal(t, 0, session.Question.Index)
	assert.Equal(t, 7, session.Question.Total)

	require.Eventually(t, func() bool {
		resp, err := srv.Client().Get(srv.URL + "/api/v1/assessment-sessions/" + id + "/audio")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		return resp.StatusCode == http.StatusOK && strings.HasPrefix(resp.Header.Get("Content-Type"), "audio/")
	}, 2*time.Second, 10*time.Millisecond)

	option := 1
	resp = call(t, srv, http.MethodPost, "/api/v1/assessment-sessions/"+id+"/answer", entity.SubmitAnswerRequest{Option: &option}, &session)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, session.QuestionIndex)
	assert.Equal(t, []int{1}, session.Answers)

	var errResp response.ErrorResponse
	resp = call(t, srv, http.MethodGet, "/api/v1/assessment-sessions/"+id+"/report?format=pdf", nil, &errResp)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = call(t, srv, http.MethodPost, "/api/v1/assessment-sessions/"+id+"/restart", nil, &session)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, entity.StageProfile, session.Stage)
	assert.Empty(t, session.Transcript)
}

func TestAssessmentErrors(t *testing.T) {
	srv := newTestServer(t)

	var errResp response.ErrorResponse
	resp := call(t, srv, http.MethodGet, "/api/v1/assessment-sessions/missing", nil, &errResp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Not Found", errResp.Error)

	var session entity.SessionDTO
	call(t, srv, http.MethodPost, "/api/v1/assessment-sessions/", nil, &session)

	resp = call(t, srv, http.MethodPost, "/api/v1/assessment-sessions/"+session.ID+"/answer", entity.SubmitAnswerRequest{}, &errResp)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	option := 0
	resp = call(t, srv, http.MethodPost, "/api/v1/assessment-sessions/"+session.ID+"/answer", entity.SubmitAnswerRequest{Option: &option}, &errResp)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = call(t, srv, http.MethodGet, "/api/v1/assessment-sessions/"+session.ID+"/audio", nil, &errResp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestListAssessmentsAndResources(t *testing.T) {
	srv := newTestServer(t)

	var assessments []entity.Assessment
	resp := call(t, srv, http.MethodGet, "/api/v1/assessments", nil, &assessments)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, assessments, 3)

	var resources []entity.Resource
	resp = call(t, srv, http.MethodGet, "/api/v1/resources?type=video", nil, &resources)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(t, resources)
	for _, r := range resources {
		assert.Equal(t, entity.ResourceVideo, r.Type)
	}

	var errResp response.ErrorResponse
	resp = call(t, srv, http.MethodGet, "/api/v1/resources?type=podcast", nil, &errResp)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestChatWorkspaceFlow(t *testing.T) {
	srv := newTestServer(t)

	var workspace entity.Workspace
	resp := call(t, srv, http.MethodPost, "/api/v1/chat-workspaces/", nil, &workspace)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.Len(t, workspace.Conversations, 1)
	id := workspace.ID

	resp = call(t, srv, http.MethodPost, "/api/v1/chat-workspaces/"+id+"/ask", entity.AskRequest{Query: "How do I calm down?"}, &workspace)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	messages := workspace.Conversations[0].Messages
	require.Len(t, messages, 2)
	assert.Equal(t, entity.ChatRoleAI, messages[1].Role)
	assert.Contains(t, messages[1].HTML, "<strong>You asked:</strong>")

	var errResp response.ErrorResponse
	resp = call(t, srv, http.MethodPost, "/api/v1/chat-workspaces/"+id+"/ask", entity.AskRequest{Query: " "}, &errResp)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = call(t, srv, http.MethodPost, "/api/v1/chat-workspaces/"+id+"/conversations", nil, &workspace)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.Len(t, workspace.Conversations, 2)

	resp = call(t, srv, http.MethodDelete, "/api/v1/chat-workspaces/"+id+"/conversations", nil, &workspace)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, workspace.Conversations, 1)
	assert.Empty(t, workspace.Conversations[0].Messages)
}

func TestAuthWithoutProvider(t *testing.T) {
	srv := newTestServer(t)

	var result entity.CallbackResult
	resp := call(t, srv, http.MethodPost, "/api/v1/auth/callback", entity.CallbackRequest{Code: "c", CodeVerifier: "v"}, &result)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, entity.AuthMsgNotConfigured, result.Message)

	resp = call(t, srv, http.MethodGet, "/api/v1/auth/session", nil, &result)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, entity.AuthMsgNotConfigured, result.Message)
}
