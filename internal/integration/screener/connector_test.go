package screener

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/futig/mitr-backend/internal/config"
	"github.com/futig/mitr-backend/internal/entity"
	pkgRetry "github.com/futig/mitr-backend/internal/pkg/retry"
	pkghttp "github.com/futig/mitr-backend/pkg/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestConnector(t *testing.T, handler http.HandlerFunc) *Connector {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := config.ScreenerConnectorConfig{
		HTTPClientConfig:      config.HTTPClientConfig{Url: srv.URL},
		SubmitProfileEndpoint: "/submit_profile",
		StartSessionEndpoint:  "/start_session",
		SubmitAnswerEndpoint:  "/submit_answer",
		TTSEndpoint:           "/tts",
		Retry:                 pkgRetry.RetryConfig{Attempts: 1},
	}
	return NewConnector(cfg, nil, zap.NewNop())
}

func TestSubmitProfile(t *testing.T) {
	c := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/submit_profile", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "s-1", r.FormValue("session_id"))
		assert.Contains(t, r.FormValue("profile_text"), "Name: Ana")

		_ = json.NewEncoder(w).Encode(map[string]any{"user_profile": map[string]string{"name": "Ana"}})
	})

	reply, err := c.SubmitProfile(context.Background(), "s-1", entity.Profile{Name: "Ana"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Ana"}`, string(reply.UserProfile))
}

func TestSubmitProfileEmptyReply(t *testing.T) {
	c := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"user_profile":null}`))
	})

	_, err := c.SubmitProfile(context.Background(), "s-1", entity.Profile{})
	require.ErrorIs(t, err, ErrNoProfile)
	assert.False(t, pkghttp.IsNetworkError(err))
}

func TestStartSession(t *testing.T) {
	c := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "gad7", r.FormValue("test_name"))
		_, _ = w.Write([]byte(`{"reply":"AI: Let's start."}`))
	})

	reply, err := c.StartSession(context.Background(), "s-1", entity.AssessmentGAD7)
	require.NoError(t, err)
	assert.Equal(t, "AI: Let's start.", reply)
}

func TestSubmitAnswerCompleted(t *testing.T) {
	c := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "2", r.FormValue("answer_index"))
		_, _ = w.Write([]byte(`{
			"reply": "Done",
			"status": "completed",
			"evaluation": {
				"summary": "Mild symptoms.",
				"recommendations": ["Sleep well"],
				"phq9_evaluation": {"score": 7, "level": "mild"}
			}
		}`))
	})

	reply, err := c.SubmitAnswer(context.Background(), "s-1", 2)
	require.NoError(t, err)
	assert.True(t, reply.Completed)
	require.NotNil(t, reply.Evaluation)
	assert.Equal(t, entity.EvaluationSourceServer, reply.Evaluation.Source)

	score, ok := reply.Evaluation.ScoreFor(entity.AssessmentPHQ9)
	require.True(t, ok)
	assert.Equal(t, entity.ScoreValue("7"), score.Score)
}

func TestSubmitAnswerInProgress(t *testing.T) {
	c := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"reply":"Next one","status":"in_progress"}`))
	})

	reply, err := c.SubmitAnswer(context.Background(), "s-1", 0)
	require.NoError(t, err)
	assert.False(t, reply.Completed)
	assert.Nil(t, reply.Evaluation)
}

func TestSubmitAnswerServerError(t *testing.T) {
	c := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := c.SubmitAnswer(context.Background(), "s-1", 0)
	require.Error(t, err)
	assert.Equal(t, pkghttp.KindServer, pkghttp.KindOf(err))
}

func TestSynthesize(t *testing.T) {
	c := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "hello", r.FormValue("text"))
		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write([]byte{0xff, 0xfb, 0x90})
	})

	audio, err := c.Synthesize(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "audio/mpeg", audio.ContentType)
	assert.Len(t, audio.Data, 3)
}

func TestMockConnectorRunsToCompletion(t *testing.T) {
	m := NewMockConnector(zap.NewNop())
	ctx := context.Background()

	first, err := m.StartSession(ctx, "s-1", entity.AssessmentGAD7)
	require.NoError(t, err)
	assert.Contains(t, first, "AI:")

	var reply *entity.AnswerReply
	for i := 0; i < 7; i++ {
		reply, err = m.SubmitAnswer(ctx, "s-1", 1)
		require.NoError(t, err)
	}
	assert.True(t, reply.Completed)
	score, ok := reply.Evaluation.ScoreFor(entity.AssessmentGAD7)
	require.True(t, ok)
	assert.Equal(t, entity.ScoreValue("7"), score.Score)

	_, err = m.SubmitAnswer(ctx, "s-1", 0)
	assert.Error(t, err)
}
