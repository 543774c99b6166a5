package screener

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/futig/mitr-backend/internal/config"
	"github.com/futig/mitr-backend/internal/entity"
	"github.com/futig/mitr-backend/internal/integration/common"
	pkghttp "github.com/futig/mitr-backend/pkg/http"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const statusCompleted = "completed"

// ErrNoProfile is returned when the backend accepts a profile but echoes nothing back.
var ErrNoProfile = errors.New("failed to submit profile: backend returned no user profile")

// Connector talks to the screening backend. Every call is a multipart form POST.
type Connector struct {
	config    config.ScreenerConnectorConfig
	connector *pkghttp.Connector
}

func NewConnector(
	cfg config.ScreenerConnectorConfig,
	observer pkghttp.AttemptObserver,
	logger *zap.Logger,
) *Connector {
	return &Connector{
		config:    cfg,
		connector: common.NewBaseConnector(cfg.HTTPClientConfig, cfg.Retry, observer, logger),
	}
}

type replyResponse struct {
	Reply string `json:"reply"`
}

type answerResponse struct {
	Reply      string          `json:"reply"`
	Status     string          `json:"status"`
	Evaluation json.RawMessage `json:"evaluation"`
}

func (c *Connector) SubmitProfile(ctx context.Context, sessionID string, profile entity.Profile) (*entity.ProfileReply, error) {
	ctxzap.Debug(ctx, "submitting profile to screener")

	var resp entity.ProfileReply
	err := c.connector.DoMultipartRequest(ctx, http.MethodPost, c.config.SubmitProfileEndpoint,
		pkghttp.Fields("profile_text", profile.Text(), "session_id", sessionID),
		&resp,
	)
	if err != nil {
		return nil, fmt.Errorf("submit profile: %w", err)
	}

	trimmed := bytes.TrimSpace(resp.UserProfile)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) || bytes.Equal(trimmed, []byte(`""`)) {
		return nil, ErrNoProfile
	}

	return &resp, nil
}

func (c *Connector) StartSession(ctx context.Context, sessionID string, assessmentID entity.AssessmentID) (string, error) {
	ctxzap.Debug(ctx, "starting screener session", zap.String("assessment_id", string(assessmentID)))

	var resp replyResponse
	err := c.connector.DoMultipartRequest(ctx, http.MethodPost, c.config.StartSessionEndpoint,
		pkghttp.Fields("test_name", string(assessmentID), "session_id", sessionID),
		&resp,
	)
	if err != nil {
		return "", fmt.Errorf("start session: %w", err)
	}

	return resp.Reply, nil
}

func (c *Connector) SubmitAnswer(ctx context.Context, sessionID string, answerIndex int) (*entity.AnswerReply, error) {
	ctxzap.Debug(ctx, "submitting answer to screener", zap.Int("answer_index", answerIndex))

	var resp answerResponse
	err := c.connector.DoMultipartRequest(ctx, http.MethodPost, c.config.SubmitAnswerEndpoint,
		pkghttp.Fields("answer_index", strconv.Itoa(answerIndex), "session_id", sessionID),
		&resp,
	)
	if err != nil {
		return nil, fmt.Errorf("submit answer: %w", err)
	}

	eval, err := entity.ParseEvaluation(resp.Evaluation)
	if err != nil {
		return nil, fmt.Errorf("submit answer: %w", &pkghttp.DecodeError{Err: err})
	}

	return &entity.AnswerReply{
		Reply:      resp.Reply,
		Completed:  resp.Status == statusCompleted,
		Evaluation: eval,
	}, nil
}

// Synthesize requests speech for text and returns the raw audio body.
func (c *Connector) Synthesize(ctx context.Context, text string) (*entity.Audio, error) {
	resp, err := c.connector.Fetch(ctx, http.MethodPost, c.config.TTSEndpoint,
		pkghttp.MultipartBody{Prepare: pkghttp.Fields("text", text)},
		pkghttp.WithAccept("audio/*"),
	)
	if err != nil {
		return nil, fmt.Errorf("synthesize speech: %w", err)
	}

	return &entity.Audio{Data: resp.Body, ContentType: resp.ContentType()}, nil
}
