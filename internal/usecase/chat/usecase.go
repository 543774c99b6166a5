package chat

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/futig/mitr-backend/internal/entity"
	"github.com/futig/mitr-backend/internal/pkg/logger"
	"github.com/futig/mitr-backend/internal/pkg/markdown"
	"github.com/futig/mitr-backend/internal/pkg/metrics"
	"github.com/futig/mitr-backend/internal/playback"
	"github.com/futig/mitr-backend/internal/repository"
	pkghttp "github.com/futig/mitr-backend/pkg/http"
	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const (
	titleLength = 20

	emptyAnswer       = "Sorry, I couldn't generate a response."
	connectionFailed  = "Connection failed. The server might be asleep or unreachable. Please try again in a moment."
	errorAnswerPrefix = "An error occurred: "
)

type Usecase struct {
	workspaces *repository.WorkspaceStore
	bot        Chatbot
	synth      playback.Synthesizer
	renderer   *markdown.Renderer
	metrics    *metrics.Metrics
	playerOpts []playback.Option
	logger     *zap.Logger
	now        func() time.Time
}

type Option func(*Usecase)

func WithMetrics(m *metrics.Metrics) Option {
	return func(uc *Usecase) {
		uc.metrics = m
	}
}

func WithPlayerOptions(opts ...playback.Option) Option {
	return func(uc *Usecase) {
		uc.playerOpts = append(uc.playerOpts, opts...)
	}
}

func NewUsecase(
	workspaces *repository.WorkspaceStore,
	bot Chatbot,
	synth playback.Synthesizer,
	logger *zap.Logger,
	opts ...Option,
) *Usecase {
	uc := &Usecase{
		workspaces: workspaces,
		bot:        bot,
		synth:      synth,
		renderer:   markdown.NewRenderer(),
		logger:     logger,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// CreateWorkspace starts a workspace with one empty conversation.
func (uc *Usecase) CreateWorkspace(ctx context.Context) (*entity.Workspace, error) {
	entry := &repository.WorkspaceEntry{
		Workspace: &entity.Workspace{ID: uuid.NewString()},
		Slot:      playback.NewSlot(),
	}
	uc.reset(entry.Workspace)

	opts := append([]playback.Option{playback.WithMetrics(uc.metrics)}, uc.playerOpts...)
	entry.Player = playback.NewPlayer(uc.synth, entry.Slot,
		uc.logger.With(zap.String("workspace_id", entry.Workspace.ID)), opts...)

	if err := uc.workspaces.Add(entry.Workspace.ID, entry); err != nil {
		return nil, fmt.Errorf("store workspace: %w", err)
	}

	ctxzap.Info(ctx, "chat workspace created", zap.String("workspace_id", entry.Workspace.ID))
	return snapshot(entry), nil
}

func (uc *Usecase) GetWorkspace(_ context.Context, workspaceID string) (*entity.Workspace, error) {
	entry, err := uc.workspaces.Get(workspaceID)
	if err != nil {
		return nil, err
	}

	entry.Lock()
	defer entry.Unlock()
	return snapshot(entry), nil
}

// NewConversation adds an empty conversation and makes it active.
func (uc *Usecase) NewConversation(_ context.Context, workspaceID string) (*entity.Workspace, error) {
	entry, err := uc.workspaces.Get(workspaceID)
	if err != nil {
		return nil, err
	}

	entry.Lock()
	defer entry.Unlock()

	entry.Player.Stop()
	w := entry.Workspace
	conv := newConversation()
	w.Conversations = append(w.Conversations, conv)
	w.ActiveID = conv.ID
	w.UpdatedAt = uc.now()

	return snapshot(entry), nil
}

func (uc *Usecase) SelectConversation(_ context.Context, workspaceID, conversationID string) (*entity.Workspace, error) {
	entry, err := uc.workspaces.Get(workspaceID)
	if err != nil {
		return nil, err
	}

	entry.Lock()
	defer entry.Unlock()

	w := entry.Workspace
	if w.Conversation(conversationID) < 0 {
		return nil, fmt.Errorf("%w: %s", entity.ErrConversationNotFound, conversationID)
	}
	w.ActiveID = conversationID
	w.UpdatedAt = uc.now()

	return snapshot(entry), nil
}

// DeleteConversation removes a conversation. Removing the last one resets the workspace.
func (uc *Usecase) DeleteConversation(_ context.Context, workspaceID, conversationID string) (*entity.Workspace, error) {
	entry, err := uc.workspaces.Get(workspaceID)
	if err != nil {
		return nil, err
	}

	entry.Lock()
	defer entry.Unlock()

	w := entry.Workspace
	i := w.Conversation(conversationID)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", entity.ErrConversationNotFound, conversationID)
	}

	w.Conversations = append(w.Conversations[:i], w.Conversations[i+1:]...)
	switch {
	case len(w.Conversations) == 0:
		entry.Player.Stop()
		uc.reset(w)
	case w.ActiveID == conversationID:
		w.ActiveID = w.Conversations[0].ID
	}
	w.UpdatedAt = uc.now()

	return snapshot(entry), nil
}

// ClearConversations drops every conversation and starts over with an empty one.
func (uc *Usecase) ClearConversations(_ context.Context, workspaceID string) (*entity.Workspace, error) {
	entry, err := uc.workspaces.Get(workspaceID)
	if err != nil {
		return nil, err
	}

	entry.Lock()
	defer entry.Unlock()

	entry.Player.Stop()
	uc.reset(entry.Workspace)

	return snapshot(entry), nil
}

// Ask sends query in the active conversation and appends the answer.
func (uc *Usecase) Ask(ctx context.Context, workspaceID, query string) (*entity.Workspace, error) {
	ctx = logger.AddFields(logger.WithAction(ctx, "ask"), zap.String("workspace_id", workspaceID))

	if strings.TrimSpace(query) == "" {
		return nil, entity.ErrEmptyQuery
	}

	entry, err := uc.workspaces.Get(workspaceID)
	if err != nil {
		return nil, err
	}
	if !entry.Begin() {
		return nil, entity.ErrTransitionInFlight
	}
	defer entry.End()

	entry.Lock()
	entry.Player.Stop()
	w := entry.Workspace
	i := w.Conversation(w.ActiveID)
	if i < 0 {
		entry.Unlock()
		return nil, fmt.Errorf("%w: %s", entity.ErrConversationNotFound, w.ActiveID)
	}

	conv := &w.Conversations[i]
	if len(conv.Messages) == 0 {
		conv.Title = title(query)
	}
	conv.Messages = append(conv.Messages, entity.ChatMessage{
		ID:        uuid.NewString(),
		Role:      entity.ChatRoleUser,
		Text:      query,
		CreatedAt: uc.now(),
	})
	conversationID := conv.ID
	w.Thinking = true
	entry.Unlock()

	answer, err := uc.bot.Ask(context.WithoutCancel(ctx), conversationID, query)

	speak := true
	switch {
	case err == nil:
		if answer == "" {
			answer = emptyAnswer
		}
		uc.metrics.ChatAnswer("ok")
	case pkghttp.IsNetworkError(err):
		ctxzap.Warn(ctx, "chat backend unreachable", zap.Error(err))
		answer = connectionFailed
		speak = false
		uc.metrics.ChatAnswer("unreachable")
	default:
		ctxzap.Error(ctx, "chat backend failed", zap.Error(err))
		answer = errorAnswerPrefix + err.Error()
		uc.metrics.ChatAnswer("error")
	}

	message := entity.ChatMessage{
		ID:        uuid.NewString(),
		Role:      entity.ChatRoleAI,
		Text:      answer,
		CreatedAt: uc.now(),
	}
	if html, err := uc.renderer.HTML(answer); err != nil {
		ctxzap.Warn(ctx, "failed to render answer", zap.Error(err))
	} else {
		message.HTML = html
	}

	entry.Lock()
	defer entry.Unlock()

	w.Thinking = false
	w.UpdatedAt = uc.now()

	// The conversation may have been deleted while the question was in flight.
	i = w.Conversation(conversationID)
	if i < 0 {
		return snapshot(entry), nil
	}
	w.Conversations[i].Messages = append(w.Conversations[i].Messages, message)

	if speak {
		entry.Player.Play(message.ID, markdown.SpeechText(answer))
	}

	return snapshot(entry), nil
}

func (uc *Usecase) StopPlayback(_ context.Context, workspaceID string) (*entity.Workspace, error) {
	entry, err := uc.workspaces.Get(workspaceID)
	if err != nil {
		return nil, err
	}

	entry.Lock()
	defer entry.Unlock()

	entry.Player.Stop()
	return snapshot(entry), nil
}

func (uc *Usecase) CurrentAudio(_ context.Context, workspaceID string) (*playback.Clip, error) {
	entry, err := uc.workspaces.Get(workspaceID)
	if err != nil {
		return nil, err
	}

	clip := entry.Slot.Current()
	if clip == nil {
		return nil, entity.ErrNoAudio
	}
	return clip, nil
}

func (uc *Usecase) AudioEnded(_ context.Context, workspaceID, messageID string) error {
	entry, err := uc.workspaces.Get(workspaceID)
	if err != nil {
		return err
	}
	if !entry.Slot.Ended(messageID) {
		return entity.ErrNoAudio
	}
	return nil
}

func (uc *Usecase) reset(w *entity.Workspace) {
	conv := newConversation()
	w.Conversations = []entity.Conversation{conv}
	w.ActiveID = conv.ID
	w.UpdatedAt = uc.now()
}

func newConversation() entity.Conversation {
	return entity.Conversation{
		ID:       uuid.NewString(),
		Title:    entity.DefaultConversationTitle,
		Messages: []entity.ChatMessage{},
	}
}

func title(query string) string {
	if utf8.RuneCountInString(query) <= titleLength {
		return query
	}
	return string([]rune(query)[:titleLength]) + "..."
}

func snapshot(entry *repository.WorkspaceEntry) *entity.Workspace {
	w := entry.Workspace.Clone()
	w.Playing = entry.Player.Current() != ""
	return w
}
