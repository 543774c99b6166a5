package chat

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/futig/mitr-backend/internal/entity"
	"github.com/futig/mitr-backend/internal/integration/common"
	"github.com/futig/mitr-backend/internal/repository"
	pkghttp "github.com/futig/mitr-backend/pkg/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubBot struct {
	answer string
	err    error
	asked  []string
	convs  []string
}

func (b *stubBot) Ask(_ context.Context, conversationID, query string) (string, error) {
	b.asked = append(b.asked, query)
	b.convs = append(b.convs, conversationID)
	return b.answer, b.err
}

type recordingSynth struct {
	texts chan string
}

func (s *recordingSynth) Synthesize(_ context.Context, text string) (*entity.Audio, error) {
	s.texts <- text
	return &entity.Audio{Data: common.SilentWAV(), ContentType: "audio/wav"}, nil
}

func newTestUsecase(bot Chatbot) (*Usecase, *recordingSynth) {
	synth := &recordingSynth{texts: make(chan string, 8)}
	return NewUsecase(repository.NewWorkspaceStore(time.Hour), bot, synth, zap.NewNop()), synth
}

func lastMessage(w *entity.Workspace) entity.ChatMessage {
	conv := w.Conversations[w.Conversation(w.ActiveID)]
	return conv.Messages[len(conv.Messages)-1]
}

func TestAsk(t *testing.T) {
	bot := &stubBot{answer: "**Try** a [walk](https://example.com) - daily"}
	uc, synth := newTestUsecase(bot)
	ctx := context.Background()

	w, err := uc.CreateWorkspace(ctx)
	require.NoError(t, err)
	require.Len(t, w.Conversations, 1)
	assert.Equal(t, entity.DefaultConversationTitle, w.Conversations[0].Title)

	w, err = uc.Ask(ctx, w.ID, "How can I feel less tired in the mornings?")
	require.NoError(t, err)

	conv := w.Conversations[0]
	assert.Equal(t, "How can I feel less ...", conv.Title)
	require.Len(t, conv.Messages, 2)
	assert.Equal(t, entity.ChatRoleUser, conv.Messages[0].Role)
	assert.Equal(t, entity.ChatRoleAI, conv.Messages[1].Role)
	assert.Contains(t, conv.Messages[1].HTML, "<strong>Try</strong>")
	assert.False(t, w.Thinking)
	assert.Equal(t, []string{conv.ID}, bot.convs)

	select {
	case text := <-synth.texts:
		assert.Equal(t, "Try a walk  daily", text)
	case <-time.After(time.Second):
		t.Fatal("answer was not synthesised")
	}

	w, err = uc.Ask(ctx, w.ID, "And at night?")
	require.NoError(t, err)
	assert.Equal(t, "How can I feel less ...", w.Conversations[0].Title)
}

func TestAskShortTitle(t *testing.T) {
	uc, _ := newTestUsecase(&stubBot{answer: "ok"})
	ctx := context.Background()

	w, err := uc.CreateWorkspace(ctx)
	require.NoError(t, err)

	w, err = uc.Ask(ctx, w.ID, "hello")
	require.NoError(t, err)
	assert.Equal(t, "hello", w.Conversations[0].Title)
}

func TestAskAnswers(t *testing.T) {
	tests := []struct {
		name  string
		bot   *stubBot
		want  string
		voice bool
	}{
		{name: "empty answer", bot: &stubBot{}, want: "Sorry, I couldn't generate a response.", voice: true},
		{
			name: "unreachable",
			bot:  &stubBot{err: &pkghttp.NetworkError{Err: errors.New("refused")}},
			want: "Connection failed. The server might be asleep or unreachable. Please try again in a moment.",
		},
		{
			name:  "server error",
			bot:   &stubBot{err: errors.New("HTTP 500")},
			want:  "An error occurred: HTTP 500",
			voice: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, synth := newTestUsecase(tt.bot)
			ctx := context.Background()

			w, err := uc.CreateWorkspace(ctx)
			require.NoError(t, err)
			w, err = uc.Ask(ctx, w.ID, "hi")
			require.NoError(t, err)

			assert.Equal(t, tt.want, lastMessage(w).Text)
			if tt.voice {
				select {
				case <-synth.texts:
				case <-time.After(time.Second):
					t.Fatal("answer was not synthesised")
				}
			} else {
				assert.False(t, w.Playing)
				assert.Empty(t, synth.texts)
			}
		})
	}
}

func TestAskRejectsEmptyQuery(t *testing.T) {
	bot := &stubBot{answer: "ok"}
	uc, _ := newTestUsecase(bot)
	ctx := context.Background()

	w, err := uc.CreateWorkspace(ctx)
	require.NoError(t, err)

	_, err = uc.Ask(ctx, w.ID, "   ")
	assert.ErrorIs(t, err, entity.ErrEmptyQuery)
	assert.Empty(t, bot.asked)

	_, err = uc.Ask(ctx, "missing", "hi")
	assert.ErrorIs(t, err, entity.ErrWorkspaceNotFound)
}

func TestConversations(t *testing.T) {
	uc, _ := newTestUsecase(&stubBot{answer: "ok"})
	ctx := context.Background()

	w, err := uc.CreateWorkspace(ctx)
	require.NoError(t, err)
	first := w.ActiveID

	w, err = uc.NewConversation(ctx, w.ID)
	require.NoError(t, err)
	require.Len(t, w.Conversations, 2)
	second := w.ActiveID
	assert.NotEqual(t, first, second)

	w, err = uc.SelectConversation(ctx, w.ID, first)
	require.NoError(t, err)
	assert.Equal(t, first, w.ActiveID)

	w, err = uc.DeleteConversation(ctx, w.ID, first)
	require.NoError(t, err)
	require.Len(t, w.Conversations, 1)
	assert.Equal(t, second, w.ActiveID)

	_, err = uc.DeleteConversation(ctx, w.ID, first)
	assert.ErrorIs(t, err, entity.ErrConversationNotFound)

	w, err = uc.DeleteConversation(ctx, w.ID, second)
	require.NoError(t, err)
	require.Len(t, w.Conversations, 1)
	assert.NotEqual(t, second, w.ActiveID)
	assert.Equal(t, entity.DefaultConversationTitle, w.Conversations[0].Title)

	w, err = uc.Ask(ctx, w.ID, "hi")
	require.NoError(t, err)
	w, err = uc.NewConversation(ctx, w.ID)
	require.NoError(t, err)

	w, err = uc.ClearConversations(ctx, w.ID)
	require.NoError(t, err)
	require.Len(t, w.Conversations, 1)
	assert.Empty(t, w.Conversations[0].Messages)
	assert.False(t, w.Playing)
}

func TestAudioSlot(t *testing.T) {
	uc, _ := newTestUsecase(&stubBot{answer: "ok"})
	ctx := context.Background()

	w, err := uc.CreateWorkspace(ctx)
	require.NoError(t, err)
	w, err = uc.Ask(ctx, w.ID, "hi")
	require.NoError(t, err)
	messageID := lastMessage(w).ID

	require.Eventually(t, func() bool {
		clip, err := uc.CurrentAudio(ctx, w.ID)
		return err == nil && clip.Key == messageID
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, uc.AudioEnded(ctx, w.ID, messageID))
	require.Eventually(t, func() bool {
		got, err := uc.GetWorkspace(ctx, w.ID)
		return err == nil && !got.Playing
	}, time.Second, 5*time.Millisecond)

	_, err = uc.StopPlayback(ctx, w.ID)
	require.NoError(t, err)
	assert.ErrorIs(t, uc.AudioEnded(ctx, w.ID, messageID), entity.ErrNoAudio)
}
