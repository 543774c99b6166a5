package chat

import (
	"context"

	"github.com/futig/mitr-backend/internal/entity"
	"github.com/futig/mitr-backend/internal/playback"
)

type ChatUsecase interface {
	CreateWorkspace(ctx context.Context) (*entity.Workspace, error)
	GetWorkspace(ctx context.Context, workspaceID string) (*entity.Workspace, error)
	NewConversation(ctx context.Context, workspaceID string) (*entity.Workspace, error)
	SelectConversation(ctx context.Context, workspaceID, conversationID string) (*entity.Workspace, error)
	DeleteConversation(ctx context.Context, workspaceID, conversationID string) (*entity.Workspace, error)
	ClearConversations(ctx context.Context, workspaceID string) (*entity.Workspace, error)
	Ask(ctx context.Context, workspaceID, query string) (*entity.Workspace, error)
	StopPlayback(ctx context.Context, workspaceID string) (*entity.Workspace, error)
	CurrentAudio(ctx context.Context, workspaceID string) (*playback.Clip, error)
	AudioEnded(ctx context.Context, workspaceID, messageID string) error
}
