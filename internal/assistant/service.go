package assistant

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/voltpath/labstock-backend/pkg/config"
	"github.com/voltpath/labstock-backend/pkg/db/models"
	pkgerrors "github.com/voltpath/labstock-backend/pkg/errors"
	"github.com/voltpath/labstock-backend/pkg/logger"
)

const (
	componentLimit = 50
	movementLimit  = 20

	rateLimitPerMinute = 20

	fallbackReply = "Sorry, I couldn't find an answer right now."
)

// Completer is the one call the assistant makes against the chat API.
// *openai.Client satisfies it.
type Completer interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// RateLimiter counts requests in a fixed window per scope. The redis client
// satisfies it.
type RateLimiter interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

type Service interface {
	Chat(ctx context.Context, actor *models.User, req ChatRequest) (*ChatResponse, error)
}

type service struct {
	repo      Repository
	completer Completer
	limiter   RateLimiter
	model     string
	logg      *logger.Logger
	now       func() time.Time
}

// NewService wires the assistant. completer may be nil when no API key is
// configured; Chat then reports a dependency error instead of calling out.
func NewService(
	repo Repository,
	completer Completer,
	limiter RateLimiter,
	cfg config.OpenAIConfig,
	logg *logger.Logger,
	now func() time.Time,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("assistant service: repository is required")
	}
	if limiter == nil {
		return nil, fmt.Errorf("assistant service: rate limiter is required")
	}
	if logg == nil {
		return nil, fmt.Errorf("assistant service: logger is required")
	}
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:      repo,
		completer: completer,
		limiter:   limiter,
		model:     cfg.Model,
		logg:      logg,
		now:       now,
	}, nil
}

func (s *service) Chat(ctx context.Context, actor *models.User, req ChatRequest) (*ChatResponse, error) {
	if actor == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if strings.TrimSpace(req.Message) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "message is required")
	}
	if s.completer == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "assistant is not configured")
	}

	allowed, _, err := s.limiter.FixedWindowAllow(ctx, "assistant:"+actor.ID.String(), rateLimitPerMinute, time.Minute)
	if err != nil {
		s.logg.Error(s.logg.WithUserID(ctx, actor.ID.String()), "assistant rate limit check", err)
	} else if !allowed {
		return nil, pkgerrors.New(pkgerrors.CodeRateLimit, "too many assistant requests, try again shortly")
	}

	components, err := s.repo.ComponentsForUser(ctx, actor.ID, componentLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading inventory context")
	}
	movements, err := s.repo.RecentMovements(ctx, actor.ID, movementLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading movement context")
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(req.History)+2)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: buildSystemInstructions(actor, components, movements, s.now()),
	})
	for _, turn := range req.History {
		role := openai.ChatMessageRoleUser
		if turn.Role == "assistant" {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: turn.Content})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Message,
	})

	resp, err := s.completer.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    s.model,
		Messages: messages,
	})
	if err != nil {
		s.logg.Error(s.logg.WithUserID(ctx, actor.ID.String()), "assistant completion", err)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to get assistant reply")
	}

	output := fallbackReply
	if len(resp.Choices) > 0 && strings.TrimSpace(resp.Choices[0].Message.Content) != "" {
		output = resp.Choices[0].Message.Content
	}
	return &ChatResponse{Output: output}, nil
}
