package assistant

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	openai "github.com/sashabaranov/go-openai"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/voltpath/labstock-backend/pkg/config"
	"github.com/voltpath/labstock-backend/pkg/db/models"
	"github.com/voltpath/labstock-backend/pkg/enums"
	pkgerrors "github.com/voltpath/labstock-backend/pkg/errors"
	"github.com/voltpath/labstock-backend/pkg/logger"
)

type fakeRepo struct {
	components []models.Component
	movements  []MovementRow
}

func (f *fakeRepo) ComponentsForUser(_ context.Context, _ uuid.UUID, limit int) ([]models.Component, error) {
	if len(f.components) > limit {
		return f.components[:limit], nil
	}
	return f.components, nil
}

func (f *fakeRepo) RecentMovements(_ context.Context, _ uuid.UUID, limit int) ([]MovementRow, error) {
	if len(f.movements) > limit {
		return f.movements[:limit], nil
	}
	return f.movements, nil
}

type fakeCompleter struct {
	lastReq openai.ChatCompletionRequest
	reply   string
	err     error
}

func (f *fakeCompleter) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.lastReq = req
	if f.err != nil {
		return openai.ChatCompletionResponse{}, f.err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: f.reply}},
		},
	}, nil
}

type fakeLimiter struct {
	allowed bool
	calls   int
	scope   string
}

func (f *fakeLimiter) FixedWindowAllow(_ context.Context, scope string, _ int64, _ time.Duration) (bool, int64, error) {
	f.calls++
	f.scope = scope
	return f.allowed, 1, nil
}

type fixture struct {
	svc       Service
	repo      *fakeRepo
	completer *fakeCompleter
	limiter   *fakeLimiter
	actor     *models.User
	clock     time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clock := time.Date(2025, time.September, 1, 12, 0, 0, 0, time.UTC)
	lastOutward := clock.AddDate(0, -4, 0)
	actorID := uuid.New()
	repo := &fakeRepo{
		components: []models.Component{
			{
				ID: uuid.New(), Name: "LM358 Op-Amp", Manufacturer: "Texas Instruments",
				PartNumber: "LM358N", Quantity: 3, CriticalLowThreshold: 5,
				UnitPrice: decimal.NewFromFloat(0.45), Location: "Shelf A1",
				Category: "Integrated Circuits (ICs)", Status: enums.ComponentStatusActive,
				AddedBy: actorID, CreatedAt: clock.AddDate(0, -6, 0),
			},
			{
				ID: uuid.New(), Name: "STM32 Blue Pill", Manufacturer: "STMicroelectronics",
				PartNumber: "STM32F103C8T6", Quantity: 0, CriticalLowThreshold: 2,
				UnitPrice: decimal.NewFromFloat(3.20), Location: "Drawer B2",
				Category: "Microcontrollers/Development Boards", Status: enums.ComponentStatusActive,
				AddedBy: actorID, CreatedAt: clock.AddDate(0, -1, 0),
			},
			{
				ID: uuid.New(), Name: "10k Resistor", Manufacturer: "Vishay",
				PartNumber: "CRCW080510K0", Quantity: 500, CriticalLowThreshold: 100,
				UnitPrice: decimal.NewFromFloat(0.01), Location: "Bin C3",
				Category: "Resistors", Status: enums.ComponentStatusActive,
				AddedBy: actorID, CreatedAt: clock.AddDate(0, -8, 0),
				LastOutwardMovement: &lastOutward,
			},
		},
		movements: []MovementRow{
			{
				OperationType: enums.OperationTypeOutward, Quantity: 2,
				ReasonOrProject: "Line follower robot", TransactionDate: clock.AddDate(0, 0, -1),
				ComponentName: "LM358 Op-Amp", PartNumber: "LM358N",
			},
		},
	}
	completer := &fakeCompleter{reply: "You have 3 LM358 op-amps left."}
	limiter := &fakeLimiter{allowed: true}
	logg := logger.New(logger.Options{ServiceName: "assistant-test", Output: io.Discard})
	svc, err := NewService(repo, completer, limiter, config.OpenAIConfig{Model: "gpt-4o-mini"}, logg, func() time.Time { return clock })
	require.NoError(t, err)

	return &fixture{
		svc:       svc,
		repo:      repo,
		completer: completer,
		limiter:   limiter,
		actor:     &models.User{ID: actorID, Name: "Priya", Email: "priya@lab.test", Role: enums.RoleResearcher},
		clock:     clock,
	}
}

func TestChatBuildsInventoryPrompt(t *testing.T) {
	f := newFixture(t)

	resp, err := f.svc.Chat(context.Background(), f.actor, ChatRequest{Message: "How many op-amps do I have?"})
	require.NoError(t, err)
	require.Equal(t, "You have 3 LM358 op-amps left.", resp.Output)

	require.Equal(t, "gpt-4o-mini", f.completer.lastReq.Model)
	require.Len(t, f.completer.lastReq.Messages, 2)

	system := f.completer.lastReq.Messages[0]
	require.Equal(t, openai.ChatMessageRoleSystem, system.Role)
	require.Contains(t, system.Content, "Priya")
	require.Contains(t, system.Content, "Total Components: 3")
	require.Contains(t, system.Content, "Critical Stock Items: 1")
	require.Contains(t, system.Content, "Low Stock Items: 2")
	require.Contains(t, system.Content, "CRITICAL STOCK (Zero Quantity):")
	require.Contains(t, system.Content, "STM32F103C8T6")
	require.Contains(t, system.Content, "LOW STOCK ITEMS:")
	require.Contains(t, system.Content, "OLD STOCK (No movement in 3+ months):")
	require.Contains(t, system.Content, "CRCW080510K0")
	require.Contains(t, system.Content, "RECENT INVENTORY MOVEMENTS (Last 1 Transactions):")
	require.Contains(t, system.Content, "Line follower robot")

	last := f.completer.lastReq.Messages[len(f.completer.lastReq.Messages)-1]
	require.Equal(t, openai.ChatMessageRoleUser, last.Role)
	require.Equal(t, "How many op-amps do I have?", last.Content)
}

func TestChatReplaysHistory(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Chat(context.Background(), f.actor, ChatRequest{
		Message: "And resistors?",
		History: []ChatMessage{
			{Role: "user", Content: "How many op-amps?"},
			{Role: "assistant", Content: "Three."},
		},
	})
	require.NoError(t, err)
	require.Len(t, f.completer.lastReq.Messages, 4)
	require.Equal(t, openai.ChatMessageRoleUser, f.completer.lastReq.Messages[1].Role)
	require.Equal(t, openai.ChatMessageRoleAssistant, f.completer.lastReq.Messages[2].Role)
	require.Equal(t, "Three.", f.completer.lastReq.Messages[2].Content)
}

func TestChatRateLimited(t *testing.T) {
	f := newFixture(t)
	f.limiter.allowed = false

	_, err := f.svc.Chat(context.Background(), f.actor, ChatRequest{Message: "Hi"})
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeRateLimit, pkgerrors.As(err).Code())
	require.True(t, strings.HasPrefix(f.limiter.scope, "assistant:"))
	require.Equal(t, 0, len(f.completer.lastReq.Messages))
}

func TestChatUnconfigured(t *testing.T) {
	f := newFixture(t)
	logg := logger.New(logger.Options{ServiceName: "assistant-test", Output: io.Discard})
	svc, err := NewService(f.repo, nil, f.limiter, config.OpenAIConfig{}, logg, nil)
	require.NoError(t, err)

	_, err = svc.Chat(context.Background(), f.actor, ChatRequest{Message: "Hi"})
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeDependency, pkgerrors.As(err).Code())
}

func TestChatValidation(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Chat(context.Background(), f.actor, ChatRequest{Message: "   "})
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	_, err = f.svc.Chat(context.Background(), nil, ChatRequest{Message: "Hi"})
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.As(err).Code())
}

func TestChatCompletionFailure(t *testing.T) {
	f := newFixture(t)
	f.completer.err = errors.New("upstream timeout")

	_, err := f.svc.Chat(context.Background(), f.actor, ChatRequest{Message: "Hi"})
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeDependency, pkgerrors.As(err).Code())
}

func TestChatEmptyChoiceFallsBack(t *testing.T) {
	f := newFixture(t)
	f.completer.reply = "   "

	resp, err := f.svc.Chat(context.Background(), f.actor, ChatRequest{Message: "Hi"})
	require.NoError(t, err)
	require.Equal(t, fallbackReply, resp.Output)
}
