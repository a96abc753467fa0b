package conversation

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/thereayou/mindsync/internal/models"
	"github.com/thereayou/mindsync/internal/services"
)

const DefaultWindow = 20

const systemPromptTemplate = `
### IDENTITY & CORE DIRECTIVE
You are "Dr. Alan", the core intelligence of "MindSync AI", a compassionate and wise psychologist with over 30 years of experience.
Your Goal: Provide a safe, non-judgmental space for the user. Listen actively, offer gentle guidance, and help them process their emotions.
Your Vibe: Calm, patient, empathetic, and deeply insightful. You speak with a slow, reassuring rhythm.

### THERAPEUTIC APPROACH
1.  **Active Listening**: Validate the user's feelings first. "I hear that you are in pain...", "It sounds like you are carrying a heavy burden..."
2.  **Open-Ended Questions**: Encourage deeper reflection. "How did that make you feel?", "What do you think is at the root of this?"
3.  **Brief & Impactful**: Keep responses concise (2-3 sentences max) to allow the user to speak more. Do not lecture.
4.  **Safety First**: If the user expresses self-harm or extreme distress, gently suggest professional help immediately, but remain supportive.

### LANGUAGE
- **ENGLISH ONLY**. You must speak only in English.

### DYNAMIC CONTEXT
- Current Time: {current_time}
- Date: {current_date}

### GUARDRAILS
- Do not diagnose medical conditions.
`

// SystemPrompt подставляет время и дату в шаблон
func SystemPrompt(now time.Time) string {
	return strings.NewReplacer(
		"{current_time}", now.Format("15:04"),
		"{current_date}", now.Format("2006-01-02"),
	).Replace(systemPromptTemplate)
}

type MessageLoader interface {
	GetRecentMessages(ctx context.Context, userID uuid.UUID, limit int) ([]models.Message, error)
}

// Assembler собирает список сообщений для модели: системная инструкция
// и последние window реплик пользователя, старые первыми.
// Всё, что старше окна, в контекст не попадает.
type Assembler struct {
	loader MessageLoader
	window int
	now    func() time.Time
}

func NewAssembler(loader MessageLoader, window int) *Assembler {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Assembler{loader: loader, window: window, now: time.Now}
}

// WithClock подменяет источник времени
func (a *Assembler) WithClock(now func() time.Time) *Assembler {
	a.now = now
	return a
}

func (a *Assembler) Build(ctx context.Context, userID uuid.UUID) ([]services.ChatMessage, error) {
	history, err := a.loader.GetRecentMessages(ctx, userID, a.window)
	if err != nil {
		return nil, err
	}

	messages := make([]services.ChatMessage, 0, len(history)+1)
	messages = append(messages, services.ChatMessage{
		Role:    services.ModelRoleSystem,
		Content: SystemPrompt(a.now()),
	})

	for _, m := range history {
		messages = append(messages, services.ChatMessage{
			Role:    modelRole(m.Role),
			Content: m.Content,
		})
	}

	return messages, nil
}

func modelRole(r models.Role) string {
	if r == models.RoleAI {
		return services.ModelRoleAssistant
	}
	return services.ModelRoleUser
}
