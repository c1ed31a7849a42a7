// Package assistant implements the guided dialog that walks a user
// through adding a household member: name, role, allergens, likes,
// then a confirmation before the member is saved.
package assistant

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"ecofood-backend/internal/household"
)

// Dialog stages.
const (
	StageAskName      = "ask_name"
	StageAskRole      = "ask_role"
	StageAskAllergens = "ask_allergens"
	StageAskLikes     = "ask_likes"
	StageConfirm      = "confirm"
	StageCompleted    = "completed"
)

// Response is one assistant turn.
type Response struct {
	SessionID    string            `json:"session_id"`
	Stage        string            `json:"stage"`
	AgentMessage string            `json:"agent_message"`
	Completed    bool              `json:"completed"`
	Member       *household.Member `json:"member,omitempty"`
}

type state struct {
	stage     string
	name      string
	role      string
	allergens []string
	likes     []string
}

// Assistant holds the in-memory dialog sessions. Sessions are ephemeral
// and vanish on restart; only the saved member persists.
type Assistant struct {
	households *household.Repository

	mu       sync.Mutex
	sessions map[string]*state
}

// New creates an Assistant.
func New(households *household.Repository) *Assistant {
	return &Assistant{households: households, sessions: map[string]*state{}}
}

// HandleMessage advances the session's dialog with the user's message
// and returns the assistant's next prompt. An unknown session id starts
// a fresh dialog. The lock covers the whole turn, so concurrent messages
// for the same session serialize instead of racing on its state.
func (a *Assistant) HandleMessage(ctx context.Context, householdID int64, sessionID, message string) (*Response, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	s, ok := a.sessions[sessionID]
	if !ok {
		s = &state{stage: StageAskName, role: household.RoleAdult}
		a.sessions[sessionID] = s
		return &Response{
			SessionID:    sessionID,
			Stage:        s.stage,
			AgentMessage: "Hi! Let's add someone new. What's their name?",
		}, nil
	}

	message = strings.TrimSpace(message)

	switch s.stage {
	case StageAskName:
		if message == "" {
			return a.reply(sessionID, s, "I didn't catch the name. Who are we adding?"), nil
		}
		s.name = message
		s.stage = StageAskRole
		return a.reply(sessionID, s,
			fmt.Sprintf("Great! What role does %s have? (Adult, Child, Guest)", s.name)), nil

	case StageAskRole:
		if message != "" {
			s.role = household.NormalizeRole(message)
		}
		s.stage = StageAskAllergens
		return a.reply(sessionID, s,
			"Any allergens to note? You can list several separated by commas, or say 'none'."), nil

	case StageAskAllergens:
		if !strings.EqualFold(message, "none") {
			s.allergens = splitLabels(message)
		}
		s.stage = StageAskLikes
		return a.reply(sessionID, s,
			"What foods or cuisines do they enjoy? (comma separated)"), nil

	case StageAskLikes:
		if message != "" {
			s.likes = splitLabels(message)
		}
		s.stage = StageConfirm
		return a.reply(sessionID, s, fmt.Sprintf(
			"Here's what I gathered:\n%s\nType 'yes' to save or 'start over' to redo.",
			summarize(s))), nil

	case StageConfirm:
		lowered := strings.ToLower(message)
		if lowered == "start over" || lowered == "restart" {
			a.restart(sessionID)
			return &Response{
				SessionID:    sessionID,
				Stage:        StageAskName,
				AgentMessage: "No problem. Let's start again. What's the name?",
			}, nil
		}
		if lowered != "yes" && lowered != "y" {
			return a.reply(sessionID, s,
				"Please confirm by typing 'yes', or say 'start over' to redo."), nil
		}

		member, err := a.households.AddMember(ctx, household.Member{
			HouseholdID: householdID,
			Name:        s.name,
			Role:        s.role,
			Allergens:   s.allergens,
			Likes:       s.likes,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to save member: %w", err)
		}
		a.forget(sessionID)
		return &Response{
			SessionID:    sessionID,
			Stage:        StageCompleted,
			AgentMessage: fmt.Sprintf("Saved %s! They're now part of the household.", member.Name),
			Completed:    true,
			Member:       member,
		}, nil
	}

	// Unknown stage; restart the dialog.
	a.restart(sessionID)
	return &Response{
		SessionID:    sessionID,
		Stage:        StageAskName,
		AgentMessage: "Let's restart. What's the name?",
	}, nil
}

func (a *Assistant) reply(sessionID string, s *state, message string) *Response {
	return &Response{SessionID: sessionID, Stage: s.stage, AgentMessage: message}
}

// restart and forget assume the caller holds a.mu.
func (a *Assistant) restart(sessionID string) {
	a.sessions[sessionID] = &state{stage: StageAskName, role: household.RoleAdult}
}

func (a *Assistant) forget(sessionID string) {
	delete(a.sessions, sessionID)
}

func splitLabels(text string) []string {
	var labels []string
	for _, part := range strings.Split(text, ",") {
		if label := strings.TrimSpace(part); label != "" {
			labels = append(labels, label)
		}
	}
	return labels
}

func summarize(s *state) string {
	allergens := "None"
	if len(s.allergens) > 0 {
		allergens = strings.Join(s.allergens, ", ")
	}
	likes := "Not specified"
	if len(s.likes) > 0 {
		likes = strings.Join(s.likes, ", ")
	}
	return fmt.Sprintf("- Name: %s\n- Role: %s\n- Allergens: %s\n- Preferences: %s",
		s.name, s.role, allergens, likes)
}
