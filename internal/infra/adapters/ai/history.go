package ai

import (
	"encoding/json"

	"github.com/Aliiiqbp/OverUnder/internal/domain/model"
)

const reportFenceOpen = "```json_report\n"

// turn is one provider-neutral history entry.
type turn struct {
	user bool
	text string
}

// historyTurns converts a persisted transcript into provider turns. Loading
// placeholders and empty messages are skipped, and leading model turns (the
// welcome greeting) are dropped because providers expect a user turn first.
// Report replies get their report block back so the figures stay in context.
func historyTurns(history []model.ChatMessage) []turn {
	out := make([]turn, 0, len(history))
	for _, m := range history {
		if m.IsLoading || m.Text == "" {
			continue
		}
		isUser := m.Role == model.RoleUser
		if len(out) == 0 && !isUser {
			continue
		}
		out = append(out, turn{user: isUser, text: turnText(m)})
	}
	return out
}

func turnText(m model.ChatMessage) string {
	if !m.IsReport || m.ReportData == nil {
		return m.Text
	}
	b, err := json.Marshal(m.ReportData)
	if err != nil {
		return m.Text
	}
	return m.Text + "\n\n" + reportFenceOpen + string(b) + "\n```"
}
