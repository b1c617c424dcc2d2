package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

type jsonResponse struct {
	Query      string           `json:"query"`
	Period     period           `json:"period,omitzero"`
	AnswerText string           `json:"answer_text"`
	NextStep   string           `json:"next_step,omitempty"`
	ToolCalls  []toolCallRecord `json:"tool_calls,omitempty"`
}

func (r *Runner) writeResponse(resp response) error {
	if r.options.JSON {
		return r.writeJSONResponse(resp)
	}
	return r.writeHumanResponse(resp)
}

func (r *Runner) writeJSONResponse(resp response) error {
	payload := jsonResponse{
		Query:      resp.Query,
		Period:     resp.Period,
		AnswerText: strings.TrimSpace(resp.AnswerText),
		NextStep:   strings.TrimSpace(resp.NextStep),
		ToolCalls:  resp.ToolCalls,
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return json.NewEncoder(r.out).Encode(payload)
}

func (r *Runner) writeHumanResponse(resp response) error {
	var b strings.Builder
	answer := strings.TrimSpace(resp.AnswerText)
	if answer == "" {
		answer = "(empty response)"
	}
	fmt.Fprintf(&b, "%s\n", answer)

	if resp.Period.From != "" || resp.Period.To != "" {
		fmt.Fprintf(&b, "\nPeriod: %s - %s\n", orDash(resp.Period.From), orDash(resp.Period.To))
	}
	if len(resp.ToolCalls) > 0 {
		names := make([]string, 0, len(resp.ToolCalls))
		for _, call := range resp.ToolCalls {
			mark := ""
			if !call.OK {
				mark = " (failed)"
			}
			names = append(names, call.Name+mark)
		}
		fmt.Fprintf(&b, "Sources: %s\n", strings.Join(names, ", "))
	}
	if next := strings.TrimSpace(resp.NextStep); next != "" {
		fmt.Fprintf(&b, "Next step: %s\n", next)
	}

	r.print(b.String())
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func logResponse(logger *zap.Logger, resp response) {
	if logger == nil {
		return
	}
	logger.Info("response",
		zap.String("query", strings.TrimSpace(resp.Query)),
		zap.String("answer", strings.TrimSpace(resp.AnswerText)),
		zap.Int("tool_calls", len(resp.ToolCalls)),
		zap.String("next_step", strings.TrimSpace(resp.NextStep)),
		zap.Any("period", resp.Period),
	)
}
