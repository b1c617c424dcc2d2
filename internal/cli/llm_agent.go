package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"bi_dashboard/internal/llm"
	"bi_dashboard/internal/render"
	"bi_dashboard/internal/reports"
	"bi_dashboard/internal/table"

	openrouter "github.com/revrost/go-openrouter"
	"go.uber.org/zap"
)

const maxToolRounds = 4

func (r *Runner) systemPrompt(interactive bool) string {
	catalog := r.session.Catalog()
	lines := make([]string, 0, len(catalog.Names()))
	for _, rep := range catalog.All() {
		lines = append(lines, rep.Name()+": "+rep.Title())
	}
	return llm.SystemPrompt(lines, render.Period(r.session.Params()), interactive, time.Now())
}

func (r *Runner) handleQuery(ctx context.Context, query string, interactive bool, history *SessionHistory) error {
	params := r.session.Params()
	r.logger.Info("query received",
		zap.String("query", query),
		zap.String("from", formatDate(params.From)),
		zap.String("to", formatDate(params.To)),
		zap.Bool("json", r.options.JSON),
	)

	resp, err := r.runLLMAgent(ctx, query, interactive, history)
	if err != nil {
		return err
	}
	logResponse(r.logger, resp)
	return r.writeResponse(resp)
}

func (r *Runner) runLLMAgent(ctx context.Context, query string, interactive bool, history *SessionHistory) (response, error) {
	if r.llmClient == nil || !r.llmClient.Enabled() {
		return response{}, llm.ErrNotConfigured
	}

	var messages []openrouter.ChatCompletionMessage
	if history != nil {
		if len(history.GetMessages()) == 0 {
			history.Append(openrouter.SystemMessage(r.systemPrompt(interactive)))
		}
		history.Append(openrouter.UserMessage(query))
	} else {
		messages = []openrouter.ChatCompletionMessage{
			openrouter.SystemMessage(r.systemPrompt(interactive)),
			openrouter.UserMessage(query),
		}
	}

	base := response{Query: query, Period: periodOf(r.session.Params())}
	tools := llm.ToolSchemas()

	for round := 0; round < maxToolRounds; round++ {
		if history != nil {
			messages = history.GetMessages()
		}
		msg, err := r.llmClient.Complete(ctx, messages, tools)
		if err != nil {
			return response{}, err
		}

		if len(msg.ToolCalls) == 0 {
			if history != nil {
				history.Append(msg)
			}
			base.AnswerText = strings.TrimSpace(msg.Content.Text)
			return base, nil
		}

		toolMsgs, records := r.executeToolCalls(ctx, msg.ToolCalls)
		base.ToolCalls = append(base.ToolCalls, records...)
		if history != nil {
			history.Append(append([]openrouter.ChatCompletionMessage{msg}, toolMsgs...)...)
		} else {
			messages = append(messages, msg)
			messages = append(messages, toolMsgs...)
		}
	}

	base.AnswerText = "Could not finish the answer: too many tool steps."
	base.NextStep = "Narrow the question to one report or a shorter period."
	return base, nil
}

// executeToolCalls answers every call. A failed call becomes an error
// payload so the model can correct itself on the next round.
func (r *Runner) executeToolCalls(ctx context.Context, calls []llm.ToolCall) ([]openrouter.ChatCompletionMessage, []toolCallRecord) {
	toolMessages := make([]openrouter.ChatCompletionMessage, 0, len(calls))
	records := make([]toolCallRecord, 0, len(calls))

	for _, call := range calls {
		args := map[string]any{}
		if call.Function.Arguments != "" {
			if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
				record := toolCallRecord{
					Name: call.Function.Name,
					OK:   false,
					Err:  fmt.Sprintf("invalid tool args: %v", err),
				}
				records = append(records, record)
				logToolRecord(r.logger, record)
				toolMessages = append(toolMessages, openrouter.ToolMessage(call.ID, toolErrorPayload(record.Err)))
				continue
			}
		}

		result, record, err := r.dispatchToolCall(ctx, call.Function.Name, args)
		if err != nil {
			records = append(records, record)
			toolMessages = append(toolMessages, openrouter.ToolMessage(call.ID, toolErrorPayload(friendlyError(err))))
			continue
		}

		payload, err := json.Marshal(result)
		if err != nil {
			record.OK = false
			record.Err = err.Error()
			records = append(records, record)
			toolMessages = append(toolMessages, openrouter.ToolMessage(call.ID, toolErrorPayload(err.Error())))
			continue
		}
		records = append(records, record)
		toolMessages = append(toolMessages, openrouter.ToolMessage(call.ID, string(payload)))
	}

	return toolMessages, records
}

type queryResult struct {
	Report  string           `json:"report"`
	Title   string           `json:"title"`
	Period  period           `json:"period"`
	Total   int              `json:"total"`
	Matched int              `json:"matched"`
	Search  string           `json:"search,omitempty"`
	Sort    string           `json:"sort,omitempty"`
	Rows    []map[string]any `json:"rows"`
}

type summaryFigure struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

type summaryResult struct {
	Report  string          `json:"report"`
	Title   string          `json:"title"`
	Period  period          `json:"period"`
	Rows    int             `json:"rows"`
	Figures []summaryFigure `json:"figures"`
}

func (r *Runner) dispatchToolCall(ctx context.Context, name string, args map[string]any) (any, toolCallRecord, error) {
	switch name {
	case llm.ToolListReports:
		return trackCall(r.logger, name, args, func() ([]reportInfo, error) {
			return describeReports(r.session.Catalog()), nil
		})
	case llm.ToolQueryReport:
		return trackCall(r.logger, name, args, func() (queryResult, error) {
			return r.queryReport(ctx, args)
		})
	case llm.ToolGetReportSummary:
		return trackCall(r.logger, name, args, func() (summaryResult, error) {
			return r.reportSummary(ctx, args)
		})
	default:
		err := fmt.Errorf("unknown tool: %s", name)
		return nil, toolCallRecord{Name: name, Args: args, OK: false, Err: err.Error()}, err
	}
}

// fetchForTool loads a report for the assistant outside the session, so
// the open tab keeps its own data and period.
func (r *Runner) fetchForTool(ctx context.Context, args map[string]any) (*reports.Dataset, error) {
	name, _ := getStringArg(args, "report")
	if name == "" {
		return nil, errors.New("missing report")
	}
	rep, err := r.session.Catalog().Lookup(name)
	if err != nil {
		return nil, err
	}

	params := r.session.Params()
	from, err := getDateArg(args, "from")
	if err != nil {
		return nil, err
	}
	to, err := getDateArg(args, "to")
	if err != nil {
		return nil, err
	}
	if !from.IsZero() || !to.IsZero() {
		params = reports.Params{From: from, To: to}
	}
	return rep.Fetch(ctx, r.client, params)
}

func (r *Runner) queryReport(ctx context.Context, args map[string]any) (queryResult, error) {
	ds, err := r.fetchForTool(ctx, args)
	if err != nil {
		return queryResult{}, err
	}

	search, _ := getStringArg(args, "search")
	q := table.Query{Search: search, Sort: ds.DefaultSort()}
	if key, _ := getStringArg(args, "sort"); key != "" {
		h, ok := ds.Header(key)
		if !ok {
			return queryResult{}, fmt.Errorf("sort by %q: %w", key, table.ErrUnknownColumn)
		}
		q.Sort = table.SortState{Key: key, Desc: h.DefaultDesc}
		if _, set := args["desc"]; set {
			q.Sort.Desc = getBoolArg(args, "desc")
		}
	}
	frame, err := ds.Apply(q)
	if err != nil {
		return queryResult{}, err
	}

	rows := render.Rows(frame)
	if limit := clampLimit(getIntArg(args, "limit", defaultOutputLimit)); len(rows) > limit {
		rows = rows[:limit]
	}
	res := queryResult{
		Report:  ds.Report,
		Title:   ds.Title,
		Period:  periodOf(ds.Params),
		Total:   ds.Len(),
		Matched: frame.Len(),
		Search:  search,
		Rows:    rows,
	}
	if q.Sort.Key != "" {
		res.Sort = q.Sort.Key + " " + q.Sort.Direction()
	}
	return res, nil
}

func (r *Runner) reportSummary(ctx context.Context, args map[string]any) (summaryResult, error) {
	ds, err := r.fetchForTool(ctx, args)
	if err != nil {
		return summaryResult{}, err
	}
	res := summaryResult{
		Report: ds.Report,
		Title:  ds.Title,
		Period: periodOf(ds.Params),
		Rows:   ds.Len(),
	}
	if ds.Summary != nil {
		format := r.renderer.Formatter()
		for _, c := range ds.Summary.Cards() {
			res.Figures = append(res.Figures, summaryFigure{Label: c.Label, Value: format.Card(c)})
		}
	}
	return res, nil
}
