package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"bi_dashboard/internal/dashboard"
	"bi_dashboard/internal/export"
	"bi_dashboard/internal/render"
	"bi_dashboard/internal/reports"

	openrouter "github.com/revrost/go-openrouter"
	"go.uber.org/zap"
)

const replHelp = `Commands:
  tab <report>             open a report ('reports' lists them)
  search [term]            filter rows, no term clears the search
  sort <key> [asc|desc]    sort by a column, repeating the key flips it
  expand <id>              show one row in full, again to close it
  range <from> <to>        set the period (YYYY-MM-DD, '-' for open), 'range clear' resets
  refresh                  fetch the open report again
  show                     print the open report
  export csv|xlsx [path]   export the rows on screen
  dashboard [reports...]   load several reports at once
  reports                  list the reports
  ask <question>           ask the assistant
  /history, /clear         show or clear the assistant history
  exit
`

func (r *Runner) runREPL(ctx context.Context) error {
	scanner := bufio.NewScanner(r.in)
	history := NewSessionHistory(defaultHistoryMaxMessages, defaultHistoryMaxTokens, r.logger)
	r.print("BI dashboard (type 'help' for commands, 'exit' to quit)\n")

	for {
		if ctx.Err() != nil {
			return nil
		}
		r.print("> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		quit, err := r.replCommand(ctx, history, scanner.Text())
		if err != nil {
			r.logger.Debug("repl command failed", zap.Error(err))
			r.printError(err)
		}
		if quit {
			return nil
		}
	}
}

func splitCommand(line string) (string, string) {
	cmd, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	return strings.ToLower(cmd), strings.TrimSpace(arg)
}

// replCommand runs one line of input. Errors are for the user; the loop
// keeps going.
func (r *Runner) replCommand(ctx context.Context, history *SessionHistory, line string) (bool, error) {
	cmd, arg := splitCommand(line)
	switch cmd {
	case "":
	case "exit", "quit":
		return true, nil
	case "help", "?":
		r.print(replHelp)
	case "reports":
		return false, r.runReports()
	case "tab", "open":
		if arg == "" {
			return false, errors.New("usage: tab <report>")
		}
		if _, err := r.session.Catalog().Lookup(arg); err != nil {
			return false, err
		}
		r.afterLoad(r.session.SetTab(ctx, arg))
	case "search":
		r.session.SetSearch(arg)
		return false, r.printView()
	case "sort":
		return false, r.sortCommand(arg)
	case "expand":
		if arg == "" {
			return false, errors.New("usage: expand <id>")
		}
		if _, err := r.session.Expand(arg); err != nil {
			return false, err
		}
		return false, r.printView()
	case "range":
		from, to, err := parseRange(arg)
		if err != nil {
			return false, err
		}
		if err := (reports.Params{From: from, To: to}).Validate(); err != nil {
			return false, err
		}
		err = r.session.SetRange(ctx, from, to)
		history.SetSystemPrompt(r.systemPrompt(true))
		if r.session.Tab() == "" {
			r.printf("Period: %s\n", periodLabel(r.session.Params()))
			return false, err
		}
		r.afterLoad(err)
	case "refresh":
		if r.session.Tab() == "" {
			return false, dashboard.ErrNoTab
		}
		r.afterLoad(r.session.Refresh(ctx))
	case "show", "view":
		return false, r.printView()
	case "export":
		name, path, _ := strings.Cut(arg, " ")
		if name == "" {
			return false, errors.New("usage: export csv|xlsx [path]")
		}
		format, err := export.ParseFormat(name)
		if err != nil {
			return false, err
		}
		return false, r.exportView(format, strings.TrimSpace(path))
	case "dashboard":
		return false, r.runDashboard(ctx, strings.Fields(arg))
	case "ask":
		if arg == "" {
			return false, errors.New("usage: ask <question>")
		}
		return false, r.handleQuery(ctx, arg, true, history)
	case "/history":
		r.printHistory(history)
	case "/clear":
		history.Reset(r.systemPrompt(true))
		r.print("History cleared.\n")
	default:
		return false, fmt.Errorf("unknown command %q, type 'help'", cmd)
	}
	return false, nil
}

func (r *Runner) sortCommand(arg string) error {
	fields := strings.Fields(arg)
	if len(fields) == 0 || len(fields) > 2 {
		return errors.New("usage: sort <key> [asc|desc]")
	}
	key := fields[0]
	var err error
	switch {
	case len(fields) == 1:
		_, err = r.session.ToggleSort(key)
	case strings.EqualFold(fields[1], "asc"):
		_, err = r.session.SetSort(key, false)
	case strings.EqualFold(fields[1], "desc"):
		_, err = r.session.SetSort(key, true)
	default:
		return fmt.Errorf("sort direction must be asc or desc, not %q", fields[1])
	}
	if err != nil {
		return err
	}
	return r.printView()
}

// parseRange reads "<from> <to>" where either side may be "-". An empty
// argument or "clear" drops the period.
func parseRange(arg string) (time.Time, time.Time, error) {
	fields := strings.Fields(arg)
	if len(fields) == 0 || (len(fields) == 1 && strings.EqualFold(fields[0], "clear")) {
		return time.Time{}, time.Time{}, nil
	}
	if len(fields) != 2 {
		return time.Time{}, time.Time{}, errors.New("usage: range <from> <to>")
	}
	var bounds [2]time.Time
	for i, field := range fields {
		if field == "-" {
			continue
		}
		parsed, err := parseDate(field)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", field)
		}
		bounds[i] = parsed
	}
	return bounds[0], bounds[1], nil
}

func periodLabel(p reports.Params) string {
	if label := render.Period(p); label != "" {
		return label
	}
	return "all time"
}

// afterLoad prints the active view after a fetch. A load failure is already
// part of the view; other errors are printed on their own.
func (r *Runner) afterLoad(err error) {
	v, verr := r.session.View()
	if verr != nil {
		if err != nil {
			r.printError(err)
		}
		return
	}
	r.writeView(v)
	if err != nil && (v.State.Err == nil || !errors.Is(err, v.State.Err)) {
		r.printError(err)
	}
}

func (r *Runner) printView() error {
	v, err := r.session.View()
	if err != nil {
		return err
	}
	r.writeView(v)
	return nil
}

func (r *Runner) writeView(v dashboard.View) {
	ds := v.State.Data
	title := v.Tab
	if rep, err := r.session.Catalog().Lookup(v.Tab); err == nil {
		title = rep.Title()
	}
	if v.State.Loading {
		r.print(title + ": loading...\n")
	}
	if v.State.Error != "" {
		r.print(r.renderer.Error(title, v.State.Error))
	}
	if ds == nil {
		return
	}
	if r.options.JSON {
		_ = render.WriteJSON(r.out, r.renderer.ReportJSON(ds, v.Frame))
		return
	}
	r.print(r.renderer.Report(ds, v.Frame, r.options.Limit))
	if v.Detail.Len() > 0 {
		r.print("\n" + r.renderer.Detail(v.Detail))
	}
}

func (r *Runner) exportView(format export.Format, path string) error {
	v, err := r.session.View()
	if err != nil {
		return err
	}
	written, err := r.session.Export(format, path)
	if err != nil {
		return err
	}
	res := exportResult{Report: v.Tab, Path: written, Rows: v.Frame.Len(), Format: string(format)}
	if r.options.JSON {
		return render.WriteJSON(r.out, res)
	}
	r.printf("Exported %d rows to %s\n", res.Rows, res.Path)
	return nil
}

func (r *Runner) printHistory(history *SessionHistory) {
	messages := history.GetMessages()
	if len(messages) == 0 {
		r.print("History is empty.\n")
		return
	}
	r.printf("History (%d messages, ~%d tokens):\n", len(messages), history.TokenCount())
	for i, msg := range messages {
		preview := messagePreview(msg)
		if preview == "" {
			preview = "(empty)"
		}
		r.printf("%d) %s: %s\n", i+1, msg.Role, preview)
	}
}

func messagePreview(msg openrouter.ChatCompletionMessage) string {
	text := strings.TrimSpace(msg.Content.Text)
	if text == "" && len(msg.Content.Multi) > 0 {
		for _, part := range msg.Content.Multi {
			if strings.TrimSpace(part.Text) != "" {
				text = strings.TrimSpace(part.Text)
				break
			}
		}
	}
	if text == "" && len(msg.ToolCalls) > 0 {
		names := make([]string, 0, len(msg.ToolCalls))
		for _, call := range msg.ToolCalls {
			names = append(names, call.Function.Name)
		}
		text = "calls " + strings.Join(names, ", ")
	}
	const maxLen = 120
	if len([]rune(text)) <= maxLen {
		return text
	}
	return string([]rune(text)[:maxLen]) + "..."
}
