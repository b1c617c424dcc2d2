package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"bi_dashboard/internal/config"
	"bi_dashboard/internal/export"

	"github.com/spf13/pflag"
)

const appName = "bi-dashboard"

const (
	cmdReports   = "reports"
	cmdShow      = "show"
	cmdExport    = "export"
	cmdDashboard = "dashboard"
	cmdRaw       = "raw"
	cmdREPL      = "repl"
	cmdAsk       = "ask"
)

const usage = `Usage: bi-dashboard [flags] <command> [args]

Commands:
  reports                  list the available reports
  show <report>            fetch a report and print its cards and table
  export <report>          write the report view to CSV or XLSX
  dashboard [reports...]   load several reports at once (all by default)
  raw <path>               fetch any endpoint and print it as a table
  repl                     interactive session (default)
  ask <question>           ask the assistant about the reports

Flags:
`

type Options struct {
	Command string
	Args    []string

	BaseURL    string
	Token      string
	TokenFile  string
	From       string
	To         string
	Search     string
	Sort       string
	Asc        bool
	Desc       bool
	Format     string
	Out        string
	Limit      int
	JSON       bool
	Debug      bool
	LogFile    string
	Timeout    time.Duration
	LLMBaseURL string
	LLMAPIKey  string
	LLMModel   string

	set map[string]bool
}

// ParseArgs reads flags and the command. Flags left unset keep the values
// loaded from the environment; see Apply.
func ParseArgs(args []string, stderr io.Writer) (Options, error) {
	var opts Options

	fs := pflag.NewFlagSet(appName, pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.SortFlags = false
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}

	fs.StringVar(&opts.BaseURL, "base-url", "", "reporting API base URL (API_BASE_URL)")
	fs.StringVar(&opts.Token, "token", "", "API bearer token (API_TOKEN)")
	fs.StringVar(&opts.TokenFile, "token-file", "", "file holding the API token, re-read on every request (TOKEN_FILE)")
	fs.StringVar(&opts.From, "from", "", "start date, YYYY-MM-DD")
	fs.StringVar(&opts.To, "to", "", "end date, YYYY-MM-DD")
	fs.StringVarP(&opts.Search, "search", "s", "", "case-insensitive search over the report's search fields")
	fs.StringVar(&opts.Sort, "sort", "", "column key to sort by, in its natural direction unless --asc/--desc")
	fs.BoolVar(&opts.Asc, "asc", false, "sort ascending")
	fs.BoolVar(&opts.Desc, "desc", false, "sort descending")
	fs.StringVarP(&opts.Format, "format", "f", "", "export format: csv or xlsx (default from --out, else csv)")
	fs.StringVarP(&opts.Out, "out", "o", "", "export file path (default <report>_<from>_<to>_<today>.<ext> in EXPORT_DIR)")
	fs.IntVarP(&opts.Limit, "limit", "n", 0, "rows to print, 0 for all")
	fs.BoolVar(&opts.JSON, "json", false, "output JSON")
	fs.BoolVar(&opts.Debug, "debug", false, "enable debug logging (DEBUG)")
	fs.StringVar(&opts.LogFile, "log-file", "", "log file path (LOG_FILE)")
	fs.DurationVar(&opts.Timeout, "timeout", 0, "HTTP timeout, e.g. 30s (TIMEOUT)")
	fs.StringVar(&opts.LLMBaseURL, "llm-base-url", "", "LLM base URL (LLM_BASE_URL)")
	fs.StringVar(&opts.LLMAPIKey, "llm-api-key", "", "LLM API key (LLM_API_KEY)")
	fs.StringVar(&opts.LLMModel, "llm-model", "", "LLM model (LLM_MODEL)")

	if err := fs.Parse(args); err != nil {
		return Options{}, err
	}

	opts.set = map[string]bool{}
	fs.Visit(func(f *pflag.Flag) {
		opts.set[f.Name] = true
	})

	rest := fs.Args()
	opts.Command = cmdREPL
	if len(rest) > 0 {
		opts.Command = strings.ToLower(rest[0])
		opts.Args = rest[1:]
	}
	if err := opts.validate(); err != nil {
		return Options{}, err
	}
	return opts, nil
}

func (o Options) validate() error {
	switch o.Command {
	case cmdShow, cmdExport:
		if len(o.Args) != 1 {
			return fmt.Errorf("%s needs exactly one report name", o.Command)
		}
	case cmdRaw:
		if len(o.Args) != 1 {
			return errors.New("raw needs exactly one endpoint path")
		}
	case cmdAsk:
		if strings.TrimSpace(strings.Join(o.Args, " ")) == "" {
			return errors.New("ask needs a question")
		}
	case cmdReports, cmdREPL:
		if len(o.Args) > 0 {
			return fmt.Errorf("%s takes no arguments", o.Command)
		}
	case cmdDashboard:
	default:
		return fmt.Errorf("unknown command %q (run with --help)", o.Command)
	}

	if o.Asc && o.Desc {
		return errors.New("--asc and --desc are mutually exclusive")
	}
	if o.Limit < 0 {
		return errors.New("--limit must not be negative")
	}
	if o.Format != "" {
		if _, err := export.ParseFormat(o.Format); err != nil {
			return err
		}
	}
	if _, _, err := o.period(); err != nil {
		return err
	}
	return nil
}

// Apply overrides cfg with the flags given on the command line.
func (o Options) Apply(cfg config.Config) config.Config {
	if o.set["base-url"] {
		cfg.APIBaseURL = o.BaseURL
	}
	if o.set["token"] {
		cfg.APIToken = o.Token
	}
	if o.set["token-file"] {
		cfg.TokenFile = o.TokenFile
	}
	if o.set["debug"] {
		cfg.Debug = o.Debug
	}
	if o.set["log-file"] {
		cfg.LogFile = o.LogFile
	}
	if o.set["timeout"] && o.Timeout > 0 {
		cfg.Timeout = o.Timeout
	}
	if o.set["llm-base-url"] {
		cfg.LLMBaseURL = o.LLMBaseURL
	}
	if o.set["llm-api-key"] {
		cfg.LLMAPIKey = o.LLMAPIKey
	}
	if o.set["llm-model"] {
		cfg.LLMModel = o.LLMModel
	}
	return cfg
}

// period parses --from and --to. Either may be empty for an open range.
func (o Options) period() (time.Time, time.Time, error) {
	var from, to time.Time
	var err error
	if o.From != "" {
		if from, err = parseDate(o.From); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --from date: %w", err)
		}
	}
	if o.To != "" {
		if to, err = parseDate(o.To); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --to date: %w", err)
		}
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return time.Time{}, time.Time{}, errors.New("--to must not be before --from")
	}
	return from, to, nil
}

// exportFormat picks --format, then the extension of --out, then CSV.
func (o Options) exportFormat() export.Format {
	if o.Format != "" {
		if f, err := export.ParseFormat(o.Format); err == nil {
			return f
		}
	}
	if i := strings.LastIndex(o.Out, "."); i >= 0 {
		if f, err := export.ParseFormat(o.Out[i:]); err == nil {
			return f
		}
	}
	return export.FormatCSV
}
