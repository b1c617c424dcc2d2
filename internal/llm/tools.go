package llm

import openrouter "github.com/revrost/go-openrouter"

type ToolCall = openrouter.ToolCall

const (
	ToolListReports      = "ListReports"
	ToolQueryReport      = "QueryReport"
	ToolGetReportSummary = "GetReportSummary"
)

func ToolSchemas() []openrouter.Tool {
	return []openrouter.Tool{
		listReportsTool(),
		queryReportTool(),
		getReportSummaryTool(),
	}
}

var dateParams = map[string]any{
	"from": map[string]any{
		"type":        "string",
		"format":      "date",
		"description": "Start of the reporting period, YYYY-MM-DD. Omit to use the period currently selected in the dashboard.",
	},
	"to": map[string]any{
		"type":        "string",
		"format":      "date",
		"description": "End of the reporting period, YYYY-MM-DD. Omit to use the period currently selected in the dashboard.",
	},
}

func withDates(props map[string]any) map[string]any {
	for k, v := range dateParams {
		props[k] = v
	}
	return props
}

func listReportsTool() openrouter.Tool {
	return openrouter.Tool{
		Type: openrouter.ToolTypeFunction,
		Function: &openrouter.FunctionDefinition{
			Name:        ToolListReports,
			Description: "List the available reports. Returns name, title, columns (key, title, kind) and the default sort of each report. Call this first when unsure which report answers the question.",
			Parameters: map[string]any{
				"type":                 "object",
				"properties":           map[string]any{},
				"additionalProperties": false,
			},
		},
	}
}

func queryReportTool() openrouter.Tool {
	return openrouter.Tool{
		Type: openrouter.ToolTypeFunction,
		Function: &openrouter.FunctionDefinition{
			Name:        ToolQueryReport,
			Description: "Fetch a report and return its rows after an optional case-insensitive substring search and a sort. Returns total rows, matched rows and up to `limit` rows as objects keyed by column. Money values are plain decimals in the configured currency.",
			Parameters: map[string]any{
				"type": "object",
				"properties": withDates(map[string]any{
					"report": map[string]any{
						"type":        "string",
						"description": "Report name as returned by ListReports, e.g. 'sales-by-customer'.",
					},
					"search": map[string]any{
						"type":        "string",
						"description": "Optional text matched against the report's search fields (e.g. customer name, invoice number).",
					},
					"sort": map[string]any{
						"type":        "string",
						"description": "Optional column key to sort by. Omit to use the report's default sort.",
					},
					"desc": map[string]any{
						"type":        "boolean",
						"description": "Sort descending. Only used together with sort; omit to use the column's natural direction (amounts and dates descending, names ascending).",
					},
					"limit": map[string]any{
						"type":        "integer",
						"description": "Maximum rows to return (default: 10, max: 50).",
					},
				}),
				"required":             []string{"report"},
				"additionalProperties": false,
			},
		},
	}
}

func getReportSummaryTool() openrouter.Tool {
	return openrouter.Tool{
		Type: openrouter.ToolTypeFunction,
		Function: &openrouter.FunctionDefinition{
			Name:        ToolGetReportSummary,
			Description: "Return the headline figures of a report (totals, counts, rates) as computed by the server, plus the row count. Much cheaper than QueryReport for 'how much' or 'how many' questions.",
			Parameters: map[string]any{
				"type": "object",
				"properties": withDates(map[string]any{
					"report": map[string]any{
						"type":        "string",
						"description": "Report name as returned by ListReports.",
					},
				}),
				"required":             []string{"report"},
				"additionalProperties": false,
			},
		},
	}
}
