package intent

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/pebblebot/pebble/internal/metrics"
	"github.com/pebblebot/pebble/pkg/logger_i"
)

const repoPattern = `([a-zA-Z0-9_.-]+/[a-zA-Z0-9_.-]+)`

// rules are checked in order; the first pattern that matches wins and the
// message never reaches the LLM. Broad patterns (plain "news about X") sit
// below the specific ones, so keep the order when adding rules.
type rule struct {
	function string
	patterns []*regexp.Regexp
	handle   func(d *Dispatcher, ctx context.Context, groups []string, message, fullMessage string) string
}

func compileAll(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(`(?i)` + p)
	}
	return out
}

var rules = []rule{
	{
		function: "github_repo_info",
		patterns: compileAll(
			`(?:info|details|about)\s+(?:github\s+)?repo(?:sitory)?\s+`+repoPattern,
			`(?:show|get|fetch)\s+(?:github\s+)?repo(?:sitory)?\s+`+repoPattern,
			`tell me about\s+(?:the\s+)?(?:github\s+)?repo(?:sitory)?\s+`+repoPattern,
		),
		handle: func(d *Dispatcher, ctx context.Context, groups []string, message, _ string) string {
			return d.services.GithubRepoInfo(ctx, groups[0])
		},
	},
	{
		function: "github_commits",
		patterns: compileAll(
			`(?:latest|recent)\s+commits?\s+(?:for|from|in)\s+`+repoPattern,
			`(?:show|get|fetch)\s+commits?\s+(?:for|from|in)\s+`+repoPattern,
			`(?:what are the\s+)?(?:latest|recent)\s+changes?\s+(?:to|in)\s+`+repoPattern,
			`commit history\s+(?:for|of)\s+`+repoPattern,
		),
		handle: func(d *Dispatcher, ctx context.Context, groups []string, message, _ string) string {
			return d.services.GithubCommits(ctx, groups[0], extractLimit(message, `(\d+)\s+commits?`))
		},
	},
	{
		function: "github_issues",
		patterns: compileAll(
			`(?:latest|recent|open)\s+issues?\s+(?:for|from|in)\s+`+repoPattern,
			`(?:show|get|fetch)\s+issues?\s+(?:for|from|in)\s+`+repoPattern,
			`(?:what are the\s+)?issues?\s+(?:in|with)\s+`+repoPattern,
		),
		handle: func(d *Dispatcher, ctx context.Context, groups []string, message, _ string) string {
			state := "open"
			if strings.Contains(strings.ToLower(message), "closed") {
				state = "closed"
			}
			return d.services.GithubIssues(ctx, groups[0], extractLimit(message, `(\d+)\s+issues?`), state)
		},
	},
	{
		function: "current_weather",
		patterns: compileAll(
			`(?:what(?:'s| is)\s+the\s+)?(?:current\s+)?weather\s+(?:in|for|at)\s+([^?]+?)(?:\?|$)`,
			`(?:how(?:'s| is)\s+the\s+)?weather\s+(?:in|for|at)\s+([^?]+?)(?:\?|$)`,
			`(?:tell me\s+)?(?:the\s+)?weather\s+(?:for|in)\s+([^?]+?)(?:\?|$)`,
		),
		handle: func(d *Dispatcher, ctx context.Context, groups []string, _, _ string) string {
			return d.services.CurrentWeather(ctx, strings.TrimSpace(groups[0]))
		},
	},
	{
		function: "weather_forecast",
		patterns: compileAll(
			`(?:weather\s+)?forecast\s+(?:for\s+)?([^?]+?)(?:\s+for\s+(\d+)\s+days?)?(?:\?|$)`,
			`(\d+)[\s-]day\s+forecast\s+(?:for\s+)?([^?]+?)(?:\?|$)`,
			`weather\s+(?:for\s+)?(?:the\s+)?(?:next\s+)?(\d+)\s+days?\s+(?:in\s+)?([^?]+?)(?:\?|$)`,
		),
		handle: func(d *Dispatcher, ctx context.Context, groups []string, _, _ string) string {
			location := ""
			days := 3
			// a group holding digits is the day count, anything else the place
			for _, g := range groups {
				g = strings.TrimSpace(g)
				if g == "" {
					continue
				}
				if n, err := strconv.Atoi(g); err == nil {
					if n > 10 {
						n = 10
					}
					days = n
				} else {
					location = g
				}
			}
			if location == "" {
				return "❌ Please specify a location for the weather forecast"
			}
			return d.services.WeatherForecast(ctx, location, days)
		},
	},
	{
		function: "latest_news",
		patterns: compileAll(
			`(?:latest|recent|current)\s+(?:(tech|technology|sports|business|health|science|entertainment|general)\s+)?news`,
			`(?:show|get|fetch)\s+me\s+(?:the\s+)?(?:latest|recent)\s+(?:(tech|technology|sports|business|health|science|entertainment|general)\s+)?news`,
		),
		handle: func(d *Dispatcher, ctx context.Context, groups []string, message, _ string) string {
			category := "general"
			if len(groups) > 0 && groups[0] != "" {
				category = strings.ToLower(groups[0])
			}
			if category == "tech" {
				category = "technology"
			}
			return d.services.LatestNews(ctx, category, "us", extractLimit(message, `(\d+)\s+(?:news|articles?|headlines?)`))
		},
	},
	{
		function: "search_news",
		patterns: compileAll(
			`(?:search|find)\s+news\s+(?:about\s+)?([^?]+?)(?:\?|$)`,
			`(?:what(?:'s| is)\s+)?(?:the\s+)?news\s+(?:on|about)\s+([^?]+?)(?:\?|$)`,
		),
		handle: func(d *Dispatcher, ctx context.Context, groups []string, message, _ string) string {
			return d.services.SearchNews(ctx, strings.TrimSpace(groups[0]),
				extractLimit(message, `(\d+)\s+(?:articles?|results?|headlines?)`))
		},
	},
	{
		function: "execute_code",
		patterns: compileAll(
			`(?:run|execute)\s+(?:this\s+)?(?:(python|javascript|java|cpp|c\+\+|c|csharp|c#|go|rust|php|ruby|swift|kotlin|scala|r)\s+)?code`,
			`(?:can you\s+)?(?:run|execute)\s+(?:this\s+)?(?:(python|javascript|java|cpp|c\+\+|c|csharp|c#|go|rust|php|ruby|swift|kotlin|scala|r)\s+)?(?:code|script|program)`,
			`(?:test|try)\s+(?:this\s+)?(?:(python|javascript|java|cpp|c\+\+|c|csharp|c#|go|rust|php|ruby|swift|kotlin|scala|r)\s+)?code`,
		),
		handle: func(d *Dispatcher, ctx context.Context, groups []string, message, fullMessage string) string {
			language := ""
			if len(groups) > 0 {
				language = groups[0]
			}
			return d.runCode(ctx, language, message, fullMessage)
		},
	},
}

var (
	codeBlockRe = regexp.MustCompile("(?s)```(?:(\\w+)\\s*)?\n(.*?)\n```")
	inlineCode  = regexp.MustCompile(`(?is)(?:code|script|program):\s*(.+)`)
	stdinRe     = regexp.MustCompile(`(?i)(?:input|stdin):\s*(.+)`)
)

// Dispatcher short-circuits messages that match a known tool pattern before
// they ever reach the LLM.
type Dispatcher struct {
	services *Services
	logger   *logger_i.Logger
}

func NewDispatcher(services *Services) *Dispatcher {
	return &Dispatcher{services: services, logger: logger_i.NewLogger("Intent Dispatcher")}
}

// Dispatch returns the tool response and true on a match; "" and false when
// the message carries no recognizable intent. fullMessage keeps the original
// casing so code blocks survive intact.
func (d *Dispatcher) Dispatch(ctx context.Context, message string) (string, bool) {
	lowered := strings.ToLower(strings.TrimSpace(message))

	for _, r := range rules {
		for _, pattern := range r.patterns {
			m := pattern.FindStringSubmatch(lowered)
			if m == nil {
				continue
			}
			d.logger.Info("intent matched", "function", r.function)
			metrics.CountIntentHit(r.function)
			return r.handle(d, ctx, m[1:], lowered, message), true
		}
	}
	return "", false
}

func (d *Dispatcher) runCode(ctx context.Context, language, message, fullMessage string) string {
	code := ""
	stdin := ""

	if m := codeBlockRe.FindStringSubmatch(fullMessage); m != nil {
		if m[1] != "" && language == "" {
			language = m[1]
		}
		code = m[2]
	}
	if code == "" {
		if m := inlineCode.FindStringSubmatch(message); m != nil {
			code = strings.TrimSpace(m[1])
		}
	}
	if code == "" {
		return "❌ Please provide the code to execute. Use code blocks (```language\\ncode\\n```) for best results."
	}
	if language == "" {
		language = "python"
	}
	if m := stdinRe.FindStringSubmatch(message); m != nil {
		stdin = strings.TrimSpace(m[1])
	}
	return d.services.ExecuteCode(ctx, language, code, stdin)
}

// extractLimit pulls an explicit count out of the message, capped at 10.
func extractLimit(message, pattern string) int {
	limit := 5
	if m := regexp.MustCompile(pattern).FindStringSubmatch(message); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			limit = n
			if limit > 10 {
				limit = 10
			}
		}
	}
	return limit
}
