package intent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pebblebot/pebble/internal/config"
	"github.com/pebblebot/pebble/internal/data/apicache"
	"github.com/pebblebot/pebble/internal/metrics"
	"github.com/pebblebot/pebble/pkg/logger_i"
)

// Services wraps the ancillary HTTP APIs the bot can answer from directly:
// GitHub, WeatherAPI, NewsAPI and OneCompiler. All responses are rendered to
// chat-ready strings here; a missing credential degrades that one capability
// with a "not configured" reply instead of an error.
type Services struct {
	httpClient *http.Client
	cache      *apicache.Cache
	logger     *logger_i.Logger

	githubBase      string
	weatherBase     string
	newsBase        string
	onecompilerBase string

	githubToken      func() string
	weatherAPIKey    func() string
	newsAPIKey       func() string
	onecompilerToken func() string
}

func NewServices(cache *apicache.Cache) *Services {
	return &Services{
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        config.MaxIdleConns,
				MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
				IdleConnTimeout:     config.IdleConnTimeout,
			},
		},
		cache:  cache,
		logger: logger_i.NewLogger("API Services"),

		githubBase:      "https://api.github.com",
		weatherBase:     "http://api.weatherapi.com/v1",
		newsBase:        "https://newsapi.org/v2",
		onecompilerBase: "https://onecompiler.com/api/v1",

		githubToken:      config.GithubToken,
		weatherAPIKey:    config.WeatherAPIKey,
		newsAPIKey:       config.NewsAPIKey,
		onecompilerToken: config.OneCompilerToken,
	}
}

func (s *Services) getJSON(ctx context.Context, rawURL string, headers map[string]string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := s.httpClient.Do(req)
	metrics.CaptureExecutionMetrics("ancillary_api", time.Since(start))
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (s *Services) postJSON(ctx context.Context, rawURL string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := s.httpClient.Do(req)
	metrics.CaptureExecutionMetrics("ancillary_api", time.Since(start))
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// cached wraps a fetch with the response cache so repeated identical questions
// within the TTL never hit the upstream twice.
func (s *Services) cached(ctx context.Context, key string, fetch func() string) string {
	if hit, ok := s.cache.Get(ctx, key); ok {
		return hit
	}
	result := fetch()
	if !strings.HasPrefix(result, "❌") {
		s.cache.Set(ctx, key, result)
	}
	return result
}

// ---- GitHub ----

type githubRepo struct {
	FullName    string `json:"full_name"`
	Description string `json:"description"`
	Stars       int    `json:"stargazers_count"`
	Forks       int    `json:"forks_count"`
	Language    string `json:"language"`
	UpdatedAt   string `json:"updated_at"`
	HTMLURL     string `json:"html_url"`
}

type githubCommit struct {
	SHA    string `json:"sha"`
	Commit struct {
		Message string `json:"message"`
		Author  struct {
			Name string `json:"name"`
			Date string `json:"date"`
		} `json:"author"`
	} `json:"commit"`
}

type githubIssue struct {
	Number    int    `json:"number"`
	Title     string `json:"title"`
	CreatedAt string `json:"created_at"`
	User      struct {
		Login string `json:"login"`
	} `json:"user"`
	Labels []struct {
		Name string `json:"name"`
	} `json:"labels"`
}

func (s *Services) githubHeaders() map[string]string {
	return map[string]string{
		"Authorization": "token " + s.githubToken(),
		"Accept":        "application/vnd.github.v3+json",
	}
}

func (s *Services) GithubRepoInfo(ctx context.Context, repo string) string {
	if s.githubToken() == "" {
		return "❌ GitHub token not configured"
	}
	return s.cached(ctx, "github_repo:"+repo, func() string {
		var result githubRepo
		if err := s.getJSON(ctx, s.githubBase+"/repos/"+repo, s.githubHeaders(), &result); err != nil {
			return fmt.Sprintf("❌ Error fetching repo info: %v", err)
		}
		description := result.Description
		if description == "" {
			description = "No description"
		}
		language := result.Language
		if language == "" {
			language = "Unknown"
		}
		return fmt.Sprintf(`📁 **%s**
📝 %s
⭐ Stars: %d | 🍴 Forks: %d
🔗 Language: %s
📅 Updated: %s
🌐 URL: %s`,
			result.FullName, description, result.Stars, result.Forks,
			language, truncate(result.UpdatedAt, 10), result.HTMLURL)
	})
}

func (s *Services) GithubCommits(ctx context.Context, repo string, limit int) string {
	if s.githubToken() == "" {
		return "❌ GitHub token not configured"
	}
	return s.cached(ctx, fmt.Sprintf("github_commits:%s:%d", repo, limit), func() string {
		var commits []githubCommit
		rawURL := fmt.Sprintf("%s/repos/%s/commits?per_page=%d", s.githubBase, repo, limit)
		if err := s.getJSON(ctx, rawURL, s.githubHeaders(), &commits); err != nil {
			return fmt.Sprintf("❌ Error fetching commits: %v", err)
		}
		if len(commits) == 0 {
			return "📭 No commits found"
		}

		var sb strings.Builder
		fmt.Fprintf(&sb, "🔄 **Latest %d commits for %s:**\n\n", len(commits), repo)
		for _, c := range commits {
			firstLine := strings.SplitN(c.Commit.Message, "\n", 2)[0]
			fmt.Fprintf(&sb, "• **%s** by %s (%s)\n  %s\n\n",
				truncate(c.SHA, 7), c.Commit.Author.Name,
				truncate(c.Commit.Author.Date, 10), truncate(firstLine, 60))
		}
		return sb.String()
	})
}

func (s *Services) GithubIssues(ctx context.Context, repo string, limit int, state string) string {
	if s.githubToken() == "" {
		return "❌ GitHub token not configured"
	}
	return s.cached(ctx, fmt.Sprintf("github_issues:%s:%d:%s", repo, limit, state), func() string {
		var issues []githubIssue
		rawURL := fmt.Sprintf("%s/repos/%s/issues?state=%s&per_page=%d", s.githubBase, repo, state, limit)
		if err := s.getJSON(ctx, rawURL, s.githubHeaders(), &issues); err != nil {
			return fmt.Sprintf("❌ Error fetching issues: %v", err)
		}
		if len(issues) == 0 {
			return fmt.Sprintf("📭 No %s issues found", state)
		}

		var sb strings.Builder
		fmt.Fprintf(&sb, "🐛 **Latest %d %s issues for %s:**\n\n", len(issues), state, repo)
		for _, issue := range issues {
			title := issue.Title
			if len(title) > 50 {
				title = title[:50] + "..."
			}
			fmt.Fprintf(&sb, "• **#%d** %s\n  👤 by %s (%s)",
				issue.Number, title, issue.User.Login, truncate(issue.CreatedAt, 10))
			if len(issue.Labels) > 0 {
				names := make([]string, 0, 3)
				for _, l := range issue.Labels {
					names = append(names, l.Name)
					if len(names) == 3 {
						break
					}
				}
				fmt.Fprintf(&sb, " | 🏷️ %s", strings.Join(names, ", "))
			}
			sb.WriteString("\n\n")
		}
		return sb.String()
	})
}

// ---- WeatherAPI ----

type weatherLocation struct {
	Name      string `json:"name"`
	Country   string `json:"country"`
	Localtime string `json:"localtime"`
}

type weatherCurrent struct {
	Location weatherLocation `json:"location"`
	Current  struct {
		TempC     float64 `json:"temp_c"`
		TempF     float64 `json:"temp_f"`
		FeelsC    float64 `json:"feelslike_c"`
		FeelsF    float64 `json:"feelslike_f"`
		WindKph   float64 `json:"wind_kph"`
		WindDir   string  `json:"wind_dir"`
		Humidity  int     `json:"humidity"`
		VisKm     float64 `json:"vis_km"`
		Condition struct {
			Text string `json:"text"`
		} `json:"condition"`
	} `json:"current"`
}

type weatherForecast struct {
	Location weatherLocation `json:"location"`
	Forecast struct {
		ForecastDay []struct {
			Date string `json:"date"`
			Day  struct {
				MinTempC     float64 `json:"mintemp_c"`
				MaxTempC     float64 `json:"maxtemp_c"`
				ChanceOfRain int     `json:"daily_chance_of_rain"`
				Condition    struct {
					Text string `json:"text"`
				} `json:"condition"`
			} `json:"day"`
		} `json:"forecastday"`
	} `json:"forecast"`
}

func (s *Services) CurrentWeather(ctx context.Context, location string) string {
	if s.weatherAPIKey() == "" {
		return "❌ Weather API key not configured"
	}
	return s.cached(ctx, "weather_current:"+strings.ToLower(location), func() string {
		params := url.Values{"key": {s.weatherAPIKey()}, "q": {location}, "aqi": {"yes"}}
		var result weatherCurrent
		if err := s.getJSON(ctx, s.weatherBase+"/current.json?"+params.Encode(), nil, &result); err != nil {
			return fmt.Sprintf("❌ Error fetching weather: %v", err)
		}
		c := result.Current
		return fmt.Sprintf(`🌤️ **Weather for %s, %s**
🌡️ Temperature: %.1f°C (%.1f°F)
🌡️ Feels like: %.1f°C (%.1f°F)
☁️ Condition: %s
💨 Wind: %.1f km/h %s
💧 Humidity: %d%%
👁️ Visibility: %.1f km
📅 Local time: %s`,
			result.Location.Name, result.Location.Country,
			c.TempC, c.TempF, c.FeelsC, c.FeelsF, c.Condition.Text,
			c.WindKph, c.WindDir, c.Humidity, c.VisKm, result.Location.Localtime)
	})
}

func (s *Services) WeatherForecast(ctx context.Context, location string, days int) string {
	if s.weatherAPIKey() == "" {
		return "❌ Weather API key not configured"
	}
	if days > 10 {
		return "❌ Weather forecast is only available for up to 10 days"
	}
	if days < 1 {
		return "❌ Please specify at least 1 day for forecast"
	}
	return s.cached(ctx, fmt.Sprintf("weather_forecast:%s:%d", strings.ToLower(location), days), func() string {
		params := url.Values{
			"key":  {s.weatherAPIKey()},
			"q":    {location},
			"days": {strconv.Itoa(days)},
			"aqi":  {"no"},
		}
		var result weatherForecast
		if err := s.getJSON(ctx, s.weatherBase+"/forecast.json?"+params.Encode(), nil, &result); err != nil {
			return fmt.Sprintf("❌ Error fetching forecast: %v", err)
		}

		var sb strings.Builder
		fmt.Fprintf(&sb, "📅 **%d-day forecast for %s, %s**\n\n",
			days, result.Location.Name, result.Location.Country)
		for _, day := range result.Forecast.ForecastDay {
			fmt.Fprintf(&sb, "**%s**\n🌡️ %.1f°C - %.1f°C\n☁️ %s\n🌧️ Rain chance: %d%%\n\n",
				day.Date, day.Day.MinTempC, day.Day.MaxTempC,
				day.Day.Condition.Text, day.Day.ChanceOfRain)
		}
		return sb.String()
	})
}

// ---- NewsAPI ----

type newsResponse struct {
	Articles []struct {
		Title       string `json:"title"`
		URL         string `json:"url"`
		PublishedAt string `json:"publishedAt"`
		Source      struct {
			Name string `json:"name"`
		} `json:"source"`
	} `json:"articles"`
}

func renderArticles(sb *strings.Builder, result newsResponse) {
	for i, article := range result.Articles {
		published := "Unknown"
		if article.PublishedAt != "" {
			published = truncate(article.PublishedAt, 10)
		}
		fmt.Fprintf(sb, "**%d. %s**\n📡 Source: %s | 📅 %s\n🔗 [Read more](%s)\n\n",
			i+1, article.Title, article.Source.Name, published, article.URL)
	}
}

func (s *Services) LatestNews(ctx context.Context, category, country string, limit int) string {
	if s.newsAPIKey() == "" {
		return "❌ News API key not configured"
	}
	return s.cached(ctx, fmt.Sprintf("news_latest:%s:%s:%d", category, country, limit), func() string {
		params := url.Values{
			"apiKey":   {s.newsAPIKey()},
			"category": {category},
			"country":  {country},
			"pageSize": {strconv.Itoa(limit)},
		}
		var result newsResponse
		if err := s.getJSON(ctx, s.newsBase+"/top-headlines?"+params.Encode(), nil, &result); err != nil {
			return fmt.Sprintf("❌ Error fetching news: %v", err)
		}
		if len(result.Articles) == 0 {
			return "📰 No news articles found"
		}

		var sb strings.Builder
		fmt.Fprintf(&sb, "📰 **Latest %s News:**\n\n", strings.Title(category))
		renderArticles(&sb, result)
		return sb.String()
	})
}

func (s *Services) SearchNews(ctx context.Context, query string, limit int) string {
	if s.newsAPIKey() == "" {
		return "❌ News API key not configured"
	}
	return s.cached(ctx, fmt.Sprintf("news_search:%s:%d", strings.ToLower(query), limit), func() string {
		params := url.Values{
			"apiKey":   {s.newsAPIKey()},
			"q":        {query},
			"sortBy":   {"publishedAt"},
			"pageSize": {strconv.Itoa(limit)},
			"language": {"en"},
		}
		var result newsResponse
		if err := s.getJSON(ctx, s.newsBase+"/everything?"+params.Encode(), nil, &result); err != nil {
			return fmt.Sprintf("❌ Error searching news: %v", err)
		}
		if len(result.Articles) == 0 {
			return fmt.Sprintf("📰 No news articles found for '%s'", query)
		}

		var sb strings.Builder
		fmt.Fprintf(&sb, "🔍 **Search results for '%s':**\n\n", query)
		renderArticles(&sb, result)
		return sb.String()
	})
}

// ---- OneCompiler ----

var languageAliases = map[string]string{
	"py": "python", "js": "javascript", "c++": "cpp", "c#": "csharp", "cs": "csharp",
}

var languageFilenames = map[string]string{
	"python": "main.py", "javascript": "main.js", "java": "Main.java",
	"cpp": "main.cpp", "c": "main.c", "csharp": "main.cs", "go": "main.go",
	"rust": "main.rs", "php": "main.php", "ruby": "main.rb", "swift": "main.swift",
	"kotlin": "main.kt", "scala": "main.scala", "r": "main.r",
}

type codeRunResult struct {
	Stdout            string `json:"stdout"`
	Stderr            string `json:"stderr"`
	CompilationOutput string `json:"compilationOutput"`
	ExecutionTime     int    `json:"executionTime"`
	MemoryUsage       int    `json:"memoryUsage"`
}

// ExecuteCode is never cached: runs are side-effectful by definition.
func (s *Services) ExecuteCode(ctx context.Context, language, code, stdin string) string {
	if s.onecompilerToken() == "" {
		return "❌ OneCompiler token not configured"
	}

	langCode := strings.ToLower(language)
	if canonical, ok := languageAliases[langCode]; ok {
		langCode = canonical
	}
	filename, ok := languageFilenames[langCode]
	if !ok {
		filename = "main.txt"
	}

	payload := map[string]any{
		"language": langCode,
		"stdin":    stdin,
		"files": []map[string]string{
			{"name": filename, "content": code},
		},
	}

	var result codeRunResult
	runURL := fmt.Sprintf("%s/run?access_token=%s", s.onecompilerBase, url.QueryEscape(s.onecompilerToken()))
	if err := s.postJSON(ctx, runURL, payload, &result); err != nil {
		return fmt.Sprintf("❌ Error executing code: %v", err)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "💻 **Code Execution Result (%s)**\n\n", langCode)
	if result.Stdout != "" {
		fmt.Fprintf(&sb, "**Output:**\n```\n%s\n```\n\n", result.Stdout)
	}
	if result.Stderr != "" {
		fmt.Fprintf(&sb, "**Errors:**\n```\n%s\n```\n\n", result.Stderr)
	}
	if result.CompilationOutput != "" {
		fmt.Fprintf(&sb, "**Compilation:**\n```\n%s\n```\n\n", result.CompilationOutput)
	}
	if result.ExecutionTime > 0 {
		fmt.Fprintf(&sb, "⏱️ Execution time: %dms\n", result.ExecutionTime)
	}
	if result.MemoryUsage > 0 {
		fmt.Fprintf(&sb, "💾 Memory usage: %dKB\n", result.MemoryUsage)
	}
	return sb.String()
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
