// Package guidance produces the coaching content shown while a mission
// runs. Content comes from an OpenAI-compatible chat completion endpoint
// when a key is configured, with a built-in catalog covering every
// category and difficulty when it is not.
package guidance

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/evolua/backend/internal/mission"
)

const defaultEndpoint = "https://api.openai.com/v1/chat/completions"

// Request describes the mission context sent to the coach.
type Request struct {
	Prompt     string
	Category   mission.Category
	Difficulty mission.Difficulty
	UserLevel  int
	TimeLimit  int // minutes, 0 when unconstrained
}

// Guidance is one piece of coaching content. Steps is never empty.
type Guidance struct {
	Content       string   `json:"content"`
	Steps         []string `json:"steps"`
	Tips          []string `json:"tips"`
	EstimatedTime int      `json:"estimatedTime"`
	Difficulty    string   `json:"difficulty"`
	FollowUp      []string `json:"followUp"`
}

// Client talks to a chat completion API. The zero key makes every call
// fall back locally, so a Client is always usable.
type Client struct {
	endpoint string
	apiKey   string
	model    string
	client   *http.Client
	log      zerolog.Logger
}

// Option adjusts a Client.
type Option func(*Client)

// WithEndpoint overrides the completion URL, mainly for tests.
func WithEndpoint(url string) Option {
	return func(c *Client) { c.endpoint = url }
}

// WithModel selects the completion model.
func WithModel(model string) Option {
	return func(c *Client) { c.model = model }
}

// WithTimeout bounds each completion call.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.client.Timeout = d }
}

// NewClient creates a guidance client. An empty apiKey disables remote
// calls entirely.
func NewClient(apiKey string, logger zerolog.Logger, opts ...Option) *Client {
	c := &Client{
		endpoint: defaultEndpoint,
		apiKey:   apiKey,
		model:    "gpt-4o-mini",
		client:   &http.Client{Timeout: 15 * time.Second},
		log:      logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured reports whether remote generation is available.
func (c *Client) Configured() bool { return c.apiKey != "" }

// chat completion wire types, trimmed to the fields used.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	MaxTokens      int           `json:"max_tokens"`
	Temperature    float64       `json:"temperature"`
	ResponseFormat struct {
		Type string `json:"type"`
	} `json:"response_format"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Generate requests coaching content for req. It returns an error when
// the endpoint is unreachable, rejects the call, or produces content
// that does not parse; callers should fall back via Fallback.
func (c *Client) Generate(ctx context.Context, req Request) (Guidance, error) {
	if !c.Configured() {
		return Guidance{}, fmt.Errorf("no api key configured")
	}

	body := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt(req)},
			{Role: "user", Content: userPrompt(req)},
		},
		MaxTokens:   1000,
		Temperature: 0.7,
	}
	body.ResponseFormat.Type = "json_object"

	data, err := json.Marshal(body)
	if err != nil {
		return Guidance{}, fmt.Errorf("encoding request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(data))
	if err != nil {
		return Guidance{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return Guidance{}, fmt.Errorf("calling completion api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		var parsed chatResponse
		if json.Unmarshal(raw, &parsed) == nil && parsed.Error != nil {
			return Guidance{}, fmt.Errorf("completion api: %s", parsed.Error.Message)
		}
		return Guidance{}, fmt.Errorf("completion api: status %d", resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return Guidance{}, fmt.Errorf("decoding response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return Guidance{}, fmt.Errorf("completion api: empty response")
	}

	var g Guidance
	if err := json.Unmarshal([]byte(parsed.Choices[0].Message.Content), &g); err != nil {
		return Guidance{}, fmt.Errorf("parsing guidance content: %w", err)
	}
	if g.Content == "" || len(g.Steps) == 0 {
		return Guidance{}, fmt.Errorf("guidance content incomplete")
	}
	return g, nil
}

// GenerateOrFallback never fails: remote content when possible, catalog
// content otherwise.
func (c *Client) GenerateOrFallback(ctx context.Context, req Request) Guidance {
	if c.Configured() {
		g, err := c.Generate(ctx, req)
		if err == nil {
			return g
		}
		c.log.Warn().Err(err).
			Str("category", string(req.Category)).
			Msg("guidance generation failed, using fallback")
	}
	return Fallback(req.Category, req.Difficulty)
}

func systemPrompt(req Request) string {
	var b strings.Builder
	b.WriteString("You are a coach specialized in productivity and personal development. ")
	b.WriteString("Guide the user through practical, actionable missions.\n\n")
	b.WriteString("Rules:\n")
	b.WriteString("- Be practical and specific\n")
	b.WriteString("- Provide clear, executable steps\n")
	fmt.Fprintf(&b, "- Adapt the content to the user's level (%d)\n", req.UserLevel)
	b.WriteString("- Keep a motivational but professional tone\n")
	b.WriteString("- Always return valid JSON in the specified format\n\n")
	b.WriteString(`Response format (JSON): {"content": string, "steps": [string], "tips": [string], "estimatedTime": minutes, "difficulty": "easy|medium|hard", "followUp": [string]}`)
	if focus, ok := categoryFocus[req.Category]; ok {
		b.WriteString("\n\nSpecialization: ")
		b.WriteString(focus)
	}
	return b.String()
}

func userPrompt(req Request) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Mission context:\nCategory: %s\nUser level: %d\nDesired difficulty: %s\n",
		req.Category, req.UserLevel, req.Difficulty)
	if req.TimeLimit > 0 {
		fmt.Fprintf(&b, "Available time: %d minutes\n", req.TimeLimit)
	}
	b.WriteString("\nRequest:\n")
	if req.Prompt != "" {
		b.WriteString(req.Prompt)
	} else {
		b.WriteString("Guide the user through this mission in a personalized, practical way.")
	}
	b.WriteString("\n\nGenerate a personalized response following exactly the specified JSON format.")
	return b.String()
}

var categoryFocus = map[mission.Category]string{
	mission.CategoryProductivity: "PRODUCTIVITY. Focus on efficiency and organization, frameworks like GTD and Pomodoro, actions that save time.",
	mission.CategoryHealth:       "WELL-BEING. Focus on mental and physical health, mindfulness and self-care, sustainable healthy habits.",
	mission.CategorySocial:       "RELATIONSHIPS. Focus on communication and networking, emotional intelligence, authentic connections.",
	mission.CategoryLearning:     "LEARNING. Focus on effective study techniques, critical thinking, retention and application.",
	mission.CategoryCreativity:   "CREATIVITY. Focus on ideation techniques like SCAMPER and brainstorming, divergent thinking.",
	mission.CategoryFinance:      "PERSONAL FINANCE. Focus on practical financial education, budgeting and investing, conscious decisions.",
}
