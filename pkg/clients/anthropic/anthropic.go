package anthropic

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/mamadbah2/platelog/internal/config"
	"github.com/mamadbah2/platelog/internal/domain/models"
)

const (
	defaultBaseURL = "https://api.anthropic.com"
	messagesPath   = "/v1/messages"
	apiVersion     = "2023-06-01"
	defaultModel   = "claude-3-5-haiku-latest"
	maxTokens      = 1024
	defaultTimeout = 30 * time.Second
)

// ErrNoJSON indicates the model reply carried no JSON object.
var ErrNoJSON = errors.New("no json object in ai response")

// Client defines the AI operations used by the food log.
type Client interface {
	AnalyzeFood(ctx context.Context, image []byte, mediaType string) (FoodReply, error)
	SummarizeDay(ctx context.Context, req DayRequest) (models.DailyAdvice, error)
}

// FoodReply is the raw vision answer, before macro normalization.
type FoodReply struct {
	FoodFound   bool    `json:"foodFound"`
	Description string  `json:"description"`
	Calories    float64 `json:"calories"`
	Nutrition   struct {
		Protein float64 `json:"protein"`
		Fat     float64 `json:"fat"`
		Carbs   float64 `json:"carbs"`
	} `json:"nutrition"`
}

// DayRequest carries everything the day summary prompt needs.
type DayRequest struct {
	DayLabel    string
	Entries     []models.FoodEntry
	CalorieGoal int
}

type anthropicClient struct {
	httpClient *resty.Client
	model      string
}

// NewClient creates a configured Anthropic client.
func NewClient(cfg config.AIConfig) Client {
	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}

	client := resty.New().
		SetBaseURL(baseURL).
		SetHeader("x-api-key", cfg.AnthropicKey).
		SetHeader("anthropic-version", apiVersion).
		SetHeader("content-type", "application/json").
		SetTimeout(timeout)

	return &anthropicClient{httpClient: client, model: model}
}

type messageRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system,omitempty"`
	Messages  []Message `json:"messages"`
}

// Message is one turn of the conversation. Content is either a string or a list of blocks.
type Message struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type contentBlock struct {
	Type   string       `json:"type"`
	Text   string       `json:"text,omitempty"`
	Source *imageSource `json:"source,omitempty"`
}

type imageSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type messageResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

const foodSystemPrompt = `You are a nutrition assistant that identifies food in photos.
Respond with ONLY a JSON object, no other text, using exactly this structure:
{
  "foodFound": true or false,
  "description": "short name of the meal",
  "calories": estimated total kilocalories as a number,
  "nutrition": {"protein": percent of calories, "fat": percent of calories, "carbs": percent of calories}
}
If the photo does not show food, set "foodFound" to false and leave the other fields empty or zero.
The three nutrition percentages should add up to 100.`

const foodUserPrompt = "Identify the food in this photo and estimate its calories and macronutrient split."

const daySystemPrompt = `You are a friendly nutrition coach reviewing one day of a food log.
Respond with ONLY a JSON object, no other text, using exactly this structure:
{"summary": "two or three sentences describing the day's intake", "advice": "one or two concrete suggestions for tomorrow"}
Escape newlines inside strings. Keep both fields under 400 characters.`

// AnalyzeFood sends the photo to the vision model and parses its JSON verdict.
func (c *anthropicClient) AnalyzeFood(ctx context.Context, image []byte, mediaType string) (FoodReply, error) {
	blocks := []contentBlock{
		{
			Type: "image",
			Source: &imageSource{
				Type:      "base64",
				MediaType: mediaType,
				Data:      base64.StdEncoding.EncodeToString(image),
			},
		},
		{Type: "text", Text: foodUserPrompt},
	}

	text, err := c.send(ctx, foodSystemPrompt, []Message{{Role: "user", Content: blocks}})
	if err != nil {
		return FoodReply{}, err
	}

	var reply FoodReply
	if err := decodeJSON(text, &reply); err != nil {
		return FoodReply{}, err
	}
	return reply, nil
}

// SummarizeDay asks the model to review a day of entries against the calorie goal.
func (c *anthropicClient) SummarizeDay(ctx context.Context, req DayRequest) (models.DailyAdvice, error) {
	text, err := c.send(ctx, daySystemPrompt, []Message{{Role: "user", Content: buildDayPrompt(req)}})
	if err != nil {
		return models.DailyAdvice{}, err
	}

	var advice models.DailyAdvice
	if err := decodeJSON(text, &advice); err != nil {
		return models.DailyAdvice{}, err
	}
	if strings.TrimSpace(advice.Summary) == "" && strings.TrimSpace(advice.Advice) == "" {
		return models.DailyAdvice{}, fmt.Errorf("empty advice in ai response")
	}
	return advice, nil
}

func buildDayPrompt(req DayRequest) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Day: %s\n", req.DayLabel)
	fmt.Fprintf(&sb, "Daily calorie goal: %d kcal\n\n", req.CalorieGoal)
	sb.WriteString("Meals logged:\n")

	var total int
	for _, entry := range req.Entries {
		macros := entry.Macros()
		fmt.Fprintf(&sb, "- %s at %s: %d kcal (protein %d%%, fat %d%%, carbs %d%%)\n",
			entry.Name, entry.Time().Format("15:04"), entry.Calories, macros.Protein, macros.Fat, macros.Carbs)
		total += entry.Calories
	}

	fmt.Fprintf(&sb, "\nTotal: %d kcal\n", total)
	return sb.String()
}

func (c *anthropicClient) send(ctx context.Context, system string, messages []Message) (string, error) {
	reqBody := messageRequest{
		Model:     c.model,
		MaxTokens: maxTokens,
		System:    system,
		Messages:  messages,
	}

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(reqBody).
		Post(messagesPath)

	if err != nil {
		return "", fmt.Errorf("anthropic api call: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("anthropic api error: status %d", resp.StatusCode())
	}

	// Decoded by hand so a missing or odd Content-Type does not drop the body.
	var respBody messageResponse
	if err := json.Unmarshal(resp.Body(), &respBody); err != nil {
		return "", fmt.Errorf("failed to decode anthropic response: %w", err)
	}

	var sb strings.Builder
	for _, block := range respBody.Content {
		if block.Type == "" || block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("empty response from ai")
	}
	return sb.String(), nil
}

func decodeJSON(text string, dst any) error {
	raw, err := ExtractJSON(text)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return fmt.Errorf("failed to unmarshal ai response: %w", err)
	}
	return nil
}

// ExtractJSON returns the outermost JSON object in a free-text model reply,
// tolerating Markdown code fences and surrounding prose.
func ExtractJSON(text string) (string, error) {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimSuffix(text, "```")
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(text, "```")
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return "", ErrNoJSON
	}
	return text[start : end+1], nil
}
