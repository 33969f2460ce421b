package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/dsaini64/food-tracker-sub001/pkg/models"
)

// Client adapts the Gemini API to the recognition-family and summary
// collaborator contracts. Each call opens its own API client so a hung
// upstream cannot pin connection state across requests.
type Client struct {
	apiKey string
	model  string
}

func New(apiKey, model string) *Client {
	return &Client{
		apiKey: strings.TrimSpace(apiKey),
		model:  strings.TrimSpace(model),
	}
}

const recognitionSystemPrompt = `You are a nutrition analysis engine. You receive one photograph of food.
Identify every distinct food item visible and estimate its quantity and macros.
Respond with ONLY JSON matching this schema, no prose, no markdown fences:
{"items":[{"name":string,"quantity":string,"calories":number,"protein":number,"carbohydrate":number,"fat":number}],"confidence":number}
confidence is your overall 0..1 confidence in the identification.
If the photograph contains no food, return {"items":[],"confidence":0}.`

const estimateSystemPrompt = `You are a nutrition analysis engine. You receive the name of a single food.
Estimate macros for one typical serving.
Respond with ONLY JSON, no prose, no markdown fences:
{"name":string,"quantity":string,"calories":number,"protein":number,"carbohydrate":number,"fat":number}`

const suggestionsSystemPrompt = `You are a nutrition coach. You receive a list of foods a person ate today
and optionally their goals. Respond with ONLY JSON, no prose, no markdown fences:
{"suggestions":[string]}
Keep each suggestion to one sentence. Return between two and five suggestions.`

const summarySystemPrompt = `You are a nutrition coach. You receive the meals a person logged today with
their macros. Write a short, encouraging narrative summary (3-5 sentences) of
their eating pattern: overall balance, notable highs or gaps, one concrete
suggestion. Plain prose only, no lists, no markdown.`

// AnalyzeImage implements the recognition collaborator contract.
func (c *Client) AnalyzeImage(ctx context.Context, img *models.NormalizedImage) (*models.RecognitionResult, error) {
	raw, err := c.generateJSON(ctx, recognitionSystemPrompt,
		genai.Text("Identify the food in this photo."),
		&genai.Blob{MIMEType: img.MIMEType, Data: img.Data},
	)
	if err != nil {
		return nil, err
	}

	var out models.RecognitionResult
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("gemini recognition: bad JSON: %w", err)
	}
	// A result with no items is a failed recognition, not an empty success.
	if len(out.Items) == 0 {
		return nil, errors.New("gemini recognition: no food items detected")
	}
	return &out, nil
}

// EstimateMacros implements the text-only estimate operation.
func (c *Client) EstimateMacros(ctx context.Context, foodName string) (*models.FoodItem, error) {
	raw, err := c.generateJSON(ctx, estimateSystemPrompt,
		genai.Text("Food: "+foodName),
	)
	if err != nil {
		return nil, err
	}

	var out models.FoodItem
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("gemini estimate: bad JSON: %w", err)
	}
	if strings.TrimSpace(out.Name) == "" {
		out.Name = foodName
	}
	return &out, nil
}

// SuggestImprovements implements the suggestions operation.
func (c *Client) SuggestImprovements(ctx context.Context, foodItems []string, userGoals string) ([]string, error) {
	var b strings.Builder
	b.WriteString("Foods eaten today:\n")
	for _, f := range foodItems {
		fmt.Fprintf(&b, "- %s\n", f)
	}
	if strings.TrimSpace(userGoals) != "" {
		fmt.Fprintf(&b, "Goals: %s\n", userGoals)
	}

	raw, err := c.generateJSON(ctx, suggestionsSystemPrompt, genai.Text(b.String()))
	if err != nil {
		return nil, err
	}

	var out struct {
		Suggestions []string `json:"suggestions"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("gemini suggestions: bad JSON: %w", err)
	}
	if len(out.Suggestions) == 0 {
		return nil, errors.New("gemini suggestions: empty response")
	}
	return out.Suggestions, nil
}

// Summarize implements the pattern-summary collaborator contract. Output is
// plain prose, passed through opaquely.
func (c *Client) Summarize(ctx context.Context, meals []models.MealRecord) (string, error) {
	var b strings.Builder
	b.WriteString("Meals logged today:\n")
	for _, m := range meals {
		fmt.Fprintf(&b, "- %s at %s: %.0f kcal, %.1fg protein, %.1fg carbs, %.1fg fat\n",
			m.Name, m.LoggedAt.Format("15:04"), m.Calories, m.Protein, m.Carbohydrate, m.Fat)
	}

	txt, err := c.generateText(ctx, summarySystemPrompt, genai.Text(b.String()))
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(txt) == "" {
		return "", errors.New("gemini summary: empty response")
	}
	return strings.TrimSpace(txt), nil
}

func (c *Client) generateJSON(ctx context.Context, system string, parts ...genai.Part) ([]byte, error) {
	txt, err := c.generate(ctx, system, "application/json", parts...)
	if err != nil {
		return nil, err
	}
	txt = stripCodeFences(strings.TrimSpace(txt))
	if txt == "" {
		return nil, errors.New("gemini: empty response")
	}
	return []byte(txt), nil
}

func (c *Client) generateText(ctx context.Context, system string, parts ...genai.Part) (string, error) {
	return c.generate(ctx, system, "", parts...)
}

// generate performs exactly one upstream attempt; retry policy belongs to
// the caller's layer, not here.
func (c *Client) generate(ctx context.Context, system, responseMIME string, parts ...genai.Part) (string, error) {
	if c.apiKey == "" {
		return "", errors.New("gemini: api key is empty")
	}

	cl, err := genai.NewClient(ctx, option.WithAPIKey(c.apiKey))
	if err != nil {
		return "", err
	}
	defer cl.Close()

	m := cl.GenerativeModel(c.model)
	m.GenerationConfig = genai.GenerationConfig{
		Temperature:      ptrFloat32(0),
		ResponseMIMEType: responseMIME,
	}
	m.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(system)},
	}

	resp, err := m.GenerateContent(ctx, parts...)
	if err != nil {
		return "", err
	}
	return firstText(resp), nil
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var b strings.Builder
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, p := range cand.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				b.WriteString(string(t))
			}
		}
		if b.Len() > 0 {
			break
		}
	}
	return b.String()
}

func stripCodeFences(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func ptrFloat32(v float32) *float32 {
	return &v
}
