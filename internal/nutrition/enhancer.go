package nutrition

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/arbovm/levenshtein"

	"github.com/dsaini64/food-tracker-sub001/pkg/models"
)

// Enhancer refines a recognition result against a nutrition database.
// Enrichment is strictly best-effort: callers fall back to the unenriched
// result on any error, so implementations never partially mutate their input.
type Enhancer interface {
	Enrich(ctx context.Context, rec *models.RecognitionResult) (*models.EnrichedAnalysis, error)
}

// Labels further than this normalized edit distance from the recognized name
// are treated as non-matches rather than risking a wrong macro substitution.
const maxLabelDistance = 0.4

const defaultBaseURL = "https://api.edamam.com/api/food-database/v2/parser"

// EdamamEnhancer corrects macro estimates using the Edamam food database.
type EdamamEnhancer struct {
	appID   string
	appKey  string
	baseURL string
	client  *http.Client
}

func NewEdamamEnhancer(appID, appKey string, client *http.Client) *EdamamEnhancer {
	if client == nil {
		client = http.DefaultClient
	}
	return &EdamamEnhancer{
		appID:   appID,
		appKey:  appKey,
		baseURL: defaultBaseURL,
		client:  client,
	}
}

// WithBaseURL points the enhancer at a different parser endpoint. Used by
// tests to target a local server.
func (e *EdamamEnhancer) WithBaseURL(u string) *EdamamEnhancer {
	e.baseURL = u
	return e
}

type parserResponse struct {
	Parsed []parserEntry `json:"parsed"`
	Hints  []parserEntry `json:"hints"`
}

type parserEntry struct {
	Food parserFood `json:"food"`
}

type parserFood struct {
	Label     string          `json:"label"`
	Nutrients parserNutrients `json:"nutrients"`
}

type parserNutrients struct {
	Calories     float64 `json:"ENERC_KCAL"`
	Protein      float64 `json:"PROCNT"`
	Fat          float64 `json:"FAT"`
	Carbohydrate float64 `json:"CHOCDF"`
}

// Enrich looks up each recognized item and replaces its macro ratios with the
// database's per-serving values, scaled to the recognized calorie estimate so
// portion size survives the correction. Items without a confident database
// match pass through unchanged; a transport or credential failure aborts the
// whole pass with an error.
func (e *EdamamEnhancer) Enrich(ctx context.Context, rec *models.RecognitionResult) (*models.EnrichedAnalysis, error) {
	if e.appID == "" || e.appKey == "" {
		return nil, errors.New("edamam: credentials not configured")
	}

	out := models.EnrichedFromRecognition(rec)
	for i := range out.Items {
		food, err := e.lookup(ctx, out.Items[i].Name)
		if err != nil {
			return nil, err
		}
		if food == nil {
			continue
		}
		applyCorrection(&out.Items[i], food)
	}
	return out, nil
}

// lookup queries the parser endpoint and returns the best-matching food, or
// nil when no candidate label is close enough to the recognized name.
func (e *EdamamEnhancer) lookup(ctx context.Context, name string) (*parserFood, error) {
	q := url.Values{}
	q.Set("ingr", name)
	q.Set("app_id", e.appID)
	q.Set("app_key", e.appKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("edamam: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed parserResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("edamam: decode: %w", err)
	}

	candidates := make([]parserFood, 0, len(parsed.Parsed)+len(parsed.Hints))
	for _, p := range parsed.Parsed {
		candidates = append(candidates, p.Food)
	}
	for _, h := range parsed.Hints {
		candidates = append(candidates, h.Food)
	}
	return bestMatch(name, candidates), nil
}

// bestMatch picks the candidate whose label is closest to the recognized name
// by normalized edit distance, rejecting anything beyond maxLabelDistance.
func bestMatch(name string, candidates []parserFood) *parserFood {
	target := canonical(name)
	if target == "" {
		return nil
	}

	var best *parserFood
	bestDist := maxLabelDistance
	for i := range candidates {
		label := canonical(candidates[i].Label)
		if label == "" {
			continue
		}
		d := normalizedDistance(target, label)
		if d <= bestDist {
			best = &candidates[i]
			bestDist = d
		}
	}
	return best
}

func normalizedDistance(a, b string) float64 {
	longer := len(a)
	if len(b) > longer {
		longer = len(b)
	}
	if longer == 0 {
		return 0
	}
	return float64(levenshtein.Distance(a, b)) / float64(longer)
}

func canonical(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// applyCorrection replaces the item's macros with the database values scaled
// so the recognized calorie estimate is preserved. The vision model is good
// at portion size and weak on composition; the database is the opposite.
func applyCorrection(item *models.FoodItem, food *parserFood) {
	n := food.Nutrients
	if n.Calories <= 0 {
		return
	}

	scale := 1.0
	if item.Calories > 0 {
		scale = item.Calories / n.Calories
	} else {
		item.Calories = n.Calories
	}
	item.Protein = round1(n.Protein * scale)
	item.Carbohydrate = round1(n.Carbohydrate * scale)
	item.Fat = round1(n.Fat * scale)
}

func round1(v float64) float64 {
	if v < 0 {
		return 0
	}
	return float64(int(v*10+0.5)) / 10
}
