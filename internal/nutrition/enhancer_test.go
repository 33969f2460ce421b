package nutrition

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/dsaini64/food-tracker-sub001/pkg/models"
)

func parserFixture(label string, kcal, protein, fat, carbs float64) string {
	return fmt.Sprintf(
		`{"parsed":[{"food":{"label":"%s","nutrients":{"ENERC_KCAL":%g,"PROCNT":%g,"FAT":%g,"CHOCDF":%g}}}],"hints":[]}`,
		label, kcal, protein, fat, carbs)
}

func TestEnrich_MissingCredentials(t *testing.T) {
	e := NewEdamamEnhancer("", "", nil)

	_, err := e.Enrich(context.Background(), &models.RecognitionResult{
		Items: []models.FoodItem{{Name: "banana"}},
	})
	if err == nil {
		t.Fatal("Expected an error without credentials")
	}
}

func TestEnrich_CorrectsMacros(t *testing.T) {
	// Database per-100g: banana 89 kcal, 1.1g protein, 0.3g fat, 22.8g carbs.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("app_id") == "" || r.URL.Query().Get("app_key") == "" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(parserFixture("Banana", 89, 1.1, 0.3, 22.8)))
	}))
	defer srv.Close()

	e := NewEdamamEnhancer("id", "key", srv.Client()).WithBaseURL(srv.URL)

	rec := &models.RecognitionResult{
		Items: []models.FoodItem{
			{Name: "banana", Quantity: "1 medium", Calories: 105, Protein: 1.3, Carbohydrate: 27, Fat: 0.4},
		},
		Confidence: 0.92,
	}

	out, err := e.Enrich(context.Background(), rec)
	if err != nil {
		t.Fatalf("Expected success, got %v", err)
	}

	item := out.Items[0]
	if item.Calories != 105 {
		t.Errorf("Recognized calories must be preserved, got %v", item.Calories)
	}
	// Database fat scaled to the recognized portion: 0.3 * (105/89) = 0.35 -> 0.4.
	// The key property is that the database ratio replaced the model's guess.
	if item.Fat <= 0 || item.Fat > 0.5 {
		t.Errorf("Expected a corrected fat value near 0.35, got %v", item.Fat)
	}
	if item.Protein <= 0 {
		t.Errorf("Expected a corrected protein value, got %v", item.Protein)
	}
	if item.Name != "banana" || item.Quantity != "1 medium" {
		t.Errorf("Identity fields must pass through unchanged: %+v", item)
	}

	// Input must stay untouched.
	if rec.Items[0].Fat != 0.4 {
		t.Errorf("Enrichment mutated its input: %+v", rec.Items[0])
	}
}

func TestEnrich_NoMatchPassesThrough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(parserFixture("Peanut Butter Sandwich", 300, 12, 16, 30)))
	}))
	defer srv.Close()

	e := NewEdamamEnhancer("id", "key", srv.Client()).WithBaseURL(srv.URL)

	rec := &models.RecognitionResult{
		Items:      []models.FoodItem{{Name: "kiwi", Calories: 42, Protein: 0.8, Carbohydrate: 10, Fat: 0.4}},
		Confidence: 0.8,
	}

	out, err := e.Enrich(context.Background(), rec)
	if err != nil {
		t.Fatalf("Expected success, got %v", err)
	}
	want := models.EnrichedFromRecognition(rec)
	if !reflect.DeepEqual(out, want) {
		t.Errorf("Expected unmatched item passed through unchanged:\ngot  %+v\nwant %+v", out, want)
	}
}

func TestEnrich_UpstreamErrorFailsWholePass(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	e := NewEdamamEnhancer("id", "key", srv.Client()).WithBaseURL(srv.URL)

	_, err := e.Enrich(context.Background(), &models.RecognitionResult{
		Items: []models.FoodItem{{Name: "banana", Calories: 105}},
	})
	if err == nil {
		t.Fatal("Expected an error for upstream 503")
	}
}

func TestBestMatch(t *testing.T) {
	candidates := []parserFood{
		{Label: "Banana"},
		{Label: "Banana Bread"},
		{Label: "Plantain"},
	}

	got := bestMatch("banana", candidates)
	if got == nil || got.Label != "Banana" {
		t.Fatalf("Expected exact-ish match Banana, got %+v", got)
	}

	if got := bestMatch("sushi", candidates); got != nil {
		t.Errorf("Expected no match for an unrelated name, got %+v", got)
	}

	if got := bestMatch("", candidates); got != nil {
		t.Errorf("Expected no match for empty name, got %+v", got)
	}
}

func TestNormalizedDistance(t *testing.T) {
	if d := normalizedDistance("banana", "banana"); d != 0 {
		t.Errorf("Expected 0 for identical strings, got %v", d)
	}
	if d := normalizedDistance("banana", "bananas"); d > 0.2 {
		t.Errorf("Expected small distance for plural, got %v", d)
	}
	if d := normalizedDistance("banana", "sushi"); d <= maxLabelDistance {
		t.Errorf("Expected unrelated strings beyond threshold, got %v", d)
	}
}
