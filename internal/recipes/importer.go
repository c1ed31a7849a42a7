package recipes

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"ecofood-backend/internal/llm"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
)

// Importer fetches a recipe page, extracts the recipe with an LLM, and
// saves it to the catalogue so future plans can use it.
type Importer struct {
	repo    *Repository
	textGen llm.TextGenerator
}

// NewImporter creates a new Importer instance.
func NewImporter(repo *Repository, textGen llm.TextGenerator) *Importer {
	return &Importer{repo: repo, textGen: textGen}
}

type extractedRecipe struct {
	Title       string       `json:"title"`
	Summary     string       `json:"summary"`
	Cuisine     string       `json:"cuisine"`
	DietTags    []string     `json:"diet_tags"`
	Ingredients []Ingredient `json:"ingredients"`
	Steps       []string     `json:"steps"`
	PrepMinutes int          `json:"prep_minutes"`
	CookMinutes int          `json:"cook_minutes"`
	Calories    int          `json:"calories_per_person"`
}

// ImportURL fetches the URL, extracts the recipe using the LLM, and saves it.
func (i *Importer) ImportURL(ctx context.Context, url string) (*Recipe, error) {
	if i.textGen == nil {
		return nil, fmt.Errorf("recipe import requires an LLM provider")
	}

	content, err := fetchAndCleanHTML(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch content: %w", err)
	}

	prompt := fmt.Sprintf(`
You are a recipe extraction expert. Extract the recipe details from the following page text.
Return the result strictly as a JSON object with this structure:
{
  "title": "Recipe Title",
  "summary": "One or two sentences describing the dish",
  "cuisine": "e.g. Mediterranean",
  "diet_tags": ["vegetarian", ...],
  "ingredients": [{"name": "...", "quantity": "...", "unit": "...", "notes": "..."}],
  "steps": ["Step 1 description", "Step 2 description"],
  "prep_minutes": 0,
  "cook_minutes": 0,
  "calories_per_person": 0
}

Page text:
%s
`, content)

	resp, err := i.textGen.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("ai extraction failed: %w", err)
	}

	var extracted extractedRecipe
	if err := json.Unmarshal([]byte(resp.Content), &extracted); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w. Response: %s", err, resp.Content)
	}
	if extracted.Title == "" {
		return nil, fmt.Errorf("extraction produced no recipe title")
	}

	rec := Recipe{
		ID:          "imported-" + uuid.NewString(),
		Title:       extracted.Title,
		Summary:     extracted.Summary,
		Cuisine:     extracted.Cuisine,
		DietTags:    extracted.DietTags,
		Ingredients: extracted.Ingredients,
		Steps:       extracted.Steps,
		PrepMinutes: extracted.PrepMinutes,
		CookMinutes: extracted.CookMinutes,
		Calories:    extracted.Calories,
		SourceURL:   url,
		UpdatedAt:   time.Now().UTC().Format(time.RFC3339),
	}

	if err := i.repo.Save(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to save imported recipe: %w", err)
	}
	return &rec, nil
}

func fetchAndCleanHTML(ctx context.Context, url string) (string, error) {
	client := &http.Client{Timeout: 15 * time.Second}
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return "", err
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to fetch URL: status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", err
	}

	// Remove noise to save LLM tokens
	doc.Find("script, style, nav, footer, iframe, ads, .ads, #ads").Each(func(i int, s *goquery.Selection) {
		s.Remove()
	})

	text := doc.Find("body").Text()
	return strings.TrimSpace(text), nil
}
