package planner

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"ecofood-backend/internal/tools"
)

// Rotating tables the curation pass draws from. Meals cycle through them
// by draft position, so the same draft always curates the same way.
var (
	culinaryThemes = []string{
		"Garden-to-table",
		"Fire-roasted",
		"Umami-forward",
		"Market brunch",
		"Wellness tonic",
		"Weeknight bistro",
		"Sunset mezze",
		"Chef's tasting",
	}
	techniques = []string{
		"charred then glazed",
		"slow-poached",
		"fermented garnish",
		"crispy shallot crumble",
		"citrus-cured finish",
		"smoked spice dusting",
		"herb-infused oil drizzle",
		"pickled accent",
	}
	pairings = []string{
		"sparkling yuzu water",
		"cold brew hibiscus tea",
		"cucumber-mint spritz",
		"ginger & lime kefir",
		"charred lemon seltzer",
		"roasted barley iced tea",
		"cacao nib cold brew",
		"citrus hop tonic",
	}
	textureNotes = []string{
		"contrast velvety purées with crisp toppings",
		"balance acidity with a touch of honey",
		"layer smoky elements against something bright",
		"fold in toasted seeds for crunch",
		"build a chilled-warm temperature duet",
		"finish with aromatic herbs right before serving",
	}
)

// CurateMenu gives the drafted week a chef treatment: themed titles,
// finishing techniques, drink pairings, and texture prompts, plus a
// one-line menu story. The pass is deterministic and never fails the
// run on its own; household favorites personalize the theme labels.
func (c *Crew) CurateMenu(_ context.Context, req Request, profile tools.HouseholdProfile, draft *Draft) (*Draft, error) {
	var favorites []string
	for _, like := range profile.TopLikes {
		if like.Name != "" {
			favorites = append(favorites, like.Name)
		}
	}

	curated := *draft
	curated.Meals = make([]CandidateMeal, len(draft.Meals))
	usedTitles := map[string]bool{}
	var snippets []string

	for i, meal := range draft.Meals {
		theme := culinaryThemes[i%len(culinaryThemes)]
		technique := techniques[i%len(techniques)]
		pairing := pairings[i%len(pairings)]
		texture := textureNotes[i%len(textureNotes)]

		themeLabel := theme
		if len(favorites) > 0 {
			inspo := favorites[i%len(favorites)]
			themeLabel = fmt.Sprintf("%s · inspired by %s", theme, titleCase(inspo))
		}

		title := meal.Title
		if title == "" {
			title = fmt.Sprintf("%s idea", meal.Slot)
		}
		themeWord := strings.Fields(theme)[0]
		if !strings.Contains(title, themeWord) {
			title = fmt.Sprintf("%s %s", themeWord, title)
		}
		if usedTitles[title] {
			title = fmt.Sprintf("%s (%s)", title, meal.Slot)
		}
		usedTitles[title] = true

		summary := strings.TrimSpace(fmt.Sprintf(
			"%s Finish %s, %s. Pair with %s.",
			meal.Summary, technique, texture, pairing))

		meal.Title = title
		meal.Summary = summary
		meal.Theme = themeLabel
		meal.Technique = technique
		meal.Pairing = pairing
		curated.Meals[i] = meal

		snippets = append(snippets, fmt.Sprintf("%s %s: %s", meal.Day, meal.Slot, themeLabel))
	}

	curated.Themes = snippets
	curated.Story = strings.Join(snippets, "; ")
	if notes := strings.TrimSpace(req.Notes); notes != "" {
		curated.Story = fmt.Sprintf("%s. Guest notes: %s.", curated.Story, notes)
	}
	return &curated, nil
}

// titleCase uppercases the first letter of each space-separated word.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, word := range words {
		runes := []rune(word)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
