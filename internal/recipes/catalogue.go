package recipes

import (
	"context"
	"sort"
)

// Catalogue combines the built-in recipe set with recipes imported into
// the database. The built-in set keeps the planner functional without
// any external services configured.
type Catalogue struct {
	repo *Repository
}

// NewCatalogue creates a Catalogue. repo may be nil, in which case only
// built-in recipes are searched.
func NewCatalogue(repo *Repository) *Catalogue {
	return &Catalogue{repo: repo}
}

// Search returns recipes matching the filter, imported recipes first so
// household-curated dishes win over the defaults.
func (c *Catalogue) Search(ctx context.Context, f SearchFilter) ([]Recipe, error) {
	var pool []Recipe
	if c.repo != nil {
		imported, err := c.repo.List(ctx)
		if err != nil {
			return nil, err
		}
		pool = append(pool, imported...)
	}
	pool = append(pool, builtinCatalogue...)

	var results []Recipe
	for _, r := range pool {
		if r.Matches(f) {
			results = append(results, r)
		}
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].PrepMinutes < results[j].PrepMinutes
	})

	limit := f.Limit
	if limit <= 0 {
		limit = 5
	}
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

var builtinCatalogue = []Recipe{
	{
		ID:      "salmon-bowl",
		Title:   "Herb-Roasted Salmon Grain Bowl",
		Summary: "Roasted salmon over quinoa with crunchy vegetables and a citrus-herb dressing.",
		Cuisine: "Mediterranean", DietTags: []string{"high-protein", "omega-3", "gluten-free"},
		Slots: []string{"Lunch", "Dinner"},
		Ingredients: []Ingredient{
			{Name: "salmon fillet", Quantity: "500", Unit: "g"},
			{Name: "quinoa", Quantity: "250", Unit: "g"},
			{Name: "cucumber", Quantity: "1"},
			{Name: "lemon", Quantity: "1"},
			{Name: "fresh dill", Quantity: "1", Unit: "bunch"},
		},
		Steps:       []string{"Roast the salmon with herbs at 200C for 12 minutes.", "Cook the quinoa.", "Assemble bowls with vegetables and dressing."},
		PrepMinutes: 15, CookMinutes: 20, Calories: 560,
		RequiredTools: []string{"oven tray", "medium pan"},
	},
	{
		ID:      "veg-bento",
		Title:   "Rainbow Veggie Bento",
		Summary: "Colorful lunchbox with marinated tofu, rice, and crisp vegetables.",
		Cuisine: "Japanese-inspired", DietTags: []string{"vegetarian", "high-fiber"},
		Slots: []string{"Lunch"},
		Ingredients: []Ingredient{
			{Name: "tofu", Quantity: "400", Unit: "g"},
			{Name: "rice", Quantity: "300", Unit: "g"},
			{Name: "carrot", Quantity: "2"},
			{Name: "edamame", Quantity: "150", Unit: "g"},
			{Name: "soy sauce", Quantity: "3", Unit: "tbsp"},
		},
		Steps:       []string{"Marinate and sear the tofu.", "Cook the rice.", "Pack with sliced vegetables."},
		PrepMinutes: 20, CookMinutes: 10, Calories: 480,
		RequiredTools: []string{"small pan"},
	},
	{
		ID:      "oats-berries",
		Title:   "Overnight Oats with Berries",
		Summary: "Creamy oats soaked overnight, topped with mixed berries and seeds.",
		Cuisine: "Global", DietTags: []string{"vegetarian", "quick", "breakfast"},
		Slots: []string{"Breakfast"},
		Ingredients: []Ingredient{
			{Name: "oats", Quantity: "80", Unit: "g"},
			{Name: "milk", Quantity: "200", Unit: "ml"},
			{Name: "mixed berries", Quantity: "100", Unit: "g"},
			{Name: "chia seeds", Quantity: "1", Unit: "tbsp"},
		},
		Steps:       []string{"Combine oats, milk and seeds.", "Rest overnight in the fridge.", "Top with berries."},
		PrepMinutes: 10, Calories: 380,
	},
	{
		ID:      "veggie-chili",
		Title:   "Smoky Three-Bean Chili",
		Summary: "Hearty bean chili with tomatoes, peppers, and warm spices.",
		Cuisine: "Tex-Mex", DietTags: []string{"vegan", "high-fiber", "batch-cooking"},
		Slots: []string{"Dinner"},
		Ingredients: []Ingredient{
			{Name: "mixed beans", Quantity: "600", Unit: "g"},
			{Name: "tomato", Quantity: "400", Unit: "g", Notes: "canned"},
			{Name: "bell pepper", Quantity: "2"},
			{Name: "onion", Quantity: "1"},
			{Name: "smoked paprika", Quantity: "2", Unit: "tsp"},
		},
		Steps:       []string{"Soften onion and peppers.", "Add beans, tomatoes and spices.", "Simmer 30 minutes."},
		PrepMinutes: 15, CookMinutes: 30, Calories: 520,
		RequiredTools: []string{"large casserole"},
	},
	{
		ID:      "shakshuka",
		Title:   "Skillet Shakshuka",
		Summary: "Eggs poached in a spiced tomato and pepper sauce with crusty bread.",
		Cuisine: "Middle Eastern", DietTags: []string{"vegetarian", "high-protein"},
		Slots: []string{"Breakfast", "Lunch"},
		Ingredients: []Ingredient{
			{Name: "egg", Quantity: "6"},
			{Name: "tomato", Quantity: "500", Unit: "g"},
			{Name: "bell pepper", Quantity: "1"},
			{Name: "cumin", Quantity: "1", Unit: "tsp"},
			{Name: "bread", Quantity: "1", Unit: "loaf"},
		},
		Steps:       []string{"Simmer the tomato-pepper sauce.", "Poach the eggs in wells.", "Serve with bread."},
		PrepMinutes: 10, CookMinutes: 20, Calories: 430,
		RequiredTools: []string{"large pan"},
	},
	{
		ID:      "spinach-frittata",
		Title:   "Spinach and Feta Frittata",
		Summary: "Oven-finished frittata loaded with wilted spinach and crumbled feta.",
		Cuisine: "Mediterranean", DietTags: []string{"vegetarian", "gluten-free", "breakfast"},
		Slots: []string{"Breakfast", "Lunch"},
		Ingredients: []Ingredient{
			{Name: "egg", Quantity: "8"},
			{Name: "spinach", Quantity: "200", Unit: "g"},
			{Name: "feta", Quantity: "100", Unit: "g"},
			{Name: "olive oil", Quantity: "2", Unit: "tbsp"},
		},
		Steps:       []string{"Wilt the spinach.", "Pour over whisked eggs and feta.", "Finish under the grill."},
		PrepMinutes: 10, CookMinutes: 15, Calories: 390,
		RequiredTools: []string{"medium pan", "oven"},
	},
	{
		ID:      "lentil-soup",
		Title:   "Golden Lentil Soup",
		Summary: "Velvety red lentil soup with carrots, turmeric, and a squeeze of lemon.",
		Cuisine: "Global", DietTags: []string{"vegan", "high-fiber", "batch-cooking"},
		Slots: []string{"Lunch", "Dinner"},
		Ingredients: []Ingredient{
			{Name: "red lentils", Quantity: "300", Unit: "g"},
			{Name: "carrot", Quantity: "3"},
			{Name: "onion", Quantity: "1"},
			{Name: "turmeric", Quantity: "1", Unit: "tsp"},
			{Name: "lemon", Quantity: "1"},
		},
		Steps:       []string{"Sweat the aromatics.", "Add lentils and stock.", "Simmer and blend."},
		PrepMinutes: 10, CookMinutes: 25, Calories: 410,
		RequiredTools: []string{"medium casserole"},
	},
	{
		ID:      "chicken-traybake",
		Title:   "Lemon Chicken Traybake",
		Summary: "One-tray roast chicken with potatoes, olives, and charred lemon.",
		Cuisine: "Mediterranean", DietTags: []string{"high-protein", "gluten-free"},
		Slots: []string{"Dinner"},
		Ingredients: []Ingredient{
			{Name: "chicken thigh", Quantity: "800", Unit: "g"},
			{Name: "potato", Quantity: "600", Unit: "g"},
			{Name: "olives", Quantity: "100", Unit: "g"},
			{Name: "lemon", Quantity: "2"},
			{Name: "rosemary", Quantity: "2", Unit: "sprigs"},
		},
		Steps:       []string{"Toss everything on a tray.", "Roast at 200C for 40 minutes."},
		PrepMinutes: 15, CookMinutes: 40, Calories: 640,
		RequiredTools: []string{"oven tray"},
	},
	{
		ID:      "peanut-noodles",
		Title:   "Five-Minute Peanut Noodles",
		Summary: "Chilled noodles in a creamy peanut-lime sauce with scallions.",
		Cuisine: "Asian-inspired", DietTags: []string{"vegetarian", "quick"},
		Slots: []string{"Lunch", "Dinner"},
		Ingredients: []Ingredient{
			{Name: "noodles", Quantity: "400", Unit: "g"},
			{Name: "peanut butter", Quantity: "4", Unit: "tbsp"},
			{Name: "lime", Quantity: "1"},
			{Name: "scallion", Quantity: "3"},
		},
		Steps:       []string{"Cook and chill the noodles.", "Whisk the peanut sauce.", "Toss together."},
		PrepMinutes: 5, CookMinutes: 10, Calories: 550,
	},
	{
		ID:      "banana-pancakes",
		Title:   "Oat Banana Pancakes",
		Summary: "Blender pancakes from oats and ripe bananas, finished with maple syrup.",
		Cuisine: "American", DietTags: []string{"vegetarian", "breakfast", "kid-friendly"},
		Slots: []string{"Breakfast"},
		Ingredients: []Ingredient{
			{Name: "banana", Quantity: "2"},
			{Name: "oats", Quantity: "120", Unit: "g"},
			{Name: "egg", Quantity: "2"},
			{Name: "maple syrup", Quantity: "2", Unit: "tbsp"},
		},
		Steps:       []string{"Blend the batter.", "Cook small pancakes in a pan.", "Serve with syrup."},
		PrepMinutes: 5, CookMinutes: 15, Calories: 420,
		RequiredTools: []string{"small pan"},
	},
	{
		ID:      "stuffed-peppers",
		Title:   "Quinoa-Stuffed Peppers",
		Summary: "Baked bell peppers filled with herbed quinoa, raisins, and pine nuts.",
		Cuisine: "Mediterranean", DietTags: []string{"vegan", "gluten-free"},
		Slots: []string{"Dinner"},
		Ingredients: []Ingredient{
			{Name: "bell pepper", Quantity: "4"},
			{Name: "quinoa", Quantity: "200", Unit: "g"},
			{Name: "raisins", Quantity: "50", Unit: "g"},
			{Name: "pine nuts", Quantity: "40", Unit: "g"},
		},
		Steps:       []string{"Cook the quinoa filling.", "Stuff the peppers.", "Bake for 25 minutes."},
		PrepMinutes: 20, CookMinutes: 25, Calories: 460,
		RequiredTools: []string{"oven", "bakeware"},
	},
	{
		ID:      "miso-ramen",
		Title:   "Weeknight Miso Ramen",
		Summary: "Quick miso broth with noodles, soft egg, and seasonal greens.",
		Cuisine: "Japanese-inspired", DietTags: []string{"quick", "comfort"},
		Slots: []string{"Dinner"},
		Ingredients: []Ingredient{
			{Name: "ramen noodles", Quantity: "300", Unit: "g"},
			{Name: "miso paste", Quantity: "3", Unit: "tbsp"},
			{Name: "egg", Quantity: "2"},
			{Name: "spinach", Quantity: "100", Unit: "g"},
		},
		Steps:       []string{"Simmer the miso broth.", "Cook noodles and eggs.", "Assemble bowls."},
		PrepMinutes: 10, CookMinutes: 15, Calories: 510,
		RequiredTools: []string{"medium casserole"},
	},
	{
		ID:      "greek-salad-wrap",
		Title:   "Greek Salad Wraps",
		Summary: "Flatbreads stuffed with tomatoes, cucumber, olives, and whipped feta.",
		Cuisine: "Greek", DietTags: []string{"vegetarian", "quick", "no-cook"},
		Slots: []string{"Lunch"},
		Ingredients: []Ingredient{
			{Name: "flatbread", Quantity: "4"},
			{Name: "tomato", Quantity: "3"},
			{Name: "cucumber", Quantity: "1"},
			{Name: "feta", Quantity: "150", Unit: "g"},
			{Name: "olives", Quantity: "80", Unit: "g"},
		},
		Steps:       []string{"Whip the feta.", "Chop the vegetables.", "Fill and roll the wraps."},
		PrepMinutes: 15, Calories: 440,
	},
	{
		ID:      "porridge-apple",
		Title:   "Cinnamon Apple Porridge",
		Summary: "Warm oat porridge with caramelized apples and toasted walnuts.",
		Cuisine: "Global", DietTags: []string{"vegetarian", "breakfast", "comfort"},
		Slots: []string{"Breakfast"},
		Ingredients: []Ingredient{
			{Name: "oats", Quantity: "100", Unit: "g"},
			{Name: "apple", Quantity: "2"},
			{Name: "walnuts", Quantity: "40", Unit: "g"},
			{Name: "cinnamon", Quantity: "1", Unit: "tsp"},
		},
		Steps:       []string{"Simmer the oats.", "Caramelize the apples.", "Top and serve."},
		PrepMinutes: 5, CookMinutes: 15, Calories: 400,
		RequiredTools: []string{"small pan"},
	},
}
