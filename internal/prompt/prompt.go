// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

// Package prompt compiles a structured recipe into a constrained image
// generation prompt. The compiler is a rule table over semantic detectors:
// positive shape rules for what the dish must look like, and negative
// rules forbidding every format that was not positively detected, to
// suppress the generator's bias toward generic defaults. Deterministic for
// identical input, and total: unrecognized dishes get a generic plated
// food prompt.
package prompt

import (
	"regexp"
	"strings"

	"github.com/curioswitch/recetta/internal/recipedb"
)

// Input is the recipe data the compiler works from.
type Input struct {
	Title       string
	Category    string
	Ingredients []string
	Steps       []string

	// Strict appends packshot-only language for retry attempts.
	Strict bool
}

var (
	reSpaces          = regexp.MustCompile(`\s+`)
	reIngNumbers      = regexp.MustCompile(`\b\d+([.,]\d+)?\b`)
	reIngMultiplier   = regexp.MustCompile(`\b(x|×)\s*\d+\b`)
	reIngUnits        = regexp.MustCompile(`\b(kg|g|gr|mg|ml|cl|dl|l|litre|litres|cuil\.|cuill\.|cuillère|cuillerées?|soupe|café|cas|càs|cac|càc|cc|cs)\b`)
	reIngBrackets     = regexp.MustCompile(`[()\[\]]`)
	reIngNoise        = regexp.MustCompile(`https?://\S+|www\.\S+|[@€#]`)
	reTitleBadChars   = regexp.MustCompile(`[^a-zA-ZÀ-ÿ0-9'’\-\s()]`)
	reUppercaseLetter = regexp.MustCompile(`[A-Z]`)
)

// stoplist holds ingredients too visually uninformative to steer the
// image: seasoning, fat, flour and the like.
var stoplist = map[string]bool{
	"sel": true, "poivre": true, "eau": true, "huile": true,
	"huile olive": true, "huile d'olive": true, "huile végétale": true,
	"huile de tournesol": true, "huile de colza": true,
	"vinaigre": true, "vinaigre balsamique": true,
	"sucre": true, "sucre glace": true,
	"farine": true, "maïzena": true, "fécule": true, "levure": true,
	"beurre clarifié": true,
	"épices":          true, "herbes": true, "assaisonnement": true,
	"muscade": true, "cannelle": true,
}

func normalizeIngredient(s string) string {
	t := strings.ToLower(strings.TrimSpace(s))
	t = reIngNumbers.ReplaceAllString(t, " ")
	t = reIngMultiplier.ReplaceAllString(t, " ")
	t = reIngUnits.ReplaceAllString(t, " ")
	t = reIngBrackets.ReplaceAllString(t, " ")
	t = reIngNoise.ReplaceAllString(t, " ")
	return strings.TrimSpace(reSpaces.ReplaceAllString(t, " "))
}

func containsWord(haystack []string, word string) bool {
	re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(word) + `\b`)
	for _, h := range haystack {
		if re.MatchString(h) {
			return true
		}
	}
	return false
}

// pickFirst returns the first candidate word an ingredient mentions, in
// candidate priority order. The canonical candidate is returned rather
// than the raw ingredient line, quantities and units stay out of the
// prompt.
func pickFirst(ingredients []string, candidates ...string) string {
	for _, c := range candidates {
		if containsWord(ingredients, c) {
			return c
		}
	}
	return ""
}

// proteinVocabulary is the ordered protein match list: poultry, red meat,
// fish, shellfish, charcuterie, eggs, then plant proteins.
var proteinVocabulary = []string{
	"poulet", "dinde", "canard", "lapin",
	"boeuf", "bœuf", "veau", "porc", "agneau", "mouton",
	"saumon", "thon", "cabillaud", "lieu", "truite", "dorade", "bar", "poisson",
	"crevette", "crevettes", "gambas", "homard", "langoustine", "moule", "moules", "coquille saint-jacques",
	"saucisse", "saucisses", "merguez", "chipolata", "lardons", "jambon", "chorizo", "andouille",
	"oeuf", "oeufs", "œuf", "œufs",
	"tofu", "tempeh", "seitan",
}

// vegetableVocabulary is the ordered characteristic vegetable, aromatic
// and legume list used to fill remaining key-ingredient slots.
var vegetableVocabulary = []string{
	"tomate", "tomates", "aubergine", "courgette", "poivron", "poivrons",
	"champignon", "champignons", "épinard", "épinards", "brocoli",
	"carotte", "carottes", "navet", "navets", "céleri", "fenouil",
	"concombre", "avocat", "artichaut", "asperge", "asperges",
	"oignon", "échalote", "poireau", "ail",
	"chou", "chou-fleur", "bette", "blette",
	"petits pois", "haricot", "haricots verts",
	"potiron", "potimarron", "butternut", "courge",
	"betterave", "radis", "endive",
	"coriandre", "menthe", "basilic", "persil", "ciboulette",
	"citron", "lime", "orange", "pomme",
	"lentille", "lentilles", "pois chiche", "pois chiches", "flageolet",
}

// Build compiles the prompt. It never fails; for a dish no detector
// recognizes, the output is a generic plated-food prompt with the hard
// constraints and no shape rules.
func Build(in Input) string {
	safeTitle := strings.TrimSpace(reSpaces.ReplaceAllString(in.Title, " "))
	if r := []rune(safeTitle); len(r) > 80 {
		safeTitle = string(r[:80])
	}

	cat := recipedb.NormalizeCategory(in.Category)
	lowerTitle := strings.ToLower(safeTitle)

	var ingAll []string
	for _, ing := range in.Ingredients {
		n := normalizeIngredient(ing)
		if len([]rune(n)) > 1 && !stoplist[n] {
			ingAll = append(ingAll, n)
		}
	}

	fullText := lowerTitle + " " + strings.Join(ingAll, " ") + " " + strings.ToLower(strings.Join(in.Steps, " "))
	t := detectTraits(fullText, recipedb.FoldDiacritics(fullText))

	isBowlDish := t.soupLike || t.stewLike || t.bowlLike || t.risottoLike ||
		(t.lentils && (t.coconut || t.indian)) || t.wokLike

	vessel := dishVessel(cat, t, isBowlDish)
	keyIngs := keyIngredients(cat, t, ingAll)
	forbid := forbidRules(t)
	shapes := shapeRules(cat, t, ingAll)

	var parts []string
	add := func(s string) {
		if s != "" {
			parts = append(parts, s)
		}
	}

	if len(forbid) > 0 {
		add("CRITICAL RESTRICTIONS (violations = rejection):")
		parts = append(parts, forbid...)
	}
	if len(shapes) > 0 {
		add("DISH SHAPE RULES:")
		for _, s := range shapes {
			add("→ " + s)
		}
	}

	add("Photorealistic food photography. A real, edible, appetizing dish.")
	if titleLooksLegit(safeTitle) {
		add(`Dish name: "` + safeTitle + `".`)
	}
	add("Category: " + string(cat) + ".")
	if len(keyIngs) > 0 {
		add("Key visible ingredients (show only what's listed, invent nothing): " + strings.Join(keyIngs, ", ") + ".")
	} else {
		add("Do not invent any ingredients.")
	}
	add("Single main dish, centered, served " + vessel + ", on a neutral tabletop.")
	add("Camera angle: three-quarter view (~45°), shallow depth of field, DSLR quality.")
	add("Lighting: soft natural daylight, subtle shadows, true-to-life colors, appetizing textures.")
	add("Background: simple neutral surface, 1-2 minimal props max (fork, napkin).")
	add("ABSOLUTE: NO text, NO letters, NO words, NO labels, NO watermarks, NO logos, NO UI.")
	add("ABSOLUTE: NO people, NO hands, NO faces, NO animals, NO cartoon elements.")
	add("ABSOLUTE: Photograph ONLY the food. Nothing else.")

	if in.Strict {
		add("Food-only packshot: dish and neutral tabletop ONLY.")
		add("No scenery, no nature, no architecture, no fashion, no packaging.")
	}

	return strings.Join(parts, " ")
}

// titleLooksLegit filters out OCR garbage so it never poisons the prompt:
// too short, unexpected characters, or mostly uppercase.
func titleLooksLegit(title string) bool {
	runes := []rune(title)
	if len(runes) < 4 {
		return false
	}
	if reTitleBadChars.MatchString(title) {
		return false
	}
	upper := len(reUppercaseLetter.FindAllString(title, -1))
	return float64(upper) <= float64(len(runes))*0.75
}

// dishVessel picks the serving vessel by fixed priority over category and
// detected shape.
func dishVessel(cat recipedb.Category, t traits, isBowlDish bool) string {
	switch {
	case cat == recipedb.CategoryDrink:
		return "in a glass"
	case t.sushiLike, t.burgerLike, t.pizzaLike:
		return "on a wooden board"
	case t.skewerLike:
		return "on a plate"
	case t.bowlLike, isBowlDish:
		return "in a bowl"
	case t.saladLike:
		return "in a salad bowl"
	case t.tacoLike, t.crepeLike:
		return "on a plate"
	default:
		return "on a ceramic plate"
	}
}

// keyIngredients selects up to 4 visually defining ingredients: starch
// base first, then one protein, then characteristic vegetables in
// vocabulary order. Desserts prioritize chocolate, drinks fruit.
func keyIngredients(cat recipedb.Category, t traits, ingAll []string) []string {
	var chosen []string
	push := func(s string) {
		if s == "" {
			return
		}
		for _, c := range chosen {
			if c == s {
				return
			}
		}
		chosen = append(chosen, s)
	}

	switch cat {
	case recipedb.CategoryDrink:
		push(pickFirst(ingAll, "citron", "orange", "fraise", "mangue", "banane", "coco", "menthe", "grenadine", "pastèque", "ananas", "pêche", "framboise"))

	case recipedb.CategoryDessert:
		if t.chocolate {
			push("chocolat")
		}
		push(pickFirst(ingAll, "pomme", "poire", "fraise", "framboise", "citron", "vanille", "caramel", "noix", "amande", "noisette", "abricot", "cerise", "mangue"))

	default:
		switch {
		case t.pastaLike:
			if p := pickFirst(ingAll, "spaghetti", "pâtes", "penne", "tagliatelle", "linguine", "fettuccine", "rigatoni", "fusilli"); p != "" {
				push(p)
			} else {
				push("pâtes")
			}
		case t.risottoLike:
			push("riz")
		case t.northAfrican && t.couscous:
			push("couscous")
		case t.rice:
			push("riz")
		case t.potato:
			if p := pickFirst(ingAll, "pomme de terre", "pommes de terre", "patate", "gnocchi"); p != "" {
				push(p)
			} else {
				push("pommes de terre")
			}
		case t.quinoa:
			push("quinoa")
		}

		push(pickFirst(ingAll, proteinVocabulary...))

		for _, v := range vegetableVocabulary {
			if len(chosen) >= 4 {
				break
			}
			if containsWord(ingAll, v) {
				push(v)
			}
		}
	}

	// Cuisine staples that are implied even when absent from the list.
	if t.creole {
		push("riz")
	}
	if t.northAfrican && t.couscous {
		chosen = prepend(chosen, "couscous")
	}
	if t.indian && t.lentils && !containsWord(chosen, "lentille") {
		chosen = prepend(chosen, "lentilles")
	}

	if len(chosen) > 4 {
		chosen = chosen[:4]
	}
	return chosen
}

func prepend(list []string, s string) []string {
	for _, c := range list {
		if c == s {
			return list
		}
	}
	return append([]string{s}, list...)
}

// forbidRules asserts "no X" for every starch and dish format that was
// not positively detected, countering the generator's generic defaults.
func forbidRules(t traits) []string {
	var forbid []string
	if !t.pasta && !t.dumpling {
		forbid = append(forbid, "NO pasta, NO noodles, NO spaghetti, NO penne, NO ramen, NO udon, NO rice noodles of any kind.")
	}
	if !t.rice && !t.creole && !t.indian && !t.asian && !t.northAfrican && !t.risottoLike {
		forbid = append(forbid, "NO rice, NO risotto, NO rice grains of any kind.")
	}
	if !t.potato && !t.burgerLike {
		forbid = append(forbid, "NO fries, NO potatoes, NO gnocchi.")
	}
	if !t.bread && !t.burgerLike {
		forbid = append(forbid, "NO burger buns, NO bread slices, NO baguette.")
	}
	if !t.wrap && !t.tacoLike {
		forbid = append(forbid, "NO tortillas, NO wraps, NO pita.")
	}
	if !t.pizzaLike {
		forbid = append(forbid, "NO pizza, NO pizza crust.")
	}
	if !t.burgerLike {
		forbid = append(forbid, "NO burger, NO hamburger.")
	}
	if !t.sushiLike {
		forbid = append(forbid, "NO sushi, NO maki, NO sashimi.")
	}
	if !t.crepeLike {
		forbid = append(forbid, "NO crêpes, NO pancakes.")
	}
	return forbid
}

// shapeRules builds one positive visual-structure phrase per detected
// shape. Pasta suppresses generic noodle phrasing; soup wins over salad,
// stew and wok phrasing.
func shapeRules(cat recipedb.Category, t traits, ingAll []string) []string {
	var rules []string
	if t.soupLike {
		rules = append(rules, "SOUP/VELOUTÉ: liquid or creamy broth clearly visible in a bowl or deep plate, steam optional.")
	}
	if t.saladLike && !t.soupLike {
		rules = append(rules, "SALAD: raw or cooked vegetables clearly visible, served in a salad bowl or on a flat plate. No hot sauce poured over.")
		if !t.pasta {
			rules = append(rules, "No noodles in this salad.")
		}
	}
	if t.skewerLike {
		rules = append(rules, "SKEWERS: meat/vegetable pieces visibly threaded on wooden or metal sticks.")
	}
	if t.stewLike && !t.soupLike {
		rules = append(rules, "STEW/BRAISE: thick sauce coating the ingredients, served in a deep plate or bowl.")
	}
	if t.gratinLike {
		rules = append(rules, "GRATIN: golden-brown melted cheese crust on top, baked dish in a gratin dish or on a plate.")
	}
	if t.pizzaLike {
		rules = append(rules, "PIZZA: round flat dough with visible toppings, slight char on crust.")
	}
	if t.burgerLike {
		rules = append(rules, "BURGER: stacked bun with visible patty, lettuce, tomato, cheese layers.")
	}
	if t.tacoLike {
		rules = append(rules, "TACO/WRAP: folded or rolled tortilla with visible filling.")
	}
	if t.sushiLike {
		rules = append(rules, "SUSHI/POKE: carefully arranged pieces on a board or in a bowl, Japanese aesthetic.")
	}
	if t.wokLike && !t.soupLike {
		rules = append(rules, "WOK DISH: stir-fried ingredients with glossy sauce, served in a bowl or on a plate.")
	}
	if t.noodleDish && !t.pastaLike {
		rules = append(rules, "NOODLE DISH: stir-fried noodles clearly visible, toppings arranged on top.")
	}
	if t.pastaLike {
		pastaType := pickFirst(ingAll, "spaghetti", "penne", "tagliatelle", "linguine", "fettuccine", "rigatoni", "fusilli")
		if pastaType == "" {
			pastaType = "pasta"
		}
		rules = append(rules, "PASTA DISH: "+pastaType+" clearly visible as the main component, sauce coating the pasta.")
	}
	if t.risottoLike && !t.pastaLike {
		rules = append(rules, "RISOTTO/RICE DISH: creamy rice visible, served in a deep plate or bowl.")
	}
	if t.northAfrican {
		rules = append(rules, "NORTH AFRICAN DISH: couscous grains or tagine visible, served in traditional earthenware or on a plate.")
	}
	if t.creole {
		rules = append(rules, "CREOLE DISH: white rice mound on the side, rich tomato-based sauce with visible meat or sausages on the other side of the plate.")
	}
	if t.indian {
		rules = append(rules, "INDIAN-INSPIRED DISH: thick spiced sauce, served in a bowl or on a plate with rice or naan.")
	}
	if t.crepeLike {
		rules = append(rules, "CRÊPE/PANCAKE: thin folded or stacked pancakes, golden edges visible.")
	}
	if t.quicheLike {
		rules = append(rules, "QUICHE/TART: shortcrust pastry shell visible with creamy filling, slice on a plate.")
	}
	if t.omeletLike {
		rules = append(rules, "OMELETTE/FRITTATA: folded or flat egg dish with visible filling, golden exterior.")
	}
	if t.cakeLike && cat == recipedb.CategoryDessert {
		rules = append(rules, "DESSERT: plated slice or portion, elegant presentation, garnish if relevant.")
	}
	if t.springRoll {
		rules = append(rules, "SPRING ROLLS/NEMS: crispy golden rolls on a plate, dipping sauce optional.")
	}
	if t.dumpling {
		rules = append(rules, "DUMPLINGS/RAVIOLI: plump filled pasta pieces, sauce or broth visible.")
	}
	if t.bowlLike && !t.soupLike && !t.wokLike {
		rules = append(rules, "BOWL: arranged sections of ingredients visible from above or 3/4 angle.")
	}
	if t.fried && !t.burgerLike {
		rules = append(rules, "FRIED DISH: crispy golden exterior, slight oil sheen.")
	}
	if t.grilled {
		rules = append(rules, "GRILLED: visible grill marks on the protein or vegetables.")
	}
	return rules
}
