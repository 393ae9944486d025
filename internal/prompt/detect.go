// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package prompt

import "regexp"

// Dish format, ingredient, cuisine and cooking-mode detectors. Each runs
// over the concatenated title + ingredients + steps text, both as-is and
// diacritics-folded. Detectors are independent and may co-fire; the
// composition rules in Build resolve conflicts by explicit precedence.
var (
	reSoupLike    = regexp.MustCompile(`\b(soupe|potage|velout[eé]|bouillon|consommé|minestrone|ramen|pho|gaspacho|gazpacho|vichyssoise|bisque|bouillabaisse|garbure)\b`)
	reSaladLike   = regexp.MustCompile(`\b(salade|taboul[eé])\b`)
	reSkewerLike  = regexp.MustCompile(`\b(brochette|kebab|skewer|yakitori|satay|spiedino)\b`)
	reStewLike    = regexp.MustCompile(`\b(curry|tajine|rago[uû]t|daube|stew|ragout|blanquette|fricassée|fricassee|navarin|pot.au.feu|pot au feu|bourguignon|cassoulet|goulash)\b`)
	reGratinLike  = regexp.MustCompile(`\b(gratin|lasagne|lasagnes|moussaka|parmentier)\b`)
	rePizzaLike   = regexp.MustCompile(`\b(pizza|pizzas|tarte flambée|flammekueche)\b`)
	reBurgerLike  = regexp.MustCompile(`\b(burger|hamburger|cheeseburger|smash)\b`)
	reTacoLike    = regexp.MustCompile(`\b(taco|tacos|wrap|burrito|quesadilla|fajita)\b`)
	reSushiLike   = regexp.MustCompile(`\b(sushi|sashimi|maki|temaki|chirashi|poke bowl|poké)\b`)
	reWokLike     = regexp.MustCompile(`\b(wok|sauté|pad thai|nasi goreng|fried rice|chop suey)\b`)
	reNoodleDish  = regexp.MustCompile(`\b(pad thai|nouilles|vermicelles|rice noodle|udon|soba|ramen)\b`)
	rePastaLike   = regexp.MustCompile(`\b(pâtes|pates|spaghetti|penne|tagliatelle|linguine|fettuccine|rigatoni|fusilli|farfalle|carbonara|bolognaise|bolognese|amatriciana|arrabiata|cacio e pepe)\b`)
	rePastaDough  = regexp.MustCompile(`\bpâte\b`)
	rePastaKind   = regexp.MustCompile(`\b(fraîche|sèche|blé|italienne)\b`)
	reRisottoLike = regexp.MustCompile(`\b(risotto|riz sauté|riz pilaf|paella|arancini)\b`)
	reCrepeLike   = regexp.MustCompile(`\b(crêpe|crepe|galette|pancake|blini)\b`)
	reOmeletLike  = regexp.MustCompile(`\b(omelette|frittata|tortilla española)\b`)
	reQuicheLike  = regexp.MustCompile(`\b(quiche|tarte sal[eé]e|flamiche|pissaladière)\b`)
	reCakeLike    = regexp.MustCompile(`\b(gâteau|cake|brownie|muffin|cupcake|cheesecake|tarte|clafoutis|fondant|moelleux|charlotte|tiramisu|panna cotta|île flottante)\b`)
	reBowlLike    = regexp.MustCompile(`\b(bowl|buddha bowl|açaï bowl)\b`)
	reSpringRoll  = regexp.MustCompile(`\b(nem|nems|spring roll|rouleau de printemps)\b`)
	reDumpling    = regexp.MustCompile(`\b(ravioli|raviolis|dim sum|gyoza|dumpling|wontons?|pierogi)\b`)

	reRice     = regexp.MustCompile(`\b(riz|risotto|paella)\b`)
	rePotato   = regexp.MustCompile(`\b(pomme de terre|pommes de terre|patate|patates|frites|gnocchi)\b`)
	reBread    = regexp.MustCompile(`\b(pain|baguette|bun|buns|brioche|toast|crouton)\b`)
	reWrap     = regexp.MustCompile(`\b(wrap|tortilla|pita|naan|chapati)\b`)
	reLentils  = regexp.MustCompile(`\b(lentille|lentilles)\b`)
	reCoconut  = regexp.MustCompile(`\b(coco|lait de coco|crème de coco)\b`)
	reChoco    = regexp.MustCompile(`\b(chocolat|cacao)\b`)
	reCouscous = regexp.MustCompile(`\b(couscous|semoule)\b`)
	reQuinoa   = regexp.MustCompile(`\b(quinoa)\b`)

	reCreole       = regexp.MustCompile(`\b(rougail|colombo|cari|carry|massalé|boucané|rougaille|vindaye)\b`)
	reAsian        = regexp.MustCompile(`\b(miso|dashi|teriyaki|tempura|kimchi|bibimbap|laksa|tom yum|rendang|nasi|satay)\b`)
	reNorthAfrican = regexp.MustCompile(`\b(tajine|couscous|harissa|chermoula|ras el hanout|merguez)\b`)
	reIndian       = regexp.MustCompile(`\b(masala|tikka|korma|vindaloo|biryani|dal|dahl|samosa|chutney|tandoori)\b`)
	reIndianSpice  = regexp.MustCompile(`\b(cumin|coriandre|curcuma|curry|garam)\b`)
	reMexican      = regexp.MustCompile(`\b(guacamole|salsa|enchilada|nachos|chili con carne)\b`)

	reFried   = regexp.MustCompile(`\b(frit|frite|friture|tempura|beignet)\b`)
	reGrilled = regexp.MustCompile(`\b(grillé|grillée|grillés|plancha|barbecue|bbq)\b`)
	reSteamed = regexp.MustCompile(`\b(vapeur|cuit à la vapeur)\b`)
)

type traits struct {
	soupLike    bool
	saladLike   bool
	skewerLike  bool
	stewLike    bool
	gratinLike  bool
	pizzaLike   bool
	burgerLike  bool
	tacoLike    bool
	sushiLike   bool
	wokLike     bool
	noodleDish  bool
	pastaLike   bool
	risottoLike bool
	crepeLike   bool
	omeletLike  bool
	quicheLike  bool
	cakeLike    bool
	bowlLike    bool
	springRoll  bool
	dumpling    bool

	rice      bool
	pasta     bool
	potato    bool
	bread     bool
	wrap      bool
	lentils   bool
	coconut   bool
	chocolate bool
	couscous  bool
	quinoa    bool

	creole       bool
	asian        bool
	northAfrican bool
	indian       bool
	italian      bool
	mexican      bool

	fried   bool
	grilled bool
	steamed bool
}

func detectTraits(fullText, noAccent string) traits {
	has := func(re *regexp.Regexp) bool {
		return re.MatchString(fullText) || re.MatchString(noAccent)
	}

	var t traits
	t.soupLike = has(reSoupLike)
	t.saladLike = has(reSaladLike)
	t.skewerLike = has(reSkewerLike)
	t.stewLike = has(reStewLike)
	t.gratinLike = has(reGratinLike)
	t.pizzaLike = has(rePizzaLike)
	t.burgerLike = has(reBurgerLike)
	t.tacoLike = has(reTacoLike)
	t.sushiLike = has(reSushiLike)
	t.wokLike = has(reWokLike)
	// A noodle dish that is a soup stays phrased as a soup.
	t.noodleDish = has(reNoodleDish) && !t.soupLike
	t.pastaLike = has(rePastaLike) || (has(rePastaDough) && has(rePastaKind)) || t.noodleDish
	t.risottoLike = has(reRisottoLike)
	t.crepeLike = has(reCrepeLike)
	t.omeletLike = has(reOmeletLike)
	t.quicheLike = has(reQuicheLike)
	t.cakeLike = has(reCakeLike)
	t.bowlLike = has(reBowlLike)
	t.springRoll = has(reSpringRoll)
	t.dumpling = has(reDumpling)

	t.rice = has(reRice) || t.risottoLike
	t.pasta = t.pastaLike
	t.potato = has(rePotato)
	t.bread = has(reBread) || t.burgerLike
	t.wrap = has(reWrap) || t.tacoLike
	t.lentils = has(reLentils)
	t.coconut = has(reCoconut)
	t.chocolate = has(reChoco)
	t.couscous = has(reCouscous)
	t.quinoa = has(reQuinoa)

	t.creole = has(reCreole)
	t.asian = has(reAsian) || t.sushiLike || t.wokLike
	t.northAfrican = has(reNorthAfrican) || t.couscous
	t.indian = has(reIndian) || (t.lentils && has(reIndianSpice))
	t.italian = t.pastaLike || t.risottoLike || t.pizzaLike || t.dumpling
	t.mexican = t.tacoLike || has(reMexican)

	t.fried = has(reFried)
	t.grilled = has(reGrilled)
	t.steamed = has(reSteamed)

	return t
}
