package matcher

// Labels that must never auto-match: a reviewer has to place them by hand.
// Keys are normalized.
var excludedLabels = map[string]struct{}{
	"ленинградская": {},
}

// Forced canonical targets for ambiguous or abbreviated labels. Keys are
// normalized; values must name a directory entry to take effect.
var preferredAliases = map[string]string{
	"иваново":      "Иваново (Ивановская область)",
	"киров":        "Киров (Кировская область)",
	"подольск":     "Подольск (Московская область)",
	"троицк":       "Троицк (Москва)",
	"железногорск": "Железногорск (Красноярский край)",
	"кировск":      "Кировск (Ленинградская область)",
	"истра":        "Истра (Московская область)",
	"красногорск":  "Красногорск (Московская область)",
	"истра, деревня покровское":    "Покровское (городской округ Истра)",
	"домодедово":                   "Домодедово (Московская область)",
	"клин":                         "Клин (Московская область)",
	"октябрьский":                  "Октябрьский (Московская область, Люберецкий район)",
	"советск":                      "Советск (Калининградская область)",
	"кировск ленинградская":        "Кировск (Ленинградская область)",
	"звенигород":                   "Звенигород (Московская область)",
	"радужный хмао":                "Радужный (Ханты-Мансийский АО - Югра)",
	"радужный":                     "Радужный (Ханты-Мансийский АО - Югра)",
	"железногорск курской области": "Железногорск (Курская область)",
	"воскресенск":                  "Воскресенск (Московская область)",
	"северск":                      "Северск (Томская область)",
	"егорьевск":                    "Егорьевск (Московская область)",
	"дмитров":                      "Дмитров (Московская область)",
	"волжский":                     "Волжский (Самарская область)",
	"спб":                          "Санкт-Петербург",
	"екб":                          "Екатеринбург",
}

// IsExcluded reports whether a normalized label is in the exclusion set.
func IsExcluded(normalized string) bool {
	_, ok := excludedLabels[normalized]
	return ok
}

// PreferredAlias returns the forced canonical target for a normalized label.
func PreferredAlias(normalized string) (string, bool) {
	target, ok := preferredAliases[normalized]
	return target, ok
}
