package genre

// CanonicalAliases maps common variations (in slug form) to canonical slugs
// so that imported catalogs with inconsistent genre labels land in one bucket.
var CanonicalAliases = map[string]string{
	// Science Fiction variations
	"sci-fi":          "science-fiction",
	"scifi":           "science-fiction",
	"sf":              "science-fiction",

	// Fantasy variations
	"high-fantasy": "fantasy",
	"epic-fantasy": "fantasy",

	// Mystery/Thriller
	"suspense":  "thriller",
	"whodunit":  "mystery",
	"detective": "mystery",

	// Classics
	"classics":           "classic",
	"classic-literature": "classic",

	// Young Adult variations
	"ya":          "young-adult",
	"teen":        "young-adult",

	// Coming of age
	"bildungsroman": "coming-of-age",

	// Non-fiction variations
	"selfhelp":  "self-help",
	"biography": "biography-memoir",
	"memoir":    "biography-memoir",

	// Romance variations
	"modern-romance": "contemporary-romance",

	// Historical
	"historical": "historical-fiction",
}

// NormalizeToSlug takes a raw genre string and returns the canonical slug.
// Returns the slugified input if no specific mapping is found.
func NormalizeToSlug(raw string) string {
	slug := Slugify(raw)

	if canonical, ok := CanonicalAliases[slug]; ok {
		return canonical
	}

	return slug
}
