package classify

// Categories is the site taxonomy, in canonical order
var Categories = []string{"danse", "musique", "theatre", "art", "communaute"}

// categoryKeywords holds the French keyword vocabulary per category,
// accented and plain variants included
var categoryKeywords = map[string][]string{
	"danse": {
		"danse", "ballet", "chorégraphie", "choregraphie", "hip-hop",
		"hip hop", "contemporain", "classique", "flamenco", "tango",
		"salsa", "breakdance", "break dance", "modern jazz", "danseur",
		"danseuse", "bal",
	},
	"musique": {
		"concert", "musique", "music", "jazz", "rock", "électro",
		"electro", "techno", "house", "classique", "orchestre",
		"chanson", "rap", "dj", "dj set", "live", "festival musical",
		"symphonie", "opéra", "opera", "chorale", "récital", "recital",
		"philharmonique", "acoustique", "unplugged",
	},
	"theatre": {
		"théâtre", "theatre", "spectacle", "pièce", "piece", "comédie",
		"comedie", "tragédie", "tragedie", "one-man-show",
		"one man show", "humour", "humor", "stand-up", "stand up",
		"marionnettes", "marionnette", "cirque", "circus", "magie",
		"magic", "conte", "contes", "lecture", "dramaturge",
		"mise en scène", "clown",
	},
	"art": {
		"exposition", "expo", "vernissage", "galerie", "gallery", "art",
		"peinture", "sculpture", "photo", "photographie", "photography",
		"installation", "art contemporain", "beaux-arts", "beaux arts",
		"musée", "musee", "museum", "cinéma", "cinema", "projection",
		"film", "street art", "graffiti", "dessin", "gravure",
		"céramique", "ceramique",
	},
	"communaute": {
		"festival", "marché", "marche", "brocante", "vide-grenier",
		"vide grenier", "fête", "fete", "carnaval", "défilé", "defile",
		"parade", "célébration", "celebration", "rencontre", "atelier",
		"workshop", "conférence", "conference", "débat", "debat",
		"forum", "salon", "journée", "journee", "portes ouvertes",
	},
}

type venueMapping struct {
	venue    string
	category string // empty for multi-purpose venues: never auto-assign
}

// venueCategories maps known Marseille venues to their dominant
// category. Order matters: the first venue found in the location text
// wins.
var venueCategories = []venueMapping{
	{"klap", "danse"},
	{"ballet", "danse"},
	{"maison de la danse", "danse"},

	{"opéra", "musique"},
	{"opera", "musique"},
	{"conservatoire", "musique"},
	{"cabaret", "musique"},
	{"dock des suds", "musique"},
	{"espace julien", "musique"},
	{"moulin", "musique"},

	{"théâtre", "theatre"},
	{"theatre", "theatre"},
	{"criée", "theatre"},
	{"criee", "theatre"},
	{"gymnase", "theatre"},
	{"toursky", "theatre"},
	{"bernardines", "theatre"},

	{"galerie", "art"},
	{"musée", "art"},
	{"musee", "art"},
	{"mucem", "art"},
	{"mac", "art"},
	{"frac", "art"},
	{"vieille charité", "art"},
	{"vieille charite", "art"},
	{"château de servières", "art"},

	{"friche", ""},
	{"la friche", ""},
	{"cité de la musique", ""},
	{"cite de la musique", ""},
}

type sourceMapping struct {
	key      string
	category string
}

// defaultSourceMappings translate explicit source-site category labels
// to the taxonomy
var defaultSourceMappings = []sourceMapping{
	{"concert", "musique"},
	{"musique", "musique"},
	{"music", "musique"},
	{"dj", "musique"},
	{"électro", "musique"},
	{"electro", "musique"},
	{"jazz", "musique"},
	{"rock", "musique"},
	{"hip-hop", "musique"},
	{"rap", "musique"},
	{"classique", "musique"},
	{"opéra", "musique"},
	{"chorale", "musique"},

	{"spectacle", "theatre"},
	{"théâtre", "theatre"},
	{"theatre", "theatre"},
	{"comédie", "theatre"},
	{"comedie", "theatre"},
	{"humour", "theatre"},
	{"stand-up", "theatre"},
	{"cirque", "theatre"},
	{"marionnettes", "theatre"},
	{"conte", "theatre"},

	{"danse", "danse"},
	{"dance", "danse"},
	{"ballet", "danse"},
	{"contemporain", "danse"},
	{"flamenco", "danse"},
	{"tango", "danse"},
	{"salsa", "danse"},
	{"bal", "danse"},

	{"exposition", "art"},
	{"expo", "art"},
	{"art", "art"},
	{"vernissage", "art"},
	{"galerie", "art"},
	{"photographie", "art"},
	{"peinture", "art"},
	{"sculpture", "art"},
	{"installation", "art"},
	{"cinéma", "art"},
	{"projection", "art"},
	{"film", "art"},

	{"festival", "communaute"},
	{"fête", "communaute"},
	{"fete", "communaute"},
	{"marché", "communaute"},
	{"marche", "communaute"},
	{"brocante", "communaute"},
	{"carnaval", "communaute"},
	{"défilé", "communaute"},
	{"atelier", "communaute"},
	{"workshop", "communaute"},
	{"rencontre", "communaute"},
	{"conférence", "communaute"},
	{"débat", "communaute"},
}
