package refdata

// Entry is a code/name pair from one of the catalog lists.
type Entry struct {
	Code string
	Name string
}

var languages = []Entry{
	{"en", "English"}, {"fr", "French"}, {"de", "German"}, {"es", "Spanish"},
	{"it", "Italian"}, {"pt", "Portuguese"}, {"nl", "Dutch"}, {"sv", "Swedish"},
	{"pl", "Polish"}, {"ru", "Russian"}, {"tr", "Turkish"}, {"ar", "Arabic"},
	{"hi", "Hindi"}, {"zh", "Chinese (Mandarin)"}, {"ja", "Japanese"}, {"ko", "Korean"},
}

var fieldsOfStudy = []Entry{
	{"business", "Business & Management"},
	{"cs", "Computer Science"},
	{"engineering", "Engineering"},
	{"medicine", "Medicine & Health"},
	{"law", "Law"},
	{"economics", "Economics"},
	{"arts", "Arts & Humanities"},
	{"architecture", "Architecture"},
	{"psychology", "Psychology"},
	{"biology", "Biology"},
	{"physics", "Physics"},
	{"mathematics", "Mathematics"},
	{"education", "Education"},
	{"hospitality", "Hospitality & Tourism"},
	{"political", "Political Science"},
	{"design", "Design"},
}

var degreeLevels = []Entry{
	{"bachelor", "Bachelor"},
	{"master", "Master"},
	{"phd", "PhD"},
	{"exchange", "Exchange semester"},
	{"language", "Language course"},
	{"foundation", "Foundation year"},
}

// Languages returns the language catalog.
func Languages() []Entry { return append([]Entry(nil), languages...) }

// FieldsOfStudy returns the fields-of-study catalog.
func FieldsOfStudy() []Entry { return append([]Entry(nil), fieldsOfStudy...) }

// DegreeLevels returns the degree-level catalog.
func DegreeLevels() []Entry { return append([]Entry(nil), degreeLevels...) }
