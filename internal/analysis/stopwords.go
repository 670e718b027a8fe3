package analysis

// SpanishStopWords is the default stop-word list for Spanish corpora.
// Entries are folded when the lookup map is built, so accented and
// unaccented spellings both match.
var SpanishStopWords = []string{
	"a", "al", "algo", "algunas", "algunos", "ante", "antes", "como", "con",
	"contra", "cual", "cuando", "de", "del", "desde", "donde", "dos", "el",
	"ella", "ellas", "ellos", "en", "entre", "era", "erais", "éramos", "eran",
	"es", "esa", "esas", "ese", "esos", "esta", "estaba", "estabais",
	"estábamos", "estaban", "estar", "este", "esto", "estos", "fue", "fui",
	"fuimos", "ha", "han", "hasta", "hay", "la", "las", "le", "les", "lo",
	"los", "mas", "más", "me", "mientras", "muy", "nada", "ni", "nos", "o",
	"os", "otra", "otros", "para", "pero", "poco", "por", "porque", "que",
	"quien", "se", "ser", "si", "sí", "sin", "sobre", "soy", "su", "sus",
	"te", "tiene", "tengo", "tuvo", "tuve", "u", "un", "una", "unas", "unos",
	"y", "ya",
}

// EnglishStopWords is a compact list used when the corpus language is English.
var EnglishStopWords = []string{
	"a", "an", "and", "are", "as", "at", "be", "by", "for", "from", "has",
	"he", "in", "is", "it", "its", "of", "on", "or", "that", "the", "to",
	"was", "were", "will", "with", "this", "but", "they", "have", "had",
	"what", "when", "where", "who", "which", "why", "how", "all", "each",
	"no", "not", "only", "so", "than", "too", "very", "can", "just", "i",
	"you", "we", "me", "my", "your", "our", "their",
}

// StopWordsFor returns the built-in stop words for a language.
// Unknown languages get no stop words.
func StopWordsFor(language string) []string {
	switch Fold(language) {
	case "spanish", "es", "espanol":
		return SpanishStopWords
	case "english", "en":
		return EnglishStopWords
	default:
		return nil
	}
}

// BuildStopWordMap converts a slice of stop words to a folded lookup set.
func BuildStopWordMap(stopWords ...[]string) map[string]struct{} {
	size := 0
	for _, list := range stopWords {
		size += len(list)
	}
	m := make(map[string]struct{}, size)
	for _, list := range stopWords {
		for _, word := range list {
			m[Fold(word)] = struct{}{}
		}
	}
	return m
}
