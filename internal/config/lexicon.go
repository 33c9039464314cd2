package config

// Built-in English word lists. Each function returns a fresh slice so a
// caller mutating its Config cannot bleed into another engine's defaults.

func defaultStopwords() []string {
	return []string{
		"a", "an", "and", "are", "as", "at", "be", "but", "by", "did", "do",
		"does", "for", "from", "had", "has", "have", "he", "her", "him", "his",
		"how", "i", "if", "in", "is", "it", "its", "just", "me", "my", "no",
		"not", "of", "on", "or", "our", "she", "so", "that", "the", "their",
		"them", "then", "these", "they", "this", "those", "to", "too", "very",
		"was", "we", "were", "what", "when", "where", "which", "who", "why",
		"will", "with", "would", "you", "your", "am", "can", "could", "should",
	}
}

func defaultPositiveWords() []string {
	return []string{
		"love", "like", "enjoy", "amazing", "awesome", "great", "fantastic",
		"wonderful", "excellent", "perfect", "good", "best", "beautiful",
		"happy", "pleased", "excited", "thrilled", "appreciate", "thanks",
		"fun", "nice", "glad",
	}
}

func defaultNegativeWords() []string {
	return []string{
		"hate", "dislike", "awful", "terrible", "horrible", "bad", "worst",
		"annoying", "frustrated", "frustrating", "angry", "disappointed",
		"confused", "difficult", "problem", "issue", "wrong", "error", "fail",
		"boring", "sad",
	}
}

func defaultNegations() []string {
	return []string{
		"not", "no", "never", "hardly", "barely", "don't", "dont", "doesn't",
		"doesnt", "didn't", "didnt", "isn't", "isnt", "aren't", "arent",
		"wasn't", "wasnt", "won't", "wont", "can't", "cant", "cannot",
		"couldn't", "couldnt", "shouldn't", "shouldnt", "wouldn't", "wouldnt",
	}
}

// defaultTopicDictionary maps curated keywords to a canonical topic. Keys
// containing a space are matched against token bigrams.
func defaultTopicDictionary() map[string]string {
	return map[string]string{
		// music
		"music": "music", "guitar": "music", "jazz": "music", "piano": "music",
		"drums": "music", "concert": "music", "album": "music", "band": "music",
		"singing": "music", "vinyl": "music",
		// sports & fitness
		"soccer": "sports", "football": "sports", "basketball": "sports",
		"tennis": "sports", "hiking": "sports", "gym": "sports",
		"yoga": "sports", "cycling": "sports", "swimming": "sports",
		"rock climbing": "sports",
		// technology
		"programming": "tech", "coding": "tech", "software": "tech",
		"computer": "tech", "computers": "tech", "python": "tech",
		"golang": "tech", "linux": "tech", "database": "tech",
		"machine learning": "tech", "robotics": "tech",
		// food & drink
		"cooking": "food", "baking": "food", "pizza": "food", "sushi": "food",
		"coffee": "food", "tea": "food", "recipe": "food", "recipes": "food",
		"restaurant": "food", "wine": "food",
		// travel
		"traveling": "travel", "travelling": "travel", "vacation": "travel",
		"flight": "travel", "trip": "travel", "backpacking": "travel",
		// games
		"chess": "gaming", "videogames": "gaming", "video games": "gaming",
		"boardgames": "gaming", "board games": "gaming",
		// screen & page
		"movie": "movies", "movies": "movies", "film": "movies",
		"films": "movies", "cinema": "movies", "book": "reading",
		"books": "reading", "novel": "reading", "novels": "reading",
		// arts & outdoors
		"painting": "art", "drawing": "art", "photography": "art",
		"camping": "outdoors", "fishing": "outdoors", "gardening": "outdoors",
	}
}

// defaultGenericTopics is the synthesizer's stoplist: umbrella categories
// from the dictionary plus conversational filler that passes the informative
// -token heuristic but carries no profile signal. Interest facts attach to
// the specific term ("guitar"), never the bucket ("music").
func defaultGenericTopics() []string {
	return []string{
		// umbrella categories
		"music", "sports", "tech", "food", "travel", "gaming", "movies",
		"reading", "art", "outdoors",
		// filler verbs and nouns
		"playing", "listening", "watching", "going", "getting", "making",
		"doing", "talking", "thinking", "trying", "looking", "using",
		"thing", "things", "stuff", "people", "time", "day", "days", "way",
		"lot", "bit", "today", "tomorrow", "yesterday", "really", "maybe",
		"something", "anything", "everything", "someone", "everyone",
	}
}

func defaultPreferenceMarkers() []string {
	return []string{
		"i like", "i love", "i hate", "i prefer", "i enjoy", "i dislike",
	}
}
