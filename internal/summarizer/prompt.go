package summarizer

import (
	"fmt"
	"sync"

	"github.com/pemistahl/lingua-go"
)

// Characters of page markdown sent to the model.
const maxContentRunes = 4000

const systemPrompt = "You are a helpful assistant that generates concise titles and descriptions for web pages."

// Languages the hint can name. A small set keeps the detector light to build.
var hintLanguages = []lingua.Language{
	lingua.English,
	lingua.French,
	lingua.German,
	lingua.Spanish,
	lingua.Italian,
	lingua.Portuguese,
	lingua.Dutch,
}

var detector = sync.OnceValue(func() lingua.LanguageDetector {
	return lingua.NewLanguageDetectorBuilder().
		FromLanguages(hintLanguages...).
		WithMinimumRelativeDistance(0.1).
		Build()
})

// userPrompt asks for a JSON title and description of the page.
func userPrompt(pageURL, content string) string {
	p := fmt.Sprintf(`Generate a 9-12 word description and a 3-4 word title of the entire page based on ALL the content one will find on the page for this url: %s. This will help in a user finding the page for its intended purpose.

Write the title and description in the dominant language of the page content.`, pageURL)

	if lang, ok := detectLanguage(content); ok {
		p += fmt.Sprintf(" The content appears to be written in %s.", lang)
	}

	return p + `

Return the response in JSON format:
{
    "title": "3-4 word title",
    "description": "9-12 word description"
}

Page content:
` + content
}

func detectLanguage(content string) (string, bool) {
	lang, ok := detector().DetectLanguageOf(content)
	if !ok {
		return "", false
	}
	return lang.String(), true
}

// truncate keeps the first n runes of s.
func truncate(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
