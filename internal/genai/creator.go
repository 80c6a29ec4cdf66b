package genai

import (
	"regexp"
	"strings"
)

// CreatorResponse is the fixed attribution reply sent for creator
// questions without calling the language model.
const CreatorResponse = "I was created by Djamaldine Montana with the help of Mistral. " +
	"He's a talented developer who built me to help people like you!"

// creatorPatterns lists the recognized phrasings of creator questions.
// Kept as data so the set can be extended or localized without touching
// the matching logic.
var creatorPatterns = []string{
	`who (made|created|built|designed|developed|invented|conceived) you`,
	`who('s| is| was) your (creator|maker|developer|designer|author)`,
	`who (are you (made|created|built) by|is behind you)`,
	`by whom (were|was) you (made|created|built|developed)`,
	`where (do|did) you come from`,
}

var creatorRegexps = compilePatterns(creatorPatterns)

func compilePatterns(patterns []string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		compiled = append(compiled, regexp.MustCompile(p))
	}
	return compiled
}

// IsCreatorQuestion reports whether the prompt asks who created the bot.
func IsCreatorQuestion(prompt string) bool {
	lower := strings.ToLower(prompt)
	for _, re := range creatorRegexps {
		if re.MatchString(lower) {
			return true
		}
	}
	return false
}
