// Package moderation decides whether submitted text may be published.
package moderation

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dlclark/regexp2"

	"anonboard/internal/common"
)

const (
	DefaultMessageMaxLength = 500
	DefaultReplyMaxLength   = 700
)

var linkPattern = regexp.MustCompile(`(?i)(https?://\S+|www\.\S+)`)

// spamPattern flags a character repeated 7+ times in a row, or a word
// followed by 3+ whitespace-separated copies of itself. It needs
// backreferences and JavaScript character classes, hence regexp2.
var spamPattern = func() *regexp2.Regexp {
	re := regexp2.MustCompile(`(.)\1{6,}|(\b\w+\b)(\s+\2){3,}`, regexp2.IgnoreCase|regexp2.ECMAScript)
	re.MatchTimeout = 100 * time.Millisecond
	return re
}()

// DefaultBlockedTerms are matched as lower-case substrings.
var DefaultBlockedTerms = []string{
	"sex", "porn", "nude", "xxx", "fuck", "bitch", "dick", "pussy", "asshole", "slut",
	"ወሲብ", "የወሲብ", "ምስ", "እምስ", "ቁላ", "መብዳት", "ጀላ", "ስለወሲብ", "ሹገር", "ሹገርማሚ", "ሹገር ማሚ", "መበዳት",
}

// Validator applies the local text rules. The zero value is not usable; build
// one with NewValidator.
type Validator struct {
	maxLength    int
	safeDomains  []string
	blockedTerms []string
}

func NewValidator(maxLength int, safeDomains, blockedTerms []string) *Validator {
	if blockedTerms == nil {
		blockedTerms = DefaultBlockedTerms
	}
	lowered := make([]string, len(blockedTerms))
	for i, term := range blockedTerms {
		lowered[i] = strings.ToLower(term)
	}
	return &Validator{
		maxLength:    maxLength,
		safeDomains:  safeDomains,
		blockedTerms: lowered,
	}
}

func (v *Validator) MaxLength() int { return v.maxLength }

// Validate returns the trimmed text, or a *common.ValidationError for the
// first rule the text breaks.
func (v *Validator) Validate(text string) (string, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", common.NewValidationError(common.ReasonEmpty, "Message cannot be empty.")
	}

	if utf8.RuneCountInString(text) > v.maxLength {
		return "", common.NewValidationError(common.ReasonTooLong,
			fmt.Sprintf("Message is too long (max %d characters).", v.maxLength))
	}

	if looksLikeSpam(text) {
		return "", common.NewValidationError(common.ReasonSpam, "Message appears to be spam.")
	}

	if linkPattern.MatchString(text) && !v.mentionsSafeDomain(text) {
		return "", common.NewValidationError(common.ReasonUnsafeLink, "Only secure and trusted links are allowed.")
	}

	lower := strings.ToLower(text)
	for _, term := range v.blockedTerms {
		if strings.Contains(lower, term) {
			return "", common.NewValidationError(common.ReasonInappropriate, "Message contains inappropriate content.")
		}
	}

	return trimmed, nil
}

// mentionsSafeDomain is a plain substring test over the whole text, not a
// parse of the link host.
func (v *Validator) mentionsSafeDomain(text string) bool {
	for _, domain := range v.safeDomains {
		if strings.Contains(text, domain) {
			return true
		}
	}
	return false
}

// looksLikeSpam reports a spamPattern match. A match that times out is not
// treated as spam.
func looksLikeSpam(text string) bool {
	ok, err := spamPattern.MatchString(text)
	return err == nil && ok
}
