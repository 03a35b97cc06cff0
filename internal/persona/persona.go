// Package persona holds the character catalog and the localized prompt
// templates used to make a persona talk on the forum.
package persona

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"
	"strings"
)

// Persona is a forum account driven by a character instruction.
type Persona struct {
	ID                int    // Forum user id the posts are attributed to
	Name              string // Short label for listings and logs
	SystemInstruction string // System prompt sent with every generation call
}

// Language identifies one of the supported forum locales.
type Language string

const (
	English    Language = "en"
	Portuguese Language = "pt"
)

// ErrUnknownPersona is returned when a requested persona id is not in the catalog.
var ErrUnknownPersona = errors.New("unknown persona")

// Locale bundles everything that varies per forum language: where the forum
// lives, who posts there, and how the prompts read.
type Locale struct {
	Language     Language
	Label        string
	ForumBaseURL string
	Personas     []Persona

	titlePrompt       string
	bodyPrompt        string // %s = title
	replyPrompt       string // %s = title, %s = history
	inspirationPrompt string // %s = article title, %s = excerpt
}

var locales = map[Language]*Locale{
	English:    &englishLocale,
	Portuguese: &portugueseLocale,
}

// Languages returns the supported languages in a stable order.
func Languages() []Language {
	out := make([]Language, 0, len(locales))
	for l := range locales {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// IsValidLanguage reports whether lang names a supported locale.
func IsValidLanguage(lang string) bool {
	_, ok := locales[Language(lang)]
	return ok
}

// LocaleFor returns the locale for lang. Anything that is not a known
// language falls back to English, matching how the forum flag has always
// behaved.
func LocaleFor(lang string) *Locale {
	if l, ok := locales[Language(strings.ToLower(strings.TrimSpace(lang)))]; ok {
		return l
	}
	return locales[English]
}

// TitlePrompt asks for the title of a brand-new topic.
func (l *Locale) TitlePrompt() string {
	return l.titlePrompt
}

// InspiredTitlePrompt is TitlePrompt with an article appended as a source of
// ideas. The excerpt is expected to be trimmed by the caller.
func (l *Locale) InspiredTitlePrompt(articleTitle, excerpt string) string {
	return l.titlePrompt + "\n\n" + fmt.Sprintf(l.inspirationPrompt, articleTitle, excerpt)
}

// BodyPrompt asks for the opening post of a topic with the given title.
func (l *Locale) BodyPrompt(title string) string {
	return fmt.Sprintf(l.bodyPrompt, title)
}

// ReplyPrompt asks for a reply to the last comment in history.
func (l *Locale) ReplyPrompt(title, history string) string {
	return fmt.Sprintf(l.replyPrompt, title, history)
}

// Find returns the persona with the given id.
func (l *Locale) Find(id int) (Persona, error) {
	for _, p := range l.Personas {
		if p.ID == id {
			return p, nil
		}
	}
	return Persona{}, fmt.Errorf("%w: id %d in %s catalog", ErrUnknownPersona, id, l.Language)
}

// Random returns a uniformly chosen persona.
func (l *Locale) Random() Persona {
	return l.Personas[rand.IntN(len(l.Personas))]
}

// Select resolves the acting persona: id 0 means "pick one at random".
func (l *Locale) Select(id int) (Persona, error) {
	if id == 0 {
		return l.Random(), nil
	}
	return l.Find(id)
}

// byName builds a parody persona from a character name.
func byName(id int, name, template string) Persona {
	return Persona{
		ID:                id,
		Name:              name,
		SystemInstruction: fmt.Sprintf(template, name),
	}
}

// byDescription builds a persona from a free-form character description.
func byDescription(id int, name, description, suffix string) Persona {
	return Persona{
		ID:                id,
		Name:              name,
		SystemInstruction: strings.TrimRight(description, ".") + ". " + suffix,
	}
}
