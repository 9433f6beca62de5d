package coach

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/papercomputeco/innerai/pkg/llm"
)

const (
	defaultPersonaName     = "InnerAI"
	defaultReframeMaxWords = 25
	defaultStoryWords      = 150
)

// Persona holds the tunable parts of every prompt the coach builds.
// A zero field takes its default in Normalize.
type Persona struct {
	// Name the coach introduces itself with in chat.
	Name string

	// Language is the default reply language code for chat when the caller
	// does not send one.
	Language string

	// ReframeMaxWords is the hard word limit for a reframe.
	ReframeMaxWords int

	// StoryWords is the approximate story length.
	StoryWords int
}

// DefaultPersona returns the persona used when none is configured.
func DefaultPersona() Persona {
	return Persona{
		Name:            defaultPersonaName,
		Language:        llm.DefaultLanguage,
		ReframeMaxWords: defaultReframeMaxWords,
		StoryWords:      defaultStoryWords,
	}
}

// Normalize fills zero fields from DefaultPersona.
func (p Persona) Normalize() Persona {
	d := DefaultPersona()
	if strings.TrimSpace(p.Name) == "" {
		p.Name = d.Name
	}
	if strings.TrimSpace(p.Language) == "" {
		p.Language = d.Language
	}
	if p.ReframeMaxWords <= 0 {
		p.ReframeMaxWords = d.ReframeMaxWords
	}
	if p.StoryWords <= 0 {
		p.StoryWords = d.StoryWords
	}
	return p
}

var (
	chatTemplate = template.Must(template.New("chat").Parse(
		`You are a kind and supportive AI coach named {{.Name}}. ` +
			`You ONLY provide responses based on CBT principles. ` +
			`Your replies must include: (1) a reframing of the user's negative thought if present, ` +
			`(2) a mental resilience drill, and (3) a positive affirmation. ` +
			`Be brief, actionable, and supportive. ` +
			`Write in plain text only: do not use markdown, asterisks, underscores, hashes, or any other emphasis symbols. ` +
			`Respond only in {{.LanguageName}}. If the user writes in another language, translate your reply into {{.LanguageName}}.`))

	reframeTemplate = template.Must(template.New("reframe").Parse(
		`Someone is feeling {{.Emotion}} and holds this belief: "{{.Belief}}". ` +
			`Reply with exactly one short, positive reframe of that belief in under {{.MaxWords}} words. ` +
			`Do not add greetings, explanations, lists, quotation marks, emojis, asterisks, or any other extra content or symbols.`))

	storyTemplate = template.Must(template.New("story").Parse(
		`Write a calming, metaphorical short story about resilience and growth for someone who is feeling {{.Emotion}} ` +
			`and believes "{{.Belief}}". ` +
			`Keep it to about {{.Words}} words. ` +
			`Use plain language only: no title, no markdown, no asterisks, no emojis, and no other decorative symbols.`))
)

// languageNames maps common language codes to the names used in prompts.
// Unknown codes are passed through as-is.
var languageNames = map[string]string{
	"ar": "Arabic",
	"bn": "Bengali",
	"de": "German",
	"en": "English",
	"es": "Spanish",
	"fr": "French",
	"hi": "Hindi",
	"it": "Italian",
	"ja": "Japanese",
	"ko": "Korean",
	"nl": "Dutch",
	"pt": "Portuguese",
	"ru": "Russian",
	"ta": "Tamil",
	"tr": "Turkish",
	"zh": "Chinese",
}

// LanguageName returns the prompt name for a language code, e.g. "es" -> "Spanish (es)".
func LanguageName(code string) string {
	code = strings.TrimSpace(code)
	base := strings.ToLower(code)
	if i := strings.IndexAny(base, "-_"); i > 0 {
		base = base[:i]
	}
	if name, ok := languageNames[base]; ok {
		return fmt.Sprintf("%s (%s)", name, code)
	}
	return code
}

func render(t *template.Template, data any) (string, error) {
	var b strings.Builder
	if err := t.Execute(&b, data); err != nil {
		return "", fmt.Errorf("rendering %s prompt: %w", t.Name(), err)
	}
	return b.String(), nil
}

// ChatInstruction renders the persona instruction prepended to every chat.
func (p Persona) ChatInstruction(language string) (string, error) {
	return render(chatTemplate, struct {
		Name         string
		LanguageName string
	}{
		Name:         p.Name,
		LanguageName: LanguageName(language),
	})
}

// ReframePrompt renders the single-turn reframe prompt.
func (p Persona) ReframePrompt(emotion, belief string) (string, error) {
	return render(reframeTemplate, struct {
		Emotion  string
		Belief   string
		MaxWords int
	}{
		Emotion:  emotion,
		Belief:   belief,
		MaxWords: p.ReframeMaxWords,
	})
}

// StoryPrompt renders the single-turn story prompt.
func (p Persona) StoryPrompt(emotion, belief string) (string, error) {
	return render(storyTemplate, struct {
		Emotion string
		Belief  string
		Words   int
	}{
		Emotion: emotion,
		Belief:  belief,
		Words:   p.StoryWords,
	})
}
