package disc

import (
	"fmt"

	"github.com/warp/business-admin/questionnaire"
)

// Option is one adjective of an item, tied to the factor it indicates.
type Option struct {
	Factor Factor `json:"factor" yaml:"factor"`
	Label  string `json:"label" yaml:"label"`
}

// Item is one step of the questionnaire.
type Item struct {
	Key     string   `json:"key"`
	Prompt  string   `json:"prompt"`
	Options []Option `json:"options"`
}

const prompt = "Which word describes you best?"

var adjectives = [][4]string{
	// D, I, S, C
	{"Direct", "Enthusiastic", "Patient", "Precise"},
	{"Decisive", "Sociable", "Loyal", "Analytical"},
	{"Competitive", "Persuasive", "Calm", "Careful"},
	{"Bold", "Optimistic", "Supportive", "Systematic"},
	{"Assertive", "Expressive", "Steady", "Accurate"},
	{"Determined", "Talkative", "Cooperative", "Reserved"},
	{"Independent", "Charming", "Reliable", "Thorough"},
	{"Demanding", "Inspiring", "Consistent", "Logical"},
	{"Results-driven", "Friendly", "Good listener", "Detail-oriented"},
	{"Ambitious", "Spontaneous", "Even-tempered", "Disciplined"},
	{"Forceful", "Playful", "Gentle", "Diplomatic"},
	{"Daring", "Convincing", "Modest", "Perfectionist"},
	{"Pioneering", "Lively", "Accommodating", "Cautious"},
	{"Fast-paced", "Popular", "Predictable", "Orderly"},
	{"Outspoken", "Animated", "Considerate", "Factual"},
	{"Self-confident", "Trusting", "Harmonious", "Conscientious"},
	{"Risk-taker", "Magnetic", "Dependable", "Objective"},
	{"Strong-willed", "Cheerful", "Agreeable", "Organized"},
	{"Driven", "Influential", "Relaxed", "Methodical"},
	{"Tough", "Outgoing", "Tolerant", "Rigorous"},
	{"Adventurous", "Impulsive", "Kind", "Exact"},
	{"Commanding", "Energetic", "Sincere", "Questioning"},
	{"Goal-focused", "Communicative", "Team player", "Quality-focused"},
	{"Unyielding", "Fun-loving", "Composed", "Rule-follower"},
}

// Items is the fixed questionnaire bank, in presentation order.
var Items = buildItems()

var itemIndex = func() map[string]int {
	m := make(map[string]int, len(Items))
	for i, it := range Items {
		m[it.Key] = i
	}
	return m
}()

func buildItems() []Item {
	items := make([]Item, len(adjectives))
	for i, words := range adjectives {
		opts := make([]Option, len(Factors))
		for j, f := range Factors {
			opts[j] = Option{Factor: f, Label: words[j]}
		}
		items[i] = Item{Key: fmt.Sprintf("q%d", i+1), Prompt: prompt, Options: opts}
	}
	return items
}

// ItemKeys returns the keys of every item in order.
func ItemKeys() []string {
	keys := make([]string, len(Items))
	for i, it := range Items {
		keys[i] = it.Key
	}
	return keys
}

// WizardQuestions adapts the item bank to a questionnaire wizard. Every
// item is required and answered with a factor letter.
func WizardQuestions() []questionnaire.Question {
	qs := make([]questionnaire.Question, len(Items))
	for i, it := range Items {
		choices := make([]string, len(it.Options))
		for j, o := range it.Options {
			choices[j] = string(o.Factor)
		}
		qs[i] = questionnaire.Question{Key: it.Key, Label: it.Prompt, Required: true, Choices: choices}
	}
	return qs
}
