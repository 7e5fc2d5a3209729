// Package chatbot answers menstrual-health questions from a fixed knowledge base.
package chatbot

import "strings"

// Fallback is returned when no topic keyword appears in the question.
const Fallback = "I'm sorry, I don't have information about that. Please consult your healthcare provider for specific medical advice."

// Topic is one knowledge base entry.
type Topic struct {
	Name     string
	Keywords []string
	Response string
}

// DefaultTopics is the built-in knowledge base. Order matters: the first topic wins ties.
var DefaultTopics = []Topic{
	{
		Name:     "period",
		Keywords: []string{"period", "menstruation", "menstrual cycle", "monthly cycle"},
		Response: "A menstrual period is the shedding of the uterine lining that occurs approximately every 28 days. It's a normal part of the reproductive cycle.",
	},
	{
		Name:     "pms",
		Keywords: []string{"pms", "premenstrual syndrome", "pre menstrual"},
		Response: "Premenstrual Syndrome (PMS) includes physical and emotional symptoms that occur before your period. Common symptoms include mood swings, bloating, and breast tenderness.",
	},
	{
		Name:     "pain",
		Keywords: []string{"pain", "cramps", "discomfort", "hurt"},
		Response: "Menstrual cramps are common but can be managed. Try heat therapy, gentle exercise, or over-the-counter pain relievers. If pain is severe, consult your healthcare provider.",
	},
	{
		Name:     "cycle",
		Keywords: []string{"cycle length", "cycle duration", "how long"},
		Response: "A typical menstrual cycle lasts 21-35 days, with the period itself lasting 3-7 days. However, cycle length can vary between individuals.",
	},
	{
		Name:     "hygiene",
		Keywords: []string{"hygiene", "sanitary", "pad", "tampon", "cup"},
		Response: "Good menstrual hygiene is important. Change sanitary products regularly (every 4-8 hours), wash hands before and after changing, and maintain proper genital hygiene.",
	},
	{
		Name:     "irregular",
		Keywords: []string{"irregular", "unpredictable", "missed period", "late period"},
		Response: "Irregular periods can be caused by stress, diet, exercise, or medical conditions. If irregularity persists, consult your healthcare provider.",
	},
}

// Matcher picks the topic whose keywords occur most often in a question.
type Matcher struct {
	topics []Topic
}

func NewMatcher(topics []Topic) *Matcher {
	return &Matcher{topics: topics}
}

// Respond returns the response of the topic with the strictly highest number
// of matching keywords (case-insensitive substring match), or Fallback.
func (m *Matcher) Respond(question string) string {
	lower := strings.ToLower(question)
	best, bestCount := "", 0

	for _, topic := range m.topics {
		count := 0
		for _, kw := range topic.Keywords {
			if strings.Contains(lower, strings.ToLower(kw)) {
				count++
			}
		}
		if count > bestCount {
			best, bestCount = topic.Response, count
		}
	}

	if best == "" {
		return Fallback
	}
	return best
}
