package debate

import "strings"

// ContextRetriever returns auxiliary context for a topic and argument,
// possibly empty. The orchestrator only depends on this boundary.
type ContextRetriever interface {
	Retrieve(topic, argument string) string
}

// KeywordRetriever is a fixed keyword-table retriever: it surfaces the
// concepts from the topic's vocabulary that the argument actually mentions.
type KeywordRetriever struct {
	topics map[string][]string
}

// NewKeywordRetriever builds the retriever with the built-in topic table.
func NewKeywordRetriever() *KeywordRetriever {
	return &KeywordRetriever{
		topics: map[string][]string{
			"climate change": {
				"environment", "carbon", "emissions", "global warming", "renewable", "sustainability",
			},
			"artificial intelligence": {
				"machine learning", "neural network", "algorithm", "automation", "robotics",
			},
			"universal basic income": {
				"welfare", "income", "employment", "economy", "social security",
			},
		},
	}
}

func (r *KeywordRetriever) Retrieve(topic, argument string) string {
	vocab := r.topics[strings.ToLower(topic)]
	if len(vocab) == 0 {
		return ""
	}

	arg := strings.ToLower(argument)
	var matched []string
	for _, kw := range vocab {
		if strings.Contains(arg, kw) {
			matched = append(matched, kw)
		}
	}

	if len(matched) == 0 {
		return ""
	}
	return "Related concepts: " + strings.Join(matched, ", ") + ". "
}
