package debate

import (
	"strings"
	"testing"
)

func TestKeywordRetrieverMatches(t *testing.T) {
	r := NewKeywordRetriever()

	got := r.Retrieve("Climate Change", "We must cut carbon emissions and invest in renewable energy.")
	if !strings.HasPrefix(got, "Related concepts: ") {
		t.Fatalf("Retrieve = %q, want related-concepts prefix", got)
	}
	for _, kw := range []string{"carbon", "emissions", "renewable"} {
		if !strings.Contains(got, kw) {
			t.Errorf("Retrieve = %q, missing %q", got, kw)
		}
	}
}

func TestKeywordRetrieverNoMatch(t *testing.T) {
	r := NewKeywordRetriever()

	if got := r.Retrieve("climate change", "I simply disagree with you."); got != "" {
		t.Errorf("Retrieve = %q, want empty", got)
	}
	if got := r.Retrieve("unknown topic", "carbon emissions matter"); got != "" {
		t.Errorf("Retrieve on unknown topic = %q, want empty", got)
	}
}
