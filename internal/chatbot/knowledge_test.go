package chatbot

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMatcher_Respond(t *testing.T) {
	m := NewMatcher(DefaultTopics)
	response := func(name string) string {
		for _, topic := range DefaultTopics {
			if topic.Name == name {
				return topic.Response
			}
		}
		t.Fatalf("unknown topic %s", name)
		return ""
	}

	tests := []struct {
		name     string
		question string
		want     string
	}{
		{"single keyword", "I have terrible CRAMPS", response("pain")},
		{"most keywords wins", "is a late period with pain irregular?", response("irregular")},
		{"tie keeps first topic", "period pain", response("period")},
		{"multi word keyword", "what is premenstrual syndrome", response("pms")},
		{"nothing matches", "what's the weather like", Fallback},
		{"empty question", "", Fallback},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, m.Respond(tt.question))
		})
	}
}
