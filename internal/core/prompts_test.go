package core

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func testPersona() Persona {
	return Persona{
		ID:         1,
		Name:       "Sarah Martinez",
		Age:        34,
		Location:   "Austin, TX",
		Profession: "Elementary Teacher",
		Kids:       2,
		Demographics: map[string]any{
			"income":    "$72,000",
			"education": "Bachelor's",
			"family":    "Married, 2 kids",
		},
		Psychographics:       map[string]any{"values": "Family, Quality"},
		BehavioralAttributes: map[string]any{"coffee_consumption": "2-3 cups/day", "brand_preferences": "Starbucks"},
		Biases:               []string{"Price-sensitive", "Influenced by reviews"},
	}
}

func TestPersonaGenerationPrompt(t *testing.T) {
	prompt := PersonaGenerationPrompt("Moms aged 30-45", "Coffee drinkers", 3)

	assert.Contains(t, prompt, "Generate 3 realistic personas")
	assert.Contains(t, prompt, "Target Audience: Moms aged 30-45")
	assert.Contains(t, prompt, "Additional Context: Coffee drinkers")
	assert.Contains(t, prompt, "Return ONLY a valid JSON array of 3 persona objects")
}

func TestInterviewResponsePrompt_Profile(t *testing.T) {
	prompt := InterviewResponsePrompt(testPersona(), "Pumpkin spice pods", "Would you buy this?", nil, ResponseDepthModerate)

	assert.Contains(t, prompt, "You are Sarah Martinez, a 34-year-old Elementary Teacher from Austin, TX.")
	assert.Contains(t, prompt, "- Income: $72,000")
	assert.Contains(t, prompt, "- Your behavioral biases: Price-sensitive, Influenced by reviews")
	assert.Contains(t, prompt, "Pumpkin spice pods")
	assert.Contains(t, prompt, "CURRENT QUESTION:\nWould you buy this?")
	assert.Contains(t, prompt, "(2-4 sentences typically)")
	assert.NotContains(t, prompt, "Previous conversation:")
}

func TestInterviewResponsePrompt_MissingAttributesUseDefaults(t *testing.T) {
	p := Persona{ID: 1, Name: "Jo", Age: 40, Location: "Ohio", Profession: "Nurse", Kids: 1}

	prompt := InterviewResponsePrompt(p, "concept", "q", nil, "")

	assert.Contains(t, prompt, "- Income: "+DefaultIncome)
	assert.Contains(t, prompt, "- Education: "+DefaultEducation)
	assert.Contains(t, prompt, "- Family: Married, 1 kids")
	assert.Contains(t, prompt, "- Values: "+DefaultValues)
	assert.Contains(t, prompt, "- Coffee habits: "+DefaultCoffeeConsumption)
	assert.Contains(t, prompt, "- Preferred brands: "+DefaultBrandPreferences)
}

func TestInterviewResponsePrompt_OnlyLastThreeExchanges(t *testing.T) {
	previous := []Exchange{
		{Question: "Q1", Response: "A1"},
		{Question: "Q2", Response: "A2"},
		{Question: "Q3", Response: "A3"},
		{Question: "Q4", Response: "A4"},
	}

	prompt := InterviewResponsePrompt(testPersona(), "concept", "Q5", previous, ResponseDepthModerate)

	assert.Contains(t, prompt, "Previous conversation:")
	assert.NotContains(t, prompt, "Q: Q1\n")
	for _, n := range []string{"2", "3", "4"} {
		assert.Contains(t, prompt, "Q: Q"+n+"\nYour answer: A"+n+"\n")
	}
	assert.Less(t, strings.Index(prompt, "Q: Q2"), strings.Index(prompt, "Q: Q4"))
}

func TestInterviewResponsePrompt_Depth(t *testing.T) {
	tests := []struct {
		depth string
		want  string
	}{
		{ResponseDepthBrief, "1-2 sentences at most"},
		{ResponseDepthModerate, "2-4 sentences typically"},
		{ResponseDepthDetailed, "4-6 sentences"},
		{"unknown", "2-4 sentences typically"},
	}
	for _, tt := range tests {
		t.Run(tt.depth, func(t *testing.T) {
			prompt := InterviewResponsePrompt(testPersona(), "c", "q", nil, tt.depth)
			assert.Contains(t, prompt, tt.want)
		})
	}
}

func TestSummaryPrompt(t *testing.T) {
	interviews := []PersonaInterview{
		{
			PersonaName: "Sarah",
			PersonaID:   1,
			Responses: []Exchange{
				{Question: "Like it?", Response: "Yes"},
				{Question: "Buy it?", Error: "timeout"},
			},
		},
		{PersonaName: "Mike", PersonaID: 2, Responses: []Exchange{{Question: "Like it?", Response: "No"}}},
	}

	prompt := SummaryPrompt("Pumpkin pods", interviews)

	assert.Contains(t, prompt, "PRODUCT CONCEPT:\nPumpkin pods")
	assert.Contains(t, prompt, "\nSarah:\nQ: Like it?\nA: Yes\n\n")
	assert.Contains(t, prompt, "\nMike:\nQ: Like it?\nA: No\n\n")
	assert.NotContains(t, prompt, "Buy it?")
	assert.Contains(t, prompt, `"purchase_intent": "XX%"`)
	assert.Contains(t, prompt, `(as string like "75%")`)
}
