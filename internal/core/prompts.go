package core

import (
	"fmt"
	"strings"
)

// priorContextWindow is how many earlier exchanges of the same persona are
// replayed into each interview prompt.
const priorContextWindow = 3

func PersonaGenerationPrompt(audienceDefinition, additionalContext string, count int) string {
	return fmt.Sprintf(`Generate %[1]d realistic personas for market research.

Target Audience: %[2]s
Additional Context: %[3]s

For each persona, create a JSON object with:
- name (first and last name, realistic for the demographic)
- age (number within target range)
- location (city, state)
- profession (realistic job title)
- kids (number of children)
- income (household income as string like "$72,000")
- education (education level: High School, Associate's, Bachelor's, Master's, PhD)
- values (2-3 core values as comma-separated string)
- coffee_consumption (cups per day as string like "2-3 cups/day")
- brand_preferences (2-3 coffee brands as comma-separated string)
- biases (2-3 specific behavioral biases or quirks as array of strings)

IMPORTANT:
- Make personas diverse but realistic for the target audience
- Include natural variation in attributes
- Biases should be specific and behavioral (e.g., "Skeptical of unfamiliar brands", "Influenced by online reviews")
- Return ONLY a valid JSON array of %[1]d persona objects
- No markdown formatting, no extra text, just pure JSON

Example format:
[
  {
    "name": "Sarah Martinez",
    "age": 34,
    "location": "Austin, TX",
    "profession": "Elementary Teacher",
    "kids": 2,
    "income": "$72,000",
    "education": "Bachelor's",
    "values": "Family, Convenience, Quality",
    "coffee_consumption": "2-3 cups/day",
    "brand_preferences": "Starbucks, Folgers, Dunkin",
    "biases": ["Price-sensitive but willing to splurge", "Influenced by mom friends", "Skeptical of too-good deals"]
  }
]
`, count, audienceDefinition, additionalContext)
}

func InterviewResponsePrompt(persona Persona, concept, question string, previous []Exchange, depth string) string {
	var history strings.Builder
	if recent := lastExchanges(previous, priorContextWindow); len(recent) > 0 {
		history.WriteString("\n\nPrevious conversation:\n")
		for _, qa := range recent {
			fmt.Fprintf(&history, "Q: %s\nYour answer: %s\n", qa.Question, qa.Response)
		}
	}

	education := lookup(persona.Demographics, "education", DefaultEducation)

	return fmt.Sprintf(`You are %[1]s, a %[2]d-year-old %[3]s from %[4]s.

YOUR PROFILE:
- Income: %[5]s
- Education: %[6]s
- Family: %[7]s
- Values: %[8]s
- Coffee habits: %[9]s
- Preferred brands: %[10]s
- Your behavioral biases: %[11]s

PRODUCT CONCEPT YOU'RE BEING SHOWN:
%[12]s
%[13]s

CURRENT QUESTION:
%[14]s

INSTRUCTIONS:
- Respond as %[1]s would naturally respond
- Use vocabulary appropriate to your education level (%[6]s)
- Let your biases influence your answer (e.g., if you're price-sensitive, mention value)
- Be authentic - show hesitation ("hmm", "I'm not sure"), enthusiasm, or skepticism as appropriate
- Keep response conversational and realistic (%[15]s)
- Reference your actual life when relevant (kids, job, morning routine, etc.)
- Don't be overly helpful or agreeable - real people have doubts and objections
- Use natural speech patterns - incomplete thoughts, filler words, tangents are okay

Respond in first person ONLY as %[1]s. No quotes around your response, just speak naturally:`,
		persona.Name,
		persona.Age,
		persona.Profession,
		persona.Location,
		lookup(persona.Demographics, "income", DefaultIncome),
		education,
		lookup(persona.Demographics, "family", defaultFamily(persona.Kids)),
		lookup(persona.Psychographics, "values", DefaultValues),
		lookup(persona.BehavioralAttributes, "coffee_consumption", DefaultCoffeeConsumption),
		lookup(persona.BehavioralAttributes, "brand_preferences", DefaultBrandPreferences),
		strings.Join(persona.Biases, ", "),
		concept,
		history.String(),
		question,
		depthGuidance(depth),
	)
}

func SummaryPrompt(concept string, interviews []PersonaInterview) string {
	var interviewText strings.Builder
	for _, interview := range interviews {
		fmt.Fprintf(&interviewText, "\n%s:\n", interview.PersonaName)
		for _, resp := range interview.Responses {
			if resp.Error != "" {
				continue
			}
			fmt.Fprintf(&interviewText, "Q: %s\nA: %s\n\n", resp.Question, resp.Response)
		}
	}

	return fmt.Sprintf(`Analyze these market research interviews for the following product:

PRODUCT CONCEPT:
%s

INTERVIEW DATA:
%s

Based on these interviews, provide an analysis with:

1. **purchase_intent**: Estimated percentage likely to buy (as string like "75%%")
   - Calculate based on explicit purchase statements and enthusiasm levels

2. **appeal_score**: Overall appeal rating as string (like "7.5/10")
   - Based on positive vs negative reactions

3. **value_perception**: How good the value is perceived as string (like "6.8/10")
   - Based on price comments and value-for-money mentions

4. **positive_findings**: Array of 3 key positive insights (strings)
   - What resonates well with respondents
   - Brand equity, price points, convenience factors, etc.

5. **concerns**: Array of 2-3 key concerns or warnings (strings)
   - What makes them hesitate
   - Common objections or barriers

6. **recommendations**: Array of 3 actionable recommendations (strings)
   - Specific suggestions to improve the concept
   - Based on the interview feedback

FORMAT AS JSON:
{
  "purchase_intent": "XX%%",
  "appeal_score": "X.X/10",
  "value_perception": "X.X/10",
  "positive_findings": ["finding 1", "finding 2", "finding 3"],
  "concerns": ["concern 1", "concern 2"],
  "recommendations": ["recommendation 1", "recommendation 2", "recommendation 3"]
}

Return ONLY valid JSON, no markdown, no extra text.
`, concept, interviewText.String())
}

func lastExchanges(exchanges []Exchange, n int) []Exchange {
	if len(exchanges) <= n {
		return exchanges
	}
	return exchanges[len(exchanges)-n:]
}

func depthGuidance(depth string) string {
	switch depth {
	case ResponseDepthBrief:
		return "1-2 sentences at most"
	case ResponseDepthDetailed:
		return "4-6 sentences, with concrete details from your own life"
	default: // moderate
		return "2-4 sentences typically"
	}
}

// lookup renders a persona attribute, falling back when the key is missing
// or null.
func lookup(attrs map[string]any, key, fallback string) string {
	v, ok := attrs[key]
	if !ok || v == nil {
		return fallback
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
