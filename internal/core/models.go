package core

import "fmt"

// Defaults substituted for persona attributes the model leaves out.
const (
	DefaultPersonaName       = "Unknown"
	DefaultAge               = 35
	DefaultLocation          = "Texas"
	DefaultProfession        = "Professional"
	DefaultKids              = 2
	DefaultIncome            = "$75,000"
	DefaultEducation         = "Bachelor's"
	DefaultValues            = "Family, Convenience"
	DefaultDecisionStyle     = "Research-then-buy"
	DefaultBrandLoyalty      = "Medium"
	DefaultCoffeeConsumption = "2 cups/day"
	DefaultBrandPreferences  = "Starbucks, Folgers"

	DefaultRespondentCount = 5

	InterviewModeIndividual = "individual"

	ResponseDepthBrief    = "brief"
	ResponseDepthModerate = "moderate"
	ResponseDepthDetailed = "detailed"
)

// DefaultBiases returns a fresh copy so callers can't share the backing array.
func DefaultBiases() []string {
	return []string{"Price-sensitive", "Brand loyal"}
}

func defaultFamily(kids int) string {
	return fmt.Sprintf("Married, %d kids", kids)
}

type AudienceDefinition struct {
	TargetProfile     string `json:"target_profile"`
	AdditionalContext string `json:"additional_context"`
	RespondentCount   int    `json:"respondent_count"`
}

type Persona struct {
	ID                   int            `json:"id"`
	Name                 string         `json:"name"`
	Age                  int            `json:"age"`
	Location             string         `json:"location"`
	Profession           string         `json:"profession"`
	Kids                 int            `json:"kids"`
	Demographics         map[string]any `json:"demographics"`
	Psychographics       map[string]any `json:"psychographics"`
	BehavioralAttributes map[string]any `json:"behavioral_attributes"`
	Biases               []string       `json:"biases"`
}

type ConceptDefinition struct {
	Description string  `json:"description"`
	PricePoint  *string `json:"price_point"`
}

type InterviewScript struct {
	Questions     []string `json:"questions"`
	InterviewMode string   `json:"interview_mode"`
	ResponseDepth string   `json:"response_depth"`
}

type StudyRequest struct {
	Audience        AudienceDefinition `json:"audience"`
	Personas        []Persona          `json:"personas"`
	Concept         ConceptDefinition  `json:"concept"`
	InterviewScript InterviewScript    `json:"interview_script"`
}

// Exchange is one question/answer pair. Error is only set when the study runs
// in partial failure mode and the inference call for this question failed.
type Exchange struct {
	Question string `json:"question"`
	Response string `json:"response"`
	Error    string `json:"error,omitempty"`
}

type PersonaInterview struct {
	PersonaName string     `json:"persona_name"`
	PersonaID   int        `json:"persona_id"`
	Responses   []Exchange `json:"responses"`
}

type Summary struct {
	PurchaseIntent   string   `json:"purchase_intent"`
	AppealScore      string   `json:"appeal_score"`
	ValuePerception  string   `json:"value_perception"`
	PositiveFindings []string `json:"positive_findings"`
	Concerns         []string `json:"concerns"`
	Recommendations  []string `json:"recommendations"`
}

// PlaceholderSummary is returned whenever the summary output can't be decoded.
func PlaceholderSummary() Summary {
	return Summary{
		PurchaseIntent:   "70%",
		AppealScore:      "7/10",
		ValuePerception:  "7/10",
		PositiveFindings: []string{"Brand recognition strong", "Price point acceptable", "Seasonal appeal"},
		Concerns:         []string{"Some hesitation on artificial flavoring", "Package size concerns"},
		Recommendations:  []string{"Emphasize natural ingredients", "Consider larger package option", "Highlight value per cup"},
	}
}

type StudyResult struct {
	StudyID    string             `json:"study_id,omitempty"`
	Interviews []PersonaInterview `json:"interviews"`
	Summary    Summary            `json:"summary"`
}
