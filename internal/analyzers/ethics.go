package analyzers

import (
	"context"
	"fmt"
	"strings"

	"feasly/backend/internal/feasibility"
)

var (
	criticalEthicsDomains = []string{
		"human subjects", "clinical trial", "gene editing", "crispr", "embryo",
		"human enhancement", "autonomous weapons", "surveillance",
		"facial recognition", "social credit", "children", "minors",
		"vulnerable populations",
	}
	highRiskEthicsDomains = []string{
		"medical", "healthcare", "diagnosis", "pharmaceutical", "personal data",
		"health data", "financial data", "location tracking", "predictive policing",
		"hiring decision", "credit scoring", "deepfake", "dual-use",
	}
	moderateRiskEthicsDomains = []string{
		"machine learning", "artificial intelligence", "algorithm", "user data",
		"privacy", "social media", "recommendation system", "drone",
		"emotion recognition",
	}
	privacyIndicators = []string{
		"personal data", "user data", "tracking", "monitoring", "biometric",
		"location", "medical records", "health information",
	}
	biasIndicators = []string{
		"machine learning", "algorithm", "classification", "prediction",
		"scoring", "ranking", "hiring", "lending", "facial recognition",
	}
)

// Ethics scores ethical risk from the domains the project touches. Riskier
// domains lower feasibility and raise the safeguards the project needs.
type Ethics struct{}

func (Ethics) Dimension() feasibility.Dimension { return feasibility.DimensionEthics }

func (Ethics) Analyze(_ context.Context, input feasibility.AnalyzerInput) (feasibility.DimensionAnalysis, error) {
	text := strings.ToLower(input.Description + " " + input.ResearchContext)

	riskSignal := countMatches(text, criticalEthicsDomains)*50 +
		countMatches(text, highRiskEthicsDomains)*25 +
		countMatches(text, moderateRiskEthicsDomains)*10

	var riskLevel string
	var score float64
	switch {
	case riskSignal >= 50:
		riskLevel, score = "Critical", 30
	case riskSignal >= 25:
		riskLevel, score = "High", 50
	case riskSignal >= 10:
		riskLevel, score = "Medium", 70
	default:
		riskLevel, score = "Low", 90
	}

	var risks []feasibility.Risk
	var safeguards []string
	if containsAny(text, []string{"human subjects", "clinical trial", "patients"}) {
		risks = append(risks, feasibility.Risk{Description: "Human subjects research requires IRB approval and informed consent", Severity: "high"})
		safeguards = append(safeguards, "Obtain institutional review board approval before any human involvement")
	}
	if containsAny(text, []string{"gene editing", "crispr", "germline"}) {
		risks = append(risks, feasibility.Risk{Description: "Genetic manipulation carries consequences that may span generations", Severity: "high"})
	}
	if containsAny(text, privacyIndicators) {
		risks = append(risks, feasibility.Risk{Description: "Handling of personal data creates privacy and compliance exposure", Severity: "medium"})
		safeguards = append(safeguards, "Apply data minimization and obtain explicit consent for collection")
	}
	if containsAny(text, biasIndicators) {
		risks = append(risks, feasibility.Risk{Description: "Automated decisions may perpetuate or amplify existing biases", Severity: "medium"})
		safeguards = append(safeguards, "Audit model outputs for disparate impact across demographic groups")
	}
	if containsAny(text, []string{"surveillance", "facial recognition", "tracking"}) {
		risks = append(risks, feasibility.Risk{Description: "Surveillance capabilities invite misuse and regulatory backlash", Severity: "high"})
	}

	score -= clamp(float64(len(risks))*3, 0, 15)
	score = clamp(score, 0, 100)

	recommendations := []string{"Document an ethics review as part of the project plan"}
	if riskLevel == "Critical" || riskLevel == "High" {
		recommendations = append(recommendations, "Engage an independent ethics advisor before development begins")
	}

	var opportunities []feasibility.Opportunity
	if containsAny(text, []string{"sustainable", "accessibility", "health", "education", "safety"}) {
		opportunities = append(opportunities, feasibility.Opportunity{
			Description: "Clear social benefit strengthens the project's public standing",
			Impact:      "medium",
		})
	}

	signal := countMatches(text, criticalEthicsDomains) + countMatches(text, highRiskEthicsDomains) + countMatches(text, moderateRiskEthicsDomains)
	return feasibility.DimensionAnalysis{
		Dimension:  feasibility.DimensionEthics,
		Score:      score,
		Confidence: confidenceForSignal(signal),
		Reasoning: fmt.Sprintf("Ethical risk level is %s based on the domains the project touches; required safeguards scale with that risk.",
			riskLevel),
		KeyFindings: []string{
			fmt.Sprintf("Ethical risk level: %s", riskLevel),
		},
		Risks:           risks,
		Opportunities:   opportunities,
		Recommendations: append(recommendations, safeguards...),
	}, nil
}
