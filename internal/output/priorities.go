package output

// SeverityPriority defines the ordering priority for finding severities
// Lower numbers have higher priority (sorted first)
var SeverityPriority = map[string]int{
	"CRITICAL": 1,
	"HIGH":     2,
	"MEDIUM":   3,
	"LOW":      4,
}

// TierOrder defines the presentation order of remediation tiers
var TierOrder = []string{"quickwin", "moderate", "complex", "major"}

// TierLabels maps tier ids to their display names
var TierLabels = map[string]string{
	"quickwin": "Quick Wins",
	"moderate": "Moderate",
	"complex":  "Complex",
	"major":    "Major",
}

// GetSeverityPriority returns the priority for a given severity
// Unknown severities get the lowest priority (highest number)
func GetSeverityPriority(severity string) int {
	if priority, ok := SeverityPriority[severity]; ok {
		return priority
	}
	return len(SeverityPriority) + 1
}

// GetTierLabel returns the display name for a tier id
func GetTierLabel(tier string) string {
	if label, ok := TierLabels[tier]; ok {
		return label
	}
	return tier
}
