package signal

import (
	"fmt"
	"sort"

	"rulekit/internal/config"
)

// classifierEnums is the closed set of accepted answers per classifier
// question. Free text is rejected.
var classifierEnums = map[string][]string{
	"teamSize":        {"solo", "small", "medium", "large"},
	"dataSensitivity": {"public", "internal", "confidential", "regulated"},
	"scale":           {"small", "medium", "large"},
	"compliance":      {"gdpr", "hipaa", "soc2", "pci"},
	"maturity":        {"prototype", "growth", "stable"},
	"breaking":        {"allowed", "minimize", "forbidden"},
	"priority":        {"speed", "balanced", "quality"},
}

// ClassifierQuestions returns the classifier question names in stable order.
func ClassifierQuestions() []string {
	names := make([]string, 0, len(classifierEnums))
	for name := range classifierEnums {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ValidChoices returns the accepted answers for a question.
func ValidChoices(question string) []string {
	return classifierEnums[question]
}

// Classifiers converts configured classifier answers to UserChoice signals,
// validating every answer against its closed enumeration.
func Classifiers(cfg config.ClassifiersConfig) ([]Signal, error) {
	var signals []Signal

	single := []struct {
		question string
		answer   string
	}{
		{"teamSize", cfg.TeamSize},
		{"dataSensitivity", cfg.DataSensitivity},
		{"scale", cfg.Scale},
		{"maturity", cfg.Maturity},
		{"breaking", cfg.Breaking},
		{"priority", cfg.Priority},
	}

	for _, q := range single {
		if q.answer == "" {
			continue
		}
		if !validChoice(q.question, q.answer) {
			return nil, fmt.Errorf("invalid %s %q: must be one of %v",
				q.question, q.answer, classifierEnums[q.question])
		}
		signals = append(signals, Signal{
			Kind:  UserChoice,
			Value: q.question + "=" + q.answer,
		})
	}

	// Compliance is multi-select
	seen := map[string]bool{}
	for _, answer := range cfg.Compliance {
		if !validChoice("compliance", answer) {
			return nil, fmt.Errorf("invalid compliance %q: must be one of %v",
				answer, classifierEnums["compliance"])
		}
		if seen[answer] {
			continue
		}
		seen[answer] = true
		signals = append(signals, Signal{
			Kind:  UserChoice,
			Value: "compliance=" + answer,
		})
	}

	return signals, nil
}

func validChoice(question, answer string) bool {
	for _, v := range classifierEnums[question] {
		if v == answer {
			return true
		}
	}
	return false
}
