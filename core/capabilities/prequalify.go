package capabilities

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/koscakluka/leasing-agent/core/llms"
)

type prequalifyParameters struct {
	Income   float64 `json:"income" jsonschema:"description=Applicant's gross monthly income in dollars"`
	HasPets  string  `json:"has_pets" jsonschema:"description=Whether the applicant owns pets ('yes' or 'no')"`
	IsSmoker string  `json:"is_smoker" jsonschema:"description=Whether the applicant smokes ('yes' or 'no')"`
}

type prequalifyVerdict struct {
	Qualified bool   `json:"qualified"`
	Reason    string `json:"reason,omitempty"`
}

// NewPrequalify returns the pre-qualification capability. The rule is
// deterministic: smokers are disqualified, everyone else qualifies.
func NewPrequalify() llms.Tool {
	return llms.NewTool("prequalify",
		"Check whether a caller pre-qualifies for an apartment based on income, pet ownership and smoking status",
		func(_ context.Context, parameters prequalifyParameters) (string, error) {
			verdict := prequalifyVerdict{Qualified: true}
			if parameters.IsSmoker == "yes" {
				verdict.Qualified = false
				verdict.Reason = "our communities are smoke-free and cannot accommodate smokers"
			}

			response, err := json.Marshal(verdict)
			if err != nil {
				return "", fmt.Errorf("failed to marshal verdict: %w", err)
			}
			return string(response), nil
		})
}
