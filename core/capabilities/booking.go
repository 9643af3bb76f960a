package capabilities

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/koscakluka/leasing-agent/core/llms"
)

type bookingParameters struct {
	Name        string `json:"name" jsonschema:"description=Caller's full name"`
	PhoneNumber string `json:"phone_number" jsonschema:"description=Caller's phone number"`
	UnitID      string `json:"unit_id" jsonschema:"description=Identifier of the unit to view"`
	Time        string `json:"time" jsonschema:"description=Desired appointment time"`
}

type bookingConfirmation struct {
	Status    string `json:"status"`
	Reference string `json:"reference"`
	UnitID    string `json:"unit_id"`
	Time      string `json:"time"`
}

// NewBooking returns the appointment booking capability. It stands in for a
// real booking API and acknowledges every well-formed request.
func NewBooking() llms.Tool {
	return llms.NewTool("book_appointment",
		"Book a viewing appointment for a specific unit on behalf of the caller",
		func(_ context.Context, parameters bookingParameters) (string, error) {
			confirmation := bookingConfirmation{
				Status:    "confirmed",
				Reference: uuid.NewString(),
				UnitID:    parameters.UnitID,
				Time:      parameters.Time,
			}

			response, err := json.Marshal(confirmation)
			if err != nil {
				return "", fmt.Errorf("failed to marshal confirmation: %w", err)
			}
			return string(response), nil
		})
}
