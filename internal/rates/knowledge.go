package rates

import (
	"context"
	"fmt"
	"strconv"

	"github.com/marhaven/tariffdesk/internal/llm"
	"github.com/marhaven/tariffdesk/internal/model"
	"github.com/marhaven/tariffdesk/internal/service"
)

// RateAnswerer answers a structured tariff question. Satisfied by
// *llm.Resolver and by test doubles.
type RateAnswerer interface {
	LookupRate(ctx context.Context, prompt string) (llm.RateAnswer, error)
}

// KnowledgeSource poses a natural-language tariff question to a knowledge
// service and maps the structured answer onto a rate contribution. A "not
// applicable" answer is a successful zero-rate lookup; a contract
// violation in the answer is a source failure.
type KnowledgeSource struct {
	answerer RateAnswerer
	name     string
	prompt   func(code, description string) string
}

// NewEmergencySource asks whether a code is subject to additional tariffs
// imposed under the emergency economic powers authority.
func NewEmergencySource(answerer RateAnswerer) *KnowledgeSource {
	return &KnowledgeSource{
		answerer: answerer,
		name:     model.SourceEmergency,
		prompt:   emergencyPrompt,
	}
}

// NewReciprocalSource asks whether a code is subject to the reciprocal
// tariffs on imports from the supported trade partner.
func NewReciprocalSource(answerer RateAnswerer) *KnowledgeSource {
	return &KnowledgeSource{
		answerer: answerer,
		name:     model.SourceReciprocal,
		prompt:   reciprocalPrompt,
	}
}

// Name implements service.RateSource.
func (s *KnowledgeSource) Name() string {
	return s.name
}

// Lookup implements service.RateSource.
func (s *KnowledgeSource) Lookup(ctx context.Context, code, description string) (service.RateResult, error) {
	answer, err := s.answerer.LookupRate(ctx, s.prompt(code, description))
	if err != nil {
		return service.RateResult{}, fmt.Errorf("knowledge lookup failed: %w", err)
	}

	if !answer.Applicable {
		return service.RateResult{Rate: 0, Note: answer.Reason}, nil
	}
	if answer.Rate < 0 {
		return service.RateResult{}, fmt.Errorf("knowledge service returned negative rate %s",
			strconv.FormatFloat(answer.Rate, 'f', -1, 64))
	}

	return service.RateResult{Rate: answer.Rate, Note: answer.Reason}, nil
}

func emergencyPrompt(code, _ string) string {
	return fmt.Sprintf(`Please confirm whether the HS code [%s] is subject to the additional tariffs imposed by the United States under the "International Emergency Economic Powers Act" (IEEPA), and what the current tariff rate is.

Detailed Instructions:
- Check the latest announcements from U.S. Customs and Border Protection (CBP)
- Confirm whether the IEEPA tariffs apply (generally applicable to all imports from China)
- Record the current applicable tariff rate
- Check if there are any specific product exclusion clauses

Return the following JSON format in a fenced code block:
`+"```json"+`
{
  "applicable": "<Y or N>",
  "rate": "<rate if Y else 0>",
  "reason": "<reason>"
}
`+"```", code)
}

func reciprocalPrompt(code, _ string) string {
	return fmt.Sprintf(`Please confirm whether the HS code [%s] is subject to the reciprocal tariffs (Reciprocal Tariff) imposed by the United States on imports from China, and what the current tariff rate is.

Detailed Instructions:
- Check the latest announcements from the Office of the United States Trade Representative (USTR) or executive orders from the White House
- Confirm whether the reciprocal tariff applies (generally applicable to all imports from China)
- Record the current applicable tariff rate
- Check if there are any specific product exclusion clauses

Return the following JSON format in a fenced code block:
`+"```json"+`
{
  "applicable": "<Y or N>",
  "rate": "<rate if Y else 0>",
  "reason": "<reason>"
}
`+"```", code)
}
