package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/linnemanlabs/go-core/log"
)

// ResponseTokens caps the generated notification length. The prompt itself
// asks for under 200 words; this is the hard ceiling on the model side.
const ResponseTokens = 1024

// Composer builds a notification prompt per match and invokes the generative
// text service. Generation failures never propagate past Compose; callers
// continue with the remaining matches.
type Composer struct {
	gen    Generator
	logger log.Logger
}

// NewComposer creates a Composer over the given generator.
func NewComposer(gen Generator, logger log.Logger) *Composer {
	if logger == nil {
		logger = log.Nop()
	}
	return &Composer{gen: gen, logger: logger}
}

// Compose generates a personalized notification for the match. The returned
// body is trimmed of surrounding whitespace; no further content validation is
// performed. On any generator failure it returns a non-nil error wrapped as
// ErrGenerationUnavailable.
func (c *Composer) Compose(ctx context.Context, m *Match) (string, error) {
	prompt := buildPrompt(m)

	body, err := c.gen.Generate(ctx, prompt)
	if err != nil {
		c.logger.Error(ctx, err, "notification generation failed",
			"customer", m.Customer.Name,
			"policy_type", m.Customer.PolicyType,
			"alert_event", m.Alert.Event,
		)
		return "", fmt.Errorf("%w: %v", ErrGenerationUnavailable, err)
	}

	body = strings.TrimSpace(body)
	if body == "" {
		return "", fmt.Errorf("%w: empty response", ErrGenerationUnavailable)
	}
	return body, nil
}

// buildPrompt renders the notification instruction for a single match.
func buildPrompt(m *Match) string {
	return fmt.Sprintf(`You are an AI assistant for ABCD Insurance.
Generate a concise and helpful email to a customer regarding a severe weather alert.

Customer Name: %s
Customer Policy Type: %s
Severe Weather Alert Details:
- Event: %s
- Description: %s
- Sender: %s
- Start Time: %s UTC
- End Time: %s UTC

The email should:
1. Greet the customer by name.
2. Clearly state the severe weather alert.
3. Briefly explain how this alert might be relevant to their specific %s policy.
4. Advise them on general safety precautions or actions related to their policy.
5. Offer assistance and provide a call to action (e.g., "contact us if you have questions").
6. Be professional and empathetic.
7. Keep it under 200 words.`,
		m.Customer.Name,
		m.Customer.PolicyType,
		orNA(m.Alert.Event),
		orNA(m.Alert.Description),
		orNA(m.Alert.SenderName),
		epochUTC(m.Alert.Start),
		epochUTC(m.Alert.End),
		m.Customer.PolicyType,
	)
}

// epochUTC formats epoch seconds in the ctime layout the original alert feed
// tooling used.
func epochUTC(sec int64) string {
	return time.Unix(sec, 0).UTC().Format(time.ANSIC)
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}
