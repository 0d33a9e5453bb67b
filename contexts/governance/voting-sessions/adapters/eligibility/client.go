// Package eligibility consumes the external member-eligibility service.
package eligibility

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"coopvotes/contexts/governance/voting-sessions/ports"
)

// StatusAbleToVote is the verdict value that authorizes a member.
const StatusAbleToVote = "ABLE_TO_VOTE"

type verdictResponse struct {
	Status string `json:"status"`
}

// Client calls GET {base}/users/{identityProof} and maps the returned status
// to an eligibility verdict. When Enabled is false every member is treated as
// eligible without a remote call. A transport or decode failure is an error,
// never silently a verdict.
type Client struct {
	BaseURL    string
	Enabled    bool
	HTTPClient *http.Client
	Logger     *slog.Logger
}

var _ ports.EligibilityGate = (*Client)(nil)

func (c *Client) CheckEligibility(ctx context.Context, identityProof string) (bool, error) {
	if !c.Enabled {
		if c.Logger != nil {
			c.Logger.Info("eligibility verification disabled, member treated as eligible",
				"event", "voting_eligibility_disabled",
				"module", "governance/voting-sessions",
				"layer", "adapter",
			)
		}
		return true, nil
	}

	proof := digitsOnly(identityProof)
	endpoint := strings.TrimRight(c.BaseURL, "/") + "/users/" + url.PathEscape(proof)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, fmt.Errorf("build eligibility request: %w", err)
	}

	client := c.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return false, fmt.Errorf("call eligibility service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("eligibility service returned status %d", resp.StatusCode)
	}
	var verdict verdictResponse
	if err := json.NewDecoder(resp.Body).Decode(&verdict); err != nil {
		return false, fmt.Errorf("decode eligibility response: %w", err)
	}

	eligible := verdict.Status == StatusAbleToVote
	if c.Logger != nil {
		c.Logger.Info("eligibility verified",
			"event", "voting_eligibility_checked",
			"module", "governance/voting-sessions",
			"layer", "adapter",
			"status", verdict.Status,
			"eligible", eligible,
		)
	}
	return eligible, nil
}

func digitsOnly(value string) string {
	var b strings.Builder
	for _, r := range value {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
