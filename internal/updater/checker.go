// Package updater checks a vendor endpoint for the latest published AIRAC
// cycle, used only to populate the optional latestCycle field of a
// navigation-data install status report. Failure here is never fatal to
// the caller.
package updater

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/navigraph/navdata-interface/internal/httpc"
)

// cycleResponse is the vendor endpoint's {cycle: "YYMM"} payload.
type cycleResponse struct {
	Cycle string `json:"cycle"`
}

// LatestCycle fetches the currently-published AIRAC cycle identifier
// (e.g. "2501") from endpoint. Any transport or decode failure is
// returned as an error for the caller to treat as "field omitted" rather
// than surfaced to the task's own result.
func LatestCycle(ctx context.Context, client httpc.Client, endpoint string) (string, error) {
	resp, err := client.Get(ctx, endpoint)
	if err != nil {
		return "", fmt.Errorf("fetch latest cycle: %w", err)
	}
	if resp.StatusCode != 200 {
		return "", fmt.Errorf("fetch latest cycle: unexpected status %d", resp.StatusCode)
	}

	var body cycleResponse
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		return "", fmt.Errorf("decode latest cycle response: %w", err)
	}
	if body.Cycle == "" {
		return "", fmt.Errorf("latest cycle response missing \"cycle\"")
	}
	return body.Cycle, nil
}
