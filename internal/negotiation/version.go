// Package negotiation checks protocol compatibility between this agent and a
// merchant: protocol version, capability and payment handler overlap.
package negotiation

import (
	"errors"
	"fmt"
	"time"

	"ucp-agent/internal/model"
)

// versionLayout is the UCP protocol version format.
const versionLayout = "2006-01-02"

// ErrUnparsableVersion is returned when either version is not YYYY-MM-DD.
// Callers treat it as a warning and proceed.
var ErrUnparsableVersion = errors.New("unparsable protocol version")

// ValidateVersion checks that the merchant implements at least the agent's
// protocol version. A client version later than the merchant's yields a
// *model.Error of KindVersion. An empty merchant version is accepted.
func ValidateVersion(clientVersion, merchantVersion string) error {
	if merchantVersion == "" {
		return nil
	}

	client, err := time.Parse(versionLayout, clientVersion)
	if err != nil {
		return fmt.Errorf("%w: client %q", ErrUnparsableVersion, clientVersion)
	}
	merchant, err := time.Parse(versionLayout, merchantVersion)
	if err != nil {
		return fmt.Errorf("%w: merchant %q", ErrUnparsableVersion, merchantVersion)
	}

	if client.After(merchant) {
		return model.NewVersionError(clientVersion, merchantVersion)
	}
	return nil
}
