package negotiation

import (
	"sort"

	"golang.org/x/mod/semver"

	"ucp-agent/internal/model"
)

// Capability names the agent relies on.
const (
	CapabilityCheckout    = "dev.ucp.shopping.checkout"
	CapabilityFulfillment = "dev.ucp.shopping.fulfillment"
	CapabilityOrder       = "dev.ucp.shopping.order"
)

// Result is the overlap between what the agent declares and what the merchant offers.
type Result struct {
	// Version is the merchant's protocol version; the merchant is canonical.
	Version string

	// Capabilities both sides support, orphaned extensions pruned.
	Capabilities map[string][]model.Capability

	// PaymentHandlers the merchant offers that the agent can drive.
	PaymentHandlers map[string][]model.PaymentHandler
}

// Has reports whether the named capability survived negotiation.
func (r *Result) Has(capability string) bool {
	_, ok := r.Capabilities[capability]
	return ok
}

// Missing returns the required capabilities absent from the result, sorted.
func (r *Result) Missing(required ...string) []string {
	var missing []string
	for _, name := range required {
		if !r.Has(name) {
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)
	return missing
}

// AgentMetadata is what this agent declares: checkout with the fulfillment and
// order extensions at the protocol version it speaks. No payment handlers are
// declared, so every merchant handler is accepted.
func AgentMetadata() model.UCPMetadata {
	return model.UCPMetadata{
		Version: model.ProtocolVersion,
		Capabilities: map[string][]model.Capability{
			CapabilityCheckout: {{Version: model.ProtocolVersion}},
			CapabilityFulfillment: {{
				Version: model.ProtocolVersion,
				Extends: model.NewSingleExtends(CapabilityCheckout),
			}},
			CapabilityOrder: {{Version: model.ProtocolVersion}},
		},
	}
}

// CommonCapabilities validates the version and intersects capabilities and
// payment handlers of agent and merchant metadata.
func CommonCapabilities(agent, merchant model.UCPMetadata) (*Result, error) {
	if err := ValidateVersion(agent.Version, merchant.Version); err != nil {
		return nil, err
	}

	return &Result{
		Version:         merchant.Version,
		Capabilities:    intersectCapabilities(merchant.Capabilities, agent.Capabilities),
		PaymentHandlers: intersectPaymentHandlers(merchant.PaymentHandlers, agent.PaymentHandlers),
	}, nil
}

// intersectCapabilities keeps merchant capabilities the agent also names,
// then prunes extensions whose parents did not survive until stable.
// An agent declaring nothing accepts everything the merchant offers.
func intersectCapabilities(
	merchant map[string][]model.Capability,
	agent map[string][]model.Capability,
) map[string][]model.Capability {
	if len(agent) == 0 {
		return merchant
	}

	result := make(map[string][]model.Capability)
	for name, merchantCaps := range merchant {
		if agentCaps, ok := agent[name]; ok && len(agentCaps) > 0 && len(merchantCaps) > 0 {
			result[name] = merchantCaps
		}
	}

	for pruneOrphanedExtensions(result) {
	}
	return result
}

// pruneOrphanedExtensions removes capabilities whose `extends` parents are all missing.
// A multi-parent extension survives if any parent is present.
// Returns true if anything was pruned.
func pruneOrphanedExtensions(caps map[string][]model.Capability) bool {
	pruned := false

	for name, capList := range caps {
		for _, c := range capList {
			if c.Extends == nil || !c.Extends.IsExtension() {
				continue
			}
			hasParent := false
			for _, parent := range c.Extends.Parents() {
				if _, ok := caps[parent]; ok {
					hasParent = true
					break
				}
			}
			if !hasParent {
				delete(caps, name)
				pruned = true
				break
			}
		}
	}

	return pruned
}

// intersectPaymentHandlers returns merchant handlers the agent supports.
func intersectPaymentHandlers(
	merchant map[string][]model.PaymentHandler,
	agent map[string][]model.PaymentHandler,
) map[string][]model.PaymentHandler {
	if len(agent) == 0 {
		return merchant
	}

	result := make(map[string][]model.PaymentHandler)
	for name, merchantHandlers := range merchant {
		agentHandlers, ok := agent[name]
		if !ok {
			continue
		}
		var compatible []model.PaymentHandler
		for _, mh := range merchantHandlers {
			for _, ah := range agentHandlers {
				if handlersCompatible(mh, ah) {
					compatible = append(compatible, mh)
					break
				}
			}
		}
		if len(compatible) > 0 {
			result[name] = compatible
		}
	}
	return result
}

// handlersCompatible requires equal IDs and a merchant version no newer than
// the agent's. Semver when both parse, string order otherwise (YYYY-MM-DD).
func handlersCompatible(merchant, agent model.PaymentHandler) bool {
	if merchant.ID != agent.ID {
		return false
	}

	mv := normalizeVersion(merchant.Version)
	av := normalizeVersion(agent.Version)
	if !semver.IsValid(mv) || !semver.IsValid(av) {
		return merchant.Version <= agent.Version
	}
	return semver.Compare(mv, av) <= 0
}

func normalizeVersion(v string) string {
	if v == "" {
		return "v0.0.0"
	}
	if v[0] != 'v' {
		return "v" + v
	}
	return v
}

// HandlerIDs lists every handler ID in the registry, sorted.
func HandlerIDs(handlers map[string][]model.PaymentHandler) []string {
	var ids []string
	for _, list := range handlers {
		for _, h := range list {
			ids = append(ids, h.ID)
		}
	}
	sort.Strings(ids)
	return ids
}
