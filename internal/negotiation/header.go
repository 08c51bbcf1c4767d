package negotiation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dunglas/httpsfv"
)

// UCPAgent identifies the calling agent in the UCP-Agent request header.
// Wire form is an RFC 8941 Item: the agent name followed by parameters.
//
//	my-agent;version="2026-01-11";profile="https://agent.example/profile"
type UCPAgent struct {
	Name       string
	Version    string
	ProfileURL string // optional
}

// FormatUCPAgentHeader serializes the agent identity.
// The name is sent as a Token when it is a valid one, otherwise as a String.
func FormatUCPAgentHeader(agent UCPAgent) (string, error) {
	if agent.Name == "" {
		return "", errors.New("agent name is required")
	}

	var item httpsfv.Item
	if isToken(agent.Name) {
		item = httpsfv.NewItem(httpsfv.Token(agent.Name))
	} else {
		item = httpsfv.NewItem(agent.Name)
	}
	if agent.Version != "" {
		item.Params.Add("version", agent.Version)
	}
	if agent.ProfileURL != "" {
		item.Params.Add("profile", agent.ProfileURL)
	}

	header, err := httpsfv.Marshal(item)
	if err != nil {
		return "", fmt.Errorf("encoding UCP-Agent header: %w", err)
	}
	return header, nil
}

// ParseUCPAgentHeader decodes a UCP-Agent header produced by FormatUCPAgentHeader.
// Unknown parameters are ignored.
func ParseUCPAgentHeader(header string) (UCPAgent, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return UCPAgent{}, errors.New("empty UCP-Agent header")
	}

	item, err := httpsfv.UnmarshalItem([]string{header})
	if err != nil {
		return UCPAgent{}, fmt.Errorf("invalid UCP-Agent header: %w", err)
	}

	var agent UCPAgent
	switch v := item.Value.(type) {
	case httpsfv.Token:
		agent.Name = string(v)
	case string:
		agent.Name = v
	default:
		return UCPAgent{}, errors.New("agent name must be a token or string")
	}

	if v, ok := item.Params.Get("version"); ok {
		s, ok := v.(string)
		if !ok {
			return UCPAgent{}, errors.New("version parameter must be a string")
		}
		agent.Version = s
	}
	if v, ok := item.Params.Get("profile"); ok {
		s, ok := v.(string)
		if !ok {
			return UCPAgent{}, errors.New("profile parameter must be a string")
		}
		agent.ProfileURL = s
	}

	return agent, nil
}

// isToken reports whether s is a valid RFC 8941 sf-token.
func isToken(s string) bool {
	if s == "" {
		return false
	}
	c := s[0]
	if c != '*' && !(c >= 'a' && c <= 'z') && !(c >= 'A' && c <= 'Z') {
		return false
	}
	for i := 1; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case strings.IndexByte("!#$%&'*+-.^_`|~:/", c) >= 0:
		default:
			return false
		}
	}
	return true
}
