package pubky

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Capability grants read and/or write access below Scope.
type Capability struct {
	Scope string
	Read  bool
	Write bool
}

// RootCapability is granted to sessions opened by a Signer.
var RootCapability = Capability{Scope: "/", Read: true, Write: true}

// ParseCapability parses "<scope>:<actions>", e.g. "/pub/app/:rw".
func ParseCapability(s string) (Capability, error) {
	i := strings.LastIndexByte(s, ':')
	if i < 0 {
		return Capability{}, fmt.Errorf("%w: capability %q has no actions", ErrInvalidPath, s)
	}
	c := Capability{Scope: s[:i]}
	if !strings.HasPrefix(c.Scope, "/") {
		return Capability{}, fmt.Errorf("%w: capability scope %q is not absolute", ErrInvalidPath, c.Scope)
	}
	actions := s[i+1:]
	if actions == "" {
		return Capability{}, fmt.Errorf("%w: capability %q has no actions", ErrInvalidPath, s)
	}
	for _, a := range actions {
		switch a {
		case 'r':
			c.Read = true
		case 'w':
			c.Write = true
		default:
			return Capability{}, fmt.Errorf("%w: unknown action %q in %q", ErrInvalidPath, a, s)
		}
	}
	return c, nil
}

func (c Capability) String() string {
	var sb strings.Builder
	sb.WriteString(c.Scope)
	sb.WriteByte(':')
	if c.Read {
		sb.WriteByte('r')
	}
	if c.Write {
		sb.WriteByte('w')
	}
	return sb.String()
}

// Covers reports whether the capability grants the access to path.
func (c Capability) Covers(path string, write bool) bool {
	if write && !c.Write || !write && !c.Read {
		return false
	}
	if strings.HasSuffix(c.Scope, "/") {
		return strings.HasPrefix(path, c.Scope)
	}
	return path == c.Scope
}

type Capabilities []Capability

// ParseCapabilities parses a comma separated list. Empty input yields nil.
func ParseCapabilities(s string) (Capabilities, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make(Capabilities, 0, len(parts))
	for _, p := range parts {
		c, err := ParseCapability(strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func (cs Capabilities) String() string {
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = c.String()
	}
	return strings.Join(parts, ",")
}

func (cs Capabilities) Strings() []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.String()
	}
	return out
}

func (cs Capabilities) Allows(path string, write bool) bool {
	for _, c := range cs {
		if c.Covers(path, write) {
			return true
		}
	}
	return false
}

func (cs Capabilities) MarshalJSON() ([]byte, error) {
	return json.Marshal(cs.Strings())
}

func (cs *Capabilities) UnmarshalJSON(b []byte) error {
	var raw []string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	out := make(Capabilities, 0, len(raw))
	for _, s := range raw {
		c, err := ParseCapability(s)
		if err != nil {
			return err
		}
		out = append(out, c)
	}
	*cs = out
	return nil
}
