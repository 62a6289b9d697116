package grid

import (
	"sort"
	"strings"

	"github.com/pkg/errors"
)

const USA = "USA"

// Interconnects are the three US interconnections, sorted.
var Interconnects = []string{"Eastern", "Texas", "Western"}

var ErrUnknownInterconnect = errors.New("unknown interconnect")

// NormalizeInterconnect validates an interconnect selection and returns it
// sorted and deduplicated. "USA" must be used alone and expands to all three.
func NormalizeInterconnect(in []string) ([]string, error) {
	if len(in) == 0 {
		return nil, errors.Wrap(ErrUnknownInterconnect, "interconnect must not be empty")
	}
	seen := make(map[string]struct{}, len(in))
	var out []string
	for _, raw := range in {
		name, ok := canonicalInterconnect(raw)
		if !ok {
			return nil, errors.Wrapf(ErrUnknownInterconnect, "%q", raw)
		}
		if name == USA {
			if len(in) > 1 {
				return nil, errors.New("USA cannot be paired with another interconnect")
			}
			return append([]string(nil), Interconnects...), nil
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	sort.Strings(out)
	return out, nil
}

func canonicalInterconnect(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, USA) {
		return USA, true
	}
	for _, ic := range Interconnects {
		if strings.EqualFold(s, ic) {
			return ic, true
		}
	}
	return "", false
}

// InterconnectName joins a normalized selection, e.g. "Eastern_Western";
// the full set is named "USA".
func InterconnectName(ic []string) string {
	if len(ic) == len(Interconnects) {
		return USA
	}
	return strings.Join(ic, "_")
}

// ParseInterconnect splits "Eastern_Western" or "Eastern,Western".
func ParseInterconnect(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool { return r == '_' || r == ',' || r == '+' })
}
