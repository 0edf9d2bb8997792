package pricing

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/ppiankov/archivecost/internal/cost"
)

// ErrUnknownRegion is returned when a region has no wire mapping for a provider.
var ErrUnknownRegion = errors.New("unknown region")

// DefaultRegion is the user-facing region used when none is given.
const DefaultRegion = "us-east"

// regionMap translates user-facing region keys into each provider's wire
// format. AWS prices by location name, GCP by multi-region code, Azure by
// ARM region name.
var regionMap = map[cost.Provider]map[string]string{
	cost.ProviderS3: {
		"us-east":   "US East (N. Virginia)",
		"us-west":   "US West (Oregon)",
		"eu":        "EU (Ireland)",
		"asia":      "Asia Pacific (Singapore)",
		"australia": "Asia Pacific (Sydney)",
	},
	cost.ProviderGCS: {
		"us-east": "us",
		"us-west": "us",
		"eu":      "eu",
		"asia":    "asia",
	},
	cost.ProviderAzure: {
		"us-east":   "eastus",
		"us-west":   "westus2",
		"eu":        "westeurope",
		"asia":      "southeastasia",
		"australia": "australiaeast",
	},
}

// WireRegion resolves a user-facing region key, or a provider-native
// identifier, to the value the provider's pricing endpoint expects.
func WireRegion(p cost.Provider, region string) (string, error) {
	m, ok := regionMap[p]
	if !ok {
		return "", fmt.Errorf("%w: no regions for provider %s", ErrUnknownRegion, p)
	}

	key := strings.TrimSpace(region)
	if key == "" {
		key = DefaultRegion
	}
	if wire, ok := m[strings.ToLower(key)]; ok {
		return wire, nil
	}
	for _, wire := range m {
		if strings.EqualFold(wire, key) {
			return wire, nil
		}
	}
	return "", fmt.Errorf("%w: %q for %s", ErrUnknownRegion, region, p)
}

// Regions lists the user-facing region keys a provider supports, sorted.
func Regions(p cost.Provider) []string {
	m := regionMap[p]
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
