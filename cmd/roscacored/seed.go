package main

import (
	"os"

	"gopkg.in/yaml.v3"

	"roscachain/crypto"
)

// seedFile describes a set of groups to create and join at startup, letting
// the demo harness be driven by a fixture instead of the hardcoded scenario
// in runDemoScenario.
type seedFile struct {
	Groups []seedGroup `yaml:"groups"`
}

type seedGroup struct {
	Creator             string   `yaml:"creator"`
	ContributionAmount  int64    `yaml:"contribution_amount"`
	CycleDurationSecs   uint64   `yaml:"cycle_duration_secs"`
	MaxMembers          uint32   `yaml:"max_members"`
	MinMembers          uint32   `yaml:"min_members"`
	Members             []string `yaml:"members"`
}

// loadSeedFile reads a YAML fixture at path, returning (nil, nil) when the
// path is empty so callers can treat "no seed file configured" as a no-op.
func loadSeedFile(path string) (*seedFile, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sf seedFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return nil, err
	}
	return &sf, nil
}

// seedAddress derives a fixture address by copying a short label's bytes
// into the front of a zeroed 20-byte identifier (labels longer than 20
// bytes are truncated), so seed files can reference members by a stable
// name like "alice" instead of a raw hex string.
func seedAddress(label string) crypto.Address {
	b := make([]byte, 20)
	copy(b, []byte(label))
	return crypto.MustNewAddress(crypto.RoscaPrefix, b)
}
