package config

import (
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	domainConfig "github.com/mnemo-lab/mnemosyne/pkg/domain/model/config"
	"github.com/urfave/cli/v3"
)

// Policy holds the CLI flag pointing at an optional TOML policy file that
// overrides the built-in engine tuning.
type Policy struct {
	path string
}

// Flags returns CLI flags for policy configuration
func (p *Policy) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "policy",
			Usage:       "Path to TOML file overriding engine tuning (thresholds, limits, keyword lists)",
			Category:    "Engine",
			Sources:     cli.EnvVars("MNEMOSYNE_POLICY"),
			Destination: &p.path,
		},
	}
}

// Configure returns the engine policy: the built-in defaults, overlaid
// with the TOML file when one is given.
func (p *Policy) Configure() (*domainConfig.Policy, error) {
	policy := domainConfig.DefaultPolicy()
	if p.path == "" {
		return policy, nil
	}

	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(p.path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read policy file", goerr.V("path", p.path))
	}

	if err := toml.Unmarshal(data, policy); err != nil {
		return nil, goerr.Wrap(err, "failed to parse policy TOML", goerr.V("path", p.path))
	}

	if err := policy.Validate(); err != nil {
		return nil, goerr.Wrap(err, "policy validation failed", goerr.V("path", p.path))
	}

	return policy, nil
}
