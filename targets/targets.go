package targets

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed targets.yaml
var rawProfiles []byte

var profiles Profiles

func All() Profiles {
	return profiles
}

type Profiles []Profile

// Profile is one supported instruction set and ABI variant. The set is
// closed; a build selects exactly one profile and an unrecognized name is a
// configuration error.
type Profile struct {
	Name          string   `yaml:"name"`
	Cpu           string   `yaml:"cpu"`
	Architecture  string   `yaml:"architecture"`
	Alignment     int      `yaml:"alignment"`
	Triple        string   `yaml:"triple"`
	Tags          []string `yaml:"tags"`
	Features      []string `yaml:"features"`
	Float         string   `yaml:"float"`
	Mainline      bool     `yaml:"mainline"`
	MaxInterrupts int      `yaml:"maxInterrupts"`
	Runner        string   `yaml:"runner"`
}

func (p Profile) FormatFeatureString() string {
	features := make([]string, len(p.Features))
	for i, feature := range p.Features {
		features[i] = "+" + feature
	}
	return strings.Join(features, ",")
}

// Rank orders architectures by instruction set inclusion. A profile can run
// on any core whose architecture rank is at least the profile's rank.
func (p Profile) Rank() int {
	switch p.Architecture {
	case "armv6-m":
		return 0
	case "armv7-m":
		return 1
	case "armv7e-m":
		return 2
	}
	return -1
}

// HardFloat reports whether the profile uses the hard float ABI.
func (p Profile) HardFloat() bool {
	return p.Float == "hard"
}

// RunnerArgs splits the runner command line into argv form.
func (p Profile) RunnerArgs() []string {
	return strings.Fields(p.Runner)
}

func (t Profiles) FindByName(name string) (Profile, error) {
	for _, profile := range t {
		if profile.Name == strings.ToLower(name) {
			return profile, nil
		}
	}
	return Profile{}, errors.Join(ErrUnknownProfile, fmt.Errorf("profile %q", name))
}

// FindByName returns the profile with the given name.
func FindByName(name string) (Profile, error) {
	return profiles.FindByName(name)
}

func init() {
	var t struct {
		Elements []Profile `yaml:"profiles"`
	}
	if err := yaml.Unmarshal(rawProfiles, &t); err != nil {
		panic(err)
	}

	profiles = t.Elements
}
