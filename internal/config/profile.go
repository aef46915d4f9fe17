package config

import (
	_ "embed"
	"fmt"
	"net/url"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed profile.yaml
var defaultProfileYAML []byte

// Profile describes the external API: its two hosts and the static header set sent
// with every request. Build one at startup and pass it by value; Headers returns a copy.
type Profile struct {
	hosts   Hosts
	headers map[string]string
}

// Hosts are the base URLs of the two API hosts
type Hosts struct {
	Game    string `yaml:"game"`    // register, boxes, tasks
	Backend string `yaml:"backend"` // init-data, spinner updates, repair, upgrade
}

type profileFile struct {
	Hosts   Hosts             `yaml:"hosts"`
	Headers map[string]string `yaml:"headers"`
}

// DefaultProfile returns the built-in profile
func DefaultProfile() Profile {
	p, err := ParseProfile(defaultProfileYAML)
	if err != nil {
		panic("built-in profile is invalid: " + err.Error())
	}
	return p
}

// LoadProfile reads a profile from path, or returns the built-in one when path is empty
func LoadProfile(path string) (Profile, error) {
	if path == "" {
		return DefaultProfile(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("failed to read profile: %w", err)
	}
	p, err := ParseProfile(data)
	if err != nil {
		return Profile{}, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// ParseProfile decodes and validates profile YAML
func ParseProfile(data []byte) (Profile, error) {
	var pf profileFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return Profile{}, fmt.Errorf("failed to parse profile: %w", err)
	}
	return NewProfile(pf.Hosts, pf.Headers)
}

// NewProfile validates hosts and copies headers
func NewProfile(hosts Hosts, headers map[string]string) (Profile, error) {
	for name, raw := range map[string]string{"game": hosts.Game, "backend": hosts.Backend} {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return Profile{}, fmt.Errorf("invalid %s host %q", name, raw)
		}
	}

	h := make(map[string]string, len(headers))
	for k, v := range headers {
		h[k] = v
	}
	return Profile{hosts: hosts, headers: h}, nil
}

// Hosts returns the API hosts
func (p Profile) Hosts() Hosts {
	return p.hosts
}

// Headers returns a copy of the static header set
func (p Profile) Headers() map[string]string {
	h := make(map[string]string, len(p.headers))
	for k, v := range p.headers {
		h[k] = v
	}
	return h
}
