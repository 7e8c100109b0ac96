// Package profile holds the assistant persona and the session defaults shared by
// the server and the chat client.
package profile

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const defaultFallbackDocument = `# Website Optimization Roadmap

## Speed Optimization
Tools: Google PageSpeed Insights
Steps: Run tests, identify issues, prioritize fixes

## SEO Foundation
Focus on meta descriptions, alt text, internal links

## Conversion
Create compelling landing pages with clear CTAs`

// Profile describes who the assistant is and what a session starts with.
type Profile struct {
	// Role completes "You are a helpful ..." in the instruction block.
	Role             string   `yaml:"role"`
	Greeting         string   `yaml:"greeting"`
	FallbackDocument string   `yaml:"fallback_document"`
	DefaultMissing   []string `yaml:"default_missing_info"`
}

// Default returns the built-in website roadmap profile.
func Default() *Profile {
	return &Profile{
		Role:             "website optimization consultant",
		Greeting:         "Hi! I'm here to help you with your website roadmap and lead generation strategy. Ask me anything!",
		FallbackDocument: defaultFallbackDocument,
		DefaultMissing:   []string{"website url", "platform", "main goal"},
	}
}

// Load reads a YAML profile from path. Fields left empty in the file keep
// their built-in defaults. An empty path returns Default().
func Load(path string) (*Profile, error) {
	p := Default()
	if path == "" {
		return p, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}

	var fromFile Profile
	if err := yaml.Unmarshal(data, &fromFile); err != nil {
		return nil, fmt.Errorf("failed to parse profile: %w", err)
	}

	p.merge(&fromFile)
	return p, nil
}

func (p *Profile) merge(other *Profile) {
	if s := strings.TrimSpace(other.Role); s != "" {
		p.Role = s
	}
	if s := strings.TrimSpace(other.Greeting); s != "" {
		p.Greeting = s
	}
	if s := strings.TrimSpace(other.FallbackDocument); s != "" {
		p.FallbackDocument = other.FallbackDocument
	}
	if len(other.DefaultMissing) > 0 {
		p.DefaultMissing = append([]string(nil), other.DefaultMissing...)
	}
}

// Clone returns a deep copy safe to hand to another goroutine.
func (p *Profile) Clone() *Profile {
	c := *p
	c.DefaultMissing = append([]string(nil), p.DefaultMissing...)
	return &c
}
