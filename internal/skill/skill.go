// Package skill loads SKILL.md documents: a YAML front matter naming the
// skill and the toolsets it needs, followed by a markdown body that becomes
// the agent's system prompt.
package skill

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const frontMatterDelimiter = "---"

// Skill is one parsed SKILL.md document.
type Skill struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Toolsets    []string `yaml:"toolsets"`

	// Body is the markdown after the front matter, used verbatim as the
	// system prompt.
	Body string `yaml:"-"`
}

// Load reads and parses a SKILL.md file.
func Load(path string) (*Skill, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read skill: %w", err)
	}
	s, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse skill %s: %w", path, err)
	}
	return s, nil
}

// LoadDir loads dir/SKILL.md, the layout used by the shipped skills tree.
func LoadDir(dir string) (*Skill, error) {
	return Load(filepath.Join(dir, "SKILL.md"))
}

// Parse splits the front matter from the body and decodes both.
func Parse(raw []byte) (*Skill, error) {
	content := bytes.TrimLeft(raw, "\uFEFF\n\r ")
	if !bytes.HasPrefix(content, []byte(frontMatterDelimiter)) {
		return nil, fmt.Errorf("missing front matter")
	}
	rest := content[len(frontMatterDelimiter):]
	end := bytes.Index(rest, []byte("\n"+frontMatterDelimiter))
	if end < 0 {
		return nil, fmt.Errorf("unterminated front matter")
	}

	var s Skill
	if err := yaml.Unmarshal(rest[:end], &s); err != nil {
		return nil, fmt.Errorf("front matter: %w", err)
	}
	if s.Name == "" {
		return nil, fmt.Errorf("front matter has no name")
	}
	if len(s.Toolsets) == 0 {
		s.Toolsets = []string{"jobs"}
	}

	body := rest[end+len(frontMatterDelimiter)+1:]
	s.Body = strings.TrimSpace(string(body))
	return &s, nil
}
