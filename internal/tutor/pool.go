package tutor

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Pool is a candidate pool as stored on disk.
type Pool struct {
	Tutors []Candidate `json:"tutors" yaml:"tutors"`
}

// Len returns the number of candidates in the pool.
func (p *Pool) Len() int {
	return len(p.Tutors)
}

// FindByID returns the candidate with the provided id or nil.
func (p *Pool) FindByID(id string) *Candidate {
	for i := range p.Tutors {
		if p.Tutors[i].ID == id {
			return &p.Tutors[i]
		}
	}
	return nil
}

// LoadPool reads a candidate pool from a JSON or YAML file. The format is picked by extension.
func LoadPool(path string) (*Pool, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("candidate pool path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var pool Pool
	if len(strings.TrimSpace(string(data))) == 0 {
		return &pool, nil
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &pool); err != nil {
			return nil, fmt.Errorf("decode yaml pool: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &pool); err != nil {
			return nil, fmt.Errorf("decode json pool: %w", err)
		}
	}

	return &pool, nil
}

// DumpResultsToTmpFile writes the results as indented JSON to a new temporary file and returns its name.
func DumpResultsToTmpFile(results []MatchResult) (string, error) {
	file, err := os.CreateTemp("", "matches_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(results); err != nil {
		return "", err
	}
	return file.Name(), nil
}
