package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ProbeDef is one probe as written in a battery file.
type ProbeDef struct {
	Description    string `yaml:"description"`
	Target         string `yaml:"target"`
	Method         string `yaml:"method"`
	ExpectedStatus int    `yaml:"expected_status"`
	// Validate names a nested credential check: "postgres" or "mysql".
	Validate string `yaml:"validate,omitempty"`
}

type BatteryFile struct {
	Probes []ProbeDef `yaml:"probes"`
}

// LoadBattery reads a YAML battery file. Method defaults to GET and
// expected_status to 200.
func LoadBattery(path string) ([]ProbeDef, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read battery: %w", err)
	}
	var f BatteryFile
	if err := yaml.Unmarshal(content, &f); err != nil {
		return nil, fmt.Errorf("parse battery: %w", err)
	}
	if len(f.Probes) == 0 {
		return nil, fmt.Errorf("battery %s: no probes defined", path)
	}
	for i := range f.Probes {
		if f.Probes[i].Method == "" {
			f.Probes[i].Method = "GET"
		}
		if f.Probes[i].ExpectedStatus == 0 {
			f.Probes[i].ExpectedStatus = 200
		}
	}
	return f.Probes, nil
}

// DefaultBattery is the built-in battery against a PGMaker deployment.
func DefaultBattery(baseURL string) []ProbeDef {
	return []ProbeDef{
		{
			Description:    "Check if PGMaker2 API is reachable",
			Target:         baseURL + "/health",
			Method:         "GET",
			ExpectedStatus: 200,
		},
		{
			Description:    "Check if API returns valid database credentials",
			Target:         baseURL + "/db-credentials",
			Method:         "GET",
			ExpectedStatus: 200,
			Validate:       "postgres",
		},
	}
}
