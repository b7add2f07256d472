// Package seed holds the sample clinic directory loaded into a fresh store.
package seed

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed clinics.yaml
var clinicsYAML []byte

// Clinic is one entry of the sample directory.
type Clinic struct {
	Name            string `yaml:"name"`
	Area            string `yaml:"area"`
	Address         string `yaml:"address"`
	Phone           string `yaml:"phone"`
	Email           string `yaml:"email"`
	Latitude        string `yaml:"latitude"`
	Longitude       string `yaml:"longitude"`
	CurrentWaitTime int    `yaml:"currentWaitTime"`
	QueueSize       int    `yaml:"queueSize"`
	Status          string `yaml:"status"`
}

type document struct {
	Clinics []Clinic `yaml:"clinics"`
}

// Clinics parses the embedded sample directory.
func Clinics() ([]Clinic, error) {
	var doc document
	if err := yaml.Unmarshal(clinicsYAML, &doc); err != nil {
		return nil, fmt.Errorf("parse seed clinics: %w", err)
	}
	return doc.Clinics, nil
}
