package cli

import (
	"fmt"
	"os"

	"github.com/tansive/datasource-store/internal/datasource"
	"github.com/tansive/datasource-store/internal/expectation"
	"sigs.k8s.io/yaml"
)

// loadFileAsJSON reads a YAML (or JSON) file and converts it to JSON
func loadFileAsJSON(filename string) ([]byte, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %v", err)
	}
	jsonData, err := yaml.YAMLToJSON(data)
	if err != nil {
		return nil, fmt.Errorf("failed to convert YAML to JSON: %v", err)
	}
	return jsonData, nil
}

// LoadDatasourceFromFile loads a datasource configuration from a YAML file
func LoadDatasourceFromFile(filename string) (*datasource.Config, error) {
	jsonData, err := loadFileAsJSON(filename)
	if err != nil {
		return nil, err
	}
	cfg, aerr := datasource.FromJSON(jsonData)
	if aerr != nil {
		return nil, aerr
	}
	return cfg, nil
}

// LoadExpectationFromFile loads an expectation configuration from a YAML file
func LoadExpectationFromFile(filename string) (*expectation.Configuration, error) {
	jsonData, err := loadFileAsJSON(filename)
	if err != nil {
		return nil, err
	}
	cfg, aerr := expectation.ConfigurationFromJSON(jsonData)
	if aerr != nil {
		return nil, aerr
	}
	return cfg, nil
}

// toYAML renders v, a JSON-compatible value, as YAML.
func toYAML(v any) ([]byte, error) {
	return yaml.Marshal(v)
}
