package config

import (
	"flag"
	"fmt"
	"io"
)

// ParseFlags parses command line flags and returns the config file path
func ParseFlags(args []string) (configFile string, generateConfig bool, err error) {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.StringVar(&configFile, "config", "", "Path to configuration file")
	fs.BoolVar(&generateConfig, "generate-config", false, "Print an example configuration file")

	if err := fs.Parse(args); err != nil {
		return "", false, err
	}
	return configFile, generateConfig, nil
}

// GenerateExampleConfig writes the default configuration as YAML
func GenerateExampleConfig(w io.Writer) error {
	data, err := ExampleYAML()
	if err != nil {
		return fmt.Errorf("failed to render example config: %w", err)
	}
	if _, err := fmt.Fprintf(w, "# Every setting can be overridden with PERSONNEL_<ENV NAME>, e.g. PERSONNEL_SERVER_PORT.\n%s", data); err != nil {
		return err
	}
	return nil
}
