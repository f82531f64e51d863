package configparser

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

var ErrNoFilePath = errors.New("no file path provided")

// LoadAndParseYaml loads .env and the YAML file into the environment, then fills cfg from it.
// A missing YAML file is not an error: tag defaults and the environment still apply.
func LoadAndParseYaml(filepath string, cfg any) error {
	if err := LoadDotEnv(); err != nil {
		return err
	}

	if err := LoadYamlFile(filepath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	return ParseEnv(cfg)
}

// LoadDotEnv loads .env from the working directory when present.
// Variables already set in the process environment are kept.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}

	existing := make([]string, 0, len(files))
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return nil
	}

	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("could not load env file: %w", err)
	}
	return nil
}

// LoadYamlFile reads a YAML file and loads variables into the environment.
// Nested keys are joined with "_" and upper-cased: database.host -> DATABASE_HOST.
func LoadYamlFile(filepath string) error {
	if filepath == "" {
		return ErrNoFilePath
	}

	data, err := os.ReadFile(filepath)
	if err != nil {
		return fmt.Errorf("could not open YAML file: %w", err)
	}

	var tree yaml.MapSlice
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return fmt.Errorf("error reading YAML file: %w", err)
	}

	vars := make(map[string]string)
	flatten("", tree, vars)

	for key, value := range vars {
		// Set the environment variable only if it's not already set
		if os.Getenv(key) != "" {
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			return fmt.Errorf("could not set env var %s: %w", key, err)
		}
	}

	return nil
}

func flatten(prefix string, node yaml.MapSlice, out map[string]string) {
	for _, item := range node {
		key := strings.ToUpper(fmt.Sprint(item.Key))
		if prefix != "" {
			key = prefix + "_" + key
		}

		switch v := item.Value.(type) {
		case yaml.MapSlice:
			flatten(key, v, out)
		case nil:
			// empty values don't represent environment variables
		case []any:
			parts := make([]string, 0, len(v))
			for _, p := range v {
				parts = append(parts, substitute(fmt.Sprint(p)))
			}
			out[key] = strings.Join(parts, ",")
		default:
			out[key] = substitute(fmt.Sprint(v))
		}
	}
}

// substitute resolves the ${VAR:-default} syntax against the environment.
func substitute(value string) string {
	if !strings.HasPrefix(value, "${") || !strings.HasSuffix(value, "}") {
		return value
	}

	inner := value[2 : len(value)-1]
	name, def, _ := strings.Cut(inner, ":-")
	if envValue := os.Getenv(strings.TrimSpace(name)); envValue != "" {
		return envValue
	}
	return strings.TrimSpace(def)
}
