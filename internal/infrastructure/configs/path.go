package configs

import (
	"flag"
	"os"

	"github.com/hilthontt/oekaki/internal/infrastructure/env"
)

// DetermineConfigPath resolves the YAML config location. An empty result
// means no file was found and the defaults plus env overrides apply.
func DetermineConfigPath() string {
	var configPath string

	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.Parse()

	if configPath == "" {
		configPath = env.GetString("OEKAKI_CONFIG", "")
	}

	if configPath == "" {
		candidates := []string{
			"./config.yaml",
			"./config.yml",
			"./tmp/config.yml",
			"./tmp/config.yaml",
			"../../config.yaml", // keep for local dev
			"/etc/oekaki/config.yaml",
			"/app/config.yaml", // common in Docker
		}

		for _, p := range candidates {
			if _, err := os.Stat(p); err == nil {
				configPath = p
				break
			}
		}
	}

	return configPath
}
