package config

import (
	"errors"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	GitHubURL    string
	Org          string
	Token        string
	Debug        bool
	SkipArchived bool
	OutputDir    string
}

// LoadConfig leser konfigurasjon fra miljøvariabler. En eventuell .env-fil
// lastes først, manglende fil er helt greit.
func LoadConfig(getenv func(string) string) Config {
	_ = godotenv.Load()

	return LoadConfigWithEnv(getenv)
}

// LoadConfigWithEnv bygger Config fra en injisert getenv, for testbarhet.
func LoadConfigWithEnv(getenv func(string) string) Config {
	outDir := getenv("REPOTILSYN_UTKATALOG")
	if outDir == "" {
		outDir = "."
	}

	return Config{
		GitHubURL:    getenv("GITHUB_URL"),
		Org:          getenv("ORG_NAME"),
		Token:        getenv("GITHUB_TOKEN"),
		Debug:        getenv("REPOTILSYN_DEBUG") == "true",
		SkipArchived: getenv("REPOTILSYN_ARKIVERTE") != "true",
		OutputDir:    outDir,
	}
}

// ValidateConfig sjekker at de obligatoriske variablene er satt.
// Manglende verdier er en fatal feilkonfigurasjon.
func ValidateConfig(cfg Config) error {
	if cfg.GitHubURL == "" {
		return errors.New("GITHUB_URL må være satt")
	}
	if cfg.Org == "" {
		return errors.New("ORG_NAME må være satt")
	}
	if cfg.Token == "" {
		return errors.New("GITHUB_TOKEN må være satt")
	}
	return nil
}

// GraphQLURL utleder GraphQL-endepunktet. For github.com er det alltid
// api.github.com, for GHES ligger det under /api/graphql.
func (c Config) GraphQLURL() string {
	if strings.Contains(c.GitHubURL, "github.com") {
		return "https://api.github.com/graphql"
	}
	return strings.TrimSuffix(c.GitHubURL, "/") + "/api/graphql"
}

// RESTURL utleder REST-basen. GHES legger APIet under /api/v3.
func (c Config) RESTURL() string {
	if strings.Contains(c.GitHubURL, "github.com") {
		return "https://api.github.com"
	}
	return strings.TrimSuffix(c.GitHubURL, "/") + "/api/v3"
}
