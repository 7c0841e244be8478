package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v9"
	"github.com/hashicorp/go-multierror"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultBasePath is the KoalaGPT API base path.
const DefaultBasePath = "https://gpt.cyberkoala.ru/backend-api/v2"

const (
	ContentTypeJSON = "application/json"

	authDirName = ".koalagpt"
)

// Configuration holds the credentials attached to every outgoing request.
// It is never modified after it has been handed to a client, so one value can
// be shared by concurrent requests.
type Configuration struct {
	APIKey       string
	Organization string
	BaseURL      string
}

// New returns a configuration for an explicit API key.
func New(apiKey, organization string) *Configuration {
	return &Configuration{
		APIKey:       apiKey,
		Organization: organization,
		BaseURL:      DefaultBasePath,
	}
}

// AttachHeaders sets the authorization headers and, when contentType is not
// empty, the Content-Type header on req.
func (c *Configuration) AttachHeaders(req *http.Request, contentType string) {
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}
	if c.Organization != "" {
		req.Header.Set("OpenAI-Organization", c.Organization)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
}

// HasCredentials reports whether an API key is configured.
func (c *Configuration) HasCredentials() bool {
	return c.APIKey != ""
}

type envConfig struct {
	APIKey       string `env:"KOALAGPT_API_KEY"`
	Organization string `env:"KOALAGPT_ORGANIZATION"`
	BaseURL      string `env:"KOALAGPT_BASE_URL" envDefault:"https://gpt.cyberkoala.ru/backend-api/v2"`
	AuthFile     string `env:"KOALAGPT_AUTH_FILE"`
}

type authFile struct {
	APIKey       string `yaml:"api_key"`
	Organization string `yaml:"organization"`
}

// Load reads credentials from the environment (after loading a local .env
// file, if there is one) and falls back to the per-user auth file. A missing
// key is not an error; malformed sources are.
func Load() (*Configuration, error) {
	_ = godotenv.Load()
	return load(env.Options{}, userAuthFiles())
}

func load(opts env.Options, candidates []string) (*Configuration, error) {
	var ec envConfig
	if err := env.ParseWithOptions(&ec, opts); err != nil {
		return nil, fmt.Errorf("parsing env config: %w", err)
	}

	conf := &Configuration{
		APIKey:       ec.APIKey,
		Organization: ec.Organization,
		BaseURL:      strings.TrimSuffix(ec.BaseURL, "/"),
	}
	if conf.HasCredentials() {
		return conf, nil
	}

	if ec.AuthFile != "" {
		candidates = []string{ec.AuthFile}
	}

	var result *multierror.Error
	for _, path := range candidates {
		auth, err := loadAuthFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			result = multierror.Append(result, err)
			continue
		}
		conf.APIKey = auth.APIKey
		if conf.Organization == "" {
			conf.Organization = auth.Organization
		}
		return conf, nil
	}

	return conf, result.ErrorOrNil()
}

func loadAuthFile(path string) (*authFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var auth authFile
	if err := yaml.Unmarshal(data, &auth); err != nil {
		return nil, fmt.Errorf("parsing auth file %s: %w", path, err)
	}
	if auth.APIKey == "" {
		return nil, fmt.Errorf("auth file %s: api_key is empty", path)
	}
	return &auth, nil
}

func userAuthFiles() []string {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	dir := filepath.Join(home, authDirName)
	return []string{
		filepath.Join(dir, "auth.json"),
		filepath.Join(dir, "auth.yaml"),
	}
}
