package config

import (
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	log "github.com/sirupsen/logrus"
)

const envPrefix = "QUICKCAL_"

type Application struct {
	Host         string       `koanf:"host"`
	Port         int          `koanf:"port"`
	Frontend     Frontend     `koanf:"frontend"`
	Cors         Cors         `koanf:"cors"`
	Google       Google       `koanf:"google"`
	Auth         Auth         `koanf:"auth"`
	Database     Database     `koanf:"db"`
	Llm          Llm          `koanf:"llm"`
	Calendar     Calendar     `koanf:"calendar"`
	Availability Availability `koanf:"availability"`
}

type Frontend struct {
	Url string `koanf:"url"`
}

type Cors struct {
	AllowedOrigins []string `koanf:"allowedorigins"`
}

type Google struct {
	ClientId     string `koanf:"clientid"`
	ClientSecret string `koanf:"clientsecret"`
}

type Auth struct {
	JwtSecret string        `koanf:"jwtsecret"`
	TokenTTL  time.Duration `koanf:"tokenttl"`
}

type Database struct {
	Host   string `koanf:"host"`
	Port   int    `koanf:"port"`
	User   string `koanf:"user"`
	Pass   string `koanf:"pass"`
	Name   string `koanf:"name"`
	Schema string `koanf:"schema"`
}

// Llm configures the model-backed extraction tier. The hosted backend is used
// whenever an API key is present; the local one only when explicitly enabled.
type Llm struct {
	Timeout time.Duration `koanf:"timeout"`
	Hosted  HostedLlm     `koanf:"hosted"`
	Local   LocalLlm      `koanf:"local"`
}

type HostedLlm struct {
	ApiKey  string `koanf:"apikey"`
	BaseUrl string `koanf:"baseurl"`
	Model   string `koanf:"model"`
}

type LocalLlm struct {
	Enabled bool   `koanf:"enabled"`
	Host    string `koanf:"host"`
	Model   string `koanf:"model"`
}

type Calendar struct {
	Timezone   string `koanf:"timezone"`
	MaxResults int64  `koanf:"maxresults"`
}

type Availability struct {
	Step        time.Duration `koanf:"step"`
	MaxProbes   int           `koanf:"maxprobes"`
	Suggestions int           `koanf:"suggestions"`
}

func Defaults() Application {
	return Application{
		Host: "http://localhost:3001",
		Port: 3001,
		Frontend: Frontend{
			Url: "http://localhost:5173",
		},
		Cors: Cors{
			AllowedOrigins: []string{"http://localhost:5173", "http://localhost:5174"},
		},
		Auth: Auth{
			TokenTTL: 7 * 24 * time.Hour,
		},
		Database: Database{
			Host:   "localhost",
			Port:   5432,
			User:   "quickcal",
			Pass:   "",
			Name:   "quickcal",
			Schema: "quickcal",
		},
		Llm: Llm{
			Timeout: 20 * time.Second,
			Hosted: HostedLlm{
				Model: "gpt-4o-mini",
			},
			Local: LocalLlm{
				Enabled: false,
				Host:    "http://localhost:11434",
				Model:   "llama3",
			},
		},
		Calendar: Calendar{
			Timezone:   "America/New_York",
			MaxResults: 50,
		},
		Availability: Availability{
			Step:        30 * time.Minute,
			MaxProbes:   48,
			Suggestions: 3,
		},
	}
}

func Load(path string) (Application, error) {
	var k = koanf.New(".")

	err := k.Load(structs.Provider(Defaults(), "koanf"), nil)
	if err != nil {
		log.Errorf("error loading config from structs: %v", err)
		return Application{}, err
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if os.IsNotExist(err) {
			log.Infof("Config file not found at %s, using defaults and environment variables", path)
		} else {
			log.Errorf("error loading config from YAML: %v", err)
			return Application{}, err
		}
	} else {
		log.Infof("Loaded configuration from file: %s", path)
	}

	err = k.Load(env.Provider(".", env.Opt{
		Prefix: envPrefix,
		TransformFunc: func(k, v string) (string, any) {
			k = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(k, envPrefix)), "_", ".")
			// lists come in comma separated
			if k == "cors.allowedorigins" {
				return k, strings.Split(v, ",")
			}
			return k, v
		},
	}), nil)
	if err != nil {
		log.Errorf("error loading config from envs: %v", err)
		return Application{}, err
	}

	var app Application
	if err := k.Unmarshal("", &app); err != nil {
		return Application{}, err
	}

	return app, nil
}
