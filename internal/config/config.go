package config

import (
    "os"

    yaml "gopkg.in/yaml.v3"
)

// Config carries the service settings. Values come from config.yaml when
// present; environment variables override file values so container
// deployments can skip the file entirely.
type Config struct {
    Port        string  `yaml:"port"`
    DatabaseURL string  `yaml:"databaseUrl"`
    RedisURL    string  `yaml:"redisUrl"`
    LogFile     string  `yaml:"logFile"`
    SessionKey  string  `yaml:"sessionKey"` // local-cache snapshot key

    GeocoderURL       string  `yaml:"geocoderUrl"`
    GeocoderUserAgent string  `yaml:"geocoderUserAgent"`
    GeocoderRPS       float64 `yaml:"geocoderRps"`
    RouterURL         string  `yaml:"routerUrl"`

    RatePerMile float64 `yaml:"ratePerMile"` // driving expense estimate for reports
}

// Defaults mirrors the reference deployment: public OSM services and the
// 0.65/mile expense rate.
func Defaults() Config {
    return Config{
        Port:              "8080",
        LogFile:           "./logs/tourplan.log",
        SessionKey:        "default",
        GeocoderURL:       "https://nominatim.openstreetmap.org",
        GeocoderUserAgent: "TourPlan/1.0",
        GeocoderRPS:       1, // nominatim usage policy
        RouterURL:         "https://router.project-osrm.org",
        RatePerMile:       0.65,
    }
}

// Load reads the YAML file at path (missing file is fine) and applies
// environment overrides.
func Load(path string) (Config, error) {
    cfg := Defaults()
    if path != "" {
        data, err := os.ReadFile(path)
        if err == nil {
            if err := yaml.Unmarshal(data, &cfg); err != nil {
                return cfg, err
            }
        } else if !os.IsNotExist(err) {
            return cfg, err
        }
    }
    overrideStr(&cfg.Port, "PORT")
    overrideStr(&cfg.DatabaseURL, "DATABASE_URL")
    overrideStr(&cfg.RedisURL, "REDIS_URL")
    overrideStr(&cfg.LogFile, "LOG_FILE")
    overrideStr(&cfg.SessionKey, "SESSION_KEY")
    overrideStr(&cfg.GeocoderURL, "GEOCODER_URL")
    overrideStr(&cfg.GeocoderUserAgent, "GEOCODER_USER_AGENT")
    overrideStr(&cfg.RouterURL, "OSRM_URL")
    return cfg, nil
}

func overrideStr(dst *string, key string) {
    if v := os.Getenv(key); v != "" {
        *dst = v
    }
}
