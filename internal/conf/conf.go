// Package conf holds the configuration tree scanned from configs/config.yaml.
package conf

import "time"

// Bootstrap is the root of the configuration file.
type Bootstrap struct {
	Server  *Server  `json:"server"`
	Data    *Data    `json:"data"`
	TMDB    *TMDB    `json:"tmdb"`
	Session *Session `json:"session"`
	Log     *Log     `json:"log"`
}

type Server struct {
	Http *ServerHTTP `json:"http"`
}

type ServerHTTP struct {
	Network string   `json:"network"`
	Addr    string   `json:"addr"`
	Timeout Duration `json:"timeout"`
}

type Data struct {
	Database *Database `json:"database"`
	Redis    *Redis    `json:"redis"`
}

// Database selects the gorm dialector. Driver is "postgres" or "sqlite".
type Database struct {
	Driver string `json:"driver"`
	Source string `json:"source"`
}

type Redis struct {
	Addr         string   `json:"addr"`
	ReadTimeout  Duration `json:"read_timeout"`
	WriteTimeout Duration `json:"write_timeout"`
}

// TMDB configures the metadata provider client.
type TMDB struct {
	BaseUrl   string   `json:"base_url"`
	ApiKey    string   `json:"api_key"`
	AuthToken string   `json:"auth_token"`
	Timeout   Duration `json:"timeout"`
}

type Session struct {
	Secret string `json:"secret"`
	Csrf   bool   `json:"csrf"`
	Secure bool   `json:"secure"`
}

type Log struct {
	Level string `json:"level"`
}

// Duration is a Go duration string such as "1s" or "500ms".
type Duration string

// AsDuration parses d, returning zero for empty or invalid values.
func (d Duration) AsDuration() time.Duration {
	v, err := time.ParseDuration(string(d))
	if err != nil {
		return 0
	}
	return v
}
