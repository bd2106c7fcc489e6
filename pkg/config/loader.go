// Package config binds `env`-tagged structs to environment variables.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
)

// Load fills cfg from the process environment.
//
//	type Config struct {
//	    HTTPPort  int           `env:"HTTP_PORT" envDefault:"5000"`
//	    JWTExpiry time.Duration `env:"JWT_EXPIRY" envDefault:"168h"`
//	}
func Load(cfg any) error {
	return parse(cfg, env.Options{})
}

// LoadFrom fills cfg from environ alone; the process environment is not
// consulted. A nil map behaves like an empty environment.
func LoadFrom(cfg any, environ map[string]string) error {
	if environ == nil {
		environ = map[string]string{}
	}
	return parse(cfg, env.Options{Environment: environ})
}

func parse(cfg any, opts env.Options) error {
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}
