package server

import (
	"fmt"
	"time"
)

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host         string   `json:"host" yaml:"host"`
	Port         int      `json:"port" yaml:"port"`
	AllowOrigins []string `json:"allowOrigins" yaml:"allowOrigins"`
	// Timeouts are in seconds.
	ReadTimeout     int `json:"readTimeout" yaml:"readTimeout"`
	WriteTimeout    int `json:"writeTimeout" yaml:"writeTimeout"`
	ShutdownTimeout int `json:"shutdownTimeout" yaml:"shutdownTimeout"`
}

func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:            "0.0.0.0",
		Port:            3000,
		AllowOrigins:    []string{"http://localhost:3000"},
		ReadTimeout:     30,
		WriteTimeout:    60,
		ShutdownTimeout: 10,
	}
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

func seconds(n int) time.Duration { return time.Duration(n) * time.Second }

func (s ServerConfig) ReadTimeoutDuration() time.Duration     { return seconds(s.ReadTimeout) }
func (s ServerConfig) WriteTimeoutDuration() time.Duration    { return seconds(s.WriteTimeout) }
func (s ServerConfig) ShutdownTimeoutDuration() time.Duration { return seconds(s.ShutdownTimeout) }
