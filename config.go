package pgdbhelper

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Environment variables holding the connection settings.
const (
	EnvHost     = "DB_HOST"
	EnvName     = "DB_NAME"
	EnvUser     = "DB_USER"
	EnvPassword = "DB_PASSWORD"
)

// Optional environment variables controlling logging.
const (
	EnvLogLevel = "PGDBHELPER_LOG_LEVEL"
	EnvLogFile  = "PGDBHELPER_LOG_FILE"
)

// requiredEnv lists the viper keys and their variables in validation order.
var requiredEnv = []struct {
	key string
	env string
}{
	{"host", EnvHost},
	{"name", EnvName},
	{"user", EnvUser},
	{"password", EnvPassword},
}

const missingEnvMessage = `ERROR: missing environment variables.
Ensure all of the following environment variables are set:
DB_HOST DB_NAME DB_USER DB_PASSWORD`

// ConfigError is returned when a required environment variable is absent
// or blank.
type ConfigError struct {
	// Name is the variable at fault.
	Name string
	// Missing is true when the variable is not set at all.
	Missing bool
}

func (e *ConfigError) Error() string {
	if e.Missing {
		return missingEnvMessage
	}
	return fmt.Sprintf("ERROR: %s is empty!", e.Name)
}

// ConnectionConfig is the connection target for one invocation. Values are
// kept exactly as given; only the emptiness checks trim whitespace.
type ConnectionConfig struct {
	Host     string
	Name     string
	Username string
	Password string
}

// NewConnectionConfig validates host, username and password. The database
// name may be empty; operations that target a database check it themselves.
func NewConnectionConfig(host, name, username, password string) (ConnectionConfig, error) {
	switch {
	case isBlank(host):
		return ConnectionConfig{}, errors.New("connection host cannot be empty")
	case isBlank(username):
		return ConnectionConfig{}, errors.New("connection username cannot be empty")
	case isBlank(password):
		return ConnectionConfig{}, errors.New("connection password cannot be empty")
	}
	return ConnectionConfig{Host: host, Name: name, Username: username, Password: password}, nil
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// NewEnv returns a viper instance bound to the process environment.
// Empty variables count as set so LoadConfig can tell blank from absent.
func NewEnv() *viper.Viper {
	v := viper.New()
	v.AllowEmptyEnv(true)
	for _, e := range requiredEnv {
		_ = v.BindEnv(e.key, e.env)
	}
	_ = v.BindEnv("log_level", EnvLogLevel)
	_ = v.BindEnv("log_file", EnvLogFile)
	return v
}

// LoadConfig reads DB_HOST, DB_NAME, DB_USER and DB_PASSWORD, in that order.
// The first absent variable yields a ConfigError with Missing set; the first
// blank one yields a ConfigError naming it.
func LoadConfig(v *viper.Viper) (ConnectionConfig, error) {
	values := make(map[string]string, len(requiredEnv))
	for _, e := range requiredEnv {
		if !v.IsSet(e.key) {
			return ConnectionConfig{}, &ConfigError{Name: e.env, Missing: true}
		}
		val := v.GetString(e.key)
		if isBlank(val) {
			return ConnectionConfig{}, &ConfigError{Name: e.env}
		}
		values[e.key] = val
	}
	return NewConnectionConfig(values["host"], values["name"], values["user"], values["password"])
}
