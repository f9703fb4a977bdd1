package validator

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidFormat is the diagnostic for payloads that do not carry a
// complete set of connection parameters.
const ErrInvalidFormat = "Invalid database credentials format"

// ResourceKind selects the database engine a credential set targets.
type ResourceKind string

const (
	Postgres ResourceKind = "postgres"
	MySQL    ResourceKind = "mysql"
)

// DefaultPort returns the engine's standard port, 0 for unknown kinds.
func (k ResourceKind) DefaultPort() int {
	switch k {
	case Postgres:
		return 5432
	case MySQL:
		return 3306
	}
	return 0
}

func ParseKind(s string) (ResourceKind, error) {
	switch k := ResourceKind(strings.ToLower(strings.TrimSpace(s))); k {
	case Postgres, MySQL:
		return k, nil
	case "postgresql", "pg":
		return Postgres, nil
	}
	return "", fmt.Errorf("unknown resource kind %q", s)
}

// Credentials are the connection parameters a probe's payload claims work.
type Credentials struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
}

type payload struct {
	Host     *string `json:"host"`
	Port     port    `json:"port"`
	User     *string `json:"user"`
	Password *string `json:"password"`
	Database *string `json:"database"`
}

// port accepts a JSON number, a numeric string or null.
type port int

func (p *port) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*p = 0
		return nil
	}
	s := strings.Trim(string(b), `"`)
	if s == "" {
		*p = 0
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 || n > 65535 {
		return fmt.Errorf("invalid port %s", b)
	}
	*p = port(n)
	return nil
}

// ParseCredentials decodes body and checks that host, user, password and
// database are all present and non-empty. An absent port falls back to
// defaultPort. ok is false when the payload is structurally incomplete.
func ParseCredentials(body []byte, defaultPort int) (Credentials, bool) {
	var p payload
	if err := json.Unmarshal(body, &p); err != nil {
		return Credentials{}, false
	}
	if empty(p.Host) || empty(p.User) || empty(p.Password) || empty(p.Database) {
		return Credentials{}, false
	}
	c := Credentials{
		Host:     *p.Host,
		Port:     int(p.Port),
		User:     *p.User,
		Password: *p.Password,
		Database: *p.Database,
	}
	if c.Port == 0 {
		c.Port = defaultPort
	}
	return c, true
}

func empty(s *string) bool { return s == nil || *s == "" }
