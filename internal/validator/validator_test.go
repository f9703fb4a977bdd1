package validator

import (
	"context"
	"errors"
	"net"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

// spyConnector records every connection attempt.
type spyConnector struct {
	calls []Credentials
	err   error
}

func (s *spyConnector) Ping(_ context.Context, c Credentials) error {
	s.calls = append(s.calls, c)
	return s.err
}

func TestCredential_MissingPassword_NoConnection(t *testing.T) {
	spy := &spyConnector{}
	v := &Credential{Kind: Postgres, Connector: spy}

	out := v.Validate(context.Background(), []byte(`{"host":"db","user":"u","database":"d"}`))
	if out.Success {
		t.Fatalf("want failure, got %+v", out)
	}
	if out.Error != "Invalid database credentials format" {
		t.Fatalf("unexpected error %q", out.Error)
	}
	if len(spy.calls) != 0 {
		t.Fatalf("want zero connection attempts, got %d", len(spy.calls))
	}
}

func TestCredential_StructuralFailures(t *testing.T) {
	bodies := []string{
		``,
		`not json`,
		`null`,
		`[]`,
		`{}`,
		`{"host":"db","user":"u","password":"p"}`,
		`{"host":"","user":"u","password":"p","database":"d"}`,
		`{"host":"db","user":null,"password":"p","database":"d"}`,
		`{"host":"db","user":"u","password":"p","database":"d","port":"abc"}`,
	}
	for _, b := range bodies {
		spy := &spyConnector{}
		v := &Credential{Kind: Postgres, Connector: spy}
		out := v.Validate(context.Background(), []byte(b))
		if out.Success || out.Error != ErrInvalidFormat {
			t.Fatalf("body %q: want structural failure, got %+v", b, out)
		}
		if len(spy.calls) != 0 {
			t.Fatalf("body %q: connector must not be called", b)
		}
	}
}

func TestCredential_Success(t *testing.T) {
	spy := &spyConnector{}
	v := &Credential{Kind: Postgres, Connector: spy}

	out := v.Validate(context.Background(), []byte(`{"host":"db","user":"u","password":"p","database":"d"}`))
	if !out.Success || out.Error != "" {
		t.Fatalf("want success, got %+v", out)
	}
	want := []Credentials{{Host: "db", Port: 5432, User: "u", Password: "p", Database: "d"}}
	if diff := cmp.Diff(want, spy.calls); diff != "" {
		t.Fatalf("connector calls mismatch (-want +got):\n%s", diff)
	}
}

func TestCredential_ConnectorErrorIsReported(t *testing.T) {
	spy := &spyConnector{err: errors.New("password authentication failed for user \"u\"")}
	v := &Credential{Kind: MySQL, Connector: spy}

	out := v.Validate(context.Background(), []byte(`{"host":"db","port":"3307","user":"u","password":"p","database":"d"}`))
	if out.Success {
		t.Fatalf("want failure, got success")
	}
	if !strings.Contains(out.Error, "password authentication failed") {
		t.Fatalf("want underlying error, got %q", out.Error)
	}
	if len(spy.calls) != 1 || spy.calls[0].Port != 3307 {
		t.Fatalf("want one call with port 3307, got %+v", spy.calls)
	}
}

func TestCredential_UnreachablePostgres(t *testing.T) {
	// grab a free port and close it so nothing is listening there
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().(*net.TCPAddr)
	ln.Close()

	v, err := NewCredential(Postgres, 2*time.Second, nil)
	if err != nil {
		t.Fatalf("NewCredential: %v", err)
	}
	body := []byte(`{"host":"127.0.0.1","port":` + strconv.Itoa(addr.Port) + `,"user":"u","password":"p","database":"d"}`)
	out := v.Validate(context.Background(), body)
	if out.Success {
		t.Fatalf("want failure against unreachable resource")
	}
	if out.Error == "" || out.Error == ErrInvalidFormat {
		t.Fatalf("want underlying connection error, got %q", out.Error)
	}
}

func TestParseCredentials_DefaultPortPerKind(t *testing.T) {
	body := []byte(`{"host":"h","user":"u","password":"p","database":"d","port":null}`)
	for kind, want := range map[ResourceKind]int{Postgres: 5432, MySQL: 3306} {
		c, ok := ParseCredentials(body, kind.DefaultPort())
		if !ok {
			t.Fatalf("%s: unexpected structural failure", kind)
		}
		if c.Port != want {
			t.Fatalf("%s: port=%d want %d", kind, c.Port, want)
		}
	}
}

func TestParseKind(t *testing.T) {
	cases := map[string]ResourceKind{"postgres": Postgres, "PostgreSQL": Postgres, "pg": Postgres, " mysql ": MySQL}
	for in, want := range cases {
		got, err := ParseKind(in)
		if err != nil || got != want {
			t.Fatalf("ParseKind(%q)=%q,%v want %q", in, got, err, want)
		}
	}
	if _, err := ParseKind("oracle"); err == nil {
		t.Fatalf("want error for unknown kind")
	}
}
