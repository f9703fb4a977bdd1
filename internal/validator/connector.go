package validator

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5"
)

// Connector opens a fresh, single-use connection with the given
// credentials, runs a no-op query and closes it again.
type Connector interface {
	Ping(ctx context.Context, c Credentials) error
}

// ConnectorFor returns the real connector for kind.
func ConnectorFor(kind ResourceKind) (Connector, error) {
	switch kind {
	case Postgres:
		return PostgresConnector{}, nil
	case MySQL:
		return MySQLConnector{}, nil
	}
	return nil, fmt.Errorf("no connector for resource kind %q", kind)
}

type PostgresConnector struct{}

func (PostgresConnector) Ping(ctx context.Context, c Credentials) error {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.User, c.Password),
		Host:   net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:   "/" + c.Database,
	}
	conn, err := pgx.Connect(ctx, u.String())
	if err != nil {
		return err
	}
	defer conn.Close(context.WithoutCancel(ctx))

	var one int
	return conn.QueryRow(ctx, "SELECT 1").Scan(&one)
}

type MySQLConnector struct{}

func (MySQLConnector) Ping(ctx context.Context, c Credentials) error {
	cfg := mysql.NewConfig()
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
	cfg.User = c.User
	cfg.Passwd = c.Password
	cfg.DBName = c.Database
	cfg.Timeout = 10 * time.Second

	db, err := sql.Open("mysql", cfg.FormatDSN())
	if err != nil {
		return err
	}
	defer db.Close()
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(0)

	var one int
	return db.QueryRowContext(ctx, "SELECT 1").Scan(&one)
}
