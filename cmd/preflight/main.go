// cmd/preflight/main.go
package main

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/hamed0406/sanitycheck/internal/battery"
	"github.com/hamed0406/sanitycheck/internal/config"
)

func main() {
	fail := func(msg string) {
		fmt.Fprintln(os.Stderr, "✖", msg)
		os.Exit(1)
	}
	warn := func(msg string) { fmt.Fprintln(os.Stderr, "⚠", msg) }
	ok := func(msg string) { fmt.Println("✔", msg) }

	cfg := config.FromEnv()
	ok("API_ADDR=" + cfg.Addr)

	switch cfg.StoreDriver {
	case "memory":
		warn("STORE_DRIVER=memory; results are lost on restart.")
	case "postgres":
		u, err := url.Parse(cfg.DatabaseURL)
		if cfg.DatabaseURL == "" || err != nil || u.Host == "" {
			fail("STORE_DRIVER=postgres but DATABASE_URL is missing or malformed.")
		}
		ok("DATABASE_URL host=" + u.Host)
	case "sqlite":
		dir := filepath.Dir(cfg.SQLitePath)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			fail("SQLITE_PATH directory not writable: " + err.Error())
		}
		ok("SQLITE_PATH=" + cfg.SQLitePath)
	case "mysql":
		if cfg.MySQLDSN == "" {
			fail("STORE_DRIVER=mysql but MYSQL_DSN is empty.")
		}
		ok("MYSQL_DSN present")
	default:
		fail("STORE_DRIVER must be one of memory|postgres|sqlite|mysql, got " + cfg.StoreDriver)
	}

	defs := config.DefaultBattery(cfg.BaseURL)
	if cfg.BatteryFile != "" {
		var err error
		if defs, err = config.LoadBattery(cfg.BatteryFile); err != nil {
			fail(err.Error())
		}
		ok("BATTERY_FILE=" + cfg.BatteryFile)
	} else {
		warn("BATTERY_FILE empty; using built-in battery against " + cfg.BaseURL)
	}
	specs, err := battery.Build(defs, battery.Options{ValidateTimeout: cfg.ValidateTimeout})
	if err != nil {
		fail("battery: " + err.Error())
	}
	ok(fmt.Sprintf("%d probes configured", len(specs)))

	if strings.TrimSpace(cfg.SlackWebhook) == "" {
		warn("SLACK_WEBHOOK_URL empty; failure alerts are disabled.")
	} else {
		ok("SLACK_WEBHOOK_URL present")
	}
	if cfg.RunInterval == 0 {
		warn("RUN_INTERVAL_MS is 0; runs only happen on demand.")
	} else {
		ok("RUN_INTERVAL_MS=" + cfg.RunInterval.String())
	}

	ok("preflight passed")
}
