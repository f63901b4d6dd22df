package database

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"time"

	"github.com/go-sql-driver/mysql"
)

// Options describes the MySQL server and the pool kept against it.
type Options struct {
	User, Pass string
	Host, Port string
	Name       string

	MaxConns        int           // open and idle cap; <= 0 means 25
	ConnMaxLifetime time.Duration // <= 0 means 30m
	PingTimeout     time.Duration // <= 0 means 5s
}

// Config builds the driver config.  Times are parsed into time.Time in UTC
// so token expiry compares the same on every host.
func (o Options) Config() *mysql.Config {
	cfg := mysql.NewConfig()
	cfg.User = o.User
	cfg.Passwd = o.Pass
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(o.Host, o.Port)
	cfg.DBName = o.Name
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	_ = cfg.Apply(mysql.Charset("utf8mb4", ""))
	return cfg
}

// Open connects to MySQL and pings it within PingTimeout.
func Open(ctx context.Context, o Options) (*sql.DB, error) {
	conn, err := mysql.NewConnector(o.Config())
	if err != nil {
		return nil, fmt.Errorf("mysql config: %w", err)
	}
	db := sql.OpenDB(conn)

	n := o.MaxConns
	if n <= 0 {
		n = 25
	}
	life := o.ConnMaxLifetime
	if life <= 0 {
		life = 30 * time.Minute
	}
	db.SetMaxOpenConns(n)
	db.SetMaxIdleConns(n)
	db.SetConnMaxLifetime(life)

	timeout := o.PingTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	pctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := db.PingContext(pctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("mysql ping %s: %w", net.JoinHostPort(o.Host, o.Port), err)
	}
	return db, nil
}
