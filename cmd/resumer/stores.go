package main

import (
	"context"
	"fmt"
	"net"
	"strconv"

	"github.com/cschleiden/go-resume/internal/config"
	"github.com/cschleiden/go-resume/metrics"
	"github.com/cschleiden/go-resume/store"
	smemory "github.com/cschleiden/go-resume/store/memory"
	smysql "github.com/cschleiden/go-resume/store/mysql"
	sredis "github.com/cschleiden/go-resume/store/redis"
	ssqlite "github.com/cschleiden/go-resume/store/sqlite"
	"github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"
)

func newStore(ctx context.Context, cfg config.StoreConfig, mc metrics.Client) (store.Store, error) {
	s, err := openStore(cfg)
	if err != nil {
		return nil, err
	}

	if cfg.Cache.Size == 0 {
		return s, nil
	}

	cs := store.NewCachedStore(s, mc, int(cfg.Cache.Size), cfg.Cache.TTL)
	go cs.StartEviction(ctx)

	return cs, nil
}

func openStore(cfg config.StoreConfig) (store.Store, error) {
	kind, dsn, err := cfg.Parse()
	if err != nil {
		return nil, err
	}

	switch kind {
	case config.StoreMemory:
		return smemory.NewMemoryStore(), nil

	case config.StoreSqlite:
		return ssqlite.NewSqliteStore(dsn)

	case config.StoreMySQL:
		mc, err := mysql.ParseDSN(dsn)
		if err != nil {
			return nil, fmt.Errorf("parsing mysql dsn: %w", err)
		}

		host, portStr, err := net.SplitHostPort(mc.Addr)
		if err != nil {
			return nil, fmt.Errorf("parsing mysql address %q: %w", mc.Addr, err)
		}

		port, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("parsing mysql port %q: %w", portStr, err)
		}

		return smysql.NewMysqlStore(host, port, mc.User, mc.Passwd, mc.DBName)

	case config.StoreRedis:
		opts, err := redis.ParseURL("redis://" + dsn)
		if err != nil {
			return nil, fmt.Errorf("parsing redis url: %w", err)
		}

		return sredis.NewRedisStore(redis.NewClient(opts)), nil
	}

	return nil, fmt.Errorf("unknown store %q", kind)
}
