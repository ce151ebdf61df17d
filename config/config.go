package config

import (
	"errors"
	"io/fs"
	"os"

	"github.com/golang/glog"
	rconfig "github.com/robfig/config"

	"github.com/krisalay/memo-cache/expiration"
)

// Section is the [cache] section of the config file.
const Section string = "cache"

// Config file keys
const (
	Listen               = "listen"
	Shards               = "shards"
	Staleness            = "staleness"
	EagerBootstrap       = "eager_bootstrap"
	BootstrapConcurrency = "bootstrap_concurrency"
	SweepSchedule        = "sweep_schedule"
)

// Config holds the process-level settings of the memo cache server.
type Config struct {
	Listen               string
	Shards               int
	Staleness            expiration.Staleness
	EagerBootstrap       bool
	BootstrapConcurrency int

	// SweepSchedule is a cron expression for periodic refresh of every
	// expired key. Empty disables it.
	SweepSchedule string
}

// Default returns the settings used when no config file exists.
func Default() Config {
	return Config{
		Listen:    ":8080",
		Shards:    8,
		Staleness: expiration.Strict,
	}
}

/*
Load reads the [cache] section of an INI file at path over Default(). Keys
that are absent keep their default. A missing file is not an error.
*/
func Load(path string) (Config, error) {
	cfg := Default()

	c, err := rconfig.ReadDefault(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || os.IsNotExist(err) {
			glog.Warningf("config: %s not found, using defaults", path)
			return cfg, nil
		}
		return cfg, err
	}
	if !c.HasSection(Section) {
		return cfg, nil
	}

	if c.HasOption(Section, Listen) {
		if cfg.Listen, err = c.String(Section, Listen); err != nil {
			return cfg, err
		}
	}
	if c.HasOption(Section, Shards) {
		if cfg.Shards, err = c.Int(Section, Shards); err != nil {
			return cfg, err
		}
	}
	if c.HasOption(Section, Staleness) {
		s, err := c.String(Section, Staleness)
		if err != nil {
			return cfg, err
		}
		if cfg.Staleness, err = expiration.ParseStaleness(s); err != nil {
			return cfg, err
		}
	}
	if c.HasOption(Section, EagerBootstrap) {
		if cfg.EagerBootstrap, err = c.Bool(Section, EagerBootstrap); err != nil {
			return cfg, err
		}
	}
	if c.HasOption(Section, BootstrapConcurrency) {
		if cfg.BootstrapConcurrency, err = c.Int(Section, BootstrapConcurrency); err != nil {
			return cfg, err
		}
	}
	if c.HasOption(Section, SweepSchedule) {
		if cfg.SweepSchedule, err = c.String(Section, SweepSchedule); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}
