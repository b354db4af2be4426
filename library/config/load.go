// Package config loads wordjobs settings from files, dotenv and the environment.
package config

import (
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/Laisky/errors/v2"
	gconfig "github.com/Laisky/go-config/v2"
	"github.com/Laisky/zap"
	"github.com/joho/godotenv"

	"github.com/Laisky/wordjobs/library/log"
)

// LoadFromFile merges the YAML configuration at cfgPath into the shared settings.
// An empty path is a no-op, every key has a default.
func LoadFromFile(cfgPath string) error {
	cfgPath = strings.TrimSpace(cfgPath)
	if cfgPath == "" {
		log.Logger.Debug("no configuration file given, use defaults and environment")
		return nil
	}

	gconfig.S.Set("cfg_dir", filepath.Dir(cfgPath))
	if err := gconfig.S.LoadFromFile(cfgPath); err != nil {
		return errors.Wrapf(err, "load configuration from %q", cfgPath)
	}

	log.Logger.Info("load configuration", zap.String("config", cfgPath))
	return nil
}

// LoadDotEnv exports the variables of a dotenv file into the process environment.
// Variables that are already set are not overridden, and a missing file is ignored.
func LoadDotEnv(path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}

	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Logger.Debug("dotenv file not found", zap.String("path", path))
			return nil
		}
		return errors.Wrapf(err, "load dotenv %q", path)
	}

	log.Logger.Info("load dotenv", zap.String("path", path))
	return nil
}
