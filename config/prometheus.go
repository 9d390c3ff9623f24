package config

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type Global struct {
	ScrapeInterval string         `yaml:"scrape_interval"`
	ExternalLabels ExternalLabels `yaml:"external_labels"`
}

type ExternalLabels struct {
	Monitor string `yaml:"monitor"`
}

type ScrapeConfig struct {
	JobName        string         `yaml:"job_name"`
	ScrapeInterval string         `yaml:"scrape_interval"`
	StaticConfigs  []StaticConfig `yaml:"static_configs"`
}

type StaticConfig struct {
	Targets []string `yaml:"targets"`
}

type PromConfig struct {
	Global        Global         `yaml:"global"`
	ScrapeConfigs []ScrapeConfig `yaml:"scrape_configs"`
}

// PrometheusConfig builds one scrape job per relay and user that exposes metrics.
func (c *Config) PrometheusConfig() PromConfig {
	interval := fmt.Sprintf("%ds", c.ScrapeInterval)
	promCfg := PromConfig{
		Global: Global{
			ScrapeInterval: "15s",
			ExternalLabels: ExternalLabels{Monitor: "onionnet"},
		},
		ScrapeConfigs: []ScrapeConfig{},
	}
	addJob := func(name, host string, port int) {
		if port == 0 {
			return
		}
		promCfg.ScrapeConfigs = append(promCfg.ScrapeConfigs, ScrapeConfig{
			JobName:        name,
			ScrapeInterval: interval,
			StaticConfigs:  []StaticConfig{{Targets: []string{fmt.Sprintf("%s:%d", host, port)}}},
		})
	}
	for _, relay := range c.Relays {
		addJob(fmt.Sprintf("relay-%d", relay.ID), relay.Host, relay.PrometheusPort)
	}
	for _, user := range c.Users {
		addJob(fmt.Sprintf("user-%d", user.ID), user.Host, user.PrometheusPort)
	}
	return promCfg
}

// WritePrometheusConfig writes the scrape config to path as yaml.
func (c *Config) WritePrometheusConfig(path string) error {
	promCfg := c.PrometheusConfig()
	data, err := yaml.Marshal(&promCfg)
	if err != nil {
		return errors.Wrap(err, "failed to marshal prometheus config")
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return errors.Wrap(err, "failed to open file for writing")
	}
	defer file.Close()

	if _, err = file.Write(data); err != nil {
		return errors.Wrap(err, "failed to write prometheus config to file")
	}
	if err = file.Sync(); err != nil {
		return errors.Wrap(err, "failed to flush prometheus config to disk")
	}

	slog.Info("prometheus config written to file", "path", path)
	return nil
}
