//go:build !baremetal

package config

import (
	"os"
	"time"

	"batterygauge-go/errcode"

	"gopkg.in/yaml.v3"
)

// Host is the runtime configuration of the Linux daemon. Board starts from
// the build-time selection and any field present in the file overrides it.
type Host struct {
	Board   Board         `yaml:"board"`
	Refresh time.Duration `yaml:"refresh"`
	BLE     BLE           `yaml:"ble"`

	// Listen is the websocket feed address; empty disables it.
	Listen string `yaml:"listen"`
}

type BLE struct {
	Enable bool   `yaml:"enable"`
	Name   string `yaml:"name"`
}

const defaultRefresh = 30 * time.Second

// LoadOverrides reads path (YAML) on top of the build-time board. An empty
// path returns the defaults.
func LoadOverrides(path string) (Host, error) {
	h := Host{Board: Selected(), Refresh: defaultRefresh, BLE: BLE{Name: "wrd-gauge"}}
	if path == "" {
		return h, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return h, errcode.Wrap(errcode.InvalidParams, "config.load", err)
	}
	return ParseOverrides(h, raw)
}

// ParseOverrides decodes raw onto base.
func ParseOverrides(base Host, raw []byte) (Host, error) {
	if err := yaml.Unmarshal(raw, &base); err != nil {
		return base, errcode.Wrap(errcode.InvalidParams, "config.parse", err)
	}
	if base.Refresh <= 0 {
		base.Refresh = defaultRefresh
	}
	if err := base.Board.Validate(); err != nil {
		return base, err
	}
	return base, nil
}
