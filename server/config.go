package server

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"gostomp/codec/stomp"
)

var Conf = Config{
	Port:              61613,
	Multicore:         true,
	MaxCons:           4096,
	MaxPoolSize:       1024,
	ReceiveWindowSize: 1024,
	MaxFrameSize:      1 << 20,
	ServerName:        "gostomp/1.0",
	HeartbeatDuration: 30 * time.Second,
}

type Config struct {
	Port              int           `yaml:"port"`
	Multicore         bool          `yaml:"multicore"`
	MaxCons           int           `yaml:"max-cons"`
	MaxPoolSize       int           `yaml:"max-pool-size"`
	ReceiveWindowSize int           `yaml:"receive-window-size"`
	MaxFrameSize      int           `yaml:"max-frame-size"`
	Strict            bool          `yaml:"strict"`
	ServerName        string        `yaml:"server-name"`
	HeartbeatDuration time.Duration `yaml:"heartbeat-duration"`
	DatacenterId      int32         `yaml:"datacenter-id"`
	WorkerId          int32         `yaml:"worker-id"`
}

// LoadConf overlays Conf with the yaml file named by STOMPD_CONF_PATH.
// Without the variable the compiled-in defaults stand.
func LoadConf() {
	path := os.Getenv("STOMPD_CONF_PATH")
	if len(path) == 0 {
		return
	}
	config, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}
	err = yaml.Unmarshal(config, &Conf)
	if err != nil {
		panic(err)
	}
}

func (c *Config) Mode() stomp.Mode {
	if c.Strict {
		return stomp.Strict
	}
	return stomp.Permissive
}
