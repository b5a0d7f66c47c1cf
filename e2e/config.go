package e2e

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// E2E_RELAY_WS_URL is the websocket endpoint of a running relay, e.g. ws://localhost:8080/backend
	RelayWsURL string `envconfig:"E2E_RELAY_WS_URL"`
	// E2E_RELAY_GRPC_ADDR is the gRPC address of the same relay, e.g. localhost:50051
	RelayGrpcAddr string `envconfig:"E2E_RELAY_GRPC_ADDR"`
	// E2E_DEBUG_JSON dumps every gRPC frame as JSON
	DebugJSON bool `envconfig:"E2E_DEBUG_JSON" default:"false"`
	// E2E_COLOURS enables colorized step headers
	Colours bool          `envconfig:"E2E_COLOURS" default:"true"`
	Timeout time.Duration `envconfig:"E2E_TIMEOUT" default:"5s"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
