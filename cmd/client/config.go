package main

import "time"

type Config struct {
	Transport      string        `env:"TRANSPORT,default=websocket" validate:"oneof=websocket grpc"`
	RelayURL       string        `env:"RELAY_URL,default=ws://localhost:8080/backend" validate:"required,url"`
	GrpcAddress    string        `env:"GRPC_ADDRESS,default=localhost:50051" validate:"required"`
	ActionInterval time.Duration `env:"ACTION_INTERVAL,default=2s" validate:"gt=0"`
	ActionCount    int           `env:"ACTION_COUNT,default=0" validate:"min=0"`
	LogLevel       string        `env:"LOG_LEVEL,default=WARN"`
}
