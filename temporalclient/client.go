// Package temporalclient dials Temporal with the payload encryption codec
// shared by the worker, starter and gateway.
package temporalclient

import (
	"encoding/hex"
	"fmt"
	"log/slog"

	"go.temporal.io/sdk/client"

	"order-taking-system/codec"
	"order-taking-system/config"
	"order-taking-system/logging"
)

// Options builds client options for cfg. Without a configured key a random
// one is generated and logged; every process must then be given that key.
func Options(cfg config.Config, logger *slog.Logger) (client.Options, error) {
	key, generated, err := cfg.EncryptionKeyBytes()
	if err != nil {
		return client.Options{}, err
	}
	if generated {
		logger.Warn("Using generated encryption key; set ENCRYPTION_KEY to share it with other processes",
			"key", hex.EncodeToString(key))
	}

	dataConverter, err := codec.NewEncryptionDataConverter(key)
	if err != nil {
		return client.Options{}, fmt.Errorf("failed to create encryption data converter: %w", err)
	}

	return client.Options{
		HostPort:      cfg.TemporalAddress,
		DataConverter: dataConverter,
		Logger:        logging.Temporal(logger),
	}, nil
}

// Dial connects to the Temporal frontend.
func Dial(cfg config.Config, logger *slog.Logger) (client.Client, error) {
	opts, err := Options(cfg, logger)
	if err != nil {
		return nil, err
	}
	c, err := client.Dial(opts)
	if err != nil {
		return nil, fmt.Errorf("unable to create Temporal client: %w", err)
	}
	return c, nil
}
