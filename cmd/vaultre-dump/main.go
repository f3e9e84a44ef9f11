// Command vaultre-dump prints a VaultRE resource as indented JSON.
//
// By default it fetches the residential lease feed directly from the API,
// bypassing any cache, which is useful when checking what the upstream
// currently returns.
//
//	vaultre-dump
//	vaultre-dump -path /properties/rural/sale/sold
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/rs/zerolog/log"

	"github.com/Sternrassler/vaultre-client/pkg/client"
	"github.com/Sternrassler/vaultre-client/pkg/config"
	"github.com/Sternrassler/vaultre-client/pkg/logging"
)

const defaultPath = "/properties/residential/lease"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		log.Fatal().Err(err).Msg("vaultre-dump failed")
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("vaultre-dump", flag.ContinueOnError)
	path := fs.String("path", defaultPath, "resource path including any query string")
	envFile := fs.String("env", "", "optional .env file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var (
		cfg *config.Config
		err error
	)
	if *envFile != "" {
		cfg, err = config.Load(*envFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}

	logging.Setup(logging.Config{
		Level:   logging.LogLevel(cfg.Log.Level),
		Pretty:  true,
		Output:  os.Stderr,
		Service: "vaultre-dump",
	})

	vaultre, err := client.New(cfg.ClientConfig())
	if err != nil {
		return err
	}

	return dump(ctx, vaultre, *path, out)
}

// dump fetches path and writes it indented by four spaces.
func dump(ctx context.Context, fetcher interface {
	Get(ctx context.Context, path string) ([]byte, error)
}, path string, out io.Writer) error {
	body, err := fetcher.Get(ctx, path)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", path, err)
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, body, "", "    "); err != nil {
		return fmt.Errorf("response for %s is not JSON: %w", path, err)
	}
	buf.WriteByte('\n')

	_, err = buf.WriteTo(out)
	return err
}
