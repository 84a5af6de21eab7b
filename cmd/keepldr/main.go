package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/keepldr/keepldr/attestation"
	"github.com/keepldr/keepldr/cmd/flags"
	"github.com/keepldr/keepldr/httpserver"
	"github.com/keepldr/keepldr/identity"
	"github.com/keepldr/keepldr/workload"
	"github.com/urfave/cli/v2"
)

var appFlags = append([]cli.Flag{
	flags.ListenAddrFlag,
	flags.MetricsAddrFlag,
	flags.KeySourceFlag,
	flags.SevSecretPathFlag,
	flags.BodyReadSecondsFlag,
	flags.WorkloadTimeoutSecondsFlag,
	flags.PprofFlag,
}, flags.CommonFlags...)

func main() {
	app := &cli.App{
		Name:  "keepldr",
		Usage: "Provision an attested TLS identity and run a single wasm workload",
		Flags: appFlags,
		Action: func(cCtx *cli.Context) error {
			logger := flags.SetupLogger(cCtx)

			listenAddr := cCtx.String(flags.ListenAddrFlag.Name)
			keySource := cCtx.String(flags.KeySourceFlag.Name)
			sevSecretPath := cCtx.String(flags.SevSecretPathFlag.Name)
			workloadTimeout := time.Duration(cCtx.Int64(flags.WorkloadTimeoutSecondsFlag.Name)) * time.Second

			hostname, err := os.Hostname()
			if err != nil {
				logger.Error("Failed to read hostname", "err", err)
				return err
			}

			var channel attestation.Channel
			switch keySource {
			case flags.KeySourceGenerate:
				channel = &attestation.NoneChannel{}
			case flags.KeySourceRecoverThenGenerate:
				channel = attestation.Detect(logger, sevSecretPath)
			default:
				return fmt.Errorf("no match for credentials source %q", keySource)
			}

			key, err := identity.ProvisionKey(channel, logger)
			if err != nil {
				logger.Error("Failed to provision identity key", "err", err)
				return err
			}

			// Certificate construction failure is fatal: without a valid
			// certificate the service cannot safely offer a TLS identity.
			keyPEM, certPEM, err := identity.IssueCertificate(key, listenAddr, hostname)
			if err != nil {
				logger.Error("Failed to issue identity certificate", "err", err)
				return err
			}

			tlsCert, err := identity.TLSCertificate(keyPEM, certPEM)
			if err != nil {
				logger.Error("Failed to assemble TLS identity", "err", err)
				return err
			}

			runner := workload.NewWasmRunner(workload.WasmConfig{RunTimeout: workloadTimeout})
			dispatcher := httpserver.NewDispatcher(runner, logger, os.Exit)
			handler := httpserver.NewHandler(dispatcher, logger)

			cfg := flags.ConfigureServer(cCtx, logger)
			server, err := httpserver.New(cfg, handler, tlsCert)
			if err != nil {
				logger.Error("Failed to create server", "err", err)
				return err
			}

			server.RunInBackground()

			// The normal exit path is process termination inside the
			// workload handler; this only handles external termination
			// before a workload arrives.
			exit := make(chan os.Signal, 1)
			signal.Notify(exit, os.Interrupt, syscall.SIGTERM)

			logger.Info("Awaiting workload", "listenAddr", listenAddr, "hostname", hostname)
			<-exit
			logger.Info("Shutdown signal received")

			server.Shutdown()
			return nil
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
