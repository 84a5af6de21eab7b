// Package flags holds the CLI flags and setup helpers shared by the
// keepldr binaries.
package flags

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/keepldr/keepldr/common"
	"github.com/keepldr/keepldr/httpserver"
	"github.com/urfave/cli/v2"
)

// KeySourceGenerate always generates a fresh identity key.
const KeySourceGenerate = "generate"

// KeySourceRecoverThenGenerate tries to recover sealed key material
// over the attestation channel and falls back to fresh generation.
const KeySourceRecoverThenGenerate = "recover-then-generate"

func SetupLogger(cCtx *cli.Context) (log *slog.Logger) {
	logJSON := cCtx.Bool(LogJSONFlag.Name)
	logDebug := cCtx.Bool(LogDebugFlag.Name)
	logUID := cCtx.Bool(LogUIDFlag.Name)
	logService := cCtx.String(LogServiceFlag.Name)

	logger := common.SetupLogger(&common.LoggingOpts{
		Debug:   logDebug,
		JSON:    logJSON,
		Service: logService,
		Version: common.Version,
	})

	if logUID {
		id := uuid.Must(uuid.NewRandom())
		logger = logger.With("uid", id.String())
	}
	return logger
}

func ConfigureServer(cCtx *cli.Context, logger *slog.Logger) *httpserver.HTTPServerConfig {
	return &httpserver.HTTPServerConfig{
		ListenAddr:               cCtx.String(ListenAddrFlag.Name),
		MetricsAddr:              cCtx.String(MetricsAddrFlag.Name),
		Log:                      logger,
		EnablePprof:              cCtx.Bool(PprofFlag.Name),
		GracefulShutdownDuration: 30 * time.Second,
		ReadTimeout:              time.Duration(cCtx.Int64(BodyReadSecondsFlag.Name)) * time.Second,
		WriteTimeout:             30 * time.Second,
	}
}

var ListenAddrFlag = &cli.StringFlag{
	Name:  "listen-addr",
	Value: "127.0.0.1:3040",
	Usage: "address and port to serve the workload endpoint on",
}

var MetricsAddrFlag = &cli.StringFlag{
	Name:  "metrics-addr",
	Value: "",
	Usage: "address to listen on for Prometheus metrics, disabled if empty",
}

var KeySourceFlag = &cli.StringFlag{
	Name:  "key-source",
	Value: KeySourceRecoverThenGenerate,
	Usage: "identity key source: 'generate' or 'recover-then-generate'",
}

var SevSecretPathFlag = &cli.StringFlag{
	Name:  "sev-secret-path",
	Value: "",
	Usage: "override the SEV injected secret path used for key recovery",
}

var BodyReadSecondsFlag = &cli.Int64Flag{
	Name:  "body-read-seconds",
	Value: 60,
	Usage: "seconds allowed for receiving a full workload request body",
}

var WorkloadTimeoutSecondsFlag = &cli.Int64Flag{
	Name:  "workload-timeout-seconds",
	Value: 0,
	Usage: "seconds allowed for workload execution, 0 for unbounded",
}

var LogJSONFlag = &cli.BoolFlag{
	Name:  "log-json",
	Value: false,
	Usage: "log in JSON format",
}
var LogDebugFlag = &cli.BoolFlag{
	Name:  "log-debug",
	Value: false,
	Usage: "log debug messages",
}
var LogUIDFlag = &cli.BoolFlag{
	Name:  "log-uid",
	Value: false,
	Usage: "generate a uuid and add to all log messages",
}
var LogServiceFlag = &cli.StringFlag{
	Name:  "log-service",
	Value: common.PackageName,
	Usage: "add 'service' tag to logs",
}

var PprofFlag = &cli.BoolFlag{
	Name:  "pprof",
	Value: false,
	Usage: "enable pprof debug endpoint",
}

var CommonFlags = []cli.Flag{
	LogJSONFlag,
	LogDebugFlag,
	LogUIDFlag,
	LogServiceFlag,
}
