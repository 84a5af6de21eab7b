package main

import (
	"bytes"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/keepldr/keepldr/cmd/flags"
	"github.com/keepldr/keepldr/envelope"
	"github.com/urfave/cli/v2"
)

var addrFlag = &cli.StringFlag{
	Name:  "addr",
	Value: "https://127.0.0.1:3040",
	Usage: "base URL of the keep's workload endpoint",
}

var wasmFileFlag = &cli.StringFlag{
	Name:     "wasm-file",
	Required: true,
	Usage:    "path to the wasm module to deliver",
}

var infoFlag = &cli.StringFlag{
	Name:  "info",
	Value: "workload",
	Usage: "human-readable workload description",
}

var serverCertFlag = &cli.StringFlag{
	Name:  "server-cert",
	Usage: "PEM file with the keep's self-signed certificate to pin as trust anchor",
}

var insecureFlag = &cli.BoolFlag{
	Name:  "insecure",
	Value: false,
	Usage: "skip server certificate verification",
}

func main() {
	app := &cli.App{
		Name:  "keepclient",
		Usage: "Deliver a wasm workload to a running keep",
		Flags: append([]cli.Flag{addrFlag, wasmFileFlag, infoFlag, serverCertFlag, insecureFlag}, flags.CommonFlags...),
		Action: func(cCtx *cli.Context) error {
			logger := flags.SetupLogger(cCtx)

			wasmBytes, err := os.ReadFile(cCtx.String(wasmFileFlag.Name))
			if err != nil {
				return fmt.Errorf("reading wasm module: %w", err)
			}

			body, err := envelope.Encode(&envelope.Workload{
				HumanReadableInfo: cCtx.String(infoFlag.Name),
				WasmBinary:        wasmBytes,
			})
			if err != nil {
				return fmt.Errorf("encoding workload envelope: %w", err)
			}

			tlsConfig := &tls.Config{}
			if certFile := cCtx.String(serverCertFlag.Name); certFile != "" {
				certPEM, err := os.ReadFile(certFile)
				if err != nil {
					return fmt.Errorf("reading server certificate: %w", err)
				}
				pool := x509.NewCertPool()
				if !pool.AppendCertsFromPEM(certPEM) {
					return errors.New("server certificate file contains no valid PEM certificates")
				}
				tlsConfig.RootCAs = pool
			} else if cCtx.Bool(insecureFlag.Name) {
				tlsConfig.InsecureSkipVerify = true
			} else {
				return errors.New("either --server-cert or --insecure is required: the keep's certificate is self-signed")
			}

			client := &http.Client{
				Transport: &http.Transport{TLSClientConfig: tlsConfig},
				Timeout:   5 * time.Minute,
			}

			url := cCtx.String(addrFlag.Name) + "/workload"
			logger.Info("Delivering workload", "url", url, "payloadBytes", len(wasmBytes))

			resp, err := client.Post(url, "application/cbor", bytes.NewReader(body))
			if err != nil {
				// A connection reset is the keep's success signal: the
				// process exits inside the handler before any reply.
				logger.Info("Connection terminated by keep, workload assumed dispatched", "err", err)
				return nil
			}
			defer resp.Body.Close()

			respBody, err := io.ReadAll(resp.Body)
			if err != nil {
				logger.Info("Connection terminated mid-response, workload assumed dispatched", "err", err)
				return nil
			}

			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("keep rejected workload: status %d: %s", resp.StatusCode, string(respBody))
			}

			if len(respBody) > 0 {
				if outcome, err := envelope.DecodeCommsComplete(respBody); err == nil {
					logger.Info("Keep acknowledged delivery", "outcome", string(outcome))
					return nil
				}
			}
			logger.Info("Workload accepted", "status", resp.StatusCode)
			return nil
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
