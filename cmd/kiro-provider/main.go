// Command kiro-provider is the credential-provider plugin entrypoint: it brokers
// AWS CodeWhisperer/Kiro OAuth credentials for a host process over a
// line-delimited JSON-RPC channel, or answers one-shot CLI queries directly.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/proxycast/kiro-provider/internal/kiro"
	"github.com/proxycast/kiro-provider/internal/logging"
	"github.com/proxycast/kiro-provider/internal/rpc"
)

var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

func main() {
	var (
		jsonRPC      bool
		logLevel     string
		credentialID string
	)
	flag.BoolVar(&jsonRPC, "json-rpc", false, "enter JSON-RPC stream mode over stdin/stdout")
	flag.StringVar(&logLevel, "log-level", "", "log level (debug|info|warn|error|quiet); defaults to debug")
	flag.StringVar(&credentialID, "credential-id", "", "credential id for validate/refresh subcommands")
	flag.Parse()

	logging.Setup(logLevel)
	log.WithFields(log.Fields{"version": Version, "commit": Commit, "built_at": BuildDate}).Debug("kiro-provider starting")

	plugin := kiro.NewPlugin()

	if jsonRPC {
		runRPCLoop(plugin)
		return
	}

	if err := runCLI(plugin, flag.Args(), credentialID); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runRPCLoop(plugin *kiro.Plugin) {
	dispatcher := rpc.NewKiroDispatcher(plugin)
	if err := dispatcher.Serve(context.Background(), os.Stdin, os.Stdout); err != nil && err != io.EOF {
		log.WithError(err).Error("rpc loop exited with error")
		os.Exit(1)
	}
}

func runCLI(plugin *kiro.Plugin, args []string, credentialID string) error {
	cmd := "info"
	if len(args) > 0 {
		cmd = args[0]
	}
	if len(args) > 1 {
		sub := flag.NewFlagSet(cmd, flag.ContinueOnError)
		sub.StringVar(&credentialID, "credential-id", credentialID, "credential id for validate/refresh subcommands")
		if err := sub.Parse(args[1:]); err != nil {
			return err
		}
	}

	switch cmd {
	case "info":
		return printJSON(plugin.GetInfo())
	case "models":
		return printJSON(plugin.ListModels())
	case "validate":
		if credentialID == "" {
			return fmt.Errorf("validate requires --credential-id")
		}
		result, err := plugin.ValidateCredential(credentialID)
		if err != nil {
			return err
		}
		return printJSON(result)
	case "refresh":
		if credentialID == "" {
			return fmt.Errorf("refresh requires --credential-id")
		}
		result, err := plugin.RefreshToken(context.Background(), credentialID)
		if err != nil {
			return err
		}
		return printJSON(result)
	default:
		return fmt.Errorf("unknown command %q (expected info, models, validate, or refresh)", cmd)
	}
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
