package commands

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nodets/tsbridge/internal/config"
	"github.com/nodets/tsbridge/internal/server"
)

// bridgeFlags holds the transport and tsserver overrides parsed from the
// command line, per spec.md §6.5.
type bridgeFlags struct {
	stdio       bool
	nodeIPC     bool
	socketPort  int
	logFile     string
	tsserverBin string
}

// transportCount reports how many transport flags were set, so runBridge
// can enforce "exactly one required".
func (f bridgeFlags) transportCount() int {
	n := 0
	if f.stdio {
		n++
	}
	if f.nodeIPC {
		n++
	}
	if f.socketPort != 0 {
		n++
	}
	return n
}

func runBridge(cmd *cobra.Command, flags bridgeFlags) error {
	if flags.transportCount() != 1 {
		return fmt.Errorf("exactly one of --stdio, --node-ipc, --socket is required")
	}

	loader := config.NewLoader()
	cfg, err := loader.Load()
	if err != nil {
		return err
	}
	if flags.tsserverBin != "" {
		cfg.TsserverPath = flags.tsserverBin
	}
	if flags.logFile != "" {
		cfg.TsserverLogFile = flags.logFile
	}

	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("tsbridge: building logger: %w", err)
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	srv := server.NewServer(server.Options{
		TsserverPath:         cfg.TsserverPath,
		NodePath:             cfg.NodePath,
		TsserverLogFile:      cfg.TsserverLogFile,
		TsserverLogVerbosity: cfg.TsserverLogVerbosity,
		GlobalPlugins:        cfg.GlobalPlugins,
		PluginProbeLocations: cfg.PluginProbeLocations,
		CancellationPipeBase: cfg.CancellationPipeBase,
		ExtraArgs:            cfg.ExtraArgs,
		Logger:               sugar,
	})

	loader.Watch(func(reloaded *config.Config, watchErr error) {
		if watchErr != nil {
			sugar.Warnw("tsbridge: config reload failed", "error", watchErr)
			return
		}
		sugar.Infow("tsbridge: config reloaded; the running server keeps the options it was started with",
			"tsserverPath", reloaded.TsserverPath, "logVerbosity", reloaded.TsserverLogVerbosity)
	})

	stream, err := openTransport(flags)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	return srv.Run(ctx, stream)
}

// openTransport resolves the configured transport flag into the duplex
// stream server.Run expects.
func openTransport(flags bridgeFlags) (io.ReadWriteCloser, error) {
	switch {
	case flags.stdio:
		return server.NewStdioReadWriteCloser(), nil
	case flags.nodeIPC:
		// Node's child_process.fork() IPC channel is inherited as fd 3
		// when a Node parent spawns tsbridge with an "ipc" stdio slot.
		return os.NewFile(3, "node-ipc"), nil
	case flags.socketPort != 0:
		ln, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", flags.socketPort))
		if err != nil {
			return nil, fmt.Errorf("tsbridge: listening on socket: %w", err)
		}
		conn, err := ln.Accept()
		ln.Close()
		if err != nil {
			return nil, fmt.Errorf("tsbridge: accepting socket connection: %w", err)
		}
		return conn, nil
	default:
		return nil, fmt.Errorf("no transport configured")
	}
}
