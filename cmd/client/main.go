package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/mazecom/labyrinth-server-go/internal/player"
	"github.com/mazecom/labyrinth-server-go/internal/remote"
)

var (
	addr         = flag.String("addr", "127.0.0.1:7776", "signup server address")
	name         = flag.String("name", "", "signup name (1-20 alphanumeric characters)")
	strategyName = flag.String("strategy", "riemann", "strategy: riemann or euclid")
	debug        = flag.Bool("debug", false, "enable debug logging")
)

func main() {
	flag.Parse()
	if *name == "" {
		fmt.Fprintln(os.Stderr, "a -name is required")
		os.Exit(1)
	}

	var strategy player.Strategy
	switch *strategyName {
	case "riemann":
		strategy = player.Riemann{}
	case "euclid":
		strategy = player.Euclid{}
	default:
		fmt.Fprintf(os.Stderr, "unknown strategy %q\n", *strategyName)
		os.Exit(1)
	}

	logger, err := buildLogger(*debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	netConn, err := net.Dial("tcp", *addr)
	if err != nil {
		logger.Fatal("connecting to server", zap.String("addr", *addr), zap.Error(err))
	}
	conn := remote.NewConn(netConn)
	defer conn.Close()

	nameData, err := json.Marshal(*name)
	if err != nil {
		logger.Fatal("encoding name", zap.Error(err))
	}
	if _, err := netConn.Write(append(nameData, '\n')); err != nil {
		logger.Fatal("sending name", zap.Error(err))
	}
	var reply string
	if err := conn.ReadJSON(&reply); err != nil {
		logger.Fatal("reading signup reply", zap.Error(err))
	}
	if reply != "SUCCESS" {
		logger.Fatal("signup rejected", zap.String("reply", reply))
	}
	logger.Info("signed up", zap.String("name", *name), zap.String("strategy", *strategyName))

	local := player.NewLocalPlayer(*name, strategy)
	ref := remote.NewProxyReferee(conn, local, logger)
	if err := ref.Serve(ctx); err != nil {
		logger.Fatal("game aborted", zap.Error(err))
	}

	if won, notified := local.Won(); notified {
		if won {
			fmt.Println("won")
		} else {
			fmt.Println("lost")
		}
	}
}

func buildLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	return cfg.Build()
}
