package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/meta-node-blockchain/om-generals/pkg/config"
	"github.com/meta-node-blockchain/om-generals/pkg/events"
	"github.com/meta-node-blockchain/om-generals/pkg/logger"
	"github.com/meta-node-blockchain/om-generals/pkg/loggerfile"
	"github.com/meta-node-blockchain/om-generals/pkg/simulation"
)

func main() {
	configFile := flag.String("config", "", "Configuration file name (JSON)")
	generalsFlag := flag.String("G", "", "A string of generals (i.e. 'l,t,l,l'), where l is loyal and t is a traitor. The first general is the supreme general")
	orderFlag := flag.String("O", "", "The order the commander gives to the other generals (ATTACK or RETREAT)")
	transportFlag := flag.String("transport", "", "Transport: local or udp")
	seedFlag := flag.Int64("seed", 0, "Random seed for traitor behavior (0 = time based)")
	timeoutFlag := flag.Duration("timeout", 0, "Receive timeout, 0 blocks forever")
	logDirFlag := flag.String("log-dir", "", "Directory for per-role log files")
	logLevelFlag := flag.String("log-level", "", "Console log level: trace, debug, info, warn, error, off")
	flag.Parse()

	// Tải cấu hình từ file (nếu có), sau đó cờ lệnh ghi đè
	cfg := config.DefaultConfig()
	if *configFile != "" {
		loaded, err := config.LoadConfigFromFile(*configFile)
		if err != nil {
			log.Fatalf("Error loading config: %v", err)
		}
		cfg = loaded
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "G":
			cfg.Generals = *generalsFlag
		case "O":
			cfg.Order = *orderFlag
		case "transport":
			cfg.Transport = *transportFlag
		case "seed":
			cfg.Seed = *seedFlag
		case "timeout":
			cfg.ReceiveTimeout = config.Duration(*timeoutFlag)
		case "log-dir":
			cfg.LogDir = *logDirFlag
		case "log-level":
			cfg.LogLevel = *logLevelFlag
		}
	})

	sc, err := simulation.ScenarioFromConfig(cfg)
	if err != nil {
		log.Fatalf("Invalid config: %v", err)
	}
	level, _ := logger.ParseLevel(cfg.LogLevel)
	console := logger.New(&logger.LoggerConfig{Flag: level, Identifier: "main"})

	if cfg.CleanLogs {
		if err := loggerfile.NewLogCleaner(cfg.LogDir, console).CleanLogs(); err != nil {
			log.Fatalf("Failed to clean logs: %v", err)
		}
	}
	files := simulation.NewFileSinks(cfg.LogDir)
	defer files.Close()
	sc.Sink = events.Multi(simulation.LoggerSink(console), files)

	console.Info("Generals: %s, order: %s, transport: %s", cfg.Generals, sc.Order, cfg.Transport)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	res, err := simulation.Run(ctx, sc)
	if err != nil {
		console.Error("Simulation failed: %v", err)
		files.Close()
		os.Exit(1)
	}
	if err := files.Err(); err != nil {
		console.Warn("Some log files could not be written: %v", err)
	}
	for id, e := range res.Errors {
		console.Warn("general %d: %v", id, e)
	}
	console.Debug("run %s seed %d took %s", res.RunID, res.Seed, time.Since(start))
	fmt.Println(res.Verdict)
}
