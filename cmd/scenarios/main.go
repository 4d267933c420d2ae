package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/meta-node-blockchain/om-generals/pkg/logger"
	"github.com/meta-node-blockchain/om-generals/pkg/simulation"
)

func main() {
	runs := flag.Int("runs", 1, "Number of times to run every scenario")
	transport := flag.String("transport", "local", "Transport: local or udp")
	verbose := flag.Bool("v", false, "Print protocol traffic")
	flag.Parse()

	flagLevel := logger.FLAG_INFO
	if *verbose {
		flagLevel = logger.FLAG_DEBUG
	}
	log := logger.New(&logger.LoggerConfig{Flag: flagLevel, Identifier: "scenarios"})

	failures := 0
	for i := 1; i <= *runs; i++ {
		log.Info("================= LẦN CHẠY %d/%d =================", i, *runs)
		for _, c := range simulation.Canonical() {
			sc := c.Scenario
			sc.Transport = *transport
			sc.ReceiveTimeout = 5 * time.Second
			if *verbose {
				sc.Sink = simulation.LoggerSink(log)
			}

			log.Info("🚀 KỊCH BẢN: %s", sc.Name)
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			res, err := simulation.Run(ctx, sc)
			cancel()
			if err != nil {
				log.Error("Kịch bản %q lỗi: %v", sc.Name, err)
				failures++
				continue
			}
			if res.Verdict != c.Expected {
				log.Error("Kịch bản %q: kết luận %s, mong đợi %s (run %s)", sc.Name, res.Verdict, c.Expected, res.RunID)
				failures++
				continue
			}
			log.Info("✅ %s: %s (%s, %s)", sc.Name, res.Verdict, res.Tally, res.Duration)
		}
	}
	if failures > 0 {
		os.Exit(1)
	}
}
