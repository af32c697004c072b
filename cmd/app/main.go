package main

import (
	"flag"
	"log"
	"os"

	"asdts/internal/di"
	"asdts/pkg/config"
)

func main() {
	// Parse flags
	configPath := flag.String("config", "config/config.yaml", "config file path")
	flag.Parse()

	// Load config
	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	log.Printf("env=%s symbols=%v", cfg.Environment, cfg.SymbolNames())

	// Wire DI: Initialize all dependencies
	app, err := di.InitializeApp(cfg)
	if err != nil {
		log.Fatalf("app initialization failed: %v", err)
	}

	log.Printf("kafka: brokers=%v samples=%s orders=%s fills=%s",
		cfg.Kafka.Brokers, cfg.Kafka.SamplesTopic, cfg.Kafka.OrdersTopic, cfg.Kafka.FillsTopic)

	// Run application (blocks until signal)
	if err := app.Run(); err != nil {
		log.Printf("app error: %v", err)
		os.Exit(1)
	}
}
