package main

import (
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"spring/pkg/actions"
	"spring/pkg/channels"
	_ "spring/pkg/channels/autoload" // register channel factories
	"spring/pkg/config"
	"spring/pkg/gateway"
	"spring/pkg/handler"
	"spring/pkg/history"
	"spring/pkg/monitor"
	"spring/pkg/oracle"
	_ "spring/pkg/oracle/autoload" // register oracle providers
	"spring/pkg/providers/local"

	"github.com/joho/godotenv"
)

func main() {
	monitor.PrintBanner()

	// .env is optional; environment variables may come from anywhere
	_ = godotenv.Load()

	// --- 0. Configuration ---
	cfg, sysCfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v\n", err)
	}
	monitor.SetupSlog(sysCfg.LogLevel)

	// --- 1. Oracle ---
	client, err := oracle.NewFromConfig(cfg.Oracle, sysCfg)
	if err != nil {
		log.Fatalf("❌ Failed to init oracle: %v\n", err)
	}

	// --- 2. Conversation history ---
	chatHistory := history.New(filepath.Join(cfg.DataDir, "history.json"), sysCfg.MaxHistorySize)
	if err := chatHistory.Load(); err != nil {
		log.Printf("⚠️ Warning: failed to load history: %v\n", err)
	}
	defer chatHistory.Close()

	// --- 3. Providers and actions ---
	contacts, err := local.NewContactDirectory(cfg.DataDir)
	if err != nil {
		log.Fatalf("❌ Failed to init contact directory: %v\n", err)
	}
	documents, err := local.NewDocumentStore(cfg.DataDir)
	if err != nil {
		log.Fatalf("❌ Failed to init document store: %v\n", err)
	}
	signatures, err := local.NewSignatureService(cfg.DataDir, os.Getenv("SIGN_BASE_URL"))
	if err != nil {
		log.Fatalf("❌ Failed to init signature service: %v\n", err)
	}
	parser, err := local.NewDocumentParser(cfg.DataDir)
	if err != nil {
		log.Fatalf("❌ Failed to init document parser: %v\n", err)
	}

	registry, err := actions.BuildRegistry(actions.Dependencies{
		Contacts:     contacts,
		Documents:    documents,
		Signatures:   signatures,
		Parser:       parser,
		SystemPrompt: cfg.SystemPrompt,
	})
	if err != nil {
		log.Fatalf("❌ Failed to build action registry: %v\n", err)
	}

	// --- 4. Handler and gateway ---
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	shutdown := func() { sigChan <- syscall.SIGTERM }

	h := handler.New(client, registry, chatHistory, cfg, sysCfg, shutdown)

	gw, err := gateway.NewBuilder().
		WithMonitor(monitor.NewCLIMonitor()).
		WithChannel(channels.LoadFromConfig(cfg.Channels, sysCfg)...).
		WithHandler(h).
		Build()
	if err != nil {
		log.Fatalf("❌ Failed to build gateway: %v\n", err)
	}

	<-sigChan
	log.Println("\nReceived shutdown signal. Stopping services...")

	gw.StopAll()
	log.Println("Bye!")
}
