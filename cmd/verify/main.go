// One-shot verification from the command line, useful for demos and
// smoke-testing provider credentials without running the server.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"truthscan/internal/agent"
	"truthscan/internal/analysis"
	"truthscan/internal/config"
	"truthscan/internal/evidence"
)

func main() {
	if len(os.Args) != 3 {
		fmt.Fprintln(os.Stderr, "usage: verify <title> <content>")
		os.Exit(2)
	}

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	maxItems := cfg.Scoring.MaxEvidenceItems
	verificationAgent := agent.New(
		evidence.NewDiscussionProvider(cfg.Reddit, maxItems),
		evidence.NewReferenceProvider(cfg.Wikipedia, maxItems),
		evidence.NewNewsProvider(cfg.News, maxItems),
		analysis.NewAnalyzer(analysis.NewClient(cfg.LLM)),
		cfg.Scoring,
	)

	result, err := verificationAgent.Evaluate(context.Background(), os.Args[1], os.Args[2])
	if err != nil {
		log.Fatal("Verification failed:", err)
	}

	output, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Fatal("Failed to encode result:", err)
	}
	fmt.Println(string(output))
}
