package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"caregiver-rag/internal/config"
	"caregiver-rag/internal/database"
	"caregiver-rag/internal/embedding"
	"caregiver-rag/internal/llm"
	"caregiver-rag/internal/models"
	"caregiver-rag/internal/rag"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	queryFlag := flag.String("q", "", "Question to answer (non-interactive mode)")
	interactive := flag.Bool("i", false, "Run in interactive mode")
	topK := flag.Int("k", cfg.TopK, "Number of contexts to retrieve")
	plan := flag.Bool("plan", false, "Also suggest caregiver tasks from the answer")
	flag.Parse()

	ctx := context.Background()

	db, err := database.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.GetOrCreateCollection(ctx, cfg.Collection, cfg.EmbedModel, cfg.EmbedDim); err != nil {
		log.Fatalf("Failed to open collection: %v", err)
	}

	embedder, completer, err := newProviders(cfg)
	if err != nil {
		log.Fatalf("Failed to create providers: %v", err)
	}

	retriever := rag.NewRetriever(db, embedder, cfg.Collection, *topK)
	composer := rag.NewComposer(retriever, completer)
	planner := rag.NewPlanner(completer)

	if *interactive {
		runInteractiveMode(ctx, composer, planner, *topK, *plan)
		return
	}

	if *queryFlag == "" {
		log.Fatal("Question is required in non-interactive mode. Use -q 'your question'")
	}

	answer, err := composer.Answer(ctx, *queryFlag, *topK)
	if err != nil {
		log.Fatalf("Failed to answer question: %v", err)
	}
	fmt.Println(formatAnswer(answer))

	if *plan {
		printTaskPlan(ctx, planner, *queryFlag, answer.Text)
	}
}

func runInteractiveMode(ctx context.Context, composer *rag.Composer, planner *rag.Planner, topK int, plan bool) {
	scanner := bufio.NewScanner(os.Stdin)

	fmt.Println("Caregiver Assistant - Ask questions about the guidance library (type 'exit' to quit)")

	for {
		fmt.Print("\n> ")
		if !scanner.Scan() {
			break
		}

		input := strings.TrimSpace(scanner.Text())
		if strings.EqualFold(input, "exit") || strings.EqualFold(input, "quit") {
			break
		}
		if input == "" {
			continue
		}

		fmt.Print("Searching guidance library... ")

		answer, err := composer.Answer(ctx, input, topK)
		if err != nil {
			fmt.Printf("\rError: %v\n", err)
			continue
		}

		fmt.Println("\r" + formatAnswer(answer))

		if plan {
			printTaskPlan(ctx, planner, input, answer.Text)
		}
	}
}

func formatAnswer(answer *models.Answer) string {
	var sb strings.Builder

	sb.WriteString(answer.Text)
	sb.WriteString("\n")

	if len(answer.Sources) > 0 {
		sb.WriteString("\nSources:\n")
		for i, source := range answer.Sources {
			sb.WriteString(fmt.Sprintf("  %d. [%s, distance: %.3f]\n", i+1, source.Source, source.Score))
		}
	} else {
		sb.WriteString("\n(no curated sources matched; answered from general knowledge)\n")
	}

	return sb.String()
}

func printTaskPlan(ctx context.Context, planner *rag.Planner, question, guidance string) {
	tasks, err := planner.PlanTasks(ctx, question, guidance, "", 0)
	if err != nil {
		fmt.Printf("Could not plan tasks: %v\n", err)
		return
	}

	fmt.Println("Suggested tasks:")
	for _, task := range tasks {
		fmt.Printf("  - %s (%s): %s\n", task.Title, task.SuggestedTime, task.Description)
	}
}

func newProviders(cfg *config.Config) (rag.Embedder, rag.Completer, error) {
	if cfg.Provider == config.ProviderOllama {
		embedder, err := embedding.NewOllamaEmbedder(cfg.OllamaHost, cfg.EmbedModel)
		if err != nil {
			return nil, nil, err
		}
		completer, err := llm.NewOllamaLLM(cfg.OllamaHost, cfg.CompletionModel)
		if err != nil {
			return nil, nil, err
		}
		return embedder, completer, nil
	}

	return embedding.NewOpenAIEmbedder(cfg.OpenAIKey, cfg.EmbedModel),
		llm.NewOpenAILLM(cfg.OpenAIKey, cfg.CompletionModel), nil
}
