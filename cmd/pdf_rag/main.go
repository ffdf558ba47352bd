package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"pdf_rag/internal/app"
	"pdf_rag/internal/config"
	"pdf_rag/internal/llm"

	"github.com/joho/godotenv"
)

const usage = `Usage: pdf_rag <command> [flags]

Commands:
  index    build the vector index of the data directory
  query    answer questions over the index with citations
  ask      ask one question against every token chunk of a document
  tokens   print the token count of a document
  context  print the words around a phrase in a document
`

// questions - повторяемый флаг -q
type questions []string

func (q *questions) String() string { return strings.Join(*q, "; ") }

func (q *questions) Set(v string) error {
	*q = append(*q, v)
	return nil
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	cmd, args := os.Args[1], os.Args[2:]

	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	dataDir := fs.String("data", "", "Data directory with documents (overrides DATA_DIR)")

	var (
		force     *bool
		prompts   questions
		stdin     *bool
		file      *string
		question  *string
		maxTokens *int
		asJSON    *bool
		output    *string
		target    *string
		words     *int
	)

	switch cmd {
	case "index":
		force = fs.Bool("force", false, "Rebuild the index from scratch")
	case "query":
		fs.Var(&prompts, "q", "Question to ask (repeatable, default: built-in questions)")
		stdin = fs.Bool("stdin", false, "Read questions from stdin line by line")
	case "ask":
		file = fs.String("file", "", "Path to the document (required)")
		question = fs.String("question", app.DefaultQuestion, "Question asked against every chunk")
		maxTokens = fs.Int("max-tokens", 0, "Chunk budget in tokens (default MAX_TOKENS)")
		asJSON = fs.Bool("json", false, "Request json_object responses")
		output = fs.String("output", "", "Save answers to a markdown file (optional)")
	case "tokens":
		file = fs.String("file", "", "Path to the document (required)")
	case "context":
		file = fs.String("file", "", "Path to the document (required)")
		target = fs.String("target", "", "Phrase to look for (required)")
		words = fs.Int("words", 10, "Words to print on each side")
	case "-h", "--help", "help":
		fmt.Fprint(os.Stdout, usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", cmd, usage)
		os.Exit(2)
	}

	if err := fs.Parse(args); err != nil {
		log.Fatalf("failed to parse flags: %v", err)
	}

	if file != nil {
		if *file == "" {
			log.Fatalf("Error: -file flag is required\nUsage: pdf_rag %s -file=/path/to/document.pdf", cmd)
		}
		if _, err := os.Stat(*file); os.IsNotExist(err) {
			log.Fatalf("Error: document not found: %s", *file)
		}
	}
	if target != nil && *target == "" {
		log.Fatal("Error: -target flag is required")
	}

	// Флаги перекрывают env
	if *dataDir != "" {
		os.Setenv("DATA_DIR", *dataDir)
	}

	// Загружаем .env (опционально)
	_ = godotenv.Load()

	cfg := config.Config{}
	if err := config.Init(&cfg); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	a := app.New(&cfg)

	// Контекст с сигналами завершения
	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()

	var err error
	switch cmd {
	case "index":
		if err = os.MkdirAll(cfg.StorageDir, 0755); err == nil {
			_, err = a.Index(ctx, *force)
		}
	case "query":
		if err = os.MkdirAll(cfg.StorageDir, 0755); err != nil {
			break
		}
		if *stdin {
			err = a.Run(ctx, os.Stdin)
		} else {
			_, err = a.Query(ctx, prompts)
		}
	case "ask":
		format := llm.FormatText
		if *asJSON {
			format = llm.FormatJSON
		}
		if *output != "" {
			a.SetOutputPath(*output)
		}
		_, err = a.Ask(ctx, *file, *question, *maxTokens, format)
	case "tokens":
		_, err = a.Tokens(*file)
	case "context":
		_, _, err = a.Context(*file, *target, *words)
	}

	if err != nil {
		log.Fatalf("%s failed: %v", cmd, err)
	}
}
