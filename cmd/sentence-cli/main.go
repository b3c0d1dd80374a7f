package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mikey/sentence-assistant/internal/core"
	"github.com/mikey/sentence-assistant/internal/di"
	"github.com/mikey/sentence-assistant/internal/utils"
	"go.uber.org/zap"
)

const analysisTimeout = 2 * time.Minute

func main() {
	flags, err := di.ParseFlags(os.Args[0], os.Args[1:])
	if err != nil {
		os.Exit(2)
	}

	container, err := di.BuildCLIContainer(flags)
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	var sentence string
	err = container.Invoke(func(logger *zap.Logger, repairer *utils.Repairer, textProcessor *utils.TextProcessor) error {
		raw, err := readInput(flags, logger)
		if err != nil {
			return err
		}
		sentence = repairer.Repair(textProcessor.CleanSentence(raw))
		return nil
	})
	if err != nil {
		fmt.Printf("Failed to read sentence: %v\n", err)
		os.Exit(1)
	}
	if sentence == "" {
		fmt.Println("No sentence provided")
		os.Exit(1)
	}

	if flags.RepairOnly {
		fmt.Println(sentence)
		return
	}

	if err := container.Invoke(func(logger *zap.Logger, assistant core.Assistant, llmClient core.LLMClient) error {
		defer logger.Sync()
		defer closeClient(logger, llmClient)
		return analyze(assistant, sentence, flags.JSONLog)
	}); err != nil {
		fmt.Printf("Analysis failed: %v\n", err)
		os.Exit(1)
	}
}

// readInput returns the -sentence flag, else the -file contents, else stdin
func readInput(flags *di.CLIFlags, logger *zap.Logger) (string, error) {
	if flags.Sentence != "" {
		return flags.Sentence, nil
	}

	var r io.Reader = os.Stdin
	if flags.InputFile != "" {
		file, err := os.Open(flags.InputFile)
		if err != nil {
			return "", fmt.Errorf("failed to open input file: %w", err)
		}
		defer file.Close()
		r = file
		logger.Info("Reading sentence from file", zap.String("file", flags.InputFile))
	} else {
		logger.Info("Reading sentence from stdin")
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return string(data), nil
}

func analyze(assistant core.Assistant, sentence string, jsonOut bool) error {
	ctx, cancel := context.WithTimeout(context.Background(), analysisTimeout)
	defer cancel()

	startTime := time.Now()
	analysis, err := assistant.AnalyzeSentence(ctx, sentence)
	if err != nil {
		return err
	}
	duration := time.Since(startTime)

	if jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		return enc.Encode(analysis)
	}

	fmt.Printf("\n=== Sentence ===\n")
	fmt.Printf("%s\n", analysis.Sentence)
	fmt.Printf("Translation: %s\n", analysis.Translation)
	if analysis.Difficulty != "" {
		fmt.Printf("Difficulty: %s\n", analysis.Difficulty)
	}

	fmt.Printf("\n=== Words ===\n")
	for _, w := range analysis.Words {
		line := w.Word
		if w.Reading != "" {
			line += " [" + w.Reading + "]"
		}
		if w.PartOfSpeech != "" {
			line += " (" + w.PartOfSpeech + ")"
		}
		fmt.Printf("%s: %s\n", line, w.Meaning)
	}

	if len(analysis.Grammar) > 0 {
		fmt.Printf("\n=== Grammar ===\n")
		fmt.Printf("%s\n", strings.Join(analysis.Grammar, "\n"))
	}

	fmt.Printf("\nModel used: %s\n", analysis.ModelUsed)
	fmt.Printf("Processing time: %v\n", duration)
	return nil
}

func closeClient(logger *zap.Logger, llmClient core.LLMClient) {
	if closer, ok := llmClient.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close LLM client", zap.Error(err))
		}
	}
}
