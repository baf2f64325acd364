package main

import (
	"fmt"
	"strings"

	"github.com/RichardoC/bioexpert/internal/format"
	"github.com/RichardoC/bioexpert/internal/llm"
	"github.com/RichardoC/bioexpert/internal/models"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	rawReply   bool
	traceRules bool

	// newGateway builds the completion client for ask; tests replace it.
	newGateway = llm.New
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a single question and print the formatted reply",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()
		defer logger.Sync()

		conv := models.NewConversation(llm.SystemPrompt)
		conv.Append(models.RoleUser, strings.Join(args, " "))

		completion, err := newGateway(cfg.LLM(), logger).Complete(cmd.Context(), conv.Messages())
		if err != nil {
			logger.Error("failed to generate completion", zap.Error(err))
			return err
		}
		if traceRules {
			for _, c := range format.Trace(completion) {
				fmt.Fprintf(cmd.ErrOrStderr(), "line %d [%s]: %q -> %q\n", c.Line+1, c.Rule, c.Before, c.After)
			}
		}
		if !rawReply {
			completion = format.New(format.WithMaxPasses(cfg.NormalizePasses)).Normalize(completion)
		}
		fmt.Fprintln(cmd.OutOrStdout(), completion)
		return nil
	},
}

func init() {
	askCmd.Flags().BoolVar(&rawReply, "raw", false, "print the reply without house-style formatting")
	askCmd.Flags().BoolVar(&traceRules, "trace", false, "list each formatting rewrite on stderr")
}
