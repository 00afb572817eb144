package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask the assistant about the network",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		prompt := strings.Join(args, " ")
		turn, err := client().Ask(cmd.Context(), prompt)
		if err != nil {
			logger.Error("assistant request failed", zap.Error(err))
			fmt.Println("Error:", err)
			os.Exit(1)
		}

		fmt.Println(turn.Content)
		if turn.Reply == nil {
			return
		}
		if len(turn.Reply.DataPoints) > 0 {
			fmt.Println()
			for k, v := range turn.Reply.DataPoints {
				fmt.Printf("  %s: %s\n", k, v)
			}
		}
		if len(turn.Reply.Suggestions) > 0 {
			fmt.Println("\nFollow-ups:")
			for _, s := range turn.Reply.Suggestions {
				fmt.Printf("  - %s\n", s)
			}
		}
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the assistant conversation",
	Run: func(cmd *cobra.Command, args []string) {
		turns, err := client().History(cmd.Context())
		if err != nil {
			logger.Error("history fetch failed", zap.Error(err))
			fmt.Println("Error:", err)
			os.Exit(1)
		}
		if len(turns) == 0 {
			fmt.Println("No conversation yet.")
			return
		}
		for _, t := range turns {
			fmt.Printf("[%s] %s\n", t.Role, t.Content)
		}
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Start a new assistant conversation",
	Run: func(cmd *cobra.Command, args []string) {
		if err := client().ClearHistory(cmd.Context()); err != nil {
			logger.Error("clear failed", zap.Error(err))
			fmt.Println("Error:", err)
			os.Exit(1)
		}
		fmt.Println("Conversation cleared.")
	},
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate an AI network health report",
	Run: func(cmd *cobra.Command, args []string) {
		report, err := client().Report(cmd.Context())
		if err != nil {
			logger.Error("report failed", zap.Error(err))
			fmt.Println("Error:", err)
			os.Exit(1)
		}
		fmt.Printf("Health score: %.0f/100\n\n", report.HealthScore)
		fmt.Println(report.Summary)
		if len(report.Recommendations) > 0 {
			fmt.Println("\nRecommendations:")
			for _, r := range report.Recommendations {
				fmt.Printf("  - %s\n", r)
			}
		}
	},
}
