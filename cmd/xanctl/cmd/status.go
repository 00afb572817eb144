package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show headline network statistics",
	Run: func(cmd *cobra.Command, args []string) {
		stats, err := client().Stats(cmd.Context())
		if err != nil {
			logger.Error("stats fetch failed", zap.Error(err))
			fmt.Println("Error:", err)
			os.Exit(1)
		}
		fmt.Printf("Total nodes:    %d\n", stats.TotalNodes)
		fmt.Printf("Active nodes:   %d\n", stats.ActiveNodes)
		fmt.Printf("Offline nodes:  %d\n", stats.OfflineNodes)
		fmt.Printf("Total storage:  %.0f TB\n", stats.TotalStorageTB)
		fmt.Printf("Avg latency:    %.0f ms\n", stats.AvgLatencyMs)
	},
}

var insightsCmd = &cobra.Command{
	Use:   "insights",
	Short: "Show derived network insights",
	Run: func(cmd *cobra.Command, args []string) {
		cards, err := client().Insights(cmd.Context())
		if err != nil {
			logger.Error("insights fetch failed", zap.Error(err))
			fmt.Println("Error:", err)
			os.Exit(1)
		}
		if len(cards) == 0 {
			fmt.Println("No insights: snapshot is empty.")
			return
		}
		for _, card := range cards {
			fmt.Printf("[%s] %s: %s\n", card.Severity, card.Title, card.Description)
		}
	},
}
