package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var nodesCmd = &cobra.Command{
	Use:   "nodes",
	Short: "Show the current pNode snapshot",
	Run: func(cmd *cobra.Command, args []string) {
		refresh, _ := cmd.Flags().GetBool("refresh")

		c := client()
		ctx := cmd.Context()
		fetch := c.Nodes
		if refresh {
			fetch = c.Refresh
		}
		resp, err := fetch(ctx)
		if err != nil {
			logger.Error("nodes fetch failed", zap.Error(err))
			fmt.Println("Error:", err)
			os.Exit(1)
		}

		fmt.Printf("%d nodes (source: %s, refreshed %s)\n\n",
			len(resp.Nodes), resp.Source, resp.RefreshedAt.Format("15:04:05"))

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "IDENTITY\tSTATUS\tLATENCY\tLOCATION\tVERSION\tDISK(TB)")
		for _, n := range resp.Nodes {
			location, version, disk := "-", "-", "-"
			if n.Location != nil {
				location = *n.Location
			}
			if n.Version != nil {
				version = *n.Version
			}
			if n.DiskSpaceTB != nil {
				disk = fmt.Sprintf("%.0f", *n.DiskSpaceTB)
			}
			fmt.Fprintf(w, "%s\t%s\t%dms\t%s\t%s\t%s\n",
				n.IdentityPubkey, n.Status, n.LatencyMs, location, version, disk)
		}
		w.Flush()
	},
}

func init() {
	nodesCmd.Flags().Bool("refresh", false, "force a fresh poll before listing")
}
