package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	scrapeMax  int
	scrapeSave bool
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape \"<prompt>\"",
	Short: "Discover leads for a natural-language prompt",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !cfg.Search.Configured() {
			return eris.New("search is not configured: set search.key and search.engine_id")
		}

		ctx := cmd.Context()
		p := buildPipeline(cfg)

		result := p.ScrapeLeads(ctx, args[0], scrapeMax)

		if scrapeSave {
			st, err := openStore(ctx, cfg)
			if err != nil {
				return eris.Wrap(err, "open store")
			}
			defer st.Close() //nolint:errcheck

			batch, err := st.SaveBatch(ctx, args[0], result)
			if err != nil {
				return eris.Wrap(err, "save batch")
			}
			zap.L().Info("batch saved",
				zap.String("batch_id", batch.ID),
				zap.Int("leads", batch.LeadCount),
			)
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(result), "encode result")
	},
}

func init() {
	scrapeCmd.Flags().IntVar(&scrapeMax, "max", 10, "maximum number of leads")
	scrapeCmd.Flags().BoolVar(&scrapeSave, "save", false, "persist the batch to the store")
	rootCmd.AddCommand(scrapeCmd)
}
