package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var batchesLimit int

var batchesCmd = &cobra.Command{
	Use:   "batches",
	Short: "List stored lead batches",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx, cfg)
		if err != nil {
			return eris.Wrap(err, "open store")
		}
		defer st.Close() //nolint:errcheck

		batches, err := st.ListBatches(ctx, batchesLimit)
		if err != nil {
			return eris.Wrap(err, "list batches")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(batches), "encode batches")
	},
}

func init() {
	batchesCmd.Flags().IntVar(&batchesLimit, "limit", 50, "maximum batches to list")
	rootCmd.AddCommand(batchesCmd)
}
