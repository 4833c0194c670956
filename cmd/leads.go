package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var leadsCmd = &cobra.Command{
	Use:   "leads <batch-id>",
	Short: "List the leads stored for a batch",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx, cfg)
		if err != nil {
			return eris.Wrap(err, "open store")
		}
		defer st.Close() //nolint:errcheck

		leads, err := st.GetLeads(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "get leads")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(leads), "encode leads")
	},
}

func init() {
	rootCmd.AddCommand(leadsCmd)
}
