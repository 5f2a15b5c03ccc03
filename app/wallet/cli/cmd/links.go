package cmd

import (
	"fmt"

	"github.com/ardanlabs/powledger/foundation/ledger/signature"
	"github.com/spf13/cobra"
)

var linksCmd = &cobra.Command{
	Use:   "links",
	Short: "Print the links the wallet appears in",
	RunE:  linksRun,
}

func init() {
	rootCmd.AddCommand(linksCmd)
}

func linksRun(cmd *cobra.Command, args []string) error {
	key, err := signature.LoadECDSAKey(getPrivateKeyPath())
	if err != nil {
		return err
	}

	links, err := newNodeClient(url).linksByAccount(cmd.Context(), key.PublicKey())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "For Account:", key.PublicKey())
	for _, ld := range links {
		fmt.Fprintf(out, "Link[%d] %s %s\n", ld.Number, ld.Hash, ld.Link.Record)
	}

	return nil
}
