package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/ardanlabs/powledger/foundation/ledger/signature"
	"github.com/ardanlabs/powledger/foundation/ledger/wallet"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var (
	to     string
	amount string
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Sign a record and submit it to the node",
	RunE:  sendRun,
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().StringVarP(&to, "to", "t", "", "Public key of the payee.")
	sendCmd.Flags().StringVarP(&amount, "amount", "v", "0", "Amount to send.")
	sendCmd.MarkFlagRequired("to")
}

func sendRun(cmd *cobra.Command, args []string) error {
	key, err := signature.LoadECDSAKey(getPrivateKeyPath())
	if err != nil {
		return err
	}

	value, err := decimal.NewFromString(amount)
	if err != nil {
		return fmt.Errorf("parsing amount %q: %w", amount, err)
	}

	link, err := wallet.FromKey(key).SendMoney(cmd.Context(), newNodeClient(url), value, to)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(link, "", "  ")
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Link %s\n%s\n", link.Hash(), data)

	return nil
}
