package cmd

import (
	"fmt"
	"os"

	"github.com/ardanlabs/powledger/foundation/ledger/signature"
	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate new key pair",
	RunE:  generateRun,
}

func init() {
	rootCmd.AddCommand(generateCmd)
}

func generateRun(cmd *cobra.Command, args []string) error {
	key, err := signature.Secp256k1{}.GenerateKey()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(accountPath, 0755); err != nil {
		return err
	}

	path := getPrivateKeyPath()
	if err := key.(signature.ECDSAKey).Save(path); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Key written to %s\n%s\n", path, key.PublicKey())

	return nil
}
