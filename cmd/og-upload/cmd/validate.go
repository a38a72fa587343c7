package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Modenjaya/og-upload/pkg/identity"
)

func validateKeys(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := resolve(cmd)
	if err != nil {
		return err
	}
	ids, err := identity.LoadIdentities(cfg.KeysFile)
	if err != nil {
		return err
	}
	logger.Info("key file is valid", "path", cfg.KeysFile, "wallets", len(ids))
	printWallets(cmd.OutOrStdout(), ids)
	fmt.Fprintln(cmd.OutOrStdout(), "OK")
	return nil
}
