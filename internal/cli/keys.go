package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var keysPassphrase string

// keysCmd represents the keys command group
var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage the local keystore",
}

var keysListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored account addresses",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openKeystore()
		if err != nil {
			return err
		}
		defer store.Close()

		addrs, err := store.List()
		if err != nil {
			return err
		}
		for _, addr := range addrs {
			fmt.Println(addr)
		}
		return nil
	},
}

var keysShowCmd = &cobra.Command{
	Use:   "show <address>",
	Short: "Show the secret seed for a stored key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openKeystore()
		if err != nil {
			return err
		}
		defer store.Close()

		kp, err := store.Get(args[0], keysPassphrase)
		if err != nil {
			return err
		}
		defer kp.Destroy()

		seed, err := kp.SecretSeed()
		if err != nil {
			return err
		}
		fmt.Printf("Address: %s\n", kp.Address())
		fmt.Printf("Seed:    %s\n", seed)
		return nil
	},
}

var keysDeleteCmd = &cobra.Command{
	Use:   "delete <address>",
	Short: "Remove a key from the keystore",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openKeystore()
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.Delete(args[0]); err != nil {
			return err
		}
		fmt.Printf("Deleted %s\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(keysCmd)
	keysCmd.AddCommand(keysListCmd)
	keysCmd.AddCommand(keysShowCmd)
	keysCmd.AddCommand(keysDeleteCmd)

	keysCmd.PersistentFlags().StringVar(&keysPassphrase, "passphrase", "", "passphrase unsealing stored keys")
}
