package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/LeJamon/gostellar/internal/crypto"
)

var (
	keygenVanitySuffix string
	keygenWorkers      int
	keygenTimeout      time.Duration
	keygenSave         bool
	keygenPassphrase   string
)

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate a new Ed25519 keypair",
	Long: `Generate a new random Ed25519 keypair and print its account address and
secret seed. With --vanity-suffix, keypairs are generated until one is found
whose address ends with the given characters.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		kp, err := generateKeyPair(cmd.Context())
		if err != nil {
			return err
		}

		seed, err := kp.SecretSeed()
		if err != nil {
			return err
		}
		fmt.Printf("Address: %s\n", kp.Address())
		fmt.Printf("Seed:    %s\n", seed)

		if keygenSave {
			store, err := openKeystore()
			if err != nil {
				return err
			}
			defer store.Close()
			if err := store.Put(kp, keygenPassphrase); err != nil {
				return err
			}
			fmt.Println("Saved to keystore.")
		}
		return nil
	},
}

func generateKeyPair(ctx context.Context) (*crypto.KeyPair, error) {
	if keygenVanitySuffix == "" {
		return crypto.Random()
	}
	if keygenTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, keygenTimeout)
		defer cancel()
	}
	return crypto.FindVanity(ctx, keygenVanitySuffix, keygenWorkers)
}

func init() {
	rootCmd.AddCommand(keygenCmd)

	keygenCmd.Flags().StringVar(&keygenVanitySuffix, "vanity-suffix", "", "search for an address ending with this suffix")
	keygenCmd.Flags().IntVar(&keygenWorkers, "workers", 0, "parallel vanity search workers (0 = one per CPU)")
	keygenCmd.Flags().DurationVar(&keygenTimeout, "timeout", 0, "give up the vanity search after this duration")
	keygenCmd.Flags().BoolVar(&keygenSave, "save", false, "store the new key in the keystore")
	keygenCmd.Flags().StringVar(&keygenPassphrase, "passphrase", "", "passphrase sealing the stored key")
}
