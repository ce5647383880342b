package cli

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/LeJamon/gostellar/internal/core/tx"
	"github.com/LeJamon/gostellar/internal/crypto"
)

var (
	txSignSeed string
	txSignFrom string
	txSignPass string
)

// txCmd represents the tx command group
var txCmd = &cobra.Command{
	Use:   "tx",
	Short: "Decode, hash and sign transaction envelopes",
}

var txDecodeCmd = &cobra.Command{
	Use:   "decode <envelope-base64>",
	Short: "Decode a base64 transaction envelope",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		plain, bump, err := tx.ParseBase64(args[0])
		if err != nil {
			return err
		}
		network, err := resolveNetwork()
		if err != nil {
			return err
		}

		if bump != nil {
			t := bump.Tx()
			hash, err := bump.Hash(network)
			if err != nil {
				return err
			}
			fmt.Println("Envelope:   fee bump")
			fmt.Printf("Fee source: %s\n", t.FeeSource.Address())
			fmt.Printf("Fee:        %d\n", t.Fee)
			fmt.Printf("Hash:       %s\n", hex.EncodeToString(hash[:]))
			fmt.Printf("Signatures: %d outer, %d inner\n",
				len(bump.Signatures()), len(t.InnerTx.Signatures))
			return nil
		}

		t := plain.Tx()
		hash, err := plain.Hash(network)
		if err != nil {
			return err
		}
		fmt.Println("Envelope:   transaction")
		fmt.Printf("Source:     %s\n", t.SourceAccount.Address())
		fmt.Printf("Sequence:   %d\n", t.SeqNum)
		fmt.Printf("Fee:        %d\n", t.Fee)
		fmt.Printf("Operations: %d\n", len(t.Operations))
		fmt.Printf("Hash:       %s\n", hex.EncodeToString(hash[:]))
		fmt.Printf("Signatures: %d\n", len(plain.Signatures()))
		return nil
	},
}

var txSignCmd = &cobra.Command{
	Use:   "sign <envelope-base64>",
	Short: "Sign a transaction envelope and print the signed base64",
	Long: `Sign a transaction envelope for the configured network. The signing key
comes either from --seed or from the keystore via --from and --passphrase.
Existing signatures are kept; the new one is appended.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kp, err := signingKey()
		if err != nil {
			return err
		}
		defer kp.Destroy()

		network, err := resolveNetwork()
		if err != nil {
			return err
		}

		plain, bump, err := tx.ParseBase64(args[0])
		if err != nil {
			return err
		}

		var out string
		if bump != nil {
			if err := bump.Sign(network, kp); err != nil {
				return err
			}
			out, err = bump.Base64()
		} else {
			if err := plain.Sign(network, kp); err != nil {
				return err
			}
			out, err = plain.Base64()
		}
		if err != nil {
			return err
		}
		fmt.Println(out)
		return nil
	},
}

func signingKey() (*crypto.KeyPair, error) {
	switch {
	case txSignSeed != "" && txSignFrom != "":
		return nil, errors.New("--seed and --from are mutually exclusive")
	case txSignSeed != "":
		return crypto.FromSecretSeed(txSignSeed)
	case txSignFrom != "":
		store, err := openKeystore()
		if err != nil {
			return nil, err
		}
		defer store.Close()
		return store.Get(txSignFrom, txSignPass)
	default:
		return nil, errors.New("a signing key is required: pass --seed or --from")
	}
}

func init() {
	rootCmd.AddCommand(txCmd)
	txCmd.AddCommand(txDecodeCmd)
	txCmd.AddCommand(txSignCmd)

	txSignCmd.Flags().StringVar(&txSignSeed, "seed", "", "secret seed to sign with")
	txSignCmd.Flags().StringVar(&txSignFrom, "from", "", "keystore address to sign with")
	txSignCmd.Flags().StringVar(&txSignPass, "passphrase", "", "passphrase unsealing the keystore entry")
}
