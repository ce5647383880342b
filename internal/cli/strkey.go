package cli

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/LeJamon/gostellar/internal/codec/strkey"
)

var strkeyKind string

// strkeyCmd represents the strkey command group
var strkeyCmd = &cobra.Command{
	Use:   "strkey",
	Short: "Encode and decode StrKey addresses",
}

var strkeyKinds = map[string]strkey.VersionByte{
	"account":           strkey.VersionByteAccountID,
	"seed":              strkey.VersionByteSeed,
	"pre-auth-tx":       strkey.VersionBytePreAuthTx,
	"hash-x":            strkey.VersionByteHashX,
	"muxed":             strkey.VersionByteMuxedAccount,
	"signed-payload":    strkey.VersionByteSignedPayload,
	"contract":          strkey.VersionByteContract,
	"liquidity-pool":    strkey.VersionByteLiquidityPool,
	"claimable-balance": strkey.VersionByteClaimableBalance,
}

func strkeyKindName(version strkey.VersionByte) string {
	for name, v := range strkeyKinds {
		if v == version {
			return name
		}
	}
	return fmt.Sprintf("unknown(%d)", version)
}

var strkeyDecodeCmd = &cobra.Command{
	Use:   "decode <strkey>",
	Short: "Decode a StrKey string to its kind and raw payload",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		version, payload, err := strkey.DecodeAny(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Kind:    %s\n", strkeyKindName(version))
		fmt.Printf("Payload: %s\n", hex.EncodeToString(payload))
		return nil
	},
}

var strkeyEncodeCmd = &cobra.Command{
	Use:   "encode <payload-hex>",
	Short: "Encode a raw hex payload as a StrKey string",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		version, ok := strkeyKinds[strkeyKind]
		if !ok {
			return fmt.Errorf("unknown kind %q", strkeyKind)
		}
		payload, err := hex.DecodeString(args[0])
		if err != nil {
			return fmt.Errorf("payload is not valid hex: %w", err)
		}
		text, err := strkey.Encode(version, payload)
		if err != nil {
			return err
		}
		fmt.Println(text)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(strkeyCmd)
	strkeyCmd.AddCommand(strkeyDecodeCmd)
	strkeyCmd.AddCommand(strkeyEncodeCmd)

	strkeyEncodeCmd.Flags().StringVar(&strkeyKind, "kind", "account", "entity kind (account, seed, muxed, contract, ...)")
}
