package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/NamanBalaji/modsync/internal/digest"
)

var hashAlgorithm string

var hashCmd = &cobra.Command{
	Use:   "hash <file>...",
	Short: "Print the digest of local files",
	Long: `Print the digest of each file in the format used by manifests, so
entries can be written or checked by hand.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runHash,
}

func init() {
	hashCmd.Flags().StringVar(&hashAlgorithm, "digest", "", "digest algorithm: sha256 or md5 (default from config)")
	rootCmd.AddCommand(hashCmd)
}

func runHash(cmd *cobra.Command, args []string) error {
	algorithm := hashAlgorithm
	if algorithm == "" {
		algorithm = cfg.Digest
	}

	v, err := digest.New(algorithm)
	if err != nil {
		return err
	}

	for _, path := range args {
		sum, err := v.DigestOf(path)
		if err != nil {
			return fmt.Errorf("failed to hash %s: %w", path, err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", sum, path)
	}

	return nil
}
