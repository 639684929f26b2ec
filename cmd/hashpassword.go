package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

var hashEmail string

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password <password>",
	Short: "Print a bcrypt hash for resetting a user's password by hand",
	Args:  cobra.ExactArgs(1),
	RunE:  runHashPassword,
}

func init() {
	hashPasswordCmd.Flags().StringVar(&hashEmail, "email", "", "also print the mongo update for this user")
	rootCmd.AddCommand(hashPasswordCmd)
}

func runHashPassword(cmd *cobra.Command, args []string) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(args[0]), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to generate hash: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Bcrypt Hash: %s\n", hashed)
	if hashEmail != "" {
		fmt.Fprintf(out, "\nTo update in MongoDB, run:\n")
		fmt.Fprintf(out, "db.users.updateOne(\n")
		fmt.Fprintf(out, "  {\"email\": %q},\n", strings.ToLower(hashEmail))
		fmt.Fprintf(out, "  {$set: {\"password\": %q}}\n", hashed)
		fmt.Fprintf(out, ")\n")
	}
	return nil
}
