package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AmarBackInField/Legal-MultiAgent-Chatbot/session"
)

var askSession string

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Answer a single question",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(true)
		if err != nil {
			return err
		}

		a, err := newApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		answer, err := a.orchestrator.Answer(cmd.Context(), strings.Join(args, " "), askSession)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), answer)
		return nil
	},
}

func init() {
	askCmd.Flags().StringVarP(&askSession, "session", "s", session.DefaultSessionID, "Session id")
	rootCmd.AddCommand(askCmd)
}
