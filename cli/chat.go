package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AmarBackInField/Legal-MultiAgent-Chatbot/core"
	"github.com/AmarBackInField/Legal-MultiAgent-Chatbot/session"
)

var chatSession string

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive conversation",
	Long: `Start an interactive conversation. Type a question and press enter.

Commands:
  /history   show the conversation so far
  /exit      quit`,
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

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, headerStyle.Render("Legal Document Assistant"))
		fmt.Fprintln(out, systemStyle.Render("Ask your legal questions and get simplified explanations."))

		scanner := bufio.NewScanner(cmd.InOrStdin())
		for {
			fmt.Fprint(out, humanStyle.Render("> "))
			if !scanner.Scan() {
				break
			}
			line := strings.TrimSpace(scanner.Text())

			switch line {
			case "":
				continue
			case "/exit", "/quit":
				return nil
			case "/history":
				printHistory(out, chatSession, a.orchestrator.History(chatSession))
				continue
			}

			answer, err := a.orchestrator.Answer(cmd.Context(), line, chatSession)
			if err != nil {
				fmt.Fprintln(out, errorStyle.Render("Error processing query: "+err.Error()))
				continue
			}
			fmt.Fprintln(out, renderMessage(core.NewAssistantMessage(answer)))
		}
		return scanner.Err()
	},
}

func init() {
	chatCmd.Flags().StringVarP(&chatSession, "session", "s", session.DefaultSessionID, "Session id")
	rootCmd.AddCommand(chatCmd)
}
