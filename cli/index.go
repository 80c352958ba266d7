package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AmarBackInField/Legal-MultiAgent-Chatbot/index"
)

var indexStatus bool

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build the document index, or open it if it exists",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(false)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		if indexStatus {
			exists, err := index.Exists(index.Config{
				Directory:  cfg.Index.Directory,
				Collection: cfg.Index.Collection,
			})
			if err != nil {
				return err
			}
			if exists {
				fmt.Fprintf(out, "collection %s exists in %s\n", cfg.Index.Collection, cfg.Index.Directory)
			} else {
				fmt.Fprintf(out, "collection %s not built\n", cfg.Index.Collection)
			}
			return nil
		}

		a, err := newIndexApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		fmt.Fprintf(out, "collection %s ready with %d chunks\n", cfg.Index.Collection, a.index.Count())
		return nil
	},
}

func init() {
	indexCmd.Flags().BoolVar(&indexStatus, "status", false, "Only report whether the index exists")
	rootCmd.AddCommand(indexCmd)
}
