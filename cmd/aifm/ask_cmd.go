package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/codefionn/aifm/internal/agent"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	askPath string
	askJSON bool
)

// askCmd runs one chat turn against the working directory.
var askCmd = &cobra.Command{
	Use:   "ask <message>",
	Short: "Send one message to the assistant and apply its action",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		resp, err := a.agent.Process(cmd.Context(), strings.Join(args, " "), agent.Context{
			CurrentPath:      askPath,
			WorkingDirectory: a.files.WorkingDirectory(),
		})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if askJSON || !term.IsTerminal(int(os.Stdout.Fd())) {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(resp)
		}

		printResponse(out, resp, terminalWidth())
		if resp.Type == "error" {
			return fmt.Errorf("assistant reported an error")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().StringVar(&askPath, "path", "", "Directory, relative to the working directory, the message refers to")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "Print the full response as JSON")
}
