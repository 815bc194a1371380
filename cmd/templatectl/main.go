package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/yungbote/opsdesk-backend/internal/app"
	"github.com/yungbote/opsdesk-backend/internal/modules/templating"
)

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:          "templatectl",
		Short:        "Expand, validate and seed opsdesk module templates",
		SilenceUsage: true,
	}
	root.SetOut(out)
	root.AddCommand(
		newExpandCmd(),
		newPromptCmd(),
		newNotifyCmd(),
		newValidateCmd(),
		newSeedCmd(),
	)
	return root
}

// withApp runs fn against a bootstrapped app. Commands that only expand
// text never touch the database.
func withApp(fn func(a *app.App) error) error {
	log, err := app.NewLogger()
	if err != nil {
		return err
	}
	a, err := app.Bootstrap(log)
	if err != nil {
		log.Sync()
		return err
	}
	defer a.Close()
	return fn(a)
}

func parseData(raw string) (templating.Context, error) {
	data := templating.Context{}
	if raw == "" {
		return data, nil
	}
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return nil, fmt.Errorf("--data must be a JSON object: %w", err)
	}
	return data, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
