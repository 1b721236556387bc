package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"llamad/pkg/types"
)

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// buildRootCmd constructs the Cobra command tree wired to a lazily built
// client so flag parsing happens before the first request.
func buildRootCmd() *cobra.Command {
	var (
		server  string
		timeout time.Duration
		client  *Client
	)
	root := &cobra.Command{
		Use:           "llamactl",
		Short:         "Control a running llamad daemon",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&server, "server", envOr("LLAMACTL_SERVER", "http://127.0.0.1:8080"), "Base URL of the daemon")
	root.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Minute, "Request timeout (setup can run long)")
	root.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		client = NewClient(server, timeout)
	}

	var setupVerbose bool
	setupCmd := &cobra.Command{
		Use:     "setup <name>",
		Short:   "Download and load a model, making it active",
		Example: "  llamactl setup gpt2-small\n  llamactl setup llama-7b-chat --verbose",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := client.Setup(args[0], setupVerbose)
			if err != nil {
				return err
			}
			for _, p := range resp.Progress {
				fmt.Printf("%6.2f%%  %s\n", p.Percent, p.Phase)
			}
			fmt.Printf("%s is %s\n", resp.Model, resp.State)
			return nil
		},
	}
	setupCmd.Flags().BoolVar(&setupVerbose, "verbose", false, "Print the setup progress trace")
	root.AddCommand(setupCmd)

	var (
		maxTokens   int
		temperature float64
		topP        float64
		seed        int64
		stop        []string
	)
	generateCmd := &cobra.Command{
		Use:     "generate <prompt>...",
		Short:   "Generate text with the active model",
		Example: "  llamactl generate \"Once upon a time\" --max-tokens 64",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := types.GenerateRequest{
				Prompt:      strings.Join(args, " "),
				MaxTokens:   maxTokens,
				Temperature: temperature,
				TopP:        topP,
				Seed:        seed,
				Stop:        stop,
			}
			resp, err := client.Generate(req)
			if err != nil {
				return err
			}
			fmt.Println(resp.Text)
			fmt.Fprintf(os.Stderr, "[%s, %d tokens, %d ms]\n", resp.ModelName, resp.TokensUsed, resp.ProcessingMs)
			return nil
		},
	}
	generateCmd.Flags().IntVar(&maxTokens, "max-tokens", 0, "Maximum tokens to generate (0 = server default)")
	generateCmd.Flags().Float64Var(&temperature, "temperature", 0, "Sampling temperature (0 = server default)")
	generateCmd.Flags().Float64Var(&topP, "top-p", 0, "Nucleus sampling cutoff (0 = server default)")
	generateCmd.Flags().Int64Var(&seed, "seed", 0, "Sampling seed (0 = random)")
	generateCmd.Flags().StringSliceVar(&stop, "stop", nil, "Stop sequences")
	root.AddCommand(generateCmd)

	root.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show the active model",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := client.Status()
			if err != nil {
				return err
			}
			if st.ActiveModel == "" {
				fmt.Println("no model loaded")
				return nil
			}
			fmt.Printf("%s  state=%s  ready=%t  uptime=%ds\n", st.ActiveModel, st.State, st.Ready, st.UptimeSeconds)
			return nil
		},
	})

	root.AddCommand(&cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List known model records",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := client.Models()
			if err != nil {
				return err
			}
			if len(resp.Models) == 0 {
				fmt.Println("no model records")
				return nil
			}
			for _, m := range resp.Models {
				line := fmt.Sprintf("%-24s %s", m.Name, m.State)
				if m.Error != "" {
					line += "  (" + m.Error + ")"
				}
				fmt.Println(line)
			}
			return nil
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "rm <name>",
		Short: "Remove a model record and its downloaded artifacts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.Remove(args[0]); err != nil {
				return err
			}
			fmt.Printf("%s removed\n", args[0])
			return nil
		},
	})

	var (
		regTag      string
		regVerified bool
	)
	registryCmd := &cobra.Command{
		Use:   "registry",
		Short: "Browse the model catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := client.Registry(regTag, regVerified)
			if err != nil {
				return err
			}
			printEntries(resp.Entries)
			return nil
		},
	}
	registryCmd.Flags().StringVar(&regTag, "tag", "", "Only entries with this tag")
	registryCmd.Flags().BoolVar(&regVerified, "verified", false, "Only verified entries")
	root.AddCommand(registryCmd)

	root.AddCommand(&cobra.Command{
		Use:   "search <query>",
		Short: "Search the model catalog",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := client.Search(strings.Join(args, " "))
			if err != nil {
				return err
			}
			printEntries(resp.Entries)
			return nil
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "health",
		Short: "Show the daemon health report",
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := client.Health()
			if err != nil {
				return err
			}
			fmt.Printf("status=%s heap=%.0f%% ready_models=%d\n", report.Status, report.HeapRatio*100, report.ReadyModels)
			if report.LastError != "" {
				fmt.Printf("last error: %s\n", report.LastError)
			}
			if report.Status == "unhealthy" {
				return fmt.Errorf("daemon is unhealthy")
			}
			return nil
		},
	})

	completionCmd := &cobra.Command{Use: "completion", Short: "Generate the autocompletion script for the specified shell"}
	completionCmd.AddCommand(&cobra.Command{Use: "bash", Short: "Bash completion", RunE: func(cmd *cobra.Command, args []string) error { return root.GenBashCompletion(os.Stdout) }})
	completionCmd.AddCommand(&cobra.Command{Use: "zsh", Short: "Zsh completion", RunE: func(cmd *cobra.Command, args []string) error { return root.GenZshCompletion(os.Stdout) }})
	completionCmd.AddCommand(&cobra.Command{Use: "fish", Short: "Fish completion", RunE: func(cmd *cobra.Command, args []string) error { return root.GenFishCompletion(os.Stdout, true) }})
	root.AddCommand(completionCmd)

	return root
}

func printEntries(entries []types.RegistryEntry) {
	if len(entries) == 0 {
		fmt.Println("no matching entries")
		return
	}
	for _, e := range entries {
		mark := " "
		if e.Verified {
			mark = "*"
		}
		fmt.Printf("%s %-24s %-24s %s\n", mark, e.Descriptor.Name, e.Descriptor.Kind, strings.Join(e.Tags, ","))
	}
}

// MainWithArgs runs the CLI with explicit args and returns an exit code.
func MainWithArgs(args []string) int {
	root := buildRootCmd()
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return 1
	}
	return 0
}

// Main returns an exit code (0 for success, non-zero on error) for use by cmd/llamactl.
func Main() int { return MainWithArgs(os.Args[1:]) }
