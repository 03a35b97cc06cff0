package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/fbmac/flarumbot/internal/llm"
	"github.com/fbmac/flarumbot/internal/observability"
	"github.com/fbmac/flarumbot/internal/persona"
	"github.com/fbmac/flarumbot/internal/pipeline"
	"github.com/fbmac/flarumbot/internal/progress"
)

var Version = "dev"

var rootCmd = &cobra.Command{
	Use:          "flarumbot",
	Short:        "Make a forum persona reply to a discussion or open a new one",
	Long:         "Picks a persona, reads the forum, asks a language model to write in character and posts the result. By default a dice roll decides between replying to an open discussion and starting a new one.",
	SilenceUsage: true,
	RunE:         runInteract,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "flarumbot %s\n", Version)
	},
}

var listPersonasCmd = &cobra.Command{
	Use:   "list-personas",
	Short: "List the personas of a forum language",
	RunE:  runListPersonas,
}

var listModelsCmd = &cobra.Command{
	Use:   "list-models",
	Short: "List model aliases and the backend they use",
	Run:   runListModels,
}

var (
	flagUserID       int
	flagDiscussionID int
	flagCreateNew    bool
	flagLanguage     string
	flagModel        string
	flagCreateChance int
	flagInspire      string
	flagConfig       string
	flagForumURL     string
	flagVerbose      bool
	flagTUI          bool

	flagListLanguage string
)

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(listPersonasCmd)
	rootCmd.AddCommand(listModelsCmd)

	f := rootCmd.Flags()
	f.IntVarP(&flagUserID, "user-id", "u", 0, "Persona (forum user id) to post as; 0 picks one at random")
	f.IntVarP(&flagDiscussionID, "discussion-id", "d", 0, "Reply to this discussion instead of picking one")
	f.BoolVarP(&flagCreateNew, "create-new-topic", "c", false, "Always open a new discussion")
	f.StringVarP(&flagLanguage, "language", "l", "", "Forum language: en or pt (default en)")
	f.StringVarP(&flagModel, "model", "m", "", "Model alias or id (default "+llm.DefaultModel+", see list-models)")
	f.IntVar(&flagCreateChance, "create-chance", 0, "Percent chance of a new discussion in auto mode (default 20)")
	f.StringVar(&flagInspire, "inspire", "", "URL or text file to draw a new topic from (needs -c)")
	f.StringVar(&flagConfig, "config", "", "YAML config file (default $FLARUMBOT_CONFIG or ~/.config/flarumbot/config.yaml)")
	f.StringVar(&flagForumURL, "forum-url", "", "Forum API base URL (overrides the language default)")
	f.BoolVarP(&flagVerbose, "verbose", "v", false, "Enable detailed logging")
	f.BoolVarP(&flagTUI, "tui", "t", false, "Interactive setup wizard")

	listPersonasCmd.Flags().StringVarP(&flagListLanguage, "language", "l", "en", "Forum language: en or pt")
}

// Execute runs the root command until it finishes or the process is
// interrupted.
func Execute() error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	return rootCmd.ExecuteContext(ctx)
}

func runInteract(cmd *cobra.Command, args []string) error {
	if flagTUI {
		if err := runInteractiveSetup(); err != nil {
			return err
		}
	}

	opts := pipeline.Options{
		ConfigFile:   flagConfig,
		Language:     flagLanguage,
		ForumBaseURL: flagForumURL,
		Model:        flagModel,
		UserID:       flagUserID,
		DiscussionID: flagDiscussionID,
		CreateNew:    flagCreateNew,
		Inspire:      flagInspire,
	}
	if cmd.Flags().Changed("create-chance") {
		chance := flagCreateChance
		opts.CreateChance = &chance
	}
	// Catch flag conflicts before touching the network.
	if _, err := opts.Request(); err != nil {
		return err
	}

	ctx := observability.WithRunID(cmd.Context(), observability.NewRunID())
	logger := observability.InitLogger(flagVerbose)
	opts.Logger = logger

	shutdown, err := observability.InitTracer(ctx, "flarumbot", Version)
	if err != nil {
		logger.Warn("Failed to init tracer, continuing without tracing", "error", err)
	} else {
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				logger.Error("Tracer shutdown error", "error", err)
			}
		}()
	}

	// Wire up progress bar when not in verbose mode
	var r *progress.BarRenderer
	if !flagVerbose {
		r = progress.NewBarRenderer(os.Stderr)
		opts.OnProgress = r.Handle
	}

	out, err := pipeline.Run(ctx, opts)
	if r != nil {
		r.Finish()
	}
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintln(w, "Success!")
	if flagVerbose {
		fmt.Fprintf(w, "  %s in discussion #%d %q\n", out.Kind, out.DiscussionID, out.Title)
		fmt.Fprintln(w, renderPost(out.Content))
	}
	return nil
}

// renderPost formats a published post for the terminal, falling back to the
// raw markdown.
func renderPost(content string) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return content
	}
	out, err := r.Render(content)
	if err != nil {
		return content
	}
	return out
}

func runListPersonas(cmd *cobra.Command, args []string) error {
	lang := strings.ToLower(strings.TrimSpace(flagListLanguage))
	if !persona.IsValidLanguage(lang) {
		return fmt.Errorf("invalid language %q: must be one of %s", flagListLanguage, languageList())
	}
	locale := persona.LocaleFor(lang)

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "\n  %s (%s)\n", strings.ToUpper(locale.Label), locale.ForumBaseURL)
	fmt.Fprintf(w, "  %s\n", strings.Repeat("─", 50))
	fmt.Fprintf(w, "  %-6s %s\n", "ID", "NAME")
	for _, p := range locale.Personas {
		fmt.Fprintf(w, "  %-6d %s\n", p.ID, p.Name)
	}
	fmt.Fprintln(w)
	return nil
}

func runListModels(cmd *cobra.Command, args []string) {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "\n  %-16s %s\n", "ALIAS", "BACKEND")
	fmt.Fprintf(w, "  %s\n", strings.Repeat("─", 30))
	for _, alias := range llm.Aliases() {
		fmt.Fprintf(w, "  %-16s %s\n", alias, llm.ProviderFor(alias))
	}
	fmt.Fprintf(w, "\n  Any other name is sent to OpenAI as a model id (default %s).\n\n", llm.DefaultModel)
}

func languageList() string {
	var names []string
	for _, l := range persona.Languages() {
		names = append(names, string(l))
	}
	return strings.Join(names, ", ")
}
