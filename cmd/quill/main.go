package main

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"quill/internal/archive"
	"quill/internal/config"
	"quill/internal/db"
	"quill/internal/dispatch"
	"quill/internal/domain"
	"quill/internal/embedding"
	"quill/internal/llm"
	"quill/internal/persona"
	"quill/internal/secrets"
	"quill/internal/tokenizer"
	"quill/internal/tooling"
	"quill/internal/vectorstore"
)

// version is injectable via ldflags.
var version = "dev"

// newEmbedder builds the embedder for kb commands and the kb_search tool;
// tests may replace it.
var newEmbedder = func(apiKey, model string) domain.Embedder {
	return embedding.NewOpenAIEmbedder(apiKey, model)
}

// buildMeta holds version and build metadata.
type buildMeta struct {
	Version string
	GoOS    string
	GoArch  string
}

func newBuildMeta(v, goos, goarch string) buildMeta {
	if goos == "" {
		goos = runtime.GOOS
	}
	if goarch == "" {
		goarch = runtime.GOARCH
	}
	return buildMeta{Version: v, GoOS: goos, GoArch: goarch}
}

func (m buildMeta) String() string {
	return fmt.Sprintf("quill %s %s/%s", m.Version, m.GoOS, m.GoArch)
}

func newRootCommand(bm buildMeta) *cobra.Command {
	root := &cobra.Command{
		Use:   "quill",
		Short: "Single-turn assistant with one tool call per request",
		Long: "quill answers one question per run. The model may select at most one tool\n" +
			"(web search, page reading, case lookup, knowledge-base search, archive)\n" +
			"and then summarizes the result.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if showVersion, _ := cmd.Flags().GetBool("version"); showVersion {
				fmt.Fprintln(cmd.OutOrStdout(), bm.String())
				return nil
			}
			return cmd.Help()
		},
	}
	root.Flags().BoolP("version", "V", false, "print version and build metadata")
	root.PersistentFlags().String("config", "quill.json", "path to the config file")

	root.AddCommand(newInitCommand())
	root.AddCommand(newConfigCommand())
	root.AddCommand(newAskCommand())
	root.AddCommand(newToolsCommand())
	root.AddCommand(newKBCommand())
	root.AddCommand(newArchiveCommand())
	return root
}

// loadConfig reads the configured quill.json, falling back to built-in
// defaults when the file does not exist so `quill ask` works out of the box
// with the local provider.
func loadConfig(cmd *cobra.Command) (*domain.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return config.Default(), nil
		}
		return nil, err
	}
	return cfg, nil
}

// newLogger builds a slog logger per the config's infra section.
func newLogger(cfg *domain.Config, w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(cfg.Infra.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Infra.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// openStores connects the database and initializes both stores. Returns the
// connection so the caller can close it.
func openStores(cfg *domain.Config) (*sql.DB, *vectorstore.Store, *archive.Store, error) {
	conn, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, nil, err
	}
	vs, err := vectorstore.New(conn)
	if err != nil {
		conn.Close()
		return nil, nil, nil, err
	}
	as, err := archive.New(conn)
	if err != nil {
		conn.Close()
		return nil, nil, nil, err
	}
	return conn, vs, as, nil
}

// buildRegistry registers every tool whose configuration and credentials are
// available; the rest are skipped with a debug log. read_page needs nothing
// beyond network access and is always registered.
func buildRegistry(cfg *domain.Config, logger *slog.Logger, vs *vectorstore.Store, as *archive.Store) (*tooling.Registry, error) {
	reg := tooling.NewRegistry()
	fetcher := tooling.NewDefaultFetcher()

	if err := reg.Register(tooling.NewPageTool(fetcher)); err != nil {
		return nil, err
	}

	if cfg.Search.EngineID != "" {
		if key, err := secrets.FromEnv("search_api_key"); err == nil {
			tool := tooling.NewSearchTool(fetcher, cfg.Search.Endpoint, cfg.Search.EngineID, key, cfg.Search.MaxResults)
			if err := reg.Register(tool); err != nil {
				return nil, err
			}
		} else {
			logger.Debug("web_search disabled", "reason", err)
		}
	}

	if cfg.Cases.BaseURL != "" {
		if token, err := secrets.FromEnv("cases_api_token"); err == nil {
			if err := reg.Register(tooling.NewCaseTool(cfg.Cases.BaseURL, token)); err != nil {
				return nil, err
			}
		} else {
			logger.Debug("case_lookup disabled", "reason", err)
		}
	}

	if vs != nil {
		if key, err := secrets.FromEnv("openai_api_key"); err == nil {
			embedder := newEmbedder(key, cfg.EmbedModel)
			if err := reg.Register(tooling.NewKBTool(embedder, vs)); err != nil {
				return nil, err
			}
		} else {
			logger.Debug("kb_search disabled", "reason", err)
		}
	}

	if as != nil {
		if err := reg.Register(tooling.NewArchiveTool(as)); err != nil {
			return nil, err
		}
	}

	return reg, nil
}

func newInitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a default quill.json",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("config")
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s already exists", path)
			}
			if err := config.WriteDefault(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}
}

// configField reads one config value by key. Keys mirror the quill.json
// field names.
func configField(cfg *domain.Config, key string) (string, error) {
	switch key {
	case "provider":
		return cfg.Provider, nil
	case "model":
		return cfg.Model, nil
	case "embedModel":
		return cfg.EmbedModel, nil
	case "databaseUrl":
		return cfg.DatabaseURL, nil
	case "personaPath":
		return cfg.PersonaPath, nil
	case "search.endpoint":
		return cfg.Search.Endpoint, nil
	case "search.engineId":
		return cfg.Search.EngineID, nil
	case "cases.baseUrl":
		return cfg.Cases.BaseURL, nil
	default:
		return "", fmt.Errorf("unknown config key %q", key)
	}
}

// setConfigField writes one config value by key.
func setConfigField(cfg *domain.Config, key, value string) error {
	switch key {
	case "provider":
		cfg.Provider = value
	case "model":
		cfg.Model = value
	case "embedModel":
		cfg.EmbedModel = value
	case "databaseUrl":
		cfg.DatabaseURL = value
	case "personaPath":
		cfg.PersonaPath = value
	case "search.endpoint":
		cfg.Search.Endpoint = value
	case "search.engineId":
		cfg.Search.EngineID = value
	case "cases.baseUrl":
		cfg.Cases.BaseURL = value
	default:
		return fmt.Errorf("unknown config key %q", key)
	}
	return nil
}

func newConfigCommand() *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Get or set config values (provider, model, databaseUrl, ...)",
	}

	get := &cobra.Command{
		Use:   "get <key>",
		Short: "Print a config value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			val, err := configField(cfg, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), val)
			return nil
		},
	}

	set := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a config value and save the config file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("config")
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := setConfigField(cfg, args[0], args[1]); err != nil {
				return err
			}
			if err := config.Save(path, cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", args[0], args[1])
			return nil
		},
	}

	cfgCmd.AddCommand(get, set)
	return cfgCmd
}

func newAskCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ask <utterance>",
		Short: "Answer one question, calling at most one tool",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger := newLogger(cfg, cmd.ErrOrStderr())

			provider, err := llm.NewProvider(cfg, secrets.FromEnv)
			if err != nil {
				return err
			}

			// Storage-backed tools are optional: a missing database only
			// narrows the registry.
			var (
				vs *vectorstore.Store
				as *archive.Store
			)
			conn, vsOpen, asOpen, err := openStores(cfg)
			if err != nil {
				logger.Debug("storage tools disabled", "reason", err)
			} else {
				defer conn.Close()
				vs, as = vsOpen, asOpen
			}

			reg, err := buildRegistry(cfg, logger, vs, as)
			if err != nil {
				return err
			}

			p, err := persona.Load(cfg.PersonaPath)
			if err != nil {
				return err
			}

			opts := []dispatch.Option{dispatch.WithLogger(logger)}
			if tok, err := tokenizer.NewTikToken("cl100k_base"); err == nil {
				opts = append(opts, dispatch.WithTokenizer(tok, cfg.TokenBudget))
			} else {
				logger.Debug("token reporting disabled", "reason", err)
			}

			loop := dispatch.New(provider, dispatch.NewDispatcher(reg), p.Prompt, opts...)
			answer, err := loop.Run(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), answer)
			return nil
		},
	}
}

func newToolsCommand() *cobra.Command {
	var showSchemas bool
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List the tools available to the model",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger := newLogger(cfg, cmd.ErrOrStderr())

			var (
				vs *vectorstore.Store
				as *archive.Store
			)
			conn, vsOpen, asOpen, err := openStores(cfg)
			if err != nil {
				logger.Debug("storage tools disabled", "reason", err)
			} else {
				defer conn.Close()
				vs, as = vsOpen, asOpen
			}

			reg, err := buildRegistry(cfg, logger, vs, as)
			if err != nil {
				return err
			}
			for _, tool := range reg.List() {
				fmt.Fprintf(cmd.OutOrStdout(), "%s — %s\n", tool.Name(), tool.Description())
				if showSchemas {
					fmt.Fprintln(cmd.OutOrStdout(), tool.Definition())
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d tools registered\n", reg.Len())
			return nil
		},
	}
	cmd.Flags().BoolVar(&showSchemas, "schemas", false, "also print each tool's input schema")
	return cmd
}

func newKBCommand() *cobra.Command {
	kb := &cobra.Command{
		Use:   "kb",
		Short: "Seed and query the knowledge base",
	}

	add := &cobra.Command{
		Use:   "add <file|->",
		Short: "Embed a file (or stdin) paragraph by paragraph and store it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			key, err := secrets.FromEnv("openai_api_key")
			if err != nil {
				return err
			}
			text, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}

			conn, vs, _, err := openStores(cfg)
			if err != nil {
				return err
			}
			defer conn.Close()

			embedder := newEmbedder(key, cfg.EmbedModel)
			added := 0
			for _, chunk := range splitParagraphs(text) {
				vec, err := embedder.Embed(cmd.Context(), chunk)
				if err != nil {
					return fmt.Errorf("embed chunk %d: %w", added+1, err)
				}
				if _, err := vs.Add(cmd.Context(), chunk, vec); err != nil {
					return err
				}
				added++
			}
			total, err := vs.Count(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %d documents (%d total)\n", added, total)
			return nil
		},
	}

	search := &cobra.Command{
		Use:   "search <query>",
		Short: "Find the most similar knowledge-base documents",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			key, err := secrets.FromEnv("openai_api_key")
			if err != nil {
				return err
			}
			topK, _ := cmd.Flags().GetInt("top")

			conn, vs, _, err := openStores(cfg)
			if err != nil {
				return err
			}
			defer conn.Close()

			embedder := newEmbedder(key, cfg.EmbedModel)
			vec, err := embedder.Embed(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			docs, err := vs.Search(cmd.Context(), vec, topK)
			if err != nil {
				return err
			}
			for _, d := range docs {
				fmt.Fprintf(cmd.OutOrStdout(), "%.4f  %s\n", d.Score, d.Content)
			}
			return nil
		},
	}
	search.Flags().Int("top", 3, "number of documents to return")

	kb.AddCommand(add, search)
	return kb
}

func newArchiveCommand() *cobra.Command {
	arc := &cobra.Command{
		Use:   "archive",
		Short: "Store and retrieve named documents",
	}

	put := &cobra.Command{
		Use:   "put <name> <file|->",
		Short: "Store a file (or stdin) under a name",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			body, err := readInput(cmd, args[1])
			if err != nil {
				return err
			}
			contentType, _ := cmd.Flags().GetString("type")

			conn, _, as, err := openStores(cfg)
			if err != nil {
				return err
			}
			defer conn.Close()

			if err := as.Put(cmd.Context(), args[0], []byte(body), contentType); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "stored %s (%d bytes)\n", args[0], len(body))
			return nil
		},
	}
	put.Flags().String("type", "text/plain", "content type to record")

	get := &cobra.Command{
		Use:   "get <name>",
		Short: "Print a stored document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			conn, _, as, err := openStores(cfg)
			if err != nil {
				return err
			}
			defer conn.Close()

			body, _, err := as.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(body)
			return err
		},
	}

	ls := &cobra.Command{
		Use:   "ls",
		Short: "List stored documents",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			conn, _, as, err := openStores(cfg)
			if err != nil {
				return err
			}
			defer conn.Close()

			objects, err := as.List(cmd.Context())
			if err != nil {
				return err
			}
			for _, o := range objects {
				fmt.Fprintf(cmd.OutOrStdout(), "%-30s %8d  %-16s %s\n",
					o.Name, o.Size, o.ContentType, o.StoredAt.Format("2006-01-02 15:04"))
			}
			return nil
		},
	}

	arc.AddCommand(put, get, ls)
	return arc
}

// readInput reads a file argument, with "-" meaning stdin.
func readInput(cmd *cobra.Command, arg string) (string, error) {
	if arg == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(arg)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// runApp runs the root command with the given args and returns the exit code.
func runApp(args []string) int {
	root := newRootCommand(newBuildMeta(version, "", ""))
	root.SetArgs(args[1:])
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

// splitParagraphs breaks text into blank-line-separated chunks, dropping
// empty ones.
func splitParagraphs(text string) []string {
	var out []string
	for _, part := range strings.Split(text, "\n\n") {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
