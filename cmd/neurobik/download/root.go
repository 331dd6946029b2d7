package download

import (
	"fmt"
	"io"
	"strings"

	"neurobik/pkg/config"
	"neurobik/pkg/download"
	execnative "neurobik/pkg/driver/exec/native"
	fetchurldriver "neurobik/pkg/driver/fetchurl"
	"neurobik/pkg/driver/fetchurl/fetchurl"
	"neurobik/pkg/driver/httpclient"
	httpnative "neurobik/pkg/driver/httpclient/native"
	"neurobik/pkg/fetch"
	"neurobik/pkg/history"
	"neurobik/pkg/logging"
	"neurobik/pkg/selector"

	"github.com/spf13/cobra"
)

type options struct {
	configPath string
	all        bool
	names      []string
	mirrors    []string
	modelTool  string
	historyDB  string
	noHistory  bool
}

func GetCommand() *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:   "download",
		Short: "Download models and OCI images described by a config file",
		Example: `  neurobik download --config neurobik.yaml
  neurobik download -c neurobik.yaml --all
  neurobik download -c neurobik.yaml --select Qwen3-0.6B-Q6_K.gguf --select localhost/comfyui:latest`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "Path to YAML, TOML or JSON config file")
	cmd.Flags().BoolVar(&opts.all, "all", false, "Download everything offered without prompting")
	cmd.Flags().StringSliceVar(&opts.names, "select", nil, "Download the named item without prompting (repeatable, order is processing order)")
	cmd.Flags().StringSliceVar(&opts.mirrors, "mirror", nil, "fetchurl mirror server for checksummed downloads (repeatable, adds to FETCHURL_SERVERS)")
	cmd.Flags().StringVar(&opts.modelTool, "model-tool", fetch.DefaultModelTool, "Model repository CLI used for delegated pulls")
	cmd.Flags().StringVar(&opts.historyDB, "history-db", "", "Download journal location (defaults to $XDG_STATE_HOME/neurobik/history.db)")
	cmd.Flags().BoolVar(&opts.noHistory, "no-history", false, "Do not record fetches in the download journal")
	_ = cmd.MarkFlagRequired("config")
	cmd.MarkFlagsMutuallyExclusive("all", "select")
	return cmd
}

func run(cmd *cobra.Command, opts options) error {
	ctx := cmd.Context()
	logger := logging.GetLogger(ctx)
	out := cmd.OutOrStdout()

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	logger.Debug("config loaded", "path", opts.configPath, "models", len(cfg.Models), "images", len(cfg.OCI))

	runner := execnative.New()
	runner.Stdout = out
	runner.Stderr = cmd.ErrOrStderr()
	client := httpclient.WithLogging(httpnative.New())

	var mirror fetchurldriver.Driver
	if m := fetchurl.New(client.Client(), append(fetchurl.ServersFromEnv(), opts.mirrors...)); len(m.Servers()) > 0 {
		logger.Debug("fetchurl mirrors enabled", "servers", strings.Join(m.Servers(), ","))
		mirror = m
	}

	var sel selector.Selector = selector.Fuzzy{}
	if opts.all || len(opts.names) > 0 {
		sel = selector.Static{All: opts.all, Names: opts.names}
	}

	o := &download.Orchestrator{
		Config:   cfg,
		Selector: bannerSelector{inner: sel, out: out},
		Models: &fetch.ModelFetcher{
			HTTP:   &fetch.HTTPFetcher{Client: client, Mirror: mirror, Progress: cmd.ErrOrStderr()},
			Puller: &fetch.ModelPuller{Runner: runner, Tool: opts.modelTool},
		},
		Images:   &fetch.ImagePuller{Runner: runner, Engine: cfg.OCIProvider},
		LookPath: runner.LookPath,
		Logger:   logger,
	}

	if !opts.noHistory {
		if journal, closeFn := openJournal(cmd, opts.historyDB); journal != nil {
			defer closeFn()
			o.Journal = journal
		}
	}

	res, err := o.Run(ctx)
	if err != nil {
		return err
	}
	if res.NothingToDo {
		fmt.Fprintln(out, "No items to download.")
		return nil
	}
	if res.LinkPath != "" {
		fmt.Fprintf(out, "Default model: %s\n", res.DefaultModel.Destination)
	}
	if n := len(res.FetchedModels) + len(res.FetchedImages); n > 0 {
		fmt.Fprintf(out, "\nAll downloads complete: %d model(s), %d image(s).\n", len(res.FetchedModels), len(res.FetchedImages))
	}
	return nil
}

func openJournal(cmd *cobra.Command, path string) (*history.Journal, func() error) {
	logger := logging.GetLogger(cmd.Context())
	if path == "" {
		var err error
		if path, err = history.DefaultPath(); err != nil {
			logger.Warn("download journal disabled", "error", err)
			return nil, nil
		}
	}
	journal, err := history.Open(path)
	if err != nil {
		logger.Warn("download journal disabled", "path", path, "error", err)
		return nil, nil
	}
	return journal, journal.Close
}

// bannerSelector prints the start banner once the user made a choice.
type bannerSelector struct {
	inner selector.Selector
	out   io.Writer
}
