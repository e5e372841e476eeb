package cli

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/roach88/teachsync/internal/config"
	"github.com/roach88/teachsync/internal/logging"
	"github.com/roach88/teachsync/internal/store"
)

// MetricsNamespace prefixes every metric written by --metrics-file.
const MetricsNamespace = "teachsync"

// session is the per-invocation state shared by store-backed commands.
type session struct {
	out      *OutputFormatter
	settings config.Settings
	log      zerolog.Logger
	metrics  *store.Metrics
	store    *store.Store
}

func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}
}

// overrides copies explicitly set options onto v when the command runs
// without the root command, as in tests that build a subcommand directly.
func overrides(opts *RootOptions) *viper.Viper {
	v := config.New()
	set := func(key, value string) {
		if value != "" {
			v.Set(key, value)
		}
	}
	set(config.KeyDocument, opts.Document)
	set(config.KeyWorkbook, opts.Workbook)
	set(config.KeyBackupDir, opts.BackupDir)
	set(config.KeyActor, opts.Actor)
	set(config.KeyMetricsFile, opts.MetricsFile)
	set(config.KeyLogLevel, opts.LogLevel)
	set(config.KeyLogFormat, opts.LogFormat)
	return v
}

// openSession resolves configuration and opens the store. Failures are
// reported through the formatter and returned as an ExitError.
func openSession(opts *RootOptions, cmd *cobra.Command) (*session, error) {
	out := newFormatter(opts, cmd)

	v := opts.viper
	if v == nil {
		v = overrides(opts)
	}
	settings, err := config.Load(v, opts.ConfigFile)
	if err != nil {
		return nil, out.Usage("%v", err)
	}
	out.VerboseLog("Document: %s", settings.Document)
	out.VerboseLog("Workbook: %s", settings.Workbook)
	if settings.ConfigFile != "" {
		out.VerboseLog("Config: %s", settings.ConfigFile)
	}

	logCfg := settings.Log
	if opts.Verbose && opts.LogLevel == "" {
		logCfg.Level = "debug"
	}
	logger, err := logging.New(cmd.ErrOrStderr(), logCfg)
	if err != nil {
		return nil, out.Usage("%v", err)
	}

	sess := &session{out: out, settings: settings, log: logger}
	if settings.MetricsFile != "" {
		sess.metrics = store.NewMetrics(MetricsNamespace)
	}

	storeCfg := settings.StoreConfig()
	storeCfg.Logger = &sess.log
	storeCfg.Metrics = sess.metrics
	sess.store, err = store.Open(storeCfg)
	if err != nil {
		return nil, out.Fail(err)
	}
	return sess, nil
}

// close flushes metrics. It never masks the command's own error.
func (s *session) close() {
	if s == nil || s.metrics == nil {
		return
	}
	if err := s.metrics.WriteTextfile(s.settings.MetricsFile); err != nil {
		s.log.Warn().Err(err).Str("path", s.settings.MetricsFile).Msg("write metrics")
	}
}

// storeRunner adapts a store-backed command body to cobra's RunE.
func storeRunner(opts *RootOptions, run func(cmd *cobra.Command, args []string, s *session) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		sess, err := openSession(opts, cmd)
		if err != nil {
			return err
		}
		defer sess.close()
		return run(cmd, args, sess)
	}
}
