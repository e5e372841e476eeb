package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/roach88/teachsync/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose     bool
	Format      string // "json" | "text"
	ConfigFile  string
	Document    string
	Workbook    string
	BackupDir   string
	Actor       string
	MetricsFile string
	LogLevel    string
	LogFormat   string

	// viper is set by the root command once flags are parsed.
	viper *viper.Viper
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// flagKeys maps global flags onto configuration keys.
var flagKeys = map[string]string{
	"document":     config.KeyDocument,
	"workbook":     config.KeyWorkbook,
	"backup-dir":   config.KeyBackupDir,
	"actor":        config.KeyActor,
	"metrics-file": config.KeyMetricsFile,
	"log-level":    config.KeyLogLevel,
	"log-format":   config.KeyLogFormat,
}

// NewRootCommand creates the root command for the teachsync CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "teachsync",
		Short: "Teaching software configuration store",
		Long: `teachsync keeps the teaching software configuration (instructors, modules
and the software each module needs) in one YAML document, records every
change in an audit log, and mirrors the document to a workbook (.xlsx or
SQLite) that can be edited and imported back.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Validate format flag
			if !isValidFormat(opts.Format) {
				return newFormatter(opts, cmd).Usage("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			v := config.New()
			if err := config.BindFlags(v, cmd.Flags(), flagKeys); err != nil {
				return WrapExitError(ExitCommandError, "bind flags", err)
			}
			opts.viper = v
			return nil
		},
	}

	// Global flags
	flags := cmd.PersistentFlags()
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	flags.StringVar(&opts.Format, "format", "text", "output format (json|text)")
	flags.StringVarP(&opts.ConfigFile, "config", "c", "", "config file (default ./teachsync.yaml if present)")
	flags.StringVarP(&opts.Document, "document", "d", "", "YAML document path (default "+config.DefaultDocument+")")
	flags.StringVarP(&opts.Workbook, "workbook", "w", "", "workbook path, .xlsx or .db (default "+config.DefaultWorkbook+")")
	flags.StringVar(&opts.BackupDir, "backup-dir", "", "backup directory (default: alongside the document)")
	flags.StringVar(&opts.Actor, "actor", "", "actor recorded in audit entries")
	flags.StringVar(&opts.MetricsFile, "metrics-file", "", "write operation metrics in Prometheus text format to this file")
	flags.StringVar(&opts.LogLevel, "log-level", "", "log level (debug|info|warn|error|disabled)")
	flags.StringVar(&opts.LogFormat, "log-format", "", "log format (console|json)")

	// Add subcommands
	cmd.AddCommand(NewInitCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewShowCommand(opts))
	cmd.AddCommand(NewInstructorCommand(opts))
	cmd.AddCommand(NewModuleCommand(opts))
	cmd.AddCommand(NewSoftwareCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewImportCommand(opts))
	cmd.AddCommand(NewStatusCommand(opts))
	cmd.AddCommand(NewAuditCommand(opts))
	cmd.AddCommand(NewWatchCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
