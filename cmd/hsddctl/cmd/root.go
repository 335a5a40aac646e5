package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/hsdd-project/hsdd/manager"
	"github.com/hsdd-project/hsdd/pkg/config"
	"github.com/hsdd-project/hsdd/pkg/utils"
)

var (
	// Global flags
	verbose    bool
	configPath string

	logger utils.Logger
)

// rootCmd represents the base command.
var rootCmd = &cobra.Command{
	Use:   "hsddctl",
	Short: "A hierarchical set decision diagram engine demo",
	Long: `hsddctl drives the hsdd engine: it builds tuple spaces, saturates and
evaluates homomorphisms against them, and reports timing and cache
diagnostics.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logLevel := utils.LevelInfo
		if verbose {
			logLevel = utils.LevelDebug
		}
		logger = utils.NewDefaultLogger(logLevel, os.Stdout)
		return nil
	},
}

// Execute adds all child commands to the root command and runs it.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose (debug-level) output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a config file (default: a file named hsdd in ., ./configs or /etc/hsdd, then built-in defaults)")

	binName := BinName()
	rootCmd.Example = `  # Build a small tuple space and report its path count
  ` + binName + ` build --vars 3 --modulus 4

  # Saturate and evaluate a cyclic increment over that space
  ` + binName + ` eval --vars 3 --modulus 4

  # Run the same scenario and print unique-table/cache diagnostics
  ` + binName + ` stats --vars 3 --modulus 4`
}

// GetLogger returns the logger configured for this invocation.
func GetLogger() utils.Logger { return logger }

// BinName returns the base name of the current executable.
func BinName() string { return filepath.Base(os.Args[0]) }

// withManager loads config, constructs a Manager for the duration of fn and
// guarantees it is closed afterwards, freeing the process-wide singleton
// slot for the next invocation.
func withManager(fn func(*manager.Manager) error) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	m, err := manager.New(cfg, logger)
	if err != nil {
		return err
	}
	defer m.Close()
	return fn(m)
}
