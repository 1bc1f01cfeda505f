package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"calscope/config"
)

var (
	cfgFile string
	cfg     *config.Config
	rootDir string
	envFile string
)

var rootCmd = &cobra.Command{
	Use:   "calscope",
	Short: "Calorie lookups, search history and weekly meal plans from the terminal",
	Long: `calscope looks up calories for dishes through a calorie service, suggests
dish names from the USDA FoodData Central catalog and your own history, and
keeps weekly meal plans. State is stored under .calscope in the state directory.

Example usage:
  calscope login --email you@example.com
  calscope suggest biryani                 # One-shot suggestions
  calscope suggest                         # Live suggestions while typing
  calscope lookup "chicken biryani" -s 2
  calscope plan create --name "Cut" --goal 1800`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error

		if err := loadEnv(envFile); err != nil {
			return err
		}

		if rootDir == "" {
			rootDir, err = os.UserHomeDir()
			if err != nil {
				return fmt.Errorf("failed to find home directory: %w", err)
			}
		}

		if cfgFile != "" {
			cfg, err = config.Load(cfgFile)
		} else {
			cfg, err = config.LoadFromDir(rootDir)
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}

		setupLogging(cfg.Logging.Level)
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is <dir>/calscope.yaml)")
	rootCmd.PersistentFlags().StringVarP(&rootDir, "dir", "d", "", "state directory (default is the home directory)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file with API keys")
}

// loadEnv reads path into the environment. A missing file is not an error;
// variables already set win.
func loadEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

func setupLogging(level string) {
	switch level {
	case "debug":
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	case "silent":
		log.SetOutput(io.Discard)
	default:
		log.SetFlags(log.LstdFlags)
	}
}

func GetConfig() *config.Config {
	return cfg
}

func GetRootDir() string {
	return rootDir
}
