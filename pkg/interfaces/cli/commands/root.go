package commands

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/vsinha/procurement/pkg/infrastructure/config"
)

var outputFormat string

var rootCmd = &cobra.Command{
	Use:   "procure",
	Short: "Procurement dashboard client",
	Long: `procure talks to the procurement service: it lists products and orders,
submits and decides on purchase orders, classifies the stock forecast and
runs what-if scenarios. With --offline it runs against an in-process
service seeded from a built-in catalog or a CSV file.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command until it finishes or the process is interrupted
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringP("config", "c", "", "config file (default is $HOME/.config/procure/config.yaml)")
	flags.String("role", "", "acting role: employee or manager")
	flags.String("base-url", "", "procurement service address")
	flags.Bool("offline", false, "use the in-process service instead of the remote one")
	flags.String("seed", "", "CSV catalog for the offline service")
	flags.StringVarP(&outputFormat, "format", "o", "text", "output format: text, json or yaml")

	_ = viper.BindPFlag("config", flags.Lookup("config"))
	_ = viper.BindPFlag("user.role", flags.Lookup("role"))
	_ = viper.BindPFlag("api.base_url", flags.Lookup("base-url"))
	_ = viper.BindPFlag("offline.enabled", flags.Lookup("offline"))
	_ = viper.BindPFlag("offline.seed_file", flags.Lookup("seed"))
}

func initConfig() {
	// Set defaults first so they're available even without a config file
	config.SetDefaults()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
		viper.AddConfigPath(filepath.Join(".", ".procure"))
		viper.AddConfigPath(".")
	}

	config.BindEnv(viper.GetViper())

	// Read config file if it exists (ignore error if not found)
	_ = viper.ReadInConfig()
}
