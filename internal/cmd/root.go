package cmd

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"k8s.io/klog/v2"
	"k8s.io/klog/v2/textlogger"

	"github.com/scoutflo/devlint/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "devlint [command] [options]",
	Short: "Static and live analysis toolkit for containerized workloads",
	Long: `
devlint: static and live analysis toolkit for containerized workloads

  # lint a docker-compose.yml
  devlint dclint ./docker-compose.yml

  # lint a Dockerfile
  devlint dockerlint ./Dockerfile

  # lint a Helm chart
  devlint helmlint ./charts/my-app

  # run kubelint security/best-practice templates over manifests
  devlint kubelint ./manifests

  # static + live-aware resource right-sizing
  devlint optimize ./manifests --cluster prod --prometheus http://prometheus:9090 --full`,
	Run: func(cmd *cobra.Command, args []string) {
		if viper.GetBool("version") {
			fmt.Printf("%s %s\n", version.BinaryName, version.Version)
			return
		}
		_ = cmd.Help()
	},
}

func init() {
	rootCmd.PersistentFlags().IntP("log-level", "", 0, "klog verbosity (0-9)")
	rootCmd.Flags().BoolP("version", "v", false, "Print version information and quit")
	_ = viper.BindPFlags(rootCmd.PersistentFlags())
	_ = viper.BindPFlags(rootCmd.Flags())

	rootCmd.AddCommand(newDclintCmd())
	rootCmd.AddCommand(newDockerlintCmd())
	rootCmd.AddCommand(newHelmlintCmd())
	rootCmd.AddCommand(newKubelintCmd())
	rootCmd.AddCommand(newOptimizeCmd())
}

// Execute runs the root command and returns the process exit code (spec §6). Subcommands report
// their own exit code via the package-level exitCode variable, set just before their Run returns;
// a cobra-level failure (bad flags, unknown subcommand) maps to exitInvalidArgs.
func Execute() int {
	initLogging()
	exitCode = exitOK
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitInvalidArgs
	}
	return exitCode
}

// exitCode is set by a subcommand's Run just before returning, since cobra's Run signature has no
// return value of its own.
var exitCode int

func initLogging() {
	logLevel := viper.GetInt("log-level")
	if logLevel < 0 {
		logLevel = 0
	}
	config := textlogger.NewConfig(
		textlogger.Output(os.Stderr),
		textlogger.Verbosity(logLevel),
	)
	klog.SetLoggerWithOptions(textlogger.NewLogger(config))

	flagSet := flag.NewFlagSet("devlint", flag.ContinueOnError)
	klog.InitFlags(flagSet)
	_ = flagSet.Parse([]string{"--v", strconv.Itoa(logLevel)})
}
