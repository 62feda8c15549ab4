package cmd

import (
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:     "vidai-studio",
	Short:   "Local studio that turns video audio into AI-written content",
	Long:    "A local web backend that downloads media from social platforms and generates written content from it with Google Gemini.",
	Version: "1.0.0",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

// initConfig reads the config file and matching environment variables.
func initConfig() {
	viper.AddConfigPath("./data")
	viper.AddConfigPath(".")
	viper.SetConfigType("yaml")
	viper.SetConfigName("config")

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Println("failed to read config file:", err)
			os.Exit(1)
		}
	}
}
