package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ProjectsTask/EasySwapListing/src/config"
)

const defaultConfigPath = "./config/config.toml"

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "easyswap-listing",
	Short: "listing detail page for the marketplace contract.",
	Long:  "listing detail page for the marketplace contract: browse a listing, buy it or make an offer.",
}

// Execute 解析命令行参数并执行对应命令
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.easyswap-listing.toml or ./config/config.toml)")
}

// initConfig 确定配置文件路径并加载 .env
func initConfig() {
	// .env 不存在时忽略
	_ = godotenv.Load()

	viper.SetConfigType("toml")
	config.SetDefaults(viper.GetViper())
	config.BindEnv(viper.GetViper())

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		return
	}

	home, err := homedir.Dir()
	if err == nil {
		path := filepath.Join(home, ".easyswap-listing.toml")
		if _, err := os.Stat(path); err == nil {
			viper.SetConfigFile(path)
			return
		}
	}
	viper.SetConfigFile(defaultConfigPath)
}
