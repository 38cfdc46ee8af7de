package stellarforge

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

var (
	cfgLoaded = false
	config    = _sfconfig{}
)

// _sfconfig is a "hidden" struct, just use `sfConfig`
type _sfconfig struct {
	outputDir string
}

// sfConfig returns the stellarforge configuration.
func sfConfig() _sfconfig {
	if cfgLoaded {
		return config
	}
	// Load the configuration file
	confPath := os.Getenv("STELLARFORGE_CONFIG")
	if confPath == "" {
		panic("environment variable `STELLARFORGE_CONFIG` is missing or empty")
	}
	viper.SetConfigName("conf")
	viper.AddConfigPath(confPath)
	err := viper.ReadInConfig()
	if err != nil {
		panic(fmt.Errorf("%s/conf.toml not found", confPath))
	}

	outputDir := viper.GetString("general.output_path")

	cfgLoaded = true
	config = _sfconfig{outputDir: outputDir}
	return config
}
