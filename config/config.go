package config

import (
	"github.com/spf13/viper"
)

type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Signer SignerConfig `mapstructure:"signer"`
	Reward RewardConfig `mapstructure:"reward"`
}

type ServerConfig struct {
	HTTPAddress    string `mapstructure:"http_address"`
	RPCAddress     string `mapstructure:"rpc_address"`
	MetricsAddress string `mapstructure:"metrics_address"`
}

type SignerConfig struct {
	PrivateKey string `mapstructure:"private_key"`
}

type RewardConfig struct {
	// Amount 单场胜利的奖励数额(wei，十进制字符串)
	Amount string `mapstructure:"amount"`
}

func LoadConfig(path string) (config *Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.AutomaticEnv()
	// 私钥不进配置文件，走环境变量
	viper.BindEnv("signer.private_key", "SERVER_PRIVATE_KEY")

	err = viper.ReadInConfig()
	if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	return
}
