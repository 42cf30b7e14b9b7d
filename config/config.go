package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const configFileEnvName = "STOREFRONT_CONFIG_FILE"

const (
	CatalogProviderFakeStore = "fakestore"
	CatalogProviderOpenFood  = "openfoodfacts"
)

type catalog struct {
	Provider     string `mapstructure:"provider"`
	FakeStoreURL string `mapstructure:"fakestore_url"`
	OpenFoodURL  string `mapstructure:"openfood_url"`
}

type topics struct {
	CartEvents            string `mapstructure:"cart_events"`
	BestSellersGroupTable string `mapstructure:"bestsellers_group_table"`
}

type broker struct {
	SeedBrokers        []string `mapstructure:"seed_brokers"`
	SchemaRegistryURLs []string `mapstructure:"schema_registry_urls"`
	Topics             topics   `mapstructure:"topics"`
}

type Config struct {
	LogLevel       slog.Level `mapstructure:"log_level"`
	HTTPServerAddr string     `mapstructure:"http_server_addr"`
	SQLDB          string     `mapstructure:"sql_db"`
	Catalog        catalog    `mapstructure:"catalog"`
	Broker         broker     `mapstructure:"broker"`
}

// EventsEnabled reports whether the cart events pipeline is configured.
// An empty seed brokers list keeps the service runnable without a broker.
func (c Config) EventsEnabled() bool {
	return len(c.Broker.SeedBrokers) != 0
}

func Load() Config {
	viper.SetConfigFile(getConfigFilepath())

	err := viper.ReadInConfig()
	if err != nil {
		die(err)
	}

	var cfg Config
	err = viper.UnmarshalExact(&cfg)
	if err != nil {
		die(err)
	}

	return cfg
}

func getConfigFilepath() string {
	cmdLine := pflag.NewFlagSet(os.Args[0], pflag.ExitOnError)
	arg := cmdLine.String("config", "/config.yaml", "config file")
	_ = cmdLine.Parse(os.Args[1:])
	env, ok := os.LookupEnv(configFileEnvName)
	if ok {
		return env
	}
	return *arg
}

func die(err error) {
	fmt.Printf("failed to load config file: %v\n", err)
	os.Exit(2)
}

func (c Config) Print() {
	tamplate := `
	General:
	LogLevel=%q
	HTTPServerAddr=%q
	SQLDB=%q

	Catalog:
	Provider=%q
	FakeStoreURL=%q
	OpenFoodURL=%q

	BrokerConfig:
	SeedBrokers=%q
	SchemaRegistryURLs=%q
	Topics:
		CartEvents=%q
		BestSellersGroupTable=%q

`
	fmt.Println("Loaded config:")
	fmt.Printf(
		strings.TrimLeft(tamplate, "\n"),
		c.LogLevel,
		c.HTTPServerAddr,
		c.SQLDB,
		c.Catalog.Provider,
		c.Catalog.FakeStoreURL,
		c.Catalog.OpenFoodURL,
		c.Broker.SeedBrokers,
		c.Broker.SchemaRegistryURLs,
		c.Broker.Topics.CartEvents,
		c.Broker.Topics.BestSellersGroupTable,
	)
}
