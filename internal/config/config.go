package config

import (
	"fmt"
	"math/big"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pikavault/pikavault-go/internal/log"
	"go.uber.org/zap"
)

type Config struct {
	Env        string
	Debug      bool
	LogPath    string
	HealthPort string

	CatalogPort     string
	CatalogCacheTtl int
	CatalogIndex    string

	Solana        SolanaConfig
	Pinata        PinataConfig
	ElasticSearch ElasticSearchConfig
	Aws           AwsConfig
}

type SolanaConfig struct {
	RpcUrl         string
	Commitment     string
	Timeout        int
	ProgramId      string
	MetadataProgId string
	Admin          string
	CollectionMint string
	PrivateKeyFile string
}

type PinataConfig struct {
	Jwt     string
	Gateway string
	Timeout int
}

type ElasticSearchConfig struct {
	Hosts       []string
	Sniff       bool
	HealthCheck bool
	Debug       bool
	Username    string
	Password    string
}

type AwsConfig struct {
	AccessKey string
	SecretKey string
	Region    string
	Bucket    string
	Queue     string
}

func Init(app string) {
	if err := godotenv.Load(".env"); err != nil {
		zap.L().With(zap.Error(err)).Warn("Unable to load .env")
	}

	log.NewLogger(fmt.Sprintf("logs/%s.log", app), Get().Debug)
}

func Get() *Config {
	return &Config{
		Env:             getString("ENV", ""),
		Debug:           getBool("DEBUG", false),
		LogPath:         getString("LOG_PATH", "logs"),
		HealthPort:      getString("HEALTH_PORT", "8081"),
		CatalogPort:     getString("CATALOG_PORT", "8080"),
		CatalogCacheTtl: getInt("CATALOG_CACHE_TTL", 30),
		CatalogIndex:    getString("CATALOG_INDEX", "pikavault.listing"),
		Solana: SolanaConfig{
			RpcUrl:         getString("SOLANA_RPC_URL", "https://api.devnet.solana.com"),
			Commitment:     getString("SOLANA_COMMITMENT", "confirmed"),
			Timeout:        getInt("SOLANA_TIMEOUT", 60),
			ProgramId:      getString("PROGRAM_ID", "6aLg7Q1yji5fNMoGWFxS5nhcq3ZojGpf3rVyUQyM7Eg8"),
			MetadataProgId: getString("METADATA_PROGRAM_ID", "metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s"),
			Admin:          getString("MARKETPLACE_ADMIN", ""),
			CollectionMint: getString("COLLECTION_MINT", ""),
			PrivateKeyFile: getString("PRIVATE_KEY_FILE", ""),
		},
		Pinata: PinataConfig{
			Jwt:     getString("PINATA_JWT", ""),
			Gateway: getString("PINATA_GATEWAY", "https://ipfs.io/ipfs"),
			Timeout: getInt("PINATA_TIMEOUT", 30),
		},
		ElasticSearch: ElasticSearchConfig{
			Hosts:       getSlice("ELASTIC_SEARCH_HOSTS", make([]string, 0), ","),
			Sniff:       getBool("ELASTIC_SEARCH_SNIFF", false),
			HealthCheck: getBool("ELASTIC_SEARCH_HEALTH_CHECK", true),
			Debug:       getBool("ELASTIC_SEARCH_DEBUG", false),
			Username:    getString("ELASTIC_SEARCH_USERNAME", ""),
			Password:    getString("ELASTIC_SEARCH_PASSWORD", ""),
		},
		Aws: AwsConfig{
			AccessKey: getString("AWS_ACCESS_KEY_ID", ""),
			SecretKey: getString("AWS_SECRET_KEY_ID", ""),
			Region:    getString("AWS_REGION", ""),
			Bucket:    getString("AWS_ASSET_BUCKET", ""),
			Queue:     getString("AWS_CATALOG_QUEUE", "pikavault.catalog.refresh"),
		},
	}
}

func getString(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}

	return defaultValue
}

func getInt(key string, defaultValue int) int {
	valStr := getString(key, "")
	val, _, err := big.ParseFloat(valStr, 10, 0, big.ToNearestEven)
	if err != nil {
		return defaultValue
	}

	intVal, _ := val.Int64()
	return int(intVal)
}

func getBool(key string, defaultValue bool) bool {
	valStr := getString(key, "")
	if val, err := strconv.ParseBool(valStr); err == nil {
		return val
	}

	return defaultValue
}

func getSlice(key string, defaultVal []string, sep string) []string {
	valStr := getString(key, "")
	if valStr == "" {
		return defaultVal
	}

	return strings.Split(valStr, sep)
}
