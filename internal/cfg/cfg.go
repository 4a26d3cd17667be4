package cfg

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/DRSN-tech/dropship-sync/pkg/e"
	"github.com/DRSN-tech/dropship-sync/pkg/logger"
	"github.com/jimlawless/whereami"
	"github.com/joho/godotenv"
)

type Config struct {
	Minio    *MinIOCfg
	Http     *HTTPConfig
	Grpc     *GRPCConfig
	Db       *PGDBCfg
	Redis    *RedisCfg
	Kafka    *KafkaCfg
	Pipeline *PipelineCfg
	Token    *TokenCfg
	Supplier *SupplierCfg
	Market   *MarketCfg
}

type KafkaCfg struct {
	Topic             string
	Brokers           []string
	NetworkMode       string
	Partitions        int
	ReplicationFactor int
}

type MinIOCfg struct {
	MinioEndpoint     string // Адрес конечной точки Minio
	BucketName        string // Бакет для сырых выгрузок поставщика
	MinioRootUser     string
	MinioRootPassword string
	MinioUseSSL       bool
	UploadLimit       int // Сколько частей выгрузки загружается одновременно
	SnapshotChunkSize int // Товаров в одной части выгрузки
}

type HTTPConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type GRPCConfig struct {
	Port        string
	NetworkMode string
}

type PGDBCfg struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisCfg struct {
	Addr        string
	Password    string
	User        string
	DB          int
	MaxRetries  int
	DialTimeout time.Duration
	Timeout     time.Duration
	ItemTTL     time.Duration
}

// PipelineCfg — параметры этапов конвейера.
type PipelineCfg struct {
	IngestConcurrency int
	OrderConcurrency  int
	UpdateConcurrency int
	NormalizeBatch    int
	MinMarginRate     float64
	MinSuccessRate    float64
	ArchiveSnapshots  bool
}

// TokenCfg — политика обновления токенов доступа.
type TokenCfg struct {
	RefreshBuffer   time.Duration
	MaxAttempts     int
	BaseDelay       time.Duration
	MaxDelay        time.Duration
	JitterFactor    float64
	RefreshTimeout  time.Duration
	JanitorInterval time.Duration
}

type SupplierCfg struct {
	APIURL     string
	AuthURL    string
	Timeout    time.Duration
	MaxRetries int
}

type MarketCfg struct {
	BaseURL   string
	Timeout   time.Duration
	RateLimit float64
	Burst     int
}

// Load безопасно загружает конфигурацию и возвращает ошибку в случае неудачи.
// Переменные из .env подхватываются, если файл существует; уже заданные переменные окружения не перезаписываются.
func Load(log logger.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warnf("failed to read .env file: %v", err)
	}

	db, err := loadPGDBCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	http, err := loadHTTPConfig(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	redis, err := loadRedisCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	minio, err := loadMinIOCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	kafka, err := loadKafkaCfg()
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	pipeline, err := loadPipelineCfg()
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	token, err := loadTokenCfg()
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	supplier, err := loadSupplierCfg()
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	market, err := loadMarketCfg()
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return &Config{
		Minio:    minio,
		Http:     http,
		Grpc:     loadGRPCConfig(),
		Db:       db,
		Redis:    redis,
		Kafka:    kafka,
		Pipeline: pipeline,
		Token:    token,
		Supplier: supplier,
		Market:   market,
	}, nil
}

func loadKafkaCfg() (*KafkaCfg, error) {
	const (
		defaultPartitions        = 3
		defaultReplicationFactor = 1
		defaultNetworkMode       = "tcp"
		defaultTopic             = "sync-events"
	)

	brokerStr := os.Getenv("KAFKA_BROKERS")
	if brokerStr == "" {
		return nil, fmt.Errorf("KAFKA_BROKERS environment variable is required")
	}

	brokers := make([]string, 0)
	for _, b := range strings.Split(brokerStr, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}

	partitions, err := parseIntEnv("KAFKA_PARTITIONS", defaultPartitions)
	if err != nil {
		return nil, e.Wrap("KAFKA_PARTITIONS", err)
	}

	replicationFactor, err := parseIntEnv("REPLICATION_FACTOR", defaultReplicationFactor)
	if err != nil {
		return nil, e.Wrap("REPLICATION_FACTOR", err)
	}

	return &KafkaCfg{
		Brokers:           brokers,
		Topic:             getEnvOrDefault("KAFKA_TOPIC", defaultTopic),
		Partitions:        partitions,
		ReplicationFactor: replicationFactor,
		NetworkMode:       getEnvOrDefault("KAFKA_NETWORK_MODE", defaultNetworkMode),
	}, nil
}

func loadMinIOCfg(log logger.Logger) (*MinIOCfg, error) {
	const (
		defaultUseSSL      = false
		defaultEndpoint    = "minio:9000"
		defaultBucket      = "supplier-snapshots"
		defaultUploadLimit = 4
		defaultChunkSize   = 500
	)

	useSSL, err := parseBoolEnv("MINIO_USE_SSL", defaultUseSSL)
	if err != nil {
		log.Errorf(err, "invalid MINIO_USE_SSL")
		return nil, err
	}

	uploadLimit, err := parseIntEnv("MINIO_UPLOAD_LIMIT", defaultUploadLimit)
	if err != nil {
		log.Errorf(err, "invalid MINIO_UPLOAD_LIMIT")
		return nil, err
	}

	chunkSize, err := parseIntEnv("SNAPSHOT_CHUNK_SIZE", defaultChunkSize)
	if err != nil {
		log.Errorf(err, "invalid SNAPSHOT_CHUNK_SIZE")
		return nil, err
	}

	return &MinIOCfg{
		MinioEndpoint:     getEnvOrDefault("MINIO_ENDPOINT", defaultEndpoint),
		BucketName:        getEnvOrDefault("BUCKET_NAME", defaultBucket),
		MinioRootUser:     getEnv("MINIO_ROOT_USER"),
		MinioRootPassword: getEnv("MINIO_ROOT_PASSWORD"),
		MinioUseSSL:       useSSL,
		UploadLimit:       uploadLimit,
		SnapshotChunkSize: chunkSize,
	}, nil
}

func loadHTTPConfig(log logger.Logger) (*HTTPConfig, error) {
	const (
		defaultPort         = "8080"
		defaultReadTimeout  = 5 * time.Second
		defaultWriteTimeout = 5 * time.Minute
		defaultIdleTimeout  = 60 * time.Second
	)

	port := getEnvOrDefault("HTTP_PORT", defaultPort)

	readTimeout, err := parseDurationEnv("HTTP_READ_TIMEOUT", defaultReadTimeout)
	if err != nil {
		log.Errorf(err, "invalid HTTP_READ_TIMEOUT")
		return nil, err
	}

	// этапы конвейера выполняются синхронно в обработчике, поэтому таймаут записи большой
	writeTimeout, err := parseDurationEnv("HTTP_WRITE_TIMEOUT", defaultWriteTimeout)
	if err != nil {
		log.Errorf(err, "invalid HTTP_WRITE_TIMEOUT")
		return nil, err
	}

	idleTimeout, err := parseDurationEnv("KEEP_ALIVE", defaultIdleTimeout)
	if err != nil {
		log.Errorf(err, "invalid KEEP_ALIVE")
		return nil, err
	}

	return &HTTPConfig{
		Port:         port,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}, nil
}

func loadGRPCConfig() *GRPCConfig {
	const (
		defaultPort        = "8091"
		defaultNetworkMode = "tcp"
	)

	return &GRPCConfig{
		Port:        getEnvOrDefault("GRPC_PORT", defaultPort),
		NetworkMode: getEnvOrDefault("GRPC_NETWORK_MODE", defaultNetworkMode),
	}
}

func loadPGDBCfg(log logger.Logger) (*PGDBCfg, error) {
	const (
		defaultHost    = "localhost"
		defaultPort    = "5432"
		defaultSSLMode = "disable"
	)

	user := getEnv("POSTGRES_USER")
	if user == "" {
		err := fmt.Errorf("POSTGRES_USER is required")
		log.Errorf(err, "missing POSTGRES_USER")
		return nil, err
	}

	password := getEnv("POSTGRES_PASSWORD")
	if password == "" {
		err := fmt.Errorf("POSTGRES_PASSWORD is required")
		log.Errorf(err, "missing POSTGRES_PASSWORD")
		return nil, err
	}

	dbName := getEnv("POSTGRES_DB")
	if dbName == "" {
		err := fmt.Errorf("POSTGRES_DB is required")
		log.Errorf(err, "missing POSTGRES_DB")
		return nil, err
	}

	return &PGDBCfg{
		Host:     getEnvOrDefault("POSTGRES_HOST", defaultHost),
		Port:     getEnvOrDefault("POSTGRES_PORT", defaultPort),
		User:     user,
		Password: password,
		DBName:   dbName,
		SSLMode:  getEnvOrDefault("SSL_MODE", defaultSSLMode),
	}, nil
}

func loadRedisCfg(log logger.Logger) (*RedisCfg, error) {
	const (
		defaultAddr         = "localhost:6379"
		defaultDB           = 0
		defaultMaxRetries   = 3
		defaultDialTimeout  = 5 * time.Second
		defaultReadTimeout  = 3 * time.Second
		defaultWriteTimeout = 3 * time.Second
		defaultItemTTL      = 10 * time.Minute
	)

	db, err := parseIntEnv("REDIS_DB_ID", defaultDB)
	if err != nil {
		log.Errorf(err, "invalid REDIS_DB_ID")
		return nil, err
	}

	maxRetries, err := parseIntEnv("MAX_RETRIES", defaultMaxRetries)
	if err != nil {
		log.Errorf(err, "invalid MAX_RETRIES")
		return nil, err
	}

	dialTimeout, err := parseDurationEnv("DIAL_TIMEOUT", defaultDialTimeout)
	if err != nil {
		log.Errorf(err, "invalid DIAL_TIMEOUT")
		return nil, err
	}

	readTimeout, err := parseDurationEnv("READ_TIMEOUT", defaultReadTimeout)
	if err != nil {
		log.Errorf(err, "invalid READ_TIMEOUT")
		return nil, err
	}

	writeTimeout, err := parseDurationEnv("WRITE_TIMEOUT", defaultWriteTimeout)
	if err != nil {
		log.Errorf(err, "invalid WRITE_TIMEOUT")
		return nil, err
	}

	itemTTL, err := parseDurationEnv("ITEM_CACHE_TTL", defaultItemTTL)
	if err != nil {
		log.Errorf(err, "invalid ITEM_CACHE_TTL")
		return nil, err
	}

	return &RedisCfg{
		Addr:        getEnvOrDefault("REDIS_ADDR", defaultAddr),
		Password:    getEnv("REDIS_PASSWORD"),
		User:        getEnv("REDIS_USER"),
		DB:          db,
		MaxRetries:  maxRetries,
		DialTimeout: dialTimeout,
		Timeout:     max(readTimeout, writeTimeout),
		ItemTTL:     itemTTL,
	}, nil
}

func loadPipelineCfg() (*PipelineCfg, error) {
	const (
		defaultIngestConcurrency = 10
		defaultOrderConcurrency  = 5
		defaultUpdateConcurrency = 3
		defaultNormalizeBatch    = 100
		defaultMinMarginRate     = 0.1
		defaultMinSuccessRate    = 0.8
	)

	ingest, err := parseIntEnv("INGEST_CONCURRENCY", defaultIngestConcurrency)
	if err != nil {
		return nil, e.Wrap("INGEST_CONCURRENCY", err)
	}

	orders, err := parseIntEnv("ORDER_CONCURRENCY", defaultOrderConcurrency)
	if err != nil {
		return nil, e.Wrap("ORDER_CONCURRENCY", err)
	}

	updates, err := parseIntEnv("MARKET_UPDATE_CONCURRENCY", defaultUpdateConcurrency)
	if err != nil {
		return nil, e.Wrap("MARKET_UPDATE_CONCURRENCY", err)
	}

	batch, err := parseIntEnv("NORMALIZE_BATCH_SIZE", defaultNormalizeBatch)
	if err != nil {
		return nil, e.Wrap("NORMALIZE_BATCH_SIZE", err)
	}

	minMargin, err := parseFloatEnv("MIN_MARGIN_RATE", defaultMinMarginRate)
	if err != nil {
		return nil, e.Wrap("MIN_MARGIN_RATE", err)
	}

	minSuccess, err := parseFloatEnv("MIN_SUCCESS_RATE", defaultMinSuccessRate)
	if err != nil {
		return nil, e.Wrap("MIN_SUCCESS_RATE", err)
	}

	archive, err := parseBoolEnv("ARCHIVE_SNAPSHOTS", true)
	if err != nil {
		return nil, e.Wrap("ARCHIVE_SNAPSHOTS", err)
	}

	return &PipelineCfg{
		IngestConcurrency: ingest,
		OrderConcurrency:  orders,
		UpdateConcurrency: updates,
		NormalizeBatch:    batch,
		MinMarginRate:     minMargin,
		MinSuccessRate:    minSuccess,
		ArchiveSnapshots:  archive,
	}, nil
}

func loadTokenCfg() (*TokenCfg, error) {
	const (
		defaultRefreshBuffer   = 3 * time.Hour
		defaultMaxAttempts     = 3
		defaultBaseDelay       = time.Second
		defaultMaxDelay        = 30 * time.Second
		defaultJitterFactor    = 0.0
		defaultRefreshTimeout  = time.Minute
		defaultJanitorInterval = 10 * time.Minute
	)

	buffer, err := parseDurationEnv("TOKEN_REFRESH_BUFFER", defaultRefreshBuffer)
	if err != nil {
		return nil, e.Wrap("TOKEN_REFRESH_BUFFER", err)
	}

	attempts, err := parseIntEnv("TOKEN_REFRESH_ATTEMPTS", defaultMaxAttempts)
	if err != nil {
		return nil, e.Wrap("TOKEN_REFRESH_ATTEMPTS", err)
	}

	base, err := parseDurationEnv("TOKEN_RETRY_BASE_DELAY", defaultBaseDelay)
	if err != nil {
		return nil, e.Wrap("TOKEN_RETRY_BASE_DELAY", err)
	}

	maxDelay, err := parseDurationEnv("TOKEN_RETRY_MAX_DELAY", defaultMaxDelay)
	if err != nil {
		return nil, e.Wrap("TOKEN_RETRY_MAX_DELAY", err)
	}

	jitterFactor, err := parseFloatEnv("TOKEN_RETRY_JITTER", defaultJitterFactor)
	if err != nil {
		return nil, e.Wrap("TOKEN_RETRY_JITTER", err)
	}

	timeout, err := parseDurationEnv("TOKEN_REFRESH_TIMEOUT", defaultRefreshTimeout)
	if err != nil {
		return nil, e.Wrap("TOKEN_REFRESH_TIMEOUT", err)
	}

	janitor, err := parseDurationEnv("TOKEN_JANITOR_INTERVAL", defaultJanitorInterval)
	if err != nil {
		return nil, e.Wrap("TOKEN_JANITOR_INTERVAL", err)
	}

	return &TokenCfg{
		RefreshBuffer:   buffer,
		MaxAttempts:     attempts,
		BaseDelay:       base,
		MaxDelay:        maxDelay,
		JitterFactor:    jitterFactor,
		RefreshTimeout:  timeout,
		JanitorInterval: janitor,
	}, nil
}

func loadSupplierCfg() (*SupplierCfg, error) {
	const (
		defaultAPIURL     = "https://api.ownerclan.com/v1/graphql"
		defaultAuthURL    = "https://auth.ownerclan.com/auth"
		defaultTimeout    = 30 * time.Second
		defaultMaxRetries = 3
	)

	timeout, err := parseDurationEnv("SUPPLIER_TIMEOUT", defaultTimeout)
	if err != nil {
		return nil, e.Wrap("SUPPLIER_TIMEOUT", err)
	}

	retries, err := parseIntEnv("SUPPLIER_MAX_RETRIES", defaultMaxRetries)
	if err != nil {
		return nil, e.Wrap("SUPPLIER_MAX_RETRIES", err)
	}

	return &SupplierCfg{
		APIURL:     getEnvOrDefault("SUPPLIER_API_URL", defaultAPIURL),
		AuthURL:    getEnvOrDefault("SUPPLIER_AUTH_URL", defaultAuthURL),
		Timeout:    timeout,
		MaxRetries: retries,
	}, nil
}

func loadMarketCfg() (*MarketCfg, error) {
	const (
		defaultBaseURL   = "https://api-gateway.coupang.com"
		defaultTimeout   = 30 * time.Second
		defaultRateLimit = 5.0
		defaultBurst     = 5
	)

	timeout, err := parseDurationEnv("MARKET_TIMEOUT", defaultTimeout)
	if err != nil {
		return nil, e.Wrap("MARKET_TIMEOUT", err)
	}

	rateLimit, err := parseFloatEnv("MARKET_RATE_LIMIT", defaultRateLimit)
	if err != nil {
		return nil, e.Wrap("MARKET_RATE_LIMIT", err)
	}

	burst, err := parseIntEnv("MARKET_BURST", defaultBurst)
	if err != nil {
		return nil, e.Wrap("MARKET_BURST", err)
	}

	return &MarketCfg{
		BaseURL:   getEnvOrDefault("MARKET_BASE_URL", defaultBaseURL),
		Timeout:   timeout,
		RateLimit: rateLimit,
		Burst:     burst,
	}, nil
}

// getEnv возвращает значение переменной окружения.
// Возвращает пустую строку, если переменная не задана.
func getEnv(key string) string {
	return os.Getenv(key)
}

// getEnvOrDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return defaultValue
}

// parseDurationEnv считывает длительность или возвращает значение по умолчанию.
func parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	if v := os.Getenv(key); v != "" {
		return time.ParseDuration(v)
	}

	return defaultValue, nil
}

func parseIntEnv(key string, defaultValue int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}

	intValue, err := strconv.Atoi(v)
	if err != nil {
		return defaultValue, e.ErrIncorrectEnvVariable
	}

	return intValue, nil
}

func parseFloatEnv(key string, defaultValue float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}

	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return defaultValue, e.ErrIncorrectEnvVariable
	}

	return f, nil
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}

	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultValue, e.ErrIncorrectEnvVariable
	}

	return b, nil
}
