package config

const (
	defaultLogFile           = "books-translate.log"
	defaultLogLevel          = "info"
	defaultLogFileMaxSize    = 20
	defaultLogFileMaxBackups = 3
	defaultLogFileMaxAge     = 28
	defaultLogCompress       = false
	defaultPort              = 8080
	defaultHost              = "0.0.0.0"
	defaultData              = "/var/opt/books-translate"
	defaultDSN               = defaultData + "/books-translate.db"
	defaultMaxUploadSize     = 100
	defaultAPIURL            = "https://api.openai.com/v1"
	defaultModelName         = "gpt-4o-mini"
	defaultSourceLanguage    = "en"
	defaultTargetLanguage    = "Russian"
	defaultTargetCode        = "ru"
	defaultSystemPrompt      = "You are a professional novel translator. Translate text preserving literary style and tone."
	defaultTemperature       = 0.3
	defaultMaxTokens         = 4000
	defaultTopP              = 0.9
	defaultRequestTimeout    = 600
)

var defaultSupportedTypes = []string{"fb2", "epub", "zip", "txt"}

// Why use mapstructure instead of json, if use json as field tags, it can't recgnize the field, since the viper use mapstructure.
// see: https://pkg.go.dev/github.com/mitchellh/mapstructure#hdr-Field_Tags
type Options struct {
	// LogFile is the file to write logs to
	LogFile string `mapstructure:"log_file"`
	// LogLevel is the level of logging to show
	LogLevel string `mapstructure:"log_level"`
	// LogFileMaxSize is the maximum size of the log file before it is rotated
	LogFileMaxSize int `mapstructure:"log_file_max_size"`
	// LogFileMaxBackups is the maximum number of log files to keep
	LogFileMaxBackups int `mapstructure:"log_file_max_backups"`
	// LogFileMaxAge is the maximum number of days to keep a log file
	LogFileMaxAge int `mapstructure:"log_file_max_age"`
	// LogCompress is whether or not to compress the log files
	LogCompress bool `mapstructure:"log_compress"`
	// DSN is the URL of the database to connect to (sqlite)
	DSN string `mapstructure:"dsn_uri"`
	// Port is the port to listen on
	Port int `mapstructure:"port"`
	// Host is the host to listen on
	Host string `mapstructure:"host"`
	// Data is the directory to store data (database, covers, images)
	Data string `mapstructure:"data"`
	// MaxUploadSize is the maximum size of an uploaded book, in MiB
	MaxUploadSize int64 `mapstructure:"max_upload_size"`
	// SupportedTypes is the list of importable file extensions
	SupportedTypes []string `mapstructure:"supported_types"`

	// Translation endpoint, OpenAI chat-completions compatible.
	APIURL string `mapstructure:"api_url"`
	// APIKey is the bearer credential; translation is refused without it
	APIKey    string `mapstructure:"api_key"`
	ModelName string `mapstructure:"model_name"`
	// SourceLanguage is a short code of the language books are written in
	SourceLanguage string `mapstructure:"source_language"`
	// TargetLanguage is the human-readable language to translate into
	TargetLanguage string `mapstructure:"target_language"`
	// TargetCode is the short code used as the translation cache partition key
	TargetCode   string  `mapstructure:"target_code"`
	SystemPrompt string  `mapstructure:"system_prompt"`
	Temperature  float64 `mapstructure:"temperature"`
	MaxTokens    int     `mapstructure:"max_tokens"`
	TopP         float64 `mapstructure:"top_p"`
	// RequestTimeout bounds a single translation call, in seconds
	RequestTimeout int `mapstructure:"request_timeout"`
}

func GetDefaultOptions() *Options {
	Opts = &Options{
		LogFile:           defaultLogFile,
		LogLevel:          defaultLogLevel,
		LogFileMaxSize:    defaultLogFileMaxSize,
		LogFileMaxBackups: defaultLogFileMaxBackups,
		LogFileMaxAge:     defaultLogFileMaxAge,
		LogCompress:       defaultLogCompress,
		DSN:               defaultDSN,
		Port:              defaultPort,
		Host:              defaultHost,
		Data:              defaultData,
		MaxUploadSize:     defaultMaxUploadSize,
		SupportedTypes:    defaultSupportedTypes,
		APIURL:            defaultAPIURL,
		ModelName:         defaultModelName,
		SourceLanguage:    defaultSourceLanguage,
		TargetLanguage:    defaultTargetLanguage,
		TargetCode:        defaultTargetCode,
		SystemPrompt:      defaultSystemPrompt,
		Temperature:       defaultTemperature,
		MaxTokens:         defaultMaxTokens,
		TopP:              defaultTopP,
		RequestTimeout:    defaultRequestTimeout,
	}
	return Opts
}
