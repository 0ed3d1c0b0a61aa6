package cfg

type Cfg struct {
	// Storage
	DBPath string

	// Application configuration
	SourcesDir        string
	Port              string
	WorkerCount       int
	SchedulerInterval int
	APIAccessKey      string

	// Parsing limits
	MaxDocumentSize int64
	Lookahead       int

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
