package types

// ParseMode selects how answer options are located inside a question block.
type ParseMode string

const (
	// ModeFixed looks up every label of the range by anchor and requires
	// all of them.
	ModeFixed ParseMode = "fixed"

	// ModeScan matches each line on its own and keeps whatever options
	// appear, in appearance order.
	ModeScan ParseMode = "scan"
)

// ParserConfig holds settings for the question parser.
type ParserConfig struct {
	// Mode selects fixed-label or line-scan option extraction.
	Mode ParseMode `json:"mode" yaml:"mode" mapstructure:"mode"`

	// Labels is the option label range, e.g. "ABC" or "ABCDEF".
	Labels string `json:"labels" yaml:"labels" mapstructure:"labels"`

	// RequireCorrectAnswer drops blocks without a usable answer marker.
	RequireCorrectAnswer bool `json:"require_answer" yaml:"require_answer" mapstructure:"require_answer"`

	// DetectCorrectAnswer looks for answer markers at all. Fixed mode
	// always detects.
	DetectCorrectAnswer bool `json:"detect_answer" yaml:"detect_answer" mapstructure:"detect_answer"`

	// MinOptions is the minimum number of options in scan mode (default 2).
	MinOptions int `json:"min_options" yaml:"min_options" mapstructure:"min_options"`

	// InferBoldAnswers takes the answer from the single bold option line
	// when no answer marker is present.
	InferBoldAnswers bool `json:"infer_bold" yaml:"infer_bold" mapstructure:"infer_bold"`
}

// SetConfig holds settings for paging questions into sets.
type SetConfig struct {
	// PerSet is the number of questions per set (default 40).
	PerSet int `json:"per_set" yaml:"per_set" mapstructure:"per_set"`

	// Prefix is the set name prefix (default "reeks").
	Prefix string `json:"prefix" yaml:"prefix" mapstructure:"prefix"`
}

// ExtractionBackend identifies the PDF text extraction tool.
type ExtractionBackend string

const (
	BackendNative    ExtractionBackend = "native"
	BackendPdftotext ExtractionBackend = "pdftotext"
)

// ExtractionConfig holds settings for PDF text extraction.
type ExtractionConfig struct {
	// Backend selects the extractor: native or pdftotext.
	Backend ExtractionBackend `json:"backend" yaml:"backend" mapstructure:"backend"`

	// MaxPages caps the number of pages read. Zero reads all pages.
	MaxPages int `json:"max_pages" yaml:"max_pages" mapstructure:"max_pages"`

	// Validate runs a structural check on the PDF before extraction.
	Validate bool `json:"validate" yaml:"validate" mapstructure:"validate"`

	// Password opens encrypted PDFs. Loaded from secrets, never from the
	// config file.
	Password string `json:"-" yaml:"-" mapstructure:"-"`
}

// OutputFormat selects the encoding of written files.
type OutputFormat string

const (
	FormatJSON OutputFormat = "json"
	FormatYAML OutputFormat = "yaml"
)

// OutputConfig holds settings for written files.
type OutputConfig struct {
	Format OutputFormat `json:"format" yaml:"format" mapstructure:"format"`
}

// BankConfig holds settings for the question bank.
type BankConfig struct {
	// Path is the SQLite database file.
	Path string `json:"path" yaml:"path" mapstructure:"path"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Format is console or json.
	Format string `json:"format" yaml:"format" mapstructure:"format"`
}

// Config groups all settings.
type Config struct {
	Parser  ParserConfig     `json:"parser" yaml:"parser" mapstructure:"parser"`
	Sets    SetConfig        `json:"sets" yaml:"sets" mapstructure:"sets"`
	Extract ExtractionConfig `json:"extract" yaml:"extract" mapstructure:"extract"`
	Output  OutputConfig     `json:"output" yaml:"output" mapstructure:"output"`
	Bank    BankConfig       `json:"bank" yaml:"bank" mapstructure:"bank"`
	Log     LogConfig        `json:"log" yaml:"log" mapstructure:"log"`
}
