package config

// Default values.
const (
	DefaultMaxDepth           = 2
	DefaultOutputDirectory    = "_dist"
	DefaultHighlightStyle     = "github"
	DefaultNotifySubject      = "docd.builds"
	DefaultSuffixMarker       = "--dot-"
	DefaultNameSeparator      = "--"
	DefaultNameSeparatorRepl  = ": "
	UnsupportedSkip           = "skip"
	UnsupportedFail           = "fail"
	MediaDirName              = "_media"
	defaultUnsupportedEntries = UnsupportedSkip
)

// DefaultFileTypes returns the suffix to language map used when none is configured.
// The empty suffix covers extensionless files such as Makefile.
func DefaultFileTypes() map[string]string {
	return map[string]string{
		".md":   "markdown",
		".py":   "python",
		".txt":  "",
		".html": "html",
		".sh":   "bash",
		".bash": "bash",
		".vue":  "html",
		".js":   "javascript",
		".css":  "css",
		".conf": "bash",
		"":      "",
	}
}

// DefaultSkipDirectories returns the directory names never published.
func DefaultSkipDirectories() []string {
	return []string{".git", "_output", MediaDirName}
}

// Default returns a configuration with every optional field at its default. Site metadata
// and the source directory are left empty.
func Default() *Config {
	return &Config{
		Source: SourceConfig{
			MaxDepth:           DefaultMaxDepth,
			FileTypes:          DefaultFileTypes(),
			SkipDirectories:    DefaultSkipDirectories(),
			UnsupportedEntries: defaultUnsupportedEntries,
		},
		Output: OutputConfig{Directory: DefaultOutputDirectory},
		Naming: NamingConfig{
			SuffixMarker:             DefaultSuffixMarker,
			NameSeparator:            DefaultNameSeparator,
			NameSeparatorReplacement: DefaultNameSeparatorRepl,
		},
		Render: RenderConfig{HighlightStyle: DefaultHighlightStyle},
		Notify: NotifyConfig{Subject: DefaultNotifySubject},
	}
}
