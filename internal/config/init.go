package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	ferrors "git.home.luguber.info/inful/docd/internal/foundation/errors"
)

// ExampleYAML is written by Init.
const ExampleYAML = `# docd configuration
source:
  directory: docs
  max_depth: 2
  file_types:
    ".md": markdown
    ".py": python
    ".txt": ""
    ".html": html
    ".sh": bash
    ".bash": bash
    ".vue": html
    ".js": javascript
    ".css": css
    ".conf": bash
    "": ""
  skip_directories: [.git, _output, _media]
  unsupported_entries: skip

output:
  directory: _dist

site:
  title: Documentation
  author: Documentation Team
  name: docs
  footer: Published with docd
  # home_addr: https://example.com

naming:
  suffix_marker: "--dot-"
  name_separator: "--"
  name_separator_replacement: ": "

render:
  workers: 0
  highlight_style: github
  unsafe_html: false

static:
  directory: ""

notify:
  nats_url: ""
  subject: docd.builds

check:
  filter_phrases: []
`

// Init writes ExampleYAML to path. An existing file is only replaced when force is set.
func Init(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return ferrors.ConfigError("refusing to overwrite configuration").
				WithCause(fmt.Errorf("%w: %s", ErrConfigExists, path)).
				WithContext("path", path).
				WithHint("pass --force to overwrite").
				Build()
		} else if !errors.Is(err, fs.ErrNotExist) {
			return ferrors.FileSystemError("failed to stat configuration").WithCause(err).Build()
		}
	}
	if err := os.WriteFile(path, []byte(ExampleYAML), 0o644); err != nil {
		return ferrors.FileSystemError("failed to write configuration").
			WithCause(err).
			WithContext("path", path).
			Build()
	}
	return nil
}
