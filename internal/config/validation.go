package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2/styles"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	ferrors "git.home.luguber.info/inful/docd/internal/foundation/errors"
)

// Validate checks the configuration and returns a ConfigError wrapping ErrInvalidConfig
// describing every problem found.
func (c *Config) Validate() error {
	err := validation.ValidateStruct(c,
		validation.Field(&c.Source),
		validation.Field(&c.Output),
		validation.Field(&c.Site),
		validation.Field(&c.Naming),
		validation.Field(&c.Render),
		validation.Field(&c.Notify),
		validation.Field(&c.Check),
	)
	if err == nil {
		return nil
	}
	return ferrors.ConfigError("configuration is invalid").
		WithCause(fmt.Errorf("%w: %w", ErrInvalidConfig, err)).
		WithContext("path", c.path).
		Build()
}

// Validate implements validation.Validatable.
func (s SourceConfig) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Directory, validation.Required),
		validation.Field(&s.MaxDepth, validation.Min(0)),
		validation.Field(&s.FileTypes, validation.By(fileTypeKeys)),
		validation.Field(&s.SkipDirectories, validation.Each(validation.Required, validation.By(plainName))),
		validation.Field(&s.UnsupportedEntries, validation.Required, validation.In(UnsupportedSkip, UnsupportedFail)),
	)
}

// Validate implements validation.Validatable.
func (o OutputConfig) Validate() error {
	return validation.ValidateStruct(&o,
		validation.Field(&o.Directory, validation.Required),
	)
}

// Validate implements validation.Validatable.
func (s SiteConfig) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Title, validation.Required),
		validation.Field(&s.Author, validation.Required),
		validation.Field(&s.Name, validation.Required),
		validation.Field(&s.Footer, validation.Required),
	)
}

// Validate implements validation.Validatable.
func (n NamingConfig) Validate() error {
	return validation.ValidateStruct(&n,
		validation.Field(&n.SuffixMarker, validation.Required, validation.By(plainName)),
		validation.Field(&n.NameSeparator, validation.Required),
	)
}

// Validate implements validation.Validatable.
func (r RenderConfig) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Workers, validation.Min(0)),
		validation.Field(&r.HighlightStyle, validation.Required, validation.By(knownStyle)),
	)
}

// Validate implements validation.Validatable.
func (n NotifyConfig) Validate() error {
	return validation.ValidateStruct(&n,
		validation.Field(&n.Subject, validation.When(n.NATSURL != "", validation.Required)),
	)
}

// Validate implements validation.Validatable.
func (c CheckConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.FilterPhrases, validation.Each(validation.Required)),
	)
}

func fileTypeKeys(value any) error {
	types, _ := value.(map[string]string)
	for suffix := range types {
		if suffix != "" && !strings.HasPrefix(suffix, ".") {
			return fmt.Errorf("suffix %q must start with a dot", suffix)
		}
	}
	return nil
}

func plainName(value any) error {
	s, _ := value.(string)
	if strings.ContainsAny(s, `/\`) {
		return errors.New("must not contain path separators")
	}
	return nil
}

func knownStyle(value any) error {
	name, _ := value.(string)
	if _, ok := styles.Registry[name]; !ok {
		return fmt.Errorf("unknown highlight style %q", name)
	}
	return nil
}
