// Package i18n resolves message keys to display text.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// BaseLocale is the locale every other catalog falls back to.
const BaseLocale = "ja"

type catalogFile struct {
	Locale   string            `yaml:"locale"`
	Messages map[string]string `yaml:"messages"`
}

// Catalog holds the messages of every loaded locale.
type Catalog struct {
	locales  map[string]map[string]string
	tags     []language.Tag
	names    []string
	matcher  language.Matcher
	baseName string
}

//go:embed locales/*.yaml
var embeddedFS embed.FS

var defaultCatalog = mustLoadEmbedded()

// Default returns the catalog built from the embedded locales.
func Default() *Catalog {
	return defaultCatalog
}

func mustLoadEmbedded() *Catalog {
	c, err := LoadFromFS(embeddedFS)
	if err != nil {
		panic(err)
	}
	return c
}

// LoadFromFS loads locales/*.yaml from fsys. The base locale must be present.
func LoadFromFS(fsys fs.FS) (*Catalog, error) {
	paths, err := fs.Glob(fsys, "locales/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("glob locale catalogs: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no catalog files found")
	}
	sort.Strings(paths)

	c := &Catalog{locales: map[string]map[string]string{}}
	for _, path := range paths {
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return nil, fmt.Errorf("read catalog %s: %w", path, err)
		}
		var file catalogFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("parse catalog %s: %w", path, err)
		}
		if err := c.add(path, file); err != nil {
			return nil, err
		}
	}

	if _, ok := c.locales[BaseLocale]; !ok {
		return nil, fmt.Errorf("base locale %s is not defined in catalogs", BaseLocale)
	}

	// The base locale goes first so the matcher falls back to it.
	c.names = make([]string, 0, len(c.locales))
	c.names = append(c.names, BaseLocale)
	for name := range c.locales {
		if name != BaseLocale {
			c.names = append(c.names, name)
		}
	}
	sort.Strings(c.names[1:])
	for _, name := range c.names {
		c.tags = append(c.tags, language.MustParse(name))
	}
	c.matcher = language.NewMatcher(c.tags)
	c.baseName = BaseLocale
	return c, nil
}

func (c *Catalog) add(path string, file catalogFile) error {
	locale := strings.TrimSpace(file.Locale)
	if locale == "" {
		return fmt.Errorf("catalog %s: locale is required", path)
	}
	if _, err := language.Parse(locale); err != nil {
		return fmt.Errorf("catalog %s: invalid locale %q: %w", path, locale, err)
	}
	if _, exists := c.locales[locale]; exists {
		return fmt.Errorf("catalog %s: locale %q already defined", path, locale)
	}
	if file.Messages == nil {
		return fmt.Errorf("catalog %s: messages map is required", path)
	}
	c.locales[locale] = file.Messages
	return nil
}

// Locales returns the loaded locale names, base locale first.
func (c *Catalog) Locales() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

// Resolve returns the loaded locale that best serves lang.
func (c *Catalog) Resolve(lang string) string {
	lang = strings.TrimSpace(lang)
	if lang == "" {
		return c.baseName
	}
	tag, err := language.Parse(lang)
	if err != nil {
		return c.baseName
	}
	_, index, confidence := c.matcher.Match(tag)
	if confidence == language.No {
		return c.baseName
	}
	return c.names[index]
}

// Lookup returns the text for key in lang. Missing entries fall back to the
// base locale and then to the key itself.
func (c *Catalog) Lookup(key, lang string) string {
	if text, ok := c.locales[c.Resolve(lang)][key]; ok && text != "" {
		return text
	}
	if text, ok := c.locales[c.baseName][key]; ok && text != "" {
		return text
	}
	return key
}
