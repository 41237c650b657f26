package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/magiconair/properties"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Namespace prefixes, one per microservice.
const (
	AccountsPrefix = "accounts"
	CardsPrefix    = "cards"
)

// ContactInfo is the support contact snapshot a service loads once at
// startup. It is read-only: accessors hand out copies, so a *ContactInfo can
// be shared across goroutines without locking.
type ContactInfo struct {
	message        string
	contactDetails map[string]string
	onCallSupport  []string
}

type contactInfoProperties struct {
	Message        string            `mapstructure:"message"`
	ContactDetails map[string]string `mapstructure:"contactDetails"`
	OnCallSupport  []string          `mapstructure:"onCallSupport"`
}

// Source is a tree of configuration values. Keys keep the case they were
// written with, so map entries such as contactDetails round trip unchanged.
type Source struct {
	tree map[string]any
}

// NewSource wraps an already decoded tree.
func NewSource(tree map[string]any) *Source {
	if tree == nil {
		tree = map[string]any{}
	}
	return &Source{tree: tree}
}

// section returns the subtree under prefix. An exact key wins over one that
// only matches ignoring case.
func (s *Source) section(prefix string) (any, bool) {
	if s == nil {
		return nil, false
	}
	if v, ok := s.tree[prefix]; ok {
		return v, true
	}
	for k, v := range s.tree {
		if strings.EqualFold(k, prefix) {
			return v, true
		}
	}
	return nil, false
}

// LoadContactInfo binds the keys under prefix. Keys missing from source
// leave the matching field at its zero value.
func LoadContactInfo(source *Source, prefix string) (*ContactInfo, error) {
	var props contactInfoProperties
	if section, ok := source.section(prefix); ok && section != nil {
		decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			Result:           &props,
			WeaklyTypedInput: true,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to bind %s contact info: %w", prefix, err)
		}
		if err := decoder.Decode(section); err != nil {
			return nil, fmt.Errorf("failed to bind %s contact info: %w", prefix, err)
		}
	}

	info := &ContactInfo{
		message:        props.Message,
		contactDetails: make(map[string]string, len(props.ContactDetails)),
		onCallSupport:  make([]string, len(props.OnCallSupport)),
	}
	for k, v := range props.ContactDetails {
		info.contactDetails[k] = v
	}
	copy(info.onCallSupport, props.OnCallSupport)
	return info, nil
}

func (c *ContactInfo) Message() string {
	return c.message
}

func (c *ContactInfo) ContactDetails() map[string]string {
	out := make(map[string]string, len(c.contactDetails))
	for k, v := range c.contactDetails {
		out[k] = v
	}
	return out
}

func (c *ContactInfo) OnCallSupport() []string {
	out := make([]string, len(c.onCallSupport))
	copy(out, c.onCallSupport)
	return out
}

// ReadSource reads a YAML, JSON or .properties file into a Source.
// Properties files may use indexed keys such as accounts.onCallSupport[0].
func ReadSource(path string) (*Source, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".properties":
		loader := &properties.Loader{Encoding: properties.UTF8, DisableExpansion: true}
		p, err := loader.LoadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		return NewPropertySource(p.Map())
	case ".yml", ".yaml", ".json":
		// JSON documents are valid YAML.
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		tree := map[string]any{}
		if err := yaml.Unmarshal(data, &tree); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		return NewSource(tree), nil
	default:
		return nil, fmt.Errorf("unsupported config file type %q", filepath.Ext(path))
	}
}

// NewPropertySource builds a Source from flat dotted properties.
// An indexed final segment (name[n]) becomes an ordered list.
func NewPropertySource(props map[string]string) (*Source, error) {
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	tree := map[string]any{}
	for _, key := range keys {
		if err := insertProperty(tree, key, props[key]); err != nil {
			return nil, fmt.Errorf("property %q: %w", key, err)
		}
	}
	return NewSource(foldLists(tree)), nil
}

type indexedValues map[int]string

func insertProperty(tree map[string]any, key, value string) error {
	parts := strings.Split(key, ".")
	node := tree
	for i, part := range parts {
		name, index, indexed, err := splitIndex(part)
		if err != nil {
			return err
		}
		last := i == len(parts)-1

		if indexed {
			if !last {
				return fmt.Errorf("indexed segment %q must be the last one", part)
			}
			list, ok := node[name].(indexedValues)
			if !ok {
				if _, taken := node[name]; taken {
					return fmt.Errorf("%q is both a list and a value", name)
				}
				list = indexedValues{}
				node[name] = list
			}
			list[index] = value
			return nil
		}

		if last {
			if _, taken := node[name]; taken {
				return fmt.Errorf("%q is both a section and a value", name)
			}
			node[name] = value
			return nil
		}

		child, ok := node[name].(map[string]any)
		if !ok {
			if _, taken := node[name]; taken {
				return fmt.Errorf("%q is both a section and a value", name)
			}
			child = map[string]any{}
			node[name] = child
		}
		node = child
	}
	return nil
}

func splitIndex(part string) (name string, index int, indexed bool, err error) {
	if part == "" {
		return "", 0, false, fmt.Errorf("empty key segment")
	}
	open := strings.IndexByte(part, '[')
	if open < 0 {
		return part, 0, false, nil
	}
	if open == 0 || !strings.HasSuffix(part, "]") {
		return "", 0, false, fmt.Errorf("malformed index in %q", part)
	}
	index, err = strconv.Atoi(part[open+1 : len(part)-1])
	if err != nil || index < 0 {
		return "", 0, false, fmt.Errorf("malformed index in %q", part)
	}
	return part[:open], index, true, nil
}

func foldLists(tree map[string]any) map[string]any {
	for k, v := range tree {
		switch node := v.(type) {
		case map[string]any:
			tree[k] = foldLists(node)
		case indexedValues:
			indexes := make([]int, 0, len(node))
			for i := range node {
				indexes = append(indexes, i)
			}
			sort.Ints(indexes)
			list := make([]any, 0, len(indexes))
			for _, i := range indexes {
				list = append(list, node[i])
			}
			tree[k] = list
		}
	}
	return tree
}
