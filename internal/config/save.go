package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/zjrosen/iconkit/internal/log"
)

// SaveAliases replaces the aliases section of the config file. Comments and
// formatting elsewhere in the file are preserved by editing the yaml.Node
// tree rather than re-marshaling the Config struct.
func SaveAliases(configPath string, aliases map[string]string) error {
	return saveKey(configPath, "aliases", buildStringMapNode(aliases))
}

// AddAlias reads the aliases currently in the file, sets alias -> target,
// and saves the result. It returns the full alias table that was written.
func AddAlias(configPath, alias, target string) (map[string]string, error) {
	aliases, err := readAliases(configPath)
	if err != nil {
		return nil, err
	}
	aliases[alias] = target
	if err := SaveAliases(configPath, aliases); err != nil {
		return nil, err
	}
	log.Info(log.CatConfig, "Saved alias", "alias", alias, "target", target, "path", configPath)
	return aliases, nil
}

// ErrNoSuchAlias is returned by RemoveAlias when the file has no such alias.
var ErrNoSuchAlias = errors.New("no such alias")

// RemoveAlias deletes alias from the file and returns the remaining table.
func RemoveAlias(configPath, alias string) (map[string]string, error) {
	aliases, err := readAliases(configPath)
	if err != nil {
		return nil, err
	}
	if _, ok := aliases[alias]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoSuchAlias, alias)
	}
	delete(aliases, alias)
	if err := SaveAliases(configPath, aliases); err != nil {
		return nil, err
	}
	log.Info(log.CatConfig, "Removed alias", "alias", alias, "path", configPath)
	return aliases, nil
}

func readAliases(configPath string) (map[string]string, error) {
	data, err := os.ReadFile(configPath)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var partial struct {
		Aliases map[string]string `yaml:"aliases"`
	}
	if err := yaml.Unmarshal(data, &partial); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if partial.Aliases == nil {
		partial.Aliases = make(map[string]string)
	}
	return partial.Aliases, nil
}

func buildStringMapNode(m map[string]string) *yaml.Node {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: m[k]},
		)
	}
	return node
}

// saveKey sets a top-level key in the YAML document at configPath.
func saveKey(configPath, key string, value *yaml.Node) error {
	data, err := os.ReadFile(configPath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reading config: %w", err)
	}

	var doc yaml.Node
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("parsing config: %w", err)
		}
	}

	switch {
	case doc.Kind == 0:
		doc = yaml.Node{
			Kind: yaml.DocumentNode,
			Content: []*yaml.Node{{
				Kind:    yaml.MappingNode,
				Content: []*yaml.Node{{Kind: yaml.ScalarNode, Value: key}, value},
			}},
		}
	case doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 && doc.Content[0].Kind == yaml.MappingNode:
		root := doc.Content[0]
		found := false
		for i := 0; i < len(root.Content)-1; i += 2 {
			if root.Content[i].Value == key {
				root.Content[i+1] = value
				found = true
				break
			}
		}
		if !found {
			root.Content = append(root.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: key}, value)
		}
	default:
		return fmt.Errorf("config %s: top level is not a mapping", configPath)
	}

	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(&doc); err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	_ = encoder.Close()

	return writeAtomic(configPath, buf.Bytes())
}

// writeAtomic writes to a temp file in the same directory, then renames.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	temp, err := os.CreateTemp(dir, ".iconkit.yaml.tmp.*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tempPath := temp.Name()

	if _, err := temp.Write(data); err != nil {
		_ = temp.Close()
		_ = os.Remove(tempPath)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := temp.Close(); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
