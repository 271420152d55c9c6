package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"
)

// Clusters is an ordered list of clusters. It decodes from either a list or a
// mapping keyed by cluster name, and always encodes as a list.
type Clusters []Cluster

// UnmarshalYAML keeps document order for the mapping form
func (c *Clusters) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.SequenceNode:
		var list []Cluster
		if err := value.Decode(&list); err != nil {
			return err
		}
		*c = list
		return nil
	case yaml.MappingNode:
		list := make([]Cluster, 0, len(value.Content)/2)
		for i := 0; i+1 < len(value.Content); i += 2 {
			var cluster Cluster
			if err := value.Content[i+1].Decode(&cluster); err != nil {
				return fmt.Errorf("cluster %s: %w", value.Content[i].Value, err)
			}
			if cluster.Name == "" {
				cluster.Name = value.Content[i].Value
			}
			list = append(list, cluster)
		}
		*c = list
		return nil
	default:
		return fmt.Errorf("line %d: clusters must be a list or a mapping", value.Line)
	}
}

// UnmarshalJSON sorts the mapping form by cluster name
func (c *Clusters) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*c = nil
		return nil
	}

	if data[0] == '[' {
		var list []Cluster
		if err := json.Unmarshal(data, &list); err != nil {
			return err
		}
		*c = list
		return nil
	}

	var byName map[string]Cluster
	if err := json.Unmarshal(data, &byName); err != nil {
		return fmt.Errorf("clusters must be a list or an object: %w", err)
	}
	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	slices.Sort(names)

	list := make([]Cluster, 0, len(names))
	for _, name := range names {
		cluster := byName[name]
		if cluster.Name == "" {
			cluster.Name = name
		}
		list = append(list, cluster)
	}
	*c = list
	return nil
}

func (b Blueprint) MarshalJSON() ([]byte, error) {
	type plain Blueprint
	return marshalWithExtra(plain(b), b.Extra)
}

func (c Cluster) MarshalJSON() ([]byte, error) {
	type plain Cluster
	return marshalWithExtra(plain(c), c.Extra)
}

func (s Service) MarshalJSON() ([]byte, error) {
	type plain Service
	return marshalWithExtra(plain(s), s.Extra)
}

func (b Breed) MarshalJSON() ([]byte, error) {
	type plain Breed
	return marshalWithExtra(plain(b), b.Extra)
}

func (g Gateway) MarshalJSON() ([]byte, error) {
	type plain Gateway
	return marshalWithExtra(plain(g), g.Extra)
}

// marshalWithExtra encodes v and adds every extra field v does not already set
func marshalWithExtra(v any, extra map[string]any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil || len(extra) == 0 {
		return data, err
	}

	fields := make(map[string]json.RawMessage)
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	for key, value := range extra {
		if _, ok := fields[key]; ok {
			continue
		}
		raw, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", key, err)
		}
		fields[key] = raw
	}
	return json.Marshal(fields)
}
