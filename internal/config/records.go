package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/delga-0098/invoicegen/internal/models"
)

// LoadRecord reads a YAML mapping file as a raw Record.
func LoadRecord(path string) (models.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	rec, err := ParseRecord(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return rec, nil
}

// ParseRecord decodes a YAML mapping into a raw Record. Scalars keep their
// source text (so 62701 and 25.50 arrive as "62701" and "25.50"), booleans
// stay booleans, and nulls become absent values. An empty document yields an
// empty Record.
func ParseRecord(data []byte) (models.Record, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return models.Record{}, nil
	}

	value, err := rawValue(doc.Content[0])
	if err != nil {
		return nil, err
	}
	rec, ok := value.(models.Record)
	if !ok {
		return nil, fmt.Errorf("expected a mapping at line %d", doc.Content[0].Line)
	}
	return rec, nil
}

// LoadPayments reads a payments file: a mapping from project address to a
// list of payment records.
//
// Example:
//
//	"2525 Elderwood Dr":
//	  - dates: 11/20/2024
//	    amount: 25.00
//	    note: check 1001
func LoadPayments(path string) (map[string][]models.Payment, error) {
	rec, err := LoadRecord(path)
	if err != nil {
		return nil, err
	}

	payments := make(map[string][]models.Payment, len(rec))
	for project, value := range rec {
		list, ok := value.([]any)
		if !ok {
			return nil, fmt.Errorf("payments for %q must be a list", project)
		}
		for i, item := range list {
			raw, ok := item.(models.Record)
			if !ok {
				return nil, fmt.Errorf("payment %d for %q must be a mapping", i+1, project)
			}
			p, err := models.NewPayment(raw)
			if err != nil {
				return nil, fmt.Errorf("payment %d for %q: %w", i+1, project, err)
			}
			payments[project] = append(payments[project], p)
		}
	}
	return payments, nil
}

// rawValue converts a YAML node into a raw record value.
func rawValue(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.AliasNode:
		return rawValue(n.Alias)

	case yaml.ScalarNode:
		switch n.Tag {
		case "!!null":
			return nil, nil
		case "!!bool":
			var b bool
			if err := n.Decode(&b); err != nil {
				return nil, err
			}
			return b, nil
		}
		return n.Value, nil

	case yaml.SequenceNode:
		list := make([]any, 0, len(n.Content))
		for _, item := range n.Content {
			v, err := rawValue(item)
			if err != nil {
				return nil, err
			}
			list = append(list, v)
		}
		return list, nil

	case yaml.MappingNode:
		rec := make(models.Record, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			v, err := rawValue(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			rec[n.Content[i].Value] = v
		}
		return rec, nil
	}

	return nil, fmt.Errorf("unsupported YAML node at line %d", n.Line)
}
