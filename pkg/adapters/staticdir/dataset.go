// Package staticdir serves the directory and retriever ports from fixture
// datasets held in memory. It is the default collaborator set: the engine
// answers questions out of the box, and tests run against deterministic data.
package staticdir

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/mitchellh/mapstructure"

	"github.com/switchyard-ai/switchyard/pkg/domain"
)

// FAQ is one knowledge-base entry.
type FAQ struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Dataset is the fixture document shape. Payments are keyed by policy number.
type Dataset struct {
	Policies     []domain.Policy             `json:"policies"`
	AutoPolicies []domain.AutoPolicyDetails  `json:"auto_policies"`
	Bills        []domain.Bill               `json:"bills"`
	Payments     map[string][]domain.Payment `json:"payments"`
	Claims       []domain.Claim              `json:"claims"`
	FAQs         []FAQ                       `json:"faqs"`
}

// merge appends other's records onto d.
func (d *Dataset) merge(other Dataset) {
	d.Policies = append(d.Policies, other.Policies...)
	d.AutoPolicies = append(d.AutoPolicies, other.AutoPolicies...)
	d.Bills = append(d.Bills, other.Bills...)
	d.Claims = append(d.Claims, other.Claims...)
	d.FAQs = append(d.FAQs, other.FAQs...)
	if len(other.Payments) > 0 {
		if d.Payments == nil {
			d.Payments = make(map[string][]domain.Payment, len(other.Payments))
		}
		for number, payments := range other.Payments {
			d.Payments[number] = append(d.Payments[number], payments...)
		}
	}
}

// DecodeDataset converts a raw document (YAML config blocks, tool arguments)
// into a Dataset. Field names follow the json tags of the record types.
func DecodeDataset(raw map[string]any) (*Dataset, error) {
	var ds Dataset
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		Result:           &ds,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}
	return &ds, nil
}

// LoadDir reads every *.json file in dir and merges them into one Dataset,
// in file-name order so fixtures load deterministically.
func LoadDir(dir string) (*Dataset, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read fixtures dir: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	var ds Dataset
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("read fixture %s: %w", name, err)
		}
		var raw map[string]any
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parse fixture %s: %w", name, err)
		}
		part, err := DecodeDataset(raw)
		if err != nil {
			return nil, fmt.Errorf("fixture %s: %w", name, err)
		}
		ds.merge(*part)
	}
	return &ds, nil
}
