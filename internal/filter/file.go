package filter

import (
	"fmt"
	"os"

	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

// fileSpec is the YAML shape of a filter file. Tag lists are YAML sequences;
// score bounds are optional.
type fileSpec struct {
	RequiredTags []string `yaml:"required_tags"`
	BannedTags   []string `yaml:"banned_tags"`
	AtLeastTags  []string `yaml:"atleast_tags"`
	AtLeastNum   int      `yaml:"atleast_num"`
	Ratings      []string `yaml:"ratings"`
	MinScore     *int     `yaml:"min_score"`
	MaxScore     *int     `yaml:"max_score"`
}

// LoadFile reads a filter spec from a YAML file.
func LoadFile(path string) (Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Spec{}, fmt.Errorf("could not read filter file: %w", err)
	}

	var fs fileSpec
	if err := yaml.Unmarshal(data, &fs); err != nil {
		return Spec{}, fmt.Errorf("could not parse filter file %s: %w", path, err)
	}

	spec := Spec{
		RequiredTags: tagSet(fs.RequiredTags),
		BannedTags:   tagSet(fs.BannedTags),
		AtLeastTags:  tagSet(fs.AtLeastTags),
		AtLeastNum:   fs.AtLeastNum,
		Ratings:      tagSet(fs.Ratings),
		MinScore:     fs.MinScore,
		MaxScore:     fs.MaxScore,
	}
	if err := spec.Validate(); err != nil {
		return Spec{}, fmt.Errorf("invalid filter file %s: %w", path, err)
	}
	return spec, nil
}

func tagSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		if item == "" {
			continue
		}
		set[norm.NFC.String(item)] = struct{}{}
	}
	return set
}
