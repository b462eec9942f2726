package catalog

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/couchcryptid/quakesense-service/internal/domain"
)

// SectionDelimiter separates feature descriptions in descriptions.txt.
const SectionDelimiter = "###"

// ParseDescriptions splits text on SectionDelimiter. Blank sections are
// ignored; the first line of each remaining section is its title and the
// rest is the body. Section i describes the i-th feature in canonical
// order; sections beyond the known features are dropped.
func ParseDescriptions(r io.Reader) ([]domain.FeatureDescriptor, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read descriptions: %w", err)
	}

	features := domain.Features()
	var out []domain.FeatureDescriptor
	for _, section := range strings.Split(strings.TrimSpace(string(raw)), SectionDelimiter) {
		section = strings.TrimSpace(section)
		if section == "" {
			continue
		}
		if len(out) == len(features) {
			break
		}
		title, body, _ := strings.Cut(section, "\n")
		out = append(out, domain.FeatureDescriptor{
			Feature: features[len(out)],
			Title:   strings.TrimSpace(title),
			Body:    strings.TrimSpace(body),
		})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no description sections: %w", domain.ErrEmptyInput)
	}
	return out, nil
}

// LoadDescriptions reads descriptions from disk.
func LoadDescriptions(path string) ([]domain.FeatureDescriptor, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrMissingResource, err)
	}
	defer f.Close() //nolint:errcheck // read-only file

	ds, err := ParseDescriptions(f)
	if err != nil {
		return nil, fmt.Errorf("load descriptions %s: %w", path, err)
	}
	return ds, nil
}

// Describe returns the descriptor for f, or a descriptor titled after the
// feature when the resource has no section for it.
func Describe(ds []domain.FeatureDescriptor, f domain.Feature) domain.FeatureDescriptor {
	for _, d := range ds {
		if d.Feature == f {
			return d
		}
	}
	return domain.FeatureDescriptor{Feature: f, Title: string(f)}
}
