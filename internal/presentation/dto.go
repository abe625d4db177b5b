package presentation

import (
	"github.com/zjrosen/iconkit/internal/icon"
	"github.com/zjrosen/iconkit/internal/packs"
	"github.com/zjrosen/iconkit/internal/registry"
	"github.com/zjrosen/iconkit/internal/scanner"
)

// IconDTO represents a resolved icon for presentation
type IconDTO struct {
	Reference string   `json:"reference"`
	Namespace string   `json:"namespace"`
	Name      string   `json:"name"`
	Category  string   `json:"category,omitempty"`
	Tags      []string `json:"tags,omitempty"`
	Markup    string   `json:"markup,omitempty"`
}

// NamespaceDTO represents one registered namespace
type NamespaceDTO struct {
	Namespace string   `json:"namespace"`
	Loaders   []string `json:"loaders"`
	Icons     int      `json:"icons"`
}

// PackDTO represents a bundled pack
type PackDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Namespace string `json:"namespace"`
	Version   string `json:"version,omitempty"`
	License   string `json:"license,omitempty"`
	Homepage  string `json:"homepage,omitempty"`
	Icons     int    `json:"icons"`
}

// SourceDTO is one loader's content for a reference
type SourceDTO struct {
	Loader string `json:"loader"`
	Markup string `json:"markup"`
	Active bool   `json:"active"`
}

// ReferenceDTO is one icon usage found in a template
type ReferenceDTO struct {
	Ref  string `json:"ref"`
	File string `json:"file"`
	Line int    `json:"line"`
}

// FromIcon converts an icon to a DTO. Markup is included only when
// withMarkup is set.
func FromIcon(ic *icon.Icon, withMarkup bool) IconDTO {
	dto := IconDTO{
		Reference: ic.Key(),
		Namespace: ic.Namespace(),
		Name:      ic.Name(),
		Category:  ic.Category(),
		Tags:      ic.Tags(),
	}
	if withMarkup {
		dto.Markup = ic.Markup()
	}
	return dto
}

// FromSources converts registry sources to DTOs, keeping precedence order.
func FromSources(sources []registry.Source) []SourceDTO {
	out := make([]SourceDTO, len(sources))
	for i, s := range sources {
		out[i] = SourceDTO{Loader: s.Loader, Markup: s.Markup, Active: s.Active}
	}
	return out
}

// FromPack converts a loaded pack to a DTO.
func FromPack(p *packs.Pack) PackDTO {
	return PackDTO{
		ID:        p.ID,
		Name:      p.Manifest.Name,
		Namespace: p.Namespace(),
		Version:   p.Manifest.Version,
		License:   p.Manifest.License,
		Homepage:  p.Manifest.Homepage,
		Icons:     p.Len(),
	}
}

// FromReferences converts scanner results to DTOs.
func FromReferences(refs []scanner.Reference) []ReferenceDTO {
	out := make([]ReferenceDTO, len(refs))
	for i, r := range refs {
		out[i] = ReferenceDTO{Ref: r.Ref, File: r.File, Line: r.Line}
	}
	return out
}
