package sqlite

import (
	"encoding/json"
	"time"

	"github.com/zjrosen/iconkit/internal/icon"
)

// IconModel represents the database row for the icons table.
// Time values are Unix milliseconds.
type IconModel struct {
	Key       string
	Namespace string
	Name      string
	Markup    string
	Category  string
	Tags      *string // nullable, JSON encoded
	ExpiresAt *int64  // nullable, never expires when nil
	CreatedAt int64
	UpdatedAt int64
}

// toIconModel converts an icon to a row stored under key.
func toIconModel(key string, ic *icon.Icon, expiresAt *time.Time, now time.Time) *IconModel {
	m := &IconModel{
		Key:       key,
		Namespace: ic.Namespace(),
		Name:      ic.Name(),
		Markup:    ic.Markup(),
		Category:  ic.Category(),
		CreatedAt: now.UnixMilli(),
		UpdatedAt: now.UnixMilli(),
	}
	if tags := ic.Tags(); len(tags) > 0 {
		if data, err := json.Marshal(tags); err == nil {
			s := string(data)
			m.Tags = &s
		}
	}
	if expiresAt != nil {
		ms := expiresAt.UnixMilli()
		m.ExpiresAt = &ms
	}
	return m
}

// expired reports whether the row is past its expiry at now.
func (m *IconModel) expired(now time.Time) bool {
	return m.ExpiresAt != nil && *m.ExpiresAt <= now.UnixMilli()
}

// toDomain converts the row back to an icon.
func (m *IconModel) toDomain() *icon.Icon {
	var opts []icon.Option
	if m.Category != "" {
		opts = append(opts, icon.WithCategory(m.Category))
	}
	if m.Tags != nil && *m.Tags != "" {
		var tags []string
		if err := json.Unmarshal([]byte(*m.Tags), &tags); err == nil && len(tags) > 0 {
			opts = append(opts, icon.WithTags(tags...))
		}
	}
	return icon.New(m.Namespace, m.Name, m.Markup, opts...)
}
