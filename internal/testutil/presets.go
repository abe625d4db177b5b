package testutil

// WithBrandIcons adds a small local icon set: logo, logo-dark and
// social/github.
func (b *Builder) WithBrandIcons() *Builder {
	return b.
		WithIcon("logo", ViewBox("0 0 32 32")).
		WithIcon("logo-dark", ViewBox("0 0 32 32"), Class("dark")).
		WithIcon("social/github")
}

// WithTemplates adds a template tree referencing icons in every supported
// syntax, including one reference that no pack provides.
func (b *Builder) WithTemplates(dir string) *Builder {
	return b.
		WithFile(dir+"/base.html", "{% icon \"home\" %}\n{% icon \"hero:pencil\" css_class=\"btn\" %}\n").
		WithFile(dir+"/partials/nav.html", `<nav>{{ icon "ion:menu" }} {{ "hero:x-mark" | icon }}</nav>`).
		WithFile(dir+"/emails/welcome.txt", `{% icon "brand:logo" %}`).
		WithFile(dir+"/.hidden/skip.html", `{% icon "ion:ignored" %}`).
		WithFile(dir+"/missing.html", `{% icon "ion:does-not-exist" %}`)
}
