package loader

// Func adapts caller-supplied functions into a Loader. It is how hosts plug
// in sources the core knows nothing about (generated icons, module
// discovery, remote mirrors populated ahead of time).
type Func struct {
	label   string
	resolve func(name string) (string, bool)
	names   func() ([]string, error)
}

// FuncOption configures a Func loader.
type FuncOption func(*Func)

// WithNames supplies an enumerator so the loader participates in listings.
func WithNames(fn func() ([]string, error)) FuncOption {
	return func(f *Func) {
		f.names = fn
	}
}

// NewFunc wraps resolve as a Loader.
func NewFunc(label string, resolve func(name string) (string, bool), opts ...FuncOption) *Func {
	f := &Func{
		label:   label,
		resolve: resolve,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Resolve implements Loader.
func (f *Func) Resolve(name string) (string, bool) {
	if f.resolve == nil {
		return "", false
	}
	return f.resolve(name)
}

// Names implements Lister. Without an enumerator the loader lists nothing.
func (f *Func) Names() ([]string, error) {
	if f.names == nil {
		return nil, nil
	}
	return f.names()
}

// Describe implements Describer.
func (f *Func) Describe() string {
	return "custom:" + f.label
}
