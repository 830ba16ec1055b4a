package suggest

import "github.com/kilianp07/tripcost/core/factory"

var sourceRegistry = factory.NewRegistry[Source]("suggestion source")

func init() {
	_ = RegisterSource("static", func(conf map[string]any) (Source, error) {
		var c struct {
			Items []string `json:"items"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		if len(c.Items) == 0 {
			c.Items = DefaultDestinations
		}
		return Static{Items: c.Items}, nil
	})
}

// RegisterSource adds a suggestion source factory identified by name.
func RegisterSource(name string, f factory.Factory[Source]) error {
	return sourceRegistry.Register(name, f)
}

// NewSource creates the Source described by cfg. An empty type yields the
// built-in static list.
func NewSource(cfg factory.ModuleConfig) (Source, error) {
	if cfg.Type == "" {
		return Static{Items: DefaultDestinations}, nil
	}
	return sourceRegistry.Create(cfg)
}

// SourceTypes lists the registered suggestion source types.
func SourceTypes() []string { return sourceRegistry.Types() }
