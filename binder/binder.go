package binder

import (
	"context"
	goerrors "errors"
	"reflect"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-settings/logger"
	"github.com/goliatone/go-settings/settings"
	"github.com/knadh/koanf/v2"
	"github.com/mitchellh/copystructure"
)

var (
	DefaultDelimiter      = "."
	DefaultConfigFilepath = "config/app.json"
	DefaultBindTimeout    = 30 * time.Second
)

// Binder loads raw values from prioritized sources, optionally rewrites
// them, and routes each one through Config.SetValue after coercing it to
// the owning item's declared type. It never bypasses validation: a value
// the item's validator rejects never reaches the registry.
type Binder struct {
	k          *koanf.Koanf
	builders   []SourceBuilder
	sources    []Source
	transforms []Transform
	passes     int
	timeout    time.Duration
	delimiter  string
	configPath string
	failFast   bool
	logger     logger.Logger
}

// New returns a binder with the default delimiter, timeout, and transform
// set. With no explicit sources, Bind falls back to an optional file source
// at the default config path.
func New() *Binder {
	b := &Binder{
		delimiter:  DefaultDelimiter,
		timeout:    DefaultBindTimeout,
		configPath: DefaultConfigFilepath,
		failFast:   true,
		passes:     1,
		logger:     logger.NewDefaultLogger("binder"),
		transforms: []Transform{
			NewVariablesTransform("${", "}"),
			NewExpressionTransform("{{", "}}"),
		},
	}
	b.newKoanf()
	return b
}

// WithSource registers source factories, loaded in priority order.
func (b *Binder) WithSource(factories ...SourceBuilder) *Binder {
	for _, factory := range factories {
		if factory != nil {
			b.builders = append(b.builders, factory)
		}
	}
	return b
}

// WithTransform appends raw-value transforms.
func (b *Binder) WithTransform(transforms ...Transform) *Binder {
	b.transforms = append(b.transforms, transforms...)
	return b
}

// WithTransforms replaces the transform list, allowing explicit ordering.
func (b *Binder) WithTransforms(transforms ...Transform) *Binder {
	b.transforms = append([]Transform{}, transforms...)
	return b
}

// WithTransformPasses sets the maximum number of transform passes
// (minimum 1). Passes stop early once the loaded tree reaches a fixed
// point.
func (b *Binder) WithTransformPasses(passes int) *Binder {
	if passes < 1 {
		passes = 1
	}
	b.passes = passes
	return b
}

// WithTimeout bounds a single Bind call.
func (b *Binder) WithTimeout(timeout time.Duration) *Binder {
	b.timeout = timeout
	return b
}

// WithConfigPath sets the file used by the fallback source when no source
// was registered. An empty path disables the fallback.
func (b *Binder) WithConfigPath(p string) *Binder {
	b.configPath = p
	return b
}

// WithFailFast controls whether Bind stops at the first rejected value
// (default) or visits every key and reports the rejections joined.
func (b *Binder) WithFailFast(enabled bool) *Binder {
	b.failFast = enabled
	return b
}

// WithLogger replaces the binder's logger.
func (b *Binder) WithLogger(l logger.Logger) *Binder {
	b.logger = l
	return b
}

func (b *Binder) newKoanf() {
	b.k = koanf.New(b.delimiter)
}

// Raw exposes the loaded raw tree after the last Bind. Intended for
// debugging what the sources produced before coercion.
func (b *Binder) Raw() map[string]any {
	return b.k.Raw()
}

// MustBind is like Bind but panics on error.
func (b *Binder) MustBind(ctx context.Context, cfg *settings.Config) {
	if err := b.Bind(ctx, cfg); err != nil {
		panic(err)
	}
}

// Bind loads every source, runs the transforms to a fixed point, and pushes
// each registered key present in the loaded tree through cfg.SetValue.
func (b *Binder) Bind(ctx context.Context, cfg *settings.Config) error {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	// reset loaded state so removed keys do not linger across binds
	b.newKoanf()

	if err := b.load(ctx); err != nil {
		return err
	}

	b.solve()

	return b.apply(ctx, cfg)
}

func (b *Binder) load(ctx context.Context) error {
	b.sources = nil
	for i, factory := range b.builders {
		source, err := factory(b)
		if err != nil {
			return errors.Wrap(err, errors.CategoryOperation, "failed to create source").
				WithTextCode("SOURCE_CREATION_FAILED").
				WithMetadata(map[string]any{
					"factory_index":   i,
					"total_factories": len(b.builders),
				})
		}
		b.sources = append(b.sources, source)
	}

	if len(b.sources) == 0 && b.configPath != "" {
		b.logger.Debug("no sources specified, loading default file source...")
		factory := OptionalSource(FileSource(b.configPath))
		source, err := factory(b)
		if err != nil {
			return errors.Wrap(err, errors.CategoryOperation, "failed to create default file source").
				WithTextCode("DEFAULT_SOURCE_FAILED").
				WithMetadata(map[string]any{
					"config_path": b.configPath,
				})
		}
		b.sources = append(b.sources, source)
	}

	for i, source := range b.sources {
		if err := source.Validate(); err != nil {
			return errors.Wrap(err, errors.CategoryValidation, "invalid source type").
				WithTextCode("INVALID_SOURCE_TYPE").
				WithMetadata(map[string]any{
					"source_type":  string(source.Type()),
					"source_index": i,
				})
		}
	}

	sortSources(b.sources)

	for i, source := range b.sources {
		b.logger.Debug("= loading source", "source_type", source.Type())
		if err := source.Load(ctx, b.k); err != nil {
			return errors.Wrap(err, errors.CategoryOperation, "failed to load values from source").
				WithTextCode("SOURCE_LOAD_FAILED").
				WithMetadata(map[string]any{
					"source_type":   string(source.Type()),
					"source_index":  i,
					"total_sources": len(b.sources),
				})
		}
	}

	return nil
}

func (b *Binder) solve() {
	if len(b.transforms) == 0 {
		return
	}
	for pass := 0; pass < b.passes; pass++ {
		before, ok := snapshot(b.k)
		for _, transform := range b.transforms {
			if transform != nil {
				transform.Apply(b.k)
			}
		}
		if !ok {
			continue
		}
		if reflect.DeepEqual(before, b.k.Raw()) {
			break
		}
	}
}

func (b *Binder) apply(ctx context.Context, cfg *settings.Config) error {
	var rejected []error

	for _, key := range cfg.Keys() {
		if err := ctx.Err(); err != nil {
			return errors.Wrap(err, errors.CategoryOperation, "bind cancelled").
				WithTextCode("BIND_CANCELLED")
		}
		if !b.k.Exists(key) {
			continue
		}

		raw := b.k.Get(key)
		typ, err := cfg.Type(key)
		if err != nil {
			return err
		}

		value, err := coerceValue(raw, typ)
		if err != nil {
			err = errors.Wrap(err, errors.CategoryBadInput, "failed to coerce raw value").
				WithTextCode("COERCE_FAILED").
				WithMetadata(map[string]any{
					"key":           key,
					"raw_value":     raw,
					"declared_type": typ.String(),
				})
			if b.failFast {
				return err
			}
			rejected = append(rejected, err)
			continue
		}

		if err := cfg.SetValue(key, value); err != nil {
			err = errors.Wrap(err, errors.CategoryValidation, "source value rejected").
				WithTextCode("VALUE_REJECTED").
				WithMetadata(map[string]any{
					"key":         key,
					"source_type": "merged",
				})
			if b.failFast {
				return err
			}
			rejected = append(rejected, err)
		}
	}

	return goerrors.Join(rejected...)
}

func snapshot(k *koanf.Koanf) (any, bool) {
	if k == nil {
		return nil, false
	}
	raw := k.Raw()
	cloned, err := copystructure.Copy(raw)
	if err != nil {
		return raw, false
	}
	return cloned, true
}
