package binder

import (
	"context"
	goerrors "errors"
	"os"
	"sort"
	"strings"
	"syscall"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-settings/binder/envprovider"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// SourceBuilder produces a Source once the binder's configuration is known.
type SourceBuilder func(*Binder) (Source, error)

type SourceType string

const (
	SourceTypeFile   SourceType = "file"
	SourceTypeEnv    SourceType = "env"
	SourceTypeFlag   SourceType = "pflag"
	SourceTypeValues SourceType = "values"
	SourceTypeStruct SourceType = "struct"
)

func (s SourceType) String() string {
	return string(s)
}

func (s SourceType) validate() error {
	switch s {
	case SourceTypeFile, SourceTypeEnv, SourceTypeFlag, SourceTypeValues, SourceTypeStruct:
		return nil
	default:
		return errors.New("invalid source type", errors.CategoryValidation).
			WithTextCode("INVALID_SOURCE_TYPE").
			WithMetadata(map[string]any{
				"source_type": string(s),
				"valid_types": []string{
					string(SourceTypeFile),
					string(SourceTypeEnv),
					string(SourceTypeFlag),
					string(SourceTypeValues),
					string(SourceTypeStruct),
				},
			})
	}
}

// Source feeds raw values into the binder's loaded tree.
type Source interface {
	Type() SourceType
	Priority() int
	Validate() error
	Load(context.Context, *koanf.Koanf) error
}

// Loader is the Source implementation every builder in this package
// produces.
type Loader struct {
	order      int
	sourceType SourceType
	load       func(context.Context, *koanf.Koanf) error
}

func (l *Loader) Priority() int { return l.order }

func (l *Loader) Type() SourceType { return l.sourceType }

func (l *Loader) Validate() error { return l.sourceType.validate() }

func (l *Loader) Load(ctx context.Context, k *koanf.Koanf) error {
	return l.load(ctx, k)
}

// Priority orders sources; later loads override earlier ones.
type Priority int

func (p Priority) WithOffset(offset int) Priority {
	return Priority(int(p) + offset)
}

var (
	PriorityStruct Priority = 10
	PriorityValues Priority = 15
	PriorityFile   Priority = 20
	PriorityEnv    Priority = 30
	PriorityFlags  Priority = 40
)

var (
	DefaultEnvPrefix    = "APP_"
	DefaultEnvDelimiter = "__" // so keys can carry composed_words
)

// FileSource loads a json, toml, or yaml file, inferring the format from
// the extension.
func FileSource(filepath string, orders ...int) SourceBuilder {
	filetype := inferFiletype(filepath)

	return func(b *Binder) (Source, error) {
		parser := filetype.Parser()
		kprovider := file.Provider(filepath)

		return &Loader{
			sourceType: SourceTypeFile,
			order:      getOrder(PriorityFile, orders...),
			load: func(ctx context.Context, k *koanf.Koanf) error {
				b.logger.Debug("file source", "filepath", filepath)
				if err := k.Load(kprovider, parser); err != nil {
					return errors.Wrap(err, errors.CategoryOperation, "failed to load values from file").
						WithTextCode("FILE_LOAD_FAILED").
						WithMetadata(map[string]any{
							"filepath":  filepath,
							"file_type": string(filetype),
						})
				}
				return nil
			},
		}, nil
	}
}

// EnvSource loads environment variables carrying the prefix, mapping the
// delimiter to nesting: APP_SERVER__PORT=8080 becomes server.port.
func EnvSource(prefix, delim string, orders ...int) SourceBuilder {
	return func(b *Binder) (Source, error) {
		return &Loader{
			sourceType: SourceTypeEnv,
			order:      getOrder(PriorityEnv, orders...),
			load: func(ctx context.Context, k *koanf.Koanf) error {
				b.logger.Debug("env source", "prefix", prefix)
				kprov := envprovider.Provider(prefix, ".", func(s string) string {
					return strings.Replace(strings.ToLower(
						strings.TrimPrefix(s, prefix)), delim, ".", -1)
				})
				if err := k.Load(kprov, json.Parser()); err != nil {
					return errors.Wrap(err, errors.CategoryOperation, "failed to load environment variables").
						WithTextCode("ENV_LOAD_FAILED").
						WithMetadata(map[string]any{
							"prefix":    prefix,
							"delimiter": delim,
						})
				}
				return nil
			},
		}, nil
	}
}

// FlagSource loads a parsed pflag set.
func FlagSource(flagset *pflag.FlagSet, orders ...int) SourceBuilder {
	return func(b *Binder) (Source, error) {
		if flagset == nil {
			return &Loader{}, errors.New("flagset cannot be nil", errors.CategoryBadInput).
				WithTextCode("NIL_FLAGSET")
		}
		return &Loader{
			sourceType: SourceTypeFlag,
			order:      getOrder(PriorityFlags, orders...),
			load: func(ctx context.Context, k *koanf.Koanf) error {
				b.logger.Debug("flags source")
				prv := posflag.Provider(flagset, b.delimiter, k)
				if err := k.Load(prv, nil); err != nil {
					return errors.Wrap(err, errors.CategoryOperation, "failed to load values from posix flags").
						WithTextCode("FLAGS_LOAD_FAILED").
						WithMetadata(map[string]any{
							"delimiter": b.delimiter,
						})
				}
				return nil
			},
		}, nil
	}
}

// ValuesSource loads an in-memory map, nested or dot-delimited.
func ValuesSource(values map[string]any, orders ...int) SourceBuilder {
	return func(b *Binder) (Source, error) {
		return &Loader{
			sourceType: SourceTypeValues,
			order:      getOrder(PriorityValues, orders...),
			load: func(ctx context.Context, k *koanf.Koanf) error {
				b.logger.Debug("values source", "count", len(values))
				if err := k.Load(confmap.Provider(values, b.delimiter), nil); err != nil {
					return errors.Wrap(err, errors.CategoryOperation, "failed to load in-memory values").
						WithTextCode("VALUES_LOAD_FAILED").
						WithMetadata(map[string]any{
							"values_count": len(values),
						})
				}
				return nil
			},
		}, nil
	}
}

// StructSource loads a struct's fields by their `settings` tags.
func StructSource(v any, orders ...int) SourceBuilder {
	if v == nil {
		return func(b *Binder) (Source, error) {
			return &Loader{}, errors.New("struct cannot be nil", errors.CategoryBadInput).
				WithTextCode("NIL_STRUCT")
		}
	}
	return func(b *Binder) (Source, error) {
		kprv := structs.Provider(v, "settings")
		return &Loader{
			sourceType: SourceTypeStruct,
			order:      getOrder(PriorityStruct, orders...),
			load: func(ctx context.Context, k *koanf.Koanf) error {
				b.logger.Debug("struct source")
				if err := k.Load(kprv, nil); err != nil {
					return errors.Wrap(err, errors.CategoryOperation, "failed to load values from struct").
						WithTextCode("STRUCT_LOAD_FAILED")
				}
				return nil
			},
		}, nil
	}
}

// ErrorFilter reports whether a source load error should be ignored.
type ErrorFilter func(err error) bool

// DefaultErrorFilter ignores absent files but surfaces everything else,
// e.g. a parse failure still blows up.
func DefaultErrorFilter(allowedErrors ...error) ErrorFilter {
	return func(err error) bool {
		if err == nil {
			return false
		}
		if len(allowedErrors) == 0 {
			return os.IsNotExist(err) || goerrors.Is(err, syscall.ENOENT)
		}
		for _, allowed := range allowedErrors {
			if goerrors.Is(err, allowed) {
				return true
			}
		}
		return false
	}
}

// OptionalSource wraps a source so that load errors matched by the filter
// are ignored.
func OptionalSource(f SourceBuilder, filters ...ErrorFilter) SourceBuilder {
	ignore := DefaultErrorFilter()
	if len(filters) > 0 {
		ignore = filters[0]
	}

	return func(b *Binder) (Source, error) {
		base, err := f(b)
		if err != nil {
			return &Loader{}, err
		}
		return &Loader{
			sourceType: base.Type(),
			order:      base.Priority(),
			load: func(ctx context.Context, k *koanf.Koanf) error {
				if err := base.Load(ctx, k); !ignore(err) {
					return err
				}
				return nil
			},
		}, nil
	}
}

func sortSources(sources []Source) {
	sort.SliceStable(sources, func(i, j int) bool {
		return sources[i].Priority() < sources[j].Priority()
	})
}

func getOrder(defaultOrder Priority, orders ...int) int {
	if len(orders) > 0 {
		return orders[0]
	}
	return int(defaultOrder)
}
