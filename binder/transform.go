package binder

import (
	"fmt"
	"strings"

	opts "github.com/goliatone/go-options"
	"github.com/knadh/koanf/v2"
)

// Transform rewrites raw values after every source has loaded, before the
// binder pushes them into the registry.
type Transform interface {
	Apply(k *koanf.Koanf) *koanf.Koanf
}

type delimiters struct {
	start string
	end   string
}

// variablesTransform resolves references to other loaded keys, e.g.
// "${server.host}:8080".
type variablesTransform struct {
	delims delimiters
}

// NewVariablesTransform resolves key references wrapped by the given
// delimiters against the loaded tree.
func NewVariablesTransform(start, end string) Transform {
	return &variablesTransform{delims: delimiters{start: start, end: end}}
}

func (t *variablesTransform) Apply(k *koanf.Koanf) *koanf.Koanf {
	if k == nil {
		return k
	}
	for key, val := range k.All() {
		str, ok := val.(string)
		if !ok {
			continue
		}
		t.resolve(key, str, k)
	}
	return k
}

func (t *variablesTransform) resolve(key, val string, k *koanf.Koanf) {
	start := strings.Index(val, t.delims.start)
	if start == -1 {
		return
	}
	rest := val[start+len(t.delims.start):]
	end := strings.Index(rest, t.delims.end)
	if end == -1 {
		return
	}

	path := rest[:end]
	if path == "" || !k.Exists(path) {
		return
	}

	replacement := k.Get(path)
	whole := t.delims.start + path + t.delims.end
	if whole == val {
		// full-value reference keeps the referenced value's type
		k.Set(key, replacement)
		return
	}
	k.Set(key, strings.Replace(val, whole, fmt.Sprintf("%v", replacement), 1))
}

// EvalErrorHandler decides what happens when an expression fails to
// evaluate. Return true to mark the error handled.
type EvalErrorHandler func(key, expr string, err error, k *koanf.Koanf) bool

// OnEvalLeaveUnchanged keeps the original value.
func OnEvalLeaveUnchanged() EvalErrorHandler {
	return func(string, string, error, *koanf.Koanf) bool {
		return true
	}
}

// OnEvalRemove deletes the key from the loaded tree.
func OnEvalRemove() EvalErrorHandler {
	return func(key string, _ string, _ error, k *koanf.Koanf) bool {
		if k != nil {
			k.Delete(key)
		}
		return true
	}
}

type expressionTransform struct {
	delims    delimiters
	evaluator opts.Evaluator
	onError   EvalErrorHandler
}

// NewExpressionTransform evaluates values fully wrapped by the delimiters
// (default {{ }}) with the default expr evaluator, the loaded tree as the
// evaluation snapshot.
func NewExpressionTransform(start, end string) Transform {
	return NewExpressionTransformWithEvaluator(start, end, nil, nil)
}

// NewExpressionTransformWithEvaluator allows a custom evaluator and error
// handler.
func NewExpressionTransformWithEvaluator(start, end string, eval opts.Evaluator, onErr EvalErrorHandler) Transform {
	if eval == nil {
		eval = opts.NewExprEvaluator()
	}
	if onErr == nil {
		onErr = OnEvalLeaveUnchanged()
	}
	if start == "" {
		start = "{{"
	}
	if end == "" {
		end = "}}"
	}
	return &expressionTransform{
		delims:    delimiters{start: start, end: end},
		evaluator: eval,
		onError:   onErr,
	}
}

func (t *expressionTransform) Apply(k *koanf.Koanf) *koanf.Koanf {
	if k == nil {
		return k
	}
	for key, val := range k.All() {
		str, ok := val.(string)
		if !ok {
			continue
		}
		expr, ok := t.fullMatch(str)
		if !ok {
			continue
		}

		expr = strings.TrimSpace(expr)
		result, err := t.evaluator.Evaluate(opts.RuleContext{Snapshot: k.Raw()}, expr)
		if err != nil {
			t.onError(key, expr, err, k)
			continue
		}
		k.Set(key, result)
	}
	return k
}

func (t *expressionTransform) fullMatch(input string) (string, bool) {
	if !strings.HasPrefix(input, t.delims.start) || !strings.HasSuffix(input, t.delims.end) {
		return "", false
	}
	start := len(t.delims.start)
	end := len(input) - len(t.delims.end)
	if end < start {
		return "", false
	}
	return input[start:end], true
}
