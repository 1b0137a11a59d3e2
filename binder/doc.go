// Package binder feeds a built settings.Config from the outside world.
//
// It is the external collaborator the registry core expects: it never
// touches items directly, only the narrow Config surface. Raw values come
// from prioritized sources (files, environment variables, pflag sets,
// in-memory maps, tagged structs), later sources overriding earlier ones.
// After loading, transforms rewrite string values in place: ${path}
// references resolve against other loaded keys, and {{ expr }} values run
// through the expression engine, repeated until the tree stops changing or
// the pass budget runs out. Finally every registered key found in the loaded
// tree is coerced to its item's declared type and pushed through
// Config.SetValue, so nothing enters the registry unvalidated.
//
//	cfg, _ := settings.New(). ... .Build()
//	err := binder.New().
//		WithSource(
//			binder.FileSource("config/app.json"),
//			binder.EnvSource("APP_", "__"),
//		).
//		Bind(ctx, cfg)
//
// Rejected values surface immediately (fail-fast, the default) or joined
// after a full pass with WithFailFast(false). Either way the registry keeps
// its previous committed values for the rejected keys.
package binder
