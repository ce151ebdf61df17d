package dispatcher

type config struct {
	eager          bool
	allowShadowing bool
	concurrency    int
}

// Option configures a Dispatcher.
type Option func(*config)

// Eager makes the first Get wait until every other registered key has been
// seeded. By default seeding runs in the background.
func Eager(eager bool) Option { return func(c *config) { c.eager = eager } }

// DisallowShadowing makes Register fail with types.ErrDuplicateKey when a key
// is registered twice. By default the later registration wins.
func DisallowShadowing() Option { return func(c *config) { c.allowShadowing = false } }

// BootstrapConcurrency bounds how many producers the bootstrap runs at once.
// n <= 0 means no bound.
func BootstrapConcurrency(n int) Option { return func(c *config) { c.concurrency = n } }
