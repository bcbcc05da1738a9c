// Package builtin registers the hooks shipped with the daemon. Import it for
// its side effects.
package builtin

import (
	_ "sandbox-hooks/internal/builtin/logging"
	_ "sandbox-hooks/internal/builtin/mysql"
	_ "sandbox-hooks/internal/builtin/rabbitmq"
	_ "sandbox-hooks/internal/builtin/redis"
)
