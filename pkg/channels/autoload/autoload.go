// Package autoload registers all built-in channel implementations.
// Import for side effects:
//
//	import _ "spring/pkg/channels/autoload"
package autoload

import (
	_ "spring/pkg/channels/telegram"
	_ "spring/pkg/channels/web"
)
