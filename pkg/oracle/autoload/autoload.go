// Package autoload registers all built-in oracle providers.
// Import for side effects:
//
//	import _ "spring/pkg/oracle/autoload"
package autoload

import (
	_ "spring/pkg/oracle/gemini"
	_ "spring/pkg/oracle/ollamaor"
	_ "spring/pkg/oracle/openaior"
)
