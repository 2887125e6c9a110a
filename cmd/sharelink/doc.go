// Command sharelink manages gallery share links in the server's database.
//
// Usage:
//
//	sharelink <command> [arguments]
//
// Commands:
//
//	create <folder> [ttl]  Create a link granting folder. ttl is how long
//	                       the cookies issued on each open stay valid
//	                       (Go duration or whole days such as 7d; default
//	                       7d, minimum 60s, capped at 14d). Prints the
//	                       /open?t= URL. When stdout is not a terminal only
//	                       the URL is printed, so scripts can capture it.
//
//	status                 Count links that still open.
//
//	prune                  Delete expired links.
//
// Environment (an optional .env file is read first, like the server does):
//
//	DATABASE_DIR           Path to database directory (default: /database)
//	PUBLIC_URL             Server URL printed in links
//	ALLOWED_FOLDER_PREFIX  Folders links may grant (default: gallery/)
//	LINK_LIFETIME          How long a link keeps opening (default: its TTL)
package main
